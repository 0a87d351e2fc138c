package ast

type NodeType string

const (
	NodeVariable NodeType = "Variable"
	NodeConstant NodeType = "Constant"
	NodeSequence NodeType = "Sequence"
	NodeAssign   NodeType = "Assign"
	NodeOperate  NodeType = "Operate"
	NodeWhile    NodeType = "While"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Value interface {
	Node
	valueNode()
}

type valueMarker struct{}

func (valueMarker) valueNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Operator is the arithmetic applied by an Operate statement.
type Operator uint8

const (
	OperatorAdd Operator = iota
	OperatorSubtract
	OperatorMultiply
)

func (o Operator) String() string {
	switch o {
	case OperatorAdd:
		return "+"
	case OperatorSubtract:
		return "-"
	case OperatorMultiply:
		return "*"
	default:
		return "?"
	}
}

// Values

type Variable struct {
	nodeImpl
	valueMarker

	Name string `json:"name"`
}

func NewVariable(name string) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable), Name: name}
}

type Constant struct {
	nodeImpl
	valueMarker

	Value uint64 `json:"value"`
}

func NewConstant(value uint64) *Constant {
	return &Constant{nodeImpl: newNodeImpl(NodeConstant), Value: value}
}

// Statements

// Sequence runs Left to completion before Right. Neither side is nil.
type Sequence struct {
	nodeImpl
	statementMarker

	Left  Statement `json:"left"`
	Right Statement `json:"right"`
}

func NewSequence(left, right Statement) *Sequence {
	return &Sequence{nodeImpl: newNodeImpl(NodeSequence), Left: left, Right: right}
}

// Assign copies a variable or constant into Target.
type Assign struct {
	nodeImpl
	statementMarker

	Target string `json:"target"`
	Value  Value  `json:"value"`
}

func NewAssign(target string, value Value) *Assign {
	return &Assign{nodeImpl: newNodeImpl(NodeAssign), Target: target, Value: value}
}

// Operate stores `Left Operator Right` into Target.
type Operate struct {
	nodeImpl
	statementMarker

	Target   string   `json:"target"`
	Left     Value    `json:"left"`
	Operator Operator `json:"operator"`
	Right    Value    `json:"right"`
}

func NewOperate(target string, left Value, op Operator, right Value) *Operate {
	return &Operate{nodeImpl: newNodeImpl(NodeOperate), Target: target, Left: left, Operator: op, Right: right}
}

// While repeats Body as long as Control is non-zero.
type While struct {
	nodeImpl
	statementMarker

	Control string    `json:"control"`
	Body    Statement `json:"body"`
}

func NewWhile(control string, body Statement) *While {
	return &While{nodeImpl: newNodeImpl(NodeWhile), Control: control, Body: body}
}
