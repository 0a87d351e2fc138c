package driver

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Fish-o/whily/pkg/config"
)

// ManifestFileName is the project file looked up by FindManifest.
const ManifestFileName = "whily.yml"

var (
	ErrManifestNotFound = errors.New("manifest: whily.yml not found")
	ErrNoTargets        = errors.New("manifest: no targets defined")
)

// Manifest represents the parsed contents of whily.yml.
type Manifest struct {
	Path        string
	Dir         string
	Name        string
	Flags       []string
	MaxLoops    int
	Targets     map[string]*TargetSpec
	TargetOrder []string
	Sources     map[string]*SourceSpec
}

// TargetSpec names a program file inside the project.
type TargetSpec struct {
	Name         string
	OriginalName string
	Main         string
}

// SourceSpec describes a program kept in a git repository.
type SourceSpec struct {
	Name     string
	Git      string
	Rev      string
	Tag      string
	Branch   string
	Path     string
	Checksum string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest reads and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, errors.New("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", absPath, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("manifest: %s is empty", absPath)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var raw manifestFile
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	m := raw.toManifest(absPath)
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// FindManifest returns the nearest whily.yml in start or one of its parents.
// start may also name a file, in which case its directory is searched first.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("manifest: resolve %s: %w", start, err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for cur := dir; ; {
		candidate := filepath.Join(cur, ManifestFileName)
		switch info, err := os.Stat(candidate); {
		case err == nil && !info.IsDir():
			return candidate, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("no %s in %s or its parents: %w", ManifestFileName, dir, ErrManifestNotFound)
		}
		cur = parent
	}
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for _, flag := range m.Flags {
		if _, err := (config.Config{}).Enabled(flag); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("flags: unknown flag %q", flag))
		}
	}
	if m.MaxLoops < 0 {
		errs.Issues = append(errs.Issues, "max_loops must not be negative")
	}

	for _, name := range m.TargetOrder {
		target := m.Targets[name]
		if target.Main == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main program", target.OriginalName))
		}
	}
	for name, src := range m.Sources {
		if _, clash := m.Targets[name]; clash {
			errs.Issues = append(errs.Issues, fmt.Sprintf("source %q shadows a target of the same name", name))
		}
		for _, issue := range src.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("sources.%s: %s", name, issue))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (s *SourceSpec) validate() []string {
	var errs []string
	if s.Git == "" {
		errs = append(errs, "git URL required")
	}
	refs := 0
	for _, ref := range []string{s.Rev, s.Tag, s.Branch} {
		if ref != "" {
			refs++
		}
	}
	if refs != 1 {
		errs = append(errs, "exactly one of rev, tag or branch is required")
	}
	if s.Path == "" {
		errs = append(errs, "path to the program inside the repository required")
	} else if filepath.IsAbs(s.Path) || strings.HasPrefix(filepath.Clean(s.Path), "..") {
		errs = append(errs, fmt.Sprintf("path %q must stay inside the repository", s.Path))
	}
	if s.Checksum != "" {
		if raw, err := hex.DecodeString(s.Checksum); err != nil || len(raw) != checksumSize {
			errs = append(errs, fmt.Sprintf("checksum %q is not a %d-byte hex digest", s.Checksum, checksumSize))
		}
	}
	return errs
}

// Config returns the dialect flags the manifest enables.
func (m *Manifest) Config() config.Config {
	var cfg config.Config
	// validate already rejected unknown names
	_ = cfg.EnableAll(m.Flags)
	return cfg
}

// DefaultTarget returns the first target in manifest order.
func (m *Manifest) DefaultTarget() (*TargetSpec, error) {
	if m == nil || len(m.TargetOrder) == 0 {
		return nil, ErrNoTargets
	}
	return m.Targets[m.TargetOrder[0]], nil
}

// FindTarget looks up a target by sanitized or original name.
func (m *Manifest) FindTarget(name string) (*TargetSpec, bool) {
	if m == nil {
		return nil, false
	}
	name = strings.TrimSpace(name)
	if target, ok := m.Targets[sanitizeSegment(name)]; ok {
		return target, true
	}
	for _, key := range m.TargetOrder {
		if strings.EqualFold(m.Targets[key].OriginalName, name) {
			return m.Targets[key], true
		}
	}
	return nil, false
}

// FindSource looks up a git source by name.
func (m *Manifest) FindSource(name string) (*SourceSpec, bool) {
	if m == nil {
		return nil, false
	}
	src, ok := m.Sources[sanitizeSegment(strings.TrimSpace(name))]
	return src, ok
}

// SourceNames lists the git sources in a stable order.
func (m *Manifest) SourceNames() []string {
	names := make([]string, 0, len(m.Sources))
	for name := range m.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TargetPath resolves a target's program relative to the manifest.
func (m *Manifest) TargetPath(target *TargetSpec) string {
	if filepath.IsAbs(target.Main) {
		return target.Main
	}
	return filepath.Join(m.Dir, filepath.FromSlash(target.Main))
}

type manifestFile struct {
	Name     string     `yaml:"name"`
	Flags    stringList `yaml:"flags"`
	MaxLoops int        `yaml:"max_loops"`
	Targets  targetMap  `yaml:"targets"`
	Sources  sourceMap  `yaml:"sources"`
}

type targetMap struct {
	items []TargetSpec
}

// UnmarshalYAML keeps targets in file order. A target is either a bare path
// or a mapping with a main key.
func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	tm.items = nil
	return eachPair(value, "targets", func(key string, node *yaml.Node) error {
		target := TargetSpec{OriginalName: key}
		switch node.Kind {
		case yaml.ScalarNode:
			target.Main = strings.TrimSpace(node.Value)
		case yaml.MappingNode:
			var raw struct {
				Main string `yaml:"main"`
			}
			if err := decodeKnown(node, &raw, "main"); err != nil {
				return fmt.Errorf("manifest: target %q: %w", key, err)
			}
			target.Main = strings.TrimSpace(raw.Main)
		default:
			return fmt.Errorf("manifest: target %q: expected path or mapping, found %s", key, node.ShortTag())
		}
		tm.items = append(tm.items, target)
		return nil
	})
}

type sourceMap map[string]*SourceSpec

func (sm *sourceMap) UnmarshalYAML(value *yaml.Node) error {
	result := make(sourceMap)
	err := eachPair(value, "sources", func(key string, node *yaml.Node) error {
		var raw struct {
			Git      string `yaml:"git"`
			Rev      string `yaml:"rev"`
			Tag      string `yaml:"tag"`
			Branch   string `yaml:"branch"`
			Path     string `yaml:"path"`
			Checksum string `yaml:"checksum"`
		}
		if err := decodeKnown(node, &raw, "git", "rev", "tag", "branch", "path", "checksum"); err != nil {
			return fmt.Errorf("manifest: source %q: %w", key, err)
		}
		trim := strings.TrimSpace
		result[key] = &SourceSpec{
			Name:     sanitizeSegment(key),
			Git:      trim(raw.Git),
			Rev:      trim(raw.Rev),
			Tag:      trim(raw.Tag),
			Branch:   trim(raw.Branch),
			Path:     trim(raw.Path),
			Checksum: strings.ToLower(trim(raw.Checksum)),
		}
		return nil
	})
	if err != nil {
		return err
	}
	*sm = result
	return nil
}

// eachPair calls fn for every key of a mapping node in file order. An absent
// or null node has no pairs.
func eachPair(node *yaml.Node, what string, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: %s must be a mapping, found %s", what, node.ShortTag())
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}
		if key = strings.TrimSpace(key); key == "" {
			return fmt.Errorf("manifest: %s line %d: empty name", what, node.Content[i].Line)
		}
		if err := fn(key, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// decodeKnown decodes a mapping node, rejecting keys outside allowed. Nested
// Decode calls do not inherit the top-level decoder's KnownFields setting.
func decodeKnown(node *yaml.Node, out any, allowed ...string) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping, found %s", node.ShortTag())
	}
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !slices.Contains(allowed, key) {
			return fmt.Errorf("line %d: field %s not found", node.Content[i].Line, key)
		}
	}
	return node.Decode(out)
}

// stringList accepts either a single name or a sequence of names.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.AliasNode {
		value = value.Alias
	}
	var raw []string
	switch value.Kind {
	case 0:
	case yaml.ScalarNode:
		if value.Tag != "!!null" {
			raw = []string{value.Value}
		}
	case yaml.SequenceNode:
		if err := value.Decode(&raw); err != nil {
			return fmt.Errorf("manifest: line %d: %w", value.Line, err)
		}
	default:
		return fmt.Errorf("manifest: line %d: expected a name or a list of names, found %s", value.Line, value.ShortTag())
	}
	*l = nil
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}
	return nil
}

func (mf manifestFile) toManifest(path string) *Manifest {
	m := &Manifest{
		Path:     path,
		Dir:      filepath.Dir(path),
		Name:     sanitizeSegment(mf.Name),
		Flags:    slices.Clone([]string(mf.Flags)),
		MaxLoops: mf.MaxLoops,
		Targets:  make(map[string]*TargetSpec, len(mf.Targets.items)),
		Sources:  make(map[string]*SourceSpec, len(mf.Sources)),
	}
	for _, item := range mf.Targets.items {
		key := sanitizeSegment(item.OriginalName)
		if _, dup := m.Targets[key]; dup {
			continue
		}
		item := item
		item.Name = key
		m.Targets[key] = &item
		m.TargetOrder = append(m.TargetOrder, key)
	}
	for _, src := range mf.Sources {
		m.Sources[src.Name] = src
	}
	return m
}

// sanitizeSegment makes hyphenated and underscored names interchangeable.
func sanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.ReplaceAll(seg, "-", "_")
	return seg
}
