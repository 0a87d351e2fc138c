package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/zeebo/blake3"
)

const checksumSize = 32

var ErrChecksumMismatch = errors.New("checksum mismatch")

// Checksum returns the hex BLAKE3-256 digest of data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ChecksumFile hashes the file at path.
func ChecksumFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("checksum: read %s: %w", path, err)
	}
	return Checksum(data), nil
}

// VerifyChecksum compares the digest of path with want. An empty want
// accepts any content and only reports the actual digest.
func VerifyChecksum(path, want string) (string, error) {
	got, err := ChecksumFile(path)
	if err != nil {
		return "", err
	}
	if want != "" && got != want {
		return got, fmt.Errorf("checksum: %s has %s, manifest pins %s: %w", path, got, want, ErrChecksumMismatch)
	}
	return got, nil
}
