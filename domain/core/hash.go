package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Fingerprint hashes an uploaded file's bytes together with its column header so that
// re-uploads of the same content can be recognised by the store.
func Fingerprint(content []byte, columns []string) Hash {
	cols := append([]string(nil), columns...)
	sort.Strings(cols)

	h := sha256.New()
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(cols, "\x1f")))
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
