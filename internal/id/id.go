// Package id generates prefixed identifiers for journal entities.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes. A prefix makes ids self-describing in logs and URLs.
const (
	PrefixUser     = "usr"
	PrefixSession  = "ses"
	PrefixNotebook = "nb"
	PrefixPage     = "pg"
	PrefixElement  = "el"
	PrefixMedia    = "med"
)

// Generate creates a prefixed unique ID, e.g. "el-V1StGXR8_Z5jdHi6B-myT".
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// HasPrefix reports whether s was generated with prefix.
func HasPrefix(s, prefix string) bool {
	return strings.HasPrefix(s, prefix+"-") && len(s) > len(prefix)+1
}
