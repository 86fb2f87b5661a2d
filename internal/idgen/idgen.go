// Package idgen generates the short, URL-safe ids used for catalog entries.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the character set of generated ids.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the number of characters in a generated id.
const Length = 9

// Func produces a fresh id. Catalog stores accept one so tests can supply
// deterministic ids.
type Func func() (string, error)

// Generate returns a new random id.
func Generate() (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return id, nil
}

// Sequence returns a Func yielding prefix1, prefix2, ... in order.
func Sequence(prefix string) Func {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("%s%d", prefix, n), nil
	}
}
