// Package shortcode generates random, URL-safe short codes.
package shortcode

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultLength is the number of symbols in a generated code.
const DefaultLength = 8

// Alphabet holds the 64 URL-safe symbols a code is drawn from.
const Alphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generator produces short codes of a fixed length from a cryptographically strong source.
// It does not consult existing codes; collisions are detected by the store.
type Generator struct {
	length int
}

// NewGenerator returns a Generator for codes of the given length.
// A non-positive length falls back to DefaultLength.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}

	return &Generator{length: length}
}

// Generate returns a new random short code.
func (g *Generator) Generate() (string, error) {
	const op = "shortcode.Generator.Generate"

	code, err := gonanoid.Generate(Alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	return code, nil
}

// Length returns the length of generated codes.
func (g *Generator) Length() int {
	return g.length
}
