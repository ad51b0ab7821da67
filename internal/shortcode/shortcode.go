// Package shortcode generates the short keys identifying shortened URLs.
// A generated code is not guaranteed unique - the storage layer detects
// collisions on insert and the caller regenerates.
package shortcode

import (
	"crypto/rand"
	"math/big"
)

const symbols = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the fixed length of a generated short code.
const CodeLength = 6

// Generator produces short alphanumeric codes.
type Generator struct {
	length int
}

// New returns a Generator producing codes of the standard length.
func New() *Generator {
	return &Generator{length: CodeLength}
}

// Generate returns a random code drawn from the alphanumeric alphabet.
func (g *Generator) Generate() string {
	var result string

	for i := 0; i < g.length; i++ {
		randomIndex, _ := rand.Int(rand.Reader, big.NewInt(int64(len(symbols))))
		result += string(symbols[randomIndex.Int64()])
	}

	return result
}
