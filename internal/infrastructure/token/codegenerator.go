package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// MinCodeBytes is the minimum entropy of a license code.
const MinCodeBytes = 24

// CodeGenerator mints URL-safe license codes.
type CodeGenerator struct {
	size int
}

// NewCodeGenerator returns a generator producing codes with size random
// bytes, raised to MinCodeBytes when smaller.
func NewCodeGenerator(size int) *CodeGenerator {
	if size < MinCodeBytes {
		size = MinCodeBytes
	}
	return &CodeGenerator{size: size}
}

// Generate returns a base64url code without padding. 24 bytes yield 32 characters.
func (g *CodeGenerator) Generate() (string, error) {
	b := make([]byte, g.size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
