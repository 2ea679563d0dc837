package reservation

import (
	"math/rand/v2"
	"strings"
)

// Booking code shape: "BK" followed by six characters from CodeAlphabet.
const (
	CodePrefix   = "BK"
	CodeLength   = 6
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Generator produces candidate booking codes. Candidates are not checked
// for uniqueness.
type Generator interface {
	NewCode() string
}

// GeneratorFunc adapts a plain function to a Generator.
type GeneratorFunc func() string

// NewCode implements Generator.
func (f GeneratorFunc) NewCode() string { return f() }

// RandomGenerator draws codes uniformly from CodeAlphabet.
type RandomGenerator struct{}

// NewCode implements Generator.
func (RandomGenerator) NewCode() string {
	var b strings.Builder
	b.Grow(len(CodePrefix) + CodeLength)
	b.WriteString(CodePrefix)
	for range CodeLength {
		b.WriteByte(CodeAlphabet[rand.IntN(len(CodeAlphabet))])
	}
	return b.String()
}

// ValidCode reports whether s has the booking code shape.
func ValidCode(s string) bool {
	if len(s) != len(CodePrefix)+CodeLength || !strings.HasPrefix(s, CodePrefix) {
		return false
	}
	for i := len(CodePrefix); i < len(s); i++ {
		if strings.IndexByte(CodeAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}
