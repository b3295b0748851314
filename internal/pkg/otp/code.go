package otp

import (
	"crypto/rand"
	"io"
	"math/big"
	"strings"

	"github.com/samber/lo"

	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
)

const (
	// CharsetNumeric is the default passcode alphabet.
	CharsetNumeric = "0123456789"
	// CharsetAlphanumeric adds upper-case letters for higher entropy per character.
	CharsetAlphanumeric = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// CodeGenerator produces random passcodes for out-of-band delivery.
//
// Each character is drawn independently and uniformly from the charset using
// a cryptographically secure source.
type CodeGenerator struct {
	rand    io.Reader
	charset string
	err     error
}

// CodeOption customizes a CodeGenerator.
type CodeOption func(*CodeGenerator)

// WithCharset sets the passcode alphabet. An empty charset keeps the default;
// one rejected by ValidateCharset makes every Generate call fail.
func WithCharset(charset string) CodeOption {
	return func(g *CodeGenerator) {
		if charset == "" {
			return
		}
		if err := ValidateCharset(charset); err != nil {
			g.err = err
			return
		}
		g.charset = charset
	}
}

// ValidateCharset reports whether charset can serve as a passcode alphabet:
// at least two distinct printable ASCII characters without spaces.
func ValidateCharset(charset string) error {
	if len(charset) < 2 {
		return goerror.NewInvalidParameter("charset", "must contain at least 2 characters")
	}
	for i := range len(charset) {
		if c := charset[i]; c <= ' ' || c > '~' {
			return goerror.NewInvalidParameter("charset", "must contain printable ASCII characters only")
		}
	}
	if dup := lo.FindDuplicates([]byte(charset)); len(dup) > 0 {
		return goerror.NewInvalidParameter("charset", "duplicate character "+string(dup[0]))
	}
	return nil
}

// WithCodeRand replaces the random source (crypto/rand by default).
func WithCodeRand(r io.Reader) CodeOption {
	return func(g *CodeGenerator) {
		if r != nil {
			g.rand = r
		}
	}
}

// NewCodeGenerator returns a numeric passcode generator backed by crypto/rand.
func NewCodeGenerator(opts ...CodeOption) *CodeGenerator {
	g := &CodeGenerator{rand: rand.Reader, charset: CharsetNumeric}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a passcode of the given length.
func (g *CodeGenerator) Generate(length int) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if err := validateDigits(length); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(length)

	n := big.NewInt(int64(len(g.charset)))
	for range length {
		idx, err := rand.Int(g.rand, n)
		if err != nil {
			return "", goerror.NewEntropySource(err)
		}
		sb.WriteByte(g.charset[idx.Int64()])
	}

	return sb.String(), nil
}
