package otp

import (
	"crypto/rand"
	"encoding/base32"
	"io"
	"strings"

	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
)

const (
	// MinSecretSize is the smallest raw secret (128 bits) the generator produces.
	MinSecretSize = 16
	// DefaultSecretSize is the RFC 4226 recommended secret length (160 bits).
	DefaultSecretSize = 20

	// minDecodedSecretSize is the floor accepted when importing secrets
	// created elsewhere; some authenticators still issue 80-bit keys.
	minDecodedSecretSize = 10
)

var b32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// SecretGenerator produces random shared secrets encoded as Base32.
type SecretGenerator struct {
	rand io.Reader
	size int
}

// SecretOption customizes a SecretGenerator.
type SecretOption func(*SecretGenerator)

// WithSecretSize sets the raw secret size in bytes. Values below
// MinSecretSize are raised to MinSecretSize.
func WithSecretSize(size int) SecretOption {
	return func(g *SecretGenerator) {
		g.size = max(size, MinSecretSize)
	}
}

// WithSecretRand replaces the random source (crypto/rand by default).
func WithSecretRand(r io.Reader) SecretOption {
	return func(g *SecretGenerator) {
		if r != nil {
			g.rand = r
		}
	}
}

// NewSecretGenerator returns a generator that draws DefaultSecretSize bytes
// from crypto/rand unless configured otherwise.
func NewSecretGenerator(opts ...SecretOption) *SecretGenerator {
	g := &SecretGenerator{rand: rand.Reader, size: DefaultSecretSize}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a fresh secret as uppercase Base32 without padding.
func (g *SecretGenerator) Generate() (string, error) {
	raw := make([]byte, g.size)
	if _, err := io.ReadFull(g.rand, raw); err != nil {
		return "", goerror.NewEntropySource(err)
	}
	return b32NoPadding.EncodeToString(raw), nil
}

// NormalizeSecret upper-cases a Base32 secret and strips whitespace and
// padding, the form authenticator apps display.
func NormalizeSecret(secret string) string {
	secret = strings.ToUpper(strings.Join(strings.Fields(secret), ""))
	return strings.TrimRight(secret, "=")
}

// DecodeSecret decodes a Base32 secret, tolerating lower case, spaces and
// missing padding.
func DecodeSecret(secret string) ([]byte, error) {
	normalized := NormalizeSecret(secret)
	if normalized == "" {
		return nil, goerror.NewInvalidParameter("secret", "must not be empty")
	}

	raw, err := b32NoPadding.DecodeString(normalized)
	if err != nil {
		return nil, goerror.NewInvalidParameter("secret", "must be valid base32")
	}

	if len(raw) < minDecodedSecretSize {
		return nil, goerror.NewInvalidParameter("secret", "must decode to at least 10 bytes")
	}

	return raw, nil
}

// EncodeSecret encodes raw key bytes in the form produced by Generate.
func EncodeSecret(raw []byte) string {
	return b32NoPadding.EncodeToString(raw)
}
