// Package jwt issues and verifies the short-lived session token handed out
// once a second factor has been accepted. The amr claim records which factor
// that was.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL applies when Config.TTL is zero.
const DefaultTTL = 60 * time.Minute

// minHS512KeyLen is the HS512 block size in bytes.
const minHS512KeyLen = 64

var (
	ErrSigningKeyTooShort   = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")
	ErrSubjectRequired      = errors.New("JWT subject is required")
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")
	// ErrTokenExpired is kept apart from ErrInvalidToken so callers can tell
	// the user to verify again instead of reporting tampering.
	ErrTokenExpired = errors.New("JWT token has expired")
	ErrInvalidToken = errors.New("invalid token")
)

// Factor names written to the amr claim (RFC 8176).
const (
	MethodOTP  = "otp"
	MethodTOTP = "totp"
)

// JWT issues a token for a verified subject and checks tokens it issued.
type JWT interface {
	Generate(subject string, methods ...string) (string, error)
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config is read from the jwt.* configuration keys.
type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	// TTL of zero means DefaultTTL.
	TTL   time.Duration
	Clock clocker
	// UUID produces the jti claim.
	UUID generator
}

// Claims are the registered claims plus the verified factors.
type Claims struct {
	jwt.RegisteredClaims
	Methods []string `json:"amr,omitempty"`
}
