package jwt

import (
	"errors"
	"fmt"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// HS512Signer signs and verifies tokens with a shared HMAC secret.
type HS512Signer struct {
	cfg    Config
	parser *libJWT.Parser
}

// NewHS512 returns an HS512Signer. The secret must be at least 64 bytes.
func NewHS512(cfg Config) (*HS512Signer, error) {
	if len(cfg.Secret) < minHS512KeyLen {
		return nil, ErrSigningKeyTooShort
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	opts := []libJWT.ParserOption{
		libJWT.WithIssuer(cfg.Issuer),
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(cfg.Clock.Now),
	}
	if len(cfg.Audiences) > 0 {
		opts = append(opts, libJWT.WithAudience(cfg.Audiences...))
	}

	return &HS512Signer{cfg: cfg, parser: libJWT.NewParser(opts...)}, nil
}

// Generate signs a token for subject valid from now until now+TTL.
func (s *HS512Signer) Generate(subject string, methods ...string) (string, error) {
	if subject == "" {
		return "", ErrSubjectRequired
	}

	now := s.cfg.Clock.Now()
	claims := Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			ID:        s.cfg.UUID.Generate(),
			Subject:   subject,
			Issuer:    s.cfg.Issuer,
			Audience:  s.cfg.Audiences,
			IssuedAt:  libJWT.NewNumericDate(now),
			NotBefore: libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(s.cfg.TTL)),
		},
		Methods: methods,
	}

	return libJWT.NewWithClaims(libJWT.SigningMethodHS512, claims).SignedString(s.cfg.Secret)
}

// Verify returns the claims of a token this signer issued. An expired token
// yields ErrTokenExpired; any other failure wraps ErrInvalidToken.
func (s *HS512Signer) Verify(tokenStr string) (Claims, error) {
	var claims Claims
	_, err := s.parser.ParseWithClaims(tokenStr, &claims, s.key)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, libJWT.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	default:
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
}

func (s *HS512Signer) key(t *libJWT.Token) (any, error) {
	if t.Method != libJWT.SigningMethodHS512 {
		return nil, ErrInvalidSigningMethod
	}
	return s.cfg.Secret, nil
}
