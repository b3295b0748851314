package otp

import (
	"crypto/subtle"
	"time"
)

// DefaultChallengeTTL is the expiry advertised in passcode emails.
const DefaultChallengeTTL = 5 * time.Minute

// Challenge pairs a delivered passcode with its expiry so a caller can enforce
// it. The email path itself only mentions the expiry; nothing in this module
// enforces it unless the caller checks a Challenge.
type Challenge struct {
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewChallenge returns a Challenge that expires ttl after issuedAt. A
// non-positive ttl uses DefaultChallengeTTL.
func NewChallenge(code string, issuedAt time.Time, ttl time.Duration) Challenge {
	if ttl <= 0 {
		ttl = DefaultChallengeTTL
	}
	return Challenge{Code: code, IssuedAt: issuedAt, ExpiresAt: issuedAt.Add(ttl)}
}

// Expired reports whether at is at or past the expiry.
func (c Challenge) Expired(at time.Time) bool {
	return !at.Before(c.ExpiresAt)
}

// Verify reports whether candidate equals the code and the challenge has not
// expired at the given time.
func (c Challenge) Verify(candidate string, at time.Time) bool {
	if c.Code == "" || c.Expired(at) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(c.Code)) == 1
}
