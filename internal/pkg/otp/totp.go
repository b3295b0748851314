package otp

import (
	"crypto/subtle"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
)

const (
	// DefaultPeriod is the TOTP time step used by common authenticator apps.
	DefaultPeriod = 30 * time.Second
	// DefaultDigits is the default code length.
	DefaultDigits = 6
	// MinDigits and MaxDigits bound the code length for TOTP and email passcodes.
	MinDigits = 4
	MaxDigits = 10
	// DefaultWindow is the number of time steps accepted on either side of
	// the current one.
	DefaultWindow = 1
)

type clocker interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Engine computes and verifies TOTP codes for a single shared secret.
//
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	// secret is the canonical Base32 form handed to hotp.
	secret    string
	period    time.Duration
	digits    otp.Digits
	algorithm otp.Algorithm
	clock     clocker
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithPeriod sets the time step. It must be a positive whole number of seconds.
func WithPeriod(period time.Duration) EngineOption {
	return func(e *Engine) { e.period = period }
}

// WithDigits sets the code length, between MinDigits and MaxDigits.
func WithDigits(digits int) EngineOption {
	return func(e *Engine) { e.digits = otp.Digits(digits) }
}

// WithAlgorithm sets the HMAC hash. SHA1 is the authenticator default.
func WithAlgorithm(alg otp.Algorithm) EngineOption {
	return func(e *Engine) { e.algorithm = alg }
}

// WithClock sets the time source used by VerifyNow and Now.
func WithClock(c clocker) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// NewEngine builds an Engine from a Base32 secret.
func NewEngine(secret string, opts ...EngineOption) (*Engine, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return nil, err
	}
	return newEngine(key, opts)
}

// NewEngineFromBytes builds an Engine from raw key bytes.
func NewEngineFromBytes(key []byte, opts ...EngineOption) (*Engine, error) {
	if len(key) == 0 {
		return nil, goerror.NewInvalidParameter("secret", "must not be empty")
	}
	return newEngine(append([]byte(nil), key...), opts)
}

func newEngine(key []byte, opts []EngineOption) (*Engine, error) {
	e := &Engine{
		secret:    EncodeSecret(key),
		period:    DefaultPeriod,
		digits:    otp.Digits(DefaultDigits),
		algorithm: otp.AlgorithmSHA1,
		clock:     systemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := validatePeriod(e.period); err != nil {
		return nil, err
	}
	if err := validateDigits(int(e.digits)); err != nil {
		return nil, err
	}
	if err := validateAlgorithm(e.algorithm); err != nil {
		return nil, err
	}

	return e, nil
}

// Secret returns the Base32 form of the engine key.
func (e *Engine) Secret() string { return e.secret }

// Period returns the time step.
func (e *Engine) Period() time.Duration { return e.period }

// Digits returns the code length.
func (e *Engine) Digits() int { return int(e.digits) }

// Algorithm returns the HMAC hash algorithm.
func (e *Engine) Algorithm() otp.Algorithm { return e.algorithm }

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time { return e.clock.Now() }

// Counter returns floor(unix seconds / period) for the given time.
func (e *Engine) Counter(at time.Time) int64 {
	step := int64(e.period / time.Second)
	unix := at.Unix()
	c := unix / step
	if unix%step != 0 && unix < 0 {
		c--
	}
	return c
}

// Code returns the TOTP code for the time step containing at.
func (e *Engine) Code(at time.Time) string {
	return e.CodeAt(e.Counter(at))
}

// CodeAt returns the HOTP value (RFC 4226) for a raw counter. Negative
// counters wrap as unsigned 64-bit values.
func (e *Engine) CodeAt(counter int64) string {
	code, err := hotp.GenerateCodeCustom(e.secret, uint64(counter), hotp.ValidateOpts{
		Digits:    e.digits,
		Algorithm: e.algorithm,
	})
	if err != nil {
		// e.secret is produced by EncodeSecret, so it always decodes.
		return ""
	}
	return code
}

// Verify reports whether candidate matches the code of any time step within
// window steps of at. Only the matching outcome is returned; a mismatch is
// not an error.
func (e *Engine) Verify(candidate string, at time.Time, window int) bool {
	_, ok := e.Match(candidate, at, window)
	return ok
}

// VerifyNow verifies candidate at the engine clock's current time with
// DefaultWindow.
func (e *Engine) VerifyNow(candidate string) bool {
	return e.Verify(candidate, e.clock.Now(), DefaultWindow)
}

// Match is Verify that also returns the accepted counter. Counters are tried
// outward from the current one: 0, -1, +1, -2, +2 and so on.
//
// The engine keeps no record of accepted counters, so a code can be accepted
// again while it stays inside the window. Callers that need replay protection
// store the returned counter and reject values at or below it.
func (e *Engine) Match(candidate string, at time.Time, window int) (int64, bool) {
	if len(candidate) != int(e.digits) {
		return 0, false
	}
	window = max(window, 0)

	current := e.Counter(at)
	for i := 0; i <= window; i++ {
		for _, counter := range offsets(current, i) {
			code := e.CodeAt(counter)
			if subtle.ConstantTimeCompare([]byte(code), []byte(candidate)) == 1 {
				return counter, true
			}
		}
	}

	return 0, false
}

func offsets(current int64, i int) []int64 {
	if i == 0 {
		return []int64{current}
	}
	return []int64{current - int64(i), current + int64(i)}
}

func validatePeriod(period time.Duration) error {
	if period < time.Second || period%time.Second != 0 {
		return goerror.NewInvalidParameter("period", "must be a positive whole number of seconds")
	}
	return nil
}

func validateDigits(digits int) error {
	if digits < MinDigits || digits > MaxDigits {
		return goerror.NewInvalidParameter("digits", "must be between 4 and 10")
	}
	return nil
}

func validateAlgorithm(alg otp.Algorithm) error {
	switch alg {
	case otp.AlgorithmSHA1, otp.AlgorithmSHA256, otp.AlgorithmSHA512:
		return nil
	default:
		return goerror.NewInvalidParameter("algorithm", "must be SHA1, SHA256 or SHA512")
	}
}

// ParseAlgorithm maps a name such as "sha256" to an otp.Algorithm. An empty
// name selects SHA1.
func ParseAlgorithm(name string) (otp.Algorithm, error) {
	switch name {
	case "", "SHA1", "sha1":
		return otp.AlgorithmSHA1, nil
	case "SHA256", "sha256":
		return otp.AlgorithmSHA256, nil
	case "SHA512", "sha512":
		return otp.AlgorithmSHA512, nil
	default:
		return otp.AlgorithmSHA1, goerror.NewInvalidParameter("algorithm", "must be SHA1, SHA256 or SHA512")
	}
}
