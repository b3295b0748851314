package otp

import (
	"time"

	"github.com/pquerna/otp"
)

// OTP defines the contract for TOTP operations.
type OTP interface {
	// Generate creates a secret and provisioning URI for an account name.
	Generate(accountName string) (secret string, uri string, err error)
	// Validate checks whether a code is valid at the given time and returns
	// the accepted counter.
	Validate(code, secret string, at time.Time) (counter int64, ok bool, err error)
	// GenerateCode creates a TOTP code for the given secret and time.
	GenerateCode(secret string, at time.Time) (string, error)
	// Issuer returns the configured issuer.
	Issuer() string
	// Period returns the configured time step.
	Period() time.Duration
}

// TOTPConfig configures TOTP.
type TOTPConfig struct {
	// Issuer is the service name shown in authenticator apps.
	Issuer string
	// Period is the time step; zero means DefaultPeriod.
	Period time.Duration
	// Skew is the number of steps accepted on either side; negative means
	// DefaultWindow.
	Skew int
	// Digits is the code length; zero means DefaultDigits.
	Digits int
	// Algorithm is the HMAC hash.
	Algorithm otp.Algorithm
	// SecretSize is the raw secret size in bytes; zero means DefaultSecretSize.
	SecretSize int
}

// TOTP implements OTP on top of Engine with fixed parameters.
type TOTP struct {
	issuer    string
	period    time.Duration
	skew      int
	digits    int
	algorithm otp.Algorithm
	secrets   *SecretGenerator
}

// NewTOTP constructs a TOTP instance with sensible defaults. Parameters are
// validated eagerly so a misconfiguration fails at startup.
func NewTOTP(cfg TOTPConfig) (*TOTP, error) {
	if cfg.Period == 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.Digits == 0 {
		cfg.Digits = DefaultDigits
	}
	if cfg.Skew < 0 {
		cfg.Skew = DefaultWindow
	}
	if cfg.SecretSize == 0 {
		cfg.SecretSize = DefaultSecretSize
	}

	if err := validateLabelPart("issuer", cfg.Issuer); err != nil {
		return nil, err
	}
	if err := validatePeriod(cfg.Period); err != nil {
		return nil, err
	}
	if err := validateDigits(cfg.Digits); err != nil {
		return nil, err
	}
	if err := validateAlgorithm(cfg.Algorithm); err != nil {
		return nil, err
	}

	return &TOTP{
		issuer:    cfg.Issuer,
		period:    cfg.Period,
		skew:      cfg.Skew,
		digits:    cfg.Digits,
		algorithm: cfg.Algorithm,
		secrets:   NewSecretGenerator(WithSecretSize(cfg.SecretSize)),
	}, nil
}

// Issuer returns the configured issuer.
func (o *TOTP) Issuer() string {
	return o.issuer
}

// Period returns the configured time step.
func (o *TOTP) Period() time.Duration {
	return o.period
}

// Generate creates a secret and provisioning URI for an account name.
func (o *TOTP) Generate(accountName string) (secret string, uri string, err error) {
	secret, err = o.secrets.Generate()
	if err != nil {
		return "", "", err
	}

	engine, err := o.engine(secret)
	if err != nil {
		return "", "", err
	}

	uri, err = engine.ProvisioningURI(accountName, o.issuer)
	if err != nil {
		return "", "", err
	}

	return secret, uri, nil
}

// Validate checks whether a code is valid at the given time. A malformed
// secret is an error; a wrong code is not.
func (o *TOTP) Validate(code, secret string, at time.Time) (int64, bool, error) {
	engine, err := o.engine(secret)
	if err != nil {
		return 0, false, err
	}

	counter, ok := engine.Match(code, at, o.skew)
	return counter, ok, nil
}

// GenerateCode creates a TOTP code for the given secret and time.
func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	engine, err := o.engine(secret)
	if err != nil {
		return "", err
	}
	return engine.Code(at), nil
}

func (o *TOTP) engine(secret string) (*Engine, error) {
	return NewEngine(secret,
		WithPeriod(o.period),
		WithDigits(o.digits),
		WithAlgorithm(o.algorithm),
	)
}
