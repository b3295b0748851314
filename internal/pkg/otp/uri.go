package otp

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
)

// ProvisioningParams are the values encoded in an otpauth:// URI.
type ProvisioningParams struct {
	// Secret is the Base32 shared secret.
	Secret string
	// AccountName identifies the user, usually an email address.
	AccountName string
	// Issuer names the service shown in the authenticator app.
	Issuer string
	// Digits is the code length; zero means DefaultDigits.
	Digits int
	// Period is the time step; zero means DefaultPeriod.
	Period time.Duration
	// Algorithm is the HMAC hash; the zero value is SHA1.
	Algorithm otp.Algorithm
}

// BuildProvisioningURI formats params as
// otpauth://totp/{issuer}:{account}?algorithm=..&digits=..&issuer=..&period=..&secret=..
// which authenticator apps import from a QR code.
func BuildProvisioningURI(p ProvisioningParams) (string, error) {
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}

	p.Secret = NormalizeSecret(p.Secret)
	if p.Secret == "" {
		return "", goerror.NewInvalidParameter("secret", "must not be empty")
	}
	if err := validateLabelPart("account_name", p.AccountName); err != nil {
		return "", err
	}
	if err := validateLabelPart("issuer", p.Issuer); err != nil {
		return "", err
	}
	if err := validateDigits(p.Digits); err != nil {
		return "", err
	}
	if err := validatePeriod(p.Period); err != nil {
		return "", err
	}
	if err := validateAlgorithm(p.Algorithm); err != nil {
		return "", err
	}

	v := url.Values{}
	v.Set("secret", p.Secret)
	v.Set("issuer", p.Issuer)
	v.Set("digits", strconv.Itoa(p.Digits))
	v.Set("period", strconv.FormatInt(int64(p.Period/time.Second), 10))
	v.Set("algorithm", p.Algorithm.String())

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + p.Issuer + ":" + p.AccountName,
		RawQuery: v.Encode(),
	}

	return u.String(), nil
}

// ProvisioningURI returns the URI for this engine's secret and parameters.
func (e *Engine) ProvisioningURI(accountName, issuer string) (string, error) {
	return BuildProvisioningURI(ProvisioningParams{
		Secret:      e.secret,
		AccountName: accountName,
		Issuer:      issuer,
		Digits:      int(e.digits),
		Period:      e.period,
		Algorithm:   e.algorithm,
	})
}

// ParseProvisioningURI reads an otpauth://totp URI back into its parameters.
func ParseProvisioningURI(uri string) (ProvisioningParams, error) {
	key, err := otp.NewKeyFromURL(strings.TrimSpace(uri))
	if err != nil {
		return ProvisioningParams{}, goerror.NewInvalidFormat("invalid provisioning uri")
	}
	if key.Type() != "totp" {
		return ProvisioningParams{}, goerror.NewInvalidParameter("uri", "must be an otpauth://totp uri")
	}

	return ProvisioningParams{
		Secret:      key.Secret(),
		AccountName: key.AccountName(),
		Issuer:      key.Issuer(),
		Digits:      key.Digits().Length(),
		Period:      time.Duration(key.Period()) * time.Second,
		Algorithm:   key.Algorithm(),
	}, nil
}

// Engine builds an Engine from parsed parameters.
func (p ProvisioningParams) Engine(opts ...EngineOption) (*Engine, error) {
	base := []EngineOption{WithAlgorithm(p.Algorithm)}
	if p.Digits != 0 {
		base = append(base, WithDigits(p.Digits))
	}
	if p.Period != 0 {
		base = append(base, WithPeriod(p.Period))
	}
	return NewEngine(p.Secret, append(base, opts...)...)
}

func validateLabelPart(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return goerror.NewInvalidParameter(field, "must not be empty")
	}
	if strings.Contains(value, ":") {
		return goerror.NewInvalidParameter(field, "must not contain ':'")
	}
	return nil
}
