package mail

import (
	"errors"
	"strings"
)

// Provider names a well-known SMTP relay.
type Provider string

const (
	ProviderCustom  Provider = "custom"
	ProviderGmail   Provider = "gmail"
	ProviderYahoo   Provider = "yahoo"
	ProviderOutlook Provider = "outlook"
	ProviderZoho    Provider = "zoho"
	ProviderAOL     Provider = "aol"
)

// DefaultSubmissionPort is the STARTTLS submission port used by every preset.
const DefaultSubmissionPort = 587

// ErrUnknownProvider is returned when a provider name has no preset.
var ErrUnknownProvider = errors.New("unknown smtp provider")

var providerHosts = map[Provider]string{
	ProviderGmail:   "smtp.gmail.com",
	ProviderYahoo:   "smtp.mail.yahoo.com",
	ProviderOutlook: "smtp-mail.outlook.com",
	ProviderZoho:    "smtp.zoho.com",
	ProviderAOL:     "smtp.aol.com",
}

// ParseProvider maps a configuration value to a Provider. Empty means custom.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if p == "" || p == ProviderCustom {
		return ProviderCustom, nil
	}
	if _, ok := providerHosts[p]; !ok {
		return "", ErrUnknownProvider
	}
	return p, nil
}

// Host returns the relay hostname, or "" for custom.
func (p Provider) Host() string {
	return providerHosts[p]
}

// Port returns the submission port for presets, or 0 for custom.
func (p Provider) Port() int {
	if p.Host() == "" {
		return 0
	}
	return DefaultSubmissionPort
}
