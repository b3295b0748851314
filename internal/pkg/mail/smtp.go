package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

var (
	// ErrSMTPHostPortRequired is returned when Host/Port are missing.
	ErrSMTPHostPortRequired = errors.New("smtp host and port are required")
	// ErrSMTPNoRecipients is returned when To/Cc/Bcc are all empty.
	ErrSMTPNoRecipients = errors.New("no recipients provided")
	// ErrSMTPNoSender is returned when both Message.From and the configured default From are empty.
	ErrSMTPNoSender = errors.New("no sender provided")
	// ErrSMTPUnknownTLSPolicy is returned for an unrecognized TLS policy name.
	ErrSMTPUnknownTLSPolicy = errors.New("unknown smtp tls policy")
)

// SMTP is a Mail implementation backed by github.com/wneessen/go-mail.
//
// A go-mail Client holds a single connection, so Send builds a fresh client
// for every message. One SMTP value can be shared by concurrent callers.
type SMTP struct {
	host        string
	options     []gomail.Option
	defaultFrom string
}

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	// Provider selects a preset host and port; empty or "custom" uses Host/Port.
	Provider string
	// Host is the SMTP server hostname. It overrides the provider preset.
	Host string
	// Port is the SMTP server port. It overrides the provider preset.
	Port int
	// Username enables AUTH PLAIN. Empty means the relay accepts mail
	// without authentication.
	Username string
	Password string
	// From is the default sender when Message.From is empty. Falls back to Username.
	From string
	// TLSPolicy is "mandatory" (default), "opportunistic" or "none".
	TLSPolicy string
	// SSL connects with implicit TLS instead of STARTTLS.
	SSL bool
	// Timeout bounds dialing and each SMTP command; zero keeps the library default.
	Timeout time.Duration
}

// NewSMTP validates cfg and returns an SMTP mail sender. No connection is
// opened until Send.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	provider, err := ParseProvider(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, cfg.Provider)
	}
	if cfg.Host == "" {
		cfg.Host = provider.Host()
	}
	if cfg.Port == 0 {
		cfg.Port = provider.Port()
	}
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	policy, err := parseTLSPolicy(cfg.TLSPolicy)
	if err != nil {
		return nil, err
	}

	options := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(policy),
	}
	if cfg.SSL {
		options = append(options, gomail.WithSSL())
	}
	if cfg.Timeout > 0 {
		options = append(options, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	} else {
		// A custom mechanism with a nil Auth makes go-mail skip AUTH entirely.
		options = append(options, gomail.WithSMTPAuthCustom(nil))
	}

	s := &SMTP{host: cfg.Host, options: options, defaultFrom: cfg.From}
	if s.defaultFrom == "" {
		s.defaultFrom = cfg.Username
	}

	// Surface option errors now rather than on the first Send.
	if _, err := s.newClient(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *SMTP) newClient() (*gomail.Client, error) {
	return gomail.NewClient(s.host, s.options...)
}

// Send dials the server, delivers one message and closes the connection.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := buildMsg(msg, s.defaultFrom)
	if err != nil {
		return err
	}

	client, err := s.newClient()
	if err != nil {
		return err
	}

	return client.DialAndSendWithContext(ctx, m)
}

// Close is a no-op: every Send closes its own connection.
func (s *SMTP) Close() error {
	return nil
}

func buildMsg(msg Message, defaultFrom string) (*gomail.Msg, error) {
	if len(msg.Recipients()) == 0 {
		return nil, ErrSMTPNoRecipients
	}

	from := msg.From
	if from == "" {
		from = defaultFrom
	}
	if from == "" {
		return nil, ErrSMTPNoSender
	}

	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, err
	}
	if len(msg.To) > 0 {
		if err := m.To(msg.To...); err != nil {
			return nil, err
		}
	}
	if len(msg.Cc) > 0 {
		if err := m.Cc(msg.Cc...); err != nil {
			return nil, err
		}
	}
	if len(msg.Bcc) > 0 {
		if err := m.Bcc(msg.Bcc...); err != nil {
			return nil, err
		}
	}

	m.Subject(msg.Subject)
	m.SetMessageID()
	m.SetDate()

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)
	default:
		m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	}

	return m, nil
}

func parseTLSPolicy(name string) (gomail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mandatory":
		return gomail.TLSMandatory, nil
	case "opportunistic":
		return gomail.TLSOpportunistic, nil
	case "none":
		return gomail.NoTLS, nil
	default:
		return gomail.TLSMandatory, fmt.Errorf("%w: %q", ErrSMTPUnknownTLSPolicy, name)
	}
}
