package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/gomfa/internal/mfa/outbound/email"
	"github.com/shandysiswandi/gomfa/internal/pkg/clock"
	"github.com/shandysiswandi/gomfa/internal/pkg/config"
	"github.com/shandysiswandi/gomfa/internal/pkg/instrument"
	"github.com/shandysiswandi/gomfa/internal/pkg/jwt"
	"github.com/shandysiswandi/gomfa/internal/pkg/mail"
	"github.com/shandysiswandi/gomfa/internal/pkg/otp"
	"github.com/shandysiswandi/gomfa/internal/pkg/qr"
	"github.com/shandysiswandi/gomfa/internal/pkg/uid"
	"github.com/shandysiswandi/gomfa/internal/pkg/validator"
)

const testConfig = `
app:
  name: Acme
mfa:
  otp:
    digits: 6
    expiry_minutes: 5
    subject: Your Acme code
`

type fakeMail struct {
	mu     sync.Mutex
	fail   map[string]error
	panics map[string]bool
	sent   []mail.Message
}

func (f *fakeMail) Send(ctx context.Context, msg mail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, to := range msg.To {
		if f.panics[to] {
			panic("mail transport crashed for " + to)
		}
		if err, ok := f.fail[to]; ok {
			return err
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMail) Sent() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.sent...)
}

type fixture struct {
	uc    *Usecase
	mail  *fakeMail
	clock *clock.Frozen
	totp  *otp.TOTP
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	tpl, err := email.NewTemplates()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}

	totp, err := otp.NewTOTP(otp.TOTPConfig{Issuer: "Acme", Skew: 1})
	if err != nil {
		t.Fatalf("totp: %v", err)
	}

	clk := clock.NewFrozen(time.Date(2026, 10, 18, 9, 30, 10, 0, time.UTC))

	tokens, err := jwt.NewHS512(jwt.Config{
		Secret: []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		Issuer: "Acme",
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	fm := &fakeMail{fail: map[string]error{}, panics: map[string]bool{}}

	return &fixture{
		uc: New(Dependency{
			RepoMail:   fm,
			Templates:  tpl,
			Codes:      otp.NewCodeGenerator(),
			Secrets:    otp.NewSecretGenerator(),
			Totp:       totp,
			QR:         qr.NewRenderer(),
			JWT:        tokens,
			Validator:  v,
			Config:     cfg,
			Clock:      clk,
			Instrument: instrument.NewNoop(),
		}),
		mail:  fm,
		clock: clk,
		totp:  totp,
	}
}
