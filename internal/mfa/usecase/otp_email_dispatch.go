package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gomfa/internal/mfa/entity"
	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
	"github.com/shandysiswandi/gomfa/internal/pkg/goroutine"
	"github.com/shandysiswandi/gomfa/internal/pkg/mail"
	"github.com/shandysiswandi/gomfa/internal/pkg/otp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type DispatchOTPEmailInput struct {
	RecipientEmail string `validate:"required,email,max=254"`
	Subject        string `validate:"required,max=255"`
	// OTPCode is sent as is when set; otherwise a code is generated.
	OTPCode string `validate:"omitempty,otpcode"`
	// Digits is the generated code length; zero uses mfa.otp.digits.
	Digits int `validate:"omitempty,min=4,max=10"`
	// ExpiryMinutes is the advisory expiry written into the email; zero uses
	// mfa.otp.expiry_minutes.
	ExpiryMinutes int `validate:"omitempty,min=1,max=1440"`
}

type DispatchOTPEmailOutput struct {
	OTPCode   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Challenge returns the sent code with its expiry so a caller can enforce it.
func (o *DispatchOTPEmailOutput) Challenge() otp.Challenge {
	return otp.Challenge{Code: o.OTPCode, IssuedAt: o.IssuedAt, ExpiresAt: o.ExpiresAt}
}

// DispatchOTPEmail generates (or takes) a passcode, emails it to the recipient
// and returns it. The expiry is advisory: it is rendered into the email and
// returned, nothing here enforces it. On a transport failure no code is
// returned.
func (s *Usecase) DispatchOTPEmail(ctx context.Context, in DispatchOTPEmailInput) (*DispatchOTPEmailOutput, error) {
	ctx, span := s.startSpan(ctx, "DispatchOTPEmail")
	defer span.End()

	in.RecipientEmail = strings.TrimSpace(in.RecipientEmail)
	in.Subject = strings.TrimSpace(in.Subject)
	if in.Subject == "" {
		in.Subject = s.cfg.GetString("mfa.otp.subject")
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	digits := in.Digits
	if digits == 0 {
		digits = s.cfg.GetInt("mfa.otp.digits")
	}
	if digits == 0 {
		digits = otp.DefaultDigits
	}

	expiry := time.Duration(in.ExpiryMinutes) * time.Minute
	if expiry == 0 {
		expiry = s.cfg.GetMinute("mfa.otp.expiry_minutes")
	}
	if expiry <= 0 {
		expiry = otp.DefaultChallengeTTL
	}

	code := in.OTPCode
	if code == "" {
		var err error
		code, err = s.codes.Generate(digits)
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate otp code", "digits", digits, "error", err)
			return nil, err
		}
	}

	issuedAt := s.clock.Now()
	data := map[string]any{
		"otp_code":       code,
		"expiry_minutes": int(expiry / time.Minute),
		"app_name":       s.appName(),
		"year":           issuedAt.Format("2006"),
	}

	htmlBody, err := s.templates.Render(entity.TemplateOTPEmailHTML, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render otp email html body", "error", err)
		return nil, goerror.NewServer(err)
	}

	textBody, err := s.templates.Render(entity.TemplateOTPEmailText, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render otp email text body", "error", err)
		return nil, goerror.NewServer(err)
	}

	err = s.repoMail.Send(ctx, mail.Message{
		To:       []string{in.RecipientEmail},
		Subject:  in.Subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		s.count(ctx, s.otpDispatched, metric.WithAttributes(attribute.String("outcome", "failed")))
		slog.ErrorContext(ctx, "failed to send otp email", "recipient", in.RecipientEmail, "error", err)
		return nil, goerror.NewDelivery(err)
	}

	s.count(ctx, s.otpDispatched, metric.WithAttributes(attribute.String("outcome", "sent")))
	slog.DebugContext(ctx, "otp email sent", "recipient", in.RecipientEmail, "otp_code", code)

	return &DispatchOTPEmailOutput{
		OTPCode:   code,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(expiry),
	}, nil
}

type DispatchOTPEmailBatchResult struct {
	Input  DispatchOTPEmailInput
	Output *DispatchOTPEmailOutput
	Err    error
}

// DispatchOTPEmailBatch sends one passcode email per input concurrently and
// returns the results in input order. A failed recipient does not stop the
// others.
func (s *Usecase) DispatchOTPEmailBatch(ctx context.Context, ins []DispatchOTPEmailInput) ([]DispatchOTPEmailBatchResult, error) {
	ctx, span := s.startSpan(ctx, "DispatchOTPEmailBatch")
	defer span.End()

	if len(ins) == 0 {
		return nil, goerror.NewInvalidParameter("recipients", "must not be empty")
	}

	results := make([]DispatchOTPEmailBatchResult, len(ins))
	started := make([]bool, len(ins))
	gm := goroutine.NewManager(s.maxGoroutine)

	for i, in := range ins {
		results[i].Input = in
		gm.Go(ctx, func(ctx context.Context) error {
			started[i] = true
			out, err := s.DispatchOTPEmail(ctx, in)
			results[i].Output = out
			results[i].Err = err
			return err
		})
	}

	if err := gm.Wait(); err != nil {
		slog.WarnContext(ctx, "otp email batch finished with failures", "total", len(ins), "error", err)
	}

	// A task that started but left no result panicked; the manager recovered it.
	// One that never started carries the reason it was skipped.
	for i := range results {
		if results[i].Output != nil || results[i].Err != nil {
			continue
		}
		switch {
		case started[i]:
			results[i].Err = goroutine.ErrPanic
		case ctx.Err() != nil:
			results[i].Err = ctx.Err()
		default:
			results[i].Err = goroutine.ErrManagerClosed
		}
	}

	return results, nil
}
