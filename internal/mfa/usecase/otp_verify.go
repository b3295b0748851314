package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gomfa/internal/mfa/entity"
	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
	"github.com/shandysiswandi/gomfa/internal/pkg/otp"
)

type VerifyOTPInput struct {
	// Subject is the account the code was sent to; it becomes the token subject.
	Subject   string    `validate:"required,max=254"`
	Code      string    `validate:"required,otpcode"`
	Candidate string    `validate:"required,max=10"`
	IssuedAt  time.Time `validate:"required"`
	ExpiresAt time.Time `validate:"required,gtfield=IssuedAt"`

	// IssueToken asks for a session token when the code matches.
	IssueToken bool
}

type VerifyOTPOutput struct {
	Valid   bool
	Expired bool
	Token   string
}

// VerifyOTP compares a candidate against a dispatched passcode and enforces its
// expiry. A mismatch or an expired code is not an error.
func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*VerifyOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	in.Candidate = strings.TrimSpace(in.Candidate)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	challenge := otp.Challenge{Code: in.Code, IssuedAt: in.IssuedAt, ExpiresAt: in.ExpiresAt}
	if challenge.Expired(now) {
		s.countFactor(ctx, entity.FactorEmailOTP, "expired")
		slog.InfoContext(ctx, "otp code expired", "subject", in.Subject, "expires_at", in.ExpiresAt)
		return &VerifyOTPOutput{Expired: true}, nil
	}

	if !challenge.Verify(in.Candidate, now) {
		s.countFactor(ctx, entity.FactorEmailOTP, "rejected")
		slog.InfoContext(ctx, "otp code rejected", "subject", in.Subject)
		return &VerifyOTPOutput{}, nil
	}

	s.countFactor(ctx, entity.FactorEmailOTP, "accepted")
	out := &VerifyOTPOutput{Valid: true}
	if in.IssueToken {
		token, err := s.issueToken(ctx, in.Subject, entity.FactorEmailOTP)
		if err != nil {
			return nil, err
		}
		out.Token = token
	}

	return out, nil
}
