package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gomfa/internal/mfa/entity"
	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
)

type VerifyTOTPInput struct {
	Secret string `validate:"required,b32secret"`
	Code   string `validate:"required,max=10"`
	// Account becomes the token subject.
	Account    string `validate:"required_if=IssueToken true,max=254"`
	IssueToken bool
}

type VerifyTOTPOutput struct {
	Valid bool
	// Counter is the time step the code matched; callers that track replay
	// reject a counter they have already accepted.
	Counter int64
	Token   string
}

// VerifyTOTP checks a code from an authenticator app at the current time within
// the configured drift window. A wrong code is not an error; a malformed secret
// is.
func (s *Usecase) VerifyTOTP(ctx context.Context, in VerifyTOTPInput) (*VerifyTOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyTOTP")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	counter, ok, err := s.totp.Validate(in.Code, in.Secret, s.clock.Now())
	if err != nil {
		slog.WarnContext(ctx, "failed to validate totp code", "account", in.Account, "error", err)
		return nil, err
	}

	if !ok {
		s.countFactor(ctx, entity.FactorTOTP, "rejected")
		slog.InfoContext(ctx, "totp code rejected", "account", in.Account)
		return &VerifyTOTPOutput{}, nil
	}

	s.countFactor(ctx, entity.FactorTOTP, "accepted")
	out := &VerifyTOTPOutput{Valid: true, Counter: counter}
	if in.IssueToken {
		token, err := s.issueToken(ctx, in.Account, entity.FactorTOTP)
		if err != nil {
			return nil, err
		}
		out.Token = token
	}

	return out, nil
}
