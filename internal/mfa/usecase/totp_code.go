package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
)

type CurrentTOTPInput struct {
	Secret string `validate:"required,b32secret"`
}

type CurrentTOTPOutput struct {
	Code string
	// Remaining is the time left before the code rolls over.
	Remaining time.Duration
}

// CurrentTOTP returns the code an authenticator app shows right now for the
// secret.
func (s *Usecase) CurrentTOTP(ctx context.Context, in CurrentTOTPInput) (*CurrentTOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "CurrentTOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	code, err := s.totp.GenerateCode(in.Secret, now)
	if err != nil {
		slog.WarnContext(ctx, "failed to generate totp code", "error", err)
		return nil, err
	}

	period := s.totp.Period()
	elapsed := time.Duration(now.UnixNano()) % period

	return &CurrentTOTPOutput{Code: code, Remaining: period - elapsed}, nil
}
