package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gomfa/internal/mfa/entity"
	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
	"github.com/shandysiswandi/gomfa/internal/pkg/jwt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var errTokenDisabled = goerror.NewBusiness("session tokens are not configured", goerror.CodeInvalidParameter)

type VerifyTokenInput struct {
	Token string `validate:"required"`
}

type VerifyTokenOutput struct {
	Subject   string
	Methods   []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// VerifyToken checks a session token issued after a successful factor check.
func (s *Usecase) VerifyToken(ctx context.Context, in VerifyTokenInput) (*VerifyTokenOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyToken")
	defer span.End()

	in.Token = strings.TrimSpace(in.Token)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if s.jwt == nil {
		return nil, errTokenDisabled
	}

	claims, err := s.jwt.Verify(in.Token)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, goerror.NewBusiness("token has expired", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to verify token", "error", err)
		return nil, goerror.NewBusiness("invalid token", goerror.CodeUnauthorized)
	}

	out := &VerifyTokenOutput{
		Subject: claims.Subject,
		Methods: claims.Methods,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}

func (s *Usecase) issueToken(ctx context.Context, subject string, factor entity.Factor) (string, error) {
	if s.jwt == nil {
		return "", errTokenDisabled
	}

	token, err := s.jwt.Generate(subject, factor.String())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate token", "subject", subject, "factor", factor.String(), "error", err)
		return "", goerror.NewServer(err)
	}

	return token, nil
}

func (s *Usecase) countFactor(ctx context.Context, factor entity.Factor, outcome string) {
	s.count(ctx, s.factorVerified, metric.WithAttributes(
		attribute.String("factor", factor.String()),
		attribute.String("outcome", outcome),
	))
}
