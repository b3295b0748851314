package usecase

import (
	"context"
	"log/slog"
)

type GenerateSecretOutput struct {
	Secret string
}

// GenerateSecret returns a fresh Base32 shared secret without binding it to an
// account.
func (s *Usecase) GenerateSecret(ctx context.Context) (*GenerateSecretOutput, error) {
	ctx, span := s.startSpan(ctx, "GenerateSecret")
	defer span.End()

	secret, err := s.secrets.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "error", err)
		return nil, err
	}

	return &GenerateSecretOutput{Secret: secret}, nil
}
