package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gomfa/internal/mfa/entity"
	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
)

type SetupTOTPInput struct {
	AccountName string          `validate:"required,max=254,otplabel"`
	QRFormat    entity.QRFormat `validate:"omitempty,oneof=text png"`
}

type SetupTOTPOutput struct {
	Issuer string
	Secret string
	URI    string
	// QR holds the rendered provisioning URI; nil when QRFormat is empty.
	QR []byte
}

// SetupTOTP enrolls an account: it creates a fresh shared secret, builds the
// otpauth provisioning URI and optionally renders it as a QR code.
func (s *Usecase) SetupTOTP(ctx context.Context, in SetupTOTPInput) (*SetupTOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "SetupTOTP")
	defer span.End()

	in.AccountName = strings.TrimSpace(in.AccountName)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	secret, uri, err := s.totp.Generate(in.AccountName)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "account", in.AccountName, "error", err)
		return nil, err
	}

	out := &SetupTOTPOutput{
		Issuer: s.totp.Issuer(),
		Secret: secret,
		URI:    uri,
	}

	if in.QRFormat != entity.QRFormatNone {
		out.QR, err = s.qr.Render(uri, in.QRFormat == entity.QRFormatText)
		if err != nil {
			slog.ErrorContext(ctx, "failed to render provisioning qr", "format", in.QRFormat, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	return out, nil
}
