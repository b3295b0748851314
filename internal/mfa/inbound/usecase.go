package inbound

import (
	"context"

	"github.com/shandysiswandi/gomfa/internal/mfa/usecase"
)

type uc interface {
	DispatchOTPEmail(ctx context.Context, in usecase.DispatchOTPEmailInput) (*usecase.DispatchOTPEmailOutput, error)
	DispatchOTPEmailBatch(ctx context.Context, ins []usecase.DispatchOTPEmailInput) ([]usecase.DispatchOTPEmailBatchResult, error)
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error)

	GenerateSecret(ctx context.Context) (*usecase.GenerateSecretOutput, error)
	SetupTOTP(ctx context.Context, in usecase.SetupTOTPInput) (*usecase.SetupTOTPOutput, error)
	CurrentTOTP(ctx context.Context, in usecase.CurrentTOTPInput) (*usecase.CurrentTOTPOutput, error)
	VerifyTOTP(ctx context.Context, in usecase.VerifyTOTPInput) (*usecase.VerifyTOTPOutput, error)

	VerifyToken(ctx context.Context, in usecase.VerifyTokenInput) (*usecase.VerifyTokenOutput, error)
}
