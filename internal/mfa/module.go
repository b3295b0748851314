package mfa

import (
	"github.com/shandysiswandi/gomfa/internal/mfa/inbound"
	"github.com/shandysiswandi/gomfa/internal/mfa/outbound/email"
	"github.com/shandysiswandi/gomfa/internal/mfa/usecase"
	"github.com/shandysiswandi/gomfa/internal/pkg/clock"
	"github.com/shandysiswandi/gomfa/internal/pkg/config"
	"github.com/shandysiswandi/gomfa/internal/pkg/instrument"
	"github.com/shandysiswandi/gomfa/internal/pkg/jwt"
	"github.com/shandysiswandi/gomfa/internal/pkg/mail"
	"github.com/shandysiswandi/gomfa/internal/pkg/otp"
	"github.com/shandysiswandi/gomfa/internal/pkg/qr"
	"github.com/shandysiswandi/gomfa/internal/pkg/validator"
	"github.com/spf13/cobra"
)

type Dependency struct {
	Root       *cobra.Command             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Totp       otp.OTP                    `validate:"required"`
	Codes      *otp.CodeGenerator         `validate:"required"`
	Secrets    *otp.SecretGenerator       `validate:"required"`
	QR         *qr.Renderer               `validate:"required"`
	// JWT is optional; without it token issuing and verification are disabled.
	JWT jwt.JWT
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	templates, err := email.NewTemplates()
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoMail:     email.New(dep.Mail, dep.Instrument),
		Templates:    templates,
		Codes:        dep.Codes,
		Secrets:      dep.Secrets,
		Totp:         dep.Totp,
		QR:           dep.QR,
		JWT:          dep.JWT,
		Validator:    dep.Validator,
		Config:       dep.Config,
		Clock:        dep.Clock,
		Instrument:   dep.Instrument,
		MaxGoroutine: dep.Config.GetInt("app.max_goroutine"),
	})

	inbound.RegisterCommands(dep.Root, uc)

	return nil
}
