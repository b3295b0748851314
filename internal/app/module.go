package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gomfa/internal/mfa"
)

func (a *App) initModules() {
	if err := mfa.New(mfa.Dependency{
		Root:       a.root,
		Config:     a.config,
		Instrument: a.ins,
		Clock:      a.clock,
		Validator:  a.validator,
		Mail:       a.mail,
		Totp:       a.totp,
		Codes:      a.codes,
		Secrets:    a.secrets,
		QR:         a.qr,
		JWT:        a.jwt,
	}); err != nil {
		slog.Error("failed to init module mfa", "error", err)
		os.Exit(1)
	}
}
