package app

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/shandysiswandi/gomfa/internal/pkg/clock"
	"github.com/shandysiswandi/gomfa/internal/pkg/config"
	"github.com/shandysiswandi/gomfa/internal/pkg/instrument"
	"github.com/shandysiswandi/gomfa/internal/pkg/jwt"
	"github.com/shandysiswandi/gomfa/internal/pkg/mail"
	"github.com/shandysiswandi/gomfa/internal/pkg/otp"
	"github.com/shandysiswandi/gomfa/internal/pkg/qr"
	"github.com/shandysiswandi/gomfa/internal/pkg/uid"
	"github.com/shandysiswandi/gomfa/internal/pkg/validator"
)

const localConfigPath = "./config/config.yaml"

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		if _, err := os.Stat(localConfigPath); err == nil {
			path = localConfigPath
		} else if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("failed to stat config file", "path", localConfigPath, "error", err)
			os.Exit(1)
		}
	}

	cfg, err := config.NewViper(path, config.WithDefaults(defaults))
	if err != nil {
		slog.Error("failed to init config", "path", path, "error", err)
		os.Exit(1)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   Version,
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		LogFormat:        a.config.GetString("instrument.log_format"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.qr = qr.NewRenderer(qr.WithSize(a.config.GetInt("mfa.totp.qr_size")))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	charset := a.config.GetString("mfa.otp.charset")
	if charset != "" {
		if err := otp.ValidateCharset(charset); err != nil {
			slog.Error("invalid otp charset", "error", err)
			os.Exit(1)
		}
	}
	a.codes = otp.NewCodeGenerator(otp.WithCharset(charset))

	secretSize := a.config.GetInt("mfa.totp.secret_size")
	a.secrets = otp.NewSecretGenerator(otp.WithSecretSize(secretSize))

	algorithm, err := otp.ParseAlgorithm(a.config.GetString("mfa.totp.algorithm"))
	if err != nil {
		slog.Error("failed to parse totp algorithm", "error", err)
		os.Exit(1)
	}

	totp, err := otp.NewTOTP(otp.TOTPConfig{
		Issuer:     a.config.GetString("mfa.totp.issuer"),
		Period:     a.config.GetSecond("mfa.totp.period"),
		Skew:       a.config.GetInt("mfa.totp.skew"),
		Digits:     a.config.GetInt("mfa.totp.digits"),
		Algorithm:  algorithm,
		SecretSize: secretSize,
	})
	if err != nil {
		slog.Error("failed to init totp", "error", err)
		os.Exit(1)
	}
	a.totp = totp
}

func (a *App) initJWT() {
	secret := a.config.GetString("jwt.secret")
	if secret == "" {
		slog.Debug("jwt secret not configured, session tokens disabled")
		return
	}

	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(secret),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = defaultJWT
}

func (a *App) initMail() {
	driver := strings.TrimSpace(a.config.GetString("mail.driver"))
	client, err := mail.NewFromDriver(driver, mail.FactoryOptions{
		SMTP: mail.SMTPConfig{
			Provider:  a.config.GetString("mail.smtp.provider"),
			Host:      a.config.GetString("mail.smtp.host"),
			Port:      a.config.GetInt("mail.smtp.port"),
			Username:  a.config.GetString("mail.smtp.username"),
			Password:  a.config.GetString("mail.smtp.password"),
			From:      a.config.GetString("mail.smtp.from"),
			TLSPolicy: a.config.GetString("mail.smtp.tls_policy"),
			SSL:       a.config.GetBool("mail.smtp.ssl"),
			Timeout:   a.config.GetSecond("mail.smtp.timeout_seconds"),
		},
		Console: mail.ConsoleConfig{
			From: a.config.GetString("mail.console.from"),
		},
	})
	if err != nil {
		slog.Error("failed to init mail", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.mail = client
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Mail",
			fn: func(context.Context) error {
				return a.mail.Close()
			},
		},
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
