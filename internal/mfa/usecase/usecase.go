package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gomfa/internal/pkg/clock"
	"github.com/shandysiswandi/gomfa/internal/pkg/config"
	"github.com/shandysiswandi/gomfa/internal/pkg/instrument"
	"github.com/shandysiswandi/gomfa/internal/pkg/jwt"
	"github.com/shandysiswandi/gomfa/internal/pkg/mail"
	"github.com/shandysiswandi/gomfa/internal/pkg/otp"
	"github.com/shandysiswandi/gomfa/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultOTPSubject    = "Your verification code"
	defaultAppName       = "gomfa"
	defaultMaxGoroutine  = 10
	meterName            = "mfa.usecase"
	tracerName           = "mfa.usecase"
	metricOTPDispatched  = "mfa.otp.dispatched"
	metricFactorVerified = "mfa.factor.verified"
)

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type templateRenderer interface {
	Render(name string, data map[string]any) (string, error)
}

type secretGenerator interface {
	Generate() (string, error)
}

type codeGenerator interface {
	Generate(length int) (string, error)
}

type qrRenderer interface {
	Render(content string, text bool) ([]byte, error)
}

type Usecase struct {
	repoMail     repoMail
	templates    templateRenderer
	codes        codeGenerator
	secrets      secretGenerator
	totp         otp.OTP
	qr           qrRenderer
	jwt          jwt.JWT
	validator    validator.Validator
	cfg          config.Config
	clock        clock.Clocker
	ins          instrument.Instrumentation
	maxGoroutine int

	otpDispatched  metric.Int64Counter
	factorVerified metric.Int64Counter
}

type Dependency struct {
	RepoMail     repoMail
	Templates    templateRenderer
	Codes        codeGenerator
	Secrets      secretGenerator
	Totp         otp.OTP
	QR           qrRenderer
	JWT          jwt.JWT
	Validator    validator.Validator
	Config       config.Config
	Clock        clock.Clocker
	Instrument   instrument.Instrumentation
	MaxGoroutine int
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoMail:     dep.RepoMail,
		templates:    dep.Templates,
		codes:        dep.Codes,
		secrets:      dep.Secrets,
		totp:         dep.Totp,
		qr:           dep.QR,
		jwt:          dep.JWT,
		validator:    dep.Validator,
		cfg:          dep.Config,
		clock:        dep.Clock,
		ins:          dep.Instrument,
		maxGoroutine: dep.MaxGoroutine,
	}
	if s.maxGoroutine < 1 {
		s.maxGoroutine = defaultMaxGoroutine
	}

	meter := s.ins.Meter(meterName)

	var err error
	s.otpDispatched, err = meter.Int64Counter(metricOTPDispatched,
		metric.WithDescription("OTP emails handed to the transport, by outcome"))
	if err != nil {
		slog.Warn("failed to create metric counter", "name", metricOTPDispatched, "error", err)
	}
	s.factorVerified, err = meter.Int64Counter(metricFactorVerified,
		metric.WithDescription("Second factor verifications, by factor and outcome"))
	if err != nil {
		slog.Warn("failed to create metric counter", "name", metricFactorVerified, "error", err)
	}

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer(tracerName).Start(ctx, name)
}

func (s *Usecase) count(ctx context.Context, c metric.Int64Counter, opts ...metric.AddOption) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, opts...)
}

func (s *Usecase) appName() string {
	if name := s.cfg.GetString("app.name"); name != "" {
		return name
	}
	return defaultAppName
}
