package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

const sampleYAML = `
app:
  name: gomfa
  max_goroutine: 8
mail:
  driver: smtp
  smtp:
    provider: gmail
    timeout_seconds: 10
mfa:
  totp:
    period: 30
    algorithms: [SHA1, SHA256]
  otp:
    expiry_minutes: 5
jwt:
  audiences: web, cli
`

func TestViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes: %v", err)
	}
	defer cfg.Close()

	if got := cfg.GetString("app.name"); got != "gomfa" {
		t.Errorf("app.name = %q", got)
	}
	if got := cfg.GetInt("app.max_goroutine"); got != 8 {
		t.Errorf("app.max_goroutine = %d", got)
	}
	if got := cfg.GetSecond("mail.smtp.timeout_seconds"); got != 10*time.Second {
		t.Errorf("mail.smtp.timeout_seconds = %v", got)
	}
	if got := cfg.GetSecond("mfa.totp.period"); got != 30*time.Second {
		t.Errorf("mfa.totp.period = %v", got)
	}
	if got := cfg.GetMinute("mfa.otp.expiry_minutes"); got != 5*time.Minute {
		t.Errorf("mfa.otp.expiry_minutes = %v", got)
	}
	if got := cfg.GetArray("jwt.audiences"); !reflect.DeepEqual(got, []string{"web", "cli"}) {
		t.Errorf("jwt.audiences = %v", got)
	}
	if got := cfg.GetArray("mfa.totp.algorithms"); !reflect.DeepEqual(got, []string{"SHA1", "SHA256"}) {
		t.Errorf("mfa.totp.algorithms = %v", got)
	}
	if got := cfg.GetString("mail.smtp.host"); got != "" {
		t.Errorf("mail.smtp.host = %q, want empty", got)
	}
	if got := cfg.GetSecond("missing"); got != 0 {
		t.Errorf("missing duration = %v", got)
	}
}

func TestViperEnvOverride(t *testing.T) {
	t.Setenv("MFA_MAIL_SMTP_PROVIDER", "outlook")
	t.Setenv("MFA_MFA_TOTP_ISSUER", "FromEnv")

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes: %v", err)
	}

	if got := cfg.GetString("mail.smtp.provider"); got != "outlook" {
		t.Errorf("mail.smtp.provider = %q, want env value", got)
	}
	if got := cfg.GetString("mfa.totp.issuer"); got != "FromEnv" {
		t.Errorf("mfa.totp.issuer = %q, want env value", got)
	}
}

func TestViperDefaults(t *testing.T) {
	cfg, err := NewViper("", WithDefaults(map[string]any{
		"mail.driver":        "console",
		"mfa.otp.digits":     6,
		"instrument.enabled": false,
	}))
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}

	if got := cfg.GetString("mail.driver"); got != "console" {
		t.Errorf("mail.driver = %q", got)
	}
	if got := cfg.GetInt("mfa.otp.digits"); got != 6 {
		t.Errorf("mfa.otp.digits = %d", got)
	}
	if cfg.GetBool("instrument.enabled") {
		t.Error("instrument.enabled = true")
	}
}

func TestNewViperFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(file, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := NewViper(file)
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}
	if got := cfg.GetString("mail.driver"); got != "smtp" {
		t.Errorf("mail.driver = %q", got)
	}

	if _, err := NewViper(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("NewViper with missing file succeeded")
	}
}

func TestNewViperFromBytesRequiresType(t *testing.T) {
	if _, err := NewViperFromBytes(" ", []byte(sampleYAML)); err == nil {
		t.Fatal("expected error for empty config type")
	}
}
