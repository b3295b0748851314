package app

// defaults apply when neither the config file nor MFA_* environment
// variables set a key.
var defaults = map[string]any{
	"app.name":          "gomfa",
	"app.max_goroutine": 10,

	"instrument.enabled":                 false,
	"instrument.service_name":            "gomfa",
	"instrument.env":                     "local",
	"instrument.log_level":               "warn",
	"instrument.log_format":              "text",
	"instrument.trace_sample_ratio":      1.0,
	"instrument.metric_interval_seconds": 60,
	"instrument.log_mask_fields":         []string{"otp_code", "secret", "password", "token"},

	"mail.driver":               "console",
	"mail.smtp.provider":        "custom",
	"mail.smtp.tls_policy":      "mandatory",
	"mail.smtp.timeout_seconds": 15,
	"mail.console.from":         "no-reply@localhost",

	"mfa.otp.digits":         6,
	"mfa.otp.expiry_minutes": 5,
	"mfa.otp.subject":        "Your verification code",

	"mfa.totp.issuer":      "gomfa",
	"mfa.totp.period":      30,
	"mfa.totp.digits":      6,
	"mfa.totp.algorithm":   "SHA1",
	"mfa.totp.skew":        1,
	"mfa.totp.secret_size": 20,
	"mfa.totp.qr_size":     256,

	"jwt.issuer":      "gomfa",
	"jwt.ttl_minutes": 60,
}
