package config

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: mail.smtp.host is read from
// MFA_MAIL_SMTP_HOST.
const EnvPrefix = "MFA"

var errConfigTypeRequired = errors.New("config type is required")

// Viper implements Config on top of spf13/viper.
type Viper struct {
	v *viper.Viper
}

// Option adjusts the viper instance after the file is read.
type Option func(v *viper.Viper)

// WithDefaults registers values used when no file or env var sets the key.
func WithDefaults(defaults map[string]any) Option {
	return func(v *viper.Viper) {
		for key, value := range defaults {
			v.SetDefault(key, value)
		}
	}
}

// NewViper reads the file at path, its format taken from the extension. An
// empty path uses defaults and environment only.
func NewViper(path string, opts ...Option) (*Viper, error) {
	return build(opts, func(v *viper.Viper) error {
		if path == "" {
			return nil
		}
		v.SetConfigFile(path)
		return v.ReadInConfig()
	})
}

// NewViperFromBytes reads configuration of the given type ("yaml", "json",
// "toml") from memory.
func NewViperFromBytes(configType string, data []byte, opts ...Option) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errConfigTypeRequired
	}
	return build(opts, func(v *viper.Viper) error {
		v.SetConfigType(configType)
		return v.ReadConfig(bytes.NewReader(data))
	})
}

func build(opts []Option, load func(v *viper.Viper) error) (*Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := load(v); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(v)
	}
	return &Viper{v: v}, nil
}

func (vc *Viper) GetInt(key string) int         { return vc.v.GetInt(key) }
func (vc *Viper) GetFloat64(key string) float64 { return vc.v.GetFloat64(key) }
func (vc *Viper) GetBool(key string) bool       { return vc.v.GetBool(key) }
func (vc *Viper) GetString(key string) string   { return vc.v.GetString(key) }

func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

func (vc *Viper) GetMinute(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Minute
}

func (vc *Viper) GetArray(key string) []string {
	parts := lo.FlatMap(vc.v.GetStringSlice(key), func(item string, _ int) []string {
		return strings.Split(item, ",")
	})
	return lo.Compact(lo.Map(parts, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

// Close is a no-op; it lets Config sit in the shutdown closer list.
func (vc *Viper) Close() error { return nil }
