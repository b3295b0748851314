// Package config reads settings from an optional YAML file, MFA_* environment
// variables and registered defaults, in that order of precedence from last
// to first. Missing keys yield the zero value of the requested type.
package config

import (
	"io"
	"time"
)

// Config is the read-only view handed to constructors.
type Config interface {
	io.Closer

	GetInt(key string) int
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetSecond and GetMinute read an integer and scale it.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration

	// GetArray accepts a YAML list or a comma separated string.
	GetArray(key string) []string
}
