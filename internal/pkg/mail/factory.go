package mail

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverSMTP selects the SMTP transport.
	DriverSMTP = "smtp"
	// DriverConsole selects the console transport.
	DriverConsole = "console"
)

// ErrUnknownDriver indicates an unsupported mail driver.
var ErrUnknownDriver = errors.New("mail: unknown driver")

// FactoryOptions groups configuration for mail drivers.
type FactoryOptions struct {
	// SMTP configures the SMTP transport.
	SMTP SMTPConfig
	// Console configures the console transport.
	Console ConsoleConfig
}

// NewFromDriver constructs a Mail implementation by driver name.
func NewFromDriver(driver string, opts FactoryOptions) (Mail, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSMTP:
		return NewSMTP(opts.SMTP)
	case DriverConsole:
		return NewConsole(opts.Console), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
