package goerror

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Type groups codes by who is at fault.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
	// TypeDependency is a failing collaborator such as the random source or
	// the mail transport.
	TypeDependency
)

var typeInfo = map[Type]struct{ name, fallback string }{
	TypeServer:     {"ERROR_TYPE_SERVER", "Internal error"},
	TypeBusiness:   {"ERROR_TYPE_BUSINESS", "Logical business not meet with requirement"},
	TypeValidation: {"ERROR_TYPE_VALIDATION", "Validation violation"},
	TypeDependency: {"ERROR_TYPE_DEPENDENCY", "Dependency failure"},
}

func (t Type) String() string {
	if info, ok := typeInfo[t]; ok {
		return info.name
	}
	return "ERROR_TYPE_UNKNOWN"
}

// Code identifies a failure independently of its message and decides the
// process exit status.
type Code int

const (
	CodeInternal Code = iota
	// CodeInvalidFormat is malformed input such as bad base32 or a bad flag.
	CodeInvalidFormat
	// CodeInvalidParameter is a well-formed value outside its allowed range.
	CodeInvalidParameter
	CodeEntropySource
	CodeDelivery
	CodeUnauthorized
	CodeTimeout
)

var codeInfo = map[Code]struct {
	name string
	exit int
}{
	CodeInternal:         {"ERROR_CODE_INTERNAL", 1},
	CodeInvalidFormat:    {"ERROR_CODE_INVALID_FORMAT", 2},
	CodeInvalidParameter: {"ERROR_CODE_INVALID_PARAMETER", 2},
	CodeEntropySource:    {"ERROR_CODE_ENTROPY_SOURCE", 3},
	CodeDelivery:         {"ERROR_CODE_DELIVERY", 4},
	CodeUnauthorized:     {"ERROR_CODE_UNAUTHORIZED", 5},
	CodeTimeout:          {"ERROR_CODE_TIMEOUT", 6},
}

func (c Code) String() string {
	if info, ok := codeInfo[c]; ok {
		return info.name
	}
	return codeInfo[CodeInternal].name
}

// Error carries an optional cause, a user-facing message, a Type and a Code.
// Validation errors may also list per-field reasons.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

func (e *Error) Error() string {
	switch {
	case e.err != nil && e.msg != "":
		return e.msg + ": " + e.err.Error()
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	}
	if info, ok := typeInfo[e.errType]; ok {
		return info.fallback
	}
	return "Unknown error"
}

// String is the verbose form used when logging.
func (e *Error) String() string {
	return fmt.Sprintf("Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType, e.code, e.msg, e.err)
}

func (e *Error) Msg() string               { return e.msg }
func (e *Error) Type() Type                { return e.errType }
func (e *Error) Code() Code                { return e.code }
func (e *Error) Fields() map[string]string { return e.fields }
func (e *Error) Unwrap() error             { return e.err }

// ExitCode is the process status the CLI exits with for this error.
func (e *Error) ExitCode() int {
	if info, ok := codeInfo[e.code]; ok {
		return info.exit
	}
	return 1
}

// IsCode reports whether err wraps an *Error with the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.code == code
}

func NewServer(err error) error {
	return &Error{err: err, msg: "Internal server error", errType: TypeServer, code: CodeInternal}
}

// NewBusiness reports a rule the caller broke, such as a rejected passcode.
func NewBusiness(msg string, code Code) error {
	return &Error{msg: msg, errType: TypeBusiness, code: code}
}

func NewEntropySource(err error) error {
	return &Error{err: err, msg: "Secure random source unavailable", errType: TypeDependency, code: CodeEntropySource}
}

func NewDelivery(err error) error {
	return &Error{err: err, msg: "Message delivery failed", errType: TypeDependency, code: CodeDelivery}
}

// NewInvalidParameter reports a single field outside its allowed range.
func NewInvalidParameter(field, reason string) error {
	return &Error{
		msg:     "Invalid parameter " + field + ": " + reason,
		errType: TypeValidation,
		code:    CodeInvalidParameter,
		fields:  map[string]string{field: reason},
	}
}

// NewInvalidInput wraps a validator failure, or builds one from field/reason
// pairs when err is nil. An odd number of pairs is itself a format error.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return &Error{err: err, msg: "Validation error", errType: TypeValidation, code: CodeInvalidParameter}
	}
	if len(kv)%2 != 0 {
		return &Error{msg: "Invalid input", errType: TypeValidation, code: CodeInvalidFormat}
	}

	fields := lo.Associate(lo.Chunk(kv, 2), func(pair []string) (string, string) {
		return pair[0], pair[1]
	})
	return &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidParameter, fields: fields}
}

// NewInvalidFormat reports malformed input; the first message, if any,
// replaces the default one.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid format"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return &Error{msg: msg, errType: TypeValidation, code: CodeInvalidFormat}
}
