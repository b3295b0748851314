// Package validator checks usecase inputs against their `validate` struct tags.
//
// V10Validator wraps go-playground/validator with English messages and the
// rules used by passcode and TOTP inputs: b32secret, otplabel and otpcode.
// Failures come back as V10ValidationError keyed by snake_case field name.
package validator
