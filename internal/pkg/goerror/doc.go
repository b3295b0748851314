// Package goerror defines the structured error used across the module.
//
// Every failure surfaced to a caller is an *Error carrying a Type and a stable
// Code: entropy source failures, invalid parameters, delivery failures and
// authorization failures can be told apart with IsCode without string
// matching.
package goerror
