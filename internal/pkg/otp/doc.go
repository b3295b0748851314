// Package otp provides helpers for generating and validating one-time
// passwords (OTP): TOTP (time-based OTP, RFC 6238) for authenticator apps and
// short random passcodes for out-of-band delivery such as email.
//
// This is typically used for 2FA/MFA flows: generate a secret and URI for an
// authenticator app, then validate user-provided codes; or generate a passcode,
// send it to the user, and compare what they type back.
//
// Nothing in this package stores codes or secrets. Callers own both.
package otp
