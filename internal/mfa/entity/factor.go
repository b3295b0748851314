package entity

// Factor identifies a second authentication factor.
type Factor int

const (
	FactorUnknown Factor = iota
	FactorEmailOTP
	FactorTOTP
)

// String returns the amr value recorded in session tokens.
func (f Factor) String() string {
	switch f {
	case FactorEmailOTP:
		return "otp"
	case FactorTOTP:
		return "totp"
	default:
		return "unknown"
	}
}
