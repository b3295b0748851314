package entity

// Template names registered by the email outbound.
const (
	TemplateOTPEmailHTML = "otp_email.html"
	TemplateOTPEmailText = "otp_email.txt"
)

// QRFormat selects how a provisioning URI is rendered.
type QRFormat string

const (
	QRFormatNone QRFormat = ""
	QRFormatText QRFormat = "text"
	QRFormatPNG  QRFormat = "png"
)
