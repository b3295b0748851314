package inbound

import "time"

type OTPSendResponse struct {
	Recipient string    `json:"recipient"`
	OTPCode   string    `json:"otp_code,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitzero"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Error     string    `json:"error,omitempty"`
}

type OTPSendBatchResponse struct {
	Sent    int               `json:"sent"`
	Failed  int               `json:"failed"`
	Results []OTPSendResponse `json:"results"`
}

type VerifyResponse struct {
	Valid   bool   `json:"valid"`
	Expired bool   `json:"expired,omitempty"`
	Counter int64  `json:"counter,omitempty"`
	Token   string `json:"token,omitempty"`
}

type SecretResponse struct {
	Secret string `json:"secret"`
}

type TOTPSetupResponse struct {
	Issuer string `json:"issuer"`
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRFile string `json:"qr_file,omitempty"`
}

type TOTPCodeResponse struct {
	Code             string `json:"code"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

type TokenResponse struct {
	Subject   string    `json:"subject"`
	Methods   []string  `json:"methods"`
	IssuedAt  time.Time `json:"issued_at,omitzero"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}
