// Package qr renders provisioning URIs as QR codes, either as PNG images or as
// text for terminals.
package qr

import (
	"strings"

	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

// Level is the error correction level.
type Level = qrcode.RecoveryLevel

const (
	LevelLow     Level = qrcode.Low
	LevelMedium  Level = qrcode.Medium
	LevelHigh    Level = qrcode.High
	LevelHighest Level = qrcode.Highest
)

// Renderer produces QR codes with fixed settings.
type Renderer struct {
	level     Level
	size      int
	noBorder  bool
	inverse   bool
	halfBlock bool
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithLevel sets the error correction level.
func WithLevel(l Level) Option {
	return func(r *Renderer) { r.level = l }
}

// WithSize sets the PNG size in pixels. Non-positive values are ignored.
func WithSize(size int) Option {
	return func(r *Renderer) {
		if size > 0 {
			r.size = size
		}
	}
}

// WithoutBorder drops the quiet zone around the symbol.
func WithoutBorder() Option {
	return func(r *Renderer) { r.noBorder = true }
}

// WithInverse swaps dark and light modules in text output, for light-on-dark terminals.
func WithInverse() Option {
	return func(r *Renderer) { r.inverse = true }
}

// WithFullBlocks renders text with two characters per module instead of half blocks.
func WithFullBlocks() Option {
	return func(r *Renderer) { r.halfBlock = false }
}

// NewRenderer returns a Renderer using medium error correction.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{level: LevelMedium, size: DefaultSize, halfBlock: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PNG encodes content as a PNG image.
func (r *Renderer) PNG(content string) ([]byte, error) {
	q, err := r.encode(content)
	if err != nil {
		return nil, err
	}
	return q.PNG(r.size)
}

// Text encodes content as block characters suitable for a terminal.
func (r *Renderer) Text(content string) (string, error) {
	q, err := r.encode(content)
	if err != nil {
		return "", err
	}
	if r.halfBlock {
		return q.ToSmallString(r.inverse), nil
	}
	return q.ToString(r.inverse), nil
}

// Render returns the terminal text when text is true and PNG bytes otherwise.
func (r *Renderer) Render(content string, text bool) ([]byte, error) {
	if !text {
		return r.PNG(content)
	}
	s, err := r.Text(content)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (r *Renderer) encode(content string) (*qrcode.QRCode, error) {
	if strings.TrimSpace(content) == "" {
		return nil, goerror.NewInvalidParameter("content", "must not be empty")
	}
	q, err := qrcode.New(content, r.level)
	if err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	q.DisableBorder = r.noBorder
	return q, nil
}
