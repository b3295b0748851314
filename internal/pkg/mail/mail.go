// Package mail delivers rendered email. NewFromDriver picks the transport:
// "smtp" relays through a server (with presets for common providers) and
// "console" prints the message, which is handy when developing locally.
package mail

import (
	"context"
	"io"

	"github.com/samber/lo"
)

// Message is a transport-neutral email.
type Message struct {
	// From overrides the transport's configured sender when set.
	From    string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	// TextBody becomes the plain-text alternative when HTMLBody is also set.
	TextBody string
	HTMLBody string
}

// Recipients returns To, Cc and Bcc in that order.
func (m Message) Recipients() []string {
	return lo.Flatten([][]string{m.To, m.Cc, m.Bcc})
}

// Mail sends one message per call. Send blocks until the transport accepts
// or rejects the message, or ctx is done.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
