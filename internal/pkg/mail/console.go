package mail

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleConfig configures the console transport.
type ConsoleConfig struct {
	// Writer receives rendered messages; nil means os.Stderr.
	Writer io.Writer
	// From is the default sender when Message.From is empty.
	From string
}

// Console writes each message in RFC 5322 form to a writer instead of
// delivering it. Useful for local runs without an SMTP relay.
type Console struct {
	mu          sync.Mutex
	w           io.Writer
	defaultFrom string
}

// NewConsole constructs a console transport.
func NewConsole(cfg ConsoleConfig) *Console {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	from := cfg.From
	if from == "" {
		from = "no-reply@localhost"
	}
	return &Console{w: w, defaultFrom: from}
}

// Send renders msg to the writer.
func (c *Console) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := buildMsg(msg, c.defaultFrom)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := m.WriteTo(c.w); err != nil {
		return err
	}
	_, err = fmt.Fprint(c.w, "\r\n")
	return err
}

// Close implements io.Closer.
func (c *Console) Close() error {
	return nil
}
