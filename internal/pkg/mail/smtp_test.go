package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewSMTPProviders(t *testing.T) {
	tests := []struct {
		name string
		cfg  SMTPConfig
		want string
	}{
		{name: "gmail preset", cfg: SMTPConfig{Provider: "gmail"}, want: "smtp.gmail.com:587"},
		{name: "outlook preset", cfg: SMTPConfig{Provider: "Outlook"}, want: "smtp-mail.outlook.com:587"},
		{name: "preset with port override", cfg: SMTPConfig{Provider: "zoho", Port: 465}, want: "smtp.zoho.com:465"},
		{name: "custom", cfg: SMTPConfig{Host: "mail.internal", Port: 2525}, want: "mail.internal:2525"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSMTP(tt.cfg)
			if err != nil {
				t.Fatalf("NewSMTP: %v", err)
			}
			client, err := s.newClient()
			if err != nil {
				t.Fatalf("newClient: %v", err)
			}
			if got := client.ServerAddr(); got != tt.want {
				t.Errorf("ServerAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewSMTPInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  SMTPConfig
		want error
	}{
		{name: "custom without host", cfg: SMTPConfig{Port: 25}, want: ErrSMTPHostPortRequired},
		{name: "custom without port", cfg: SMTPConfig{Host: "mail.internal"}, want: ErrSMTPHostPortRequired},
		{name: "unknown provider", cfg: SMTPConfig{Provider: "hotmail"}, want: ErrUnknownProvider},
		{name: "unknown tls policy", cfg: SMTPConfig{Provider: "gmail", TLSPolicy: "sometimes"}, want: ErrSMTPUnknownTLSPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSMTP(tt.cfg); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSMTPSendValidation(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: 2525})
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}

	if err := s.Send(context.Background(), Message{Subject: "x", TextBody: "x", From: "a@example.com"}); !errors.Is(err, ErrSMTPNoRecipients) {
		t.Errorf("no recipients err = %v", err)
	}
	if err := s.Send(context.Background(), Message{To: []string{"b@example.com"}, TextBody: "x"}); !errors.Is(err, ErrSMTPNoSender) {
		t.Errorf("no sender err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, Message{To: []string{"b@example.com"}, From: "a@example.com"}); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled ctx err = %v", err)
	}
}

func TestSMTPSendUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	_ = ln.Close()
	port, _ := strconv.Atoi(portStr)

	s, err := NewSMTP(SMTPConfig{
		Host:      "127.0.0.1",
		Port:      port,
		From:      "no-reply@example.com",
		TLSPolicy: "none",
		Timeout:   time.Second,
	})
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}

	err = s.Send(context.Background(), Message{
		To:       []string{"user@example.com"},
		Subject:  "Your code",
		TextBody: "482913",
	})
	if err == nil {
		t.Fatal("Send to closed port succeeded")
	}
}

func TestBuildMsgDefaultsFromUsername(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Provider: "gmail", Username: "sender@gmail.com", Password: "app-password"})
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}
	if s.defaultFrom != "sender@gmail.com" {
		t.Errorf("defaultFrom = %q", s.defaultFrom)
	}

	if _, err := buildMsg(Message{To: []string{"not an address"}}, s.defaultFrom); err == nil {
		t.Error("buildMsg accepted an invalid recipient")
	}
}

func newLocalSMTP(t *testing.T, srv *smtpServer, username string) *SMTP {
	t.Helper()
	s, err := NewSMTP(SMTPConfig{
		Host:      "127.0.0.1",
		Port:      srv.port(),
		Username:  username,
		Password:  "app-password",
		From:      "no-reply@example.com",
		TLSPolicy: "none",
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}
	return s
}

func TestSMTPSendDelivers(t *testing.T) {
	tests := []struct {
		name       string
		withAuth   bool
		username   string
		wantLogins []string
	}{
		{name: "auth plain", withAuth: true, username: "sender", wantLogins: []string{"sender:app-password"}},
		{name: "relay without auth", withAuth: false, username: ""},
		{name: "no credentials against auth server", withAuth: true, username: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			srv := newSMTPServer(t, tt.withAuth)
			s := newLocalSMTP(t, srv, tt.username)

			// Act
			err := s.Send(context.Background(), Message{
				To:       []string{"user@example.com"},
				Subject:  "Your code",
				TextBody: "Your code is 482913",
				HTMLBody: "<p>Your code is <b>482913</b></p>",
			})

			// Assert
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			got := srv.messages()
			if len(got) != 1 {
				t.Fatalf("received %d messages, want 1", len(got))
			}
			if !strings.Contains(got[0].from, "no-reply@example.com") {
				t.Errorf("MAIL FROM = %q", got[0].from)
			}
			if len(got[0].to) != 1 || !strings.Contains(got[0].to[0], "user@example.com") {
				t.Errorf("RCPT TO = %v", got[0].to)
			}
			if !strings.Contains(got[0].data, "Subject: Your code") || !strings.Contains(got[0].data, "482913") {
				t.Errorf("data = %q", got[0].data)
			}
			if logins := srv.users(); len(logins) != len(tt.wantLogins) || (len(logins) > 0 && logins[0] != tt.wantLogins[0]) {
				t.Errorf("logins = %v, want %v", logins, tt.wantLogins)
			}
		})
	}
}

func TestSMTPSendConcurrent(t *testing.T) {
	// Arrange
	const senders = 20
	srv := newSMTPServer(t, true)
	s := newLocalSMTP(t, srv, "sender")

	// Act
	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := range senders {
		wg.Go(func() {
			errs <- s.Send(context.Background(), Message{
				To:       []string{fmt.Sprintf("user%d@example.com", i)},
				Subject:  "Your code",
				TextBody: "482913",
			})
		})
	}
	wg.Wait()
	close(errs)

	// Assert
	for err := range errs {
		if err != nil {
			t.Errorf("Send: %v", err)
		}
	}
	if got := len(srv.messages()); got != senders {
		t.Errorf("received %d messages, want %d", got, senders)
	}
}

func TestSMTPCloseWithoutSend(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Provider: "gmail", Username: "sender@gmail.com"})
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}
