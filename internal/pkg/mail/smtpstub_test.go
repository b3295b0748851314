package mail

import (
	"bufio"
	"encoding/base64"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

type receivedMail struct {
	from string
	to   []string
	data string
}

// smtpServer is a minimal in-process SMTP relay: enough of RFC 5321 for
// go-mail to deliver plain messages, optionally advertising AUTH PLAIN.
type smtpServer struct {
	ln       net.Listener
	withAuth bool

	mu       sync.Mutex
	received []receivedMail
	logins   []string
	conns    sync.WaitGroup
}

func newSMTPServer(t *testing.T, withAuth bool) *smtpServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	srv := &smtpServer{ln: ln, withAuth: withAuth}
	go srv.serve()
	t.Cleanup(func() {
		_ = ln.Close()
		srv.conns.Wait()
	})

	return srv
}

func (s *smtpServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *smtpServer) messages() []receivedMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]receivedMail(nil), s.received...)
}

func (s *smtpServer) users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.logins...)
}

func (s *smtpServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handle(conn)
		}()
	}
}

func (s *smtpServer) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = io.WriteString(conn, line+"\r\n") }

	reply("220 127.0.0.1 ESMTP ready")

	var cur receivedMail
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		verb, arg, _ := strings.Cut(strings.TrimRight(line, "\r\n"), " ")

		switch strings.ToUpper(verb) {
		case "EHLO":
			reply("250-127.0.0.1")
			if s.withAuth {
				reply("250-AUTH PLAIN")
			}
			reply("250 8BITMIME")
		case "HELO":
			reply("250 127.0.0.1")
		case "AUTH":
			if !s.withAuth {
				reply("502 5.5.1 AUTH not supported")
				continue
			}
			_, payload, _ := strings.Cut(arg, " ")
			raw, err := base64.StdEncoding.DecodeString(payload)
			parts := strings.Split(string(raw), "\x00")
			if err != nil || len(parts) != 3 {
				reply("535 5.7.8 bad credentials")
				continue
			}
			s.mu.Lock()
			s.logins = append(s.logins, parts[1]+":"+parts[2])
			s.mu.Unlock()
			reply("235 2.7.0 Authentication successful")
		case "NOOP":
			reply("250 OK")
		case "RSET":
			cur = receivedMail{}
			reply("250 OK")
		case "MAIL":
			cur = receivedMail{from: arg}
			reply("250 OK")
		case "RCPT":
			cur.to = append(cur.to, arg)
			reply("250 OK")
		case "DATA":
			reply("354 End data with <CR><LF>.<CR><LF>")
			var body strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			cur.data = body.String()
			s.mu.Lock()
			s.received = append(s.received, cur)
			s.mu.Unlock()
			cur = receivedMail{}
			reply("250 OK queued")
		case "QUIT":
			reply("221 Bye")
			return
		default:
			reply("502 5.5.2 command not recognized")
		}
	}
}
