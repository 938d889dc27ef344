package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/makt28/kumamail/internal/config"
)

// SMTPSender delivers messages through an SMTP relay, one session per message.
type SMTPSender struct {
	Host        string
	Port        int
	Username    string
	Password    string
	ImplicitTLS bool

	// AllowInsecureAuth permits PLAIN auth on a connection without TLS.
	// net/smtp only allows that for localhost.
	AllowInsecureAuth bool

	// TLSConfig overrides the TLS settings used for both implicit TLS and STARTTLS.
	TLSConfig *tls.Config
}

// NewSMTPSender builds a sender from the resolved relay settings.
// Port 465 selects implicit TLS.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		Host:              cfg.Host,
		Port:              cfg.Port,
		Username:          cfg.User,
		Password:          cfg.Pass,
		ImplicitTLS:       cfg.Secure(),
		AllowInsecureAuth: cfg.AllowInsecureAuth,
	}
}

func (s *SMTPSender) Type() string { return "smtp" }

func (s *SMTPSender) Validate() error {
	if s.Host == "" {
		return errors.New("smtp: host is required")
	}
	if s.Port <= 0 || s.Port > 65535 {
		return errors.New("smtp: port must be between 1 and 65535")
	}
	return nil
}

// Send runs a complete SMTP transaction for msg. The context bounds the whole
// session, including the dial.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	data, err := buildMessage(msg, s.Host, time.Now())
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	if err := s.deliver(ctx, envelopeAddress(msg.From), msg.To, data); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(ErrSendFailed, ctxErr, err)
		}
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func (s *SMTPSender) deliver(ctx context.Context, from, to string, data []byte) error {
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))

	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = raw.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = raw.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = raw.Close() })
	defer stop()

	conn := raw
	if s.ImplicitTLS {
		conn = tls.Client(conn, s.tlsConfig())
	}

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if !s.ImplicitTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(s.tlsConfig()); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	return s.performSMTPTransaction(client, from, to, data)
}

func (s *SMTPSender) performSMTPTransaction(client *smtp.Client, from, to string, data []byte) error {
	if s.Username != "" {
		_, encrypted := client.TLSConnectionState()
		if err := client.Auth(s.auth(encrypted)); err != nil {
			if !encrypted && !s.AllowInsecureAuth {
				return fmt.Errorf("authentication failed: %w (the server offers no TLS, set SMTP_ALLOW_INSECURE_AUTH=true to send credentials in plaintext)", err)
			}
			return fmt.Errorf("authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	// the message is accepted once DATA closes; some servers drop the connection before QUIT
	_ = client.Quit()
	return nil
}

func (s *SMTPSender) auth(encrypted bool) smtp.Auth {
	if !encrypted && s.AllowInsecureAuth {
		return &plaintextAuth{username: s.Username, password: s.Password, host: s.Host}
	}
	return smtp.PlainAuth("", s.Username, s.Password, s.Host)
}

func (s *SMTPSender) tlsConfig() *tls.Config {
	cfg := &tls.Config{}
	if s.TLSConfig != nil {
		cfg = s.TLSConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = s.Host
	}
	return cfg
}

// plaintextAuth is PLAIN (RFC 4616) without the TLS check of smtp.PlainAuth,
// for relays on a trusted network that offer no TLS.
type plaintextAuth struct {
	username string
	password string
	host     string
}

func (a *plaintextAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if server.Name != a.host {
		return "", nil, errors.New("wrong host name")
	}
	return "PLAIN", []byte("\x00" + a.username + "\x00" + a.password), nil
}

func (a *plaintextAuth) Next(_ []byte, more bool) ([]byte, error) {
	if more {
		return nil, errors.New("unexpected server challenge")
	}
	return nil, nil
}

// envelopeAddress extracts the bare address from a sender such as
// "'Uptime Kuma' <kuma@example.com>".
func envelopeAddress(from string) string {
	if addr, err := mail.ParseAddress(from); err == nil {
		return addr.Address
	}
	return from
}

// buildMessage renders msg as a multipart/alternative MIME message.
func buildMessage(msg Message, host string, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{`text/plain; charset="UTF-8"`, msg.Text},
		{`text/html; charset="UTF-8"`, msg.HTML},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(p.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	headers := [][2]string{
		{"From", msg.From},
		{"To", msg.To},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), host)},
		{"MIME-Version", "1.0"},
		{"Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", mw.Boundary())},
	}

	var out bytes.Buffer
	for _, h := range headers {
		fmt.Fprintf(&out, "%s: %s\r\n", h[0], h[1])
	}
	out.WriteString("\r\n")
	out.Write(body.Bytes())
	return out.Bytes(), nil
}
