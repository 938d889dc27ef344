package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DefaultPort    = "587"
	DefaultBaseURL = "http://localhost:8080"

	// implicitTLSPort selects TLS from the first byte instead of STARTTLS.
	implicitTLSPort = 465
)

// Config is the resolved, read-only configuration for the process lifetime.
type Config struct {
	SMTP         SMTPConfig
	To           []string
	WebhookToken string
	BaseURL      string
	Server       ServerConfig

	// Defaulted names the fields that fell back to their default, in declaration order.
	Defaulted []string
}

// SMTPConfig holds the relay credentials and sender address.
type SMTPConfig struct {
	User string
	Pass string
	Host string
	Port int
	From string

	// AllowInsecureAuth sends credentials to a relay that offers no TLS.
	AllowInsecureAuth bool `env:"SMTP_ALLOW_INSECURE_AUTH" envDefault:"false"`
}

// Secure reports whether the relay expects implicit TLS.
func (c SMTPConfig) Secure() bool {
	return c.Port == implicitTLSPort
}

// ServerConfig holds process settings that are not part of the mail setup.
type ServerConfig struct {
	ListenAddr      string        `env:"LISTEN_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	SMTPTimeout     time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	SendConcurrency int           `env:"SEND_CONCURRENCY" envDefault:"1"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	OutboxDir       string        `env:"EMAIL_OUTBOX_DIR"`
}

// Validate checks the server settings for logical errors.
func (s ServerConfig) Validate() error {
	var errs []string

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[s.LogLevel] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error (got %q)", s.LogLevel))
	}
	if s.ListenAddr == "" {
		errs = append(errs, "LISTEN_ADDR is required")
	}
	if s.SMTPTimeout <= 0 {
		errs = append(errs, "SMTP_TIMEOUT must be > 0")
	}
	if s.SendConcurrency < 1 {
		errs = append(errs, "SEND_CONCURRENCY must be >= 1")
	}
	if s.MaxBodyBytes <= 0 {
		errs = append(errs, "MAX_BODY_BYTES must be > 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: server settings:\n  %s", ErrInvalidValue, strings.Join(errs, "\n  "))
	}
	return nil
}

// Fields returns the mail and webhook settings. EMAIL_FROM defaults to the raw
// EMAIL_USER value.
func Fields(lookup LookupFunc) []Field {
	user, _ := lookup("EMAIL_USER")
	return []Field{
		Required("EMAIL_USER", "username for the SMTP relay", nil),
		Required("EMAIL_TO", "comma separated list of recipient addresses", ValidateEmails),
		Optional("EMAIL_FROM", "sender address, bare or \"'Sender Name' <email@address>\"", user, ValidateSender),
		Required("EMAIL_PASS", "password for the SMTP relay", nil),
		Required("EMAIL_HOST", "hostname of the SMTP relay", nil),
		Optional("EMAIL_PORT", "port of the SMTP relay", DefaultPort, ValidatePort),
		Required("WEBHOOK_TOKEN", "shared secret expected in the token query parameter (min 8 characters)", ValidateToken),
		Optional("BASE_URL", "public URL of this service, used in the startup log", DefaultBaseURL, nil),
	}
}

// Load resolves the configuration from environ. Fields that fell back to their
// default are listed in Config.Defaulted for the caller to report.
func Load(environ map[string]string) (Config, error) {
	lookup := MapLookup(environ)

	values, defaulted, err := Resolve(Fields(lookup), lookup)
	if err != nil {
		return Config{}, err
	}
	port, err := strconv.Atoi(values["EMAIL_PORT"])
	if err != nil {
		return Config{}, fmt.Errorf("%w: EMAIL_PORT: %v", ErrInvalidValue, err)
	}

	opts := env.Options{Environment: environ}
	smtp := SMTPConfig{
		User: values["EMAIL_USER"],
		Pass: values["EMAIL_PASS"],
		Host: values["EMAIL_HOST"],
		Port: port,
		From: values["EMAIL_FROM"],
	}
	if err := env.ParseWithOptions(&smtp, opts); err != nil {
		return Config{}, errors.Join(ErrInvalidValue, err)
	}

	var server ServerConfig
	if err := env.ParseWithOptions(&server, opts); err != nil {
		return Config{}, errors.Join(ErrInvalidValue, err)
	}
	if err := server.Validate(); err != nil {
		return Config{}, err
	}

	return Config{
		SMTP:         smtp,
		To:           SplitAddresses(values["EMAIL_TO"]),
		WebhookToken: values["WEBHOOK_TOKEN"],
		BaseURL:      values["BASE_URL"],
		Server:       server,
		Defaulted:    defaulted,
	}, nil
}

// Environ returns the process environment as a map.
func Environ() map[string]string {
	m := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}

// Recipients returns the configured recipients followed by the addresses in
// extra. The result is a fresh slice; c is never modified.
func (c Config) Recipients(extra string) ([]string, error) {
	out := make([]string, 0, len(c.To)+1)
	out = append(out, c.To...)
	if strings.TrimSpace(extra) == "" {
		return out, nil
	}
	if err := ValidateEmails(extra); err != nil {
		return nil, err
	}
	return append(out, SplitAddresses(extra)...), nil
}
