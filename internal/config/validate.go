package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	portRegex   = regexp.MustCompile(`^\d+$`)
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	senderRegex = regexp.MustCompile(`^'[^']+' <[^\s@]+@[^\s@]+\.[^\s@]+>$`)
)

const minTokenLength = 8

// ValidatePort accepts a decimal TCP port in [1, 65535].
func ValidatePort(value string) error {
	if portRegex.MatchString(value) {
		if n, err := strconv.Atoi(value); err == nil && n >= 1 && n <= 65535 {
			return nil
		}
	}
	return fmt.Errorf("invalid port %q, expected a number between 1 and 65535 (common SMTP ports: 25, 465, 587, 2525)", value)
}

// ValidateEmail accepts a bare local@domain.tld address.
func ValidateEmail(value string) error {
	if !emailRegex.MatchString(value) {
		return fmt.Errorf("invalid email address: %s", value)
	}
	return nil
}

// ValidateSender accepts a bare address or the "'Sender Name' <email@address>" form.
func ValidateSender(value string) error {
	if strings.HasPrefix(value, "'") && strings.HasSuffix(value, ">") {
		if !senderRegex.MatchString(value) {
			return fmt.Errorf("invalid email address: %s, expected format: \"'Sender Name' <email@address>\"", value)
		}
		return nil
	}
	return ValidateEmail(value)
}

// ValidateEmails accepts a comma separated list of addresses.
// The first invalid element is reported.
func ValidateEmails(value string) error {
	for _, addr := range strings.Split(value, ",") {
		if err := ValidateEmail(strings.TrimSpace(addr)); err != nil {
			return err
		}
	}
	return nil
}

// ValidateToken enforces the minimum webhook token length.
func ValidateToken(value string) error {
	if len(value) < minTokenLength {
		return errors.New("webhook token must be at least 8 characters long")
	}
	return nil
}

// SplitAddresses splits a comma separated list, trimming whitespace and
// dropping empty elements.
func SplitAddresses(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
