package notify

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrSendFailed     = errors.New("failed to send email")
	ErrInvalidMessage = errors.New("invalid email message")
)

// Message is one outbound email addressed to a single recipient.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Validate checks that the message can be handed to a Sender.
func (m Message) Validate() error {
	if m.From == "" {
		return fmt.Errorf("%w: from is required", ErrInvalidMessage)
	}
	if m.To == "" {
		return fmt.Errorf("%w: to is required", ErrInvalidMessage)
	}
	if m.Text == "" && m.HTML == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	return nil
}

// Sender is the interface that all delivery implementations must satisfy.
type Sender interface {
	// Type returns the sender type identifier (e.g., "smtp", "outbox").
	Type() string

	// Send delivers msg. It should return an error wrapping ErrSendFailed if delivery fails.
	Send(ctx context.Context, msg Message) error

	// Validate checks whether the sender configuration is valid.
	Validate() error
}
