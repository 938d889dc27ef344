package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/makt28/kumamail/internal/config"
	"github.com/makt28/kumamail/internal/kuma"
	"github.com/makt28/kumamail/internal/notify"
)

// ExtraRecipientsHeader carries addresses added to a single request's recipients.
const ExtraRecipientsHeader = "X-Extra-Recipients"

const defaultMaxBodyBytes = 1 << 20

// Renderer turns a parsed webhook into an email body.
type Renderer interface {
	Render(hook *kuma.Webhook, kind kuma.Kind) (notify.Body, error)
}

// Notifier sends one message to each recipient and reports per-recipient results.
type Notifier interface {
	Notify(ctx context.Context, msg notify.Message, recipients []string) []notify.Result
}

// WebhookHandler relays an Uptime Kuma webhook as email.
type WebhookHandler struct {
	cfg      config.Config
	notifier Notifier
	renderer Renderer
	maxBytes int64
}

func NewWebhookHandler(cfg config.Config, notifier Notifier, renderer Renderer) *WebhookHandler {
	maxBytes := cfg.Server.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	return &WebhookHandler{
		cfg:      cfg,
		notifier: notifier,
		renderer: renderer,
		maxBytes: maxBytes,
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes\n", tooLarge.Limit))
			return
		}
		badRequest(w, "Failed to read request body")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		badRequest(w, "No request body")
		return
	}

	hook, kind, err := kuma.Parse(body)
	if err != nil {
		slog.Warn("rejected webhook payload", "error", err, "request_id", reqID)
		badRequest(w, capitalize(err.Error()))
		return
	}

	// request-scoped copy; the shared config is never written
	recipients, err := h.cfg.Recipients(r.Header.Get(ExtraRecipientsHeader))
	if err != nil {
		badRequest(w, fmt.Sprintf("Invalid %s header: %v", ExtraRecipientsHeader, err))
		return
	}

	content, err := h.renderer.Render(hook, kind)
	if err != nil {
		slog.Error("failed to render email", "error", err, "request_id", reqID)
		writeText(w, http.StatusInternalServerError, "Internal Server Error\n")
		return
	}

	slog.Info("relaying webhook",
		"kind", kind.String(),
		"recipients", len(recipients),
		"request_id", reqID,
	)

	results := h.notifier.Notify(r.Context(), notify.Message{
		From:    h.cfg.SMTP.From,
		Subject: hook.Msg,
		Text:    content.Text,
		HTML:    content.HTML,
	}, recipients)

	if failed := notify.Failed(results); len(failed) > 0 {
		writeText(w, failureStatus(failed), failureReport(failed, len(results)))
		return
	}

	if len(results) == 1 {
		writeText(w, http.StatusOK, fmt.Sprintf("Email sent to %s with the following data:\n%s\n",
			results[0].Recipient, indentJSON(body)))
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("Emails sent to %d recipients\n", len(results)))
}

// failureStatus is 504 when any send ran out of time, 502 otherwise.
func failureStatus(failed []notify.Result) int {
	for _, f := range failed {
		if errors.Is(f.Err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
	}
	return http.StatusBadGateway
}

func failureReport(failed []notify.Result, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Failed to send email to %d of %d recipients:\n", len(failed), total)
	for _, f := range failed {
		fmt.Fprintf(&b, "- %s: %v\n", f.Recipient, f.Err)
	}
	return b.String()
}

func indentJSON(body []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return string(body)
	}
	return out.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
