package notify

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of sending to one recipient.
type Result struct {
	Recipient string
	Err       error
}

// OK reports whether the send succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Failed returns the unsuccessful results, preserving order.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Router fans a message out to a list of recipients, one send per recipient.
type Router struct {
	sender  Sender
	timeout time.Duration
	limit   int
}

// NewRouter creates a router. Each send gets its own timeout; at most limit
// sends run at once (1 sends sequentially).
func NewRouter(sender Sender, timeout time.Duration, limit int) *Router {
	if limit < 1 {
		limit = 1
	}
	return &Router{sender: sender, timeout: timeout, limit: limit}
}

// Notify sends msg to every recipient and returns one result per recipient in
// the same order. A failed send does not stop the others.
func (r *Router) Notify(ctx context.Context, msg Message, recipients []string) []Result {
	results := make([]Result, len(recipients))

	var g errgroup.Group
	g.SetLimit(r.limit)
	for i, to := range recipients {
		g.Go(func() error {
			results[i] = Result{Recipient: to, Err: r.send(ctx, msg, to)}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Router) send(ctx context.Context, msg Message, to string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msg.To = to
	start := time.Now()
	if err := r.sender.Send(ctx, msg); err != nil {
		slog.Error("email send failed",
			"type", r.sender.Type(),
			"to", to,
			"duration", time.Since(start),
			"error", err,
		)
		return err
	}

	slog.Info("email sent",
		"type", r.sender.Type(),
		"to", to,
		"duration", time.Since(start),
	)
	return nil
}
