// Package kuma parses and classifies Uptime Kuma webhook payloads.
package kuma

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformed = errors.New("invalid JSON data")
	ErrInvalid   = errors.New("invalid webhook data")
)

// testSuffix marks the payload Uptime Kuma sends from its "Test" button.
const testSuffix = " Testing"

// Kind classifies a valid payload.
type Kind int

const (
	Normal Kind = iota
	Test
)

func (k Kind) String() string {
	if k == Test {
		return "test"
	}
	return "normal"
}

// Status codes reported in Heartbeat.Status.
const (
	StatusDown = 0
	StatusUp   = 1
)

// Heartbeat is one check result.
type Heartbeat struct {
	MonitorID      int     `json:"monitorID"`
	Status         int     `json:"status"`
	Time           string  `json:"time"`
	Msg            string  `json:"msg"`
	Important      bool    `json:"important"`
	Duration       float64 `json:"duration"`
	Retries        int     `json:"retries"`
	Timezone       string  `json:"timezone"`
	TimezoneOffset string  `json:"timezoneOffset"`
	LocalDateTime  string  `json:"localDateTime"`
}

// IsUp reports whether the heartbeat is anything other than DOWN.
func (h Heartbeat) IsUp() bool { return h.Status != StatusDown }

// StatusLabel returns "UP" or "DOWN".
func (h Heartbeat) StatusLabel() string {
	if h.IsUp() {
		return "UP"
	}
	return "DOWN"
}

// Priority returns "High" for important heartbeats and "Normal" otherwise.
func (h Heartbeat) Priority() string {
	if h.Important {
		return "High"
	}
	return "Normal"
}

// Monitor is the subset of the monitor configuration used in notifications.
// Only ID, Name, URL, Type and Active are required.
type Monitor struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Type        string  `json:"type"`
	Active      bool    `json:"active"`
	Description *string `json:"description,omitempty"`
	PathName    string  `json:"pathName,omitempty"`
	Method      string  `json:"method,omitempty"`
	Hostname    *string `json:"hostname,omitempty"`
	Port        *int    `json:"port,omitempty"`
	Interval    int     `json:"interval,omitempty"`
	MaxRetries  int     `json:"maxretries,omitempty"`
}

// Webhook is the body posted by the webhook notification provider.
// Heartbeat and Monitor are nil for test payloads that omit them.
type Webhook struct {
	Heartbeat *Heartbeat `json:"heartbeat"`
	Monitor   *Monitor   `json:"monitor"`
	Msg       string     `json:"msg"`
}

var (
	requiredHeartbeatKeys = []string{
		"monitorID", "status", "time", "msg", "important",
		"duration", "retries", "timezone", "timezoneOffset", "localDateTime",
	}
	requiredMonitorKeys = []string{"id", "name", "url", "type", "active"}
)

// Parse validates body and decodes it. A message ending in " Testing" is
// accepted as a test payload whatever the shape of heartbeat and monitor.
// Required keys are checked for presence only; values of an unexpected type
// decode to their zero value.
// Errors wrap ErrMalformed for unparseable JSON and ErrInvalid for schema failures.
func Parse(body []byte) (*Webhook, Kind, error) {
	if !json.Valid(body) {
		return nil, Normal, fmt.Errorf("%w: body is not valid JSON", ErrMalformed)
	}

	var top object
	if err := json.Unmarshal(body, &top); err != nil || top == nil {
		return nil, Normal, fmt.Errorf("%w: body must be a JSON object", ErrInvalid)
	}

	msg, isString := top.value("msg").(string)

	if isString && strings.HasSuffix(msg, testSuffix) {
		hook := &Webhook{Msg: msg}
		// test payloads may carry partial objects or none at all
		if hb := top.asObject("heartbeat"); hb != nil {
			hook.Heartbeat = heartbeatFrom(hb)
		}
		if mon := top.asObject("monitor"); mon != nil {
			hook.Monitor = monitorFrom(mon)
		}
		return hook, Test, nil
	}

	if !isString {
		return nil, Normal, fmt.Errorf("%w: msg must be a string", ErrInvalid)
	}
	hb, err := requireKeys(top, "heartbeat", requiredHeartbeatKeys)
	if err != nil {
		return nil, Normal, err
	}
	mon, err := requireKeys(top, "monitor", requiredMonitorKeys)
	if err != nil {
		return nil, Normal, err
	}

	return &Webhook{
		Heartbeat: heartbeatFrom(hb),
		Monitor:   monitorFrom(mon),
		Msg:       msg,
	}, Normal, nil
}

func requireKeys(top object, name string, keys []string) (object, error) {
	raw, ok := top[name]
	if !ok || isNull(raw) {
		return nil, fmt.Errorf("%w: %s is missing", ErrInvalid, name)
	}

	fields := top.asObject(name)
	if fields == nil {
		return nil, fmt.Errorf("%w: %s must be an object", ErrInvalid, name)
	}

	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return nil, fmt.Errorf("%w: %s.%s is missing", ErrInvalid, name, k)
		}
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
