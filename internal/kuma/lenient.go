package kuma

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// object is a decoded JSON object whose values are read best-effort: a value of
// an unexpected type is coerced where that is unambiguous and zero otherwise.
type object map[string]json.RawMessage

// asObject returns the object stored under key, or nil if the value is absent,
// null or not an object.
func (o object) asObject(key string) object {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	var out object
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func (o object) value(key string) any {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func (o object) str(key string) string {
	switch v := o.value(key).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func (o object) number(key string) float64 {
	switch v := o.value(key).(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func (o object) integer(key string) int {
	f := o.number(key)
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

func (o object) boolean(key string) bool {
	switch v := o.value(key).(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	}
	return false
}

// optStr returns nil when the value is absent or null.
func (o object) optStr(key string) *string {
	if o.value(key) == nil {
		return nil
	}
	s := o.str(key)
	return &s
}

// optInt returns nil when the value is absent, null or not numeric.
func (o object) optInt(key string) *int {
	switch v := o.value(key).(type) {
	case float64:
		n := o.integer(key)
		return &n
	case string:
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			n := o.integer(key)
			return &n
		}
	}
	return nil
}

func heartbeatFrom(o object) *Heartbeat {
	return &Heartbeat{
		MonitorID:      o.integer("monitorID"),
		Status:         o.integer("status"),
		Time:           o.str("time"),
		Msg:            o.str("msg"),
		Important:      o.boolean("important"),
		Duration:       o.number("duration"),
		Retries:        o.integer("retries"),
		Timezone:       o.str("timezone"),
		TimezoneOffset: o.str("timezoneOffset"),
		LocalDateTime:  o.str("localDateTime"),
	}
}

func monitorFrom(o object) *Monitor {
	return &Monitor{
		ID:          o.integer("id"),
		Name:        o.str("name"),
		URL:         o.str("url"),
		Type:        o.str("type"),
		Active:      o.boolean("active"),
		Description: o.optStr("description"),
		PathName:    o.str("pathName"),
		Method:      o.str("method"),
		Hostname:    o.optStr("hostname"),
		Port:        o.optInt("port"),
		Interval:    o.integer("interval"),
		MaxRetries:  o.integer("maxretries"),
	}
}
