package config

import (
	"errors"
	"fmt"
)

var (
	ErrMissingValue = errors.New("missing required value")
	ErrInvalidValue = errors.New("invalid value")
)

// Validator checks a raw value. A nil error means the value is accepted.
type Validator func(value string) error

// Field describes one environment-sourced setting.
// Use Required or Optional to build one; an optional field always carries a default.
type Field struct {
	Name      string
	Help      string
	Validator Validator

	optional bool
	fallback string
}

// Required returns a field that must be present in the environment.
func Required(name, help string, v Validator) Field {
	return Field{Name: name, Help: help, Validator: v}
}

// Optional returns a field that falls back to def when absent.
func Optional(name, help, def string, v Validator) Field {
	return Field{Name: name, Help: help, Validator: v, optional: true, fallback: def}
}

// IsOptional reports whether the field has a default.
func (f Field) IsOptional() bool { return f.optional }

// Default returns the fallback value and whether the field has one.
func (f Field) Default() (string, bool) { return f.fallback, f.optional }

// LookupFunc returns the raw value for key. Empty values are treated as absent.
type LookupFunc func(key string) (string, bool)

// MapLookup adapts a plain map to a LookupFunc.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// Resolve resolves every field against lookup and stops at the first failure.
// It returns the resolved values keyed by field name and the names of the fields
// that fell back to their default, in declaration order.
func Resolve(fields []Field, lookup LookupFunc) (map[string]string, []string, error) {
	values := make(map[string]string, len(fields))
	var defaulted []string

	for _, f := range fields {
		raw, ok := lookup(f.Name)
		if ok && raw != "" {
			if f.Validator != nil {
				if err := f.Validator(raw); err != nil {
					return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, f.Name, err)
				}
			}
			values[f.Name] = raw
			continue
		}

		if def, ok := f.Default(); ok {
			values[f.Name] = def
			defaulted = append(defaulted, f.Name)
			continue
		}

		return nil, nil, fmt.Errorf("%w: %s: %s", ErrMissingValue, f.Name, f.Help)
	}

	return values, defaulted, nil
}
