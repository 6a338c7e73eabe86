package store

import (
	"strings"

	"github.com/vango-dev/pegelboard/pkg/param"
)

// Listener is notified after a store changed.
type Listener func()

// Store is the contract shared by router-backed and in-memory stores.
type Store interface {
	// Init registers schemas and subscribes listener, which may be nil.
	// The returned func removes the subscription.
	Init(schemas param.Schemas, listener Listener) (release func())

	// Get returns the current value of name, or its default.
	// It returns nil for names no schema declared.
	Get(name string) any

	// Set validates and stores a single value.
	Set(name string, value any)

	// SetMany validates and stores several values with one notification.
	SetMany(values ...param.Value)
}

// String reads name from s as a string. Non-string values are encoded.
func String(s Store, name string) string {
	switch v := s.Get(name).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return param.Encode(v)
	}
}

// Int reads name from s as an int, or fallback when the value is missing
// or not an integer.
func Int(s Store, name string, fallback int) int {
	switch v := param.AsInt(s.Get(name)).(type) {
	case int:
		return v
	default:
		return fallback
	}
}

// Fields reads name from s and splits it on spaces.
func Fields(s Store, name string) []string {
	v := String(s, name)
	if v == "" {
		return nil
	}
	return strings.Split(v, " ")
}
