package param

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// invalidValue is the type of the Invalid sentinel.
type invalidValue struct{}

func (invalidValue) String() string { return "<invalid>" }

// Invalid is what parsers return for input they cannot parse.
var Invalid any = invalidValue{}

// Parser converts a raw value into its typed form. It must be total.
type Parser func(raw any) any

// Validator reports whether a parsed value is acceptable.
type Validator func(value any) bool

// Schema declares how to parse, validate and default one parameter.
type Schema struct {
	Parser    Parser
	Validator Validator
	Default   any
}

// Resolve parses raw and validates the result.
// A parser that panics is treated as having returned Invalid.
func (s Schema) Resolve(raw any) (value any, ok bool) {
	if s.Parser == nil || s.Validator == nil {
		return nil, false
	}
	value = s.parse(raw)
	if value == Invalid || !s.Validator(value) {
		return nil, false
	}
	return value, true
}

func (s Schema) parse(raw any) (value any) {
	defer func() {
		if recover() != nil {
			value = Invalid
		}
	}()
	return s.Parser(raw)
}

// Named pairs a parameter name with its schema.
type Named struct {
	Name   string
	Schema Schema
}

// Define returns a Named schema.
func Define(name string, s Schema) Named {
	return Named{Name: name, Schema: s}
}

// Schemas is an ordered list of named schemas. Registration follows list
// order, which in turn fixes the key order of the hash.
type Schemas []Named

// Lookup returns the schema registered under name.
func (s Schemas) Lookup(name string) (Schema, bool) {
	for _, n := range s {
		if n.Name == name {
			return n.Schema, true
		}
	}
	return Schema{}, false
}

// Value is a name/value pair passed to multi-parameter setters.
type Value struct {
	Name  string
	Value any
}

// Truthy reports whether v counts as set. Zero numbers, empty strings,
// false, nil and Invalid are not; the router deletes such values instead
// of storing them so the hash stays minimal.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case invalidValue:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case int32:
		return x != 0
	case uint:
		return x != 0
	case uint64:
		return x != 0
	case float64:
		return x != 0
	case float32:
		return x != 0
	default:
		return true
	}
}

// Encode renders a parsed value in its hash form.
func Encode(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// AsString is a parser that accepts strings and stringifies anything else.
func AsString(raw any) any {
	if raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return Encode(raw)
}

// AsInt is a parser for base-10 integers. Like parseInt it accepts a
// leading integer prefix ("50 rows" parses to 50).
func AsInt(raw any) any {
	switch x := raw.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case string:
		if n, ok := LeadingInt(x); ok {
			return n
		}
	}
	return Invalid
}

// AsBool is a parser for "true"/"false" style values.
func AsBool(raw any) any {
	switch x := raw.(type) {
	case bool:
		return x
	case string:
		if b, err := strconv.ParseBool(x); err == nil {
			return b
		}
	}
	return Invalid
}

// LeadingInt parses the optionally signed run of digits that starts s,
// after leading whitespace.
func LeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// String accepts any string.
func String(def string) Schema {
	return Schema{
		Parser:    AsString,
		Validator: func(any) bool { return true },
		Default:   def,
	}
}

// OneOf accepts one of the listed strings.
func OneOf(def string, values ...string) Schema {
	allowed := slices.Clone(values)
	return Schema{
		Parser: AsString,
		Validator: func(v any) bool {
			s, ok := v.(string)
			return ok && slices.Contains(allowed, s)
		},
		Default: def,
	}
}

// Int accepts any integer.
func Int(def int) Schema {
	return Schema{
		Parser: AsInt,
		Validator: func(v any) bool {
			_, ok := v.(int)
			return ok
		},
		Default: def,
	}
}

// IntIn accepts one of the listed integers.
func IntIn(def int, values ...int) Schema {
	allowed := slices.Clone(values)
	return Schema{
		Parser: AsInt,
		Validator: func(v any) bool {
			n, ok := v.(int)
			return ok && slices.Contains(allowed, n)
		},
		Default: def,
	}
}

// Any accepts every value unchanged.
func Any(def any) Schema {
	return Schema{
		Parser:    func(raw any) any { return raw },
		Validator: func(any) bool { return true },
		Default:   def,
	}
}
