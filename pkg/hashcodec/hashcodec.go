// Package hashcodec converts between a URL hash fragment and a
// (path, ordered parameters) pair.
//
// The wire format is
//
//	#<path>?<key1>=<value1>&<key2>=<value2>
//
// with standard query-string escaping. Key order is significant: it is the
// order in which keys were first encountered, so a formatted hash is stable
// across round trips.
package hashcodec

import (
	"net/url"
	"strings"
)

// Pair is a single key/value entry.
type Pair struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters with unique keys.
type Params []Pair

// Get returns the value stored under key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Keys returns the keys in order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// Len returns the number of entries.
func (p Params) Len() int { return len(p) }

// Set stores value under key, keeping the key's original position if it
// already exists.
func (p *Params) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Pair{Key: key, Value: value})
}

// Delete removes key.
func (p *Params) Delete(key string) {
	for i := range *p {
		if (*p)[i].Key == key {
			*p = append((*p)[:i], (*p)[i+1:]...)
			return
		}
	}
}

// Parse splits a hash into its path and parameters. The path is everything
// before the first '?'. Duplicate keys keep their first position and their
// last value.
func Parse(hash string) (string, Params) {
	path, query, _ := strings.Cut(hash, "?")
	return path, ParseQuery(query)
}

// ParseQuery parses a query string without the leading '?'.
// Undecodable escapes are kept literally.
func ParseQuery(query string) Params {
	var params Params
	for _, segment := range strings.Split(query, "&") {
		if segment == "" {
			continue
		}
		key, value, _ := strings.Cut(segment, "=")
		params.Set(unescape(key), unescape(value))
	}
	return params
}

// unescape decodes '+' and percent escapes like a query string. A
// malformed escape is kept literally without spoiling the valid ones
// around it.
func unescape(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c <= '9':
		return c - '0'
	case c <= 'F':
		return c - 'A' + 10
	default:
		return c - 'a' + 10
	}
}

// Format renders path and params as a hash. Entries with an empty value
// are omitted; the '?' is omitted when nothing remains.
func Format(path string, params Params) string {
	var b strings.Builder
	b.WriteString(path)
	first := true
	for _, kv := range params {
		if kv.Value == "" {
			continue
		}
		if first {
			b.WriteByte('?')
			first = false
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}
