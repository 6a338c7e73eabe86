// Package format renders table cell values for display.
//
// A formatter spec is the formatter name optionally followed by ':' and
// options, as written in a column declaration:
//
//	dateTime                 unix milliseconds -> "19.10.26, 14:05"
//	timespan                 seconds -> "1d 2h 3m 4s"
//	replace:search|replace   substring replacement
//	number                   German digit grouping ("1.234,5")
//
// Unknown formatters return the value unchanged, stringified.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/vango-dev/pegelboard/pkg/param"
)

// DateTimeLayout matches the two-digit German short date and time style.
const DateTimeLayout = "02.01.06, 15:04"

// Formatter formats values for one locale and time zone.
type Formatter struct {
	loc     *time.Location
	printer *message.Printer
}

// New returns a formatter for loc (time.Local when nil) and tag.
func New(loc *time.Location, tag language.Tag) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{loc: loc, printer: message.NewPrinter(tag)}
}

// Default returns a German formatter in the local time zone.
func Default() *Formatter {
	return New(nil, language.German)
}

// Format formats value according to spec.
func (f *Formatter) Format(spec string, value any) string {
	name, options, _ := strings.Cut(spec, ":")
	switch name {
	case "dateTime":
		return f.dateTime(value)
	case "timespan":
		return timespan(value)
	case "replace":
		search, replacement, _ := strings.Cut(options, "|")
		return strings.ReplaceAll(toString(value), search, replacement)
	case "number":
		return f.number(value)
	default:
		return toString(value)
	}
}

func (f *Formatter) dateTime(value any) string {
	var ms int64
	switch x := value.(type) {
	case int64:
		ms = x
	case int:
		ms = int64(x)
	case float64:
		ms = int64(x)
	case time.Time:
		return x.In(f.loc).Format(DateTimeLayout)
	default:
		n, err := strconv.ParseInt(toString(value), 10, 64)
		if err != nil {
			return ""
		}
		ms = n
	}
	return time.UnixMilli(ms).In(f.loc).Format(DateTimeLayout)
}

func (f *Formatter) number(value any) string {
	var v float64
	switch x := value.(type) {
	case float64:
		v = x
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	default:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(toString(value)), 64)
		if err != nil {
			return toString(value)
		}
		v = parsed
	}
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

func timespan(value any) string {
	secs, ok := param.LeadingInt(toString(value))
	if !ok {
		return ""
	}
	days := secs / 86400
	secs %= 86400
	hours := secs / 3600
	secs %= 3600
	minutes := secs / 60
	seconds := secs % 60

	var parts []string
	for _, p := range []struct {
		n    int
		unit string
	}{{days, "d"}, {hours, "h"}, {minutes, "m"}, {seconds, "s"}} {
		if p.n != 0 {
			parts = append(parts, strconv.Itoa(p.n)+p.unit)
		}
	}
	return strings.Join(parts, " ")
}

func toString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
