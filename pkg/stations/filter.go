package stations

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/pegelboard/pkg/param"
)

// Sort directions.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Sort selects the property and direction rows are ordered by.
type Sort struct {
	Prop string `json:"prop"`
	Dir  string `json:"dir"`
}

var comparison = regexp.MustCompile(`^([^:]+):([<>])(\d+)`)

// ApplyFilters keeps the rows that pass every filter. Blank filters are
// ignored. A filter that is not a valid regular expression matches no
// field.
func ApplyFilters(rows []Row, filters []string) []Row {
	for _, f := range filters {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		rows = slices.DeleteFunc(slices.Clone(rows), rejects(f))
	}
	return rows
}

// rejects compiles one filter into a predicate returning true for rows to
// drop.
func rejects(filter string) func(Row) bool {
	if m := comparison.FindStringSubmatch(filter); m != nil {
		prop, op := m[1], m[2]
		limit, err := strconv.Atoi(m[3])
		if err != nil {
			// m[3] is all digits, so the only failure is overflow.
			limit = math.MaxInt
		}
		return func(r Row) bool {
			n, ok := param.LeadingInt(r.Text(prop))
			if !ok {
				return true
			}
			if op == "<" {
				return n >= limit
			}
			return n <= limit
		}
	}

	negate := strings.HasPrefix(filter, "!")
	if negate {
		filter = filter[1:]
	}
	re, err := regexp.Compile(filter)
	match := func(s string) bool { return err == nil && re.MatchString(s) }

	return func(r Row) bool {
		some := slices.ContainsFunc(Columns, func(col string) bool {
			return match(r.Text(col))
		})
		if negate {
			return some
		}
		return !some
	}
}

// SortByProp orders rows in place and returns them. Numbers compare
// numerically, everything else by its upper-cased string form. An empty
// prop sorts by the first column and unknown props keep the order. The sort
// is stable.
func SortByProp(rows []Row, s Sort) []Row {
	prop := s.Prop
	if prop == "" {
		prop = Columns[0]
	}
	sign := 1
	if s.Dir == Desc {
		sign = -1
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		av, aok := a.Value(prop)
		bv, bok := b.Value(prop)
		if !aok || !bok {
			return 0
		}
		an, anum := av.(int64)
		bn, bnum := bv.(int64)
		if anum && bnum {
			return sign * cmp.Compare(an, bn)
		}
		return sign * strings.Compare(strings.ToUpper(a.Text(prop)), strings.ToUpper(b.Text(prop)))
	})
	return rows
}
