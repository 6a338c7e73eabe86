package stations

import (
	"context"
	"strings"

	"github.com/vango-dev/pegelboard/pkg/pagination"
)

// DefaultAmount is the page size used when a query names none.
const DefaultAmount = 25

const remotePrefix = "station:"

// Query describes one page request.
type Query struct {
	Offset  int
	Amount  int
	Sort    Sort
	Filters []string
}

// Page is one slice of the filtered and sorted rows.
type Page struct {
	Rows   []Row `json:"rows"`
	Total  int   `json:"total"`
	Pages  int   `json:"pages"`
	Offset int   `json:"offset"`
	Amount int   `json:"amount"`
}

// Func loads a page. Table widgets page through a Func without knowing
// where the rows come from.
type Func func(ctx context.Context, q Query) (Page, error)

// DataSource returns the page function for water.
//
// Filters starting with "station:" select station ids at the source.
// Filters without a colon are applied to the rows, where a leading "<" or
// ">" compares the current level. Other filters containing a colon are
// ignored.
func DataSource(src Source, water string) Func {
	return func(ctx context.Context, q Query) (Page, error) {
		remote, local := SplitFilters(q.Filters)
		all, err := src.Fetch(ctx, water, remote)
		if err != nil {
			return Page{}, err
		}

		rows := make([]Row, 0, len(all))
		for _, st := range all {
			rows = append(rows, st.ToRow())
		}
		rows = SortByProp(ApplyFilters(rows, local), q.Sort)

		amount := q.Amount
		if amount <= 0 {
			amount = DefaultAmount
		}
		offset := max(q.Offset, 0)
		start := min(offset, len(rows))
		end := min(offset+amount, len(rows))

		return Page{
			Rows:   rows[start:end],
			Total:  len(rows),
			Pages:  pagination.Pages(len(rows), amount),
			Offset: offset,
			Amount: amount,
		}, nil
	}
}

// SplitFilters separates remote station id filters from row filters.
func SplitFilters(filters []string) (remote, local []string) {
	for _, f := range filters {
		if id, ok := strings.CutPrefix(f, remotePrefix); ok {
			remote = append(remote, id)
			continue
		}
		if strings.Contains(f, ":") {
			continue
		}
		if strings.HasPrefix(f, "<") || strings.HasPrefix(f, ">") {
			f = ColumnCurrentLevel + ":" + f
		}
		local = append(local, f)
	}
	return remote, local
}
