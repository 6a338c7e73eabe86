package widget

import (
	"context"
	"slices"
	"strconv"

	"github.com/vango-dev/pegelboard/internal/errors"
	"github.com/vango-dev/pegelboard/pkg/format"
	"github.com/vango-dev/pegelboard/pkg/pagination"
	"github.com/vango-dev/pegelboard/pkg/param"
	"github.com/vango-dev/pegelboard/pkg/stations"
	"github.com/vango-dev/pegelboard/pkg/store"
)

// Parameter names shared between widgets.
const (
	ParamSort   = "sort"
	ParamDir    = "dir"
	ParamAmount = "amount"
	ParamFilter = "filter"
)

// DefaultAmount is the page size when no amount is known.
const DefaultAmount = 25

// DefaultSiblings is the number of page links shown on each side of the
// selected page.
const DefaultSiblings = 2

// Column declares one table column.
type Column struct {
	Name      string `json:"name" yaml:"name"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty"`
	Formatter string `json:"formatter,omitempty" yaml:"formatter,omitempty"`
	Sortable  bool   `json:"sortable,omitempty" yaml:"sortable,omitempty"`
}

// DefaultColumns shows every station column, all sortable.
func DefaultColumns() []Column {
	return []Column{
		{Name: stations.ColumnName, Label: "Station", Sortable: true},
		{Name: stations.ColumnTimestamp, Label: "Zeitpunkt", Formatter: "dateTime", Sortable: true},
		{Name: stations.ColumnCurrentLevel, Label: "Pegel", Sortable: true},
		{Name: stations.ColumnHighestLevel, Label: "HHW", Sortable: true},
		{Name: stations.ColumnLowestLevel, Label: "NNW", Sortable: true},
	}
}

// ColumnView is the header state of a column.
type ColumnView struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
	// Sort is "asc" or "desc" on the sorted column and empty elsewhere.
	Sort string `json:"sort,omitempty"`
}

// PageLink is one numbered page button.
type PageLink struct {
	Index    int  `json:"index"`
	Label    int  `json:"label"`
	Selected bool `json:"selected"`
}

// TableView is everything needed to draw the table. Keys holds the
// station shortname of each row, which the details endpoint accepts as id.
type TableView struct {
	Columns      []ColumnView `json:"columns"`
	Rows         [][]string   `json:"rows"`
	Keys         []string     `json:"keys"`
	Total        int          `json:"total"`
	Slice        string       `json:"slice"`
	Offset       int          `json:"offset"`
	Amount       int          `json:"amount"`
	Pages        []PageLink   `json:"pages"`
	LeadingGap   bool         `json:"leadingGap"`
	TrailingGap  bool         `json:"trailingGap"`
	PrevDisabled bool         `json:"prevDisabled"`
	NextDisabled bool         `json:"nextDisabled"`
}

// TableOption configures a DataTable.
type TableOption func(*DataTable)

// WithAmountStore reads the page size from s instead of the table store.
func WithAmountStore(s store.Store) TableOption {
	return func(t *DataTable) { t.amountStore = s }
}

// WithFilterStore reads the filter from s instead of the table store.
func WithFilterStore(s store.Store) TableOption {
	return func(t *DataTable) { t.filterStore = s }
}

// WithFormatter sets the cell formatter.
func WithFormatter(f *format.Formatter) TableOption {
	return func(t *DataTable) {
		if f != nil {
			t.formatter = f
		}
	}
}

// WithSiblings sets how many page links surround the selected one.
func WithSiblings(n int) TableOption {
	return func(t *DataTable) { t.siblings = n }
}

// DataTable pages through a stations.Func. Sort column and direction are
// registered on its store; amount and filter are read from the stores
// given by the options, or the table store. Any change in those stores
// resets the table to the first page.
type DataTable struct {
	store       store.Store
	amountStore store.Store
	filterStore store.Store
	source      stations.Func
	columns     []Column
	formatter   *format.Formatter
	siblings    int

	offset   int
	total    int
	releases []func()
}

// NewDataTable creates a table over source. At least one column is required.
func NewDataTable(s store.Store, source stations.Func, columns []Column, opts ...TableOption) (*DataTable, error) {
	if len(columns) == 0 {
		return nil, errors.Newf(errors.CategoryConfig, "no columns defined")
	}
	t := &DataTable{
		store:     s,
		source:    source,
		columns:   columns,
		formatter: format.Default(),
		siblings:  DefaultSiblings,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.amountStore == nil {
		t.amountStore = s
	}
	if t.filterStore == nil {
		t.filterStore = s
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	t.releases = append(t.releases, s.Init(param.Schemas{
		param.Define(ParamSort, param.OneOf(names[0], names...)),
		param.Define(ParamDir, param.OneOf(stations.Asc, stations.Desc, stations.Asc)),
	}, t.reset))
	seen := []store.Store{s}
	for _, other := range []store.Store{t.amountStore, t.filterStore} {
		if slices.Contains(seen, other) {
			continue
		}
		seen = append(seen, other)
		t.releases = append(t.releases, other.Init(nil, t.reset))
	}
	return t, nil
}

func (t *DataTable) reset() {
	t.offset = 0
}

// Close releases the store subscriptions.
func (t *DataTable) Close() {
	for _, release := range t.releases {
		release()
	}
	t.releases = nil
}

// Offset returns the index of the first row shown.
func (t *DataTable) Offset() int {
	return t.offset
}

// Sort returns the current sort criteria.
func (t *DataTable) Sort() stations.Sort {
	return stations.Sort{
		Prop: store.String(t.store, ParamSort),
		Dir:  store.String(t.store, ParamDir),
	}
}

// Amount returns the current page size.
func (t *DataTable) Amount() int {
	n := store.Int(t.amountStore, ParamAmount, DefaultAmount)
	if n <= 0 {
		return DefaultAmount
	}
	return n
}

// ToggleSort sorts by col, flipping the direction. It reports false for
// unknown or unsortable columns.
func (t *DataTable) ToggleSort(col string) bool {
	c, ok := t.column(col)
	if !ok || !c.Sortable {
		return false
	}
	dir := stations.Asc
	if store.String(t.store, ParamDir) == stations.Asc {
		dir = stations.Desc
	}
	t.store.SetMany(
		param.Value{Name: ParamSort, Value: c.Name},
		param.Value{Name: ParamDir, Value: dir},
	)
	return true
}

// PrevPage moves one page back, stopping at the first page.
func (t *DataTable) PrevPage() {
	t.offset = max(0, t.offset-t.Amount())
}

// NextPage moves one page forward unless the last page is shown. The total
// is the one seen by the last Render.
func (t *DataTable) NextPage() {
	if next := t.offset + t.Amount(); next < t.total {
		t.offset = next
	}
}

// SelectPage jumps to the zero based page index.
func (t *DataTable) SelectPage(index int) {
	t.offset = max(0, index) * t.Amount()
}

// Render loads the current page and returns its view.
func (t *DataTable) Render(ctx context.Context) (TableView, error) {
	sort := t.Sort()
	page, err := t.source(ctx, stations.Query{
		Offset:  t.offset,
		Amount:  t.Amount(),
		Sort:    sort,
		Filters: store.Fields(t.filterStore, ParamFilter),
	})
	if err != nil {
		return TableView{}, err
	}
	t.total = page.Total

	v := TableView{
		Columns:      make([]ColumnView, len(t.columns)),
		Rows:         make([][]string, 0, len(page.Rows)),
		Keys:         make([]string, 0, len(page.Rows)),
		Total:        page.Total,
		Slice:        strconv.Itoa(page.Offset) + "-" + strconv.Itoa(page.Offset+len(page.Rows)),
		Offset:       page.Offset,
		Amount:       page.Amount,
		PrevDisabled: page.Offset == 0,
		NextDisabled: page.Offset+page.Amount >= page.Total,
	}
	for i, c := range t.columns {
		cv := ColumnView{Name: c.Name, Label: c.Label, Sortable: c.Sortable}
		if cv.Label == "" {
			cv.Label = c.Name
		}
		if c.Name == sort.Prop {
			cv.Sort = sort.Dir
		}
		v.Columns[i] = cv
	}
	for _, row := range page.Rows {
		cells := make([]string, len(t.columns))
		for i, c := range t.columns {
			value, _ := row.Value(c.Name)
			cells[i] = t.formatter.Format(c.Formatter, value)
		}
		v.Rows = append(v.Rows, cells)
		v.Keys = append(v.Keys, row.Name)
	}

	amount := page.Amount
	if amount <= 0 {
		amount = t.Amount()
	}
	w := pagination.Compute(page.Offset/amount, page.Pages, t.siblings)
	v.LeadingGap, v.TrailingGap = w.LeadingGap, w.TrailingGap
	for _, p := range w.Pages {
		v.Pages = append(v.Pages, PageLink{Index: p, Label: p + 1, Selected: p == w.Selected})
	}
	return v, nil
}

func (t *DataTable) column(name string) (Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
