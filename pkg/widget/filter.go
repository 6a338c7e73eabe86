package widget

import (
	"github.com/vango-dev/pegelboard/pkg/param"
	"github.com/vango-dev/pegelboard/pkg/store"
)

// GlobalFilter holds the free text filter. On a SimpleStore the filter
// stays out of the hash and is kept across path changes, so every table
// that reads the same store sees it.
type GlobalFilter struct {
	store   store.Store
	release func()
}

// NewGlobalFilter registers the filter parameter on s.
func NewGlobalFilter(s store.Store) *GlobalFilter {
	return &GlobalFilter{
		store:   s,
		release: s.Init(param.Schemas{param.Define(ParamFilter, param.String(""))}, nil),
	}
}

// Submit sets the filter text.
func (f *GlobalFilter) Submit(text string) {
	f.store.Set(ParamFilter, text)
}

// Reset clears the filter. Stores that can be cleared are emptied as a
// whole, others get an empty filter.
func (f *GlobalFilter) Reset() {
	if c, ok := f.store.(interface{ Clear() }); ok {
		c.Clear()
		return
	}
	f.store.Set(ParamFilter, "")
}

// Value returns the current filter text.
func (f *GlobalFilter) Value() string {
	return store.String(f.store, ParamFilter)
}

// Close releases the store subscription.
func (f *GlobalFilter) Close() {
	f.release()
}
