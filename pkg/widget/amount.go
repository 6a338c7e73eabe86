package widget

import (
	"slices"

	"github.com/vango-dev/pegelboard/internal/errors"
	"github.com/vango-dev/pegelboard/pkg/param"
	"github.com/vango-dev/pegelboard/pkg/store"
)

// DefaultAmounts are the page sizes offered when none are configured.
var DefaultAmounts = []int{25, 50, 100}

// AmountView is the state of the page size select.
type AmountView struct {
	Options  []int `json:"options"`
	Selected int   `json:"selected"`
}

// AmountSelector lets the user pick the page size from a fixed list. The
// first option is the default.
type AmountSelector struct {
	store   store.Store
	options []int
	release func()
}

// NewAmountSelector registers the amount parameter on s.
func NewAmountSelector(s store.Store, options []int) (*AmountSelector, error) {
	if len(options) == 0 {
		return nil, errors.Newf(errors.CategoryConfig, "at least one amount option is required")
	}
	a := &AmountSelector{store: s, options: slices.Clone(options)}
	a.release = s.Init(param.Schemas{
		param.Define(ParamAmount, param.IntIn(a.options[0], a.options...)),
	}, nil)
	return a, nil
}

// Select sets the amount from the raw select value. Values that are not
// among the options are ignored.
func (a *AmountSelector) Select(raw string) {
	a.store.Set(ParamAmount, raw)
}

// Value returns the selected amount.
func (a *AmountSelector) Value() int {
	return store.Int(a.store, ParamAmount, a.options[0])
}

// View returns the select state.
func (a *AmountSelector) View() AmountView {
	return AmountView{Options: slices.Clone(a.options), Selected: a.Value()}
}

// Close releases the store subscription.
func (a *AmountSelector) Close() {
	a.release()
}
