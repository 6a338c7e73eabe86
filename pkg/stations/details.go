package stations

import (
	"context"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/vango-dev/pegelboard/internal/errors"
)

// Find fetches water from src and returns the station named by id.
func Find(ctx context.Context, src Source, water, id string) (Station, error) {
	all, err := src.Fetch(ctx, water, nil)
	if err != nil {
		return Station{}, err
	}
	for _, st := range all {
		if st.Matches(id) {
			return st, nil
		}
	}
	return Station{}, errors.New("P142").WithDetail(water + "/" + id)
}

// Select evaluates a JSONPath expression against a station's raw document
// and returns every match. An empty path returns the whole document.
func Select(st Station, path string) ([]any, error) {
	doc, err := oj.Parse(st.Raw)
	if err != nil {
		return nil, errors.New("P141").Wrap(err)
	}
	if path == "" {
		return []any{doc}, nil
	}
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, errors.New("P143").WithDetail(path).Wrap(err)
	}
	return x.Get(doc), nil
}
