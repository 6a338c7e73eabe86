package store

import (
	"github.com/vango-dev/pegelboard/pkg/param"
	"github.com/vango-dev/pegelboard/pkg/router"
)

// RouterStore adapts a Router to the Store contract.
type RouterStore struct {
	router *router.Router
	outlet bool
}

// NewRouterStore creates a store over r. With outlet set, schemas are
// registered for the current path only.
func NewRouterStore(r *router.Router, outlet bool) *RouterStore {
	return &RouterStore{router: r, outlet: outlet}
}

// Outlet reports whether the store registers path-scoped schemas.
func (s *RouterStore) Outlet() bool {
	return s.outlet
}

// Init implements Store.
func (s *RouterStore) Init(schemas param.Schemas, listener Listener) func() {
	for _, n := range schemas {
		s.router.RegisterParam(n.Name, n.Schema, s.outlet)
	}
	if listener == nil {
		return func() {}
	}

	fn := func(router.Event) { listener() }
	releases := []func(){s.router.OnParamChange(fn)}
	if !s.outlet {
		releases = append(releases, s.router.OnPathChange(fn))
	}
	return func() {
		for _, release := range releases {
			release()
		}
	}
}

// Get implements Store.
func (s *RouterStore) Get(name string) any {
	v, _ := s.router.GetParam(name)
	return v
}

// Set implements Store.
func (s *RouterStore) Set(name string, value any) {
	s.router.SetParam(name, value)
}

// SetMany implements Store.
func (s *RouterStore) SetMany(values ...param.Value) {
	s.router.SetManyParams(values...)
}
