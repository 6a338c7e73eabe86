package store

import (
	"log/slog"
	"sync"

	"github.com/vango-dev/pegelboard/internal/logging"
	"github.com/vango-dev/pegelboard/pkg/router"
)

// Well-known store names.
const (
	// RouterStoreName selects the router store with global schemas.
	RouterStoreName = "RouterStore"

	// OutletRouterStoreName selects the router store with path-scoped schemas.
	OutletRouterStoreName = "OutletRouterStore"

	// DefaultStore is the name widgets use when none is configured.
	DefaultStore = "default"
)

// Registry creates stores on first use and hands out the same instance for
// the same name afterwards.
type Registry struct {
	router *router.Router
	stores sync.Map // map[string]Store
	logger *slog.Logger
}

// NewRegistry creates a registry whose router stores are backed by r.
func NewRegistry(r *router.Router, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Registry{router: r, logger: logger}
}

// GetOrCreate returns the store registered under name, creating it first
// if needed.
func (reg *Registry) GetOrCreate(name string) Store {
	if s, ok := reg.stores.Load(name); ok {
		return s.(Store)
	}

	var created Store
	switch name {
	case RouterStoreName:
		created = NewRouterStore(reg.router, false)
	case OutletRouterStoreName:
		created = NewRouterStore(reg.router, true)
	default:
		created = NewSimpleStore()
	}

	actual, loaded := reg.stores.LoadOrStore(name, created)
	if !loaded {
		reg.logger.Debug("store created", "name", name)
	}
	return actual.(Store)
}

// Simple returns the SimpleStore registered under name. It returns nil if
// name selects a router store.
func (reg *Registry) Simple(name string) *SimpleStore {
	s, _ := reg.GetOrCreate(name).(*SimpleStore)
	return s
}

// Router returns the router behind the registry's router stores.
func (reg *Registry) Router() *router.Router {
	return reg.router
}
