package router

import (
	"log/slog"
	"slices"

	"github.com/vango-dev/pegelboard/internal/errors"
	"github.com/vango-dev/pegelboard/internal/logging"
	"github.com/vango-dev/pegelboard/pkg/hashcodec"
	"github.com/vango-dev/pegelboard/pkg/param"
)

// DefaultPath is the path of an empty hash.
const DefaultPath = "#"

// ErrNotConfigured is returned by Navigate before Configure has set any
// allowed paths.
var ErrNotConfigured = errors.New("P101")

// Option configures a Router.
type Option func(*Router)

// WithHistory sets the history that receives hash writes.
func WithHistory(h History) Option {
	return func(r *Router) {
		if h != nil {
			r.history = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver sets the observer told about router activity.
func WithObserver(o Observer) Option {
	return func(r *Router) {
		if o != nil {
			r.observer = o
		}
	}
}

// Router is the path and parameter state machine bound to the hash.
type Router struct {
	allowed []string
	current string

	// initial holds the starting hash parameters until the schema of the
	// same name registers and consumes them.
	initial hashcodec.Params

	values map[string]*valueMap
	global map[string]param.Schema
	outlet map[string]map[string]param.Schema

	pathListeners  listeners
	paramListeners listeners

	history  History
	logger   *slog.Logger
	observer Observer
}

// New creates a Router from the starting hash. The path is taken as
// current right away; the parameters wait for their schemas.
func New(hash string, opts ...Option) *Router {
	r := &Router{
		values:   make(map[string]*valueMap),
		global:   make(map[string]param.Schema),
		outlet:   make(map[string]map[string]param.Schema),
		history:  nopHistory{},
		logger:   logging.Nop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}

	path, params := hashcodec.Parse(hash)
	if path == "" {
		path = DefaultPath
	}
	r.current = path
	r.initial = params
	return r
}

// CurrentPath returns the current path.
func (r *Router) CurrentPath() string {
	return r.current
}

// AllowedPaths returns a copy of the configured paths.
func (r *Router) AllowedPaths() []string {
	return slices.Clone(r.allowed)
}

// Hash returns the hash that represents the current state.
func (r *Router) Hash() string {
	vm := r.values[r.current]
	if vm == nil {
		return r.current
	}
	return hashcodec.Format(r.current, vm.params())
}

// RegisterParam adds a schema to the global registry, or with outlet set
// to the registry of the current path. Registering a name again in the
// same scope replaces the schema.
//
// If the starting hash carried a value for name that no schema consumed
// yet, it is applied now and the hash is rewritten without a new history
// entry.
func (r *Router) RegisterParam(name string, schema param.Schema, outlet bool) {
	if outlet {
		defs := r.outlet[r.current]
		if defs == nil {
			defs = make(map[string]param.Schema)
			r.outlet[r.current] = defs
		}
		defs[name] = schema
	} else {
		r.global[name] = schema
	}

	raw, ok := r.initial.Get(name)
	if !ok {
		return
	}
	r.initial.Delete(name)
	r.apply(name, raw)
	r.write(ModeReplace)
}

// Configure sets the allowed paths. The current path is kept if allowed,
// otherwise the first allowed path becomes current. Either way the hash is
// normalized in place and listeners get a path change so the initial view
// can render. An empty list is ignored.
//
// Unlike Navigate, Configure writes with Replace rather than Push: it runs
// while the page loads, and the corrected starting hash must not leave the
// unnormalized one behind as a back-button entry.
func (r *Router) Configure(paths []string) {
	if len(paths) == 0 {
		return
	}
	r.allowed = slices.Clone(paths)
	from := r.current
	r.current = r.allowedOrFirst(r.current)
	r.write(ModeReplace)
	if from != r.current {
		r.observer.Navigated(from, r.current)
	}
	r.pathListeners.emit(Event{Kind: PathChanged, Path: r.current})
}

// Navigate makes path current. Paths that are not allowed are replaced by
// the first allowed path. Navigating to the current path does nothing.
func (r *Router) Navigate(path string) error {
	if len(r.allowed) == 0 {
		return ErrNotConfigured
	}
	path = r.allowedOrFirst(path)
	if path == r.current {
		return nil
	}
	from := r.current
	r.current = path
	r.write(ModePush)
	r.observer.Navigated(from, path)
	r.pathListeners.emit(Event{Kind: PathChanged, Path: path})
	return nil
}

// SetParam parses and validates value under the current path and stores
// it. A value that fails validation is dropped without touching state,
// hash or listeners; SetParam then reports false.
func (r *Router) SetParam(name string, value any) bool {
	if !r.apply(name, value) {
		return false
	}
	r.write(ModePush)
	names := []string{name}
	r.observer.ParamsChanged(r.current, names)
	r.paramListeners.emit(Event{Kind: ParamChanged, Path: r.current, Names: names})
	return true
}

// SetManyParams applies several values with a single history entry and a
// single event. Invalid values are dropped individually; if none is valid
// nothing happens. It returns the names that were applied.
func (r *Router) SetManyParams(values ...param.Value) []string {
	var names []string
	for _, v := range values {
		if r.apply(v.Name, v.Value) {
			names = append(names, v.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	r.write(ModePush)
	r.observer.ParamsChanged(r.current, names)
	r.paramListeners.emit(Event{Kind: ParamChanged, Path: r.current, Names: names})
	return names
}

// GetParam resolves name under the current path: the stored value first,
// then the outlet schema default, then the global schema default.
// ok is false when no schema for name was ever registered.
func (r *Router) GetParam(name string) (value any, ok bool) {
	if vm := r.values[r.current]; vm != nil {
		if v, found := vm.get(name); found {
			return v, true
		}
	}
	if s, found := r.outlet[r.current][name]; found {
		return s.Default, true
	}
	if s, found := r.global[name]; found {
		return s.Default, true
	}
	return nil, false
}

// HandleHashChange reconciles state with a hash the browser changed on
// its own (back/forward or manual edit). The path's parameters are rebuilt
// from the hash alone, invalid ones are dropped, and the cleaned hash
// replaces the current history entry.
func (r *Router) HandleHashChange(hash string) {
	path, params := hashcodec.Parse(hash)
	if len(r.allowed) > 0 {
		path = r.allowedOrFirst(path)
	}
	if path == "" {
		path = DefaultPath
	}

	from := r.current
	r.current = path
	r.values[path] = newValueMap()
	for _, kv := range params {
		r.apply(kv.Key, kv.Value)
	}
	r.write(ModeReplace)

	if path != from {
		r.observer.Navigated(from, path)
		r.pathListeners.emit(Event{Kind: PathChanged, Path: path})
		return
	}
	r.observer.ParamsChanged(path, nil)
	r.paramListeners.emit(Event{Kind: ParamChanged, Path: path})
}

// OnPathChange subscribes to path changes. The returned func unsubscribes.
func (r *Router) OnPathChange(fn Listener) func() {
	return r.pathListeners.add(fn)
}

// OnParamChange subscribes to parameter changes. The returned func
// unsubscribes.
func (r *Router) OnParamChange(fn Listener) func() {
	return r.paramListeners.add(fn)
}

// ListenerCount returns the number of path and param listeners.
func (r *Router) ListenerCount() (path, params int) {
	return r.pathListeners.len(), r.paramListeners.len()
}

// schema resolves the schema for name under the current path.
func (r *Router) schema(name string) (param.Schema, bool) {
	if s, ok := r.outlet[r.current][name]; ok {
		return s, true
	}
	s, ok := r.global[name]
	return s, ok
}

// apply stores a validated value under the current path, or deletes the
// entry when the parsed value is falsy. Unknown names and invalid values
// leave state untouched.
func (r *Router) apply(name string, raw any) bool {
	s, ok := r.schema(name)
	if !ok {
		r.logger.Debug("param not registered", "path", r.current, "name", name)
		return false
	}
	v, ok := s.Resolve(raw)
	if !ok {
		r.logger.Debug("param rejected", "path", r.current, "name", name, "value", raw)
		r.observer.ParamRejected(r.current, name)
		return false
	}
	vm := r.values[r.current]
	if vm == nil {
		vm = newValueMap()
		r.values[r.current] = vm
	}
	if param.Truthy(v) {
		vm.set(name, v)
	} else {
		vm.delete(name)
	}
	return true
}

func (r *Router) write(mode Mode) {
	hash := r.Hash()
	if mode == ModeReplace {
		r.history.Replace(hash)
	} else {
		r.history.Push(hash)
	}
	r.observer.HistoryWritten(mode)
}

func (r *Router) allowedOrFirst(path string) string {
	if slices.Contains(r.allowed, path) {
		return path
	}
	return r.allowed[0]
}

// valueMap is an insertion-ordered map of parsed values.
type valueMap struct {
	keys []string
	vals map[string]any
}

func newValueMap() *valueMap {
	return &valueMap{vals: make(map[string]any)}
}

func (m *valueMap) get(name string) (any, bool) {
	v, ok := m.vals[name]
	return v, ok
}

func (m *valueMap) set(name string, v any) {
	if _, ok := m.vals[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.vals[name] = v
}

func (m *valueMap) delete(name string) {
	if _, ok := m.vals[name]; !ok {
		return
	}
	delete(m.vals, name)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == name })
}

func (m *valueMap) params() hashcodec.Params {
	out := make(hashcodec.Params, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, hashcodec.Pair{Key: k, Value: param.Encode(m.vals[k])})
	}
	return out
}
