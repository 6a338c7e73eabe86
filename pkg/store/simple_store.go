package store

import (
	"maps"
	"sync"

	"github.com/vango-dev/pegelboard/pkg/param"
)

// SimpleStore keeps values in memory, outside the URL.
//
// Values are validated with the local schema but stored raw. Listeners are
// called synchronously in registration order after every Set, SetMany and
// Clear. A SimpleStore is safe for concurrent use, but listeners run with
// no lock held and may observe later writes.
type SimpleStore struct {
	mu        sync.Mutex
	values    map[string]any
	schemas   map[string]param.Schema
	listeners []*simpleListener
}

type simpleListener struct {
	fn     Listener
	active bool
}

// NewSimpleStore creates an empty store.
func NewSimpleStore() *SimpleStore {
	return &SimpleStore{
		values:  make(map[string]any),
		schemas: make(map[string]param.Schema),
	}
}

// Init merges schemas into the ones registered before and adds listener.
func (s *SimpleStore) Init(schemas param.Schemas, listener Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range schemas {
		s.schemas[n.Name] = n.Schema
	}
	if listener == nil {
		return func() {}
	}
	l := &simpleListener{fn: listener, active: true}
	s.listeners = append(s.listeners, l)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		l.active = false
		for i, cur := range s.listeners {
			if cur == l {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				break
			}
		}
	}
}

// Get implements Store.
func (s *SimpleStore) Get(name string) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[name]; ok && v != nil {
		return v
	}
	if schema, ok := s.schemas[name]; ok {
		return schema.Default
	}
	return nil
}

// Set implements Store.
func (s *SimpleStore) Set(name string, value any) {
	s.mu.Lock()
	s.set(name, value)
	s.mu.Unlock()
	s.notify()
}

// SetMany implements Store.
func (s *SimpleStore) SetMany(values ...param.Value) {
	s.mu.Lock()
	for _, v := range values {
		s.set(v.Name, v.Value)
	}
	s.mu.Unlock()
	s.notify()
}

// Clear removes every value, keeps the schemas and notifies listeners.
func (s *SimpleStore) Clear() {
	s.mu.Lock()
	clear(s.values)
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns a copy of the stored values.
func (s *SimpleStore) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.values)
}

// set stores value if the schema accepts it. Unknown names are ignored.
func (s *SimpleStore) set(name string, value any) {
	schema, ok := s.schemas[name]
	if !ok {
		return
	}
	if _, ok := schema.Resolve(value); ok {
		s.values[name] = value
	}
}

func (s *SimpleStore) notify() {
	s.mu.Lock()
	snapshot := append([]*simpleListener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range snapshot {
		s.mu.Lock()
		active := l.active
		s.mu.Unlock()
		if active {
			l.fn()
		}
	}
}
