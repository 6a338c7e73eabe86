package widget

import (
	"log/slog"
	"strings"

	"github.com/vango-dev/pegelboard/internal/logging"
	"github.com/vango-dev/pegelboard/pkg/router"
)

// View is a set of widgets bound to one path.
type View interface {
	Close()
}

// Factory builds the view for path.
type Factory[V View] func(path string) (V, error)

// Link is one entry of the outlet navigation.
type Link struct {
	Path   string `json:"path"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Outlet owns the list of allowed paths and the view of the current one.
// On every path change the previous view is closed before the next one is
// built, so path scoped schemas register under the new path.
type Outlet[V View] struct {
	router  *router.Router
	paths   []string
	factory Factory[V]
	logger  *slog.Logger

	current V
	built   bool
	err     error
	release func()
}

// NewOutlet subscribes to path changes of r and configures it with paths.
// Configure always announces the resulting path, which builds the first
// view before NewOutlet returns.
func NewOutlet[V View](r *router.Router, paths []string, factory Factory[V], logger *slog.Logger) *Outlet[V] {
	if logger == nil {
		logger = logging.Nop()
	}
	o := &Outlet[V]{router: r, paths: paths, factory: factory, logger: logger}
	o.release = r.OnPathChange(func(e router.Event) { o.rebuild(e.Path) })
	r.Configure(paths)
	return o
}

func (o *Outlet[V]) rebuild(path string) {
	o.closeView()
	v, err := o.factory(path)
	if err != nil {
		o.err = err
		o.logger.Warn("outlet view failed", "path", path, "error", err)
		return
	}
	o.current, o.built, o.err = v, true, nil
	o.logger.Debug("outlet view built", "path", path)
}

func (o *Outlet[V]) closeView() {
	if o.built {
		o.current.Close()
	}
	var zero V
	o.current, o.built = zero, false
}

// Current returns the view of the current path. ok is false while no view
// could be built.
func (o *Outlet[V]) Current() (v V, ok bool) {
	return o.current, o.built
}

// Err returns the error of the last failed build.
func (o *Outlet[V]) Err() error {
	return o.err
}

// Navigate switches to path.
func (o *Outlet[V]) Navigate(path string) error {
	return o.router.Navigate(path)
}

// Links returns the navigation entries, marking the current path.
func (o *Outlet[V]) Links() []Link {
	current := o.router.CurrentPath()
	links := make([]Link, 0, len(o.paths))
	for _, p := range o.paths {
		links = append(links, Link{
			Path:   p,
			Label:  strings.TrimPrefix(p, "#"),
			Active: p == current,
		})
	}
	return links
}

// Close unsubscribes from the router and closes the current view.
func (o *Outlet[V]) Close() {
	if o.release != nil {
		o.release()
		o.release = nil
	}
	o.closeView()
}
