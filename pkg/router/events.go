package router

// EventKind distinguishes path changes from parameter changes.
type EventKind int

const (
	PathChanged EventKind = iota
	ParamChanged
)

// String returns the event name.
func (k EventKind) String() string {
	if k == PathChanged {
		return "pathChange"
	}
	return "paramChange"
}

// Event describes a state change.
type Event struct {
	Kind EventKind

	// Path is the current path after the change.
	Path string

	// Names lists the changed parameters of a ParamChanged event.
	// It is nil when the change came from a hashchange, where every
	// parameter of the path may have changed.
	Names []string
}

// Listener receives router events.
type Listener func(Event)

type subscription struct {
	fn     Listener
	active bool
}

type listeners struct {
	subs []*subscription
}

func (l *listeners) add(fn Listener) func() {
	s := &subscription{fn: fn, active: true}
	l.subs = append(l.subs, s)
	return func() {
		if !s.active {
			return
		}
		s.active = false
		for i, cur := range l.subs {
			if cur == s {
				l.subs = append(l.subs[:i], l.subs[i+1:]...)
				break
			}
		}
	}
}

// emit calls every listener registered before the call. A listener
// removed during emission is skipped.
func (l *listeners) emit(e Event) {
	snapshot := append([]*subscription(nil), l.subs...)
	for _, s := range snapshot {
		if s.active {
			s.fn(e)
		}
	}
}

func (l *listeners) len() int { return len(l.subs) }

// Observer is told about router activity. It is how metrics attach.
type Observer interface {
	Navigated(from, to string)
	ParamsChanged(path string, names []string)
	ParamRejected(path, name string)
	HistoryWritten(mode Mode)
}

type nopObserver struct{}

func (nopObserver) Navigated(string, string) {}
func (nopObserver) ParamsChanged(string, []string) {}
func (nopObserver) ParamRejected(string, string) {}
func (nopObserver) HistoryWritten(Mode) {}
