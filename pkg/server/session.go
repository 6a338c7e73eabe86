package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/pegelboard/internal/errors"
	"github.com/vango-dev/pegelboard/pkg/router"
	"github.com/vango-dev/pegelboard/pkg/stations"
	"github.com/vango-dev/pegelboard/pkg/store"
	"github.com/vango-dev/pegelboard/pkg/widget"
)

// historyRecorder collects the hash writes of one message so they can be
// sent to the client in order.
type historyRecorder struct {
	pending []ServerMessage
}

func (h *historyRecorder) Push(hash string) {
	h.pending = append(h.pending, ServerMessage{Type: MsgHistory, Mode: router.ModePush.String(), Hash: hash})
}

func (h *historyRecorder) Replace(hash string) {
	h.pending = append(h.pending, ServerMessage{Type: MsgHistory, Mode: router.ModeReplace.String(), Hash: hash})
}

func (h *historyRecorder) drain() []ServerMessage {
	out := h.pending
	h.pending = nil
	return out
}

// Session is the state of one connected page. It is not safe for
// concurrent use; the read loop is its only caller.
type Session struct {
	id     string
	srv    *Server
	logger *slog.Logger

	history  *historyRecorder
	router   *router.Router
	registry *store.Registry
	outlet   *widget.Outlet[*widget.DataTable]
	amount   *widget.AmountSelector
	filter   *widget.GlobalFilter
	closed   bool
}

// NewSession creates a session that waits for its hello message.
func (s *Server) NewSession() *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		srv:     s,
		logger:  s.logger.With("session_id", id),
		history: &historyRecorder{},
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Started reports whether hello was received.
func (s *Session) Started() bool {
	return s.router != nil
}

// Router returns the session router, or nil before hello.
func (s *Session) Router() *router.Router {
	return s.router
}

// Handle applies one client message and returns the messages to send back:
// the history writes it caused, then either a fresh view or an error.
func (s *Session) Handle(ctx context.Context, m ClientMessage) []ServerMessage {
	ctx, span := s.srv.tracer.Start(ctx, "session."+string(m.Type),
		trace.WithAttributes(attribute.String("pegel.session_id", s.id)),
	)
	defer span.End()

	if err := s.apply(m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Debug("message rejected", "type", m.Type, "error", err)
		return append(s.history.drain(), errorMessage(err))
	}
	out := s.history.drain()
	return append(out, s.render(ctx))
}

func (s *Session) apply(m ClientMessage) error {
	if m.Type == MsgHello {
		if s.Started() {
			s.router.HandleHashChange(m.Hash)
			return nil
		}
		return s.start(m.Hash)
	}
	if !s.Started() {
		return errors.New("P162")
	}

	table, hasTable := s.outlet.Current()
	switch m.Type {
	case MsgHashChange:
		s.router.HandleHashChange(m.Hash)
	case MsgNavigate:
		return s.outlet.Navigate(m.Path)
	case MsgSort:
		if hasTable && !table.ToggleSort(m.Column) {
			s.logger.Debug("column not sortable", "column", m.Column)
		}
	case MsgPage:
		if !hasTable {
			return nil
		}
		switch m.Action {
		case PagePrev:
			table.PrevPage()
		case PageNext:
			table.NextPage()
		case PageSelect:
			table.SelectPage(m.Index)
		default:
			return errors.New("P160").WithDetail("unknown page action " + m.Action)
		}
	case MsgAmount:
		s.amount.Select(m.Value)
	case MsgFilter:
		s.filter.Submit(m.Value)
	case MsgFilterReset:
		s.filter.Reset()
	default:
		return errors.New("P161").WithDetail(string(m.Type))
	}
	return nil
}

// start builds the router and widgets from the page's starting hash.
// Global widgets register before the outlet configures the router, so
// their starting values are consumed under the initial path. The filter
// lives in the session's default SimpleStore and never reaches the hash.
func (s *Session) start(hash string) error {
	opts := []router.Option{router.WithHistory(s.history), router.WithLogger(s.logger)}
	if s.srv.metrics != nil {
		opts = append(opts, router.WithObserver(s.srv.metrics))
	}
	s.router = router.New(hash, opts...)
	s.registry = store.NewRegistry(s.router, s.logger)

	global := s.registry.GetOrCreate(store.RouterStoreName)
	if len(s.srv.opts.Params) > 0 {
		global.Init(s.srv.opts.Params, nil)
	}
	s.filter = widget.NewGlobalFilter(s.registry.GetOrCreate(store.DefaultStore))
	amount, err := widget.NewAmountSelector(global, s.srv.opts.Amounts)
	if err != nil {
		s.filter.Close()
		s.router, s.registry, s.filter = nil, nil, nil
		return err
	}
	s.amount = amount

	s.outlet = widget.NewOutlet(s.router, s.srv.opts.Paths, s.buildTable, s.logger)
	s.logger.Info("session started", "path", s.router.CurrentPath())
	if s.srv.metrics != nil {
		s.srv.metrics.SessionOpened()
	}
	return nil
}

func (s *Session) buildTable(path string) (*widget.DataTable, error) {
	water := strings.TrimPrefix(path, "#")
	global := s.registry.GetOrCreate(store.RouterStoreName)
	return widget.NewDataTable(
		s.registry.GetOrCreate(store.OutletRouterStoreName),
		stations.DataSource(s.srv.opts.Source, water),
		s.srv.opts.Columns,
		widget.WithAmountStore(global),
		widget.WithFilterStore(s.registry.GetOrCreate(store.DefaultStore)),
		widget.WithFormatter(s.srv.opts.Formatter),
	)
}

// render builds the view message for the current state. A failing table
// still yields a view carrying the error text.
func (s *Session) render(ctx context.Context) ServerMessage {
	v := &ViewPayload{
		Path:   s.router.CurrentPath(),
		Links:  s.outlet.Links(),
		Amount: s.amount.View(),
		Filter: s.filter.Value(),
	}
	if table, ok := s.outlet.Current(); ok {
		tv, err := table.Render(ctx)
		if err != nil {
			s.logger.Warn("table render failed", "path", v.Path, "error", err)
			v.Error = errorMessage(err).Message
		} else {
			v.Table = &tv
		}
	} else if err := s.outlet.Err(); err != nil {
		v.Error = errorMessage(err).Message
	}
	return ServerMessage{Type: MsgView, View: v}
}

// Close releases the widgets. It is safe to call more than once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if !s.Started() {
		return
	}
	s.outlet.Close()
	s.amount.Close()
	s.filter.Close()
	if s.srv.metrics != nil {
		s.srv.metrics.SessionClosed()
	}
	s.logger.Info("session closed")
}
