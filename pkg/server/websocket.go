package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	maxMessageSize = 64 << 10
)

// HandleWebSocket upgrades the request and runs a session on it until the
// connection closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	sess := s.NewSession()
	sess.ReadLoop(r.Context(), conn)
}

// ReadLoop reads client messages until the connection fails or ctx ends.
// Messages are handled one at a time, and every reply is written before
// the next message is read. A heartbeat goroutine keeps the connection
// alive with pings; WriteControl may run concurrently with the loop.
func (s *Session) ReadLoop(ctx context.Context, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer conn.Close()
	defer s.Close()

	timeout := s.srv.opts.ReadTimeout
	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeout))
	})
	go s.heartbeat(ctx, conn, timeout/2)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		var out []ServerMessage
		if m, err := DecodeClientMessage(data); err != nil {
			s.logger.Debug("decode error", "error", err)
			out = []ServerMessage{errorMessage(err)}
		} else {
			out = s.Handle(ctx, m)
		}

		for _, msg := range out {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Error("write error", "error", err)
				return
			}
		}
	}
}

func (s *Session) heartbeat(ctx context.Context, conn *websocket.Conn, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
