package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readUntilView collects messages up to and including the next view or
// error message.
func readUntilView(t *testing.T, conn *websocket.Conn) []ServerMessage {
	t.Helper()
	var out []ServerMessage
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var m ServerMessage
		require.NoError(t, conn.ReadJSON(&m))
		out = append(out, m)
		if m.Type == MsgView || m.Type == MsgError {
			return out
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	srv, _ := newTestServer(t, newFixtureSource(t))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgHello, Hash: "#ELBE?sort=timestamp"}))
	out := readUntilView(t, conn)
	assert.Equal(t, []string{"replace #ELBE", "replace #ELBE?sort=timestamp"}, history(out))
	v := out[len(out)-1].View
	require.NotNil(t, v)
	assert.Equal(t, "#ELBE", v.Path)
	assert.Equal(t, 3, v.Table.Total)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgNavigate, Path: "#RHEIN"}))
	out = readUntilView(t, conn)
	assert.Equal(t, []string{"push #RHEIN"}, history(out))
	assert.Equal(t, "#RHEIN", out[len(out)-1].View.Path)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	out = readUntilView(t, conn)
	require.Len(t, out, 1)
	assert.Equal(t, "P160", out[0].Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"value":"x"}`)))
	out = readUntilView(t, conn)
	assert.Equal(t, "P160", out[0].Code)
}
