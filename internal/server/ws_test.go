package server

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackjackpsp/blackjackd/internal/protocol"
)

// freePort reserves an ephemeral port for the bridge listener. The
// main TCP listener can bind port 0 directly, but the HTTP server
// needs the port number up front.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func dialWebSocket(t *testing.T, port int) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("ws://127.0.0.1:%d/ws", port)
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 2*time.Second, 20*time.Millisecond, "bridge must come up")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func wsSend(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType, data interface{}) {
	t.Helper()
	msg, err := protocol.NewMessage(msgType, data)
	require.NoError(t, err)
	line, err := protocol.EncodeLine(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, line))
}

func wsRecvState(t *testing.T, conn *websocket.Conn) protocol.TableStateData {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	frameType, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, frameType)
	assert.False(t, bytes.HasSuffix(frame, []byte("\n")), "frames carry no newline")

	msg, err := protocol.DecodeLine(frame)
	require.NoError(t, err)
	require.Equal(t, protocol.TypeTableState, msg.Type)
	var data protocol.TableStateData
	require.NoError(t, protocol.DecodeData(msg, &data))
	return data
}

func TestWebSocketBridgeRound(t *testing.T) {
	port := freePort(t)
	_, _ = startTestServer(t, func(c *Config) { c.Server.WSPort = port })

	conn := dialWebSocket(t, port)

	wsSend(t, conn, protocol.TypeJoinTable, protocol.JoinTableData{PlayerName: "ana", BuyIn: 1000, NumDecks: 1})
	state := wsRecvState(t, conn)
	assert.Equal(t, "ana", state.PlayerName)
	assert.Equal(t, 1000, state.PlayerChips)
	assert.Equal(t, "BETTING", state.GameState)

	wsSend(t, conn, protocol.TypePlaceBet, protocol.PlaceBetData{Amount: 100})
	state = wsRecvState(t, conn)
	assert.Equal(t, 900, state.PlayerChips)
	require.Len(t, state.DealerHand, 2)
	if state.GameState == "PLAYING" {
		assert.True(t, state.DealerHand[1].IsHidden(), "hole card masked on the bridge too")
	} else {
		// Dealt a natural; the result frame follows
		require.Equal(t, "FINISHED", state.GameState)
	}
}

func TestWebSocketSessionRegistered(t *testing.T) {
	port := freePort(t)
	srv, _ := startTestServer(t, func(c *Config) { c.Server.WSPort = port })

	conn := dialWebSocket(t, port)
	wsSend(t, conn, protocol.TypeJoinTable, protocol.JoinTableData{PlayerName: "ana"})
	wsRecvState(t, conn)
	require.Equal(t, 1, srv.SessionCount())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return srv.SessionCount() == 0 },
		2*time.Second, 10*time.Millisecond, "bridge session must unregister on disconnect")
}

func TestHealthEndpoint(t *testing.T) {
	port := freePort(t)
	startTestServer(t, func(c *Config) { c.Server.WSPort = port })

	var resp *http.Response
	require.Eventually(t, func() bool {
		r, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
		if err != nil {
			return false
		}
		resp = r
		return true
	}, 2*time.Second, 20*time.Millisecond)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
