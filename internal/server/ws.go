package server

import (
	"bytes"
	"net/http"

	"github.com/gorilla/websocket"
)

// The WebSocket bridge carries the same protocol as the TCP listener,
// one message per text frame. Browser clients cannot open raw sockets;
// everything past the framing is identical.

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local desktop clients connect from a file:// origin
		return true
	},
}

// handleWebSocket upgrades the request and runs a normal session over
// the framed connection
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}
	s.startSession(&wsLineConn{conn: conn})
}

// wsLineConn adapts a websocket connection to lineConn. Frames arrive
// already delimited, so a frame is a line.
type wsLineConn struct {
	conn *websocket.Conn
}

func (w *wsLineConn) ReadLine() ([]byte, error) {
	for {
		msgType, data, err := w.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		return data, nil
	}
}

func (w *wsLineConn) WriteLine(line []byte) error {
	return w.conn.WriteMessage(websocket.TextMessage, bytes.TrimRight(line, "\n"))
}

func (w *wsLineConn) Close() error       { return w.conn.Close() }
func (w *wsLineConn) RemoteAddr() string { return w.conn.RemoteAddr().String() }
