package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum input message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// inputMessage is a player command sent over the websocket.
type inputMessage struct {
	Type string   `json:"type"` // "move" or "fire"
	X    *float64 `json:"x,omitempty"`
}

// ServeWS handles GET /ws. Scenes are pushed as text frames; when a
// Controller is set, input messages from the peer are forwarded to it.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	ch, cancel := s.Streams.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.readPump(conn)
	}()
	s.writePump(conn, ch, done)
	cancel()
	_ = conn.Close()
	<-done
}

// writePump sends scenes and pings until the peer goes away.
func (s *Server) writePump(conn *websocket.Conn, scenes <-chan string, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case msg, ok := <-scenes:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.Logger.Warn("websocket read failed", "err", err)
			}
			return
		}
		s.handleInput(data)
	}
}

func (s *Server) handleInput(data []byte) {
	if s.Controller == nil {
		return
	}
	var msg inputMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.Logger.Warn("invalid websocket input", "err", err)
		return
	}
	switch {
	case msg.Type == "move" && msg.X != nil:
		if err := s.Controller.Move(*msg.X); err != nil {
			s.Logger.Warn("input rejected", "err", err)
		}
	case msg.Type == "fire":
		if err := s.Controller.Fire(); err != nil {
			s.Logger.Warn("input rejected", "err", err)
		}
	default:
		s.Logger.Warn("unknown websocket input", "type", msg.Type)
	}
}
