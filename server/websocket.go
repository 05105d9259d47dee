package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/xhad/sitekb/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The HTTP API allows any origin, so the socket does too.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	MessageChat     = "chat"
	MessageResponse = "response"
	MessageError    = "error"
)

// Message is the WebSocket frame in both directions.
type Message struct {
	Type    string        `json:"type"`
	Content string        `json:"content"`
	History []models.Turn `json:"history,omitempty"`
}

// handleWebSocket answers chat frames one at a time, in arrival order, so
// replies never interleave on the connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendMessage(conn, MessageError, "invalid message")
			continue
		}

		if msg.Type != MessageChat {
			s.sendMessage(conn, MessageError, "unsupported message type: "+msg.Type)
			continue
		}

		reply, err := s.answerer.Answer(r.Context(), models.ChatRequest{
			Message: msg.Content,
			History: msg.History,
		})
		if err != nil {
			s.logger.Error("websocket chat failed", "error", err)
			s.sendMessage(conn, MessageError, ApologyReply)
			continue
		}
		s.sendMessage(conn, MessageResponse, reply)
	}
}

func (s *Server) sendMessage(conn *websocket.Conn, msgType string, content string) {
	msg := Message{
		Type:    msgType,
		Content: content,
	}
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Warn("websocket write failed", "error", err)
	}
}
