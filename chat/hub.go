// Package chat carries the realtime side of the chat feature: a
// websocket hub that pushes persisted messages to connected room members.
// Message history and room membership live in the ChatStore; the hub only
// delivers.
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"playmateserver/models"
	"playmateserver/store"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one connected websocket user.
type Client struct {
	Conn     *websocket.Conn
	Identity models.Identity
	send     chan []byte
}

// Hub tracks connected clients by user ID. One connection per user; a
// reconnect replaces the previous one.
type Hub struct {
	mu      sync.RWMutex
	clients map[int]*Client
	chats   *store.ChatStore
	logger  *zap.Logger
}

func NewHub(chats *store.ChatStore, logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[int]*Client),
		chats:   chats,
		logger:  logger,
	}
}

// inbound is what a connected client sends to post a message.
type inbound struct {
	RoomID  int64  `json:"roomId"`
	Content string `json:"content"`
}

// outbound wraps a delivered message.
type outbound struct {
	Event   string              `json:"event"`
	Message *models.ChatMessage `json:"message"`
}

// HandleConnection validates the session ID, upgrades the connection and
// runs the read/write pumps until the client goes away.
func (h *Hub) HandleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request, rdb *redis.Client, upgrader websocket.Upgrader) {
	sessionID := r.URL.Query().Get("session")
	identity := ValidateSession(ctx, rdb, sessionID, h.logger)
	if identity == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Error upgrading WebSocket", zap.Error(err))
		return
	}

	client := &Client{Conn: conn, Identity: *identity, send: make(chan []byte, 32)}
	h.register(client)
	h.logger.Info("chat client connected", zap.Int("userID", identity.UserID))

	go client.writePump()
	h.readPump(client)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	if old, ok := h.clients[c.Identity.UserID]; ok {
		close(old.send)
		old.Conn.Close()
	}
	h.clients[c.Identity.UserID] = c
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if cur, ok := h.clients[c.Identity.UserID]; ok && cur == c {
		delete(h.clients, c.Identity.UserID)
		close(c.send)
	}
	h.mu.Unlock()
	c.Conn.Close()
}

func (h *Hub) readPump(c *Client) {
	defer h.unregister(c)
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			h.logger.Info("chat client disconnected", zap.Int("userID", c.Identity.UserID))
			return
		}
		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			h.logger.Warn("malformed chat frame", zap.Error(err))
			continue
		}
		msg, err := h.chats.AppendMessage(in.RoomID, c.Identity.UserID, c.Identity.Nickname, in.Content)
		if err != nil {
			h.sendError(c, err)
			continue
		}
		h.Broadcast(msg)
	}
}

// Broadcast pushes a persisted message to every connected member of its
// room, sender included so all clients render from the same event.
func (h *Hub) Broadcast(msg *models.ChatMessage) {
	room, err := h.chats.Room(msg.RoomID, msg.SenderID)
	if err != nil {
		h.logger.Warn("broadcast for unknown room", zap.Int64("roomID", msg.RoomID), zap.Error(err))
		return
	}
	payload, err := json.Marshal(outbound{Event: "receive_message", Message: msg})
	if err != nil {
		h.logger.Error("failed to encode chat message", zap.Error(err))
		return
	}
	h.mu.RLock()
	for _, p := range room.Participants {
		if client, ok := h.clients[p.UserID]; ok {
			select {
			case client.send <- payload:
			default:
				// slow consumer, drop the frame rather than block the hub
			}
		}
	}
	h.mu.RUnlock()
}

func (h *Hub) sendError(c *Client, err error) {
	payload, mErr := json.Marshal(ginStyleError(err))
	if mErr != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func ginStyleError(err error) map[string]string {
	return map[string]string{"status": models.ErrorCode(err), "error": err.Error()}
}

func (c *Client) writePump() {
	for data := range c.send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
