package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage represents a WebSocket message.
type WSMessage struct {
	Type    string      `json:"type" msgpack:"type"`
	Payload interface{} `json:"payload" msgpack:"payload"`
}

// Encoding is the wire format chosen by a client at connect time.
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingMsgpack
)

// ParseEncoding maps the ?encoding= query value. Anything but "msgpack"
// is JSON.
func ParseEncoding(s string) Encoding {
	if s == "msgpack" {
		return EncodingMsgpack
	}
	return EncodingJSON
}

func (e Encoding) marshal(msg WSMessage) (int, []byte, error) {
	if e == EncodingMsgpack {
		data, err := msgpack.Marshal(msg)
		return websocket.BinaryMessage, data, err
	}
	data, err := json.Marshal(msg)
	return websocket.TextMessage, data, err
}

func (e Encoding) unmarshal(data []byte, msg *WSMessage) error {
	if e == EncodingMsgpack {
		return msgpack.Unmarshal(data, msg)
	}
	return json.Unmarshal(data, msg)
}

// wsClient serializes writes to one connection.
type wsClient struct {
	conn     *websocket.Conn
	encoding Encoding
	mu       sync.Mutex
}

func (c *wsClient) send(msg WSMessage) error {
	kind, data, err := c.encoding.marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.Type, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(kind, data)
}

// WSHub manages WebSocket connections.
type WSHub struct {
	clients map[*websocket.Conn]*wsClient
	mu      sync.RWMutex
	log     *zap.Logger
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub(logger *zap.Logger) *WSHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHub{
		clients: make(map[*websocket.Conn]*wsClient),
		log:     logger,
	}
}

// AddClient registers a new WebSocket connection.
func (h *WSHub) AddClient(conn *websocket.Conn, enc Encoding) *wsClient {
	c := &wsClient{conn: conn, encoding: enc}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = c
	h.log.Info("websocket client connected", zap.Int("clients", len(h.clients)))
	return c
}

// RemoveClient removes a WebSocket connection.
func (h *WSHub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
	h.log.Info("websocket client disconnected", zap.Int("clients", len(h.clients)))
}

// Len returns the number of connected clients.
func (h *WSHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client.
func (h *WSHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

// Broadcast sends a message to all connected clients, each in its own
// encoding.
func (h *WSHub) Broadcast(msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn, c := range h.clients {
		if err := c.send(msg); err != nil {
			h.log.Warn("websocket write failed", zap.Error(err))
			go h.RemoveClient(conn)
		}
	}
}

// BroadcastStatus sends a status update to all clients.
func (h *WSHub) BroadcastStatus(status, message string) {
	h.Broadcast(WSMessage{
		Type: "status",
		Payload: map[string]string{
			"status":  status,
			"message": message,
		},
	})
}
