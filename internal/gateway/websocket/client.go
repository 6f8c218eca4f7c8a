package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	ws "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Client is one WebSocket connection of an authenticated user.
type Client struct {
	ID     string
	UserID string
	conn   *websocket.Conn
	hub    *Hub
	send   chan []byte
	logger *logger.Logger

	// mu guards closed and every send on or close of send.
	mu     sync.Mutex
	closed bool
}

func NewClient(id, userID string, conn *websocket.Conn, hub *Hub, log *logger.Logger) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, 64),
		logger: log.WithFields(zap.String("client_id", id), zap.String("user_id", userID)),
	}
}

// ReadPump reads client frames until the connection fails. The channel is
// push-only apart from ping, so anything else gets an error reply.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var msg ws.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(ws.NewError("", "", ws.ErrorCodeBadRequest, "invalid message format"))
			continue
		}
		switch msg.Action {
		case ws.ActionPing:
			c.reply(ws.NewResponse(msg.ID, msg.Action, map[string]string{"status": "pong"}))
		default:
			c.reply(ws.NewError(msg.ID, msg.Action, ws.ErrorCodeUnknownAction, "unknown action"))
		}
	}
}

func (c *Client) reply(msg *ws.Message, err error) {
	if err != nil {
		c.logger.Error("failed to build reply", zap.Error(err))
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal reply", zap.Error(err))
		return
	}
	if !c.trySend(data) {
		c.logger.Warn("reply dropped", zap.String("action", msg.Action))
	}
}

// trySend queues data without blocking. It reports false when the buffer is
// full or the hub has already dropped the client.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the outbound queue once. WritePump exits when it drains.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WritePump writes queued messages and keepalive pings. It returns when the
// hub closes the send channel or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
