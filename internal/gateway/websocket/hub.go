// Package websocket pushes per-user notifications to open browser tabs.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	ws "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/websocket"
)

type userMessage struct {
	userID string
	data   []byte
}

// Hub owns client registration. Every tab of a user is one Client; a
// message for a user reaches all of them.
type Hub struct {
	clients map[*Client]bool
	byUser  map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan userMessage
	done       chan struct{}

	mu     sync.RWMutex
	logger *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		byUser:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan userMessage, 256),
		done:       make(chan struct{}),
		logger:     log.WithFields(zap.String("component", "ws_hub")),
	}
}

// Run processes registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("WebSocket hub started")
	defer h.logger.Info("WebSocket hub stopped")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	if h.byUser[client.UserID] == nil {
		h.byUser[client.UserID] = make(map[*Client]bool)
	}
	h.byUser[client.UserID][client] = true
	h.logger.Debug("client registered", zap.String("client_id", client.ID), zap.String("user_id", client.UserID))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	client.closeSend()
	if tabs := h.byUser[client.UserID]; tabs != nil {
		delete(tabs, client)
		if len(tabs) == 0 {
			delete(h.byUser, client.UserID)
		}
	}
	h.logger.Debug("client unregistered", zap.String("client_id", client.ID))
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.closeSend()
	}
	h.clients = make(map[*Client]bool)
	h.byUser = make(map[string]map[*Client]bool)
}

func (h *Hub) deliver(msg userMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.byUser[msg.userID] {
		if !client.trySend(msg.data) {
			h.logger.Warn("client send buffer full, dropping message", zap.String("client_id", client.ID))
		}
	}
}

// Register adds a client. It returns false when the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToUser queues msg for every connection of userID.
func (h *Hub) BroadcastToUser(userID string, msg *ws.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- userMessage{userID: userID, data: data}:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) UserClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}
