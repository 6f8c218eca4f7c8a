package websocket

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/auth"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/httpmw"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
)

// Handler upgrades authenticated requests to WebSocket connections.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewHandler builds a handler accepting the given origins. "*" accepts any
// origin; a request with no Origin header is always accepted.
func NewHandler(hub *Hub, allowedOrigins []string, log *logger.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: log.WithFields(zap.String("component", "ws_handler")),
	}
}

func RegisterRoutes(api gin.IRoutes, h *Handler) {
	api.GET("/ws", h.HandleConnection)
}

func (h *Handler) HandleConnection(c *gin.Context) {
	userID := auth.UserID(c)
	if userID == "" {
		httpmw.Abort(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	client := NewClient(uuid.New().String(), userID, conn, h.hub, h.logger)
	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}
	h.logger.Info("websocket connected", zap.String("client_id", client.ID), zap.String("user_id", userID))

	go client.WritePump()
	go client.ReadPump()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}
