package websocket

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/events"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/events/bus"
	ws "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/websocket"
)

var eventActions = map[string]string{
	events.UserLocaleChanged:      ws.ActionLocaleChanged,
	events.UserPreferencesUpdated: ws.ActionPreferencesUpdated,
	events.DashboardSaved:         ws.ActionDashboardSaved,
	events.DashboardDeleted:       ws.ActionDashboardDeleted,
}

// UserEventBroadcaster forwards per-user bus events to that user's open
// connections, so other tabs can reload translations or dashboards.
type UserEventBroadcaster struct {
	hub    *Hub
	bus    bus.EventBus
	sub    bus.Subscription
	logger *logger.Logger
}

func NewUserEventBroadcaster(hub *Hub, eventBus bus.EventBus, log *logger.Logger) *UserEventBroadcaster {
	return &UserEventBroadcaster{
		hub:    hub,
		bus:    eventBus,
		logger: log.WithFields(zap.String("component", "ws_user_broadcaster")),
	}
}

func (b *UserEventBroadcaster) Start() error {
	sub, err := b.bus.Subscribe(events.AllUserEvents, b.handle)
	if err != nil {
		return fmt.Errorf("subscribe to user events: %w", err)
	}
	b.sub = sub
	return nil
}

func (b *UserEventBroadcaster) Close() {
	if b.sub != nil {
		_ = b.sub.Unsubscribe()
		b.sub = nil
	}
}

func (b *UserEventBroadcaster) handle(_ context.Context, event *bus.Event) error {
	action, ok := eventActions[event.Type]
	if !ok {
		return nil
	}
	userID := event.String("user_id")
	if userID == "" {
		b.logger.Warn("user event without user_id", zap.String("event_type", event.Type))
		return nil
	}
	msg, err := ws.NewNotification(action, event.Data)
	if err != nil {
		b.logger.Error("failed to build notification", zap.String("action", action), zap.Error(err))
		return nil
	}
	b.hub.BroadcastToUser(userID, msg)
	return nil
}
