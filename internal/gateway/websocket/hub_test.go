package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	ws "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/websocket"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func fakeClient(id, userID string, hub *Hub) *Client {
	return NewClient(id, userID, nil, hub, logger.NewNop())
}

func receive(t *testing.T, c *Client) *ws.Message {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg ws.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func TestHubRoutesByUser(t *testing.T) {
	hub := startHub(t)
	tab1 := fakeClient("c1", "u1", hub)
	tab2 := fakeClient("c2", "u1", hub)
	other := fakeClient("c3", "u2", hub)
	for _, c := range []*Client{tab1, tab2, other} {
		require.True(t, hub.Register(c))
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, hub.UserClientCount("u1"))

	msg, err := ws.NewNotification(ws.ActionLocaleChanged, map[string]string{"locale": "es"})
	require.NoError(t, err)
	hub.BroadcastToUser("u1", msg)

	assert.Equal(t, ws.ActionLocaleChanged, receive(t, tab1).Action)
	assert.Equal(t, ws.ActionLocaleChanged, receive(t, tab2).Action)
	select {
	case <-other.send:
		t.Fatal("message leaked to another user")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := fakeClient("c1", "u1", hub)
	require.True(t, hub.Register(c))
	hub.Unregister(c)

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	assert.Equal(t, 0, hub.UserClientCount("u1"))
}

func TestHubRegisterAfterStop(t *testing.T) {
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	assert.False(t, hub.Register(fakeClient("c1", "u1", hub)))
	msg, err := ws.NewNotification(ws.ActionDashboardSaved, nil)
	require.NoError(t, err)
	hub.BroadcastToUser("u1", msg)
}

func TestReplyAfterUnregisterIsDropped(t *testing.T) {
	hub := startHub(t)
	c := fakeClient("c1", "u1", hub)
	require.True(t, hub.Register(c))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	hub.Unregister(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	assert.NotPanics(t, func() {
		c.reply(ws.NewResponse("1", ws.ActionPing, map[string]string{"status": "pong"}))
	})
	assert.False(t, c.trySend([]byte("late")))
	_, ok := <-c.send
	assert.False(t, ok)
}

func TestReplyRacesWithUnregister(t *testing.T) {
	hub := startHub(t)
	c := fakeClient("c1", "u1", hub)
	require.True(t, hub.Register(c))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			c.reply(ws.NewResponse("1", ws.ActionPing, nil))
		}
	}()
	hub.Unregister(c)
	<-done
	for range c.send {
	}
}
