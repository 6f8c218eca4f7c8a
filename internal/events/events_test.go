package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/config"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
)

func TestUserSubject(t *testing.T) {
	assert.Equal(t, "user.u-1.dashboard.saved", UserSubject("u-1", DashboardSaved))
}

func TestProvideDefaultsToMemory(t *testing.T) {
	provided, cleanup, err := Provide(config.NATSConfig{}, logger.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, provided.Memory)
	assert.Nil(t, provided.NATS)
	assert.True(t, provided.Bus.IsConnected())

	require.NoError(t, cleanup())
	assert.False(t, provided.Bus.IsConnected())
}
