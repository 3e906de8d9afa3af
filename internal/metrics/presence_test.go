package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceMetrics(t *testing.T) {
	provider, err := NewProvider("presence_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	pm, err := NewPresenceMetrics(provider.MeterProvider(), "presence_test")
	require.NoError(t, err)

	ctx := context.Background()
	pm.UserConnected(ctx)
	pm.UserConnected(ctx)
	pm.UserConnected(ctx)
	pm.UserDisconnected(ctx, "evicted")
	pm.EventDropped(ctx, "transfer_update")

	output := scrape(t, provider)
	assertMetricLine(t, output, `presence_test_presence_online_users`, ``, `2`)
	assertMetricLine(t, output, `presence_test_presence_disconnects_total`, `reason="evicted"`, `1`)
	assertMetricLine(t, output, `presence_test_presence_dropped_events_total`, `event="transfer_update"`, `1`)
}

func TestNoOpPresenceMetrics(t *testing.T) {
	pm := NewNoOpPresenceMetrics()
	assert.IsType(t, &NoOpPresenceMetrics{}, pm)

	pm.UserConnected(context.Background())
	pm.UserDisconnected(context.Background(), "closed")
	pm.EventDropped(context.Background(), "user_online")
}
