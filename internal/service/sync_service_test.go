package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// pollOnlyBus simulates a deployment without pub/sub: publishes are recorded
// but never delivered, so watchers must rely on the polling fallback.
type pollOnlyBus struct {
	published []string
}

func (b *pollOnlyBus) Publish(ctx context.Context, channel string, payload interface{}) {
	b.published = append(b.published, channel)
}

func (b *pollOnlyBus) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return nil
}

func TestSyncServiceWatchConvergesWithinOnePollInterval(t *testing.T) {
	bus := &pollOnlyBus{}
	service := NewSyncService(bus, zap.NewNop(), SyncConfig{PollInterval: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := service.Watch(ctx, EntityUpdates, "alice@example.com")

	// A write from another context is invisible to the watcher except via
	// polling; it must still observe a tick within one interval.
	select {
	case event := <-events:
		assert.Equal(t, EntityUpdates, event.Entity)
		assert.Equal(t, "alice@example.com", event.Key)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("no poll event within one interval")
	}
}

func TestSyncServiceWatchStopsOnCancel(t *testing.T) {
	service := NewSyncService(&pollOnlyBus{}, zap.NewNop(), SyncConfig{PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	events := service.Watch(ctx, EntityQueue, "t1")
	cancel()

	deadline := time.After(500 * time.Millisecond)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return // channel closed, ticker released
			}
		case <-deadline:
			t.Fatal("watch channel not closed after cancellation")
		}
	}
}

func TestSyncServiceNotifyChangePublishesOnEntityChannel(t *testing.T) {
	bus := &pollOnlyBus{}
	service := NewSyncService(bus, zap.NewNop(), SyncConfig{ChannelPrefix: "portal:changes"})

	service.NotifyChange(context.Background(), EntityUpdates, "alice@example.com")
	require.Len(t, bus.published, 1)
	assert.Equal(t, "portal:changes:updates:alice@example.com", bus.published[0])
}
