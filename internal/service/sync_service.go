package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChangeEvent signals that the record set stored under Key has changed and
// subscribers should re-read it.
type ChangeEvent struct {
	Key    string    `json:"key"`
	Entity string    `json:"entity"`
	At     time.Time `json:"at"`
}

// Entity names used for change keys.
const (
	EntityQueue    = "queue"
	EntityUpdates  = "updates"
	EntitySessions = "sessions"
	EntityStudents = "students"
)

type changeBus interface {
	Publish(ctx context.Context, channel string, payload interface{})
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// SyncConfig tunes the change synchronizer.
type SyncConfig struct {
	// PollInterval is the fallback re-read cadence used when no push
	// notification arrives.
	PollInterval  time.Duration
	ChannelPrefix string
}

// SyncService keeps dashboard views consistent with storage mutated by other
// actors. Writers publish a change event on the entity's channel; watchers
// receive pushed events and, regardless of push delivery, a tick every poll
// interval so a view converges even when pub/sub is unavailable.
type SyncService struct {
	bus    changeBus
	logger *zap.Logger
	config SyncConfig
}

// NewSyncService constructs the synchronizer.
func NewSyncService(bus changeBus, logger *zap.Logger, config SyncConfig) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}
	if config.ChannelPrefix == "" {
		config.ChannelPrefix = "portal:changes"
	}
	return &SyncService{bus: bus, logger: logger, config: config}
}

// NotifyChange publishes a change event for entity/key. Delivery is
// best-effort; watchers converge through polling either way.
func (s *SyncService) NotifyChange(ctx context.Context, entity, key string) {
	event := ChangeEvent{Key: key, Entity: entity, At: time.Now().UTC()}
	s.bus.Publish(ctx, s.channelName(entity, key), event)
}

// Watch delivers change events for entity/key until ctx is cancelled. Every
// poll interval a synthetic event is emitted as the re-read fallback, so a
// consumer observes external writes within one interval even if the pushed
// notification is lost. The returned channel is closed on cancellation.
func (s *SyncService) Watch(ctx context.Context, entity, key string) <-chan ChangeEvent {
	events := make(chan ChangeEvent, 1)

	var pubsub *redis.PubSub
	var pushed <-chan *redis.Message
	if s.bus != nil {
		pubsub = s.bus.Subscribe(ctx, s.channelName(entity, key))
	}
	if pubsub != nil {
		pushed = pubsub.Channel()
	}

	go func() {
		defer close(events)
		if pubsub != nil {
			defer func() { _ = pubsub.Close() }()
		}

		ticker := time.NewTicker(s.config.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pushed:
				if !ok {
					pushed = nil
					continue
				}
				var event ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					s.logger.Warn("malformed change event", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				s.emit(ctx, events, event)
			case <-ticker.C:
				s.emit(ctx, events, ChangeEvent{Key: key, Entity: entity, At: time.Now().UTC()})
			}
		}
	}()

	return events
}

// emit delivers without blocking forever: a slow consumer coalesces events,
// since every event means the same thing (re-read the list).
func (s *SyncService) emit(ctx context.Context, events chan<- ChangeEvent, event ChangeEvent) {
	select {
	case events <- event:
	case <-ctx.Done():
	default:
	}
}

func (s *SyncService) channelName(entity, key string) string {
	if key == "" {
		return s.config.ChannelPrefix + ":" + entity
	}
	return s.config.ChannelPrefix + ":" + entity + ":" + key
}
