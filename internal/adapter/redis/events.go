package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pscheid92/campusfind/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// EventsChannel carries every claim event as JSON for other services.
const EventsChannel = "campusfind:events"

// EventSink publishes domain events to EventsChannel.
type EventSink struct {
	rdb goredis.Cmdable
}

var _ domain.EventPublisher = (*EventSink)(nil)

func NewEventSink(rdb goredis.Cmdable) *EventSink {
	return &EventSink{rdb: rdb}
}

func (s *EventSink) Publish(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := s.rdb.Publish(ctx, EventsChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
