package events

import (
	"context"
	"time"
)

// Publisher is the subset of the Kafka producer the sink needs.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte, headers map[string]string) error
}

// KafkaSink forwards every event to the broker keyed by its aggregate ID.
func KafkaSink(p Publisher) EventHandler {
	return func(ctx context.Context, event *Event) error {
		return p.Publish(ctx, event.Key, event.Payload, map[string]string{
			"event-type": event.Type,
			"created-at": event.CreatedAt.Format(time.RFC3339Nano),
		})
	}
}
