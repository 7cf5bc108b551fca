package mq

import (
	"context"
	"encoding/json"
	"log"

	"erfworld/models"

	"github.com/redis/go-redis/v9"
)

// Channel carries event-created notifications from the import pipeline to the
// fanout worker.
const Channel = "erf-events"

// Emitter publishes notification messages to Redis. Publishing is best effort;
// a failed publish is logged and dropped, never fails the import.
type Emitter struct {
	Conn *redis.Client
}

func NewEmitter(conn *redis.Client) *Emitter {
	return &Emitter{Conn: conn}
}

// EventCreated publishes a pointer to a freshly created event.
func (e *Emitter) EventCreated(ctx context.Context, event *models.Event) {
	if e == nil || e.Conn == nil {
		return
	}

	data, err := json.Marshal(models.Index{
		EntityType: "event",
		EntityId:   event.EventID,
		Method:     "POST",
	})
	if err != nil {
		log.Printf("[Emit] failed to marshal event content: %v", err)
		return
	}

	if err := e.Conn.Publish(ctx, Channel, data).Err(); err != nil {
		log.Printf("[Emit] failed to publish event to Redis: %v", err)
		return
	}

	log.Printf("[Emit] event %s published to channel %q", event.EventID, Channel)
}
