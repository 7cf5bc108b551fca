package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"erfworld/discord"
	"erfworld/events"
	"erfworld/models"

	"github.com/redis/go-redis/v9"
)

// StartNotifyWorker subscribes to the notification channel and posts each
// created event to Discord. Runs until the context is cancelled.
func StartNotifyWorker(ctx context.Context, conn *redis.Client, store *events.Store, notifier *discord.Notifier) {
	sub := conn.Subscribe(ctx, Channel)
	defer sub.Close()
	ch := sub.Channel()

	log.Println("[NotifyWorker] listening for event notifications...")

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var idx models.Index
			if err := json.Unmarshal([]byte(msg.Payload), &idx); err != nil {
				log.Printf("[NotifyWorker] failed to parse message: %v", err)
				continue
			}
			if idx.EntityType != "event" {
				continue
			}

			loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			event, err := store.GetByID(loadCtx, idx.EntityId)
			if err != nil {
				log.Printf("[NotifyWorker] load event %s: %v", idx.EntityId, err)
				cancel()
				continue
			}

			if err := notifier.PostEvent(loadCtx, event); err != nil {
				log.Printf("[NotifyWorker] discord post for %s: %v", idx.EntityId, err)
			}
			cancel()
		}
	}
}
