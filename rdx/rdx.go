package rdx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect builds the Redis client used for the notification channel.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return conn, nil
}
