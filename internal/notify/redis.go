package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "quizboard:session:"

// Redis publishes session changes on a Redis channel per session so every
// server process sees them. Relay forwards them into a local Broker.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

func (r *Redis) Publish(ctx context.Context, code string, payload []byte) error {
	if err := r.client.Publish(ctx, channelPrefix+code, payload).Err(); err != nil {
		return fmt.Errorf("publishing session %s: %w", code, err)
	}
	return nil
}

// Relay copies every session message from Redis into local until ctx is
// done.
func (r *Redis) Relay(ctx context.Context, local *Broker) error {
	sub := r.client.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to session channels: %w", err)
	}
	r.logger.Info("relaying session notifications from redis")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			code := strings.TrimPrefix(msg.Channel, channelPrefix)
			local.Publish(ctx, code, []byte(msg.Payload))
		}
	}
}

// Check pings Redis for health reporting.
func (r *Redis) Check(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
