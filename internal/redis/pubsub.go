package redisc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const eventsChannel = "usergroups:events"

// Relay carries encoded events between service instances.
type Relay struct {
	client *redis.Client
}

func NewRelay(client *redis.Client) *Relay {
	return &Relay{client: client}
}

func (r *Relay) Publish(ctx context.Context, data []byte) error {
	return r.client.Publish(ctx, eventsChannel, data).Err()
}

// Subscribe delivers every relayed payload to handler until ctx is done.
func (r *Relay) Subscribe(ctx context.Context, handler func(data []byte)) error {
	pubsub := r.client.Subscribe(ctx, eventsChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", eventsChannel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			slog.Debug("relayed event received", "bytes", len(msg.Payload))
			handler([]byte(msg.Payload))
		}
	}
}
