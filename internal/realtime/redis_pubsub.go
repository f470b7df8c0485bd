package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	catalogChannel = "directory:catalog"
	publishTimeout = 5 * time.Second
)

// redisPayload is the message published to Redis for cross-instance events.
type redisPayload struct {
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data,omitempty"`
	Origin string          `json:"origin"`
	At     int64           `json:"at"`
}

// RedisPubSub carries catalog events between instances over Redis pub/sub.
type RedisPubSub struct {
	client *redis.Client
	origin string
	logger *zap.Logger
}

// NewRedisPubSub creates a bridge. Each instance gets its own origin so it
// ignores its own events.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	return &RedisPubSub{client: client, origin: uuid.New().String(), logger: logger}
}

// PublishCatalogEvent publishes an event to the catalog channel.
func (r *RedisPubSub) PublishCatalogEvent(event string, payload []byte) error {
	body, err := json.Marshal(redisPayload{Event: event, Data: payload, Origin: r.origin, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return r.client.Publish(ctx, catalogChannel, body).Err()
}

// Subscribe calls handler for every event published by another instance until
// ctx is cancelled.
func (r *RedisPubSub) Subscribe(ctx context.Context, handler func(event string, payload []byte)) error {
	pubsub := r.client.Subscribe(ctx, catalogChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var p redisPayload
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					r.logger.Debug("bad catalog event", zap.Error(err))
					continue
				}
				if p.Origin == r.origin {
					continue
				}
				handler(p.Event, p.Data)
			}
		}
	}()
	return nil
}
