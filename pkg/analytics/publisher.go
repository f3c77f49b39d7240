package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

// EventsChannel is the pub/sub channel page events are published on.
const EventsChannel = "bizdash.events"

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("analytics: redis ping %s: %w", addr, err)
	}
	return client, nil
}

// RedisEventPublisher publishes page events as JSON.
type RedisEventPublisher struct {
	client  *redis.Client
	channel string
}

var _ dashboard.EventPublisher = (*RedisEventPublisher)(nil)

// NewRedisEventPublisher publishes on channel, or EventsChannel when empty.
func NewRedisEventPublisher(client *redis.Client, channel string) *RedisEventPublisher {
	if channel == "" {
		channel = EventsChannel
	}
	return &RedisEventPublisher{client: client, channel: channel}
}

// PublishPageEvent implements dashboard.EventPublisher.
func (p *RedisEventPublisher) PublishPageEvent(ctx context.Context, event dashboard.PageEvent) error {
	if p == nil || p.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// Relay subscribes to the publisher's channel and hands every decoded event
// to hook until ctx is done. It returns once the subscription is confirmed.
func (p *RedisEventPublisher) Relay(ctx context.Context, hook dashboard.RefreshHook, logger *zap.Logger) error {
	if p == nil || p.client == nil || hook == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pubsub := p.client.Subscribe(ctx, p.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event dashboard.PageEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logger.Warn("dropping malformed page event", zap.Error(err))
					continue
				}
				if err := hook.PageUpdated(ctx, event); err != nil {
					logger.Warn("relay hook failed", zap.String("kind", event.Kind), zap.Error(err))
				}
			}
		}
	}()
	return nil
}
