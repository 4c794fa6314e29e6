package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// RedisPublisher publishes on a Redis pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher connects to url and publishes on channel.
func NewRedisPublisher(ctx context.Context, url, channel string) (*RedisPublisher, error) {
	rdb, err := connectRedis(ctx, url)
	if err != nil {
		return nil, err
	}
	return &RedisPublisher{rdb: rdb, channel: channel}, nil
}

// Publish sends hash on the channel.
func (p *RedisPublisher) Publish(ctx context.Context, hash string) error {
	if err := p.rdb.Publish(ctx, p.channel, hash).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}

// Close closes the client.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// RedisSubscriber receives from a Redis pub/sub channel.
type RedisSubscriber struct {
	rdb    *redis.Client
	pubsub *redis.PubSub
}

// NewRedisSubscriber connects to url and subscribes to channel.
func NewRedisSubscriber(ctx context.Context, url, channel string) (*RedisSubscriber, error) {
	rdb, err := connectRedis(ctx, url)
	if err != nil {
		return nil, err
	}
	pubsub := rdb.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	return &RedisSubscriber{rdb: rdb, pubsub: pubsub}, nil
}

// Next waits for the next message on the channel.
func (s *RedisSubscriber) Next(ctx context.Context) (string, error) {
	msg, err := s.pubsub.ReceiveMessage(ctx)
	if err != nil {
		return "", fmt.Errorf("receive message: %w", err)
	}
	return msg.Payload, nil
}

// Close unsubscribes and closes the client.
func (s *RedisSubscriber) Close() error {
	_ = s.pubsub.Close()
	return s.rdb.Close()
}
