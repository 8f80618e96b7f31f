package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nba_props/refresh/internal/models"
)

// Publisher is the subset of the redis client used for pub/sub.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes the JSON array to a channel. Nothing is stored.
type RedisSink struct {
	pub     Publisher
	channel string
}

// NewRedisSink creates a sink over an existing publisher.
func NewRedisSink(pub Publisher, channel string) *RedisSink {
	return &RedisSink{pub: pub, channel: channel}
}

// DialRedis connects to the server at url (redis://...) and checks it
// with a PING. The returned close func releases the connection pool.
func DialRedis(ctx context.Context, url, channel string) (*RedisSink, func() error, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSink(client, channel), client.Close, nil
}

func (s *RedisSink) Name() string { return "redis" }

// Notify publishes payload to the configured channel.
func (s *RedisSink) Notify(ctx context.Context, _ []models.EdgeRecord, payload []byte) error {
	if err := s.pub.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", s.channel, err)
	}
	return nil
}
