package publisher

import (
	"context"

	"github.com/redis/go-redis/v9"

	"mkowalczyk/olxwatch/logger"
)

// RedisPublisher implements Publisher using a Redis stream. External
// consumers (dashboards, archival jobs) can read matches from the stream
// without touching the Telegram path.
type RedisPublisher struct {
	client    *redis.Client
	ctx       context.Context
	stream    string
	maxLength int
	log       *logger.Logger
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, stream string, maxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:    client,
		ctx:       ctx,
		stream:    stream,
		maxLength: maxLength,
		log:       logger.ForPublisher(),
	}
}

// Publish appends a match payload to the stream, trimming it to the
// configured approximate maximum length.
func (p *RedisPublisher) Publish(message []byte) error {
	err := p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: int64(p.maxLength),
		Approx: true,
		Values: map[string]interface{}{
			"offer": string(message),
		},
	}).Err()
	if err != nil {
		return err
	}

	p.log.Debug().Str("stream", p.stream).Msg("Match published")
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
