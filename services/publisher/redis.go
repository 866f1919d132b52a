package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"sjsage522/pricechecker/internal"
)

// RedisPublisher mirrors result rows to a capped Redis stream
type RedisPublisher struct {
	client          *redis.Client
	stream          string
	streamMaxLength int64
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, stream string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		stream:          stream,
		streamMaxLength: int64(streamMaxLength),
	}
}

// Ping checks the connection
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Name identifies the publisher in logs and metrics
func (p *RedisPublisher) Name() string {
	return "redis"
}

// Record implements the worker recorder contract
func (p *RedisPublisher) Record(ctx context.Context, runID string, rows []internal.ResultRow) error {
	return p.Publish(ctx, runID, rows)
}

// Publish adds one stream entry per row in a single pipeline.
// The row JSON is base64 encoded before publishing.
func (p *RedisPublisher) Publish(ctx context.Context, runID string, rows []internal.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal row for %s: %w", row.URL, err)
		}

		args := &redis.XAddArgs{
			Stream: p.stream,
			Values: map[string]interface{}{
				"run_id": runID,
				"domain": row.Domain,
				"row":    base64.StdEncoding.EncodeToString(data),
			},
		}
		if p.streamMaxLength > 0 {
			args.MaxLen = p.streamMaxLength
			args.Approx = true
		}
		pipe.XAdd(ctx, args)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
