// Package publisher appends roster change events to a Redis stream.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortuna/gameday/pkg/identity"
	"github.com/redis/go-redis/v9"
)

// RosterStream is the stream roster changes are appended to.
const RosterStream = "gameday.roster.changes"

var _ identity.ChangeNotifier = (*RedisStreamPublisher)(nil)

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
	now    func() time.Time
}

type Option func(*RedisStreamPublisher)

// WithStream overrides RosterStream.
func WithStream(name string) Option {
	return func(p *RedisStreamPublisher) {
		if name != "" {
			p.stream = name
		}
	}
}

// WithMaxLen caps the stream approximately. Zero leaves it unbounded.
func WithMaxLen(n int64) Option {
	return func(p *RedisStreamPublisher) { p.maxLen = n }
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client, opts ...Option) *RedisStreamPublisher {
	p := &RedisStreamPublisher{client: client, stream: RosterStream, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NotifyRosterChange XADDs the change as JSON under "data".
func (p *RedisStreamPublisher) NotifyRosterChange(ctx context.Context, change identity.RosterChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encoding roster change: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"kind":      string(change.Kind),
			"player_id": change.Player.GDID,
			"data":      string(data),
			"timestamp": p.now().Unix(),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.stream, err)
	}
	return nil
}
