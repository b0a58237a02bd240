// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/lastcard/internal/models"
	"github.com/redis/go-redis/v9"
)

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// ActionQueue is a Redis list of JSON-encoded game actions. The game service appends with
// RPUSH and the historian consumes with BLPOP, so records come out in publish order.
type ActionQueue struct {
	rdb  redis.Cmdable
	name string
}

func NewActionQueue(rdb redis.Cmdable, name string) *ActionQueue {
	return &ActionQueue{rdb: rdb, name: name}
}

// Name returns the Redis key of the list.
func (q *ActionQueue) Name() string { return q.name }

// PublishAction pushes action onto the tail of the queue.
func (q *ActionQueue) PublishAction(ctx context.Context, action models.GameAction) error {
	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("failed to marshal game action: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.name, err)
	}
	return nil
}

// MinBlockTimeout is the shortest BLPOP wait Redis accepts; go-redis rounds anything shorter
// up and logs a warning each time.
const MinBlockTimeout = time.Second

func blockTimeout(d time.Duration) time.Duration {
	if d < MinBlockTimeout {
		return MinBlockTimeout
	}
	return d
}

// Pop waits up to timeout, at least MinBlockTimeout, for the next action. ok is false when
// the wait timed out.
func (q *ActionQueue) Pop(ctx context.Context, timeout time.Duration) (action models.GameAction, ok bool, err error) {
	res, err := q.rdb.BLPop(ctx, blockTimeout(timeout), q.name).Result()
	if errors.Is(err, redis.Nil) {
		return models.GameAction{}, false, nil
	}
	if err != nil {
		return models.GameAction{}, false, err
	}
	// BLPOP replies with [key, value]
	if len(res) != 2 {
		return models.GameAction{}, false, fmt.Errorf("unexpected BLPOP reply of length %d", len(res))
	}
	if err := json.Unmarshal([]byte(res[1]), &action); err != nil {
		return models.GameAction{}, false, fmt.Errorf("decode queued action: %w", err)
	}
	return action, true, nil
}
