// Package ratelimit enforces a minimum spacing between calls sharing a key.
// Checking and marking are separate so a caller can run other guards in
// between and only mark once the call is really going out.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// GlobalKey is shared by every caller of the AI assistant.
const GlobalKey = "ai:chat"

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// Memory keeps one atomic "last permitted call" cell per key.
type Memory struct {
	interval time.Duration
	now      func() time.Time
	cells    sync.Map
}

func NewMemory(interval time.Duration, now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{interval: interval, now: now}
}

func (m *Memory) cell(key string) *atomic.Int64 {
	v, _ := m.cells.LoadOrStore(key, new(atomic.Int64))
	return v.(*atomic.Int64)
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	last := m.cell(key).Load()
	if last == 0 {
		return true, nil
	}
	return m.now().Sub(time.Unix(0, last)) >= m.interval, nil
}

func (m *Memory) Mark(_ context.Context, key string) error {
	m.cell(key).Store(m.now().UnixNano())
	return nil
}

// Redis shares the spacing across processes. A marked key lives for exactly
// one interval, so its presence means "too soon".
type Redis struct {
	rdb      *redis.Client
	interval time.Duration
	prefix   string
}

func NewRedis(rdb *redis.Client, interval time.Duration) *Redis {
	return &Redis{rdb: rdb, interval: interval, prefix: "time-tracker:ratelimit:"}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	if r.interval <= 0 {
		return true, nil
	}
	n, err := r.rdb.Exists(ctx, r.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}
	return n == 0, nil
}

func (r *Redis) Mark(ctx context.Context, key string) error {
	if r.interval <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, r.prefix+key, time.Now().UnixMilli(), r.interval).Err(); err != nil {
		return fmt.Errorf("rate limit mark: %w", err)
	}
	return nil
}
