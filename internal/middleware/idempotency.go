package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SubmissionDeduper tracks idempotency tokens of in-flight or recently
// completed payment submissions. A token that was already seen means the
// same submission is being replayed (double click, second tab, retry after
// timeout) and must not reach the gateway again.
type SubmissionDeduper interface {
	Seen(ctx context.Context, token string) (bool, error)
}

type redisSubmissionDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisSubmissionDeduper) Seen(ctx context.Context, token string) (bool, error) {
	key := d.prefix + ":" + token
	ok, err := d.client.SetNX(ctx, key, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => key existed => duplicate
	return !ok, nil
}

type memorySubmissionDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemorySubmissionDeduper(ttl time.Duration) *memorySubmissionDeduper {
	now := time.Now()
	return &memorySubmissionDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
	}
}

func (d *memorySubmissionDeduper) Seen(_ context.Context, token string) (bool, error) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[token]; ok && exp.After(now) {
		return true, nil
	}

	d.seen[token] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for tok, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, tok)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}

	return false, nil
}

// NewSubmissionDeduper builds a Redis deduper and falls back to in-memory on
// failure. The in-memory fallback still protects a single process; only a
// multi-instance deployment needs Redis here.
func NewSubmissionDeduper(addr, pass string, db int, ttl time.Duration) (SubmissionDeduper, error) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if addr == "" {
		return newMemorySubmissionDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemorySubmissionDeduper(ttl), err
	}

	return &redisSubmissionDeduper{
		client: client,
		prefix: "pay:submission",
		ttl:    ttl,
	}, nil
}
