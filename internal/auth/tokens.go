package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore remembers revoked JWT IDs until they would have expired anyway.
// Logout works by revocation; everything else is stateless JWT.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	Revoked(ctx context.Context, jti string) (bool, error)
}

type redisTokenStore struct {
	client *redis.Client
	prefix string
}

func (s *redisTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // token already expired, nothing to revoke
	}
	return s.client.Set(ctx, s.prefix+":"+jti, "1", ttl).Err()
}

func (s *redisTokenStore) Revoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+":"+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type memoryTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{revoked: make(map[string]time.Time)}
}

func (s *memoryTokenStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (s *memoryTokenStore) Revoked(_ context.Context, jti string) (bool, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[jti]
	if !ok {
		return false, nil
	}
	if exp.Before(now) {
		delete(s.revoked, jti)
		return false, nil
	}
	return true, nil
}

// NewTokenStore builds a Redis-backed store and falls back to in-memory when
// Redis is unreachable.
func NewTokenStore(addr, pass string, db int) (TokenStore, error) {
	if addr == "" {
		return newMemoryTokenStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryTokenStore(), err
	}

	return &redisTokenStore{client: client, prefix: "auth:revoked"}, nil
}
