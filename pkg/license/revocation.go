package license

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records revoked license IDs.
type RevocationStore interface {
	Revoked(ctx context.Context, id string) (reason string, revoked bool, err error)
	// Revoke marks id revoked for ttl, or forever when ttl is 0.
	Revoke(ctx context.Context, id, reason string, ttl time.Duration) error
}

type revocation struct {
	reason  string
	expires time.Time
}

// MemoryRevocations is a process-local RevocationStore.
type MemoryRevocations struct {
	mu      sync.Mutex
	entries map[string]revocation
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{entries: make(map[string]revocation)}
}

func (s *MemoryRevocations) Revoked(ctx context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(s.entries, id)
		return "", false, nil
	}
	return e.reason, true, nil
}

func (s *MemoryRevocations) Revoke(ctx context.Context, id, reason string, ttl time.Duration) error {
	if reason == "" {
		reason = "revoked"
	}
	e := revocation{reason: reason}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[id] = e
	s.mu.Unlock()
	return nil
}

// RedisRevocations shares revocations between processes.
type RedisRevocations struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisRevocations(client redis.UniversalClient, prefix string) *RedisRevocations {
	if prefix == "" {
		prefix = "soundlink"
	}
	return &RedisRevocations{redis: client, prefix: prefix}
}

func (s *RedisRevocations) key(id string) string {
	return s.prefix + ":revoked:" + id
}

func (s *RedisRevocations) Revoked(ctx context.Context, id string) (string, bool, error) {
	reason, err := s.redis.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return reason, true, nil
}

func (s *RedisRevocations) Revoke(ctx context.Context, id, reason string, ttl time.Duration) error {
	if reason == "" {
		reason = "revoked"
	}
	if err := s.redis.Set(ctx, s.key(id), reason, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return nil
}
