package repository

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records access tokens invalidated by logout. It is
// consulted by the auth middleware on every authenticated request, so
// implementations must be safe for concurrent use. Revoking the same
// token twice simply re-stamps the entry.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, at time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// MemoryRevocationStore keeps revocations in a process-local map. It is
// the single-instance default and the test double; entries vanish on
// restart, which is acceptable only because tokens themselves expire.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{revoked: make(map[string]time.Time)}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, token string, at time.Time) error {
	s.mu.Lock()
	s.revoked[token] = at
	s.mu.Unlock()
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	_, ok := s.revoked[token]
	s.mu.RUnlock()
	return ok, nil
}

// RedisRevocationStore shares the revocation set across instances. Each
// entry carries a TTL matching the token lifetime: once the token has
// expired on its own the revocation marker is no longer needed.
type RedisRevocationStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRevocationStore(client *redis.Client, ttl time.Duration) *RedisRevocationStore {
	return &RedisRevocationStore{Client: client, TTL: ttl}
}

func (s *RedisRevocationStore) key(token string) string { return "revoked:" + token }

func (s *RedisRevocationStore) Revoke(ctx context.Context, token string, at time.Time) error {
	return s.Client.Set(ctx, s.key(token), at.UTC().Format(time.RFC3339), s.TTL).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.Client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
