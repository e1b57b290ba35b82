package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

const sessionKeyPrefix = "portal:session:"

// SessionStorage is the persistent storage area of one browser session.
// Key format: portal:session:<session_id>:<key>
// Every write refreshes the TTL of the written key.
type SessionStorage struct {
	client    redis.UniversalClient
	sessionID string
	ttl       time.Duration
}

var _ ports.SessionStorage = (*SessionStorage)(nil)

// NewSessionStorage returns the storage area for sessionID. A ttl <= 0 keeps
// values until they are deleted.
func NewSessionStorage(client redis.UniversalClient, sessionID string, ttl time.Duration) *SessionStorage {
	return &SessionStorage{client: client, sessionID: sessionID, ttl: ttl}
}

// Load returns the stored value or domain.ErrNotFound.
func (s *SessionStorage) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session load %s: %w", key, err)
	}
	return raw, nil
}

func (s *SessionStorage) Save(ctx context.Context, key string, value []byte) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("session save %s: %w", key, err)
	}
	return nil
}

func (s *SessionStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *SessionStorage) key(k string) string {
	return sessionKeyPrefix + s.sessionID + ":" + k
}
