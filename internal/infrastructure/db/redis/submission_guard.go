package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mybankuml/banking-portal/internal/api/metrics"
)

const defaultGuardTTL = 10 * time.Minute

// SubmissionGuard refuses a second submission carrying the same idempotency
// key within the TTL. Keys are scoped by session so two users can never
// collide.
// Key format: portal:submit:<session_id>:<idempotency_key>
type SubmissionGuard struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewSubmissionGuard creates a SubmissionGuard. If ttl <= 0, defaultGuardTTL
// is used.
func NewSubmissionGuard(client redis.UniversalClient, ttl time.Duration) *SubmissionGuard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	return &SubmissionGuard{client: client, ttl: ttl}
}

// Claim reports true the first time a key is seen and false on any repeat.
func (g *SubmissionGuard) Claim(ctx context.Context, sessionID, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(sessionID, key), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("submission guard: %w", err)
	}
	if ok {
		metrics.SubmissionGuardTotal.WithLabelValues("miss").Inc()
	} else {
		metrics.SubmissionGuardTotal.WithLabelValues("hit").Inc()
	}
	return ok, nil
}

// Forget releases a key so that a submission that failed before reaching the
// backend can be retried with the same key.
func (g *SubmissionGuard) Forget(ctx context.Context, sessionID, key string) error {
	return g.client.Del(ctx, g.key(sessionID, key)).Err()
}

func (g *SubmissionGuard) key(sessionID, key string) string {
	return fmt.Sprintf("portal:submit:%s:%s", sessionID, key)
}
