package ports

import "context"

// SessionStorage is the persistent key/value area of one browser session.
// Load returns domain.ErrNotFound for a missing key.
type SessionStorage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
