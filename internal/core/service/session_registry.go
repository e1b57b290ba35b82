package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/ports"
)

const defaultIdleTimeout = 30 * time.Minute

// StorageFactory returns the persistent storage area for a session id.
type StorageFactory func(sessionID string) ports.SessionStorage

type registryEntry struct {
	store    *Store
	lastSeen time.Time

	mu       sync.Mutex
	restored bool
}

// Registry keeps one live Store per browser session. Stores are created and
// restored on first use and dropped on logout or after sitting idle; a dropped
// session is rebuilt from persisted state on its next request.
type Registry struct {
	api     ports.BankAPI
	storage StorageFactory
	audit   ports.AuditRecorder
	idle    time.Duration
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

// NewRegistry creates a Registry. If idle <= 0, defaultIdleTimeout is used.
func NewRegistry(api ports.BankAPI, storage StorageFactory, audit ports.AuditRecorder, idle time.Duration, log zerolog.Logger) *Registry {
	if idle <= 0 {
		idle = defaultIdleTimeout
	}
	return &Registry{
		api:     api,
		storage: storage,
		audit:   audit,
		idle:    idle,
		log:     log,
		now:     time.Now,
		entries: make(map[string]*registryEntry),
	}
}

// Acquire returns the store for sessionID, creating and restoring it if needed.
// Concurrent callers for a new session wait for the same restore. A restore
// that could not read storage is retried on the next Acquire.
func (r *Registry) Acquire(ctx context.Context, sessionID string) *Store {
	r.mu.Lock()
	e, ok := r.entries[sessionID]
	if !ok {
		e = &registryEntry{
			store: NewStore(sessionID, r.api, r.storage(sessionID), r.audit, r.log),
		}
		r.entries[sessionID] = e
	}
	e.lastSeen = r.now()
	r.mu.Unlock()

	e.mu.Lock()
	if !e.restored {
		e.restored = e.store.Restore(ctx)
	}
	e.mu.Unlock()
	return e.store
}

// Rotate moves the session oldID to newID: the identity and account cache
// are handed to a new store and everything persisted under oldID is
// cleared. It returns nil when oldID has no live store.
func (r *Registry) Rotate(ctx context.Context, oldID, newID string) *Store {
	r.mu.Lock()
	old, ok := r.entries[oldID]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	next := NewStore(newID, r.api, r.storage(newID), r.audit, r.log)
	old.store.handOver(ctx, next)

	r.mu.Lock()
	delete(r.entries, oldID)
	r.entries[newID] = &registryEntry{store: next, lastSeen: r.now(), restored: true}
	r.mu.Unlock()

	r.log.Debug().Str("session_id", newID).Str("previous_session_id", oldID).Msg("session rotated")
	return next
}

// Release drops the live store for sessionID.
func (r *Registry) Release(sessionID string) {
	r.mu.Lock()
	delete(r.entries, sessionID)
	r.mu.Unlock()
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts stores idle for longer than the idle timeout and returns how
// many were evicted.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps on every tick until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = r.idle / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.log.Debug().Int("evicted", n).Int("live", r.Len()).Msg("idle sessions evicted")
			}
		}
	}
}
