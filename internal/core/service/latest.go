package service

import "sync"

// Latest holds the result of the most recently started request. Results from
// requests that were superseded before they completed are discarded, so an
// older response can never overwrite a newer one.
type Latest[T any] struct {
	mu        sync.Mutex
	started   uint64
	committed uint64
	value     T
}

// Begin tags a new request and returns its sequence number.
func (l *Latest[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started++
	return l.started
}

// Commit stores v if seq is still the newest request. It reports whether the
// value was kept.
func (l *Latest[T]) Commit(seq uint64, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.started || seq <= l.committed {
		return false
	}
	l.committed = seq
	l.value = v
	return true
}

// Value returns the last committed result.
func (l *Latest[T]) Value() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// Reset drops the stored value and invalidates every in-flight request.
func (l *Latest[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	l.started++
	l.committed = l.started
	l.value = zero
}
