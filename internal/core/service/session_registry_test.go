package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

type storageSet struct {
	mu    sync.Mutex
	areas map[string]*memStorage
}

func (s *storageSet) factory(sessionID string) ports.SessionStorage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.areas == nil {
		s.areas = make(map[string]*memStorage)
	}
	area, ok := s.areas[sessionID]
	if !ok {
		area = newMemStorage()
		s.areas[sessionID] = area
	}
	return area
}

func TestRegistry_AcquireReturnsSameStore(t *testing.T) {
	set := &storageSet{}
	reg := NewRegistry(&stubBankAPI{}, set.factory, nil, time.Minute, zerolog.Nop())

	a := reg.Acquire(context.Background(), "sid-1")
	b := reg.Acquire(context.Background(), "sid-1")
	c := reg.Acquire(context.Background(), "sid-2")

	if a != b {
		t.Fatal("expected the same store for the same session")
	}
	if a == c {
		t.Fatal("expected distinct stores for distinct sessions")
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 live sessions, got %d", reg.Len())
	}
}

func TestRegistry_AcquireRestoresPersistedIdentity(t *testing.T) {
	set := &storageSet{}
	raw, _ := json.Marshal(domain.Identity{UserID: "a1", UserRole: domain.RoleAdmin})
	area := set.factory("sid-1").(*memStorage)
	area.data[domain.KeyUser] = raw

	reg := NewRegistry(&stubBankAPI{}, set.factory, nil, time.Minute, zerolog.Nop())
	store := reg.Acquire(context.Background(), "sid-1")

	if !store.Flags().IsAdmin {
		t.Fatalf("expected restored admin session, got %+v", store.Flags())
	}
}

func TestRegistry_RetriesRestoreAfterStorageError(t *testing.T) {
	set := &storageSet{}
	raw, _ := json.Marshal(domain.Identity{UserID: "c1", UserRole: domain.RoleCustomer})
	area := set.factory("sid-1").(*memStorage)
	area.data[domain.KeyUser] = raw
	area.loadErr = errors.New("redis: i/o timeout")

	reg := NewRegistry(&stubBankAPI{}, set.factory, nil, time.Minute, zerolog.Nop())

	if reg.Acquire(context.Background(), "sid-1").Flags().IsAuthenticated {
		t.Fatal("expected unauthenticated while storage is down")
	}

	area.mu.Lock()
	area.loadErr = nil
	area.mu.Unlock()

	store := reg.Acquire(context.Background(), "sid-1")
	if !store.Flags().IsCustomer {
		t.Fatalf("expected identity restored once storage recovered, got %+v", store.Flags())
	}

	area.mu.Lock()
	area.loadErr = errors.New("redis: i/o timeout")
	area.mu.Unlock()
	if !reg.Acquire(context.Background(), "sid-1").Flags().IsCustomer {
		t.Fatal("a settled session must not be restored again")
	}
}

func TestRegistry_SweepEvictsIdleAndRestoresLater(t *testing.T) {
	set := &storageSet{}
	reg := NewRegistry(&stubBankAPI{loginFn: loginAs("u1", "banker")}, set.factory, nil, time.Minute, zerolog.Nop())

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	store := reg.Acquire(context.Background(), "sid-1")
	if _, err := store.Login(context.Background(), Credentials{Username: "u1", Password: "p"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	reg.Acquire(context.Background(), "sid-2")

	now = now.Add(45 * time.Second)
	reg.Acquire(context.Background(), "sid-2")

	now = now.Add(30 * time.Second)
	if n := reg.Sweep(); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", reg.Len())
	}

	again := reg.Acquire(context.Background(), "sid-1")
	if again == store {
		t.Fatal("expected a fresh store after eviction")
	}
	if !again.Flags().IsBanker {
		t.Fatal("expected identity restored from storage")
	}
}

func TestRegistry_Release(t *testing.T) {
	reg := NewRegistry(&stubBankAPI{}, (&storageSet{}).factory, nil, time.Minute, zerolog.Nop())
	reg.Acquire(context.Background(), "sid-1")
	reg.Release("sid-1")
	if reg.Len() != 0 {
		t.Fatalf("expected no live sessions, got %d", reg.Len())
	}
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	reg := NewRegistry(&stubBankAPI{}, (&storageSet{}).factory, nil, time.Minute, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRegistry_RotateMovesSession(t *testing.T) {
	set := &storageSet{}
	reg := NewRegistry(&stubBankAPI{loginFn: loginAs("c1", "customer")}, set.factory, nil, time.Minute, zerolog.Nop())

	old := reg.Acquire(context.Background(), "sid-old")
	if _, err := old.Login(context.Background(), Credentials{Username: "c1", Password: "p"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	next := reg.Rotate(context.Background(), "sid-old", "sid-new")
	if next == nil || next.SessionID() != "sid-new" {
		t.Fatalf("expected store for sid-new, got %v", next)
	}
	if !next.Flags().IsCustomer {
		t.Fatalf("expected identity carried over, got %+v", next.Flags())
	}
	if old.Flags().IsAuthenticated {
		t.Fatal("expected the old store cleared")
	}
	if set.factory("sid-old").(*memStorage).has(domain.KeyUser) {
		t.Fatal("expected persisted identity removed from the old session")
	}
	if !set.factory("sid-new").(*memStorage).has(domain.KeyUser) {
		t.Fatal("expected identity persisted under the new session")
	}

	if reg.Acquire(context.Background(), "sid-old").Flags().IsAuthenticated {
		t.Fatal("the old session id must not stay authenticated")
	}
	if reg.Acquire(context.Background(), "sid-new") != next {
		t.Fatal("expected the rotated store to be live under the new id")
	}
}

func TestRegistry_RotateUnknownSession(t *testing.T) {
	reg := NewRegistry(&stubBankAPI{}, (&storageSet{}).factory, nil, time.Minute, zerolog.Nop())
	if reg.Rotate(context.Background(), "missing", "sid-new") != nil {
		t.Fatal("expected nil for a session with no live store")
	}
}
