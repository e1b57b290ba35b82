package service

import "testing"

func TestLatest_NewerRequestWins(t *testing.T) {
	var l Latest[string]

	first := l.Begin()
	second := l.Begin()

	if !l.Commit(second, "second") {
		t.Fatal("expected newest commit to be kept")
	}
	if l.Commit(first, "first") {
		t.Fatal("expected stale commit to be discarded")
	}
	if got := l.Value(); got != "second" {
		t.Fatalf("expected second, got %q", got)
	}
}

func TestLatest_OutOfOrderOlderArrivesFirst(t *testing.T) {
	var l Latest[int]

	first := l.Begin()
	second := l.Begin()

	if l.Commit(first, 1) {
		t.Fatal("expected superseded commit to be discarded even when it arrives first")
	}
	if !l.Commit(second, 2) {
		t.Fatal("expected newest commit to be kept")
	}
	if l.Value() != 2 {
		t.Fatalf("expected 2, got %d", l.Value())
	}
}

func TestLatest_CommitTwiceIgnored(t *testing.T) {
	var l Latest[int]
	seq := l.Begin()
	if !l.Commit(seq, 1) {
		t.Fatal("expected first commit kept")
	}
	if l.Commit(seq, 2) {
		t.Fatal("expected repeated commit ignored")
	}
}

func TestLatest_ResetInvalidatesInFlight(t *testing.T) {
	var l Latest[[]string]
	seq := l.Begin()
	l.Reset()

	if l.Commit(seq, []string{"stale"}) {
		t.Fatal("expected commit after reset to be discarded")
	}
	if l.Value() != nil {
		t.Fatalf("expected empty value, got %v", l.Value())
	}

	next := l.Begin()
	if !l.Commit(next, []string{"fresh"}) {
		t.Fatal("expected commit after reset to work for new requests")
	}
}
