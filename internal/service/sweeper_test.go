package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSweeperRemovesAbandonedSessions(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, testLoc)
	abandoned, err := store.Create(ctx, "GHOST1", now.AddDate(0, 0, -10))
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := store.Create(ctx, "FRESH1", now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	exited, err := store.Create(ctx, "GONE01", now.AddDate(0, 0, -10))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Close(ctx, exited.ID, now.AddDate(0, 0, -10).Add(time.Hour), 4000); err != nil {
		t.Fatal(err)
	}

	sw := NewSweeper(store, time.Hour, 7*24*time.Hour, nil)
	sw.now = func() time.Time { return now }

	runCtx, cancel := context.WithCancel(ctx)
	cancel()
	// Run sweeps once before honoring cancellation.
	if err := sw.Run(runCtx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v, want context.Canceled", err)
	}

	if _, err := store.GetByID(ctx, abandoned.ID); err == nil {
		t.Fatal("abandoned session should have been removed")
	}
	if _, err := store.GetByID(ctx, fresh.ID); err != nil {
		t.Fatal("fresh open session must survive the sweep")
	}
	if _, err := store.GetByID(ctx, exited.ID); err != nil {
		t.Fatal("closed sessions are never swept, regardless of age")
	}
}
