package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/footycards/attax-backend/internal/engine"
)

func testSession(id string) engine.Session {
	return engine.NewSession(id, "ABC234", "alice", "Alice", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
}

func TestMemory_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	version, err := m.Create(ctx, testSession("s1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if version != 1 {
		t.Fatalf("initial version = %d, want 1", version)
	}

	sess, got, err := m.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != version || sess.ID != "s1" {
		t.Fatalf("get = %q v%d", sess.ID, got)
	}

	if _, err := m.Create(ctx, testSession("s1")); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate create: %v", err)
	}
}

func TestMemory_GetMissing(t *testing.T) {
	m := NewMemory()
	if _, _, err := m.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestMemory_PutIsConditional(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if _, err := m.Create(ctx, testSession("s1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	sess, version, _ := m.Get(ctx, "s1")
	sess.Status = engine.StatusSelecting

	next, err := m.Put(ctx, "s1", version, sess)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if next != version+1 {
		t.Fatalf("version after put = %d, want %d", next, version+1)
	}

	// A writer holding the old version must be refused.
	if _, err := m.Put(ctx, "s1", version, sess); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale put: %v", err)
	}

	got, _, _ := m.Get(ctx, "s1")
	if got.Status != engine.StatusSelecting {
		t.Fatalf("status = %s after refused stale write", got.Status)
	}
}

func TestMemory_PutMissing(t *testing.T) {
	m := NewMemory()
	if _, err := m.Put(context.Background(), "nope", 1, testSession("nope")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// The store hands out copies; mutating what Get returned must not bleed
// into a later read.
func TestMemory_IsolatesCallers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	sess := testSession("s1")
	sess.Player1.Lineup = []string{"c1", "c2"}
	if _, err := m.Create(ctx, sess); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _, _ := m.Get(ctx, "s1")
	got.Player1.Lineup[0] = "hacked"
	got.Rounds = append(got.Rounds, engine.RoundResult{Round: 1})

	fresh, _, _ := m.Get(ctx, "s1")
	if fresh.Player1.Lineup[0] != "c1" {
		t.Fatalf("mutation through a Get result reached the store")
	}
	if len(fresh.Rounds) != 0 {
		t.Fatalf("append through a Get result reached the store")
	}
}
