package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Error("expected error for blank path")
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Unix(1700000000, 0).UTC()
	runs := []Run{
		{Seed: 1, Turns: 12, GoblinsDefeated: 3, Victory: false, FinishedAt: base},
		{Seed: 2, Turns: 30, GoblinsDefeated: 9, Victory: true, FinishedAt: base.Add(time.Minute)},
		{Seed: 3, Turns: 5, GoblinsDefeated: 0, Victory: false, FinishedAt: base.Add(2 * time.Minute)},
	}
	for _, run := range runs {
		if _, err := store.Record(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d runs; want 2", len(got))
	}
	if got[0].Seed != 3 || got[1].Seed != 2 {
		t.Errorf("Recent order = seeds %d, %d; want 3, 2", got[0].Seed, got[1].Seed)
	}
	if !got[1].Victory {
		t.Error("victory flag lost on round trip")
	}
	if !got[1].FinishedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("FinishedAt = %v; want %v", got[1].FinishedAt, base.Add(time.Minute))
	}
}

func TestRecordFillsFinishedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Record(ctx, Run{Seed: 7, Turns: 1}); err != nil {
		t.Fatal(err)
	}
	got, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("Recent returned %d runs; want 1", len(got))
	}
	if got[0].FinishedAt.IsZero() {
		t.Error("FinishedAt not filled for zero value")
	}
}

func TestRecentDefaultLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		if _, err := store.Record(ctx, Run{Seed: int64(i), Turns: i}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 10 {
		t.Errorf("Recent(0) returned %d runs; want the default 10", len(got))
	}
}
