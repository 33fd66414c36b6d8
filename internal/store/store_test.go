package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/typespeed/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "db", "typespeed.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListResults(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		start := base.Add(time.Duration(i) * 24 * time.Hour)
		r := model.Result{
			StartedAt:    start,
			EndedAt:      start.Add(30 * time.Second),
			Words:        25,
			CharLimit:    15,
			WordListPath: "words.txt",
			Correct:      100 + i,
			Total:        110 + i,
			DurationMs:   30000,
		}
		if _, err := st.InsertResult(ctx, r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	all, err := st.ListResults(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 results, got %d", len(all))
	}
	if all[0].Correct != 100 || all[2].Correct != 102 {
		t.Fatalf("unexpected order: %+v", all)
	}
	if !all[0].StartedAt.Equal(base) {
		t.Fatalf("expected start time round trip, got %s", all[0].StartedAt)
	}

	last, err := st.ListResults(ctx, model.HistoryConfig{Last: 2})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 2 || last[0].Correct != 101 {
		t.Fatalf("unexpected last results: %+v", last)
	}

	since := base.Add(36 * time.Hour)
	recent, err := st.ListResults(ctx, model.HistoryConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 || recent[0].Correct != 102 {
		t.Fatalf("unexpected since results: %+v", recent)
	}
}

func TestListResultsOrdersAcrossPrecisionAndZones(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	east := time.FixedZone("east", 2*60*60)
	ends := []time.Time{
		time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC),
		time.Date(2026, 3, 1, 10, 0, 5, 100_000_000, time.UTC),
		time.Date(2026, 3, 1, 11, 0, 0, 0, east),
	}
	// Inserted out of order; the zoned time is 09:00 UTC and sorts first.
	for i, end := range ends {
		r := model.Result{StartedAt: end.Add(-time.Second), EndedAt: end, Words: 10, CharLimit: 15, WordListPath: "words.txt", Correct: i, Total: i, DurationMs: 1000}
		if _, err := st.InsertResult(ctx, r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	got, err := st.ListResults(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	order := []int{got[0].Correct, got[1].Correct, got[2].Correct}
	if order[0] != 2 || order[1] != 0 || order[2] != 1 {
		t.Fatalf("expected chronological order [2 0 1], got %v", order)
	}
	if !got[2].EndedAt.Equal(ends[1]) {
		t.Fatalf("expected fractional seconds kept, got %s", got[2].EndedAt)
	}
}
