package logging

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func sampleRecord(id string, ts time.Time, outcome string) Record {
	return Record{
		SolveID:        id,
		Timestamp:      ts,
		Outcome:        outcome,
		Status:         "optimal",
		Workers:        8,
		Days:           7,
		Objective:      1234,
		TotalShortfall: 2,
		DurationMS:     150,
	}
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	records := []Record{
		sampleRecord("a", base, "scheduled"),
		sampleRecord("b", base.Add(time.Hour), "infeasible"),
		sampleRecord("c", base.Add(2*time.Hour), "scheduled"),
	}
	for _, r := range records {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}

	got, err = s.Query(ctx, Query{Outcome: "scheduled"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("outcome filter: got %d, want 2", len(got))
	}

	got, err = s.Query(ctx, Query{Start: base.Add(30 * time.Minute)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 || got[0].SolveID != "b" {
		t.Fatalf("start filter: %+v", got)
	}

	got, err = s.Query(ctx, Query{End: base.Add(30 * time.Minute)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].SolveID != "a" {
		t.Fatalf("end filter: %+v", got)
	}
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "solves.jsonl"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = s.Close() }()
	testStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "solves.db"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = s.Close() }()
	testStore(t, s)
}
