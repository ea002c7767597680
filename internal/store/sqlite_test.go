package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/task-tracker/internal/model"
	"github.com/nhle/task-tracker/internal/store"
	"github.com/nhle/task-tracker/tests/testutil"
)

func TestRecordEntryAssignsIDAndTime(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	e, err := s.RecordEntry(ctx, model.TrackedEntry{TaskID: "t1", TaskTitle: "Write docs", Seconds: 90})
	if err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}
	if e.ID == "" {
		t.Error("expected generated id")
	}
	if e.SavedAt.IsZero() {
		t.Error("expected SavedAt to be set")
	}

	got, err := s.GetEntries(ctx, store.EntryFilter{})
	if err != nil {
		t.Fatalf("GetEntries: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].ID != e.ID || got[0].Seconds != 90 || got[0].TaskTitle != "Write docs" {
		t.Errorf("unexpected entry %+v", got[0])
	}
}

func TestRecordEntryRejectsInvalid(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry model.TrackedEntry
	}{
		{"missing task", model.TrackedEntry{Seconds: 5}},
		{"zero seconds", model.TrackedEntry{TaskID: "t1"}},
		{"negative seconds", model.TrackedEntry{TaskID: "t1", Seconds: -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.RecordEntry(ctx, tt.entry); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGetEntriesNewestFirstWithLimit(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		_, err := s.RecordEntry(ctx, model.TrackedEntry{
			ID:      id,
			TaskID:  "t1",
			Seconds: 10,
			SavedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("RecordEntry %s: %v", id, err)
		}
	}

	got, err := s.GetEntries(ctx, store.EntryFilter{Limit: 2})
	if err != nil {
		t.Fatalf("GetEntries: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestTotalSecondsFilters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	entries := []model.TrackedEntry{
		{TaskID: "t1", UserID: "u1", Seconds: 100, SavedAt: day.Add(-time.Hour)},
		{TaskID: "t1", UserID: "u1", Seconds: 5, SavedAt: day.Add(time.Hour)},
		{TaskID: "t2", UserID: "u1", Seconds: 20, SavedAt: day.Add(2 * time.Hour)},
		{TaskID: "t1", UserID: "u2", Seconds: 7, SavedAt: day.Add(3 * time.Hour)},
	}
	for _, e := range entries {
		if _, err := s.RecordEntry(ctx, e); err != nil {
			t.Fatalf("RecordEntry: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter store.EntryFilter
		want   int
	}{
		{"all", store.EntryFilter{}, 132},
		{"user", store.EntryFilter{UserID: "u1"}, 125},
		{"user since day", store.EntryFilter{UserID: "u1", Since: day}, 25},
		{"task", store.EntryFilter{TaskID: "t1"}, 112},
		{"nothing", store.EntryFilter{UserID: "nobody"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.TotalSeconds(ctx, tt.filter)
			if err != nil {
				t.Fatalf("TotalSeconds: %v", err)
			}
			if got != tt.want {
				t.Errorf("TotalSeconds = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDeleteEntriesForTask(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"t1", "t1", "t2"} {
		if _, err := s.RecordEntry(ctx, model.TrackedEntry{TaskID: id, Seconds: 1}); err != nil {
			t.Fatalf("RecordEntry: %v", err)
		}
	}
	if err := s.DeleteEntriesForTask(ctx, "t1"); err != nil {
		t.Fatalf("DeleteEntriesForTask: %v", err)
	}
	got, err := s.GetEntries(ctx, store.EntryFilter{})
	if err != nil {
		t.Fatalf("GetEntries: %v", err)
	}
	if len(got) != 1 || got[0].TaskID != "t2" {
		t.Errorf("unexpected entries after delete: %+v", got)
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 3, 2, 17, 45, 12, 9, time.UTC)
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if got := store.StartOfDay(in); !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
}
