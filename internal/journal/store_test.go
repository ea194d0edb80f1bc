package journal_test

import (
	"context"
	"testing"
	"time"

	"isccd/internal/journal"
	"isccd/internal/testsupport"
)

func TestCursorStartsZero(t *testing.T) {
	store := testsupport.MustOpenJournal(t, testsupport.NewConfig(t))

	cur, err := store.Cursor(context.Background())
	if err != nil {
		t.Fatalf("Cursor failed: %v", err)
	}
	if !cur.IsZero() {
		t.Fatalf("expected zero cursor, got %+v", cur)
	}
}

func TestAdvanceCursorIsMonotone(t *testing.T) {
	store := testsupport.MustOpenJournal(t, testsupport.NewConfig(t))
	ctx := context.Background()

	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	if err := store.AdvanceCursor(ctx, journal.Cursor{LastSeenAt: t2, LastSeenID: 20}); err != nil {
		t.Fatalf("AdvanceCursor failed: %v", err)
	}
	// Stale cursor must be ignored.
	if err := store.AdvanceCursor(ctx, journal.Cursor{LastSeenAt: t1, LastSeenID: 10}); err != nil {
		t.Fatalf("AdvanceCursor with stale value failed: %v", err)
	}

	cur, err := store.Cursor(ctx)
	if err != nil {
		t.Fatalf("Cursor failed: %v", err)
	}
	if !cur.LastSeenAt.Equal(t2) || cur.LastSeenID != 20 {
		t.Fatalf("cursor regressed: %+v", cur)
	}

	// Same timestamp, larger id advances.
	if err := store.AdvanceCursor(ctx, journal.Cursor{LastSeenAt: t2, LastSeenID: 25}); err != nil {
		t.Fatalf("AdvanceCursor failed: %v", err)
	}
	cur, _ = store.Cursor(ctx)
	if cur.LastSeenID != 25 {
		t.Fatalf("expected id tie-break advance, got %+v", cur)
	}
}

func TestCursorSurvivesReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	want := journal.Cursor{LastSeenAt: time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC), LastSeenID: 7}
	if err := store.AdvanceCursor(ctx, want); err != nil {
		t.Fatalf("AdvanceCursor failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenJournal(t, cfg)
	cur, err := reopened.Cursor(ctx)
	if err != nil {
		t.Fatalf("Cursor after reopen failed: %v", err)
	}
	if !cur.LastSeenAt.Equal(want.LastSeenAt) || cur.LastSeenID != want.LastSeenID {
		t.Fatalf("cursor lost across reopen: %+v", cur)
	}
}

func TestRecordOutcomeFirstWins(t *testing.T) {
	store := testsupport.MustOpenJournal(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first := journal.Outcome{
		AssetID:    5,
		Namespace:  "org.iscc.omero.sum",
		Kind:       journal.OutcomeCommitted,
		Code:       "ISCC:AAA",
		SourceFile: "a.tiff",
	}
	if err := store.RecordOutcome(ctx, first); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}
	second := first
	second.Code = "ISCC:BBB"
	if err := store.RecordOutcome(ctx, second); err != nil {
		t.Fatalf("repeat RecordOutcome failed: %v", err)
	}

	outcomes, err := store.RecentOutcomes(ctx, 10)
	if err != nil {
		t.Fatalf("RecentOutcomes failed: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Code != "ISCC:AAA" {
		t.Fatalf("expected first outcome to win, got %#v", outcomes)
	}
}

func TestHasOutcomeScopedByNamespace(t *testing.T) {
	store := testsupport.MustOpenJournal(t, testsupport.NewConfig(t))
	ctx := context.Background()

	outcome := journal.Outcome{AssetID: 9, Namespace: "ns.a", Kind: journal.OutcomeSkipped, Detail: "source unreadable"}
	if err := store.RecordOutcome(ctx, outcome); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}

	has, err := store.HasOutcome(ctx, 9, "ns.a")
	if err != nil || !has {
		t.Fatalf("expected outcome under ns.a, got has=%v err=%v", has, err)
	}
	has, err = store.HasOutcome(ctx, 9, "ns.b")
	if err != nil || has {
		t.Fatalf("expected no outcome under ns.b, got has=%v err=%v", has, err)
	}
}

func TestCursorAccepts(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	cur := journal.Cursor{LastSeenAt: base, LastSeenID: 10}

	cases := []struct {
		name string
		t    time.Time
		id   int64
		want bool
	}{
		{"older timestamp", base.Add(-time.Second), 99, false},
		{"same timestamp same id", base, 10, false},
		{"same timestamp older id", base, 9, false},
		{"same timestamp newer id", base, 11, true},
		{"newer timestamp", base.Add(time.Second), 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cur.Accepts(tc.t, tc.id); got != tc.want {
				t.Fatalf("Accepts(%v, %d) = %v, want %v", tc.t, tc.id, got, tc.want)
			}
		})
	}
}
