package monitor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"isccd/internal/journal"
	"isccd/internal/logging"
	"isccd/internal/monitor"
	"isccd/internal/omero"
	"isccd/internal/testsupport"
)

func connectedFake(t *testing.T) *testsupport.FakeOmero {
	t.Helper()
	fake := testsupport.NewFakeOmero()
	if err := fake.Connect(context.Background()); err != nil {
		t.Fatalf("connect fake: %v", err)
	}
	return fake
}

func TestPollReturnsEmptyBatchWhenNothingNew(t *testing.T) {
	fake := connectedFake(t)
	m := monitor.New(fake, logging.NewNop())

	batch, err := m.Poll(context.Background(), journal.Cursor{}, 10)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("expected empty batch, got %d assets", len(batch))
	}
}

func TestPollRespectsBatchBound(t *testing.T) {
	fake := connectedFake(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= 7; i++ {
		fake.AddAsset(int64(i), fmt.Sprintf("img-%d", i), base.Add(time.Duration(i)*time.Minute), []byte("x"))
	}
	m := monitor.New(fake, logging.NewNop())

	batch, err := m.Poll(context.Background(), journal.Cursor{}, 3)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("expected batch of 3, got %d", len(batch))
	}
	for i, asset := range batch {
		if asset.ID != int64(i+1) {
			t.Fatalf("expected ordered batch starting at 1, got %v", batch)
		}
	}
}

func TestPollFiltersBoundaryAsset(t *testing.T) {
	fake := connectedFake(t)
	boundary := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	fake.AddAsset(10, "old", boundary, []byte("x"))
	fake.AddAsset(11, "tie", boundary, []byte("x"))
	fake.AddAsset(12, "new", boundary.Add(time.Minute), []byte("x"))

	m := monitor.New(fake, logging.NewNop())
	cur := journal.Cursor{LastSeenAt: boundary, LastSeenID: 10}

	batch, err := m.Poll(context.Background(), cur, 10)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if len(batch) != 2 || batch[0].ID != 11 || batch[1].ID != 12 {
		t.Fatalf("expected assets 11 and 12, got %v", batch)
	}
}

func TestPollBoundaryTieWithSmallBatch(t *testing.T) {
	fake := connectedFake(t)
	boundary := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	fake.AddAsset(1, "a", boundary, []byte("x"))
	fake.AddAsset(2, "b", boundary, []byte("x"))
	fake.AddAsset(3, "c", boundary, []byte("x"))

	m := monitor.New(fake, logging.NewNop())
	cur := journal.Cursor{LastSeenAt: boundary, LastSeenID: 2}

	batch, err := m.Poll(context.Background(), cur, 1)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if len(batch) != 1 || batch[0].ID != 3 {
		t.Fatalf("expected asset 3 past the tied cursor, got %v", batch)
	}
}

func TestPollDrainsLargeSameTimestampImport(t *testing.T) {
	fake := connectedFake(t)
	boundary := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	// A bulk import lands many assets in the same second. Walking them one
	// per poll must always surface the next id, no matter how many already
	// sit behind the cursor.
	const total = 9
	for i := 1; i <= total; i++ {
		fake.AddAsset(int64(i), fmt.Sprintf("bulk-%d", i), boundary, []byte("x"))
	}

	m := monitor.New(fake, logging.NewNop())
	cur := journal.Cursor{}
	for i := 1; i <= total; i++ {
		batch, err := m.Poll(context.Background(), cur, 1)
		if err != nil {
			t.Fatalf("Poll %d failed: %v", i, err)
		}
		if len(batch) != 1 || batch[0].ID != int64(i) {
			t.Fatalf("poll %d: expected asset %d, got %v", i, i, batch)
		}
		cur = journal.Cursor{LastSeenAt: batch[0].ImportedAt, LastSeenID: batch[0].ID}
	}

	batch, err := m.Poll(context.Background(), cur, 1)
	if err != nil {
		t.Fatalf("final Poll failed: %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("expected drained timeline, got %v", batch)
	}
}

func TestPollPassesThroughQueryErrors(t *testing.T) {
	fake := connectedFake(t)
	fake.QueryErrs = []error{fmt.Errorf("%w: boom", omero.ErrUnavailable)}
	m := monitor.New(fake, logging.NewNop())

	_, err := m.Poll(context.Background(), journal.Cursor{}, 5)
	if !errors.Is(err, omero.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable passthrough, got %v", err)
	}
	if fake.QueryCalls != 1 {
		t.Fatalf("monitor must not retry, got %d query calls", fake.QueryCalls)
	}
}

func TestPollRejectsNonPositiveBatchSize(t *testing.T) {
	m := monitor.New(connectedFake(t), logging.NewNop())
	if _, err := m.Poll(context.Background(), journal.Cursor{}, 0); err == nil {
		t.Fatal("expected error for batch size 0")
	}
}
