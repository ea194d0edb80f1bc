package processor_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"isccd/internal/isccsum"
	"isccd/internal/logging"
	"isccd/internal/omero"
	"isccd/internal/processor"
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

func TestComputeMatchesDirectHash(t *testing.T) {
	data := make([]byte, 2*1024*1024+13)
	rand.New(rand.NewSource(7)).Read(data)

	fake := connectedFake(t)
	asset := fake.AddAsset(1, "img.tiff", time.Now(), data)

	computer := processor.New(fake, 1024*1024, logging.NewNop())
	result, err := computer.Compute(context.Background(), asset)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	direct := isccsum.New()
	direct.Update(data)
	want := direct.Result(true, true)

	if result.ISCC != want.ISCC {
		t.Fatalf("streamed code %s differs from direct code %s", result.ISCC, want.ISCC)
	}
	if result.Filesize != int64(len(data)) {
		t.Fatalf("expected filesize %d, got %d", len(data), result.Filesize)
	}
}

func TestComputeChunkSizeInvariant(t *testing.T) {
	data := make([]byte, 512*1024+7)
	rand.New(rand.NewSource(11)).Read(data)

	fake := connectedFake(t)
	asset := fake.AddAsset(2, "img.tiff", time.Now(), data)

	small := processor.New(fake, 1024, logging.NewNop())
	large := processor.New(fake, 1024*1024, logging.NewNop())

	first, err := small.Compute(context.Background(), asset)
	if err != nil {
		t.Fatalf("Compute with 1 KiB chunks failed: %v", err)
	}
	second, err := large.Compute(context.Background(), asset)
	if err != nil {
		t.Fatalf("Compute with 1 MiB chunks failed: %v", err)
	}
	if first.ISCC != second.ISCC {
		t.Fatalf("chunk size changed code: %s vs %s", first.ISCC, second.ISCC)
	}
}

func TestComputeConcatenatesFilesInOrder(t *testing.T) {
	partA := []byte("first original file contents")
	partB := []byte("second original file contents")

	fake := connectedFake(t)
	multi := fake.AddMultiFileAsset(3, "multi.tiff", time.Now(), partA, partB)
	single := fake.AddAsset(4, "single.tiff", time.Now(), append(append([]byte{}, partA...), partB...))

	computer := processor.New(fake, 8, logging.NewNop())
	fromMulti, err := computer.Compute(context.Background(), multi)
	if err != nil {
		t.Fatalf("Compute multi failed: %v", err)
	}
	fromSingle, err := computer.Compute(context.Background(), single)
	if err != nil {
		t.Fatalf("Compute single failed: %v", err)
	}
	if fromMulti.ISCC != fromSingle.ISCC {
		t.Fatalf("file concatenation not order-preserving: %s vs %s", fromMulti.ISCC, fromSingle.ISCC)
	}
}

func TestComputeNoFilesIsUnreadable(t *testing.T) {
	fake := connectedFake(t)
	computer := processor.New(fake, 1024, logging.NewNop())

	_, err := computer.Compute(context.Background(), omero.AssetRef{ID: 9, Name: "empty"})
	if !errors.Is(err, processor.ErrSourceUnreadable) {
		t.Fatalf("expected ErrSourceUnreadable, got %v", err)
	}
}

func TestComputeStreamFailureIsUnreadable(t *testing.T) {
	fake := connectedFake(t)
	asset := fake.AddAsset(5, "broken.tiff", time.Now(), []byte("data"))
	fake.StreamErrs[asset.FileIDs[0]] = fmt.Errorf("%w: original file gone", omero.ErrNotFound)

	computer := processor.New(fake, 1024, logging.NewNop())
	_, err := computer.Compute(context.Background(), asset)
	if !errors.Is(err, processor.ErrSourceUnreadable) {
		t.Fatalf("expected ErrSourceUnreadable, got %v", err)
	}
	if omero.IsUnavailable(err) {
		t.Fatalf("source failure must not classify as connection fault: %v", err)
	}
}

func TestBuildRecordLayout(t *testing.T) {
	asset := omero.AssetRef{ID: 6, Name: "img.tiff"}
	result := isccsum.Result{ISCC: "ISCC:SUM", DataCode: "ISCC:DATA", InstCode: "ISCC:INST"}
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	record := processor.BuildRecord(asset, result, "isccd/0.1.0 run-1", now)
	if record.Code != "ISCC:SUM" || record.SourceFile != "img.tiff" {
		t.Fatalf("unexpected record: %#v", record)
	}
	if record.Version != isccsum.RecordVersion {
		t.Fatalf("expected version %q, got %q", isccsum.RecordVersion, record.Version)
	}
	if record.Extra["data"] != "ISCC:DATA" || record.Extra["inst"] != "ISCC:INST" {
		t.Fatalf("unit codes missing from extension map: %#v", record.Extra)
	}
	if !record.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp %v, got %v", now, record.Timestamp)
	}
}
