package testsupport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"isccd/internal/omero"
)

// WriteCall records one WriteRecord invocation against the fake.
type WriteCall struct {
	AssetID   int64
	Namespace string
	Record    omero.Record
}

// FakeOmero is an in-memory omero.Client for pipeline tests. Error fields
// are consumed per call so tests can script transient failures.
type FakeOmero struct {
	mu sync.Mutex

	assets      []omero.AssetRef
	files       map[int64][]byte
	annotations map[int64]map[string][]omero.Record
	connected   bool

	// Scripted failures. Each slice entry is consumed by one call; nil
	// entries mean success.
	ConnectErrs []error
	QueryErrs   []error
	WriteErrs   []error
	ExistsErrs  []error
	StreamErrs  map[int64]error

	ConnectCalls int
	QueryCalls   int
	WriteCalls   []WriteCall
}

// NewFakeOmero returns an empty fake repository.
func NewFakeOmero() *FakeOmero {
	return &FakeOmero{
		files:       make(map[int64][]byte),
		annotations: make(map[int64]map[string][]omero.Record),
		StreamErrs:  make(map[int64]error),
	}
}

// AddAsset registers an asset whose single original file holds data.
func (f *FakeOmero) AddAsset(id int64, name string, importedAt time.Time, data []byte) omero.AssetRef {
	f.mu.Lock()
	defer f.mu.Unlock()

	fileID := id * 100
	f.files[fileID] = bytes.Clone(data)
	ref := omero.AssetRef{ID: id, Name: name, ImportedAt: importedAt, FileIDs: []int64{fileID}}
	f.assets = append(f.assets, ref)
	return ref
}

// AddMultiFileAsset registers an asset with one file per data slice, in order.
func (f *FakeOmero) AddMultiFileAsset(id int64, name string, importedAt time.Time, parts ...[]byte) omero.AssetRef {
	f.mu.Lock()
	defer f.mu.Unlock()

	ref := omero.AssetRef{ID: id, Name: name, ImportedAt: importedAt}
	for i, part := range parts {
		fileID := id*100 + int64(i)
		f.files[fileID] = bytes.Clone(part)
		ref.FileIDs = append(ref.FileIDs, fileID)
	}
	f.assets = append(f.assets, ref)
	return ref
}

// SeedRecord pre-populates an annotation, as if another run already
// fingerprinted the asset.
func (f *FakeOmero) SeedRecord(assetID int64, namespace string, record omero.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addRecordLocked(assetID, namespace, record)
}

func (f *FakeOmero) addRecordLocked(assetID int64, namespace string, record omero.Record) {
	byNS, ok := f.annotations[assetID]
	if !ok {
		byNS = make(map[string][]omero.Record)
		f.annotations[assetID] = byNS
	}
	byNS[namespace] = append(byNS[namespace], record)
}

// Records returns the annotations written for an asset under namespace.
func (f *FakeOmero) Records(assetID int64, namespace string) []omero.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]omero.Record(nil), f.annotations[assetID][namespace]...)
}

func popErr(queue *[]error) error {
	if len(*queue) == 0 {
		return nil
	}
	err := (*queue)[0]
	*queue = (*queue)[1:]
	return err
}

func (f *FakeOmero) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ConnectCalls++
	if err := popErr(&f.ConnectErrs); err != nil {
		f.connected = false
		return err
	}
	f.connected = true
	return nil
}

func (f *FakeOmero) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *FakeOmero) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
}

func (f *FakeOmero) QueryNewAssets(ctx context.Context, since time.Time, sinceID int64, limit int) ([]omero.AssetRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.QueryCalls++
	if err := popErr(&f.QueryErrs); err != nil {
		return nil, err
	}
	if !f.connected {
		return nil, omero.ErrNotConnected
	}

	var matched []omero.AssetRef
	for _, asset := range f.assets {
		if asset.ImportedAt.After(since) || (asset.ImportedAt.Equal(since) && asset.ID > sinceID) {
			matched = append(matched, asset)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].ImportedAt.Equal(matched[j].ImportedAt) {
			return matched[i].ImportedAt.Before(matched[j].ImportedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *FakeOmero) OpenRawStream(ctx context.Context, fileID int64) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return nil, omero.ErrNotConnected
	}
	if err := f.StreamErrs[fileID]; err != nil {
		return nil, err
	}
	data, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("%w: original file %d", omero.ErrNotFound, fileID)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *FakeOmero) RecordExists(ctx context.Context, assetID int64, namespace string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := popErr(&f.ExistsErrs); err != nil {
		return false, err
	}
	if !f.connected {
		return false, omero.ErrNotConnected
	}
	return len(f.annotations[assetID][namespace]) > 0, nil
}

func (f *FakeOmero) WriteRecord(ctx context.Context, assetID int64, namespace string, record omero.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WriteCalls = append(f.WriteCalls, WriteCall{AssetID: assetID, Namespace: namespace, Record: record})
	if err := popErr(&f.WriteErrs); err != nil {
		return err
	}
	if !f.connected {
		return omero.ErrNotConnected
	}
	f.addRecordLocked(assetID, namespace, record)
	return nil
}
