package omero

import (
	"context"
	"io"
	"time"
)

// Client is the repository surface consumed by the pipeline.
type Client interface {
	// Connect performs the session handshake. Safe to call again after a
	// fault; any previous session is discarded.
	Connect(ctx context.Context) error

	// Connected reports whether a session is currently held.
	Connected() bool

	// QueryNewAssets returns images strictly beyond the (since, sinceID)
	// position: imported after since, or at since with a larger id. Results
	// are ordered by import time then id and truncated to limit, so assets
	// sharing the checkpoint timestamp can never crowd fresh ones out of
	// the window.
	QueryNewAssets(ctx context.Context, since time.Time, sinceID int64, limit int) ([]AssetRef, error)

	// OpenRawStream opens the raw bytes of one original file.
	OpenRawStream(ctx context.Context, fileID int64) (io.ReadCloser, error)

	// RecordExists reports whether the asset already carries an annotation
	// under namespace.
	RecordExists(ctx context.Context, assetID int64, namespace string) (bool, error)

	// WriteRecord attaches a map annotation under namespace to the asset.
	WriteRecord(ctx context.Context, assetID int64, namespace string, record Record) error

	// Close ends the session. Best-effort; errors are not reported.
	Close()
}
