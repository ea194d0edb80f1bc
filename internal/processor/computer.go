// Package processor computes fingerprints for single assets.
//
// Compute streams an asset's original files, in import order, through the
// ISCC-SUM hasher in fixed-size chunks. The resulting code depends only on
// the concatenated bytes; chunk size changes never alter it. Any failure to
// open or read a source is ErrSourceUnreadable: the data is either there or
// it is not, so the orchestrator skips the asset instead of retrying.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"isccd/internal/isccsum"
	"isccd/internal/logging"
	"isccd/internal/omero"
)

// ErrSourceUnreadable marks an asset whose raw bytes could not be read.
// Non-retryable; the asset is skipped and journaled so it never blocks the
// pipeline.
var ErrSourceUnreadable = errors.New("asset source unreadable")

const progressLogInterval = 10 * 1024 * 1024

// Computer streams asset bytes through the fingerprint hasher.
type Computer struct {
	client    omero.Client
	chunkSize int
	logger    *slog.Logger
}

// New constructs a computer reading chunkSize bytes per update.
func New(client omero.Client, chunkSize int, logger *slog.Logger) *Computer {
	return &Computer{
		client:    client,
		chunkSize: chunkSize,
		logger:    logging.NewComponentLogger(logger, "processor"),
	}
}

// Compute fingerprints the asset's original files. An asset with no files is
// unreadable by definition.
func (c *Computer) Compute(ctx context.Context, asset omero.AssetRef) (isccsum.Result, error) {
	if len(asset.FileIDs) == 0 {
		return isccsum.Result{}, fmt.Errorf("%w: asset %d has no original files", ErrSourceUnreadable, asset.ID)
	}

	hasher := isccsum.New()
	var total int64
	for _, fileID := range asset.FileIDs {
		read, err := c.streamFile(ctx, fileID, hasher, total)
		total += read
		if err != nil {
			return isccsum.Result{}, fmt.Errorf("%w: asset %d file %d: %v", ErrSourceUnreadable, asset.ID, fileID, err)
		}
	}

	result := hasher.Result(true, true)
	c.logger.Debug("fingerprint computed",
		logging.Args(
			logging.Int64("asset_id", asset.ID),
			logging.String("iscc", result.ISCC),
			logging.Int64("bytes", result.Filesize),
		)...)
	return result, nil
}

func (c *Computer) streamFile(ctx context.Context, fileID int64, hasher *isccsum.Processor, offset int64) (int64, error) {
	stream, err := c.client.OpenRawStream(ctx, fileID)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	buf := make([]byte, c.chunkSize)
	var read int64
	nextProgress := (offset/progressLogInterval + 1) * progressLogInterval
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			hasher.Update(buf[:n])
			read += int64(n)
			if offset+read >= nextProgress {
				c.logger.Debug("streaming progress",
					logging.Args(
						logging.Int64("file_id", fileID),
						logging.Int64("bytes", offset+read),
					)...)
				nextProgress += progressLogInterval
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return read, nil
			}
			return read, err
		}
	}
}
