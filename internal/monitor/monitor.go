// Package monitor discovers newly imported assets relative to a cursor.
//
// Poll queries the repository for images strictly beyond the cursor's
// (timestamp, id) position and returns an ordered batch capped at the
// configured size. An empty batch is the steady state, not an error.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"isccd/internal/journal"
	"isccd/internal/logging"
	"isccd/internal/omero"
)

// Monitor polls the repository for new assets. It holds no cursor state;
// the orchestrator owns the cursor and passes it in.
type Monitor struct {
	client omero.Client
	logger *slog.Logger
}

// New constructs a monitor over the given client.
func New(client omero.Client, logger *slog.Logger) *Monitor {
	return &Monitor{
		client: client,
		logger: logging.NewComponentLogger(logger, "monitor"),
	}
}

// Poll returns up to batchSize assets strictly beyond cur, ordered by import
// time then id. Query failures surface unwrapped so the orchestrator can
// classify them; the monitor never retries.
func (m *Monitor) Poll(ctx context.Context, cur journal.Cursor, batchSize int) ([]omero.AssetRef, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("poll requires a positive batch size, got %d", batchSize)
	}

	// The server applies the (timestamp, id) tuple filter, so already
	// handled assets at the checkpoint timestamp never occupy the result
	// window. Re-filter anyway in case a server returns a loose match.
	assets, err := m.client.QueryNewAssets(ctx, cur.LastSeenAt, cur.LastSeenID, batchSize)
	if err != nil {
		return nil, err
	}

	fresh := assets[:0]
	for _, asset := range assets {
		if cur.Accepts(asset.ImportedAt, asset.ID) {
			fresh = append(fresh, asset)
		}
	}

	// The server promises import-time order; enforce it anyway so cursor
	// advancement stays safe if the promise breaks.
	sort.SliceStable(fresh, func(i, j int) bool {
		if !fresh[i].ImportedAt.Equal(fresh[j].ImportedAt) {
			return fresh[i].ImportedAt.Before(fresh[j].ImportedAt)
		}
		return fresh[i].ID < fresh[j].ID
	})

	if len(fresh) > batchSize {
		fresh = fresh[:batchSize]
	}

	if len(fresh) > 0 {
		m.logger.Debug("poll found new assets",
			logging.Args(
				logging.Int("count", len(fresh)),
				logging.Int64("first_id", fresh[0].ID),
				logging.Int64("last_id", fresh[len(fresh)-1].ID),
			)...)
	}
	return fresh, nil
}
