// Package dedup decides whether an asset was already fingerprinted.
//
// The check is two-tier: the local outcome journal answers cheaply for
// assets this instance has handled, and the repository's annotation store is
// the authority for everything else. The filter never writes; recording
// outcomes stays with the orchestrator so the check is safe to repeat.
package dedup

import (
	"context"
	"log/slog"

	"isccd/internal/journal"
	"isccd/internal/logging"
	"isccd/internal/omero"
)

// Filter answers "already processed?" for asset/namespace pairs.
type Filter struct {
	client    omero.Client
	store     *journal.Store
	namespace string
	logger    *slog.Logger
}

// New constructs a filter for the given namespace.
func New(client omero.Client, store *journal.Store, namespace string, logger *slog.Logger) *Filter {
	return &Filter{
		client:    client,
		store:     store,
		namespace: namespace,
		logger:    logging.NewComponentLogger(logger, "dedup"),
	}
}

// IsProcessed reports whether asset already carries a fingerprint record in
// the filter's namespace. Repository errors surface to the caller for
// connection-fault handling; journal errors are logged and ignored since the
// repository check still answers correctly without the fast path.
func (f *Filter) IsProcessed(ctx context.Context, asset omero.AssetRef) (bool, error) {
	if f.store != nil {
		known, err := f.store.HasOutcome(ctx, asset.ID, f.namespace)
		if err != nil {
			f.logger.Warn("journal lookup failed, falling back to repository check",
				logging.Args(logging.Int64("asset_id", asset.ID), logging.Error(err))...)
		} else if known {
			return true, nil
		}
	}

	exists, err := f.client.RecordExists(ctx, asset.ID, f.namespace)
	if err != nil {
		return false, err
	}
	return exists, nil
}
