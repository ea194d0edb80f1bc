package journal

import (
	"context"
	"fmt"
	"time"
)

// RecordOutcome inserts the terminal result for an asset. Re-recording the
// same asset/namespace pair is a no-op; the first outcome wins.
func (s *Store) RecordOutcome(ctx context.Context, outcome Outcome) error {
	if outcome.AssetID <= 0 {
		return fmt.Errorf("outcome requires a positive asset id, got %d", outcome.AssetID)
	}
	if outcome.Namespace == "" {
		return fmt.Errorf("outcome for asset %d requires a namespace", outcome.AssetID)
	}

	recordedAt := outcome.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	return s.execWithRetry(ensureContext(ctx),
		`INSERT OR IGNORE INTO outcomes
             (asset_id, namespace, outcome, code, source_file, detail, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		outcome.AssetID,
		outcome.Namespace,
		string(outcome.Kind),
		outcome.Code,
		outcome.SourceFile,
		outcome.Detail,
		recordedAt.UTC().Format(time.RFC3339Nano),
	)
}

// HasOutcome reports whether the asset already has a recorded outcome under
// namespace. This is the dedup fast path; the repository-side annotation
// check remains authoritative.
func (s *Store) HasOutcome(ctx context.Context, assetID int64, namespace string) (bool, error) {
	ctx = ensureContext(ctx)
	var count int
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM outcomes WHERE asset_id = ? AND namespace = ?",
		assetID, namespace,
	)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check outcome: %w", err)
	}
	return count > 0, nil
}

// RecentOutcomes returns up to limit outcomes, newest first.
func (s *Store) RecentOutcomes(ctx context.Context, limit int) ([]Outcome, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT asset_id, namespace, outcome, code, source_file, detail, recorded_at
         FROM outcomes ORDER BY recorded_at DESC, asset_id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var outcome Outcome
		var kind, recordedAt string
		if err := rows.Scan(&outcome.AssetID, &outcome.Namespace, &kind, &outcome.Code, &outcome.SourceFile, &outcome.Detail, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcome.Kind = OutcomeKind(kind)
		if parsed, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			outcome.RecordedAt = parsed
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, rows.Err()
}
