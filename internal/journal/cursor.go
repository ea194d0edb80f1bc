package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Cursor returns the persisted checkpoint, or the zero cursor when no poll
// has ever committed.
func (s *Store) Cursor(ctx context.Context) (Cursor, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT last_seen_at, last_seen_id FROM cursor WHERE id = 1")

	var lastSeenAt string
	var lastSeenID int64
	if err := row.Scan(&lastSeenAt, &lastSeenID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cursor{}, nil
		}
		return Cursor{}, fmt.Errorf("read cursor: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339Nano, lastSeenAt)
	if err != nil {
		return Cursor{}, fmt.Errorf("parse cursor timestamp %q: %w", lastSeenAt, err)
	}
	return Cursor{LastSeenAt: parsed, LastSeenID: lastSeenID}, nil
}

// AdvanceCursor persists cur if it lies beyond the stored checkpoint. Stale
// or equal cursors are ignored, so the checkpoint is monotone regardless of
// caller mistakes.
func (s *Store) AdvanceCursor(ctx context.Context, cur Cursor) error {
	ctx = ensureContext(ctx)
	current, err := s.Cursor(ctx)
	if err != nil {
		return err
	}
	if !current.Behind(cur) {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithRetry(ctx,
		`INSERT INTO cursor (id, last_seen_at, last_seen_id, updated_at)
         VALUES (1, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             last_seen_at = excluded.last_seen_at,
             last_seen_id = excluded.last_seen_id,
             updated_at = excluded.updated_at`,
		cur.LastSeenAt.UTC().Format(time.RFC3339Nano),
		cur.LastSeenID,
		now,
	)
}
