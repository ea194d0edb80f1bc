package journal

import "time"

// Cursor marks the newest asset known to be fully handled. The zero value
// means "never polled"; a fresh run starts from the beginning of the
// repository's import timeline.
type Cursor struct {
	LastSeenAt time.Time
	LastSeenID int64
}

// IsZero reports whether the cursor has never advanced.
func (c Cursor) IsZero() bool {
	return c.LastSeenAt.IsZero() && c.LastSeenID == 0
}

// Accepts reports whether an asset imported at t with the given id lies
// strictly beyond the cursor. Ties on the timestamp are broken by id so the
// boundary asset is never re-emitted.
func (c Cursor) Accepts(t time.Time, id int64) bool {
	if t.After(c.LastSeenAt) {
		return true
	}
	return t.Equal(c.LastSeenAt) && id > c.LastSeenID
}

// Behind reports whether c precedes other in timeline order.
func (c Cursor) Behind(other Cursor) bool {
	if c.LastSeenAt.Before(other.LastSeenAt) {
		return true
	}
	return c.LastSeenAt.Equal(other.LastSeenAt) && c.LastSeenID < other.LastSeenID
}

// OutcomeKind describes how an asset left the pipeline.
type OutcomeKind string

const (
	OutcomeCommitted OutcomeKind = "committed"
	OutcomeSkipped   OutcomeKind = "skipped"
)

// Outcome is one ledger row: the terminal result for an asset in a namespace.
type Outcome struct {
	AssetID    int64
	Namespace  string
	Kind       OutcomeKind
	Code       string
	SourceFile string
	Detail     string
	RecordedAt time.Time
}
