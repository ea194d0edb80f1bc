// Package journal persists orchestrator state in SQLite.
//
// Two tables: a single-row cursor checkpoint (the bookmark into the
// repository's import timeline) and an outcome ledger recording, per asset
// and namespace, whether a fingerprint was committed or the asset was
// skipped. The ledger backs the dedup fast path and the CLI history view.
//
// The cursor only moves forward; AdvanceCursor silently ignores stale
// values so a replayed batch can never rewind the checkpoint. Outcomes are
// insert-once: the first recorded outcome for an asset/namespace pair wins,
// mirroring the immutability of the repository-side records.
package journal
