// Package orchestrator drives the fingerprint pipeline.
//
// A single goroutine walks the connection state machine: connect with
// exponential backoff, poll for assets beyond the cursor, process each batch
// in import order, and fall back to reconnecting on any repository fault.
// The cursor advances only after an asset reaches a terminal outcome, so a
// crash at any point replays at most the in-flight asset, and the annotation
// write is idempotent through the dedup check.
package orchestrator
