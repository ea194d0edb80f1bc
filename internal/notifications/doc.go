// Package notifications delivers best-effort webhook events for committed
// fingerprints. Failures are reported to the caller for logging only; the
// noop implementation used when no webhook is configured makes the side
// channel structurally incapable of affecting pipeline state.
package notifications
