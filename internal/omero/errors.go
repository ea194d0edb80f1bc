package omero

import "errors"

// ErrUnavailable marks connect, query, or write failures caused by the server
// or the network. The orchestrator reacts by dropping the session and
// reconnecting with backoff.
var ErrUnavailable = errors.New("omero server unavailable")

// ErrAuth marks a rejected handshake. It is still recoverable (the server may
// not have finished provisioning the account), so it drives the same backoff
// path as ErrUnavailable.
var ErrAuth = errors.New("omero authentication failed")

// ErrNotConnected is returned when an operation runs without a session.
var ErrNotConnected = errors.New("omero client not connected")

// ErrNotFound marks a missing object (typically an original file that was
// deleted after import). Not a connection fault; the processor maps it to a
// per-asset skip.
var ErrNotFound = errors.New("omero object not found")

// IsUnavailable reports whether err should be treated as a connection fault.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrAuth) || errors.Is(err, ErrNotConnected)
}
