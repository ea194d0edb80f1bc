// Package omero talks to an OMERO server over its JSON web API.
//
// The Client interface covers exactly the operations the fingerprint pipeline
// needs: session handshake, querying images imported after a cursor position,
// streaming original file bytes, and reading/writing map annotations under a
// namespace. HTTPClient is the production implementation; tests substitute an
// in-memory fake from the testsupport package.
//
// Errors are classified into ErrAuth (bad credentials) and ErrUnavailable
// (network faults, server errors). Callers never retry here; reconnect policy
// belongs to the orchestrator.
package omero
