package omero

import (
	"sort"
	"time"
)

// AssetRef is an immutable snapshot of an imported image returned by a query.
// FileIDs lists the original file locators in import order; fingerprints are
// computed over their concatenated bytes.
type AssetRef struct {
	ID         int64
	Name       string
	ImportedAt time.Time
	FileIDs    []int64
}

// Record is the fingerprint annotation persisted against an asset. The five
// fixed fields form the compatibility surface; Extra carries forward-compatible
// additional keys (unit codes and the like) without touching the fixed layout.
type Record struct {
	Code       string
	Version    string
	SourceFile string
	Timestamp  time.Time
	Processor  string
	Extra      map[string]string
}

// Pairs flattens the record into ordered key/value pairs for the map
// annotation payload. Fixed keys come first; extras follow in sorted order so
// the wire form is deterministic.
func (r Record) Pairs() [][2]string {
	pairs := [][2]string{
		{"code", r.Code},
		{"version", r.Version},
		{"source_file", r.SourceFile},
		{"timestamp", r.Timestamp.UTC().Format(time.RFC3339)},
		{"processor", r.Processor},
	}
	keys := make([]string, 0, len(r.Extra))
	for key := range r.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		pairs = append(pairs, [2]string{key, r.Extra[key]})
	}
	return pairs
}
