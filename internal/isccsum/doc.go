// Package isccsum computes ISCC-SUM codes from streamed bytes.
//
// The Processor consumes arbitrary-sized updates and produces a composite
// code built from two digests: a Data-Code (minhash over content-defined
// chunks, robust to insertions and shifts) and an Instance-Code (BLAKE3 over
// the exact byte stream). The result depends only on the byte content, never
// on how the stream was sliced into updates.
//
// Codes are rendered as self-describing strings, e.g.
// "ISCC:KAD2XGH4AUDGVPKQFHYMQX3EMHULA".
package isccsum
