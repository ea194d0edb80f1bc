package isccsum

import (
	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// RecordVersion is the algorithm version written into fingerprint records.
// Bump when chunking parameters, permutation seeds, or header layout change;
// records are namespaced, so old and new codes coexist without collision.
const RecordVersion = "1.0"

// Content-defined chunking parameters. The boundary mask yields ~4 KiB
// average chunks; min/max bound pathological inputs.
const (
	chunkMin  = 256
	chunkMax  = 32 * 1024
	chunkMask = (1 << 12) - 1
)

// Result holds the finalized codes for one byte stream.
type Result struct {
	ISCC     string
	DataCode string
	InstCode string
	Filesize int64
}

// Processor is a streaming ISCC-SUM hasher. The zero value is not usable;
// construct with New.
type Processor struct {
	instance *blake3.Hasher
	sketch   *minhash
	size     int64

	// rolling CDC state
	gear uint64
	buf  []byte
}

// New returns a Processor ready for updates.
func New() *Processor {
	return &Processor{
		instance: blake3.New(),
		sketch:   newMinhash(),
		buf:      make([]byte, 0, chunkMax),
	}
}

// Update feeds the next run of bytes. Call any number of times with any
// sizes; the final result is identical for identical concatenated input.
func (p *Processor) Update(data []byte) {
	p.instance.Write(data)
	p.size += int64(len(data))

	for _, b := range data {
		p.buf = append(p.buf, b)
		p.gear = (p.gear << 1) + gearTable[b]
		if len(p.buf) >= chunkMin && (p.gear&chunkMask == 0 || len(p.buf) >= chunkMax) {
			p.closeChunk()
		}
	}
}

func (p *Processor) closeChunk() {
	p.sketch.add(xxhash.Sum64(p.buf))
	p.buf = p.buf[:0]
	p.gear = 0
}

// Result finalizes the stream and returns the codes. wide selects 128-bit
// bodies per component instead of 64; units controls whether the standalone
// Data- and Instance-Codes are populated alongside the composite.
//
// Result may be called once; the processor is exhausted afterwards.
func (p *Processor) Result(wide, units bool) Result {
	if len(p.buf) > 0 || p.size == 0 {
		p.closeChunk()
	}

	bodyLen := 8
	if wide {
		bodyLen = 16
	}

	dataDigest := p.sketch.digest()[:bodyLen]
	instDigest := make([]byte, bodyLen)
	digest := p.instance.Digest()
	digest.Read(instDigest)

	composite := make([]byte, 0, 2*bodyLen)
	composite = append(composite, dataDigest...)
	composite = append(composite, instDigest...)

	result := Result{
		ISCC:     encodeCode(headerSum(wide), composite),
		Filesize: p.size,
	}
	if units {
		result.DataCode = encodeCode(headerData(wide), dataDigest)
		result.InstCode = encodeCode(headerInstance(wide), instDigest)
	}
	return result
}
