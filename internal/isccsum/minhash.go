package isccsum

import "math"

// permutations is the number of universal-hash permutations in the sketch.
// One bit is kept per permutation, giving a 32-byte digest before truncation.
const permutations = 256

// splitmix64 drives deterministic constant generation for the gear table and
// the permutation coefficients.
func splitmix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

var gearTable = func() [256]uint64 {
	var table [256]uint64
	state := uint64(1)
	for i := range table {
		table[i] = splitmix64(&state)
	}
	return table
}()

var permA, permB = func() ([permutations]uint64, [permutations]uint64) {
	var a, b [permutations]uint64
	state := uint64(2)
	for i := 0; i < permutations; i++ {
		a[i] = splitmix64(&state) | 1 // multipliers must be odd
		b[i] = splitmix64(&state)
	}
	return a, b
}()

// minhash keeps the minimum of each permuted feature value.
type minhash struct {
	minima [permutations]uint64
}

func newMinhash() *minhash {
	m := &minhash{}
	for i := range m.minima {
		m.minima[i] = math.MaxUint64
	}
	return m
}

func (m *minhash) add(feature uint64) {
	for i := 0; i < permutations; i++ {
		permuted := permA[i]*feature + permB[i]
		if permuted < m.minima[i] {
			m.minima[i] = permuted
		}
	}
}

// digest packs the low bit of each minimum into a 32-byte digest.
func (m *minhash) digest() []byte {
	out := make([]byte, permutations/8)
	for i, minimum := range m.minima {
		if minimum&1 == 1 {
			out[i/8] |= 1 << (7 - i%8)
		}
	}
	return out
}
