// Package random builds deterministic generators on top of frand, so
// that table initialization and tests are reproducible from a seed.
package random

import (
	"encoding/binary"

	"lukechampine.com/frand"
)

// New returns a generator whose stream is fully determined by seed.
func New(seed uint64) *frand.RNG {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:], seed)
	binary.LittleEndian.PutUint64(key[8:], seed*0x9E3779B97F4A7C15)
	binary.LittleEndian.PutUint64(key[16:], seed^0xC2B2AE3D27D4EB4F)
	binary.LittleEndian.PutUint64(key[24:], (seed<<32)|(seed>>32))
	return frand.NewCustom(key[:], 1024, 12)
}

// Uint64 draws a uniform 64 bit value from r.
func Uint64(r *frand.RNG) uint64 {
	var b [8]byte
	r.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}
