package othello

import "github.com/othex/othex/internal/random"

const hashSeed = 0x5DEECE66D

var hashRank [16][256]uint64

// Hash folds the sixteen bytes of the position through per byte tables.
// It is recomputed from scratch; positions equal as bitboards always
// hash equal, whatever move sequence produced them.
func (b *Board) Hash() uint64 {
	var h uint64
	var p, o = b.Player, b.Opponent
	for i := 0; i < 8; i++ {
		h ^= hashRank[i][uint8(p)]
		h ^= hashRank[i+8][uint8(o)]
		p >>= 8
		o >>= 8
	}
	return h
}

func init() {
	var rng = random.New(hashSeed)
	for i := range hashRank {
		for j := range hashRank[i] {
			hashRank[i][j] = random.Uint64(rng)
		}
	}
}
