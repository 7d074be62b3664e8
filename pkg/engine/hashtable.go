package engine

import (
	"math/bits"
	"sync/atomic"

	"github.com/othex/othex/pkg/othello"
)

const noMove8 = int8(othello.NoMove)

// hashEntry is one stored search result. The bounds hold for the
// recorded depth and selectivity; move[0] is the latest best move and
// move[1] the one it displaced.
type hashEntry struct {
	key32       uint32
	depth       uint8
	selectivity uint8
	cost        uint8
	lower       int8
	upper       int8
	move        [2]int8
}

// A zeroed entry has depth 0, which no search ever stores.
func (e *hashEntry) empty() bool {
	return e.depth == 0
}

func (e *hashEntry) promote(move int) {
	if move != othello.NoMove && int8(move) != e.move[0] {
		e.move[1] = e.move[0]
		e.move[0] = int8(move)
	}
}

// cutNWS reports whether the entry settles a null window (alpha,
// alpha+1) at the given depth and selectivity.
func (e *hashEntry) cutNWS(depth, selectivity, alpha int) (int, bool) {
	if int(e.depth) >= depth && int(e.selectivity) >= selectivity {
		if int(e.lower) > alpha {
			return int(e.lower), true
		}
		if int(e.upper) <= alpha {
			return int(e.upper), true
		}
	}
	return 0, false
}

type hashBucket struct {
	gate    atomic.Int32
	entries [4]hashEntry
}

// HashTable is a fixed size transposition table shared by all search
// workers. Each bucket is guarded by a compare and swap gate; a reader
// that finds the gate taken reports a miss and a writer drops its
// update, which is sound for a cache.
type HashTable struct {
	megabytes int
	buckets   []hashBucket
	mask      uint64
}

func roundPowerOfTwo(size int) int {
	var x = 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

func NewHashTable(megabytes int) *HashTable {
	if megabytes < 1 {
		megabytes = 1
	}
	var size = roundPowerOfTwo(1024 * 1024 * megabytes / 64)
	return &HashTable{
		megabytes: megabytes,
		buckets:   make([]hashBucket, size),
		mask:      uint64(size - 1),
	}
}

func (t *HashTable) Size() int {
	return t.megabytes
}

func (t *HashTable) Clear() {
	for i := range t.buckets {
		var b = &t.buckets[i]
		for !b.gate.CompareAndSwap(0, 1) {
		}
		b.entries = [4]hashEntry{}
		b.gate.Store(0)
	}
}

func (t *HashTable) probe(key uint64) (hashEntry, bool) {
	var b = &t.buckets[key&t.mask]
	var tag = uint32(key >> 32)
	if !b.gate.CompareAndSwap(0, 1) {
		return hashEntry{}, false
	}
	for i := range b.entries {
		if !b.entries[i].empty() && b.entries[i].key32 == tag {
			var e = b.entries[i]
			b.gate.Store(0)
			return e, true
		}
	}
	b.gate.Store(0)
	return hashEntry{}, false
}

// store records a fail soft result searched on the window (alpha,
// beta). An entry for the same position at the same depth and
// selectivity is merged, a stronger search overwrites, a weaker one
// only refreshes the move ordering hints.
func (t *HashTable) store(key uint64, depth, selectivity, cost, alpha, beta, score, move int) {
	var b = &t.buckets[key&t.mask]
	var tag = uint32(key >> 32)

	var lower, upper = int8(othello.ScoreMin), int8(othello.ScoreMax)
	if score > alpha {
		lower = int8(score)
	}
	if score < beta {
		upper = int8(score)
	}
	if cost > 255 {
		cost = 255
	}

	if !b.gate.CompareAndSwap(0, 1) {
		return
	}
	for i := range b.entries {
		var e = &b.entries[i]
		if e.empty() || e.key32 != tag {
			continue
		}
		if int(e.depth) == depth && int(e.selectivity) == selectivity {
			if lower > e.lower {
				e.lower = lower
			}
			if upper < e.upper {
				e.upper = upper
			}
			if uint8(cost) > e.cost {
				e.cost = uint8(cost)
			}
		} else if selectivity > int(e.selectivity) ||
			(selectivity == int(e.selectivity) && depth >= int(e.depth)) {
			e.depth = uint8(depth)
			e.selectivity = uint8(selectivity)
			e.cost = uint8(cost)
			e.lower = lower
			e.upper = upper
		}
		e.promote(move)
		b.gate.Store(0)
		return
	}

	var victim = &b.entries[0]
	for i := 1; i < len(b.entries); i++ {
		var e = &b.entries[i]
		if victim.empty() {
			break
		}
		if e.empty() ||
			e.depth < victim.depth ||
			(e.depth == victim.depth && e.cost < victim.cost) {
			victim = e
		}
	}
	*victim = hashEntry{
		key32:       tag,
		depth:       uint8(depth),
		selectivity: uint8(selectivity),
		cost:        uint8(cost),
		lower:       lower,
		upper:       upper,
		move:        [2]int8{int8(move), noMove8},
	}
	b.gate.Store(0)
}

// costOf compresses a node count into the replacement score stored
// with an entry.
func costOf(nodes int64) int {
	if nodes <= 0 {
		return 0
	}
	return bits.Len64(uint64(nodes)) - 1
}
