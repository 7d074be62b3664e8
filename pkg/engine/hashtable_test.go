package engine

import (
	"sync"
	"testing"

	"github.com/othex/othex/internal/random"
	"github.com/othex/othex/pkg/othello"
)

// bucketKey builds a key landing in the given bucket with the given tag.
func bucketKey(bucket, tag int) uint64 {
	return uint64(tag)<<32 | uint64(bucket)
}

func TestHashTableStoreProbe(t *testing.T) {
	var ht = NewHashTable(1)
	var key = bucketKey(5, 77)

	if _, ok := ht.probe(key); ok {
		t.Fatal("hit on an empty table")
	}
	ht.store(key, 10, 5, 3, -10, 10, 4, 20)
	var e, ok = ht.probe(key)
	if !ok {
		t.Fatal("miss after store")
	}
	if e.depth != 10 || e.selectivity != 5 || e.cost != 3 {
		t.Error(e)
	}
	if e.lower != 4 || e.upper != 4 {
		t.Error("exact score bounds", e.lower, e.upper)
	}
	if e.move[0] != 20 || e.move[1] != noMove8 {
		t.Error("moves", e.move)
	}
	if _, ok = ht.probe(bucketKey(5, 78)); ok {
		t.Error("hit on a different tag")
	}

	ht.Clear()
	if _, ok = ht.probe(key); ok {
		t.Error("hit after clear")
	}
}

func TestHashTableFailBounds(t *testing.T) {
	var ht = NewHashTable(1)

	var low = bucketKey(1, 1)
	ht.store(low, 8, 5, 0, -10, 10, -12, 7)
	if e, _ := ht.probe(low); e.lower != othello.ScoreMin || e.upper != -12 {
		t.Error("fail low", e.lower, e.upper)
	}

	var high = bucketKey(2, 1)
	ht.store(high, 8, 5, 0, -10, 10, 30, 7)
	if e, _ := ht.probe(high); e.lower != 30 || e.upper != othello.ScoreMax {
		t.Error("fail high", e.lower, e.upper)
	}
}

// Two null window results on the same position narrow the entry from
// both sides.
func TestHashTableMerge(t *testing.T) {
	var ht = NewHashTable(1)
	var key = bucketKey(3, 9)

	ht.store(key, 10, 5, 1, 0, 1, 5, 20)
	ht.store(key, 10, 5, 2, 8, 9, 7, 21)
	var e, ok = ht.probe(key)
	if !ok {
		t.Fatal("miss")
	}
	if e.lower != 5 || e.upper != 7 {
		t.Error("merged bounds", e.lower, e.upper)
	}
	if e.cost != 2 {
		t.Error("cost", e.cost)
	}
	if e.move[0] != 21 || e.move[1] != 20 {
		t.Error("moves", e.move)
	}

	if score, done := e.cutNWS(10, 5, 4); !done || score != 5 {
		t.Error("lower cut", score, done)
	}
	if score, done := e.cutNWS(10, 5, 7); !done || score != 7 {
		t.Error("upper cut", score, done)
	}
	if _, done := e.cutNWS(10, 5, 6); done {
		t.Error("cut inside the bounds")
	}
	if _, done := e.cutNWS(11, 5, 4); done {
		t.Error("cut below the required depth")
	}
	if _, done := e.cutNWS(10, 6, 4); done {
		t.Error("cut below the required selectivity")
	}
}

func TestHashTableReplace(t *testing.T) {
	var ht = NewHashTable(1)
	var key = bucketKey(4, 2)

	ht.store(key, 10, 5, 1, -64, 64, 3, 20)
	// deeper search overwrites
	ht.store(key, 12, 5, 1, -64, 64, 6, 21)
	var e, _ = ht.probe(key)
	if e.depth != 12 || e.lower != 6 || e.upper != 6 {
		t.Error("deeper store", e)
	}
	// shallower search only refreshes the moves
	ht.store(key, 9, 5, 1, -64, 64, -1, 22)
	e, _ = ht.probe(key)
	if e.depth != 12 || e.lower != 6 || e.upper != 6 {
		t.Error("shallow store changed the bounds", e)
	}
	if e.move[0] != 22 || e.move[1] != 21 {
		t.Error("moves", e.move)
	}
	// same depth, lower selectivity never overwrites
	ht.store(key, 14, 4, 1, -64, 64, 0, 23)
	e, _ = ht.probe(key)
	if e.depth != 12 || e.selectivity != 5 {
		t.Error("selective store replaced an exact one", e)
	}
	// a NOMOVE result keeps the hints
	ht.store(key, 12, 5, 1, -64, 64, 6, othello.NoMove)
	e, _ = ht.probe(key)
	if e.move[0] != 23 || e.move[1] != 22 {
		t.Error("moves after nomove", e.move)
	}
}

func TestHashTableVictim(t *testing.T) {
	var ht = NewHashTable(1)

	// the shallowest entry of a full bucket goes first
	for i, depth := range []int{10, 12, 14, 16} {
		ht.store(bucketKey(9, i+1), depth, 5, 4, 0, 1, 1, 3)
	}
	ht.store(bucketKey(9, 5), 8, 5, 0, 0, 1, 1, 3)
	if _, ok := ht.probe(bucketKey(9, 1)); ok {
		t.Error("shallowest entry survived")
	}
	for _, tag := range []int{2, 3, 4, 5} {
		if _, ok := ht.probe(bucketKey(9, tag)); !ok {
			t.Error("evicted tag", tag)
		}
	}

	// equal depths fall back to the cheapest entry
	for i, cost := range []int{3, 1, 2, 9} {
		ht.store(bucketKey(10, i+1), 10, 5, cost, 0, 1, 1, 3)
	}
	ht.store(bucketKey(10, 5), 10, 5, 0, 0, 1, 1, 3)
	if _, ok := ht.probe(bucketKey(10, 2)); ok {
		t.Error("cheapest entry survived")
	}
	for _, tag := range []int{1, 3, 4, 5} {
		if _, ok := ht.probe(bucketKey(10, tag)); !ok {
			t.Error("evicted tag", tag)
		}
	}
}

// Hammer a small table from several goroutines. Every key always
// stores the same entry, so any hit must read it back intact.
func TestHashTableConcurrent(t *testing.T) {
	var ht = NewHashTable(1)
	var entryFor = func(bucket, tag int) (depth, score, move int) {
		depth = 3 + (bucket^tag)%20
		score = (bucket+tag)%100 - 50
		move = tag % 60
		return
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			var rng = random.New(seed)
			for i := 0; i < 20000; i++ {
				var bucket, tag = rng.Intn(64), rng.Intn(64)
				var key = bucketKey(bucket, tag)
				var depth, score, move = entryFor(bucket, tag)
				if i%3 == 0 {
					ht.store(key, depth, 5, 1, othello.ScoreMin, othello.ScoreMax, score, move)
					continue
				}
				if e, ok := ht.probe(key); ok {
					if int(e.depth) != depth || int(e.lower) != score ||
						int(e.upper) != score || int(e.move[0]) != move {
						t.Error(bucket, tag, e)
						return
					}
				}
			}
		}(61 + uint64(g))
	}
	wg.Wait()
}

func TestCostOf(t *testing.T) {
	var tests = []struct {
		nodes int64
		want  int
	}{
		{-5, 0},
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 1},
		{4, 2},
		{1023, 9},
		{1024, 10},
	}
	for i, test := range tests {
		if got := costOf(test.nodes); got != test.want {
			t.Error(i, test, got)
		}
	}
}
