package othello

import (
	"testing"

	"github.com/othex/othex/internal/random"
)

func TestCountLastFlip(t *testing.T) {
	var rng = random.New(43)
	for i := 0; i < 2000; i++ {
		var sq = rng.Intn(64)
		var player uint64
		for b := range [8]int{} {
			player |= uint64(rng.Intn(256)) << uint(8*b)
		}
		player &^= SquareMask[sq]
		var opponent = ^(player | SquareMask[sq])
		var want = 2 * PopCount(Flip(player, opponent, sq))
		if got := CountLastFlip(player, sq); got != want {
			t.Fatalf("last flip at %s on %x = %d, want %d", SquareName(sq), player, got, want)
		}
	}
}

func TestCountLastFlipByHand(t *testing.T) {
	var tests = []struct {
		player uint64
		sq     int
		want   int
	}{
		// no terminator anywhere, nothing flips
		{0, SquareA1, 0},
		// adjacent terminator closes a zero length run
		{SquareMask[SquareB1], SquareA1, 0},
		// b1 flips between a1 and c1
		{SquareMask[SquareC1], SquareA1, 2},
		// two directions at once: rank run of 2 and diagonal run of 1
		{SquareMask[SquareD1] | SquareMask[SquareC3], SquareA1, 6},
		// file run from h8 down to h1
		{SquareMask[SquareH8], SquareH1, 12},
	}
	for i, test := range tests {
		if got := CountLastFlip(test.player, test.sq); got != test.want {
			t.Error(i, got, test.want)
		}
	}
}

func BenchmarkCountLastFlip(b *testing.B) {
	var rng = random.New(47)
	var players [64]uint64
	var squares [64]int
	for i := range players {
		squares[i] = rng.Intn(64)
		var p uint64
		for k := range [8]int{} {
			p |= uint64(rng.Intn(256)) << uint(8*k)
		}
		players[i] = p &^ SquareMask[squares[i]]
	}
	b.ResetTimer()
	var sink int
	for n := 0; n < b.N; n++ {
		sink += CountLastFlip(players[n&63], squares[n&63])
	}
	_ = sink
}
