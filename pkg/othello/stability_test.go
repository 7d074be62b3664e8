package othello

import (
	"testing"

	"github.com/othex/othex/internal/random"
)

func TestStableDiscsSimple(t *testing.T) {
	var tests = []struct {
		player   uint64
		opponent uint64
		want     uint64
	}{
		// a full edge can never flip
		{Rank1Mask, 0, Rank1Mask},
		{FileAMask, 0, FileAMask},
		// a lone corner is stable, a lone interior disc is not
		{SquareMask[SquareA1], 0, SquareMask[SquareA1]},
		{SquareMask[SquareD4], 0, 0},
		// corner plus both edge neighbours stay put
		{SquareMask[SquareH8] | SquareMask[SquareG8] | SquareMask[SquareH7], 0,
			SquareMask[SquareH8] | SquareMask[SquareG8] | SquareMask[SquareH7]},
	}
	for i, test := range tests {
		if got := StableDiscs(test.player, test.opponent); got != test.want {
			t.Errorf("%d: stable = %x, want %x", i, got, test.want)
		}
	}
}

func TestStableDiscsNeverFlip(t *testing.T) {
	var rng = random.New(31)
	for i := 0; i < 300; i++ {
		var b = randomBoard(rng, rng.Intn(60))
		var stable = StableDiscs(b.Player, b.Opponent)
		if stable&^b.Player != 0 {
			t.Fatal("stable discs outside the player mask", b)
		}
		for moves := b.Moves(); moves != 0; moves &= moves - 1 {
			var sq = FirstOne(moves)
			if Flip(b.Player, b.Opponent, sq)&StableDiscs(b.Opponent, b.Player) != 0 {
				t.Fatal("player flipped a stable opponent disc", b, SquareName(sq))
			}
		}
		for moves := GetMoves(b.Opponent, b.Player); moves != 0; moves &= moves - 1 {
			var sq = FirstOne(moves)
			if Flip(b.Opponent, b.Player, sq)&stable != 0 {
				t.Fatal("opponent flipped a stable disc", b, SquareName(sq))
			}
		}
	}
}

func TestStabilitySymmetry(t *testing.T) {
	var rng = random.New(37)
	for i := 0; i < 200; i++ {
		var b = randomBoard(rng, rng.Intn(60))
		var want = GetStability(b.Player, b.Opponent)
		for s := 1; s < 8; s++ {
			var sym = b.Symmetry(s)
			if got := GetStability(sym.Player, sym.Opponent); got != want {
				t.Error("stability not symmetry invariant", s, got, want, b)
			}
		}
	}
}

func TestCornerStability(t *testing.T) {
	var tests = []struct {
		player uint64
		want   int
	}{
		{0, 0},
		{SquareMask[SquareD4], 0},
		{SquareMask[SquareA1], 1},
		{SquareMask[SquareA1] | SquareMask[SquareB1] | SquareMask[SquareA2], 3},
		{SquareMask[SquareB1] | SquareMask[SquareA2], 0},
		{CornerMask, 4},
	}
	for i, test := range tests {
		if got := CornerStability(test.player); got != test.want {
			t.Error(i, got, test.want)
		}
	}
}

func BenchmarkStability(b *testing.B) {
	var rng = random.New(41)
	var boards [64]Board
	for i := range boards {
		boards[i] = randomBoard(rng, 30+rng.Intn(25))
	}
	b.ResetTimer()
	var sink int
	for n := 0; n < b.N; n++ {
		var board = boards[n&63]
		sink += GetStability(board.Player, board.Opponent)
	}
	_ = sink
}
