package othello

import (
	"testing"

	"github.com/othex/othex/internal/random"
)

var flipDirections = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// slowFlip walks the eight rays square by square.
func slowFlip(player, opponent uint64, sq int) uint64 {
	var flipped uint64
	for _, d := range flipDirections {
		var f uint64
		var file, rank = File(sq) + d[0], Rank(sq) + d[1]
		for file >= 0 && file < 8 && rank >= 0 && rank < 8 {
			var bit = SquareMask[MakeSquare(file, rank)]
			if opponent&bit != 0 {
				f |= bit
				file += d[0]
				rank += d[1]
				continue
			}
			if player&bit != 0 {
				flipped |= f
			}
			break
		}
	}
	return flipped
}

func TestFlip(t *testing.T) {
	var rng = random.New(17)
	for i := 0; i < 500; i++ {
		var b = randomBoard(rng, rng.Intn(58))
		var moves = b.Moves()
		for e := b.Empties(); e != 0; e &= e - 1 {
			var sq = FirstOne(e)
			var got = Flip(b.Player, b.Opponent, sq)
			var want = slowFlip(b.Player, b.Opponent, sq)
			if got != want {
				t.Fatalf("flip(%v, %s) = %x, want %x", b, SquareName(sq), got, want)
			}
			if (got != 0) != (moves&SquareMask[sq] != 0) {
				t.Fatalf("flip and move mask disagree on %s in %v", SquareName(sq), b)
			}
		}
	}
}

func TestMovesOnSymmetricBoards(t *testing.T) {
	var rng = random.New(19)
	for i := 0; i < 200; i++ {
		var b = randomBoard(rng, rng.Intn(60))
		for s := 0; s < 8; s++ {
			var sym = b.Symmetry(s)
			if GetWeightedMobility(sym.Player, sym.Opponent) != GetWeightedMobility(b.Player, b.Opponent) {
				t.Error("weighted mobility not symmetry invariant", s, b)
			}
			if GetPotentialMobility(sym.Player, sym.Opponent) != GetPotentialMobility(b.Player, b.Opponent) {
				t.Error("potential mobility not symmetry invariant", s, b)
			}
		}
	}
}

func TestNeighbours(t *testing.T) {
	var tests = []struct {
		sq    int
		count int
	}{
		{SquareA1, 3},
		{SquareH8, 3},
		{SquareA4, 5},
		{SquareD1, 5},
		{SquareD4, 8},
	}
	for _, test := range tests {
		if got := PopCount(Neighbours(test.sq)); got != test.count {
			t.Error(SquareName(test.sq), got, test.count)
		}
		if Neighbours(test.sq)&SquareMask[test.sq] != 0 {
			t.Error("square neighbours itself", SquareName(test.sq))
		}
	}
}

func BenchmarkGetMoves(b *testing.B) {
	var rng = random.New(23)
	var boards [64]Board
	for i := range boards {
		boards[i] = randomBoard(rng, 20+rng.Intn(30))
	}
	b.ResetTimer()
	var sink uint64
	for n := 0; n < b.N; n++ {
		var board = boards[n&63]
		sink ^= GetMoves(board.Player, board.Opponent)
	}
	_ = sink
}

func BenchmarkFlip(b *testing.B) {
	var rng = random.New(29)
	var boards [64]Board
	var squares [64]int
	for i := range boards {
		boards[i] = randomBoard(rng, 20+rng.Intn(30))
		var moves = boards[i].Moves()
		if moves == 0 {
			squares[i] = SquareA1
			continue
		}
		squares[i] = FirstOne(moves)
	}
	b.ResetTimer()
	var sink uint64
	for n := 0; n < b.N; n++ {
		var board = boards[n&63]
		sink ^= Flip(board.Player, board.Opponent, squares[n&63])
	}
	_ = sink
}
