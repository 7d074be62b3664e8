package eval

import (
	"testing"

	"lukechampine.com/frand"

	"github.com/othex/othex/internal/random"
	"github.com/othex/othex/pkg/othello"
)

func TestPatternLayout(t *testing.T) {
	var offsets = []int32{
		0, 19683, 78732, 137781, 196830, 203391,
		209952, 216513, 223074, 225261, 225990, 226233, 226314,
	}
	var counts = []int{4, 4, 4, 4, 4, 4, 4, 2, 4, 4, 4, 4, 1}
	var f = 0
	for shape := range offsets {
		for v := 0; v < counts[shape]; v++ {
			if features[f].offset != offsets[shape] {
				t.Error(f, features[f].offset, offsets[shape])
			}
			f++
		}
	}
	if f != NFeatures {
		t.Error(f)
	}
	for sq := 0; sq < 64; sq++ {
		if len(x2f[sq]) == 0 {
			t.Error("square belongs to no pattern", othello.SquareName(sq))
		}
	}
}

func TestSwapTables(t *testing.T) {
	for size, table := range swap01 {
		if table == nil {
			continue
		}
		for v := range table {
			if int(table[table[v]]) != v {
				t.Fatal("swap not an involution", size, v)
			}
		}
		if size > 0 {
			// all zero digits become all ones, all empties stay put
			var allOnes = (pow3[size] - 1) / 2
			if table[0] != allOnes {
				t.Fatal(size, table[0], allOnes)
			}
			var allTwos = pow3[size] - 1
			if table[allTwos] != allTwos {
				t.Fatal("empties moved", size)
			}
		}
	}
}

func playRandomGame(rng *frand.RNG, visit func(b *othello.Board, e *Eval)) {
	var b = othello.NewBoard()
	var e Eval
	e.Set(&b)
	type step struct {
		move othello.Move
		pass bool
	}
	var history []step
	for {
		var moves = b.Moves()
		if moves == 0 {
			if !othello.CanMove(b.Opponent, b.Player) {
				break
			}
			b.Pass()
			e.Pass()
			history = append(history, step{pass: true})
			visit(&b, &e)
			continue
		}
		var k = rng.Intn(othello.PopCount(moves))
		for ; k > 0; k-- {
			moves &= moves - 1
		}
		var m, _ = b.MakeMove(othello.FirstOne(moves))
		b.Update(&m)
		e.Update(m.X, m.Flipped)
		history = append(history, step{move: m})
		visit(&b, &e)
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].pass {
			b.Pass()
			e.Pass()
		} else {
			var m = history[i].move
			b.Restore(&m)
			e.Restore(m.X, m.Flipped)
		}
		visit(&b, &e)
	}
	if b != othello.NewBoard() {
		panic("game unwind did not reach the start")
	}
}

func TestEvalIncremental(t *testing.T) {
	var rng = random.New(53)
	for game := 0; game < 50; game++ {
		playRandomGame(rng, func(b *othello.Board, e *Eval) {
			var fresh Eval
			fresh.Set(b)
			if fresh != *e {
				t.Fatal("incremental state diverged", b)
			}
		})
	}
}

func TestScore(t *testing.T) {
	var w = make([]int16, WeightsPerPly)
	var constant = features[NFeatures-1].offset
	var b = othello.NewBoard()
	var e Eval
	e.Set(&b)

	var tests = []struct {
		weight int16
		want   int
	}{
		{0, 0},
		{63, 0},
		{64, 1},
		{-63, 0},
		{-64, -1},
		{129, 1},
		{193, 2},
		{-200, -2},
		{32000, othello.ScoreMax - 1},
		{-32000, othello.ScoreMin + 1},
	}
	for _, test := range tests {
		w[constant] = test.weight
		if got := e.Score(w); got != test.want {
			t.Error(test.weight, got, test.want)
		}
	}
}

func BenchmarkEvalUpdate(b *testing.B) {
	var board = othello.NewBoard()
	var m, _ = board.MakeMove(othello.SquareD3)
	var e Eval
	e.Set(&board)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		e.Update(m.X, m.Flipped)
		e.Restore(m.X, m.Flipped)
	}
}

func BenchmarkScore(b *testing.B) {
	var w = make([]int16, WeightsPerPly)
	var rng = random.New(59)
	for i := range w {
		w[i] = int16(rng.Intn(256)) - 128
	}
	var board = othello.NewBoard()
	var e Eval
	e.Set(&board)
	b.ResetTimer()
	var sink int
	for n := 0; n < b.N; n++ {
		sink += e.Score(w)
	}
	_ = sink
}
