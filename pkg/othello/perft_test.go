package othello

import "testing"

// https://www.aartbik.com/strategy.php
func TestPerft(t *testing.T) {
	var tests = []struct {
		depth int
		nodes uint64
	}{
		{1, 4},
		{2, 12},
		{3, 56},
		{4, 244},
		{5, 1396},
		{6, 8200},
		{7, 55092},
		{8, 390216},
		{9, 3005288},
	}
	var b = NewBoard()
	for _, test := range tests {
		if got := Perft(b.Player, b.Opponent, test.depth); got != test.nodes {
			t.Error(test.depth, got, test.nodes)
		}
	}
}

func TestPerftSymmetry(t *testing.T) {
	var b = NewBoard()
	var m, _ = b.MakeMove(SquareD3)
	b.Update(&m)
	var want = Perft(b.Player, b.Opponent, 5)
	for s := 1; s < 8; s++ {
		var sym = b.Symmetry(s)
		if got := Perft(sym.Player, sym.Opponent, 5); got != want {
			t.Error(s, got, want)
		}
	}
}

func BenchmarkPerft(b *testing.B) {
	var board = NewBoard()
	for n := 0; n < b.N; n++ {
		Perft(board.Player, board.Opponent, 6)
	}
}
