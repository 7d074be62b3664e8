package othello

import (
	"testing"

	"lukechampine.com/frand"

	"github.com/othex/othex/internal/random"
)

// randomBoard plays plies random legal moves from the initial position.
// Games that end early are returned as they stand.
func randomBoard(rng *frand.RNG, plies int) Board {
	var b = NewBoard()
	for i := 0; i < plies; i++ {
		var moves = b.Moves()
		if moves == 0 {
			if !CanMove(b.Opponent, b.Player) {
				return b
			}
			b.Pass()
			moves = b.Moves()
		}
		var k = rng.Intn(PopCount(moves))
		for ; k > 0; k-- {
			moves &= moves - 1
		}
		var m, ok = b.MakeMove(FirstOne(moves))
		if !ok {
			panic("generated an illegal move")
		}
		b.Update(&m)
	}
	return b
}

func TestInitialPosition(t *testing.T) {
	var b = NewBoard()
	if PopCount(b.Player) != 2 || PopCount(b.Opponent) != 2 {
		t.Error(b)
	}
	var want = SquareMask[SquareD3] | SquareMask[SquareC4] |
		SquareMask[SquareF5] | SquareMask[SquareE6]
	if got := b.Moves(); got != want {
		t.Errorf("moves = %x, want %x", got, want)
	}
}

func TestParseBoard(t *testing.T) {
	var s = "---------------------------OX------XO--------------------------- b"
	var b, blackToMove, err = ParseBoard(s)
	if err != nil {
		t.Fatal(err)
	}
	if !blackToMove || b != NewBoard() {
		t.Error(b, blackToMove)
	}
	if got := b.Format(blackToMove); got != "---------------------------OX------XO--------------------------- X" {
		t.Errorf("format = %q", got)
	}

	var tests = []string{
		"short",
		"---------------------------OX------XO---------------------------",
		"---------------------------OX------XO--------------------------- ?",
		"------------------------?--OX------XO--------------------------- b",
	}
	for i, bad := range tests {
		if _, _, err := ParseBoard(bad); err == nil {
			t.Error(i, bad)
		}
	}
}

func TestParseBoardVariants(t *testing.T) {
	var forms = []string{
		"---------------------------OX------XO--------------------------- b",
		"...........................wb......bw...........................  x",
		"---------------------------OX------XO---\n------------------------ *",
	}
	for _, s := range forms {
		var b, blackToMove, err = ParseBoard(s)
		if err != nil {
			t.Fatal(s, err)
		}
		if !blackToMove || b != NewBoard() {
			t.Error(s, b)
		}
	}
}

func TestFEN(t *testing.T) {
	var rng = random.New(7)
	for game := 0; game < 50; game++ {
		var b = randomBoard(rng, rng.Intn(60))
		for _, blackToMove := range []bool{true, false} {
			var fen = b.FEN(blackToMove)
			var got, gotBlack, err = ParseFEN(fen)
			if err != nil {
				t.Fatal(fen, err)
			}
			if got != b || gotBlack != blackToMove {
				t.Error(fen, got, b)
			}
		}
	}
	if fen := NewBoard().FEN(true); fen != "8/8/8/3pP3/3Pp3/8/8/8 b" {
		t.Errorf("fen = %q", fen)
	}
}

func TestUpdateRestore(t *testing.T) {
	var rng = random.New(3)
	for game := 0; game < 100; game++ {
		var b = NewBoard()
		for {
			var moves = b.Moves()
			if moves == 0 {
				if !CanMove(b.Opponent, b.Player) {
					break
				}
				var before = b
				b.Pass()
				b.Pass()
				if b != before {
					t.Fatal("pass is not an involution")
				}
				b.Pass()
				continue
			}
			var k = rng.Intn(PopCount(moves))
			for ; k > 0; k-- {
				moves &= moves - 1
			}
			var m, ok = b.MakeMove(FirstOne(moves))
			if !ok {
				t.Fatal("legal move rejected")
			}
			var before = b
			b.Update(&m)
			if b.Player&b.Opponent != 0 {
				t.Fatal("discs overlap after move")
			}
			var back = b
			back.Restore(&m)
			if back != before {
				t.Fatal("restore did not invert update")
			}
		}
	}
}

func TestHashConsistency(t *testing.T) {
	var rng = random.New(5)
	var seen = make(map[uint64]Board)
	for i := 0; i < 2000; i++ {
		var b = randomBoard(rng, rng.Intn(60))
		// the hash depends on the bitboards alone, not on the path
		var copied, _, err = ParseBoard(b.Format(true))
		if err != nil {
			t.Fatal(err)
		}
		if copied.Hash() != b.Hash() {
			t.Fatal("equal boards with different hashes")
		}
		if prev, ok := seen[b.Hash()]; ok && prev != b {
			// 64 bit collisions in a small sample mean a broken fold
			t.Fatalf("hash collision: %v vs %v", prev, b)
		}
		seen[b.Hash()] = b
	}
}

func TestSymmetry(t *testing.T) {
	var rng = random.New(11)
	for i := 0; i < 100; i++ {
		var b = randomBoard(rng, rng.Intn(60))
		for s := 0; s < 8; s++ {
			var sym = b.Symmetry(s)
			if PopCount(sym.Player) != PopCount(b.Player) ||
				PopCount(sym.Opponent) != PopCount(b.Opponent) {
				t.Fatal("symmetry changed disc counts", s)
			}
			if GetMobility(sym.Player, sym.Opponent) != GetMobility(b.Player, b.Opponent) {
				t.Error("mobility not symmetry invariant", s, b)
			}
			if sym.Unique() != b.Unique() {
				t.Error("unique not symmetry invariant", s, b)
			}
			// symmetries are involutions in each component
			if s == 1 || s == 2 || s == 4 {
				if sym.Symmetry(s) != b {
					t.Error("symmetry not an involution", s)
				}
			}
		}
		if b.Symmetry(0) != b {
			t.Error("identity symmetry changed the board")
		}
	}
}

func TestTransformSquare(t *testing.T) {
	for s := 0; s < 8; s++ {
		for sq := 0; sq < 64; sq++ {
			var moved = Board{Player: SquareMask[sq]}.Symmetry(s)
			if moved.Player != SquareMask[TransformSquare(sq, s)] {
				t.Fatal("square transform disagrees with board symmetry", s, SquareName(sq))
			}
			if got := InverseTransformSquare(TransformSquare(sq, s), s); got != sq {
				t.Fatal("inverse transform", s, SquareName(sq), SquareName(got))
			}
		}
	}
}

func TestUniqueTransform(t *testing.T) {
	var rng = random.New(13)
	for i := 0; i < 100; i++ {
		var b = randomBoard(rng, rng.Intn(60))
		var u, s = b.UniqueTransform()
		if b.Symmetry(s) != u {
			t.Fatal("reported symmetry does not produce the canonical board", s)
		}
		if u != b.Unique() {
			t.Fatal("canonical boards differ")
		}
		// a legal move stays legal in canonical space
		if moves := b.Moves(); moves != 0 {
			var sq = FirstOne(moves)
			if u.Moves()&SquareMask[TransformSquare(sq, s)] == 0 {
				t.Fatal("transformed move is not legal", s, SquareName(sq))
			}
		}
	}
}

func TestMoveNames(t *testing.T) {
	var tests = []struct {
		sq   int
		name string
	}{
		{SquareA1, "a1"},
		{SquareH1, "h1"},
		{SquareA8, "a8"},
		{SquareH8, "h8"},
		{SquareD3, "d3"},
		{Pass, "PA"},
	}
	for _, test := range tests {
		if got := SquareName(test.sq); got != test.name {
			t.Error(test.sq, got, test.name)
		}
		var sq, err = ParseSquare(test.name)
		if err != nil || sq != test.sq {
			t.Error(test.name, sq, err)
		}
	}
	for _, s := range []string{"i9", "a9", "a0", "ps", "PS", "a", ""} {
		if _, err := ParseSquare(s); err == nil {
			t.Error("accepted", s)
		}
	}
}
