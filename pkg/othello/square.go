package othello

import "fmt"

const (
	FileA = iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

const (
	Rank1 = iota
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

const (
	SquareA1 = iota
	SquareB1
	SquareC1
	SquareD1
	SquareE1
	SquareF1
	SquareG1
	SquareH1
	SquareA2
	SquareB2
	SquareC2
	SquareD2
	SquareE2
	SquareF2
	SquareG2
	SquareH2
	SquareA3
	SquareB3
	SquareC3
	SquareD3
	SquareE3
	SquareF3
	SquareG3
	SquareH3
	SquareA4
	SquareB4
	SquareC4
	SquareD4
	SquareE4
	SquareF4
	SquareG4
	SquareH4
	SquareA5
	SquareB5
	SquareC5
	SquareD5
	SquareE5
	SquareF5
	SquareG5
	SquareH5
	SquareA6
	SquareB6
	SquareC6
	SquareD6
	SquareE6
	SquareF6
	SquareG6
	SquareH6
	SquareA7
	SquareB7
	SquareC7
	SquareD7
	SquareE7
	SquareF7
	SquareG7
	SquareH7
	SquareA8
	SquareB8
	SquareC8
	SquareD8
	SquareE8
	SquareF8
	SquareG8
	SquareH8
)

// Move codes outside the square range.
const (
	Pass   = -1
	NoMove = -2
)

const (
	fileNames = "abcdefgh"
	rankNames = "12345678"
)

func File(sq int) int {
	return sq & 7
}

func Rank(sq int) int {
	return sq >> 3
}

func MakeSquare(file, rank int) int {
	return rank*8 + file
}

// TransformSquare maps a square through board symmetry s, the same
// encoding Board.Symmetry uses.
func TransformSquare(sq, s int) int {
	if s&1 != 0 {
		sq ^= 7
	}
	if s&2 != 0 {
		sq ^= 56
	}
	if s&4 != 0 {
		sq = (sq&7)<<3 | sq>>3
	}
	return sq
}

// InverseTransformSquare undoes TransformSquare.
func InverseTransformSquare(sq, s int) int {
	if s&4 != 0 {
		sq = (sq&7)<<3 | sq>>3
	}
	if s&2 != 0 {
		sq ^= 56
	}
	if s&1 != 0 {
		sq ^= 7
	}
	return sq
}

func SquareName(sq int) string {
	switch sq {
	case Pass:
		return "PA"
	case NoMove:
		return "--"
	}
	return string(fileNames[File(sq)]) + string(rankNames[Rank(sq)])
}

func ParseSquare(s string) (int, error) {
	if s == "PA" || s == "pa" {
		return Pass, nil
	}
	if len(s) != 2 {
		return NoMove, fmt.Errorf("bad square %q", s)
	}
	var file = int(s[0] - 'a')
	if file < 0 || file > 7 {
		file = int(s[0] - 'A')
	}
	var rank = int(s[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoMove, fmt.Errorf("bad square %q", s)
	}
	return MakeSquare(file, rank), nil
}
