package othello

import (
	"fmt"
	"strings"
)

// Scores are disc differences from the side to move, bounded by the
// 64 squares of the board.
const (
	ScoreMin = -64
	ScoreMax = 64
)

// Board holds the discs of the player to move and of the opponent.
// The two masks never intersect. Square a1 is bit 0, h8 is bit 63.
type Board struct {
	Player   uint64
	Opponent uint64
}

// Move is a move together with the discs it flips.
type Move struct {
	X       int
	Flipped uint64
}

// NewBoard returns the initial position with the first player to move.
func NewBoard() Board {
	return Board{
		Player:   SquareMask[SquareE4] | SquareMask[SquareD5],
		Opponent: SquareMask[SquareD4] | SquareMask[SquareE5],
	}
}

func (b *Board) Empties() uint64 {
	return ^(b.Player | b.Opponent)
}

func (b *Board) Moves() uint64 {
	return GetMoves(b.Player, b.Opponent)
}

func (b *Board) Update(m *Move) {
	b.Player, b.Opponent = b.Opponent^m.Flipped, b.Player^(m.Flipped|SquareMask[m.X])
}

func (b *Board) Restore(m *Move) {
	b.Player, b.Opponent = b.Opponent^(m.Flipped|SquareMask[m.X]), b.Player^m.Flipped
}

func (b *Board) Pass() {
	b.Player, b.Opponent = b.Opponent, b.Player
}

// Next returns the position after m without modifying b.
func (b Board) Next(m *Move) Board {
	b.Update(m)
	return b
}

// MakeMove builds the move for sq, or reports that it is illegal.
// Passing is legal only when the player to move has no move.
func (b *Board) MakeMove(sq int) (Move, bool) {
	if sq == Pass {
		return Move{X: Pass}, b.Moves() == 0
	}
	if sq < 0 || sq > 63 || SquareMask[sq]&(b.Player|b.Opponent) != 0 {
		return Move{}, false
	}
	var flipped = Flip(b.Player, b.Opponent, sq)
	if flipped == 0 {
		return Move{}, false
	}
	return Move{X: sq, Flipped: flipped}, true
}

// Symmetry applies one of the eight board symmetries. Bit 0 mirrors
// horizontally, bit 1 vertically, bit 2 transposes.
func (b Board) Symmetry(s int) Board {
	if s&1 != 0 {
		b.Player = MirrorHorizontal(b.Player)
		b.Opponent = MirrorHorizontal(b.Opponent)
	}
	if s&2 != 0 {
		b.Player = MirrorVertical(b.Player)
		b.Opponent = MirrorVertical(b.Opponent)
	}
	if s&4 != 0 {
		b.Player = Transpose(b.Player)
		b.Opponent = Transpose(b.Opponent)
	}
	return b
}

func (b Board) less(o Board) bool {
	if b.Player != o.Player {
		return b.Player < o.Player
	}
	return b.Opponent < o.Opponent
}

// Unique returns the smallest of the eight symmetric variants of b,
// a canonical key for opening book lookups.
func (b Board) Unique() Board {
	var u, _ = b.UniqueTransform()
	return u
}

// UniqueTransform returns the canonical variant of b together with the
// symmetry that produced it, so moves can be mapped into book space
// with TransformSquare and back with InverseTransformSquare.
func (b Board) UniqueTransform() (Board, int) {
	var best, bestSym = b, 0
	for s := 1; s < 8; s++ {
		if sym := b.Symmetry(s); sym.less(best) {
			best, bestSym = sym, s
		}
	}
	return best, bestSym
}

// Format renders the position as 64 squares and the side to move,
// with X for black and O for white.
func (b Board) Format(blackToMove bool) string {
	var black, white = b.Player, b.Opponent
	if !blackToMove {
		black, white = white, black
	}
	var sb strings.Builder
	for sq := 0; sq < 64; sq++ {
		switch {
		case black&SquareMask[sq] != 0:
			sb.WriteByte('X')
		case white&SquareMask[sq] != 0:
			sb.WriteByte('O')
		default:
			sb.WriteByte('-')
		}
	}
	sb.WriteByte(' ')
	if blackToMove {
		sb.WriteByte('X')
	} else {
		sb.WriteByte('O')
	}
	return sb.String()
}

// Diagram renders the position as an eight line grid with coordinates,
// for console display.
func (b Board) Diagram(blackToMove bool) string {
	var black, white = b.Player, b.Opponent
	if !blackToMove {
		black, white = white, black
	}
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(rankNames[rank])
		for file := 0; file < 8; file++ {
			sb.WriteByte(' ')
			var bit = SquareMask[MakeSquare(file, rank)]
			switch {
			case black&bit != 0:
				sb.WriteByte('X')
			case white&bit != 0:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b Board) String() string {
	return b.Format(true)
}

// ParseBoard reads a 65 character position: 64 squares in a1..h8 order
// then the side to move. Black discs are b, B, x, X or *, white discs
// o, O, w or W, empties - or dot. Whitespace is ignored.
func ParseBoard(s string) (Board, bool, error) {
	var black, white uint64
	var sq = 0
	var side byte = 0
	for i := 0; i < len(s); i++ {
		var c = s[i]
		switch c {
		case ' ', '\t', '\n', '\r', '|':
			continue
		}
		if sq == 64 {
			side = c
			break
		}
		switch c {
		case 'b', 'B', 'x', 'X', '*':
			black |= SquareMask[sq]
		case 'o', 'O', 'w', 'W':
			white |= SquareMask[sq]
		case '-', '.':
		default:
			return Board{}, false, fmt.Errorf("bad square character %q at %d", c, sq)
		}
		sq++
	}
	if sq != 64 || side == 0 {
		return Board{}, false, fmt.Errorf("incomplete position %q", s)
	}
	var blackToMove bool
	switch side {
	case 'b', 'B', 'x', 'X', '*':
		blackToMove = true
	case 'o', 'O', 'w', 'W':
		blackToMove = false
	default:
		return Board{}, false, fmt.Errorf("bad side to move %q", side)
	}
	var board Board
	if blackToMove {
		board = Board{Player: black, Opponent: white}
	} else {
		board = Board{Player: white, Opponent: black}
	}
	if err := board.check(); err != nil {
		return Board{}, false, err
	}
	return board, blackToMove, nil
}

// ParseFEN reads a Forsyth-Edwards style position: eight ranks from
// rank 8 down separated by slashes, p for black and P for white, then
// the side to move. Trailing fields are ignored.
func ParseFEN(fen string) (Board, bool, error) {
	var fields = strings.Fields(fen)
	if len(fields) < 2 {
		return Board{}, false, fmt.Errorf("incomplete fen %q", fen)
	}
	var black, white uint64
	var rank, file = 7, 0
	for i := 0; i < len(fields[0]); i++ {
		var c = fields[0][i]
		switch {
		case c == '/':
			if file != 8 {
				return Board{}, false, fmt.Errorf("short rank in fen %q", fen)
			}
			rank--
			file = 0
		case c >= '1' && c <= '8':
			file += int(c - '0')
		case c == 'p' || c == 'P':
			if rank < 0 || file > 7 {
				return Board{}, false, fmt.Errorf("bad fen %q", fen)
			}
			if c == 'p' {
				black |= SquareMask[MakeSquare(file, rank)]
			} else {
				white |= SquareMask[MakeSquare(file, rank)]
			}
			file++
		default:
			return Board{}, false, fmt.Errorf("bad fen character %q", c)
		}
	}
	if rank != 0 || file != 8 {
		return Board{}, false, fmt.Errorf("bad fen %q", fen)
	}
	var blackToMove bool
	switch fields[1] {
	case "b", "B":
		blackToMove = true
	case "w", "W":
		blackToMove = false
	default:
		return Board{}, false, fmt.Errorf("bad side to move %q", fields[1])
	}
	var board Board
	if blackToMove {
		board = Board{Player: black, Opponent: white}
	} else {
		board = Board{Player: white, Opponent: black}
	}
	if err := board.check(); err != nil {
		return Board{}, false, err
	}
	return board, blackToMove, nil
}

// FEN renders the position in the format ParseFEN reads.
func (b Board) FEN(blackToMove bool) string {
	var black, white = b.Player, b.Opponent
	if !blackToMove {
		black, white = white, black
	}
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		var run = 0
		for file := 0; file < 8; file++ {
			var bit = SquareMask[MakeSquare(file, rank)]
			var c byte
			switch {
			case black&bit != 0:
				c = 'p'
			case white&bit != 0:
				c = 'P'
			default:
				run++
				continue
			}
			if run > 0 {
				sb.WriteByte('0' + byte(run))
				run = 0
			}
			sb.WriteByte(c)
		}
		if run > 0 {
			sb.WriteByte('0' + byte(run))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	if blackToMove {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}
	return sb.String()
}

func (b Board) check() error {
	if b.Player&b.Opponent != 0 {
		return fmt.Errorf("player and opponent discs overlap")
	}
	return nil
}
