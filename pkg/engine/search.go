package engine

import (
	"sync/atomic"

	"github.com/othex/othex/pkg/eval"
	"github.com/othex/othex/pkg/othello"
)

const (
	scoreInf = 127

	// NoSelectivity solves exactly; lower levels let probcut prune
	// with rising aggressiveness.
	NoSelectivity = 5

	maxMoves  = 34
	stackSize = 128

	// a solving search switches from midgame to endgame nodes at this
	// many empties
	midToEndDepth = 15

	etcMinDepth   = 5
	etcMinEmpties = 10
	iidMinDepth   = 7
	splitMinDepth = 5
)

const (
	nodePV = iota
	nodeCut
	nodeAll
)

var incSortDepth = [3]int{2, 0, 1}

// quadrantID maps a square to its board quadrant bit, for the parity
// nibble that tracks odd empty regions.
var quadrantID [64]uint8

func init() {
	for sq := 0; sq < 64; sq++ {
		quadrantID[sq] = 1 << (uint(sq>>2)&1 | uint(sq>>4)&2)
	}
}

// Search is the per worker state of one tree walk. Workers share the
// transposition tables and the stop flags and own everything else.
type Search struct {
	engine *Engine

	board    othello.Board
	eval     eval.Eval
	empties  othello.EmptyList
	nEmpties int
	parity   uint8
	height   int

	selectivity  int
	probcutLevel int
	nodeTypes    [stackSize]uint8

	weights *eval.Weights
	hash    *HashTable
	pvHash  *HashTable
	shallow *HashTable

	nodes     int64
	flushed   int64
	lastCheck int64

	stop     *atomic.Bool
	stopSelf atomic.Bool

	stack [stackSize]moveList
}

// prepare points the search at a position. Empty squares enter the
// list ordered by static square value, corners first.
func (s *Search) prepare(b othello.Board, w *eval.Weights) {
	s.board = b
	s.eval.Set(&b)
	s.weights = w
	s.nEmpties = othello.PopCount(b.Empties())
	s.parity = 0
	s.height = 0
	s.probcutLevel = 0
	s.nodes = 0
	s.flushed = 0
	s.lastCheck = 0
	s.stopSelf.Store(false)

	var empties = b.Empties()
	var order = make([]int, 0, 64)
	for v := 18; v >= 0; v -= 2 {
		for sq := 0; sq < 64; sq++ {
			if int(squareValue[sq]) == v && empties&othello.SquareMask[sq] != 0 {
				order = append(order, sq)
				s.parity ^= quadrantID[sq]
			}
		}
	}
	s.empties.Init(order)
}

func (s *Search) stopped() bool {
	return s.stop.Load() || s.stopSelf.Load()
}

// tick counts a node and periodically reports progress to the engine,
// which enforces node and time limits.
func (s *Search) tick() {
	s.nodes++
	if s.nodes-s.lastCheck >= 1024 {
		s.lastCheck = s.nodes
		s.flushNodes()
		s.engine.observe()
	}
}

func (s *Search) flushNodes() {
	s.engine.totalNodes.Add(s.nodes - s.flushed)
	s.flushed = s.nodes
}

func (s *Search) updateMidgame(m *othello.Move) {
	s.board.Update(m)
	s.eval.Update(m.X, m.Flipped)
	s.empties.Remove(m.X)
	s.nEmpties--
	s.parity ^= quadrantID[m.X]
	s.height++
}

func (s *Search) restoreMidgame(m *othello.Move) {
	s.height--
	s.parity ^= quadrantID[m.X]
	s.nEmpties++
	s.empties.Restore(m.X)
	s.eval.Restore(m.X, m.Flipped)
	s.board.Restore(m)
}

func (s *Search) updateEndgame(m *othello.Move) {
	s.board.Update(m)
	s.empties.Remove(m.X)
	s.nEmpties--
	s.parity ^= quadrantID[m.X]
	s.height++
}

func (s *Search) restoreEndgame(m *othello.Move) {
	s.height--
	s.parity ^= quadrantID[m.X]
	s.nEmpties++
	s.empties.Restore(m.X)
	s.board.Restore(m)
}

func (s *Search) updatePassMidgame() {
	s.board.Pass()
	s.eval.Pass()
	s.height++
}

func (s *Search) restorePassMidgame() {
	s.height--
	s.eval.Pass()
	s.board.Pass()
}

func (s *Search) updatePassEndgame() {
	s.board.Pass()
	s.height++
}

func (s *Search) restorePassEndgame() {
	s.height--
	s.board.Pass()
}

// solveFinal scores a finished game. Unclaimed empties go to the
// winner; a draw stays a draw.
func solveFinal(player uint64, nEmpties int) int {
	var score = 2*othello.PopCount(player) - othello.ScoreMax
	var diff = score + nEmpties
	if diff >= 0 {
		score = diff
	}
	if diff > 0 {
		score += nEmpties
	}
	return score
}

// evaluate0 scores the position statically.
func (s *Search) evaluate0() int {
	s.nodes++
	return s.eval.Score(s.weights.Ply(s.nEmpties))
}

// evaluate1 searches one ply on the evaluation alone; child positions
// are scored without being walked, so the board stays untouched.
func (s *Search) evaluate1(alpha, beta int) int {
	s.nodes++
	var moves = s.board.Moves()
	if moves == 0 {
		if othello.CanMove(s.board.Opponent, s.board.Player) {
			s.updatePassMidgame()
			var score = -s.evaluate1(-beta, -alpha)
			s.restorePassMidgame()
			return score
		}
		return solveFinal(s.board.Player, s.nEmpties)
	}
	var w = s.weights.Ply(s.nEmpties - 1)
	var best = -scoreInf
	for ; moves != 0; moves &= moves - 1 {
		var x = othello.FirstOne(moves)
		var flipped = othello.Flip(s.board.Player, s.board.Opponent, x)
		s.eval.Update(x, flipped)
		s.nodes++
		var score = -s.eval.Score(w)
		s.eval.Restore(x, flipped)
		if score > best {
			best = score
			if best >= beta {
				break
			}
		}
	}
	return best
}

// evaluate2 searches two plies; children need real board updates so
// their own moves can be generated.
func (s *Search) evaluate2(alpha, beta int) int {
	s.nodes++
	var moves = s.board.Moves()
	if moves == 0 {
		if othello.CanMove(s.board.Opponent, s.board.Player) {
			s.updatePassMidgame()
			var score = -s.evaluate2(-beta, -alpha)
			s.restorePassMidgame()
			return score
		}
		return solveFinal(s.board.Player, s.nEmpties)
	}
	var best = -scoreInf
	for ; moves != 0; moves &= moves - 1 {
		var x = othello.FirstOne(moves)
		var m = othello.Move{X: x, Flipped: othello.Flip(s.board.Player, s.board.Opponent, x)}
		s.board.Update(&m)
		s.eval.Update(m.X, m.Flipped)
		s.nEmpties--
		var score = -s.evaluate1(-beta, -alpha)
		s.nEmpties++
		s.eval.Restore(m.X, m.Flipped)
		s.board.Restore(&m)
		if score > best {
			best = score
			if best >= beta {
				return best
			}
			if best > alpha {
				alpha = best
			}
		}
	}
	return best
}

// generateMoves lists the legal moves by scanning the empty list, so
// iteration follows the static square ordering.
func (s *Search) generateMoves(ml *moveList) {
	ml.count = 0
	var p, o = s.board.Player, s.board.Opponent
	for sq := s.empties.First(); sq != othello.ListEnd; sq = s.empties.Next(sq) {
		if othello.Neighbours(sq)&o == 0 {
			continue
		}
		if flipped := othello.Flip(p, o, sq); flipped != 0 {
			ml.add(othello.Move{X: sq, Flipped: flipped})
		}
	}
}

var nwsStabilityThreshold = [64]int{
	99, 99, 99, 99, 6, 8, 10, 12,
	14, 16, 20, 22, 24, 26, 28, 30,
	32, 34, 36, 38, 40, 42, 44, 46,
	48, 48, 50, 50, 52, 52, 54, 54,
	56, 56, 58, 58, 60, 60, 62, 62,
	64, 64, 64, 64, 64, 64, 64, 64,
	64, 64, 64, 64, 64, 64, 64, 64,
	64, 64, 64, 64, 64, 64, 64, 64,
}

var pvsStabilityThreshold = [64]int{
	99, 99, 99, 99, 4, 6, 8, 10,
	12, 14, 18, 20, 22, 24, 26, 28,
	30, 32, 34, 36, 38, 40, 42, 44,
	46, 46, 48, 48, 50, 50, 52, 52,
	54, 54, 56, 56, 58, 58, 60, 60,
	62, 62, 62, 62, 62, 62, 62, 62,
	62, 62, 62, 62, 62, 62, 62, 62,
	62, 62, 62, 62, 62, 62, 62, 62,
}

// stabilityCutNWS bounds the score from above by the opponent discs
// that can never be flipped back.
func (s *Search) stabilityCutNWS(alpha int) (int, bool) {
	if alpha >= nwsStabilityThreshold[s.nEmpties] {
		var score = othello.ScoreMax - 2*othello.GetStability(s.board.Opponent, s.board.Player)
		if score <= alpha {
			return score, true
		}
	}
	return 0, false
}

// stabilityCutPVS bounds the window from both sides and may shrink it.
func (s *Search) stabilityCutPVS(alpha, beta *int) (int, bool) {
	if *beta >= pvsStabilityThreshold[s.nEmpties] {
		var upper = othello.ScoreMax - 2*othello.GetStability(s.board.Opponent, s.board.Player)
		if upper <= *alpha {
			return upper, true
		}
		if upper < *beta {
			*beta = upper
		}
	}
	if *alpha <= -pvsStabilityThreshold[s.nEmpties] {
		var lower = 2*othello.GetStability(s.board.Player, s.board.Opponent) - othello.ScoreMax
		if lower >= *beta {
			return lower, true
		}
		if lower > *alpha {
			*alpha = lower
		}
	}
	return 0, false
}
