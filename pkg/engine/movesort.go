package engine

import (
	"github.com/othex/othex/pkg/othello"
)

// squareValue ranks squares by static worth, after J.C. Weill.
// Corners rank highest, the squares touching a corner lowest.
var squareValue = [64]uint8{
	18, 4, 16, 12, 12, 16, 4, 18,
	4, 2, 6, 8, 8, 6, 2, 4,
	16, 6, 14, 10, 10, 14, 6, 16,
	12, 8, 10, 0, 0, 10, 8, 12,
	12, 8, 10, 0, 0, 10, 8, 12,
	16, 6, 14, 10, 10, 14, 6, 16,
	4, 2, 6, 8, 8, 6, 2, 4,
	18, 4, 16, 12, 12, 16, 4, 18,
}

const (
	wEval              = 1 << 15
	wMobility          = 1 << 15
	wCornerStability   = 1 << 11
	wPotentialMobility = 1 << 5
	wLowParity         = 1 << 3
	wMidParity         = 1 << 2
	wHighParity        = 1 << 1
)

type moveEntry struct {
	othello.Move
	score int
}

type moveList struct {
	moves [maxMoves]moveEntry
	count int
}

func (ml *moveList) add(m othello.Move) {
	ml.moves[ml.count].Move = m
	ml.moves[ml.count].score = 0
	ml.count++
}

// sort orders moves by descending score. The insertion sort is stable,
// so equal scores keep the square ordering of generation.
func (ml *moveList) sort() {
	for i := 1; i < ml.count; i++ {
		var m = ml.moves[i]
		var j = i
		for ; j > 0 && ml.moves[j-1].score < m.score; j-- {
			ml.moves[j] = ml.moves[j-1]
		}
		ml.moves[j] = m
	}
}

func (s *Search) parityBonus(x int) int {
	if s.parity&quadrantID[x] != 0 {
		switch {
		case s.nEmpties < 12:
			return wLowParity
		case s.nEmpties < 21:
			return wMidParity
		case s.nEmpties < 30:
			return wHighParity
		}
	}
	return 0
}

// sortDepthFor picks how deep the ordering searches go at a midgame
// node. A hash entry already failing low cheapens the node, many
// empties and a pv node make ordering worth more.
func (s *Search) sortDepthFor(depth, alpha int, e *hashEntry, hit bool, nodeType uint8) int {
	var sortDepth = (depth - 15) / 3
	if hit && int(e.upper) < alpha {
		sortDepth -= 2
	}
	if s.nEmpties >= 27 {
		sortDepth++
	}
	if sortDepth < 0 {
		sortDepth = 0
	} else if sortDepth > 6 {
		sortDepth = 6
	}
	return sortDepth + incSortDepth[nodeType]
}

// evaluateMoves scores every move of a midgame node for ordering. A
// wipeout or a hash move goes first; the rest are judged by the
// mobility and stability left to the opponent and, from sortDepth 0
// up, by a shallow search of the child.
func (s *Search) evaluateMoves(ml *moveList, hashMove [2]int8, sortAlpha, sortDepth int) {
	for i := 0; i < ml.count; i++ {
		var m = &ml.moves[i]
		switch {
		case m.Flipped == s.board.Opponent:
			m.score = 1 << 30
		case int8(m.X) == hashMove[0]:
			m.score = 1 << 29
		case int8(m.X) == hashMove[1]:
			m.score = 1 << 28
		default:
			var score = int(squareValue[m.X]) + s.parityBonus(m.X)
			s.updateMidgame(&m.Move)
			score += (36 - othello.GetPotentialMobility(s.board.Player, s.board.Opponent)) * wPotentialMobility
			score += othello.CornerStability(s.board.Opponent) * wCornerStability
			score += (36 - othello.GetWeightedMobility(s.board.Player, s.board.Opponent)) * wMobility
			switch {
			case sortDepth == 0:
				score += ((othello.ScoreMax - s.evaluate0()) >> 2) * wEval
			case sortDepth == 1:
				score += ((othello.ScoreMax - s.evaluate1(othello.ScoreMin, -sortAlpha)) >> 1) * wEval
			case sortDepth == 2:
				score += ((othello.ScoreMax - s.evaluate2(othello.ScoreMin, -sortAlpha)) >> 1) * wEval
			default:
				score += (othello.ScoreMax - s.nwsShallow(-sortAlpha-1, sortDepth)) * wEval
			}
			s.restoreMidgame(&m.Move)
			m.score = score
		}
	}
}

// evaluateMovesFast scores moves from the board alone, for endgame
// nodes and for the ordering inside shallow sort searches.
func (s *Search) evaluateMovesFast(ml *moveList, hashMove [2]int8) {
	for i := 0; i < ml.count; i++ {
		var m = &ml.moves[i]
		switch {
		case m.Flipped == s.board.Opponent:
			m.score = 1 << 30
		case int8(m.X) == hashMove[0]:
			m.score = 1 << 29
		case int8(m.X) == hashMove[1]:
			m.score = 1 << 28
		default:
			var score = int(squareValue[m.X]) + s.parityBonus(m.X)
			s.updateEndgame(&m.Move)
			score += (36 - othello.GetPotentialMobility(s.board.Player, s.board.Opponent)) * wPotentialMobility
			score += othello.CornerStability(s.board.Opponent) * wCornerStability
			score += (36 - othello.GetWeightedMobility(s.board.Player, s.board.Opponent)) * wMobility
			s.restoreEndgame(&m.Move)
			m.score = score
		}
	}
}

// nwsShallow is the reduced null window search behind deep move
// ordering. It keeps its results in the per worker scratch table.
func (s *Search) nwsShallow(alpha, depth int) int {
	switch depth {
	case 0:
		return s.evaluate0()
	case 1:
		return s.evaluate1(alpha, alpha+1)
	case 2:
		return s.evaluate2(alpha, alpha+1)
	}
	s.nodes++
	var key = s.board.Hash()
	var hashMove = [2]int8{noMove8, noMove8}
	if e, ok := s.shallow.probe(key); ok {
		if score, done := e.cutNWS(depth, NoSelectivity, alpha); done {
			return score
		}
		hashMove = e.move
	}
	var ml = &s.stack[s.height]
	s.generateMoves(ml)
	if ml.count == 0 {
		if othello.CanMove(s.board.Opponent, s.board.Player) {
			s.updatePassMidgame()
			var score = -s.nwsShallow(-alpha-1, depth)
			s.restorePassMidgame()
			return score
		}
		return solveFinal(s.board.Player, s.nEmpties)
	}
	if ml.count > 1 {
		s.evaluateMovesFast(ml, hashMove)
		ml.sort()
	}
	var n0 = s.nodes
	var best = -scoreInf
	var bestMove = othello.NoMove
	for i := 0; i < ml.count; i++ {
		var m = &ml.moves[i]
		s.updateMidgame(&m.Move)
		var score = -s.nwsShallow(-alpha-1, depth-1)
		s.restoreMidgame(&m.Move)
		if score > best {
			best = score
			bestMove = m.X
			if best > alpha {
				break
			}
		}
	}
	s.shallow.store(key, depth, NoSelectivity, costOf(s.nodes-n0), alpha, alpha+1, best, bestMove)
	return best
}
