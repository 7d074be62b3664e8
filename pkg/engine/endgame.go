package engine

import (
	"github.com/othex/othex/pkg/othello"
)

func childBoard(b *othello.Board, x int, flipped uint64) othello.Board {
	return othello.Board{
		Player:   b.Opponent ^ flipped,
		Opponent: b.Player ^ (flipped | othello.SquareMask[x]),
	}
}

// scoreLast1 solves a position with one empty square left. The score
// is exact above alpha; below alpha the opponent flip count may be
// skipped, leaving a sound upper bound.
func scoreLast1(b *othello.Board, alpha, x int) int {
	var score = 2*othello.PopCount(b.Player) - othello.ScoreMax + 2
	var nFlips = othello.CountLastFlip(b.Player, x)
	if nFlips != 0 {
		return score + nFlips
	}
	if score <= 0 {
		score -= 2
		if score > alpha {
			score -= othello.CountLastFlip(b.Opponent, x)
		}
		return score
	}
	if score > alpha {
		if nFlips = othello.CountLastFlip(b.Opponent, x); nFlips != 0 {
			score -= nFlips + 2
		}
	}
	return score
}

// solve2 finishes the last two empties on the null window (alpha,
// alpha+1).
func (s *Search) solve2(b *othello.Board, alpha, x1, x2 int) int {
	s.nodes++
	if othello.Neighbours(x1)&b.Opponent != 0 {
		if flipped := othello.Flip(b.Player, b.Opponent, x1); flipped != 0 {
			var next = childBoard(b, x1, flipped)
			var best = -scoreLast1(&next, -alpha-1, x2)
			if best <= alpha && othello.Neighbours(x2)&b.Opponent != 0 {
				if flipped = othello.Flip(b.Player, b.Opponent, x2); flipped != 0 {
					next = childBoard(b, x2, flipped)
					if score := -scoreLast1(&next, -alpha-1, x1); score > best {
						best = score
					}
				}
			}
			return best
		}
	}
	if othello.Neighbours(x2)&b.Opponent != 0 {
		if flipped := othello.Flip(b.Player, b.Opponent, x2); flipped != 0 {
			var next = childBoard(b, x2, flipped)
			return -scoreLast1(&next, -alpha-1, x1)
		}
	}
	if othello.CanMove(b.Opponent, b.Player) {
		var passed = othello.Board{Player: b.Opponent, Opponent: b.Player}
		return -s.solve2(&passed, -alpha-1, x1, x2)
	}
	return solveFinal(b.Player, 2)
}

// solve3 finishes three empties, trying squares in odd quadrants
// first.
func (s *Search) solve3(b *othello.Board, alpha int, parity uint8, x1, x2, x3 int) int {
	s.nodes++
	if parity&quadrantID[x1] == 0 {
		if parity&quadrantID[x2] != 0 {
			x1, x2 = x2, x1
		} else if parity&quadrantID[x3] != 0 {
			x1, x2, x3 = x3, x1, x2
		}
	}
	var best = -scoreInf
	if othello.Neighbours(x1)&b.Opponent != 0 {
		if flipped := othello.Flip(b.Player, b.Opponent, x1); flipped != 0 {
			var next = childBoard(b, x1, flipped)
			best = -s.solve2(&next, -alpha-1, x2, x3)
			if best > alpha {
				return best
			}
		}
	}
	if othello.Neighbours(x2)&b.Opponent != 0 {
		if flipped := othello.Flip(b.Player, b.Opponent, x2); flipped != 0 {
			var next = childBoard(b, x2, flipped)
			var score = -s.solve2(&next, -alpha-1, x1, x3)
			if score > alpha {
				return score
			}
			if score > best {
				best = score
			}
		}
	}
	if othello.Neighbours(x3)&b.Opponent != 0 {
		if flipped := othello.Flip(b.Player, b.Opponent, x3); flipped != 0 {
			var next = childBoard(b, x3, flipped)
			if score := -s.solve2(&next, -alpha-1, x1, x2); score > best {
				best = score
			}
		}
	}
	if best == -scoreInf {
		if othello.CanMove(b.Opponent, b.Player) {
			var passed = othello.Board{Player: b.Opponent, Opponent: b.Player}
			return -s.solve3(&passed, -alpha-1, parity, x1, x2, x3)
		}
		return solveFinal(b.Player, 3)
	}
	return best
}

// solve4 finishes four empties. The empty regions can split 4, 3+1,
// 2+2, 2+1+1 or 1+1+1+1; only two singles beside a pair profit from
// reordering, singles first.
func (s *Search) solve4(b *othello.Board, alpha int, parity uint8, x1, x2, x3, x4 int) int {
	s.nodes++
	if parity&quadrantID[x1] == 0 {
		if parity&quadrantID[x2] != 0 {
			if parity&quadrantID[x3] != 0 {
				x1, x2, x3 = x2, x3, x1
			} else {
				x1, x2, x3, x4 = x2, x4, x1, x3
			}
		} else if parity&quadrantID[x3] != 0 {
			x1, x2, x3, x4 = x3, x4, x1, x2
		}
	} else if parity&quadrantID[x2] == 0 {
		if parity&quadrantID[x3] != 0 {
			x2, x3 = x3, x2
		} else {
			x2, x3, x4 = x4, x2, x3
		}
	}
	var best = -scoreInf
	if othello.Neighbours(x1)&b.Opponent != 0 {
		if flipped := othello.Flip(b.Player, b.Opponent, x1); flipped != 0 {
			var next = childBoard(b, x1, flipped)
			best = -s.solve3(&next, -alpha-1, parity^quadrantID[x1], x2, x3, x4)
			if best > alpha {
				return best
			}
		}
	}
	if othello.Neighbours(x2)&b.Opponent != 0 {
		if flipped := othello.Flip(b.Player, b.Opponent, x2); flipped != 0 {
			var next = childBoard(b, x2, flipped)
			var score = -s.solve3(&next, -alpha-1, parity^quadrantID[x2], x1, x3, x4)
			if score > alpha {
				return score
			}
			if score > best {
				best = score
			}
		}
	}
	if othello.Neighbours(x3)&b.Opponent != 0 {
		if flipped := othello.Flip(b.Player, b.Opponent, x3); flipped != 0 {
			var next = childBoard(b, x3, flipped)
			var score = -s.solve3(&next, -alpha-1, parity^quadrantID[x3], x1, x2, x4)
			if score > alpha {
				return score
			}
			if score > best {
				best = score
			}
		}
	}
	if othello.Neighbours(x4)&b.Opponent != 0 {
		if flipped := othello.Flip(b.Player, b.Opponent, x4); flipped != 0 {
			var next = childBoard(b, x4, flipped)
			if score := -s.solve3(&next, -alpha-1, parity^quadrantID[x4], x1, x2, x3); score > best {
				best = score
			}
		}
	}
	if best == -scoreInf {
		if othello.CanMove(b.Opponent, b.Player) {
			var passed = othello.Board{Player: b.Opponent, Opponent: b.Player}
			return -s.solve4(&passed, -alpha-1, parity, x1, x2, x3, x4)
		}
		return solveFinal(b.Player, 4)
	}
	return best
}

// nwsEndgame runs the exact null window solver. Four empties and
// fewer go straight to the unrolled finishers.
func (s *Search) nwsEndgame(alpha int) int {
	switch s.nEmpties {
	case 0:
		s.nodes++
		return solveFinal(s.board.Player, 0)
	case 1:
		s.nodes++
		return scoreLast1(&s.board, alpha, s.empties.First())
	case 2:
		var x1 = s.empties.First()
		return s.solve2(&s.board, alpha, x1, s.empties.Next(x1))
	case 3:
		var x1 = s.empties.First()
		var x2 = s.empties.Next(x1)
		return s.solve3(&s.board, alpha, s.parity, x1, x2, s.empties.Next(x2))
	case 4:
		var x1 = s.empties.First()
		var x2 = s.empties.Next(x1)
		var x3 = s.empties.Next(x2)
		return s.solve4(&s.board, alpha, s.parity, x1, x2, x3, s.empties.Next(x3))
	}

	s.tick()
	if s.stopped() {
		return alpha
	}
	if score, done := s.stabilityCutNWS(alpha); done {
		return score
	}
	var n0 = s.nodes
	var key = s.board.Hash()
	var hashMove = [2]int8{noMove8, noMove8}
	if e, ok := s.hash.probe(key); ok {
		if score, done := e.cutNWS(s.nEmpties, NoSelectivity, alpha); done {
			return score
		}
		hashMove = e.move
	}

	var ml = &s.stack[s.height]
	s.generateMoves(ml)
	if ml.count == 0 {
		if othello.CanMove(s.board.Opponent, s.board.Player) {
			s.updatePassEndgame()
			var score = -s.nwsEndgame(-alpha - 1)
			s.restorePassEndgame()
			return score
		}
		return solveFinal(s.board.Player, s.nEmpties)
	}
	if ml.count > 1 {
		s.evaluateMovesFast(ml, hashMove)
		ml.sort()
	}
	if s.nEmpties >= etcMinEmpties {
		if score, done := s.etcEndgame(ml, key, alpha); done {
			return score
		}
	}

	var best = -scoreInf
	var bestMove = othello.NoMove
	for i := 0; i < ml.count; i++ {
		var m = &ml.moves[i]
		s.updateEndgame(&m.Move)
		var score = -s.nwsEndgame(-alpha - 1)
		s.restoreEndgame(&m.Move)
		if score > best {
			best = score
			bestMove = m.X
			if best > alpha {
				break
			}
		}
	}
	if s.stopped() {
		return alpha
	}
	s.hash.store(key, s.nEmpties, NoSelectivity, costOf(s.nodes-n0), alpha, alpha+1, best, bestMove)
	return best
}

// etcEndgame probes the children before searching them; a stored
// upper bound on a child is a lower bound here.
func (s *Search) etcEndgame(ml *moveList, key uint64, alpha int) (int, bool) {
	for i := 0; i < ml.count; i++ {
		var m = &ml.moves[i]
		var child = childBoard(&s.board, m.X, m.Flipped)
		if e, ok := s.hash.probe(child.Hash()); ok &&
			int(e.depth) >= s.nEmpties-1 && int(e.selectivity) >= NoSelectivity &&
			-int(e.upper) > alpha {
			s.hash.store(key, s.nEmpties, NoSelectivity, 0, alpha, alpha+1, -int(e.upper), m.X)
			return -int(e.upper), true
		}
	}
	return 0, false
}

// pvsEndgame is the full window endgame search along the principal
// variation.
func (s *Search) pvsEndgame(alpha, beta int) int {
	if s.nEmpties <= 4 {
		return s.exactTiny(alpha, beta)
	}
	s.tick()
	if s.stopped() {
		return alpha
	}
	if score, done := s.stabilityCutPVS(&alpha, &beta); done {
		return score
	}
	var alpha0, beta0 = alpha, beta
	var n0 = s.nodes
	var key = s.board.Hash()
	var hashMove = s.probeMoves(key)

	var ml = &s.stack[s.height]
	s.generateMoves(ml)
	if ml.count == 0 {
		if othello.CanMove(s.board.Opponent, s.board.Player) {
			s.updatePassEndgame()
			var score = -s.pvsEndgame(-beta, -alpha)
			s.restorePassEndgame()
			return score
		}
		return solveFinal(s.board.Player, s.nEmpties)
	}
	if ml.count > 1 {
		s.evaluateMovesFast(ml, hashMove)
		ml.sort()
	}

	var best = -scoreInf
	var bestMove = othello.NoMove
	for i := 0; i < ml.count; i++ {
		var m = &ml.moves[i]
		s.updateEndgame(&m.Move)
		var score int
		if i == 0 {
			score = -s.pvsEndgame(-beta, -alpha)
		} else {
			score = -s.nwsEndgame(-alpha - 1)
			if score > alpha && score < beta && !s.stopped() {
				score = -s.pvsEndgame(-beta, -alpha)
			}
		}
		s.restoreEndgame(&m.Move)
		if score > best {
			best = score
			bestMove = m.X
			if best >= beta {
				break
			}
			if best > alpha {
				alpha = best
			}
		}
	}
	if s.stopped() {
		return alpha
	}
	var cost = costOf(s.nodes - n0)
	s.hash.store(key, s.nEmpties, NoSelectivity, cost, alpha0, beta0, best, bestMove)
	s.pvHash.store(key, s.nEmpties, NoSelectivity, cost, alpha0, beta0, best, bestMove)
	return best
}

// exactTiny is a plain negamax for the last empties of a pv node,
// where ordering no longer pays for itself.
func (s *Search) exactTiny(alpha, beta int) int {
	s.nodes++
	if s.nEmpties == 0 {
		return solveFinal(s.board.Player, 0)
	}
	var best = -scoreInf
	for sq := s.empties.First(); sq != othello.ListEnd; sq = s.empties.Next(sq) {
		if othello.Neighbours(sq)&s.board.Opponent == 0 {
			continue
		}
		var flipped = othello.Flip(s.board.Player, s.board.Opponent, sq)
		if flipped == 0 {
			continue
		}
		var m = othello.Move{X: sq, Flipped: flipped}
		s.updateEndgame(&m)
		var score = -s.exactTiny(-beta, -alpha)
		s.restoreEndgame(&m)
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
	if best == -scoreInf {
		if othello.CanMove(s.board.Opponent, s.board.Player) {
			s.updatePassEndgame()
			best = -s.exactTiny(-beta, -alpha)
			s.restorePassEndgame()
		} else {
			best = solveFinal(s.board.Player, s.nEmpties)
		}
	}
	return best
}
