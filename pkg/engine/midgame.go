package engine

import (
	"github.com/othex/othex/pkg/othello"
)

// probeMoves fetches ordering hints for a pv node. Stored bounds are
// ignored on the principal variation so it is always searched out.
func (s *Search) probeMoves(key uint64) [2]int8 {
	if e, ok := s.pvHash.probe(key); ok {
		return e.move
	}
	if e, ok := s.hash.probe(key); ok {
		return e.move
	}
	return [2]int8{noMove8, noMove8}
}

// nwsMidgame searches the null window (alpha, alpha+1). A solving
// search becomes an endgame search once depth reaches the empty
// count.
func (s *Search) nwsMidgame(alpha, depth int) int {
	if depth == s.nEmpties && s.nEmpties <= midToEndDepth {
		return s.nwsEndgame(alpha)
	}
	switch depth {
	case 0:
		return s.evaluate0()
	case 1:
		return s.evaluate1(alpha, alpha+1)
	case 2:
		return s.evaluate2(alpha, alpha+1)
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
	var he hashEntry
	var hit bool
	if he, hit = s.hash.probe(key); hit {
		if score, done := he.cutNWS(depth, s.selectivity, alpha); done {
			return score
		}
		hashMove = he.move
	}
	if score, done := s.probcut(alpha, depth); done {
		return score
	}

	var ml = &s.stack[s.height]
	s.generateMoves(ml)
	if ml.count == 0 {
		if othello.CanMove(s.board.Opponent, s.board.Player) {
			s.updatePassMidgame()
			var score = -s.nwsMidgame(-alpha-1, depth)
			s.restorePassMidgame()
			return score
		}
		return solveFinal(s.board.Player, s.nEmpties)
	}
	if ml.count > 1 {
		var sortDepth = s.sortDepthFor(depth, alpha, &he, hit, s.nodeTypes[s.height])
		s.evaluateMoves(ml, hashMove, alpha, sortDepth)
		ml.sort()
	}
	if depth >= etcMinDepth {
		if score, done := s.etcMidgame(ml, key, alpha, depth); done {
			return score
		}
	}

	var best, bestMove = s.searchMoves(ml, alpha, alpha+1, depth, false)
	if s.stopped() {
		return alpha
	}
	s.hash.store(key, depth, s.selectivity, costOf(s.nodes-n0), alpha, alpha+1, best, bestMove)
	return best
}

// etcMidgame probes the children before searching them; a stored
// upper bound on a child is a lower bound here.
func (s *Search) etcMidgame(ml *moveList, key uint64, alpha, depth int) (int, bool) {
	for i := 0; i < ml.count; i++ {
		var m = &ml.moves[i]
		var child = childBoard(&s.board, m.X, m.Flipped)
		if e, ok := s.hash.probe(child.Hash()); ok &&
			int(e.depth) >= depth-1 && int(e.selectivity) >= s.selectivity &&
			-int(e.upper) > alpha {
			s.hash.store(key, depth, s.selectivity, 0, alpha, alpha+1, -int(e.upper), m.X)
			return -int(e.upper), true
		}
	}
	return 0, false
}

// pvsMidgame is the principal variation search over a full window.
func (s *Search) pvsMidgame(alpha, beta, depth int) int {
	if depth == s.nEmpties && s.nEmpties <= midToEndDepth {
		return s.pvsEndgame(alpha, beta)
	}
	switch depth {
	case 0:
		return s.evaluate0()
	case 1:
		return s.evaluate1(alpha, beta)
	case 2:
		return s.evaluate2(alpha, beta)
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
	if hashMove[0] == noMove8 && depth >= iidMinDepth {
		// internal iterative deepening
		s.pvsMidgame(alpha, beta, depth-2)
		hashMove = s.probeMoves(key)
	}

	var ml = &s.stack[s.height]
	s.generateMoves(ml)
	if ml.count == 0 {
		if othello.CanMove(s.board.Opponent, s.board.Player) {
			s.updatePassMidgame()
			var score = -s.pvsMidgame(-beta, -alpha, depth)
			s.restorePassMidgame()
			return score
		}
		return solveFinal(s.board.Player, s.nEmpties)
	}
	if ml.count > 1 {
		var sortDepth = s.sortDepthFor(depth, alpha, &hashEntry{}, false, nodePV)
		s.evaluateMoves(ml, hashMove, alpha, sortDepth)
		ml.sort()
	}

	var best, bestMove = s.searchMoves(ml, alpha, beta, depth, true)
	if s.stopped() {
		return alpha
	}
	var cost = costOf(s.nodes - n0)
	s.hash.store(key, depth, s.selectivity, cost, alpha0, beta0, best, bestMove)
	s.pvHash.store(key, depth, s.selectivity, cost, alpha0, beta0, best, bestMove)
	return best
}
