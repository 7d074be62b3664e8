package engine

import (
	"sort"
	"time"

	"github.com/othex/othex/pkg/othello"
)

// SearchInfo reports the result of a search. When delivered through
// Options.Progress it describes the last completed depth/selectivity stage.
type SearchInfo struct {
	Depth       int
	Selectivity int
	Score       int
	Move        int
	PV          []int
	Nodes       int64
	Time        time.Duration
	Book        bool
	Lines       []RootLine
}

// RootLine is one root move with its score and principal variation.
// Lines is filled only when Options.MultiPV is above one.
type RootLine struct {
	Move  int
	Score int
	PV    []int
}

type rootMove struct {
	move  othello.Move
	score int
}

// runSearch drives iterative deepening on the master search. Shallow
// iterations run with the coarsest selectivity; exact solves escalate
// selectivity at the final depth until the requested level is reached.
func (e *Engine) runSearch(b othello.Board, start time.Time) SearchInfo {
	var master = e.searches[0]
	e.rootMoves = e.rootMoves[:0]
	for bb := b.Moves(); bb != 0; bb &= bb - 1 {
		var x = othello.FirstOne(bb)
		e.rootMoves = append(e.rootMoves, rootMove{
			move: othello.Move{X: x, Flipped: othello.Flip(b.Player, b.Opponent, x)},
		})
	}

	var nEmpties = master.nEmpties
	var targetDepth = e.opts.Depth
	var exact = targetDepth >= nEmpties
	if exact {
		targetDepth = nEmpties
	}

	type stage struct{ depth, selectivity int }
	var stages []stage
	for d := 2 + (targetDepth & 1); d < targetDepth; d += 2 {
		stages = append(stages, stage{d, 0})
	}
	if exact {
		var sel = 0
		if targetDepth < e.opts.ProbcutDepth {
			// no pruning can trigger below this depth, solve once
			sel = e.opts.Selectivity
		}
		for ; sel <= e.opts.Selectivity; sel++ {
			stages = append(stages, stage{targetDepth, sel})
		}
	} else {
		stages = append(stages, stage{targetDepth, e.opts.Selectivity})
	}

	var info SearchInfo
	var prevScore int
	var havePrev = false
	for _, st := range stages {
		master.selectivity = st.selectivity
		var score, move = e.aspiration(master, st.depth, prevScore, havePrev)
		if e.stop.Load() {
			// the interrupted stage is discarded, info keeps the last
			// completed one
			break
		}
		prevScore, havePrev = score, true
		master.flushNodes()
		info = e.collectInfo(b, st.depth, st.selectivity, score, move, start)
		if e.opts.Progress != nil {
			e.opts.Progress(info)
		}
		e.log.Info().
			Int("depth", st.depth).
			Int("selectivity", SelectivityPercent(st.selectivity)).
			Int("score", score).
			Str("move", othello.SquareName(info.Move)).
			Int64("nodes", info.Nodes).
			Dur("time", info.Time).
			Msg("iteration")
	}

	if !havePrev {
		// stopped inside the first stage, fall back to any legal move
		info.Move = e.rootMoves[0].move.X
		info.PV = []int{info.Move}
	}
	master.flushNodes()
	info.Nodes = e.totalNodes.Load()
	info.Time = time.Since(start)
	return info
}

// aspiration searches depth with a window centered on the previous
// iteration score, widening exponentially on failure.
func (e *Engine) aspiration(s *Search, depth, prevScore int, havePrev bool) (int, int) {
	if !havePrev || depth < 5 {
		return e.rootSearch(s, othello.ScoreMin, othello.ScoreMax, depth)
	}
	var delta = 1
	var alpha = max(othello.ScoreMin, prevScore-delta)
	var beta = min(othello.ScoreMax, prevScore+delta)
	for {
		var score, move = e.rootSearch(s, alpha, beta, depth)
		if e.stop.Load() {
			return score, move
		}
		if score <= alpha && alpha > othello.ScoreMin {
			alpha = max(othello.ScoreMin, score-delta)
		} else if score >= beta && beta < othello.ScoreMax {
			beta = min(othello.ScoreMax, score+delta)
		} else {
			return score, move
		}
		delta *= 2
	}
}

// rootSearch runs PVS over the root moves, previous-iteration order.
// The first MultiPV moves get full windows and exact scores; later
// moves must beat the weakest of the current best lines. The best move
// is tracked here rather than recovered from the score sort, because a
// fail-low bound can tie the best score without being the best move.
func (e *Engine) rootSearch(s *Search, alpha, beta, depth int) (int, int) {
	sort.SliceStable(e.rootMoves, func(i, j int) bool {
		return e.rootMoves[i].score > e.rootMoves[j].score
	})
	var multi = e.opts.MultiPV
	var best = -scoreInf
	var bestMove = e.rootMoves[0].move.X
	var top []int
	for i := range e.rootMoves {
		var rm = &e.rootMoves[i]
		s.nodeTypes[0] = nodePV
		var childType uint8 = nodeCut
		if i < multi {
			childType = nodePV
		}
		s.nodeTypes[1] = childType
		s.updateMidgame(&rm.move)
		var score int
		if i < multi {
			score = -s.pvsMidgame(-beta, -alpha, depth-1)
		} else {
			score = -s.nwsMidgame(-alpha-1, depth-1)
			if score > alpha && score < beta && !s.stopped() {
				s.nodeTypes[1] = nodePV
				score = -s.pvsMidgame(-beta, -alpha, depth-1)
			}
		}
		s.restoreMidgame(&rm.move)
		if s.stopped() {
			break
		}
		rm.score = score
		if score > best {
			best = score
			bestMove = rm.move.X
		}
		top = insertTop(top, score, multi)
		if len(top) == multi && top[multi-1] > alpha {
			alpha = top[multi-1]
		}
	}
	return best, bestMove
}

// insertTop keeps the n best scores sorted descending.
func insertTop(top []int, score, n int) []int {
	var i = len(top)
	top = append(top, score)
	for i > 0 && top[i-1] < score {
		top[i] = top[i-1]
		i--
	}
	top[i] = score
	if len(top) > n {
		top = top[:n]
	}
	return top
}

func (e *Engine) collectInfo(b othello.Board, depth, selectivity, score, move int, start time.Time) SearchInfo {
	sort.SliceStable(e.rootMoves, func(i, j int) bool {
		return e.rootMoves[i].score > e.rootMoves[j].score
	})
	for i := range e.rootMoves {
		if e.rootMoves[i].move.X != move || i == 0 {
			continue
		}
		var rm = e.rootMoves[i]
		copy(e.rootMoves[1:i+1], e.rootMoves[:i])
		e.rootMoves[0] = rm
		break
	}
	var info = SearchInfo{
		Depth:       depth,
		Selectivity: selectivity,
		Score:       score,
		Move:        e.rootMoves[0].move.X,
		Nodes:       e.totalNodes.Load(),
		Time:        time.Since(start),
	}
	info.PV = e.extractPV(b, info.Move)
	if e.opts.MultiPV > 1 {
		var n = min(e.opts.MultiPV, len(e.rootMoves))
		for i := 0; i < n; i++ {
			var rm = &e.rootMoves[i]
			info.Lines = append(info.Lines, RootLine{
				Move:  rm.move.X,
				Score: rm.score,
				PV:    e.extractPV(b, rm.move.X),
			})
		}
	}
	return info
}

// extractPV rebuilds the best line by walking the hash tables from the
// root. The line stops at the first position the tables no longer know.
func (e *Engine) extractPV(b othello.Board, first int) []int {
	var pv = []int{first}
	m, ok := b.MakeMove(first)
	if !ok {
		return pv
	}
	b.Update(&m)
	for len(pv) < 64 {
		if b.Moves() == 0 {
			var passed = b
			passed.Pass()
			if passed.Moves() == 0 {
				break
			}
			pv = append(pv, othello.Pass)
			b.Pass()
			continue
		}
		var key = b.Hash()
		he, hit := e.pvHash.probe(key)
		if !hit || he.move[0] == noMove8 {
			he, hit = e.hash.probe(key)
		}
		if !hit || he.move[0] == noMove8 {
			break
		}
		m, ok = b.MakeMove(int(he.move[0]))
		if !ok {
			break
		}
		pv = append(pv, m.X)
		b.Update(&m)
	}
	return pv
}
