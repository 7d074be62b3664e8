package engine

import (
	"sync"

	"github.com/othex/othex/pkg/eval"
	"github.com/othex/othex/pkg/othello"
)

// searchState is the part of a Search that a helper must copy before it can
// continue someone else's node.
type searchState struct {
	board        othello.Board
	eval         eval.Eval
	empties      othello.EmptyList
	nEmpties     int
	parity       uint8
	height       int
	selectivity  int
	probcutLevel int
	nodeType     uint8
}

func (s *Search) snapshot(st *searchState) {
	st.board = s.board
	st.eval = s.eval
	st.empties = s.empties
	st.nEmpties = s.nEmpties
	st.parity = s.parity
	st.height = s.height
	st.selectivity = s.selectivity
	st.probcutLevel = s.probcutLevel
	st.nodeType = s.nodeTypes[s.height]
}

func (s *Search) loadState(st *searchState) {
	s.board = st.board
	s.eval = st.eval
	s.empties = st.empties
	s.nEmpties = st.nEmpties
	s.parity = st.parity
	s.height = st.height
	s.selectivity = st.selectivity
	s.probcutLevel = st.probcutLevel
	s.nodeTypes[st.height] = st.nodeType
}

// splitPoint shares the remaining moves of one node between the owning search
// and any idle helpers. The first move has already been searched sequentially,
// so every searcher here runs with a null window first.
type splitPoint struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state searchState

	ml     *moveList
	next   int
	alpha  int
	beta   int
	depth  int
	pvNode bool

	best     int
	bestMove int

	running int
	helpers []*Search
	stopped bool
	done    bool
}

func (sp *splitPoint) pull() (*moveEntry, int, bool) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.stopped || sp.done || sp.next >= sp.ml.count {
		return nil, 0, false
	}
	m := &sp.ml.moves[sp.next]
	sp.next++
	return m, sp.alpha, true
}

func (sp *splitPoint) record(w *Search, move int, score int) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.stopped || w.stopped() {
		return
	}
	if score > sp.best {
		sp.best = score
		sp.bestMove = move
	}
	if score > sp.alpha {
		if score >= sp.beta {
			sp.stopped = true
			for _, h := range sp.helpers {
				h.stopSelf.Store(true)
			}
			return
		}
		sp.alpha = score
	}
}

// searchSplitMove runs one move taken from a split point. The caller has
// already applied loadState (helpers) or owns the state (master).
func (w *Search) searchSplitMove(sp *splitPoint, m *moveEntry, alpha int) int {
	var childType uint8 = nodeAll
	if sp.pvNode || sp.state.nodeType == nodeAll {
		childType = nodeCut
	}
	w.nodeTypes[w.height+1] = childType

	w.updateMidgame(&m.Move)
	var score = -w.nwsMidgame(-alpha-1, sp.depth-1)
	if sp.pvNode && score > alpha && score < sp.beta && !w.stopped() {
		sp.mu.Lock()
		var a = sp.alpha
		sp.mu.Unlock()
		if score > a {
			w.nodeTypes[w.height] = nodePV
			score = -w.pvsMidgame(-sp.beta, -a, sp.depth-1)
		}
	}
	w.restoreMidgame(&m.Move)
	return score
}

// searchMoves searches a sorted move list. The first move is always searched
// by the owner; the rest may be shared with idle helpers when the node is deep
// enough. Returns the best score and move, fail-soft.
func (s *Search) searchMoves(ml *moveList, alpha, beta, depth int, pvNode bool) (int, int) {
	var parentType = s.nodeTypes[s.height]
	var best = -scoreInf
	var bestMove = int(othello.NoMove)

	var m = &ml.moves[0]
	var childType uint8 = nodeAll
	if pvNode {
		childType = nodePV
	} else if parentType == nodeAll {
		childType = nodeCut
	}
	s.nodeTypes[s.height+1] = childType
	s.updateMidgame(&m.Move)
	var score int
	if pvNode {
		score = -s.pvsMidgame(-beta, -alpha, depth-1)
	} else {
		score = -s.nwsMidgame(-alpha-1, depth-1)
	}
	s.restoreMidgame(&m.Move)
	if s.stopped() {
		return best, bestMove
	}
	best, bestMove = score, m.X
	if best >= beta {
		return best, bestMove
	}
	if best > alpha {
		alpha = best
	}
	if ml.count == 1 {
		return best, bestMove
	}

	if depth >= splitMinDepth && s.engine.idle.Load() > 0 {
		return s.splitSearch(ml, alpha, beta, depth, pvNode, best, bestMove)
	}

	for i := 1; i < ml.count; i++ {
		m = &ml.moves[i]
		childType = nodeAll
		if pvNode || parentType == nodeAll {
			childType = nodeCut
		}
		s.nodeTypes[s.height+1] = childType
		s.updateMidgame(&m.Move)
		score = -s.nwsMidgame(-alpha-1, depth-1)
		if pvNode && score > alpha && score < beta && !s.stopped() {
			s.nodeTypes[s.height] = nodePV
			score = -s.pvsMidgame(-beta, -alpha, depth-1)
		}
		s.restoreMidgame(&m.Move)
		if s.stopped() {
			return best, bestMove
		}
		if score > best {
			best, bestMove = score, m.X
			if best >= beta {
				return best, bestMove
			}
			if best > alpha {
				alpha = best
			}
		}
	}
	return best, bestMove
}

func (s *Search) splitSearch(ml *moveList, alpha, beta, depth int, pvNode bool, best, bestMove int) (int, int) {
	var sp = &splitPoint{
		ml:       ml,
		next:     1,
		alpha:    alpha,
		beta:     beta,
		depth:    depth,
		pvNode:   pvNode,
		best:     best,
		bestMove: bestMove,
	}
	sp.cond = sync.NewCond(&sp.mu)
	s.snapshot(&sp.state)
	s.engine.offerSplit(sp, ml.count-1)

	for {
		m, a, ok := sp.pull()
		if !ok || s.stopped() {
			break
		}
		var score = s.searchSplitMove(sp, m, a)
		sp.record(s, m.X, score)
	}
	s.joinSplit(sp)
	return sp.best, sp.bestMove
}

// joinSplit waits for every helper to leave the split point before the owner
// may unwind its stack.
func (s *Search) joinSplit(sp *splitPoint) {
	sp.mu.Lock()
	if s.stopped() && !sp.stopped {
		sp.stopped = true
		for _, h := range sp.helpers {
			h.stopSelf.Store(true)
		}
	}
	for sp.running > 0 {
		sp.cond.Wait()
	}
	sp.done = true
	sp.mu.Unlock()
}

// helpSplit attaches an idle search to a split point and works its moves.
func (w *Search) helpSplit(sp *splitPoint) {
	w.stopSelf.Store(false)
	sp.mu.Lock()
	if sp.done || sp.stopped || sp.next >= sp.ml.count {
		sp.mu.Unlock()
		return
	}
	sp.running++
	sp.helpers = append(sp.helpers, w)
	sp.mu.Unlock()

	w.loadState(&sp.state)
	for {
		m, a, ok := sp.pull()
		if !ok || w.stop.Load() {
			break
		}
		var score = w.searchSplitMove(sp, m, a)
		sp.record(w, m.X, score)
	}
	w.flushNodes()

	sp.mu.Lock()
	sp.running--
	for i, h := range sp.helpers {
		if h == w {
			sp.helpers[i] = sp.helpers[len(sp.helpers)-1]
			sp.helpers = sp.helpers[:len(sp.helpers)-1]
			break
		}
	}
	if sp.running == 0 {
		sp.cond.Broadcast()
	}
	sp.mu.Unlock()
}

func (e *Engine) worker(w *Search) {
	defer e.wg.Done()
	for sp := range e.splitQueue {
		e.idle.Add(-1)
		w.helpSplit(sp)
		e.idle.Add(1)
	}
}

// offerSplit publishes a split point to at most min(idle, moves) helpers.
// Sends never block; a busy queue just means the owner searches alone.
func (e *Engine) offerSplit(sp *splitPoint, moves int) {
	var n = int(e.idle.Load())
	if moves < n {
		n = moves
	}
	for i := 0; i < n; i++ {
		select {
		case e.splitQueue <- sp:
		default:
			return
		}
	}
}
