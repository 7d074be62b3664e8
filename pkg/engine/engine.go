package engine

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/othex/othex/pkg/eval"
	"github.com/othex/othex/pkg/othello"
)

var (
	ErrClosed       = errors.New("engine: closed")
	ErrInvalidBoard = errors.New("engine: player and opponent discs overlap")
)

// BookProber serves opening book probes. Probe returns a move and a
// score for the position, or ok false when the book has no entry.
type BookProber interface {
	Probe(b othello.Board) (move, score int, ok bool)
}

// Options control a search. Fields left zero take defaults, see NewEngine.
type Options struct {
	Threads      int
	HashMB       int
	Depth        int
	Selectivity  int
	MultiPV      int
	MoveTime     time.Duration
	MaxNodes     int64
	ProbcutDepth int
	Book         BookProber
	Weights      *eval.Weights
	Logger       zerolog.Logger
	Progress     func(SearchInfo)
}

// Engine searches Othello positions. Change Options between calls to
// Solve; changes take effect on the next call.
type Engine struct {
	Options Options

	opts    Options
	log     zerolog.Logger
	weights *eval.Weights

	hash       *HashTable
	pvHash     *HashTable
	searches   []*Search
	splitQueue chan *splitPoint
	idle       atomic.Int32
	wg         sync.WaitGroup

	stop       atomic.Bool
	totalNodes atomic.Int64
	nodeLimit  int64
	deadline   time.Time

	rootMoves []rootMove

	mu     sync.Mutex
	closed bool
}

func NewEngine() *Engine {
	return &Engine{
		Options: Options{
			Threads:      1,
			HashMB:       64,
			Depth:        60,
			Selectivity:  NoSelectivity,
			MultiPV:      1,
			ProbcutDepth: 9,
			Logger:       zerolog.Nop(),
		},
	}
}

func normalize(o Options) Options {
	if o.Threads < 1 {
		o.Threads = 1
	}
	if o.Threads > 64 {
		o.Threads = 64
	}
	if o.HashMB < 1 {
		o.HashMB = 1
	}
	if o.Depth < 1 {
		o.Depth = 1
	}
	if o.Depth > 60 {
		o.Depth = 60
	}
	if o.Selectivity < 0 {
		o.Selectivity = 0
	}
	if o.Selectivity > NoSelectivity {
		o.Selectivity = NoSelectivity
	}
	if o.MultiPV < 1 {
		o.MultiPV = 1
	}
	if o.MultiPV > maxMoves {
		o.MultiPV = maxMoves
	}
	if o.ProbcutDepth < 3 {
		o.ProbcutDepth = 3
	}
	if o.Weights == nil {
		o.Weights = eval.Zero()
	}
	return o
}

// Prepare allocates the hash tables and the worker pool ahead of the
// first Solve. Solve calls it as needed.
func (e *Engine) Prepare() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts = normalize(e.Options)
	e.prepareLocked()
}

func (e *Engine) prepareLocked() {
	if e.hash == nil || e.hash.Size() != e.opts.HashMB {
		if e.hash != nil {
			e.hash = nil
			e.pvHash = nil
			runtime.GC()
		}
		e.hash = NewHashTable(e.opts.HashMB)
		e.pvHash = NewHashTable(max(1, e.opts.HashMB/8))
		for _, s := range e.searches {
			s.hash = e.hash
			s.pvHash = e.pvHash
		}
	}
	if len(e.searches) != e.opts.Threads {
		e.stopWorkers()
		e.searches = make([]*Search, e.opts.Threads)
		for i := range e.searches {
			e.searches[i] = &Search{
				engine:  e,
				hash:    e.hash,
				pvHash:  e.pvHash,
				shallow: NewHashTable(1),
				stop:    &e.stop,
			}
		}
		e.splitQueue = make(chan *splitPoint, 128)
		for _, s := range e.searches[1:] {
			e.wg.Add(1)
			go e.worker(s)
		}
		e.idle.Store(int32(len(e.searches) - 1))
	}
}

func (e *Engine) stopWorkers() {
	if e.splitQueue != nil {
		close(e.splitQueue)
		e.wg.Wait()
		e.splitQueue = nil
	}
}

// Solve searches the position and reports its score and best move from
// the side to move. A position with no move for either side is scored
// as a finished game. Calls serialize; cancel ctx to stop a search
// early and get the last completed iteration.
func (e *Engine) Solve(ctx context.Context, b othello.Board) (SearchInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return SearchInfo{}, ErrClosed
	}
	if b.Player&b.Opponent != 0 {
		return SearchInfo{}, ErrInvalidBoard
	}
	var start = time.Now()
	e.opts = normalize(e.Options)
	e.log = e.opts.Logger
	e.weights = e.opts.Weights

	if e.opts.Book != nil {
		if move, score, ok := e.opts.Book.Probe(b); ok {
			return SearchInfo{
				Score: score,
				Move:  move,
				PV:    []int{move},
				Book:  true,
				Time:  time.Since(start),
			}, nil
		}
	}

	e.prepareLocked()
	e.stop.Store(false)
	e.totalNodes.Store(0)
	e.nodeLimit = e.opts.MaxNodes
	if e.opts.MoveTime > 0 {
		e.deadline = start.Add(e.opts.MoveTime)
	} else {
		e.deadline = time.Time{}
	}

	var watchDone = make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			e.stop.Store(true)
		case <-watchDone:
		}
	}()

	var nEmpties = othello.PopCount(b.Empties())
	if b.Moves() == 0 {
		var passed = b
		passed.Pass()
		if passed.Moves() == 0 {
			return SearchInfo{
				Depth:       nEmpties,
				Selectivity: NoSelectivity,
				Score:       solveFinal(b.Player, nEmpties),
				Move:        othello.NoMove,
				Time:        time.Since(start),
			}, nil
		}
		for _, s := range e.searches {
			s.prepare(passed, e.weights)
		}
		var info = e.runSearch(passed, start)
		info.Score = -info.Score
		info.Move = othello.Pass
		info.PV = append([]int{othello.Pass}, info.PV...)
		for i := range info.Lines {
			info.Lines[i].Score = -info.Lines[i].Score
			info.Lines[i].PV = append([]int{othello.Pass}, info.Lines[i].PV...)
		}
		return info, nil
	}

	for _, s := range e.searches {
		s.prepare(b, e.weights)
	}
	return e.runSearch(b, start), nil
}

// observe enforces the node and time limits. Called from the searches
// every thousand nodes or so.
func (e *Engine) observe() {
	if e.stop.Load() {
		return
	}
	if e.nodeLimit > 0 && e.totalNodes.Load() >= e.nodeLimit {
		e.stop.Store(true)
		return
	}
	if !e.deadline.IsZero() && time.Now().After(e.deadline) {
		e.stop.Store(true)
	}
}

// Nodes reports the node count of the last search.
func (e *Engine) Nodes() int64 {
	return e.totalNodes.Load()
}

// Clear empties the hash tables. Use it between unrelated games.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hash != nil {
		e.hash.Clear()
	}
	if e.pvHash != nil {
		e.pvHash.Clear()
	}
	for _, s := range e.searches {
		s.shallow.Clear()
	}
}

// Close releases the worker pool. The engine cannot search afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.stopWorkers()
}
