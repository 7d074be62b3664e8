package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/othex/othex/pkg/engine"
	"github.com/othex/othex/pkg/eval"
	"github.com/othex/othex/pkg/othello"
)

// Config is populated from command line flags.
type Config struct {
	File        string
	Eval        string
	Depth       int
	HashMB      int
	Threads     int
	Concurrency int
	Random      int
	Seed        uint64
}

var config Config

type testItem struct {
	id      int
	board   othello.Board
	want    int
	hasWant bool
}

type testResult struct {
	item testItem
	info engine.SearchInfo
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flag.StringVar(&config.File, "file", "", "problem file, one position;score per line")
	flag.StringVar(&config.Eval, "eval", "", "evaluation weights file")
	flag.IntVar(&config.Depth, "depth", 60, "search depth limit")
	flag.IntVar(&config.HashMB, "hash", 64, "hash table size in MB per solver")
	flag.IntVar(&config.Threads, "threads", 1, "search threads per solver")
	flag.IntVar(&config.Concurrency, "concurrency", runtime.NumCPU(), "parallel solvers")
	flag.IntVar(&config.Random, "random", 0, "solve N random endgames instead of a suite")
	flag.Uint64Var(&config.Seed, "seed", 1, "random endgame seed")
	flag.Parse()

	var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	var weights = eval.Zero()
	if config.Eval != "" {
		var err error
		if weights, err = eval.LoadWeights(config.Eval); err != nil {
			return err
		}
	}

	var items, err = loadItems()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errors.New("empty problem suite")
	}
	log.Info().
		Int("positions", len(items)).
		Int("concurrency", config.Concurrency).
		Int("depth", config.Depth).
		Msg("bench started")

	var start = time.Now()
	var g, ctx = errgroup.WithContext(context.Background())
	var todo = make(chan testItem)
	var results = make(chan testResult)

	g.Go(func() error {
		defer close(todo)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case todo <- item:
			}
		}
		return nil
	})

	var wg = &sync.WaitGroup{}
	for i := 0; i < config.Concurrency; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return solvePositions(ctx, weights, todo, results)
		})
	}
	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	var done, solved, failed int
	var totalNodes int64
	g.Go(func() error {
		var ticker = time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				var elapsed = time.Since(start)
				log.Info().
					Int("done", done).
					Int64("nodes", totalNodes).
					Int64("nps", totalNodes*1000/(elapsed.Milliseconds()+1)).
					Msg("progress")
			case res, ok := <-results:
				if !ok {
					return nil
				}
				done++
				totalNodes += res.info.Nodes
				var verdict = ""
				if res.item.hasWant {
					if res.info.Score == res.item.want {
						solved++
						verdict = " ok"
					} else {
						failed++
						verdict = fmt.Sprintf(" want %+03d FAIL", res.item.want)
					}
				}
				fmt.Printf("%3d: best %v %+03d%s  %d nodes %v\n",
					res.item.id, othello.SquareName(res.info.Move), res.info.Score,
					verdict, res.info.Nodes, res.info.Time.Round(time.Millisecond))
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	var elapsed = time.Since(start)
	log.Info().
		Int("positions", done).
		Int("solved", solved).
		Int("failed", failed).
		Int64("nodes", totalNodes).
		Dur("time", elapsed).
		Int64("nps", totalNodes*1000/(elapsed.Milliseconds()+1)).
		Msg("bench finished")
	if failed > 0 {
		return fmt.Errorf("%d positions failed", failed)
	}
	return nil
}

func solvePositions(
	ctx context.Context,
	weights *eval.Weights,
	todo <-chan testItem,
	results chan<- testResult,
) error {
	var eng = engine.NewEngine()
	eng.Options.Threads = config.Threads
	eng.Options.HashMB = config.HashMB
	eng.Options.Depth = config.Depth
	eng.Options.Weights = weights
	defer eng.Close()

	for item := range todo {
		var info, err = eng.Solve(ctx, item.board)
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case results <- testResult{item: item, info: info}:
		}
	}
	return nil
}
