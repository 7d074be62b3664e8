package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/othex/othex/internal/book"
	"github.com/othex/othex/pkg/engine"
	"github.com/othex/othex/pkg/eval"
)

const name = "othex"

var versionName = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		flgConfig  = flag.String("config", "", "JSON configuration file")
		flgEval    = flag.String("eval", "", "evaluation weights file, .zst accepted")
		flgBook    = flag.String("book", "", "opening book directory")
		flgThreads = flag.Int("threads", 1, "number of search threads")
		flgHash    = flag.Int("hash", 64, "hash table size in MB")
		flgDepth   = flag.Int("depth", 21, "search depth limit")
		flgVerbose = flag.Bool("v", false, "verbose engine logging")
	)
	flag.Parse()

	var cfg = DefaultConfig()
	if *flgConfig != "" {
		if err := cfg.Load(*flgConfig); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "eval":
			cfg.EvalFile = *flgEval
		case "book":
			cfg.BookDir = *flgBook
		case "threads":
			cfg.Threads = *flgThreads
		case "hash":
			cfg.HashMB = *flgHash
		case "depth":
			cfg.Depth = *flgDepth
		case "v":
			cfg.Verbose = *flgVerbose
		}
	})

	var level = zerolog.WarnLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	log.Info().
		Str("version", versionName).
		Str("go", runtime.Version()).
		Int("cpus", runtime.NumCPU()).
		Msg(name)

	var weights *eval.Weights
	if cfg.EvalFile == "" {
		log.Warn().Msg("no weights file, using the zero evaluator")
		weights = eval.Zero()
	} else {
		var err error
		if weights, err = eval.LoadWeights(cfg.EvalFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		log.Info().Str("path", cfg.EvalFile).Msg("weights loaded")
	}

	var prober engine.BookProber
	if cfg.BookDir != "" {
		var bk, err = book.Open(book.Config{
			Dir:    cfg.BookDir,
			Margin: cfg.BookMargin,
			Logger: log,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		defer bk.Close()
		prober = bk
	}

	var eng = engine.NewEngine()
	eng.Options.Threads = cfg.Threads
	eng.Options.HashMB = cfg.HashMB
	eng.Options.Depth = cfg.Depth
	eng.Options.Selectivity = cfg.Selectivity
	eng.Options.ProbcutDepth = cfg.ProbcutDepth
	eng.Options.Weights = weights
	eng.Options.Logger = log
	eng.Options.Book = prober
	defer eng.Close()

	fmt.Printf("%s %s\n", name, versionName)
	if err := NewConsole(eng, prober).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
