// Command book maintains an opening book store: import binary book
// files, dump the stored lines, show statistics.
//
//	book -dir DIR import FILE...
//	book -dir DIR dump
//	book -dir DIR stats
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/othex/othex/internal/book"
	"github.com/othex/othex/pkg/othello"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(1)
		}
		os.Exit(2)
	}
}

var errUsage = errors.New("usage: book -dir DIR {import FILE...|dump|stats}")

func run() error {
	var (
		flgDir   = flag.String("dir", "", "book store directory")
		flgQuiet = flag.Bool("q", false, "suppress store logging")
	)
	flag.Parse()
	if *flgDir == "" || flag.NArg() == 0 {
		return errUsage
	}

	var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()
	if *flgQuiet {
		log = zerolog.Nop()
	}

	var bk, err = book.Open(book.Config{Dir: *flgDir, Logger: log})
	if err != nil {
		return err
	}
	defer bk.Close()

	switch flag.Arg(0) {
	case "import":
		if flag.NArg() < 2 {
			return errUsage
		}
		return importFiles(bk, flag.Args()[1:])
	case "dump":
		return dump(bk)
	case "stats":
		return stats(bk)
	}
	return errUsage
}

// importFiles reads every file concurrently; the store serializes the
// writes itself.
func importFiles(bk *book.Book, paths []string) error {
	var g errgroup.Group
	g.SetLimit(4)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			var n, err = bk.ImportFile(path)
			if err != nil {
				return fmt.Errorf("%s after %d records: %w", path, n, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func dump(bk *book.Book) error {
	return bk.Each(func(pos othello.Board, entries []book.Entry) error {
		fmt.Println(pos.Format(true))
		for _, e := range entries {
			fmt.Printf("  %v %+03d depth %d\n",
				othello.SquareName(e.Move), e.Score, e.Depth)
		}
		return nil
	})
}

func stats(bk *book.Book) error {
	var positions, moves, err = bk.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("positions %d\nmoves     %d\n", positions, moves)
	return nil
}
