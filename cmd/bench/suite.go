package main

import (
	"bufio"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"lukechampine.com/frand"

	"github.com/othex/othex/internal/random"
	"github.com/othex/othex/pkg/othello"
)

//go:embed problems.txt
var problemsTxt string

func loadItems() ([]testItem, error) {
	if config.Random > 0 {
		return randomItems(config.Random, config.Seed), nil
	}
	if config.File != "" {
		var f, err = os.Open(config.File)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return parseItems(bufio.NewScanner(f))
	}
	return parseItems(bufio.NewScanner(strings.NewReader(problemsTxt)))
}

// parseItems reads one position per line, 64 squares and the side to
// move, optionally followed by ";score" with the exact result.
func parseItems(scanner *bufio.Scanner) ([]testItem, error) {
	var items []testItem
	var lineNo int
	for scanner.Scan() {
		lineNo++
		var line = strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var text, scoreText, hasWant = strings.Cut(line, ";")
		var bd, _, err = othello.ParseBoard(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		var item = testItem{id: len(items) + 1, board: bd}
		if hasWant {
			var want, werr = strconv.Atoi(strings.TrimSpace(scoreText))
			if werr != nil {
				return nil, fmt.Errorf("line %d: bad score: %w", lineNo, werr)
			}
			item.want, item.hasWant = want, true
		}
		items = append(items, item)
	}
	return items, scanner.Err()
}

// randomItems deals pseudo games to a late middlegame and keeps the
// resulting positions. The seed makes runs repeatable.
func randomItems(count int, seed uint64) []testItem {
	var rng = random.New(seed)
	var items []testItem
	for len(items) < count {
		var bd, ok = randomEndgame(rng, 16+rng.Intn(5))
		if !ok {
			continue
		}
		items = append(items, testItem{id: len(items) + 1, board: bd})
	}
	return items
}

func randomEndgame(rng *frand.RNG, empties int) (othello.Board, bool) {
	var bd = othello.NewBoard()
	for othello.PopCount(bd.Empties()) > empties {
		var moves = bd.Moves()
		if moves == 0 {
			if othello.GetMoves(bd.Opponent, bd.Player) == 0 {
				return bd, false
			}
			bd.Pass()
			continue
		}
		for k := rng.Intn(othello.PopCount(moves)); k > 0; k-- {
			moves &= moves - 1
		}
		var mv, _ = bd.MakeMove(othello.FirstOne(moves))
		bd.Update(&mv)
	}
	return bd, true
}
