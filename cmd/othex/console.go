package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/othex/othex/pkg/engine"
	"github.com/othex/othex/pkg/othello"
)

// Console is a line oriented front end in the spirit of the classic
// Othello shells: one command per line, board diagrams and search
// results on stdout.
type Console struct {
	eng  *engine.Engine
	book engine.BookProber

	positions []position
	thinking  bool
	playBest  bool
	output    chan engine.SearchInfo
	cancel    context.CancelFunc
	result    engine.SearchInfo
	haveInfo  bool
	searchErr error
}

type position struct {
	board       othello.Board
	blackToMove bool
}

func NewConsole(eng *engine.Engine, book engine.BookProber) *Console {
	return &Console{
		eng:       eng,
		book:      book,
		positions: []position{{othello.NewBoard(), true}},
	}
}

func (c *Console) Run() error {
	var commands = make(chan string)
	go func() {
		defer close(commands)
		var scanner = bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			var line = scanner.Text()
			if strings.TrimSpace(line) == "quit" {
				return
			}
			commands <- line
		}
	}()

	c.printPosition()
	for {
		select {
		case si, ok := <-c.output:
			if ok {
				fmt.Println(searchInfoLine(si))
				c.result, c.haveInfo = si, true
			} else {
				c.searchDone()
			}
		case line, ok := <-commands:
			if !ok {
				c.stop()
				return nil
			}
			if err := c.handle(line); err != nil {
				fmt.Println("error:", err)
			}
		}
	}
}

func (c *Console) handle(line string) error {
	var fields = strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	var name = strings.ToLower(fields[0])
	fields = fields[1:]

	if c.thinking {
		if name == "stop" {
			c.stop()
			return nil
		}
		return errors.New("search still running")
	}

	var h func(fields []string) error
	switch name {
	case "init", "new":
		h = c.initCommand
	case "setboard":
		h = c.setboardCommand
	case "fen":
		h = c.fenCommand
	case "play":
		h = c.playCommand
	case "undo":
		h = c.undoCommand
	case "go":
		h = c.goCommand
	case "solve":
		h = c.solveCommand
	case "hint":
		h = c.hintCommand
	case "stop":
		return nil
	case "level":
		h = c.levelCommand
	case "threads":
		h = c.threadsCommand
	case "hash":
		h = c.hashCommand
	case "book":
		h = c.bookCommand
	case "perft":
		h = c.perftCommand
	case "display", "d":
		h = c.displayCommand
	case "help":
		h = c.helpCommand
	}
	if h == nil {
		return fmt.Errorf("unknown command %q", name)
	}
	return h(fields)
}

func (c *Console) current() position {
	return c.positions[len(c.positions)-1]
}

func (c *Console) stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Console) initCommand(fields []string) error {
	c.positions = c.positions[:1]
	c.positions[0] = position{othello.NewBoard(), true}
	c.eng.Clear()
	c.printPosition()
	return nil
}

func (c *Console) setboardCommand(fields []string) error {
	var bd, blackToMove, err = othello.ParseBoard(strings.Join(fields, " "))
	if err != nil {
		return err
	}
	c.positions = []position{{bd, blackToMove}}
	c.printPosition()
	return nil
}

func (c *Console) fenCommand(fields []string) error {
	if len(fields) == 0 {
		var cur = c.current()
		fmt.Println(cur.board.FEN(cur.blackToMove))
		return nil
	}
	var bd, blackToMove, err = othello.ParseFEN(strings.Join(fields, " "))
	if err != nil {
		return err
	}
	c.positions = []position{{bd, blackToMove}}
	c.printPosition()
	return nil
}

func (c *Console) playCommand(fields []string) error {
	var squares []int
	for _, f := range fields {
		for len(f) >= 2 {
			var sq, err = othello.ParseSquare(f[:2])
			if err != nil {
				return err
			}
			squares = append(squares, sq)
			f = f[2:]
		}
		if len(f) != 0 {
			return fmt.Errorf("bad move %q", f)
		}
	}
	for _, sq := range squares {
		if err := c.applyMove(sq); err != nil {
			return err
		}
	}
	c.printPosition()
	return nil
}

func (c *Console) applyMove(sq int) error {
	var cur = c.current()
	var bd = cur.board
	if sq == othello.Pass {
		if bd.Moves() != 0 {
			return errors.New("pass with moves available")
		}
		bd.Pass()
	} else {
		var mv, ok = bd.MakeMove(sq)
		if !ok {
			return fmt.Errorf("illegal move %v", othello.SquareName(sq))
		}
		bd.Update(&mv)
	}
	c.positions = append(c.positions, position{bd, !cur.blackToMove})
	return nil
}

func (c *Console) undoCommand(fields []string) error {
	if len(c.positions) > 1 {
		c.positions = c.positions[:len(c.positions)-1]
	}
	c.printPosition()
	return nil
}

func (c *Console) goCommand(fields []string) error {
	return c.startSearch(true, 1)
}

func (c *Console) solveCommand(fields []string) error {
	return c.startSearch(false, 1)
}

func (c *Console) hintCommand(fields []string) error {
	var n = 3
	if len(fields) > 0 {
		var v, err = strconv.Atoi(fields[0])
		if err != nil {
			return err
		}
		n = v
	}
	return c.startSearch(false, n)
}

func (c *Console) startSearch(playBest bool, multiPV int) error {
	var cur = c.current()
	var ctx, cancel = context.WithCancel(context.Background())
	c.cancel = cancel
	c.thinking = true
	c.playBest = playBest
	c.haveInfo = false
	c.searchErr = nil
	c.output = make(chan engine.SearchInfo, 8)

	var out = c.output
	c.eng.Options.MultiPV = multiPV
	c.eng.Options.Progress = func(si engine.SearchInfo) {
		select {
		case out <- si:
		default:
		}
	}
	go func(bd othello.Board) {
		var info, err = c.eng.Solve(ctx, bd)
		if err != nil {
			c.searchErr = err
		} else {
			out <- info
		}
		close(out)
	}(cur.board)
	return nil
}

func (c *Console) searchDone() {
	c.thinking = false
	c.cancel = nil
	c.output = nil
	if c.searchErr != nil {
		fmt.Println("error:", c.searchErr)
		c.searchErr = nil
		return
	}
	if !c.haveInfo {
		return
	}
	var si = c.result
	if len(si.Lines) > 1 {
		for i, line := range si.Lines {
			fmt.Printf("%2d: %v %+03d  pv %v\n",
				i+1, othello.SquareName(line.Move), line.Score, pvString(line.PV))
		}
	}
	var tag = ""
	if si.Book {
		tag = " (book)"
	}
	fmt.Printf("best %v %+03d%s\n", othello.SquareName(si.Move), si.Score, tag)
	if c.playBest && si.Move != othello.NoMove {
		if err := c.applyMove(si.Move); err == nil {
			c.printPosition()
		}
	}
}

func (c *Console) levelCommand(fields []string) error {
	if len(fields) == 0 {
		fmt.Println("level", c.eng.Options.Depth)
		return nil
	}
	var v, err = strconv.Atoi(fields[0])
	if err != nil {
		return err
	}
	if v < 0 || v > 60 {
		return fmt.Errorf("level %d out of range", v)
	}
	c.eng.Options.Depth = v
	return nil
}

func (c *Console) threadsCommand(fields []string) error {
	if len(fields) == 0 {
		fmt.Println("threads", c.eng.Options.Threads)
		return nil
	}
	var v, err = strconv.Atoi(fields[0])
	if err != nil {
		return err
	}
	c.eng.Options.Threads = v
	return nil
}

func (c *Console) hashCommand(fields []string) error {
	if len(fields) == 0 {
		fmt.Println("hash", c.eng.Options.HashMB, "MB")
		return nil
	}
	var v, err = strconv.Atoi(fields[0])
	if err != nil {
		return err
	}
	c.eng.Options.HashMB = v
	return nil
}

func (c *Console) bookCommand(fields []string) error {
	if len(fields) == 0 {
		if c.eng.Options.Book != nil {
			fmt.Println("book on")
		} else {
			fmt.Println("book off")
		}
		return nil
	}
	switch strings.ToLower(fields[0]) {
	case "on":
		if c.book == nil {
			return errors.New("no book loaded, start with -book")
		}
		c.eng.Options.Book = c.book
	case "off":
		c.eng.Options.Book = nil
	default:
		return fmt.Errorf("book %q, want on or off", fields[0])
	}
	return nil
}

func (c *Console) perftCommand(fields []string) error {
	var depth = 5
	if len(fields) > 0 {
		var v, err = strconv.Atoi(fields[0])
		if err != nil {
			return err
		}
		depth = v
	}
	var cur = c.current()
	var start = time.Now()
	var nodes = othello.Perft(cur.board.Player, cur.board.Opponent, depth)
	var elapsed = time.Since(start)
	fmt.Printf("perft %d: %d leaves in %v\n", depth, nodes, elapsed.Round(time.Millisecond))
	return nil
}

func (c *Console) displayCommand(fields []string) error {
	c.printPosition()
	return nil
}

func (c *Console) helpCommand(fields []string) error {
	fmt.Print(`commands:
  init                reset to the starting position
  setboard <pos>      set a position, 64 squares then the side to move
  fen [fen]           print or set the position as FEN
  play <moves>        play one or more moves, PA to pass
  undo                take back the last move
  go                  search and play the best move
  solve               search without playing
  hint [n]            show the n best moves
  stop                stop a running search
  level [n]           print or set the search depth
  threads [n]         print or set the number of threads
  hash [mb]           print or set the hash size
  book [on|off]       toggle opening book probes
  perft [n]           count move sequences of length n
  display             print the board
  quit                exit
`)
	return nil
}

func (c *Console) printPosition() {
	var cur = c.current()
	fmt.Print(cur.board.Diagram(cur.blackToMove))
	var black, white = cur.board.Player, cur.board.Opponent
	if !cur.blackToMove {
		black, white = white, black
	}
	var side = "X"
	if !cur.blackToMove {
		side = "O"
	}
	fmt.Printf("X %d  O %d  empties %d  %s to move\n",
		othello.PopCount(black), othello.PopCount(white),
		othello.PopCount(cur.board.Empties()), side)
}

func searchInfoLine(si engine.SearchInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "depth %2d", si.Depth)
	if si.Selectivity < engine.NoSelectivity {
		fmt.Fprintf(&sb, "@%d%%", engine.SelectivityPercent(si.Selectivity))
	}
	fmt.Fprintf(&sb, " score %+03d", si.Score)
	var ms = si.Time.Milliseconds()
	fmt.Fprintf(&sb, " nodes %d time %v nps %d",
		si.Nodes, si.Time.Round(time.Millisecond), si.Nodes*1000/(ms+1))
	if len(si.PV) != 0 {
		sb.WriteString(" pv ")
		sb.WriteString(pvString(si.PV))
	}
	return sb.String()
}

func pvString(pv []int) string {
	var sb strings.Builder
	for i, sq := range pv {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(othello.SquareName(sq))
	}
	return sb.String()
}
