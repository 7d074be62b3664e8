// Package book implements a persistent opening book on top of Badger.
//
// Positions are stored under their canonical symmetry variant, so all
// eight rotations and reflections of an opening line share one record.
// Moves are mapped through the canonicalizing transform on the way in
// and back out on the way to the caller.
package book

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"github.com/othex/othex/internal/random"
	"github.com/othex/othex/pkg/othello"
)

// maxMoves is the number of moves kept per position, best scores first.
const maxMoves = 4

const keyPrefix = "b:"

// Entry is one evaluated book move.
type Entry struct {
	Move        int
	Score       int
	Depth       int
	Selectivity int
}

// Config configures a book store.
type Config struct {
	Dir    string
	Margin int            // Probe accepts moves scoring within Margin of the best
	Seed   uint64         // tie-break randomness, 0 selects a fixed default
	Logger zerolog.Logger // zerolog.Nop() silences the store
}

// Book is a Badger-backed opening book. It is safe for concurrent use.
type Book struct {
	db     *badger.DB
	log    zerolog.Logger
	margin int

	mu  sync.Mutex
	rng *frand.RNG
}

// Open opens or creates a book store in dir.
func Open(cfg Config) (*Book, error) {
	var opts = badger.DefaultOptions(cfg.Dir)
	opts.Logger = nil

	var db, err = badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("book: open %s: %w", cfg.Dir, err)
	}
	var seed = cfg.Seed
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	var b = &Book{
		db:     db,
		log:    cfg.Logger,
		margin: cfg.Margin,
		rng:    random.New(seed),
	}
	b.log.Info().Str("dir", cfg.Dir).Msg("book opened")
	return b, nil
}

// Close flushes and closes the store.
func (b *Book) Close() error {
	b.log.Info().Msg("book closed")
	return b.db.Close()
}

// Put merges one evaluated move into the book. A deeper result replaces
// a shallower one for the same move; otherwise the old entry stands.
func (b *Book) Put(bd othello.Board, e Entry) error {
	if e.Move < othello.SquareA1 || e.Move > othello.SquareH8 {
		return fmt.Errorf("book: bad move %d", e.Move)
	}
	var u, s = bd.UniqueTransform()
	e.Move = othello.TransformSquare(e.Move, s)
	var key = positionKey(u)

	// Badger aborts overlapping read-modify-write transactions on the
	// same key, so concurrent imports of a shared position retry here.
	for {
		var err = b.db.Update(func(txn *badger.Txn) error {
			var entries []Entry
			var item, err = txn.Get(key)
			if err == nil {
				err = item.Value(func(val []byte) error {
					entries, err = decodeEntries(val)
					return err
				})
			}
			if err != nil && err != badger.ErrKeyNotFound {
				return err
			}
			return txn.Set(key, encodeEntries(mergeEntry(entries, e)))
		})
		if err != badger.ErrConflict {
			return err
		}
	}
}

// Get returns the stored moves for a position in the position's own
// orientation, best score first. A missing position yields a nil slice.
func (b *Book) Get(bd othello.Board) ([]Entry, error) {
	var u, s = bd.UniqueTransform()
	var key = positionKey(u)

	var entries []Entry
	var err = b.db.View(func(txn *badger.Txn) error {
		var item, err = txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entries, err = decodeEntries(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Move = othello.InverseTransformSquare(entries[i].Move, s)
	}
	return entries, nil
}

// Probe looks the position up and picks a move among the entries
// scoring within Margin of the best, at random so repeated games vary
// their openings. Entries that are not legal in the position are
// ignored, which guards against foreign or stale book files.
func (b *Book) Probe(bd othello.Board) (move, score int, ok bool) {
	var entries, err = b.Get(bd)
	if err != nil {
		b.log.Warn().Err(err).Msg("book probe failed")
		return 0, 0, false
	}
	var moves = bd.Moves()
	var legal []Entry
	for _, e := range entries {
		if moves&othello.SquareMask[e.Move] != 0 {
			legal = append(legal, e)
		}
	}
	if len(legal) == 0 {
		return 0, 0, false
	}
	var n = 1
	for n < len(legal) && legal[n].Score >= legal[0].Score-b.margin {
		n++
	}
	var pick = 0
	if n > 1 {
		b.mu.Lock()
		pick = b.rng.Intn(n)
		b.mu.Unlock()
	}
	return legal[pick].Move, legal[pick].Score, true
}

// Each calls fn for every stored position in key order. Positions and
// moves are in the canonical orientation.
func (b *Book) Each(fn func(pos othello.Board, entries []Entry) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		var it = txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		var prefix = []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var item = it.Item()
			var pos, ok = keyPosition(item.Key())
			if !ok {
				continue
			}
			var entries []Entry
			if err := item.Value(func(val []byte) error {
				var derr error
				entries, derr = decodeEntries(val)
				return derr
			}); err != nil {
				return err
			}
			if err := fn(pos, entries); err != nil {
				return err
			}
		}
		return nil
	})
}

// Stats counts stored positions and moves.
func (b *Book) Stats() (positions, moves int, err error) {
	err = b.Each(func(_ othello.Board, entries []Entry) error {
		positions++
		moves += len(entries)
		return nil
	})
	return positions, moves, err
}

func mergeEntry(entries []Entry, e Entry) []Entry {
	for i, old := range entries {
		if old.Move != e.Move {
			continue
		}
		if old.Depth > e.Depth ||
			(old.Depth == e.Depth && old.Selectivity >= e.Selectivity) {
			return entries
		}
		entries[i] = e
		sortEntries(entries)
		return entries
	}
	entries = append(entries, e)
	sortEntries(entries)
	if len(entries) > maxMoves {
		entries = entries[:maxMoves]
	}
	return entries
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Depth > entries[j].Depth
	})
}

func positionKey(u othello.Board) []byte {
	var key = make([]byte, len(keyPrefix)+16)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[2:], u.Player)
	binary.BigEndian.PutUint64(key[10:], u.Opponent)
	return key
}

func keyPosition(key []byte) (othello.Board, bool) {
	if len(key) != len(keyPrefix)+16 || string(key[:2]) != keyPrefix {
		return othello.Board{}, false
	}
	return othello.Board{
		Player:   binary.BigEndian.Uint64(key[2:]),
		Opponent: binary.BigEndian.Uint64(key[10:]),
	}, true
}

// value layout: count byte, then 5 bytes per move.
func encodeEntries(entries []Entry) []byte {
	var buf = make([]byte, 1+5*len(entries))
	buf[0] = uint8(len(entries))
	for i, e := range entries {
		var rec = buf[1+5*i:]
		rec[0] = uint8(int8(e.Move))
		binary.LittleEndian.PutUint16(rec[1:], uint16(int16(e.Score)))
		rec[3] = uint8(e.Depth)
		rec[4] = uint8(e.Selectivity)
	}
	return buf
}

func decodeEntries(val []byte) ([]Entry, error) {
	if len(val) == 0 || len(val) != 1+5*int(val[0]) {
		return nil, fmt.Errorf("book: bad record size %d", len(val))
	}
	var entries = make([]Entry, val[0])
	for i := range entries {
		var rec = val[1+5*i:]
		entries[i] = Entry{
			Move:        int(int8(rec[0])),
			Score:       int(int16(binary.LittleEndian.Uint16(rec[1:]))),
			Depth:       int(rec[3]),
			Selectivity: int(rec[4]),
		}
		if entries[i].Move < othello.SquareA1 || entries[i].Move > othello.SquareH8 {
			return nil, fmt.Errorf("book: bad move %d in record", entries[i].Move)
		}
	}
	return entries, nil
}
