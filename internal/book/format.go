package book

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/othex/othex/pkg/othello"
)

const (
	fileMagic   = 0x4F58424B
	fileVersion = 1
)

var (
	ErrFileMagic   = errors.New("book: bad file magic")
	ErrFileVersion = errors.New("book: unsupported file version")
)

type fileHeader struct {
	Magic   uint32
	Version uint32
	Count   uint64
}

// fileRecord matches the 24 byte on-disk record layout.
type fileRecord struct {
	Player      uint64
	Opponent    uint64
	Move        int8
	Score       int16
	Depth       uint8
	Selectivity uint8
	_           [3]uint8
}

// Import reads a binary book file, a little endian header followed by
// fixed-size records, and merges every record into the store. Records
// for symmetry variants of the same position land on one key.
func (b *Book) Import(r io.Reader) (int, error) {
	var header fileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return 0, fmt.Errorf("read book header: %w", err)
	}
	if header.Magic != fileMagic {
		return 0, fmt.Errorf("%w: %#x", ErrFileMagic, header.Magic)
	}
	if header.Version != fileVersion {
		return 0, fmt.Errorf("%w: %d", ErrFileVersion, header.Version)
	}

	var n int
	for ; uint64(n) < header.Count; n++ {
		var rec fileRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return n, fmt.Errorf("read book record %d: %w", n, err)
		}
		var bd = othello.Board{Player: rec.Player, Opponent: rec.Opponent}
		if rec.Player&rec.Opponent != 0 {
			return n, fmt.Errorf("book record %d: overlapping discs", n)
		}
		if rec.Move < othello.SquareA1 || rec.Move > othello.SquareH8 ||
			bd.Moves()&othello.SquareMask[rec.Move] == 0 {
			return n, fmt.Errorf("book record %d: illegal move %d", n, rec.Move)
		}
		var err = b.Put(bd, Entry{
			Move:        int(rec.Move),
			Score:       int(rec.Score),
			Depth:       int(rec.Depth),
			Selectivity: int(rec.Selectivity),
		})
		if err != nil {
			return n, err
		}
	}
	// a trailing byte means the header count lied
	var tail [1]byte
	if _, err := io.ReadFull(r, tail[:]); err != io.EOF {
		return n, fmt.Errorf("book file: trailing data after %d records", n)
	}
	return n, nil
}

// ImportFile imports the book file at path.
func (b *Book) ImportFile(path string) (int, error) {
	var f, err = os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open book file: %w", err)
	}
	defer f.Close()

	var n int
	if n, err = b.Import(bufio.NewReader(f)); err != nil {
		return n, err
	}
	b.log.Info().Str("path", path).Int("records", n).Msg("book import done")
	return n, nil
}
