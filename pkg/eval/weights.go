package eval

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	// WeightsPerPly is the summed size of the thirteen shape tables.
	WeightsPerPly = 226315
	// NPly is the number of weight blocks, one per move of the game.
	NPly = 61

	weightsMagic   = 0xED4AED4A
	weightsVersion = 1
)

var (
	ErrWeightsMagic   = errors.New("eval: bad weights magic")
	ErrWeightsVersion = errors.New("eval: unsupported weights version")
	ErrWeightsSize    = errors.New("eval: bad weights size")
)

// Weights holds one block of pattern weights per game ply, in 1/128 of
// a disc. Block p scores positions with 60-p empty squares.
type Weights struct {
	plies [NPly][]int16
}

// Ply selects the weight block for a position with nEmpties empties.
// The two earliest plies have no trained weights and borrow from two
// plies later.
func (w *Weights) Ply(nEmpties int) []int16 {
	var ply = 60 - nEmpties
	if ply < 2 {
		ply += 2
	}
	return w.plies[ply]
}

// Zero returns weights that score every position as a draw, a usable
// fallback when no weight file is available.
func Zero() *Weights {
	var w = &Weights{}
	var block = make([]int16, WeightsPerPly)
	for i := range w.plies {
		w.plies[i] = block
	}
	return w
}

type weightsHeader struct {
	Magic   uint32
	Version uint32
	NPly    uint32
}

// ReadWeights parses a weight file: a little endian header and NPly
// blocks of WeightsPerPly int16 values.
func ReadWeights(r io.Reader) (*Weights, error) {
	var header weightsHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read weights header: %w", err)
	}
	if header.Magic != weightsMagic {
		return nil, fmt.Errorf("%w: %#x", ErrWeightsMagic, header.Magic)
	}
	if header.Version != weightsVersion {
		return nil, fmt.Errorf("%w: %d", ErrWeightsVersion, header.Version)
	}
	if header.NPly != NPly {
		return nil, fmt.Errorf("%w: %d ply blocks", ErrWeightsSize, header.NPly)
	}

	var w = &Weights{}
	var buf = make([]byte, 2*WeightsPerPly)
	for p := 0; p < NPly; p++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read weights block %d: %w", p, err)
		}
		var block = make([]int16, WeightsPerPly)
		for i := range block {
			block[i] = int16(binary.LittleEndian.Uint16(buf[2*i:]))
		}
		w.plies[p] = block
	}
	// a trailing byte means the file does not match the format
	if n, _ := r.Read(buf[:1]); n != 0 {
		return nil, fmt.Errorf("%w: trailing data", ErrWeightsSize)
	}
	return w, nil
}

// LoadWeights reads a weight file from disk, transparently decompressing
// files with a .zst suffix.
func LoadWeights(path string) (*Weights, error) {
	var f, err = os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weights: %w", err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReaderSize(f, 1<<20)
	if strings.HasSuffix(path, ".zst") {
		var dec *zstd.Decoder
		dec, err = zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	return ReadWeights(r)
}
