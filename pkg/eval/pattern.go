// Package eval scores positions with ply indexed pattern weights. Each
// pattern is a fixed list of squares read as a ternary number, one digit
// per square: 0 for a disc of the side to move, 1 for an opponent disc,
// 2 for an empty. Symmetric variants of a shape share one weight table.
package eval

import (
	"strings"

	"github.com/othex/othex/pkg/othello"
)

// NFeatures is the number of pattern instances evaluated per position,
// eleven shapes in four symmetric variants each, the two long diagonals,
// and a constant term.
const NFeatures = 47

type patternShape struct {
	size     int    // squares per instance
	variants string // square lists, one instance per line
}

// The order of shapes fixes the weight file layout, and the order of
// squares inside an instance fixes its ternary digit positions, most
// significant first.
var patternShapes = []patternShape{
	{9, `a1 b1 a2 b2 c1 a3 c2 b3 c3
		h1 g1 h2 g2 f1 h3 f2 g3 f3
		a8 b8 a7 b7 c8 a6 c7 b6 c6
		h8 g8 h7 g7 f8 h6 f7 g6 f6`},
	{10, `a5 a4 a3 a2 a1 b1 c1 d1 e1 b2
		h5 h4 h3 h2 h1 g1 f1 e1 d1 g2
		a4 a5 a6 a7 a8 b8 c8 d8 e8 b7
		h4 h5 h6 h7 h8 g8 f8 e8 d8 g7`},
	{10, `b2 a1 b1 c1 d1 e1 f1 g1 h1 g2
		b7 a8 b8 c8 d8 e8 f8 g8 h8 g7
		b2 a1 a2 a3 a4 a5 a6 a7 a8 b7
		g2 h1 h2 h3 h4 h5 h6 h7 h8 g7`},
	{10, `a1 c1 d1 c2 d2 e2 f2 e1 f1 h1
		a8 c8 d8 c7 d7 e7 f7 e8 f8 h8
		a1 a3 a4 b3 b4 b5 b6 a5 a6 a8
		h1 h3 h4 g3 g4 g5 g6 h5 h6 h8`},
	{8, `a2 b2 c2 d2 e2 f2 g2 h2
		a7 b7 c7 d7 e7 f7 g7 h7
		b1 b2 b3 b4 b5 b6 b7 b8
		g1 g2 g3 g4 g5 g6 g7 g8`},
	{8, `a3 b3 c3 d3 e3 f3 g3 h3
		a6 b6 c6 d6 e6 f6 g6 h6
		c1 c2 c3 c4 c5 c6 c7 c8
		f1 f2 f3 f4 f5 f6 f7 f8`},
	{8, `a4 b4 c4 d4 e4 f4 g4 h4
		a5 b5 c5 d5 e5 f5 g5 h5
		d1 d2 d3 d4 d5 d6 d7 d8
		e1 e2 e3 e4 e5 e6 e7 e8`},
	{8, `a1 b2 c3 d4 e5 f6 g7 h8
		a8 b7 c6 d5 e4 f3 g2 h1`},
	{7, `b1 c2 d3 e4 f5 g6 h7
		h2 g3 f4 e5 d6 c7 b8
		a2 b3 c4 d5 e6 f7 g8
		g1 f2 e3 d4 c5 b6 a7`},
	{6, `c1 d2 e3 f4 g5 h6
		a3 b4 c5 d6 e7 f8
		f1 e2 d3 c4 b5 a6
		h3 g4 f5 e6 d7 c8`},
	{5, `d1 e2 f3 g4 h5
		a4 b5 c6 d7 e8
		e1 d2 c3 b4 a5
		h4 g5 f6 e7 d8`},
	{4, `e1 f2 g3 h4
		a5 b6 c7 d8
		d1 c2 b3 a4
		h5 g6 f7 e8`},
	{0, ``},
}

var pow3 = [11]uint16{1, 3, 9, 27, 81, 243, 729, 2187, 6561, 19683, 59049}

type featureInfo struct {
	squares []int
	offset  int32
	swap    []uint16
}

type featurePart struct {
	feature uint8
	delta   uint16 // ternary digit weight of the square in this feature
}

var (
	features [NFeatures]featureInfo
	x2f      [64][]featurePart
	// swap01 maps every pattern value to the value with digits 0 and 1
	// exchanged, one table per pattern size
	swap01 [11][]uint16
)

func buildSwap(size int) []uint16 {
	var n = int(pow3[size])
	var table = make([]uint16, n)
	for v := 0; v < n; v++ {
		var swapped, rest, weight = 0, v, 1
		for j := 0; j < size; j++ {
			var digit = rest % 3
			rest /= 3
			if digit < 2 {
				digit = 1 - digit
			}
			swapped += digit * weight
			weight *= 3
		}
		table[v] = uint16(swapped)
	}
	return table
}

func init() {
	for _, shape := range patternShapes {
		if swap01[shape.size] == nil {
			swap01[shape.size] = buildSwap(shape.size)
		}
	}

	var f, offset = 0, int32(0)
	for _, shape := range patternShapes {
		var variants = []string{""}
		if shape.size > 0 {
			variants = strings.Split(shape.variants, "\n")
		}
		for _, line := range variants {
			var info = &features[f]
			info.offset = offset
			info.swap = swap01[shape.size]
			for j, name := range strings.Fields(line) {
				var sq, err = othello.ParseSquare(name)
				if err != nil {
					panic(err)
				}
				info.squares = append(info.squares, sq)
				x2f[sq] = append(x2f[sq], featurePart{
					feature: uint8(f),
					delta:   pow3[shape.size-1-j],
				})
			}
			f++
		}
		offset += int32(pow3[shape.size])
	}
	if f != NFeatures || offset != WeightsPerPly {
		panic("pattern tables are inconsistent")
	}
}
