package othello

// edgeStability maps an edge configuration, eight player bits and eight
// opponent bits, to the player discs on that edge that can never be
// flipped whatever is played.
var edgeStability [256 * 256]uint8

// edgeFlip returns the discs flipped on an eight square line when the
// side holding p plays x.
func edgeFlip(p, o uint8, x int) uint8 {
	var flipped, f uint8
	for i := x - 1; i >= 0; i-- {
		var bit = uint8(1) << uint(i)
		if o&bit != 0 {
			f |= bit
			continue
		}
		if p&bit != 0 {
			flipped |= f
		}
		break
	}
	f = 0
	for i := x + 1; i < 8; i++ {
		var bit = uint8(1) << uint(i)
		if o&bit != 0 {
			f |= bit
			continue
		}
		if p&bit != 0 {
			flipped |= f
		}
		break
	}
	return flipped
}

// A disc is edge stable when it survives every way of filling the line,
// with either side placing on any empty square, flipping or not. The
// table is filled from full lines down so child entries are ready.
func init() {
	for discs := 8; discs >= 0; discs-- {
		for p := 0; p < 256; p++ {
			for o := 0; o < 256; o++ {
				if p&o != 0 || PopCount(uint64(p|o)) != discs {
					continue
				}
				var stable = uint8(p)
				for x := 0; x < 8 && stable != 0; x++ {
					var bit = 1 << uint(x)
					if (p|o)&bit != 0 {
						continue
					}
					var fl = int(edgeFlip(uint8(p), uint8(o), x))
					stable &= edgeStability[(p|fl|bit)*256+(o&^fl)]
					fl = int(edgeFlip(uint8(o), uint8(p), x))
					stable &= edgeStability[(p&^fl)*256+(o|fl|bit)]
				}
				edgeStability[p*256+o] = stable
			}
		}
	}
}

// edgeStable gathers the stable discs of the four board edges from the
// edge table, packing files A and H into bytes for the lookup.
func edgeStable(p, o uint64) uint64 {
	var stable = uint64(edgeStability[(p&0xFF)*256+(o&0xFF)])
	stable |= uint64(edgeStability[(p>>56)*256+(o>>56)]) << 56
	stable |= unpackFileA(uint64(edgeStability[packFileA(p)*256+packFileA(o)]))
	stable |= unpackFileA(uint64(edgeStability[packFile(p, 7)*256+packFile(o, 7)])) << 7
	return stable
}

func fullHorizontal(disc uint64) uint64 {
	disc &= disc >> 4
	disc &= disc >> 2
	disc &= disc >> 1
	disc &= FileAMask
	return disc * 0xFF
}

func fullVertical(disc uint64) uint64 {
	disc &= disc >> 32
	disc &= disc >> 16
	disc &= disc >> 8
	disc &= 0xFF
	return disc * FileAMask
}

// fullDiag7 marks the squares whose a8-h1 diagonal is completely
// occupied, spreading the empties along the diagonal and complementing.
func fullDiag7(disc uint64) uint64 {
	var e = ^disc
	e |= ((e << 7) & 0x7F7F7F7F7F7F7F00) | ((e >> 7) & 0x00FEFEFEFEFEFEFE)
	e |= ((e << 14) & 0x3F3F3F3F3F3F0000) | ((e >> 14) & 0x0000FCFCFCFCFCFC)
	e |= ((e << 28) & 0x0F0F0F0F00000000) | ((e >> 28) & 0x00000000F0F0F0F0)
	return ^e
}

func fullDiag9(disc uint64) uint64 {
	var e = ^disc
	e |= ((e << 9) & 0xFEFEFEFEFEFEFE00) | ((e >> 9) & 0x007F7F7F7F7F7F7F)
	e |= ((e << 18) & 0xFCFCFCFCFCFC0000) | ((e >> 18) & 0x00003F3F3F3F3F3F)
	e |= ((e << 36) & 0xF0F0F0F000000000) | ((e >> 36) & 0x000000000F0F0F0F)
	return ^e
}

// StableDiscs returns the player discs that can never be flipped again.
// The mask is a lower bound: edge discs are exact, interior discs are
// grown from full lines and already stable neighbours to a fixpoint.
func StableDiscs(player, opponent uint64) uint64 {
	var disc = player | opponent
	var central = player & InnerMask
	var fullH = fullHorizontal(disc)
	var fullV = fullVertical(disc)
	var fullD7 = fullDiag7(disc)
	var fullD9 = fullDiag9(disc)

	var stable = edgeStable(player, opponent)
	stable |= fullH & fullV & fullD7 & fullD9 & central
	for {
		var old = stable
		var stableH = (old >> 1) | (old << 1) | fullH
		var stableV = (old >> 8) | (old << 8) | fullV
		var stableD7 = (old >> 7) | (old << 7) | fullD7
		var stableD9 = (old >> 9) | (old << 9) | fullD9
		stable |= stableH & stableV & stableD7 & stableD9 & central
		if stable == old {
			return stable
		}
	}
}

// GetStability counts the player discs that can never be flipped.
func GetStability(player, opponent uint64) int {
	return PopCount(StableDiscs(player, opponent))
}

// CornerStability counts the player discs in corners and beside an
// owned corner along an edge, a cheap lower bound used in move sorting.
func CornerStability(player uint64) int {
	var stable = ((((0x0100000000000001 & player) << 1) |
		((0x8000000000000080 & player) >> 1) |
		((0x0000000000000081 & player) << 8) |
		((0x8100000000000000 & player) >> 8) |
		0x8100000000000081) & player)
	return PopCount(stable)
}
