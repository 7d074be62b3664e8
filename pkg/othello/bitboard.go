package othello

import "math/bits"

const (
	FileAMask uint64 = 0x0101010101010101 << iota
	FileBMask
	FileCMask
	FileDMask
	FileEMask
	FileFMask
	FileGMask
	FileHMask
)

const (
	Rank1Mask uint64 = 0xFF << (8 * iota)
	Rank2Mask
	Rank3Mask
	Rank4Mask
	Rank5Mask
	Rank6Mask
	Rank7Mask
	Rank8Mask
)

const (
	CornerMask  uint64 = 0x8100000000000081
	InnerMask   uint64 = 0x007E7E7E7E7E7E00
	NotFileA    uint64 = ^FileAMask
	NotFileH    uint64 = ^FileHMask
	NotEdgeFile uint64 = ^(FileAMask | FileHMask)
)

var (
	SquareMask    [64]uint64
	neighbourMask [64]uint64
	diag7Mask     [64]uint64
	diag9Mask     [64]uint64
)

func PopCount(b uint64) int {
	return bits.OnesCount64(b)
}

func FirstOne(b uint64) int {
	return bits.TrailingZeros64(b)
}

func LastOne(b uint64) int {
	return 63 - bits.LeadingZeros64(b)
}

func MoreThanOne(b uint64) bool {
	return b != 0 && (b-1)&b != 0
}

func Up(b uint64) uint64 {
	return b << 8
}

func Down(b uint64) uint64 {
	return b >> 8
}

func Right(b uint64) uint64 {
	return (b & NotFileH) << 1
}

func Left(b uint64) uint64 {
	return (b & NotFileA) >> 1
}

func UpRight(b uint64) uint64 {
	return (b & NotFileH) << 9
}

func UpLeft(b uint64) uint64 {
	return (b & NotFileA) << 7
}

func DownRight(b uint64) uint64 {
	return (b & NotFileH) >> 7
}

func DownLeft(b uint64) uint64 {
	return (b & NotFileA) >> 9
}

// Neighbours returns the mask of the squares adjacent to sq.
func Neighbours(sq int) uint64 {
	return neighbourMask[sq]
}

func MirrorHorizontal(b uint64) uint64 {
	b = ((b >> 1) & 0x5555555555555555) | ((b & 0x5555555555555555) << 1)
	b = ((b >> 2) & 0x3333333333333333) | ((b & 0x3333333333333333) << 2)
	b = ((b >> 4) & 0x0F0F0F0F0F0F0F0F) | ((b & 0x0F0F0F0F0F0F0F0F) << 4)
	return b
}

func MirrorVertical(b uint64) uint64 {
	return bits.ReverseBytes64(b)
}

// Transpose mirrors the bitboard about the a1-h8 diagonal.
// https://www.chessprogramming.org/Flipping_Mirroring_and_Rotating
func Transpose(b uint64) uint64 {
	var t = 0x0F0F0F0F00000000 & (b ^ (b << 28))
	b ^= t ^ (t >> 28)
	t = 0x3333000033330000 & (b ^ (b << 14))
	b ^= t ^ (t >> 14)
	t = 0x5500550055005500 & (b ^ (b << 7))
	b ^= t ^ (t >> 7)
	return b
}

// packFileA gathers the file A bits of b into a single byte, rank 1 first.
func packFileA(b uint64) uint64 {
	return ((b & FileAMask) * 0x0102040810204080) >> 56
}

// packFile gathers the bits of file f into a byte.
func packFile(b uint64, f int) uint64 {
	return packFileA(b >> uint(f))
}

// unpackFileA spreads a byte back onto file A.
func unpackFileA(line uint64) uint64 {
	return ((line * 0x0102040810204080) & 0x8080808080808080) >> 7
}

// packDiag gathers a masked diagonal into a byte; each square lands on its
// file index, so the byte position of a square is its file.
func packDiag(b, mask uint64) uint64 {
	return ((b & mask) * FileAMask) >> 56
}

func init() {
	for sq := 0; sq < 64; sq++ {
		var b = uint64(1) << uint(sq)
		SquareMask[sq] = b
		neighbourMask[sq] = Up(b) | Down(b) | Left(b) | Right(b) |
			UpLeft(b) | UpRight(b) | DownLeft(b) | DownRight(b)

		var d7, d9 = b, b
		for x := b; x != 0; x = UpLeft(x) {
			d7 |= x
		}
		for x := b; x != 0; x = DownRight(x) {
			d7 |= x
		}
		for x := b; x != 0; x = UpRight(x) {
			d9 |= x
		}
		for x := b; x != 0; x = DownLeft(x) {
			d9 |= x
		}
		diag7Mask[sq] = d7
		diag9Mask[sq] = d9
	}
}
