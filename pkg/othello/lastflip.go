package othello

// countFlip holds, for a square position on a line and the eight player
// bits of that line, twice the number of discs the player flips by
// playing there. Counts are doubled because a flip moves the disc
// difference by two.
var countFlip [8][256]uint8

func init() {
	for x := 0; x < 8; x++ {
		for line := 0; line < 256; line++ {
			var n = 0
			for i := x - 1; i >= 0; i-- {
				if line&(1<<uint(i)) != 0 {
					n += x - 1 - i
					break
				}
			}
			for i := x + 1; i < 8; i++ {
				if line&(1<<uint(i)) != 0 {
					n += i - x - 1
					break
				}
			}
			countFlip[x][line] = uint8(2 * n)
		}
	}
}

// CountLastFlip returns twice the number of discs the player flips by
// playing sq, summing the rank, file and both diagonals through sq.
// The caller guarantees sq is empty.
func CountLastFlip(player uint64, sq int) int {
	var x = File(sq)
	var n = int(countFlip[x][(player>>uint(sq&0x38))&0xFF])
	n += int(countFlip[Rank(sq)][packFile(player, x)])
	n += int(countFlip[x][packDiag(player, diag7Mask[sq])])
	n += int(countFlip[x][packDiag(player, diag9Mask[sq])])
	return n
}
