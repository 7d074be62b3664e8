package othello

// slideMoves finds the legal squares reachable from p over runs of m discs
// along one axis, in both shift directions. Parallel prefix handles runs up
// to six discs, the longest possible on an eight square line.
func slideMoves(p, m uint64, n uint) uint64 {
	var flip = m & (p << n)
	flip |= m & (flip << n)
	var pre = m & (m << n)
	flip |= pre & (flip << (2 * n))
	flip |= pre & (flip << (2 * n))
	var moves = flip << n

	flip = m & (p >> n)
	flip |= m & (flip >> n)
	pre = m & (m >> n)
	flip |= pre & (flip >> (2 * n))
	flip |= pre & (flip >> (2 * n))
	moves |= flip >> n

	return moves
}

// GetMoves returns the bitboard of legal moves for the player to move.
func GetMoves(player, opponent uint64) uint64 {
	var inner = opponent & NotEdgeFile
	var moves = slideMoves(player, inner, 1) |
		slideMoves(player, opponent, 8) |
		slideMoves(player, inner, 7) |
		slideMoves(player, inner, 9)
	return moves &^ (player | opponent)
}

func CanMove(player, opponent uint64) bool {
	return GetMoves(player, opponent) != 0
}

func rayFlipLeft(bit, m uint64, n uint) uint64 {
	var flip = m & (bit << n)
	flip |= m & (flip << n)
	var pre = m & (m << n)
	flip |= pre & (flip << (2 * n))
	flip |= pre & (flip << (2 * n))
	return flip
}

func rayFlipRight(bit, m uint64, n uint) uint64 {
	var flip = m & (bit >> n)
	flip |= m & (flip >> n)
	var pre = m & (m >> n)
	flip |= pre & (flip >> (2 * n))
	flip |= pre & (flip >> (2 * n))
	return flip
}

// Flip returns the discs flipped when the player to move plays sq.
// The result is zero when the move is illegal, and does not include sq.
func Flip(player, opponent uint64, sq int) uint64 {
	var bit = SquareMask[sq]
	var inner = opponent & NotEdgeFile
	var flipped uint64

	var f = rayFlipLeft(bit, inner, 1)
	if (f<<1)&player != 0 {
		flipped |= f
	}
	f = rayFlipRight(bit, inner, 1)
	if (f>>1)&player != 0 {
		flipped |= f
	}
	f = rayFlipLeft(bit, opponent, 8)
	if (f<<8)&player != 0 {
		flipped |= f
	}
	f = rayFlipRight(bit, opponent, 8)
	if (f>>8)&player != 0 {
		flipped |= f
	}
	f = rayFlipLeft(bit, inner, 7)
	if (f<<7)&player != 0 {
		flipped |= f
	}
	f = rayFlipRight(bit, inner, 7)
	if (f>>7)&player != 0 {
		flipped |= f
	}
	f = rayFlipLeft(bit, inner, 9)
	if (f<<9)&player != 0 {
		flipped |= f
	}
	f = rayFlipRight(bit, inner, 9)
	if (f>>9)&player != 0 {
		flipped |= f
	}

	return flipped
}

// potentialMoves returns the empty squares adjacent to an opponent disc.
func potentialMoves(player, opponent uint64) uint64 {
	var spread = Up(opponent) | Down(opponent) | Left(opponent) | Right(opponent) |
		UpLeft(opponent) | UpRight(opponent) | DownLeft(opponent) | DownRight(opponent)
	return spread &^ (player | opponent)
}

// weightedCount counts the set bits of b with corners counted twice.
func weightedCount(b uint64) int {
	return PopCount(b) + PopCount(b&CornerMask)
}

func GetMobility(player, opponent uint64) int {
	return PopCount(GetMoves(player, opponent))
}

func GetWeightedMobility(player, opponent uint64) int {
	return weightedCount(GetMoves(player, opponent))
}

func GetPotentialMobility(player, opponent uint64) int {
	return weightedCount(potentialMoves(player, opponent))
}

// Perft counts the positions reachable in depth moves. A forced pass does
// not consume depth; a finished game counts as a single leaf.
func Perft(player, opponent uint64, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var moves = GetMoves(player, opponent)
	if moves == 0 {
		if CanMove(opponent, player) {
			return Perft(opponent, player, depth)
		}
		return 1
	}
	var nodes uint64
	for ; moves != 0; moves &= moves - 1 {
		var sq = FirstOne(moves)
		var flipped = Flip(player, opponent, sq)
		nodes += Perft(opponent^flipped, player^(flipped|SquareMask[sq]), depth-1)
	}
	return nodes
}
