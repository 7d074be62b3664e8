package eval

import "github.com/othex/othex/pkg/othello"

// Eval carries the 47 pattern values of a position, always from the
// side to move. A move updates the touched patterns and then reorients
// every pattern with the digit swap tables; undoing a move applies the
// inverse in the opposite order.
type Eval struct {
	features [NFeatures]uint16
}

// Set recomputes every pattern value from the board.
func (e *Eval) Set(b *othello.Board) {
	for f := range features {
		var v = uint16(0)
		for _, sq := range features[f].squares {
			var digit = uint16(2)
			var bit = othello.SquareMask[sq]
			if b.Player&bit != 0 {
				digit = 0
			} else if b.Opponent&bit != 0 {
				digit = 1
			}
			v = 3*v + digit
		}
		e.features[f] = v
	}
}

func (e *Eval) swapAll() {
	for f := range e.features {
		e.features[f] = features[f].swap[e.features[f]]
	}
}

// Update applies the move sq with its flipped discs. The played square
// goes from empty to own disc, each flipped square from opponent disc
// to own disc, then the perspective swaps to the new side to move.
func (e *Eval) Update(sq int, flipped uint64) {
	for _, p := range x2f[sq] {
		e.features[p.feature] -= 2 * p.delta
	}
	for f := flipped; f != 0; f &= f - 1 {
		for _, p := range x2f[othello.FirstOne(f)] {
			e.features[p.feature] -= p.delta
		}
	}
	e.swapAll()
}

// Restore undoes a matching Update.
func (e *Eval) Restore(sq int, flipped uint64) {
	e.swapAll()
	for _, p := range x2f[sq] {
		e.features[p.feature] += 2 * p.delta
	}
	for f := flipped; f != 0; f &= f - 1 {
		for _, p := range x2f[othello.FirstOne(f)] {
			e.features[p.feature] += p.delta
		}
	}
}

// Pass swaps the perspective without touching any square.
func (e *Eval) Pass() {
	e.swapAll()
}

// Score evaluates the position with one ply block of weights, in discs
// from the side to move, rounded away from zero and clamped one inside
// the game bounds so exact scores stay distinguishable.
func (e *Eval) Score(w []int16) int {
	var sum = 0
	for f := range e.features {
		sum += int(w[features[f].offset+int32(e.features[f])])
	}
	if sum >= 0 {
		sum = (sum + 64) / 128
	} else {
		sum = -((-sum + 64) / 128)
	}
	if sum < othello.ScoreMin+1 {
		sum = othello.ScoreMin + 1
	} else if sum > othello.ScoreMax-1 {
		sum = othello.ScoreMax - 1
	}
	return sum
}
