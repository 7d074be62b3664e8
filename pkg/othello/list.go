package othello

// ListEnd terminates iteration over an EmptyList.
const ListEnd = 64

// EmptyList is an intrusive doubly linked list of the empty squares,
// threaded through fixed arrays in the order the caller supplies.
// Removal keeps the links of the removed node, so undoing moves in
// reverse order relinks each node in place.
type EmptyList struct {
	next  [65]int8
	prev  [65]int8
	count int
}

func (l *EmptyList) Init(squares []int) {
	var last = ListEnd
	for _, sq := range squares {
		l.next[last] = int8(sq)
		l.prev[sq] = int8(last)
		last = sq
	}
	l.next[last] = ListEnd
	l.prev[ListEnd] = int8(last)
	l.count = len(squares)
}

func (l *EmptyList) First() int {
	return int(l.next[ListEnd])
}

func (l *EmptyList) Next(sq int) int {
	return int(l.next[sq])
}

func (l *EmptyList) Count() int {
	return l.count
}

func (l *EmptyList) Remove(sq int) {
	l.next[l.prev[sq]] = l.next[sq]
	l.prev[l.next[sq]] = l.prev[sq]
	l.count--
}

func (l *EmptyList) Restore(sq int) {
	l.next[l.prev[sq]] = int8(sq)
	l.prev[l.next[sq]] = int8(sq)
	l.count++
}
