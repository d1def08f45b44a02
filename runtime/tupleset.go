package runtime

import "errors"

const (
	// notInUse marks an unoccupied slot. -1 is also kept out of the value
	// domain so callers can keep it for their own sentinel conventions.
	notInUse int64 = -2

	loadFactor = 0.75
)

const (
	slotEmpty = iota
	valueFound
	continueProbing
)

var (
	ErrNotPowerOfTwo   = errors.New("tupleset: initial capacity must be a power of 2")
	ErrZeroWidth       = errors.New("tupleset: tuple width must be larger than 0")
	ErrWrongTupleWidth = errors.New("tupleset: all tuples in the set must have the same width")
	ErrReservedValue   = errors.New("tupleset: magic values -1 and -2 not allowed in tuples")
)

// TupleSet is a set of fixed-width tuples of int64 ids, e.g. composite
// node/relationship keys. All state lives in a single []int64 buffer, with
// unused slots marked by -2, a value never used for entity ids. The table
// grows when the load factor reaches 75% and never shrinks.
//
// The word "offset" below means an index into the buffer, and "slot" is a
// number that multiplied by the tuple width gives the offset.
//
// A TupleSet has a single logical owner; there is no internal locking.
type TupleSet struct {
	table *table
	width int
}

// NewTupleSet returns an empty set for tuples of `width` int64 elements.
// initialCapacity must be a power of 2 and width must be at least 1; both are
// caller contracts and violating them panics.
func NewTupleSet(initialCapacity, width int) *TupleSet {
	if initialCapacity < 1 || initialCapacity&(initialCapacity-1) != 0 {
		panic(ErrNotPowerOfTwo)
	}
	if width < 1 {
		panic(ErrZeroWidth)
	}
	return &TupleSet{
		width: width,
		table: newTable(initialCapacity, width),
	}
}

// Add inserts a tuple into the set. It returns true if the tuple was added
// and false if it already existed.
func (s *TupleSet) Add(value []int64) bool {
	s.validValue(value)
	slot := s.slotFor(value)
	for {
		if s.table.inner[slot*s.width] == notInUse {
			if s.table.timeToResize() {
				// The tuple has to go in, but there is no room left.
				s.resize()
				// Linear probing restarts from the new home slot.
				slot = s.slotFor(value)
				continue
			}
			s.table.setValue(slot, value)
			return true
		}
		if s.table.checkSlot(slot, value) == valueFound {
			return false
		}
		slot = (slot + 1) & s.table.tableMask
	}
}

// Contains reports whether the tuple is in the set. It never modifies the set.
func (s *TupleSet) Contains(value []int64) bool {
	s.validValue(value)
	slot := s.slotFor(value)
	for {
		switch s.table.checkSlot(slot, value) {
		case slotEmpty:
			return false
		case valueFound:
			return true
		}
		slot = (slot + 1) & s.table.tableMask
	}
}

// Len returns the number of tuples in the set.
func (s *TupleSet) Len() int {
	return s.table.numberOfEntries
}

// Width returns the number of elements per tuple.
func (s *TupleSet) Width() int {
	return s.width
}

// Capacity returns the number of tuple slots currently allocated.
func (s *TupleSet) Capacity() int {
	return s.table.capacity
}

func (s *TupleSet) validValue(value []int64) {
	if len(value) != s.width {
		panic(ErrWrongTupleWidth)
	}
	for _, v := range value {
		if v == -1 || v == -2 {
			panic(ErrReservedValue)
		}
	}
}

func (s *TupleSet) slotFor(value []int64) int {
	return int(hashCode(value, 0, s.width)) & s.table.tableMask
}

func (s *TupleSet) resize() {
	oldCapacity := s.table.capacity
	src := s.table.inner

	// Rehashing moves entries around but never adds or removes any.
	dst := newTable(oldCapacity*2, s.width)
	dst.numberOfEntries = s.table.numberOfEntries

	for fromOffset := 0; fromOffset < oldCapacity*s.width; fromOffset += s.width {
		if src[fromOffset] == notInUse {
			continue
		}
		toSlot := int(hashCode(src, fromOffset, s.width)) & dst.tableMask
		// Probe until an unused slot turns up. No load checks here, the
		// doubled table already has the headroom.
		for dst.inner[toSlot*s.width] != notInUse {
			toSlot = (toSlot + 1) & dst.tableMask
		}
		copy(dst.inner[toSlot*s.width:(toSlot+1)*s.width], src[fromOffset:fromOffset+s.width])
	}

	s.table.release()
	s.table = dst
}

// hashCode mirrors java.util.Arrays.hashCode(long[]): a 31-polynomial over
// the elements with both 32-bit halves of every value folded in. Overflow
// wraps in 32 bits.
func hashCode(arr []int64, from, n int) int32 {
	h := int32(1)
	for i := from; i < from+n; i++ {
		element := arr[i]
		h = 31*h + int32(element^int64(uint64(element)>>32))
	}
	return h
}

type table struct {
	capacity        int
	width           int
	inner           []int64
	numberOfEntries int
	resizeLimit     int
	tableMask       int
}

func newTable(capacity, width int) *table {
	t := &table{
		capacity:    capacity,
		width:       width,
		inner:       make([]int64, capacity*width),
		resizeLimit: int(float64(capacity) * loadFactor),
		tableMask:   capacity - 1,
	}
	for i := range t.inner {
		t.inner[i] = notInUse
	}
	increaseUsedMemory(t.bytes())
	return t
}

func (t *table) timeToResize() bool {
	return t.numberOfEntries == t.resizeLimit
}

// checkSlot classifies a slot with respect to a probed tuple: empty, holding
// that exact tuple, or holding something else.
func (t *table) checkSlot(slot int, value []int64) int {
	offset := slot * t.width
	if t.inner[offset] == notInUse {
		return slotEmpty
	}
	for i := 0; i < t.width; i++ {
		if t.inner[offset+i] != value[i] {
			return continueProbing
		}
	}
	return valueFound
}

func (t *table) setValue(slot int, value []int64) {
	copy(t.inner[slot*t.width:], value)
	t.numberOfEntries++
}

func (t *table) bytes() int64 {
	return int64(len(t.inner)) * 8
}

func (t *table) release() {
	decreaseUsedMemory(t.bytes())
}
