package runtime

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestTupleSetAddAndContains(t *testing.T) {
	s := NewTupleSet(4, 1)

	assert.True(t, s.Add([]int64{5}), "First add of 5 should report a new tuple")
	assert.False(t, s.Add([]int64{5}), "Second add of 5 should report a duplicate")
	assert.True(t, s.Add([]int64{9}), "First add of 9 should report a new tuple")

	assert.True(t, s.Contains([]int64{5}), "5 should be in the set")
	assert.True(t, s.Contains([]int64{9}), "9 should be in the set")
	assert.False(t, s.Contains([]int64{1}), "1 was never added")
	assert.Equal(t, 2, s.Len(), "Set should hold two tuples")
}

func TestTupleSetGrowthKeepsAllTuples(t *testing.T) {
	s := NewTupleSet(4, 1)

	// Threshold is 3 at capacity 4, so this forces at least one grow.
	for _, v := range []int64{5, 9, 13, 17, 21} {
		assert.True(t, s.Add([]int64{v}), "Adding %d should report a new tuple", v)
	}

	assert.Greater(t, s.Capacity(), 4, "Capacity should have grown")
	for _, v := range []int64{5, 9, 13, 17, 21} {
		assert.True(t, s.Contains([]int64{v}), "%d should survive the grow", v)
	}
	assert.False(t, s.Contains([]int64{100}), "100 was never added")
}

func TestTupleSetOrderSensitive(t *testing.T) {
	s := NewTupleSet(4, 2)

	assert.True(t, s.Add([]int64{1, 2}), "[1,2] should be a new tuple")
	assert.True(t, s.Add([]int64{2, 1}), "[2,1] is distinct from [1,2]")
	assert.Equal(t, 2, s.Len(), "Both orderings should be stored")
	assert.True(t, s.Contains([]int64{1, 2}))
	assert.True(t, s.Contains([]int64{2, 1}))
}

func TestTupleSetManyWideTuples(t *testing.T) {
	s := NewTupleSet(4, 2)

	for i := int64(0); i < 50; i++ {
		assert.True(t, s.Add([]int64{i, i * 1000}), "Tuple %d should be new", i)
	}
	for i := int64(0); i < 50; i++ {
		assert.False(t, s.Add([]int64{i, i * 1000}), "Tuple %d should be a duplicate", i)
		assert.True(t, s.Contains([]int64{i, i * 1000}), "Tuple %d should be present", i)
	}
	assert.False(t, s.Contains([]int64{0, 1}), "[0,1] was never added")
	assert.Equal(t, 50, s.Len())
}

func TestTupleSetLoadFactorBound(t *testing.T) {
	s := NewTupleSet(4, 1)

	for i := int64(0); i < 100; i++ {
		s.Add([]int64{i * 3})
		limit := int(float64(s.Capacity()) * loadFactor)
		assert.LessOrEqual(t, s.Len(), limit,
			"Entries must stay at or below 75% of capacity")
	}
}

func TestTupleSetCapacityDoubles(t *testing.T) {
	s := NewTupleSet(4, 1)

	prev := s.Capacity()
	for i := int64(0); i < 200; i++ {
		s.Add([]int64{i})
		if c := s.Capacity(); c != prev {
			assert.Equal(t, prev*2, c, "Capacity must grow by exactly doubling")
			assert.Zero(t, c&(c-1), "Capacity must stay a power of 2")
			prev = c
		}
	}
	assert.Greater(t, prev, 4, "200 inserts must have grown the table")
}

func TestTupleSetContainsDoesNotMutate(t *testing.T) {
	s := NewTupleSet(8, 1)
	s.Add([]int64{7})

	for i := 0; i < 10; i++ {
		assert.True(t, s.Contains([]int64{7}))
		assert.False(t, s.Contains([]int64{8}))
	}
	assert.Equal(t, 1, s.Len(), "Contains must not change the entry count")
	assert.Equal(t, 8, s.Capacity(), "Contains must never trigger a grow")
}

func TestTupleSetNegativeValues(t *testing.T) {
	s := NewTupleSet(4, 2)

	// Anything outside the two reserved markers is fair game, including
	// other negative values.
	assert.True(t, s.Add([]int64{-3, -100}))
	assert.True(t, s.Contains([]int64{-3, -100}))
	assert.False(t, s.Contains([]int64{-100, -3}))
}

func TestNewTupleSetContract(t *testing.T) {
	assert.PanicsWithValue(t, ErrNotPowerOfTwo, func() { NewTupleSet(3, 1) })
	assert.PanicsWithValue(t, ErrNotPowerOfTwo, func() { NewTupleSet(0, 1) })
	assert.PanicsWithValue(t, ErrZeroWidth, func() { NewTupleSet(4, 0) })
	assert.NotPanics(t, func() { NewTupleSet(1, 1) })
}

func TestTupleSetWidthContract(t *testing.T) {
	s := NewTupleSet(4, 2)

	assert.PanicsWithValue(t, ErrWrongTupleWidth, func() { s.Add([]int64{1}) })
	assert.PanicsWithValue(t, ErrWrongTupleWidth, func() { s.Contains([]int64{1, 2, 3}) })
}

func TestTupleSetReservedValueContract(t *testing.T) {
	s := NewTupleSet(4, 1)

	assert.PanicsWithValue(t, ErrReservedValue, func() { s.Add([]int64{-1}) })
	assert.PanicsWithValue(t, ErrReservedValue, func() { s.Add([]int64{-2}) })
	assert.PanicsWithValue(t, ErrReservedValue, func() { s.Contains([]int64{-2}) })
}

func TestTupleSetMinimalCapacity(t *testing.T) {
	s := NewTupleSet(1, 1)

	assert.True(t, s.Add([]int64{42}))
	assert.True(t, s.Contains([]int64{42}))
	assert.False(t, s.Add([]int64{42}))
	assert.True(t, s.Add([]int64{43}))
	assert.Equal(t, 2, s.Len())
}
