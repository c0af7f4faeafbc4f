package workerpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuePool_GetPut(t *testing.T) {
	vp := NewValuePool(func() []int64 { return make([]int64, 32) }, nil)

	a := vp.Get()
	assert.Len(t, a, 32)
	vp.Put(a)

	b := vp.Get()
	assert.Len(t, b, 32)
}

func TestValuePool_Reset(t *testing.T) {
	resets := 0
	vp := NewValuePool(
		func() *[]int64 { s := make([]int64, 0, 8); return &s },
		func(s *[]int64) { *s = (*s)[:0]; resets++ },
	)

	s := vp.Get()
	*s = append(*s, 1, 2, 3)
	vp.Put(s)

	got := vp.Get()
	assert.Empty(t, *got)
	assert.GreaterOrEqual(t, resets, 2)
}

func TestSlicePool_ZeroLength(t *testing.T) {
	sp := NewSlicePool[uint64](16)

	s := sp.Get()
	assert.Empty(t, *s)
	assert.GreaterOrEqual(t, cap(*s), 16)

	*s = append(*s, 7, 8, 9)
	sp.Put(s)

	s2 := sp.Get()
	assert.Empty(t, *s2)
}

func TestSlicePool_NilPut(t *testing.T) {
	sp := NewSlicePool[int](4)
	sp.Put(nil) // must not panic
}

func TestMapPool_Cleared(t *testing.T) {
	mp := NewMapPool[string, int](4)

	m := mp.Get()
	m["a"] = 1
	mp.Put(m)

	m2 := mp.Get()
	assert.Empty(t, m2)
}
