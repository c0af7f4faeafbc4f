// Package workerpool provides reusable buffer pools for hot-path
// allocations. Pools are backed by sync.Pool, so buffers may be dropped
// under memory pressure and reallocated on demand.
package workerpool

import (
	"sync"
	"sync/atomic"
)

// ValuePool is a generic pool for any value type.
type ValuePool[T any] struct {
	pool     sync.Pool
	newFn    func() T
	resetFn  func(T)
	allocCnt int64
	reuseCnt int64
}

// NewValuePool creates a new value pool. newFn produces fresh values,
// resetFn (optional) clears a value before reuse.
func NewValuePool[T any](newFn func() T, resetFn func(T)) *ValuePool[T] {
	vp := &ValuePool[T]{
		newFn:   newFn,
		resetFn: resetFn,
	}
	vp.pool.New = func() interface{} {
		atomic.AddInt64(&vp.allocCnt, 1)
		return newFn()
	}
	return vp
}

// Get retrieves a value from the pool.
func (vp *ValuePool[T]) Get() T {
	v := vp.pool.Get().(T)
	atomic.AddInt64(&vp.reuseCnt, 1)
	if vp.resetFn != nil {
		vp.resetFn(v)
	}
	return v
}

// Put returns a value to the pool.
func (vp *ValuePool[T]) Put(v T) {
	vp.pool.Put(v)
}

// Stats returns allocation counters for the pool.
func (vp *ValuePool[T]) Stats() PoolStats {
	allocs := atomic.LoadInt64(&vp.allocCnt)
	gets := atomic.LoadInt64(&vp.reuseCnt)
	var reuseRate float64
	if gets > 0 {
		reuseRate = float64(gets-allocs) / float64(gets) * 100
	}
	return PoolStats{Allocations: allocs, Gets: gets, ReuseRate: reuseRate}
}

// PoolStats holds pool counters.
type PoolStats struct {
	Allocations int64
	Gets        int64
	ReuseRate   float64
}

// SlicePool is a generic pool for slices.
type SlicePool[T any] struct {
	pool     sync.Pool
	initSize int
}

// NewSlicePool creates a new slice pool. Slices are handed out with zero
// length and at least initialSize capacity.
func NewSlicePool[T any](initialSize int) *SlicePool[T] {
	if initialSize <= 0 {
		initialSize = 8
	}
	return &SlicePool[T]{
		initSize: initialSize,
		pool: sync.Pool{
			New: func() interface{} {
				slice := make([]T, 0, initialSize)
				return &slice
			},
		},
	}
}

// Get retrieves a slice from the pool.
func (sp *SlicePool[T]) Get() *[]T {
	v := sp.pool.Get()
	if v == nil {
		slice := make([]T, 0, sp.initSize)
		return &slice
	}
	slice := v.(*[]T)
	*slice = (*slice)[:0]
	return slice
}

// Put returns a slice to the pool.
func (sp *SlicePool[T]) Put(slice *[]T) {
	if slice == nil {
		return
	}
	*slice = (*slice)[:0]
	sp.pool.Put(slice)
}

// MapPool is a pool for maps.
type MapPool[K comparable, V any] struct {
	pool sync.Pool
}

// NewMapPool creates a new map pool.
func NewMapPool[K comparable, V any](initialSize int) *MapPool[K, V] {
	if initialSize <= 0 {
		initialSize = 8
	}
	return &MapPool[K, V]{
		pool: sync.Pool{
			New: func() interface{} {
				return make(map[K]V, initialSize)
			},
		},
	}
}

// Get retrieves a map from the pool.
func (mp *MapPool[K, V]) Get() map[K]V {
	v := mp.pool.Get()
	if v == nil {
		return make(map[K]V)
	}
	m := v.(map[K]V)
	for k := range m {
		delete(m, k)
	}
	return m
}

// Put returns a map to the pool.
func (mp *MapPool[K, V]) Put(m map[K]V) {
	if m == nil {
		return
	}
	for k := range m {
		delete(m, k)
	}
	mp.pool.Put(m)
}
