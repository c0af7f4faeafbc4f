package column

import "github.com/kasuganosora/deltatable/pkg/workerpool"

// recyclers holds the per-level buffer pools of one column. The shadow
// structures torn down at every commit flow through these pools, so a
// steady mutation load reuses the same handful of buffers. Pools are backed
// by sync.Pool: buffers are dropped under memory pressure and simply
// reallocated.
//
// Primary leaves also come from the leaf pool but are never returned during
// normal operation; only shadow structures cycle.
type recyclers[T any] struct {
	leaves *workerpool.ValuePool[[]T]
	dirs2  *workerpool.ValuePool[[][]T]
	dirs1  *workerpool.ValuePool[[][][]T]
	roots  *workerpool.ValuePool[[][][][]T]

	// clearOnRecycle null-fills shadow leaves when they are returned, so
	// pooled arrays do not pin references for object columns. Primitive
	// columns skip the wipe; in-use bit gating makes stale cells
	// unreadable.
	clearOnRecycle bool
	null           T
}

func newRecyclers[T any](null T, clearOnRecycle bool) *recyclers[T] {
	return &recyclers[T]{
		leaves:         workerpool.NewValuePool(func() []T { return make([]T, BlockSize) }, nil),
		dirs2:          workerpool.NewValuePool(func() [][]T { return make([][]T, 0, 16) }, nil),
		dirs1:          workerpool.NewValuePool(func() [][][]T { return make([][][]T, 0, 16) }, nil),
		roots:          workerpool.NewValuePool(func() [][][][]T { return make([][][][]T, 0, 16) }, nil),
		clearOnRecycle: clearOnRecycle,
		null:           null,
	}
}

// borrowLeaf returns a leaf without null-filling it. Callers that expose
// the leaf to reads (primary tree) must fill it; shadow leaves rely on the
// in-use bitset to gate reads instead.
func (r *recyclers[T]) borrowLeaf() []T {
	return r.leaves.Get()[:BlockSize]
}

// borrowPrimaryLeaf returns a null-filled leaf.
func (r *recyclers[T]) borrowPrimaryLeaf() []T {
	leaf := r.borrowLeaf()
	for i := range leaf {
		leaf[i] = r.null
	}
	return leaf
}

func (r *recyclers[T]) recycleLeaf(leaf []T) {
	if r.clearOnRecycle {
		var zero T
		for i := range leaf {
			leaf[i] = zero
		}
	}
	r.leaves.Put(leaf)
}

func (r *recyclers[T]) borrowDir2() [][]T     { return r.dirs2.Get()[:0] }
func (r *recyclers[T]) borrowDir1() [][][]T   { return r.dirs1.Get()[:0] }
func (r *recyclers[T]) borrowRoot() [][][][]T { return r.roots.Get()[:0] }

func (r *recyclers[T]) recycleDir2(d [][]T)   { d = d[:cap(d)]; clearSlice(d); r.dirs2.Put(d[:0]) }
func (r *recyclers[T]) recycleDir1(d [][][]T) { d = d[:cap(d)]; clearSlice(d); r.dirs1.Put(d[:0]) }
func (r *recyclers[T]) recycleRoot(d [][][][]T) {
	d = d[:cap(d)]
	clearSlice(d)
	r.roots.Put(d[:0])
}

func clearSlice[S any](s []S) {
	var zero S
	for i := range s {
		s[i] = zero
	}
}

// inUseRecycler pools the per-leaf in-use bitsets. Words are zeroed on
// borrow: a shadow leaf's gate must start clear for the new cycle.
var inUseRecycler = workerpool.NewValuePool(
	func() []uint64 { return make([]uint64, InUseWords) },
	func(words []uint64) {
		for i := range words {
			words[i] = 0
		}
	},
)

// inUseDir pools for the in-use directory levels, mirroring the value-tree
// shapes.
var (
	inUseDir2Pool = workerpool.NewValuePool(func() [][]uint64 { return make([][]uint64, 0, 16) }, nil)
	inUseDir1Pool = workerpool.NewValuePool(func() [][][]uint64 { return make([][][]uint64, 0, 16) }, nil)
	inUseRootPool = workerpool.NewValuePool(func() [][][][]uint64 { return make([][][][]uint64, 0, 16) }, nil)
)

func recycleInUseDir2(d [][]uint64) { d = d[:cap(d)]; clearSlice(d); inUseDir2Pool.Put(d[:0]) }
func recycleInUseDir1(d [][][]uint64) {
	d = d[:cap(d)]
	clearSlice(d)
	inUseDir1Pool.Put(d[:0])
}
func recycleInUseRoot(d [][][][]uint64) {
	d = d[:cap(d)]
	clearSlice(d)
	inUseRootPool.Put(d[:0])
}
