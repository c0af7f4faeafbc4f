package column

import (
	"github.com/kasuganosora/deltatable/pkg/rowset"
	"github.com/kasuganosora/deltatable/pkg/types"
	"github.com/kasuganosora/deltatable/pkg/update"
)

// Sparse is a sparse page store over 64-bit row keys for one element type.
// The key space partitions into a three-level directory over leaf pages of
// BlockSize cells; pages allocate lazily on first write and unallocated
// paths read as the NULL sentinel.
//
// While previous-value tracking is armed, the first mutation of a cell in
// an update cycle copies its pre-image into a parallel shadow tree gated by
// a per-cell in-use bitset. The shadow is torn down and its buffers
// recycled when the cycle commits.
type Sparse[T any] struct {
	kind  types.Kind
	null  T
	pools *recyclers[T]

	blocks [][][][]T

	tracking     bool
	clock        *update.Clock
	flusherArmed bool

	prevBlocks [][][][]T
	prevInUse  [][][][]uint64
	// prevAllocated logs the packed block keys of shadow leaves allocated
	// this cycle, so commit tears the shadow down in O(touched leaves)
	// instead of scanning the directory.
	prevAllocated []uint64
}

// NewSparse creates a sparse column with the given kind and NULL sentinel.
// clearOnRecycle null-fills recycled shadow leaves; object columns use it
// so pooled arrays do not pin references.
func NewSparse[T any](kind types.Kind, null T, clearOnRecycle bool) *Sparse[T] {
	return &Sparse[T]{
		kind:  kind,
		null:  null,
		pools: newRecyclers(null, clearOnRecycle),
	}
}

// Kind returns the element kind.
func (s *Sparse[T]) Kind() types.Kind {
	return s.kind
}

// Null returns the column's NULL sentinel.
func (s *Sparse[T]) Null() T {
	return s.null
}

// getLeaf returns the primary leaf containing key, or nil when the path is
// unallocated.
func (s *Sparse[T]) getLeaf(key int64) []T {
	b0, b1, b2, _ := splitKey(key)
	if b0 >= len(s.blocks) {
		return nil
	}
	d1 := s.blocks[b0]
	if b1 >= len(d1) {
		return nil
	}
	d2 := d1[b1]
	if b2 >= len(d2) {
		return nil
	}
	return d2[b2]
}

// ensureLeaf returns the primary leaf containing key, allocating the path
// as needed. New leaves are null-filled.
func (s *Sparse[T]) ensureLeaf(key int64) []T {
	b0, b1, b2, _ := splitKey(key)
	if s.blocks == nil {
		s.blocks = s.pools.borrowRoot()
	}
	s.blocks = ensureLen(s.blocks, b0, Block0Mask+1)
	d1 := s.blocks[b0]
	if d1 == nil {
		d1 = s.pools.borrowDir1()
	}
	d1 = ensureLen(d1, b1, Block1Mask+1)
	s.blocks[b0] = d1
	d2 := d1[b1]
	if d2 == nil {
		d2 = s.pools.borrowDir2()
	}
	d2 = ensureLen(d2, b2, Block2Mask+1)
	d1[b1] = d2
	leaf := d2[b2]
	if leaf == nil {
		leaf = s.pools.borrowPrimaryLeaf()
		d2[b2] = leaf
	}
	return leaf
}

// At returns the current value at key. Negative keys and unallocated paths
// read as NULL.
func (s *Sparse[T]) At(key int64) T {
	if key < 0 {
		return s.null
	}
	leaf := s.getLeaf(key)
	if leaf == nil {
		return s.null
	}
	return leaf[key&InnerMask]
}

// PrevAt returns the value at key as of the last commit point. If no
// capture is held for the cell, this is the current value.
func (s *Sparse[T]) PrevAt(key int64) T {
	if key < 0 {
		return s.null
	}
	if shadow, inUse := s.getShadow(key); inUse != nil {
		inner := int(key) & InnerMask
		if inUse[inner>>6]&(1<<(uint(inner)&63)) != 0 {
			return shadow[inner]
		}
	}
	return s.At(key)
}

// Set stores v at key, capturing the cell's pre-image if this is its first
// mutation of the cycle under tracking.
func (s *Sparse[T]) Set(key int64, v T) {
	if key < 0 {
		misuse("set", "negative row key %d", key)
	}
	leaf := s.ensureLeaf(key)
	inner := int(key) & InnerMask
	if shadow := s.shouldRecordPrevious(key); shadow != nil {
		shadow[inner] = leaf[inner]
	}
	leaf[inner] = v
}

// SetNull nulls the cell at key, with capture.
func (s *Sparse[T]) SetNull(key int64) {
	s.Set(key, s.null)
}

// Remove nulls every cell designated by rs. Cells on unallocated paths are
// already NULL and are left untouched.
func (s *Sparse[T]) Remove(rs *rowset.RowSet) {
	rs.ForEach(func(k int64) bool {
		if s.getLeaf(k) != nil {
			s.Set(k, s.null)
		}
		return true
	})
}

// Shift relocates the value at each key of keys to key+delta and nulls the
// vacated cell, capturing pre-images on both ends. Iteration runs in
// descending order for positive deltas so sources are consumed before
// their slots are overwritten, and ascending for negative deltas.
func (s *Sparse[T]) Shift(keys *rowset.RowSet, delta int64) {
	if delta == 0 {
		misuse("shift", "zero delta")
	}
	if delta > 0 {
		it := keys.ReverseIterator()
		for it.HasNext() {
			s.shiftOne(it.Next(), delta)
		}
		return
	}
	keys.ForEach(func(k int64) bool {
		s.shiftOne(k, delta)
		return true
	})
}

func (s *Sparse[T]) shiftOne(k, delta int64) {
	if k+delta < 0 {
		misuse("shift", "key %d shifted by %d falls below zero", k, delta)
	}
	v := s.At(k)
	s.Set(k+delta, v)
	s.Set(k, s.null)
}

// EnsureCapacity is part of the writable contract. The sparse store
// allocates lazily, so this only validates its arguments.
func (s *Sparse[T]) EnsureCapacity(size int64, nullFill bool) {
	if size < 0 {
		misuse("ensureCapacity", "negative size %d", size)
	}
}

// StartTrackingPrevValues arms previous-value capture against clock.
// Subsequent mutations copy pre-images into the shadow tree; the first
// capture of each cycle registers a commit flusher with the clock. Arming
// twice is fatal misuse.
func (s *Sparse[T]) StartTrackingPrevValues(clock *update.Clock) {
	if s.tracking {
		misuse("startTrackingPrevValues", "tracking already armed")
	}
	s.tracking = true
	s.clock = clock
}

// Boxed accessors implementing Source / WritableSource.

// Get returns the boxed current value at key.
func (s *Sparse[T]) Get(key int64) any {
	return s.At(key)
}

// GetPrev returns the boxed previous value at key.
func (s *Sparse[T]) GetPrev(key int64) any {
	return s.PrevAt(key)
}

// SetValue stores a boxed value at key. nil stores the NULL sentinel.
func (s *Sparse[T]) SetValue(key int64, v any) {
	if v == nil {
		s.Set(key, s.null)
		return
	}
	s.Set(key, v.(T))
}
