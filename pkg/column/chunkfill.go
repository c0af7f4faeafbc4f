package column

import (
	"unsafe"

	"github.com/kasuganosora/deltatable/pkg/chunk"
	"github.com/kasuganosora/deltatable/pkg/rowset"
)

// slicesOverlap reports whether two slices share any backing memory.
func slicesOverlap[T any](a, b []T) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	sz := unsafe.Sizeof(a[0])
	pa := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	pb := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	return pa < pb+uintptr(len(b))*sz && pb < pa+uintptr(len(a))*sz
}

// FillChunk fills dest with the current values at keys, in ascending key
// order. Work is sliced by leaf boundary: a run of keys inside one leaf is
// a single copy, and absent leaves null-fill.
func (s *Sparse[T]) FillChunk(dest *chunk.Chunk[T], keys *rowset.RowSet) {
	dest.Reset()
	data := dest.Raw()
	n := 0
	it := keys.RangeIterator()
	for it.HasNext() {
		lo, hi := it.Next()
		for k := lo; k <= hi; {
			end := k | InnerMask
			if end > hi {
				end = hi
			}
			cnt := int(end - k + 1)
			if leaf := s.getLeaf(k); leaf != nil {
				inner := int(k) & InnerMask
				copy(data[n:n+cnt], leaf[inner:inner+cnt])
			} else {
				for i := n; i < n+cnt; i++ {
					data[i] = s.null
				}
			}
			n += cnt
			k = end + 1
		}
	}
	dest.SetSize(n)
}

// FillPrevChunk fills dest with the previous values at keys, in ascending
// key order. Blocks without a shadow leaf copy straight from the primary
// tree; blocks with one consult the in-use bits cell by cell.
func (s *Sparse[T]) FillPrevChunk(dest *chunk.Chunk[T], keys *rowset.RowSet) {
	dest.Reset()
	data := dest.Raw()
	n := 0
	it := keys.RangeIterator()
	for it.HasNext() {
		lo, hi := it.Next()
		for k := lo; k <= hi; {
			end := k | InnerMask
			if end > hi {
				end = hi
			}
			cnt := int(end - k + 1)
			shadow, words := s.getShadow(k)
			leaf := s.getLeaf(k)
			inner := int(k) & InnerMask
			switch {
			case words == nil && leaf == nil:
				for i := n; i < n+cnt; i++ {
					data[i] = s.null
				}
			case words == nil:
				copy(data[n:n+cnt], leaf[inner:inner+cnt])
			default:
				for i := 0; i < cnt; i++ {
					cell := inner + i
					if words[cell>>6]&(1<<(uint(cell)&63)) != 0 {
						data[n+i] = shadow[cell]
					} else if leaf != nil {
						data[n+i] = leaf[cell]
					} else {
						data[n+i] = s.null
					}
				}
			}
			n += cnt
			k = end + 1
		}
	}
	dest.SetSize(n)
}

// FillFromChunk installs src's values at keys, in ascending key order,
// with per-cell previous-value capture. A source chunk that aliases any
// destination leaf is fatal misuse, detected before any cell is mutated.
func (s *Sparse[T]) FillFromChunk(src *chunk.Chunk[T], keys *rowset.RowSet) {
	if int64(src.Size()) != keys.Size() {
		misuse("fillFromChunk", "chunk size %d does not match key count %d", src.Size(), keys.Size())
	}

	// Alias check across every allocated destination leaf, before any
	// mutation.
	srcData := src.Data()
	it := keys.RangeIterator()
	for it.HasNext() {
		lo, hi := it.Next()
		for k := lo; k <= hi; {
			end := k | InnerMask
			if end > hi {
				end = hi
			}
			if leaf := s.getLeaf(k); leaf != nil && slicesOverlap(srcData, leaf) {
				misuse("fillFromChunk", "source chunk is an alias of the target block at key %d", k)
			}
			k = end + 1
		}
	}

	n := 0
	it = keys.RangeIterator()
	for it.HasNext() {
		lo, hi := it.Next()
		for k := lo; k <= hi; {
			end := k | InnerMask
			if end > hi {
				end = hi
			}
			cnt := int(end - k + 1)
			leaf := s.ensureLeaf(k)
			inner := int(k) & InnerMask
			for i := 0; i < cnt; i++ {
				key := k + int64(i)
				if shadow := s.shouldRecordPrevious(key); shadow != nil {
					shadow[inner+i] = leaf[inner+i]
				}
				leaf[inner+i] = srcData[n+i]
			}
			n += cnt
			k = end + 1
		}
	}
}

// FillChunkUnordered fills dest with the current values at keys, in the
// given order. Keys may repeat and arrive unsorted; negative keys read as
// NULL.
func (s *Sparse[T]) FillChunkUnordered(dest *chunk.Chunk[T], keys []int64) {
	dest.Reset()
	data := dest.Raw()
	for i, k := range keys {
		data[i] = s.At(k)
	}
	dest.SetSize(len(keys))
}

// FillFromChunkUnordered installs src's values at keys, in the given
// order, with per-cell capture. Later duplicates overwrite earlier ones;
// only the first write of a cycle records the pre-image.
func (s *Sparse[T]) FillFromChunkUnordered(src *chunk.Chunk[T], keys []int64) {
	if src.Size() != len(keys) {
		misuse("fillFromChunk", "chunk size %d does not match key count %d", src.Size(), len(keys))
	}
	srcData := src.Data()
	for _, k := range keys {
		if leaf := s.getLeaf(k); leaf != nil && slicesOverlap(srcData, leaf) {
			misuse("fillFromChunk", "source chunk is an alias of the target block at key %d", k)
		}
	}
	for i, k := range keys {
		s.Set(k, srcData[i])
	}
}

// MakeFillContext creates a fill context for repeated bulk fills.
func (s *Sparse[T]) MakeFillContext() *chunk.FillContext {
	return chunk.NewFillContext()
}

// MakeGetContext creates a get context for repeated bulk reads.
func (s *Sparse[T]) MakeGetContext() *chunk.GetContext {
	return chunk.NewGetContext()
}
