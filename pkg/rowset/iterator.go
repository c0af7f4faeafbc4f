package rowset

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/kasuganosora/deltatable/pkg/types"
)

// RangeIterator walks the maximal contiguous runs of a row set in ascending
// order.
type RangeIterator struct {
	it      roaring64.IntPeekable64
	lo, hi  int64
	pending bool
}

// RangeIterator returns an iterator over the set's contiguous runs.
func (rs *RowSet) RangeIterator() *RangeIterator {
	ri := &RangeIterator{it: rs.bm.Iterator()}
	ri.advance()
	return ri
}

func (ri *RangeIterator) advance() {
	if !ri.it.HasNext() {
		ri.pending = false
		return
	}
	lo := int64(ri.it.Next())
	hi := lo
	for ri.it.HasNext() && int64(ri.it.PeekNext()) == hi+1 {
		hi = int64(ri.it.Next())
	}
	ri.lo, ri.hi, ri.pending = lo, hi, true
}

// HasNext reports whether another run is available.
func (ri *RangeIterator) HasNext() bool {
	return ri.pending
}

// Next returns the next run [first, last].
func (ri *RangeIterator) Next() (first, last int64) {
	first, last = ri.lo, ri.hi
	ri.advance()
	return first, last
}

// SearchIterator walks keys in ascending order and can skip forward to the
// first key at or beyond a target.
type SearchIterator struct {
	it roaring64.IntPeekable64
}

// SearchIterator returns a forward key iterator with seek support.
func (rs *RowSet) SearchIterator() *SearchIterator {
	return &SearchIterator{it: rs.bm.Iterator()}
}

// HasNext reports whether another key is available.
func (si *SearchIterator) HasNext() bool {
	return si.it.HasNext()
}

// Next returns the next key.
func (si *SearchIterator) Next() int64 {
	return int64(si.it.Next())
}

// Peek returns the next key without consuming it, or NullRowKey when
// exhausted.
func (si *SearchIterator) Peek() int64 {
	if !si.it.HasNext() {
		return types.NullRowKey
	}
	return int64(si.it.PeekNext())
}

// SeekTo positions the iterator at the first key >= target.
func (si *SearchIterator) SeekTo(target int64) {
	if target < 0 {
		return
	}
	si.it.AdvanceIfNeeded(uint64(target))
}

// ReverseIterator walks keys in descending order.
type ReverseIterator struct {
	it roaring64.IntIterable64
}

// ReverseIterator returns a descending key iterator.
func (rs *RowSet) ReverseIterator() *ReverseIterator {
	return &ReverseIterator{it: rs.bm.ReverseIterator()}
}

// HasNext reports whether another key is available.
func (ri *ReverseIterator) HasNext() bool {
	return ri.it.HasNext()
}

// Next returns the next key (descending).
func (ri *ReverseIterator) Next() int64 {
	return int64(ri.it.Next())
}
