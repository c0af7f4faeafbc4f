// Package rowset provides ordered sets of 64-bit row keys with efficient
// range iteration, inversion (key to position) and previous-version
// tracking. Sets are backed by 64-bit Roaring bitmaps.
package rowset

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/kasuganosora/deltatable/pkg/types"
)

// RowSet is an ordered set of non-negative 64-bit row keys.
type RowSet struct {
	bm *roaring64.Bitmap
}

// Empty returns a new empty row set.
func Empty() *RowSet {
	return &RowSet{bm: roaring64.New()}
}

// FromKeys builds a row set from the given keys, in any order.
func FromKeys(keys ...int64) *RowSet {
	rs := Empty()
	for _, k := range keys {
		rs.Insert(k)
	}
	return rs
}

// FromRange builds a row set holding the contiguous keys [first, last].
func FromRange(first, last int64) *RowSet {
	rs := Empty()
	rs.InsertRange(first, last)
	return rs
}

// Size returns the number of keys in the set.
func (rs *RowSet) Size() int64 {
	return int64(rs.bm.GetCardinality())
}

// IsEmpty reports whether the set has no keys.
func (rs *RowSet) IsEmpty() bool {
	return rs.bm.IsEmpty()
}

// Contains reports whether key is in the set.
func (rs *RowSet) Contains(key int64) bool {
	if key < 0 {
		return false
	}
	return rs.bm.Contains(uint64(key))
}

// FirstRowKey returns the smallest key, or NullRowKey if the set is empty.
func (rs *RowSet) FirstRowKey() int64 {
	if rs.bm.IsEmpty() {
		return types.NullRowKey
	}
	return int64(rs.bm.Minimum())
}

// LastRowKey returns the largest key, or NullRowKey if the set is empty.
func (rs *RowSet) LastRowKey() int64 {
	if rs.bm.IsEmpty() {
		return types.NullRowKey
	}
	return int64(rs.bm.Maximum())
}

// Get returns the key at position pos (0-based, in ascending key order), or
// NullRowKey if pos is out of range.
func (rs *RowSet) Get(pos int64) int64 {
	if pos < 0 || uint64(pos) >= rs.bm.GetCardinality() {
		return types.NullRowKey
	}
	k, err := rs.bm.Select(uint64(pos))
	if err != nil {
		return types.NullRowKey
	}
	return int64(k)
}

// Find returns the position of key in the set, or NullRowKey if absent.
func (rs *RowSet) Find(key int64) int64 {
	if key < 0 || !rs.bm.Contains(uint64(key)) {
		return types.NullRowKey
	}
	return int64(rs.bm.Rank(uint64(key))) - 1
}

// Insert adds a key to the set. Negative keys are a programmer error.
func (rs *RowSet) Insert(key int64) {
	if key < 0 {
		panic(fmt.Sprintf("rowset: negative row key %d", key))
	}
	rs.bm.Add(uint64(key))
}

// InsertRange adds the contiguous keys [first, last].
func (rs *RowSet) InsertRange(first, last int64) {
	if first < 0 || last < first {
		panic(fmt.Sprintf("rowset: bad range [%d, %d]", first, last))
	}
	rs.bm.AddRange(uint64(first), uint64(last)+1)
}

// InsertSet adds all keys of other.
func (rs *RowSet) InsertSet(other *RowSet) {
	rs.bm.Or(other.bm)
}

// Remove deletes a key from the set.
func (rs *RowSet) Remove(key int64) {
	if key < 0 {
		return
	}
	rs.bm.Remove(uint64(key))
}

// RemoveRange deletes the contiguous keys [first, last].
func (rs *RowSet) RemoveRange(first, last int64) {
	if first < 0 || last < first {
		panic(fmt.Sprintf("rowset: bad range [%d, %d]", first, last))
	}
	rs.bm.RemoveRange(uint64(first), uint64(last)+1)
}

// RemoveSet deletes all keys of other.
func (rs *RowSet) RemoveSet(other *RowSet) {
	rs.bm.AndNot(other.bm)
}

// Clone returns an independent copy of the set.
func (rs *RowSet) Clone() *RowSet {
	return &RowSet{bm: rs.bm.Clone()}
}

// Union returns a new set holding keys present in either set.
func (rs *RowSet) Union(other *RowSet) *RowSet {
	return &RowSet{bm: roaring64.Or(rs.bm, other.bm)}
}

// Intersect returns a new set holding keys present in both sets.
func (rs *RowSet) Intersect(other *RowSet) *RowSet {
	return &RowSet{bm: roaring64.And(rs.bm, other.bm)}
}

// Minus returns a new set holding keys of rs not present in other.
func (rs *RowSet) Minus(other *RowSet) *RowSet {
	return &RowSet{bm: roaring64.AndNot(rs.bm, other.bm)}
}

// Overlaps reports whether the two sets share any key.
func (rs *RowSet) Overlaps(other *RowSet) bool {
	return rs.bm.Intersects(other.bm)
}

// Equal reports whether both sets hold exactly the same keys.
func (rs *RowSet) Equal(other *RowSet) bool {
	return rs.bm.Equals(other.bm)
}

// Invert translates keys of the subset into their positions within rs.
// Every key of subset must be present in rs; a missing key is a contract
// violation and panics.
func (rs *RowSet) Invert(subset *RowSet) *RowSet {
	builder := NewSequentialBuilder()
	it := subset.bm.Iterator()
	for it.HasNext() {
		k := it.Next()
		if !rs.bm.Contains(k) {
			panic(fmt.Sprintf("rowset: invert of key %d not present in set", k))
		}
		builder.Append(int64(rs.bm.Rank(k)) - 1)
	}
	return builder.Build()
}

// Keys returns all keys in ascending order. Intended for tests and small
// sets.
func (rs *RowSet) Keys() []int64 {
	out := make([]int64, 0, rs.bm.GetCardinality())
	it := rs.bm.Iterator()
	for it.HasNext() {
		out = append(out, int64(it.Next()))
	}
	return out
}

// String renders the set as ascending ranges.
func (rs *RowSet) String() string {
	s := "{"
	first := true
	rs.ForEachRange(func(lo, hi int64) bool {
		if !first {
			s += ","
		}
		first = false
		if lo == hi {
			s += fmt.Sprintf("%d", lo)
		} else {
			s += fmt.Sprintf("%d-%d", lo, hi)
		}
		return true
	})
	return s + "}"
}

// ForEachRange invokes fn for each maximal run [lo, hi] of contiguous keys
// in ascending order, stopping early if fn returns false.
func (rs *RowSet) ForEachRange(fn func(first, last int64) bool) {
	it := rs.bm.Iterator()
	if !it.HasNext() {
		return
	}
	lo := int64(it.Next())
	hi := lo
	for it.HasNext() {
		k := int64(it.Next())
		if k == hi+1 {
			hi = k
			continue
		}
		if !fn(lo, hi) {
			return
		}
		lo, hi = k, k
	}
	fn(lo, hi)
}

// ForEach invokes fn for each key in ascending order, stopping early if fn
// returns false.
func (rs *RowSet) ForEach(fn func(key int64) bool) {
	it := rs.bm.Iterator()
	for it.HasNext() {
		if !fn(int64(it.Next())) {
			return
		}
	}
}
