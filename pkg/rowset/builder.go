package rowset

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// SequentialBuilder accumulates keys that arrive in ascending order,
// coalescing contiguous runs into single range insertions.
type SequentialBuilder struct {
	bm      *roaring64.Bitmap
	runLo   int64
	runHi   int64
	hasRun  bool
	lastKey int64
}

// NewSequentialBuilder creates a builder for ascending key sequences.
func NewSequentialBuilder() *SequentialBuilder {
	return &SequentialBuilder{bm: roaring64.New(), lastKey: -1}
}

// Append adds a key. Keys must be strictly ascending.
func (b *SequentialBuilder) Append(key int64) {
	if key < 0 {
		panic(fmt.Sprintf("rowset: negative row key %d", key))
	}
	if key <= b.lastKey {
		panic(fmt.Sprintf("rowset: sequential builder key %d not after %d", key, b.lastKey))
	}
	b.lastKey = key
	if !b.hasRun {
		b.runLo, b.runHi, b.hasRun = key, key, true
		return
	}
	if key == b.runHi+1 {
		b.runHi = key
		return
	}
	b.flush()
	b.runLo, b.runHi = key, key
}

// AppendRange adds the contiguous keys [first, last]. The range must start
// after every previously appended key.
func (b *SequentialBuilder) AppendRange(first, last int64) {
	if first < 0 || last < first {
		panic(fmt.Sprintf("rowset: bad range [%d, %d]", first, last))
	}
	if first <= b.lastKey {
		panic(fmt.Sprintf("rowset: sequential builder range start %d not after %d", first, b.lastKey))
	}
	b.lastKey = last
	if b.hasRun && first == b.runHi+1 {
		b.runHi = last
		return
	}
	if b.hasRun {
		b.flush()
	}
	b.runLo, b.runHi, b.hasRun = first, last, true
}

func (b *SequentialBuilder) flush() {
	b.bm.AddRange(uint64(b.runLo), uint64(b.runHi)+1)
}

// Build finishes construction and returns the row set. The builder must not
// be reused.
func (b *SequentialBuilder) Build() *RowSet {
	if b.hasRun {
		b.flush()
		b.hasRun = false
	}
	rs := &RowSet{bm: b.bm}
	b.bm = nil
	return rs
}

// RandomBuilder accumulates keys in arbitrary order.
type RandomBuilder struct {
	keys []uint64
}

// NewRandomBuilder creates a builder accepting keys in any order.
func NewRandomBuilder() *RandomBuilder {
	return &RandomBuilder{}
}

// Add records a key. Duplicates are allowed and collapse.
func (b *RandomBuilder) Add(key int64) {
	if key < 0 {
		panic(fmt.Sprintf("rowset: negative row key %d", key))
	}
	b.keys = append(b.keys, uint64(key))
}

// AddRange records the contiguous keys [first, last].
func (b *RandomBuilder) AddRange(first, last int64) {
	if first < 0 || last < first {
		panic(fmt.Sprintf("rowset: bad range [%d, %d]", first, last))
	}
	for k := first; k <= last; k++ {
		b.keys = append(b.keys, uint64(k))
	}
}

// Build finishes construction and returns the row set. The builder must not
// be reused.
func (b *RandomBuilder) Build() *RowSet {
	sort.Slice(b.keys, func(i, j int) bool { return b.keys[i] < b.keys[j] })
	bm := roaring64.New()
	bm.AddMany(b.keys)
	b.keys = nil
	return &RowSet{bm: bm}
}
