package update

import "fmt"

// ModifiedColumnSet is a fixed-size bitset over a table's columns marking
// which columns' values may have changed for the modified rows of an
// update.
type ModifiedColumnSet struct {
	names []string
	index map[string]int
	bits  []uint64
}

// NewModifiedColumnSet creates a cleared set over the given column names.
func NewModifiedColumnSet(columnNames []string) *ModifiedColumnSet {
	idx := make(map[string]int, len(columnNames))
	for i, n := range columnNames {
		idx[n] = i
	}
	return &ModifiedColumnSet{
		names: columnNames,
		index: idx,
		bits:  make([]uint64, (len(columnNames)+63)/64),
	}
}

// NumColumns returns the schema width.
func (m *ModifiedColumnSet) NumColumns() int {
	return len(m.names)
}

// SetColumn marks a column dirty by name.
func (m *ModifiedColumnSet) SetColumn(name string) {
	i, ok := m.index[name]
	if !ok {
		panic(fmt.Sprintf("update: unknown column %q", name))
	}
	m.bits[i>>6] |= 1 << (uint(i) & 63)
}

// SetAll marks every column dirty.
func (m *ModifiedColumnSet) SetAll() {
	for i := range m.names {
		m.bits[i>>6] |= 1 << (uint(i) & 63)
	}
}

// Clear resets the set.
func (m *ModifiedColumnSet) Clear() {
	for i := range m.bits {
		m.bits[i] = 0
	}
}

// Has reports whether a column is marked dirty.
func (m *ModifiedColumnSet) Has(name string) bool {
	i, ok := m.index[name]
	if !ok {
		return false
	}
	return m.bits[i>>6]&(1<<(uint(i)&63)) != 0
}

// Empty reports whether no column is marked.
func (m *ModifiedColumnSet) Empty() bool {
	for _, w := range m.bits {
		if w != 0 {
			return false
		}
	}
	return true
}

// ContainsAny reports whether any column marked in other is also marked
// here. The sets must share a schema.
func (m *ModifiedColumnSet) ContainsAny(other *ModifiedColumnSet) bool {
	for i := range m.bits {
		if i < len(other.bits) && m.bits[i]&other.bits[i] != 0 {
			return true
		}
	}
	return false
}

// SetFrom copies other's marks into this set, replacing current marks. The
// sets must be over the same column list; this is the identity transform
// between two tables with the same schema.
func (m *ModifiedColumnSet) SetFrom(other *ModifiedColumnSet) {
	if len(m.names) != len(other.names) {
		panic(fmt.Sprintf("update: modified column set width mismatch: %d vs %d",
			len(m.names), len(other.names)))
	}
	copy(m.bits, other.bits)
}

// Clone returns an independent copy.
func (m *ModifiedColumnSet) Clone() *ModifiedColumnSet {
	c := NewModifiedColumnSet(m.names)
	copy(c.bits, m.bits)
	return c
}

// DirtyColumns returns the names of marked columns in schema order.
func (m *ModifiedColumnSet) DirtyColumns() []string {
	var out []string
	for i, n := range m.names {
		if m.bits[i>>6]&(1<<(uint(i)&63)) != 0 {
			out = append(out, n)
		}
	}
	return out
}

// Transformer propagates dirty bits from a source schema to a destination
// schema through an explicit column mapping. Non-identity derivations
// compose one of these per hop.
type Transformer struct {
	pairs []transformPair
}

type transformPair struct {
	src string
	dst string
}

// NewTransformer builds a transformer from src→dst column name pairs.
func NewTransformer(pairs map[string]string) *Transformer {
	t := &Transformer{}
	for src, dst := range pairs {
		t.pairs = append(t.pairs, transformPair{src: src, dst: dst})
	}
	return t
}

// Transform clears dst and marks each mapped destination column whose
// source column is dirty in src.
func (t *Transformer) Transform(src, dst *ModifiedColumnSet) {
	dst.Clear()
	for _, p := range t.pairs {
		if src.Has(p.src) {
			dst.SetColumn(p.dst)
		}
	}
}
