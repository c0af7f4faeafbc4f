package update

import (
	"fmt"
	"sort"

	"github.com/kasuganosora/deltatable/pkg/rowset"
)

// ShiftRange relocates the contiguous pre-shift keys [First, Last] by Delta.
// Content is preserved; only keys move. Delta is never zero.
type ShiftRange struct {
	First int64
	Last  int64
	Delta int64
}

// ShiftData is an ordered sequence of disjoint shift ranges describing an
// isometric re-keying between the previous and current row sets. Ranges are
// ascending by First and no two adjacent ranges carry the same delta.
type ShiftData struct {
	ranges []ShiftRange
}

// EmptyShift is the shared empty shift program.
var EmptyShift = &ShiftData{}

// Empty reports whether the program has no ranges.
func (s *ShiftData) Empty() bool {
	return len(s.ranges) == 0
}

// Size returns the number of ranges.
func (s *ShiftData) Size() int {
	return len(s.ranges)
}

// Range returns the i-th range.
func (s *ShiftData) Range(i int) ShiftRange {
	return s.ranges[i]
}

// Ranges returns the ranges in order. Callers must not mutate the slice.
func (s *ShiftData) Ranges() []ShiftRange {
	return s.ranges
}

// ForEach invokes fn for each range in ascending order.
func (s *ShiftData) ForEach(fn func(r ShiftRange)) {
	for _, r := range s.ranges {
		fn(r)
	}
}

// String renders the program.
func (s *ShiftData) String() string {
	out := "shift{"
	for i, r := range s.ranges {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("[%d,%d]%+d", r.First, r.Last, r.Delta)
	}
	return out + "}"
}

// Validate checks the program invariants: ascending, disjoint, non-zero
// deltas, no two adjacent ranges with the same delta, and destination order
// preserved.
func (s *ShiftData) Validate() error {
	for i, r := range s.ranges {
		if r.First < 0 || r.Last < r.First {
			return fmt.Errorf("shift: bad range [%d, %d]", r.First, r.Last)
		}
		if r.Delta == 0 {
			return fmt.Errorf("shift: zero delta at range %d", i)
		}
		if r.First+r.Delta < 0 {
			return fmt.Errorf("shift: range %d shifts below zero", i)
		}
		if i == 0 {
			continue
		}
		prev := s.ranges[i-1]
		if r.First <= prev.Last {
			return fmt.Errorf("shift: range %d overlaps or is out of order", i)
		}
		if r.Delta == prev.Delta {
			return fmt.Errorf("shift: adjacent ranges %d and %d share delta %d", i-1, i, r.Delta)
		}
		if prev.Last+prev.Delta >= r.First+r.Delta {
			return fmt.Errorf("shift: range %d reorders destinations", i)
		}
	}
	return nil
}

// Apply re-keys the given row set: every key inside a range moves by that
// range's delta, keys outside all ranges stay. Returns a new set.
func (s *ShiftData) Apply(rs *rowset.RowSet) *rowset.RowSet {
	if s.Empty() || rs.IsEmpty() {
		return rs.Clone()
	}
	builder := rowset.NewRandomBuilder()
	rs.ForEach(func(k int64) bool {
		i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].Last >= k })
		if i < len(s.ranges) && s.ranges[i].First <= k {
			builder.Add(k + s.ranges[i].Delta)
		} else {
			builder.Add(k)
		}
		return true
	})
	return builder.Build()
}

// ShiftBuilder accumulates an ascending shift program, coalescing adjacent
// ranges that carry the same delta and dropping zero-delta entries so the
// finished program is minimal.
type ShiftBuilder struct {
	ranges []ShiftRange
}

// NewShiftBuilder creates an empty builder.
func NewShiftBuilder() *ShiftBuilder {
	return &ShiftBuilder{}
}

// Append adds a range. Ranges must arrive in ascending key order. Zero
// deltas and empty ranges are ignored.
func (b *ShiftBuilder) Append(first, last, delta int64) {
	if delta == 0 || last < first {
		return
	}
	if n := len(b.ranges); n > 0 {
		prev := &b.ranges[n-1]
		if first <= prev.Last {
			panic(fmt.Sprintf("shift: appended range [%d, %d] not after [%d, %d]",
				first, last, prev.First, prev.Last))
		}
		if prev.Delta == delta && first == prev.Last+1 {
			prev.Last = last
			return
		}
	}
	b.ranges = append(b.ranges, ShiftRange{First: first, Last: last, Delta: delta})
}

// Build finishes construction. The builder must not be reused.
func (b *ShiftBuilder) Build() *ShiftData {
	if len(b.ranges) == 0 {
		return EmptyShift
	}
	s := &ShiftData{ranges: b.ranges}
	b.ranges = nil
	return s
}
