package table

import (
	"fmt"
	"math"

	"github.com/kasuganosora/deltatable/pkg/column"
	"github.com/kasuganosora/deltatable/pkg/rowset"
	"github.com/kasuganosora/deltatable/pkg/update"
)

// FlattenOptions controls flatten initialization.
type FlattenOptions struct {
	// UsePrev initializes from the parent's previous row set instead of
	// the current one; used when constructing during an in-flight cycle.
	UsePrev bool
}

// Flatten derives a table whose row set is always [0, size) and whose
// columns read through to parent at the dense position's parent key. When
// the parent refreshes, every parent update is translated into the dense
// key space and re-published.
func Flatten(parent *Table) *Table {
	return FlattenWith(parent, FlattenOptions{})
}

// FlattenWith is Flatten with explicit options.
func FlattenWith(parent *Table, opts FlattenOptions) *Table {
	initial := parent.RowSet()
	if opts.UsePrev {
		initial = parent.PrevRowSet()
	}
	n := initial.Size()

	redir := &rowSetRedirection{rows: parent.rows}
	cols := make(map[string]column.Source, len(parent.columnNames))
	for _, name := range parent.columnNames {
		cols[name] = NewRedirectedColumn(redir, parent.columns[name])
	}

	var dense *rowset.RowSet
	if n > 0 {
		dense = rowset.FromRange(0, n-1)
	} else {
		dense = rowset.Empty()
	}
	result := New(parent.clock, rowset.NewTracking(dense), parent.columnNames, cols, parent.refreshing)
	result.SetAttribute(AttrFlat, true)
	parent.CopyAttributesTo(result, OpFlatten)

	if parent.IsRefreshing() {
		fl := &flattenListener{
			parent:   parent,
			result:   result,
			prevSize: n,
		}
		parent.Listen(fl)
	}
	return result
}

// flattenListener translates parent updates into the dense key space.
type flattenListener struct {
	parent   *Table
	result   *Table
	prevSize int64
}

// OnUpdate implements update.Listener.
//
// Modified rows keep their dense ranks because parent shifts never
// reorder; only net additions and removals move dense positions. The
// downstream shift program is rebuilt by range-merging the dense added and
// removed ranges in ascending order.
func (f *flattenListener) OnUpdate(up *update.Update) {
	if err := up.Validate(); err != nil {
		panic(fmt.Sprintf("flatten: parent update violates its contract: %v", err))
	}

	parentCur := f.parent.RowSet()
	parentPrev := f.parent.PrevRowSet()

	down := &update.Update{
		ModifiedColumns: up.ModifiedColumns.Clone(),
		Modified:        parentCur.Invert(up.Modified),
	}

	if up.Added.IsEmpty() && up.Removed.IsEmpty() {
		// Pure modification: dense positions cannot change.
		down.Added = rowset.Empty()
		down.Removed = rowset.Empty()
		down.Shifted = update.EmptyShift
		f.result.NotifyListeners(down)
		return
	}

	down.Added = parentCur.Invert(up.Added)
	down.Removed = parentPrev.Invert(up.Removed)
	down.Shifted = buildDenseShift(down.Added, down.Removed, f.prevSize)

	// Equal sizes leave the dense membership [0, size) untouched even when
	// the parent replaced rows.
	newSize := parentCur.Size()
	if newSize < f.prevSize {
		f.result.rows.RemoveRange(newSize, f.prevSize-1)
	} else if newSize > f.prevSize {
		f.result.rows.InsertRange(f.prevSize, newSize-1)
	}
	f.prevSize = newSize

	f.result.NotifyListeners(down)
}

// buildDenseShift reconstructs the minimal shift program between two dense
// orderings of the same row set, given the dense positions added (current
// space) and removed (previous space).
//
// Two range cursors run in ascending order: R over the removed ranges and
// A over the added ranges with starts pre-shifted back into the previous
// space by the running delta. At each step the earlier event is consumed,
// a shift covering the gap before it is emitted at the running delta, and
// the delta absorbs the event's row count. A trailing shift covers the
// remainder up to prevSize. The builder drops zero-delta ranges and fuses
// adjacent equal-delta ranges, so the program comes out minimal.
func buildDenseShift(added, removed *rowset.RowSet, prevSize int64) *update.ShiftData {
	b := update.NewShiftBuilder()

	rIt := removed.RangeIterator()
	aIt := added.RangeIterator()
	var rLo, rHi, aLo, aHi int64
	rOK := rIt.HasNext()
	if rOK {
		rLo, rHi = rIt.Next()
	}
	aOK := aIt.HasNext()
	if aOK {
		aLo, aHi = aIt.Next()
	}

	var currDelta int64  // prev -> new shift applied so far
	var currMarker int64 // prev key up to which the program is defined

	for rOK || aOK {
		rStart := int64(math.MaxInt64)
		if rOK {
			rStart = rLo
		}
		aStart := int64(math.MaxInt64)
		if aOK {
			aStart = aLo - currDelta // added keys back in prev space
		}

		switch {
		case rOK && aOK && rStart == aStart:
			// A remove and an add at the same location.
			dtR := rHi - rLo + 1
			dtA := aHi - aLo + 1
			if dtR != dtA {
				b.Append(currMarker, rStart-1, currDelta)
				currDelta += dtA - dtR
				currMarker = rHi + 1
			}
			rOK = rIt.HasNext()
			if rOK {
				rLo, rHi = rIt.Next()
			}
			aOK = aIt.HasNext()
			if aOK {
				aLo, aHi = aIt.Next()
			}
		case rStart < aStart:
			b.Append(currMarker, rStart-1, currDelta)
			currDelta -= rHi - rLo + 1
			currMarker = rHi + 1
			rOK = rIt.HasNext()
			if rOK {
				rLo, rHi = rIt.Next()
			}
		default:
			b.Append(currMarker, aStart-1, currDelta)
			currDelta += aHi - aLo + 1
			currMarker = aStart
			aOK = aIt.HasNext()
			if aOK {
				aLo, aHi = aIt.Next()
			}
		}
	}

	if currMarker < prevSize {
		b.Append(currMarker, prevSize-1, currDelta)
	}
	return b.Build()
}
