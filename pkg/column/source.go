// Package column implements the sparse page store: an unbounded,
// sparsely populated column of values indexed by 64-bit row keys, with
// null-by-default reads, bulk chunk access, and exact previous-value
// retrieval over an update cycle.
package column

import (
	"github.com/kasuganosora/deltatable/pkg/rowset"
	"github.com/kasuganosora/deltatable/pkg/types"
	"github.com/kasuganosora/deltatable/pkg/update"
)

// Source is the read capability of a column. Values are boxed; the
// concrete typed columns expose unboxed accessors (At, PrevAt) alongside.
type Source interface {
	// Kind identifies the element type.
	Kind() types.Kind

	// Get returns the current value at key. Unwritten cells and negative
	// keys read as the type's NULL.
	Get(key int64) any

	// GetPrev returns the value at key as of the last commit point. While
	// no capture is held for the cell this equals Get.
	GetPrev(key int64) any
}

// WritableSource extends Source with mutation. All mutation happens on the
// update thread inside a cycle.
type WritableSource interface {
	Source

	// SetValue stores a boxed value at key. Storing the type's NULL
	// sentinel (or nil for object columns) is legal and goes through
	// previous-value capture like any other write.
	SetValue(key int64, v any)

	// Remove nulls every designated cell, with capture.
	Remove(rs *rowset.RowSet)

	// Shift relocates the values at keys by delta, null-filling the
	// vacated cells, with capture on both ends. keys iterates in the
	// direction that avoids self-overwrite.
	Shift(keys *rowset.RowSet, delta int64)

	// EnsureCapacity is advisory; the sparse store allocates lazily.
	EnsureCapacity(size int64, nullFill bool)

	// StartTrackingPrevValues arms previous-value capture against the
	// given clock. Arming twice is fatal misuse.
	StartTrackingPrevValues(clock *update.Clock)
}
