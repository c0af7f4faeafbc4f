package column

import (
	"time"

	"github.com/kasuganosora/deltatable/pkg/rowset"
	"github.com/kasuganosora/deltatable/pkg/types"
	"github.com/kasuganosora/deltatable/pkg/update"
)

// BooleanColumn presents booleans over a byte carrier: false is 0, true is
// 1, NULL is -1. Reinterpret exposes the raw byte column.
type BooleanColumn struct {
	raw *Sparse[int8]
}

// NewBooleanColumn creates a boolean column.
func NewBooleanColumn() *BooleanColumn {
	return &BooleanColumn{raw: NewSparse[int8](types.KindBoolean, types.NullBoolean, false)}
}

// Reinterpret returns the byte carrier column.
func (b *BooleanColumn) Reinterpret() *Sparse[int8] {
	return b.raw
}

// Kind returns KindBoolean.
func (b *BooleanColumn) Kind() types.Kind {
	return types.KindBoolean
}

// Get returns the boxed boolean at key, or nil for NULL.
func (b *BooleanColumn) Get(key int64) any {
	return types.ByteAsBool(b.raw.At(key))
}

// GetPrev returns the boxed previous boolean at key, or nil for NULL.
func (b *BooleanColumn) GetPrev(key int64) any {
	return types.ByteAsBool(b.raw.PrevAt(key))
}

// SetValue stores a boxed boolean (or nil) at key.
func (b *BooleanColumn) SetValue(key int64, v any) {
	b.raw.Set(key, types.BoolAsByte(v))
}

// Remove nulls every designated cell.
func (b *BooleanColumn) Remove(rs *rowset.RowSet) {
	b.raw.Remove(rs)
}

// Shift relocates the designated cells by delta.
func (b *BooleanColumn) Shift(keys *rowset.RowSet, delta int64) {
	b.raw.Shift(keys, delta)
}

// EnsureCapacity is advisory.
func (b *BooleanColumn) EnsureCapacity(size int64, nullFill bool) {
	b.raw.EnsureCapacity(size, nullFill)
}

// StartTrackingPrevValues arms previous-value capture.
func (b *BooleanColumn) StartTrackingPrevValues(clock *update.Clock) {
	b.raw.StartTrackingPrevValues(clock)
}

// TimeColumn presents instants over a long carrier holding epoch
// nanoseconds. Reinterpret exposes the raw long column.
type TimeColumn struct {
	raw *Sparse[int64]
}

// NewTimeColumn creates a time column.
func NewTimeColumn() *TimeColumn {
	return &TimeColumn{raw: NewSparse[int64](types.KindTime, types.NullLong, false)}
}

// Reinterpret returns the long carrier column.
func (t *TimeColumn) Reinterpret() *Sparse[int64] {
	return t.raw
}

// Kind returns KindTime.
func (t *TimeColumn) Kind() types.Kind {
	return types.KindTime
}

// Get returns the boxed time.Time at key, or nil for NULL.
func (t *TimeColumn) Get(key int64) any {
	return nanosToTime(t.raw.At(key))
}

// GetPrev returns the boxed previous time.Time at key, or nil for NULL.
func (t *TimeColumn) GetPrev(key int64) any {
	return nanosToTime(t.raw.PrevAt(key))
}

// SetValue stores a boxed time.Time (or nil) at key.
func (t *TimeColumn) SetValue(key int64, v any) {
	if v == nil {
		t.raw.Set(key, types.NullLong)
		return
	}
	t.raw.Set(key, v.(time.Time).UnixNano())
}

// SetTime stores an instant at key.
func (t *TimeColumn) SetTime(key int64, v time.Time) {
	t.raw.Set(key, v.UnixNano())
}

// Remove nulls every designated cell.
func (t *TimeColumn) Remove(rs *rowset.RowSet) {
	t.raw.Remove(rs)
}

// Shift relocates the designated cells by delta.
func (t *TimeColumn) Shift(keys *rowset.RowSet, delta int64) {
	t.raw.Shift(keys, delta)
}

// EnsureCapacity is advisory.
func (t *TimeColumn) EnsureCapacity(size int64, nullFill bool) {
	t.raw.EnsureCapacity(size, nullFill)
}

// StartTrackingPrevValues arms previous-value capture.
func (t *TimeColumn) StartTrackingPrevValues(clock *update.Clock) {
	t.raw.StartTrackingPrevValues(clock)
}

func nanosToTime(nanos int64) any {
	if nanos == types.NullLong {
		return nil
	}
	return time.Unix(0, nanos)
}
