package tuple

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/deltatable/pkg/chunk"
	"github.com/kasuganosora/deltatable/pkg/column"
	"github.com/kasuganosora/deltatable/pkg/types"
	"github.com/kasuganosora/deltatable/pkg/update"
)

func newTestSource() (*Source, *column.Sparse[int64], *column.BooleanColumn, *column.TimeColumn) {
	longs := column.NewLongColumn()
	bools := column.NewBooleanColumn()
	times := column.NewTimeColumn()
	return NewSource(longs, bools, times), longs, bools, times
}

func TestCreateTuple(t *testing.T) {
	src, longs, bools, times := newTestSource()
	stamp := time.Unix(0, 1_700_000_000_000_000_000)

	longs.Set(5, 42)
	bools.SetValue(5, true)
	times.SetTime(5, stamp)

	tup := src.CreateTuple(5)
	require.Len(t, tup, 3)
	assert.Equal(t, int64(42), tup[0])
	assert.Equal(t, true, tup[1])
	assert.Equal(t, stamp, tup[2])
}

func TestCreateTuple_NullRow(t *testing.T) {
	src, _, _, _ := newTestSource()

	tup := src.CreateTuple(99)
	assert.Equal(t, types.NullLong, tup[0])
	assert.Nil(t, tup[1])
	assert.Nil(t, tup[2])
}

func TestCreatePreviousTuple(t *testing.T) {
	clock := update.NewClock()
	src, longs, _, _ := newTestSource()
	longs.Set(1, 10)
	longs.StartTrackingPrevValues(clock)

	clock.StartCycle()
	longs.Set(1, 20)

	assert.Equal(t, int64(20), src.CreateTuple(1)[0])
	assert.Equal(t, int64(10), src.CreatePreviousTuple(1)[0])
	clock.CompleteCycle()
}

func TestReinterpretedRoundTrip(t *testing.T) {
	src, _, _, _ := newTestSource()
	stamp := time.Unix(0, 12345)

	tup := src.CreateTupleFromValues(int64(7), false, stamp)

	assert.Equal(t, int64(7), src.ExportElementReinterpreted(tup, 0))
	assert.Equal(t, int8(0), src.ExportElementReinterpreted(tup, 1))
	assert.Equal(t, int64(12345), src.ExportElementReinterpreted(tup, 2))

	back := src.CreateTupleFromReinterpretedValues(int64(7), int8(0), int64(12345))
	assert.Equal(t, tup, back)
}

func TestReinterpretedNulls(t *testing.T) {
	src, _, _, _ := newTestSource()

	tup := src.CreateTupleFromValues(types.NullLong, nil, nil)
	assert.Equal(t, types.NullBoolean, src.ExportElementReinterpreted(tup, 1))
	assert.Equal(t, types.NullLong, src.ExportElementReinterpreted(tup, 2))

	back := src.CreateTupleFromReinterpretedValues(types.NullLong, types.NullBoolean, types.NullLong)
	assert.Nil(t, back[1])
	assert.Nil(t, back[2])
}

func TestExportElement_BadIndex(t *testing.T) {
	src, _, _, _ := newTestSource()
	tup := src.CreateTuple(0)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		ie, ok := r.(*IndexError)
		require.True(t, ok)
		assert.Equal(t, 3, ie.Index)
		assert.Equal(t, 3, ie.Arity)
	}()
	src.ExportElement(tup, 3)
}

func TestExportElementTo(t *testing.T) {
	src, longs, _, _ := newTestSource()
	longs.Set(2, 77)

	dest := column.NewLongColumn()
	src.ExportElementTo(src.CreateTuple(2), 0, dest, 9)
	assert.Equal(t, int64(77), dest.At(9))
}

func TestExportToExternalKey(t *testing.T) {
	src, longs, bools, _ := newTestSource()
	longs.Set(0, 1)
	bools.SetValue(0, true)
	longs.Set(1, 1)
	bools.SetValue(1, false)

	k0 := src.ExportToExternalKey(src.CreateTuple(0))
	k1 := src.ExportToExternalKey(src.CreateTuple(1))
	assert.NotEqual(t, k0, k1)
	assert.Equal(t, k0, src.ExportToExternalKey(src.CreateTuple(0)))
}

func TestConvertChunks(t *testing.T) {
	src, _, _, _ := newTestSource()

	longsChunk := chunk.FromSlice([]any{int64(1), int64(2)})
	boolsChunk := chunk.FromSlice([]any{true, false})
	timesChunk := chunk.FromSlice([]any{nil, nil})

	dest := chunk.New[Tuple](4)
	src.ConvertChunks(dest, 2, longsChunk, boolsChunk, timesChunk)

	require.Equal(t, 2, dest.Size())
	assert.Equal(t, Tuple{int64(1), true, nil}, dest.Get(0))
	assert.Equal(t, Tuple{int64(2), false, nil}, dest.Get(1))
}

func TestConvertChunks_ArityMismatchPanics(t *testing.T) {
	src, _, _, _ := newTestSource()
	dest := chunk.New[Tuple](4)
	assert.Panics(t, func() {
		src.ConvertChunks(dest, 1, chunk.FromSlice([]any{int64(1)}))
	})
}
