package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/deltatable/pkg/column"
	"github.com/kasuganosora/deltatable/pkg/rowset"
	"github.com/kasuganosora/deltatable/pkg/types"
	"github.com/kasuganosora/deltatable/pkg/update"
)

func newStaticTable(clock *update.Clock) *Table {
	col := column.NewIntColumn()
	col.Set(5, 50)
	return New(clock, rowset.NewTracking(rowset.FromKeys(5)),
		[]string{"n"}, map[string]column.Source{"n": col}, false)
}

func TestTable_Basics(t *testing.T) {
	clock := update.NewClock()
	tbl := newStaticTable(clock)

	assert.Equal(t, int64(1), tbl.Size())
	assert.False(t, tbl.IsRefreshing())
	assert.Equal(t, []string{"n"}, tbl.ColumnNames())
	assert.Equal(t, int32(50), tbl.Column("n").Get(5))
	assert.Panics(t, func() { tbl.Column("missing") })
}

func TestTable_MissingNamedColumnPanics(t *testing.T) {
	clock := update.NewClock()
	assert.Panics(t, func() {
		New(clock, rowset.NewTracking(rowset.Empty()), []string{"a"}, map[string]column.Source{}, false)
	})
}

func TestTable_Attributes(t *testing.T) {
	clock := update.NewClock()
	parent := newStaticTable(clock)
	parent.SetAttribute(AttrSortedColumns, "n")
	parent.SetAttribute(AttrGrouping, "g")

	child := newStaticTable(clock)
	parent.CopyAttributesTo(child, OpFlatten)

	v, ok := child.Attribute(AttrSortedColumns)
	require.True(t, ok, "sorted-ness survives flatten")
	assert.Equal(t, "n", v)
	_, ok = child.Attribute(AttrGrouping)
	assert.False(t, ok, "grouping does not survive flatten")

	child2 := newStaticTable(clock)
	parent.CopyAttributesTo(child2, OpFilter)
	_, ok = child2.Attribute(AttrGrouping)
	assert.True(t, ok)
}

func TestTable_ListenerTokens(t *testing.T) {
	clock := update.NewClock()
	col := column.NewIntColumn()
	tbl := New(clock, rowset.NewTracking(rowset.Empty()),
		[]string{"n"}, map[string]column.Source{"n": col}, true)

	var got []string
	tokA := tbl.Listen(update.ListenerFunc(func(u *update.Update) { got = append(got, "a") }))
	tokB := tbl.Listen(update.ListenerFunc(func(u *update.Update) { got = append(got, "b") }))
	require.NotEqual(t, tokA, tokB)

	u := update.NewEmptyUpdate(tbl.NewModifiedColumnSet())
	clock.RunCycle(func() { tbl.NotifyListeners(u) })
	assert.Equal(t, []string{"a", "b"}, got, "delivery in registration order")

	tbl.RemoveListener(tokA)
	clock.RunCycle(func() { tbl.NotifyListeners(u) })
	assert.Equal(t, []string{"a", "b", "b"}, got)
}

func TestTable_NotifyOutsideCyclePanics(t *testing.T) {
	clock := update.NewClock()
	tbl := newStaticTable(clock)
	assert.Panics(t, func() {
		tbl.NotifyListeners(update.NewEmptyUpdate(tbl.NewModifiedColumnSet()))
	})
}

func TestRedirectedColumn(t *testing.T) {
	inner := column.NewLongColumn()
	inner.Set(100, 1)
	inner.Set(200, 2)

	rows := rowset.NewTracking(rowset.FromKeys(100, 200))
	redir := &rowSetRedirection{rows: rows}
	view := NewRedirectedColumn(redir, inner)

	assert.Equal(t, types.KindLong, view.Kind())
	assert.Equal(t, int64(1), view.Get(0))
	assert.Equal(t, int64(2), view.Get(1))
	assert.Equal(t, types.NullLong, view.Get(2), "unmapped position reads NULL")
	assert.Equal(t, types.NullLong, view.Get(-1))
}

func TestRedirectedColumn_PrevView(t *testing.T) {
	inner := column.NewLongColumn()
	inner.Set(100, 1)
	inner.Set(200, 2)

	rows := rowset.NewTracking(rowset.FromKeys(100, 200))
	rows.StartTrackingPrev(nil)
	view := NewRedirectedColumn(&rowSetRedirection{rows: rows}, inner)

	rows.Remove(100)
	assert.Equal(t, int64(2), view.Get(0), "current view re-ranked")
	assert.Equal(t, int64(1), view.GetPrev(0), "previous view keeps old ranks")

	rows.CommitPrev()
	assert.Equal(t, int64(2), view.GetPrev(0))
}
