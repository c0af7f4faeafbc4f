package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/deltatable/pkg/column"
	"github.com/kasuganosora/deltatable/pkg/rowset"
	"github.com/kasuganosora/deltatable/pkg/update"
)

// newRefreshingParent builds a one-column refreshing table whose long
// column holds key*10 for every seeded key.
func newRefreshingParent(clock *update.Clock, keys ...int64) (*Table, *column.Sparse[int64]) {
	col := column.NewLongColumn()
	rs := rowset.Empty()
	for _, k := range keys {
		rs.Insert(k)
		col.Set(k, k*10)
	}
	tbl := New(clock, rowset.NewTracking(rs), []string{"v"}, map[string]column.Source{"v": col}, true)
	return tbl, col
}

// recordingListener retains the last update it saw.
type recordingListener struct {
	last  *update.Update
	count int
}

func (r *recordingListener) OnUpdate(u *update.Update) {
	r.last = u
	r.count++
}

// publish applies the membership delta to the parent's row set and
// delivers the update, all within one cycle.
func publish(clock *update.Clock, parent *Table, up *update.Update) {
	clock.RunCycle(func() {
		parent.Rows().RemoveSet(up.Removed)
		parent.Rows().InsertSet(up.Added)
		parent.NotifyListeners(up)
	})
}

func upstream(parent *Table, added, removed, modified *rowset.RowSet) *update.Update {
	mcs := parent.NewModifiedColumnSet()
	if !modified.IsEmpty() {
		mcs.SetAll()
	}
	return &update.Update{
		Added:           added,
		Removed:         removed,
		Modified:        modified,
		Shifted:         update.EmptyShift,
		ModifiedColumns: mcs,
	}
}

// checkDenseConsistency applies the downstream update to the previous
// dense row set (remove, shift, add) and verifies it lands on [0, newSize).
func checkDenseConsistency(t *testing.T, down *update.Update, prevSize, newSize int64) {
	t.Helper()
	var prev *rowset.RowSet
	if prevSize > 0 {
		prev = rowset.FromRange(0, prevSize-1)
	} else {
		prev = rowset.Empty()
	}
	step1 := prev.Minus(down.Removed)
	step2 := down.Shifted.Apply(step1)
	final := step2.Union(down.Added)

	var want *rowset.RowSet
	if newSize > 0 {
		want = rowset.FromRange(0, newSize-1)
	} else {
		want = rowset.Empty()
	}
	assert.True(t, final.Equal(want), "downstream update inconsistent: got %s want %s", final, want)
}

func TestFlatten_Initialization(t *testing.T) {
	clock := update.NewClock()
	parent, _ := newRefreshingParent(clock, 10, 20, 30)

	flat := Flatten(parent)

	assert.Equal(t, []int64{0, 1, 2}, flat.RowSet().Keys())
	assert.True(t, flat.IsFlat())
	assert.True(t, flat.IsRefreshing())
	assert.Equal(t, parent.ColumnNames(), flat.ColumnNames())

	// Dense position p reads the parent cell at the p-th parent key.
	assert.Equal(t, int64(100), flat.Column("v").Get(0))
	assert.Equal(t, int64(200), flat.Column("v").Get(1))
	assert.Equal(t, int64(300), flat.Column("v").Get(2))
}

func TestFlatten_EmptyParent(t *testing.T) {
	clock := update.NewClock()
	parent, _ := newRefreshingParent(clock)

	flat := Flatten(parent)
	assert.True(t, flat.RowSet().IsEmpty())
}

func TestFlatten_PureModificationPassesThrough(t *testing.T) {
	clock := update.NewClock()
	parent, col := newRefreshingParent(clock, 10, 20, 30)
	flat := Flatten(parent)

	rec := &recordingListener{}
	flat.Listen(rec)

	clock.RunCycle(func() {
		col.Set(20, 999)
		parent.NotifyListeners(upstream(parent, rowset.Empty(), rowset.Empty(), rowset.FromKeys(20)))
	})

	require.Equal(t, 1, rec.count)
	down := rec.last
	assert.Equal(t, []int64{1}, down.Modified.Keys())
	assert.True(t, down.Added.IsEmpty())
	assert.True(t, down.Removed.IsEmpty())
	assert.True(t, down.Shifted.Empty())
	assert.Equal(t, []int64{0, 1, 2}, flat.RowSet().Keys())
	assert.True(t, down.ModifiedColumns.Has("v"))
}

func TestFlatten_TailAdd(t *testing.T) {
	clock := update.NewClock()
	parent, col := newRefreshingParent(clock, 10, 20)
	flat := Flatten(parent)

	rec := &recordingListener{}
	flat.Listen(rec)

	clock.RunCycle(func() {
		col.Set(30, 300)
		parent.Rows().Insert(30)
		parent.NotifyListeners(upstream(parent, rowset.FromKeys(30), rowset.Empty(), rowset.Empty()))
	})

	down := rec.last
	require.NotNil(t, down)
	assert.Equal(t, []int64{2}, down.Added.Keys())
	assert.True(t, down.Removed.IsEmpty())
	assert.True(t, down.Shifted.Empty())
	assert.Equal(t, []int64{0, 1, 2}, flat.RowSet().Keys())
	checkDenseConsistency(t, down, 2, 3)
}

func TestFlatten_MidRemoveShifts(t *testing.T) {
	clock := update.NewClock()
	parent, _ := newRefreshingParent(clock, 10, 20, 30, 40)
	flat := Flatten(parent)

	rec := &recordingListener{}
	flat.Listen(rec)

	publish(clock, parent, upstream(parent, rowset.Empty(), rowset.FromKeys(20), rowset.Empty()))

	down := rec.last
	require.NotNil(t, down)
	assert.Equal(t, []int64{1}, down.Removed.Keys())
	assert.True(t, down.Added.IsEmpty())

	require.Equal(t, 1, down.Shifted.Size())
	assert.Equal(t, update.ShiftRange{First: 2, Last: 3, Delta: -1}, down.Shifted.Range(0))
	assert.Equal(t, []int64{0, 1, 2}, flat.RowSet().Keys())
	checkDenseConsistency(t, down, 4, 3)

	// Columns follow the new ranks.
	assert.Equal(t, int64(100), flat.Column("v").Get(0))
	assert.Equal(t, int64(300), flat.Column("v").Get(1))
	assert.Equal(t, int64(400), flat.Column("v").Get(2))
}

func TestFlatten_EqualSizeReplaceCancels(t *testing.T) {
	clock := update.NewClock()
	parent, col := newRefreshingParent(clock, 10, 20, 30)
	flat := Flatten(parent)

	rec := &recordingListener{}
	flat.Listen(rec)

	clock.RunCycle(func() {
		col.Set(25, 250)
		parent.Rows().Remove(20)
		parent.Rows().Insert(25)
		parent.NotifyListeners(upstream(parent, rowset.FromKeys(25), rowset.FromKeys(20), rowset.Empty()))
	})

	down := rec.last
	require.NotNil(t, down)
	assert.Equal(t, []int64{1}, down.Added.Keys())
	assert.Equal(t, []int64{1}, down.Removed.Keys())
	assert.True(t, down.Shifted.Empty(), "equal-size replace nets to no shift")
	assert.Equal(t, []int64{0, 1, 2}, flat.RowSet().Keys())
	checkDenseConsistency(t, down, 3, 3)
}

func TestFlatten_MidAddShiftsTail(t *testing.T) {
	clock := update.NewClock()
	parent, col := newRefreshingParent(clock, 10, 30, 40)
	flat := Flatten(parent)

	rec := &recordingListener{}
	flat.Listen(rec)

	clock.RunCycle(func() {
		col.Set(20, 200)
		parent.Rows().Insert(20)
		parent.NotifyListeners(upstream(parent, rowset.FromKeys(20), rowset.Empty(), rowset.Empty()))
	})

	down := rec.last
	require.NotNil(t, down)
	assert.Equal(t, []int64{1}, down.Added.Keys())
	require.Equal(t, 1, down.Shifted.Size())
	assert.Equal(t, update.ShiftRange{First: 1, Last: 2, Delta: 1}, down.Shifted.Range(0))
	checkDenseConsistency(t, down, 3, 4)
}

func TestFlatten_MultiRangeChurn(t *testing.T) {
	clock := update.NewClock()
	parent, col := newRefreshingParent(clock, 10, 20, 30, 40, 50, 60)
	flat := Flatten(parent)

	rec := &recordingListener{}
	flat.Listen(rec)

	// Remove {20, 50}, add {35, 36, 70}.
	clock.RunCycle(func() {
		for _, k := range []int64{35, 36, 70} {
			col.Set(k, k*10)
		}
		parent.Rows().Remove(20)
		parent.Rows().Remove(50)
		parent.Rows().Insert(35)
		parent.Rows().Insert(36)
		parent.Rows().Insert(70)
		parent.NotifyListeners(upstream(parent,
			rowset.FromKeys(35, 36, 70), rowset.FromKeys(20, 50), rowset.Empty()))
	})

	down := rec.last
	require.NotNil(t, down)
	// New order: 10, 30, 35, 36, 40, 60, 70.
	assert.Equal(t, []int64{2, 3, 6}, down.Added.Keys())
	assert.Equal(t, []int64{1, 4}, down.Removed.Keys())
	assert.NoError(t, down.Shifted.Validate(), "program must be minimal and ordered")
	checkDenseConsistency(t, down, 6, 7)
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6}, flat.RowSet().Keys())

	// Read-through correctness at every dense position.
	for p := int64(0); p < flat.Size(); p++ {
		parentKey := parent.RowSet().Get(p)
		assert.Equal(t, parentKey*10, flat.Column("v").Get(p), "dense position %d", p)
	}
}

func TestFlatten_ShrinkToEmpty(t *testing.T) {
	clock := update.NewClock()
	parent, _ := newRefreshingParent(clock, 10, 20)
	flat := Flatten(parent)

	rec := &recordingListener{}
	flat.Listen(rec)

	publish(clock, parent, upstream(parent, rowset.Empty(), rowset.FromKeys(10, 20), rowset.Empty()))

	down := rec.last
	require.NotNil(t, down)
	assert.Equal(t, []int64{0, 1}, down.Removed.Keys())
	assert.True(t, flat.RowSet().IsEmpty())
	checkDenseConsistency(t, down, 2, 0)
}

func TestFlatten_PrevReadsDuringCycle(t *testing.T) {
	clock := update.NewClock()
	parent, _ := newRefreshingParent(clock, 10, 20, 30, 40)
	flat := Flatten(parent)

	clock.RunCycle(func() {
		parent.Rows().Remove(20)
		parent.NotifyListeners(upstream(parent, rowset.Empty(), rowset.FromKeys(20), rowset.Empty()))

		// Mid-cycle: prev redirection still resolves through the previous
		// parent row set.
		assert.Equal(t, int64(200), flat.Column("v").GetPrev(1))
		// Current redirection sees the shrunk parent.
		assert.Equal(t, int64(300), flat.Column("v").Get(1))
	})

	// After commit both views agree.
	assert.Equal(t, int64(300), flat.Column("v").GetPrev(1))
}

func TestFlatten_InvalidParentUpdatePanics(t *testing.T) {
	clock := update.NewClock()
	parent, _ := newRefreshingParent(clock, 10, 20)
	Flatten(parent)

	bad := upstream(parent, rowset.FromKeys(30), rowset.Empty(), rowset.FromKeys(30))
	assert.Panics(t, func() {
		clock.RunCycle(func() {
			parent.Rows().Insert(30)
			parent.NotifyListeners(bad)
		})
	})
}

func TestFlatten_UsePrev(t *testing.T) {
	clock := update.NewClock()
	parent, _ := newRefreshingParent(clock, 10, 20, 30)

	clock.StartCycle()
	parent.Rows().Remove(10)
	flat := FlattenWith(parent, FlattenOptions{UsePrev: true})
	assert.Equal(t, int64(3), flat.Size(), "initialized from the pre-cycle membership")
	clock.CompleteCycle()
}

func TestBuildDenseShift_Properties(t *testing.T) {
	tests := []struct {
		name     string
		added    []int64 // dense current space
		removed  []int64 // dense prev space
		prevSize int64
	}{
		{"single mid remove", nil, []int64{1}, 4},
		{"single mid add", []int64{1}, nil, 3},
		{"equal replace", []int64{1}, []int64{1}, 3},
		{"unequal replace", []int64{1, 2}, []int64{1}, 4},
		{"head remove", nil, []int64{0}, 5},
		{"head add", []int64{0}, nil, 5},
		{"disjoint churn", []int64{0, 3, 4}, []int64{2, 5}, 8},
		{"adjacent runs", []int64{2, 3, 4}, []int64{1, 2}, 6},
		{"everything removed", nil, []int64{0, 1, 2}, 3},
		{"from empty", []int64{0, 1, 2}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added := rowset.FromKeys(tt.added...)
			removed := rowset.FromKeys(tt.removed...)
			newSize := tt.prevSize - removed.Size() + added.Size()

			s := buildDenseShift(added, removed, tt.prevSize)
			assert.NoError(t, s.Validate())

			down := &update.Update{
				Added:    added,
				Removed:  removed,
				Modified: rowset.Empty(),
				Shifted:  s,
			}
			checkDenseConsistency(t, down, tt.prevSize, newSize)
		})
	}
}
