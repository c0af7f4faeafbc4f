// Package table exposes the table surface of the engine: a row set, named
// column sources, listener wiring, attribute propagation across derived
// tables, and the flatten transformer that projects a table onto dense
// positions [0, N).
package table

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kasuganosora/deltatable/pkg/column"
	"github.com/kasuganosora/deltatable/pkg/rowset"
	"github.com/kasuganosora/deltatable/pkg/update"
)

// Attribute names metadata tags carried by tables.
type Attribute string

const (
	// AttrFlat marks a table whose row set is always [0, size).
	AttrFlat Attribute = "Flat"
	// AttrSortedColumns records the sort the table is known to be in.
	AttrSortedColumns Attribute = "SortedColumns"
	// AttrGrouping records grouping metadata; it does not survive
	// re-keying operations.
	AttrGrouping Attribute = "Grouping"
)

// Operation selects which attributes carry over to a derived table.
type Operation int

const (
	// OpFlatten re-keys rows densely; order is preserved.
	OpFlatten Operation = iota
	// OpFilter drops rows; order is preserved.
	OpFilter
)

// attributesFor lists the attributes that survive each operation.
var attributesFor = map[Operation][]Attribute{
	OpFlatten: {AttrSortedColumns},
	OpFilter:  {AttrSortedColumns, AttrGrouping},
}

type listenerEntry struct {
	token uuid.UUID
	l     update.Listener
}

// Table is a set of rows with named column sources. A refreshing table
// delivers an Update to its listeners each cycle its content changes;
// delivery is synchronous on the update thread, parents before children.
type Table struct {
	clock *update.Clock

	rows        *rowset.TrackingRowSet
	columnNames []string
	columns     map[string]column.Source

	refreshing bool
	attributes map[Attribute]any
	listeners  []listenerEntry
}

// New creates a table over the given rows and columns. columnNames fixes
// the schema order; every name must be present in columns.
func New(clock *update.Clock, rows *rowset.TrackingRowSet, columnNames []string, columns map[string]column.Source, refreshing bool) *Table {
	for _, n := range columnNames {
		if _, ok := columns[n]; !ok {
			panic(fmt.Sprintf("table: column %q named but not provided", n))
		}
	}
	t := &Table{
		clock:       clock,
		rows:        rows,
		columnNames: columnNames,
		columns:     columns,
		refreshing:  refreshing,
		attributes:  make(map[Attribute]any),
	}
	if refreshing {
		rows.StartTrackingPrev(func() {
			clock.ArmFlusher(rows.CommitPrev)
		})
	}
	return t
}

// Clock returns the update clock the table runs on.
func (t *Table) Clock() *update.Clock {
	return t.clock
}

// RowSet returns the current membership.
func (t *Table) RowSet() *rowset.RowSet {
	return t.rows.RowSet()
}

// PrevRowSet returns the membership as of the last commit point.
func (t *Table) PrevRowSet() *rowset.RowSet {
	return t.rows.PrevRowSet()
}

// Rows returns the tracking row set for mutation by the table's producer.
func (t *Table) Rows() *rowset.TrackingRowSet {
	return t.rows
}

// Size returns the current row count.
func (t *Table) Size() int64 {
	return t.rows.Size()
}

// IsRefreshing reports whether the table delivers updates.
func (t *Table) IsRefreshing() bool {
	return t.refreshing
}

// ColumnNames returns the schema order. Callers must not mutate the slice.
func (t *Table) ColumnNames() []string {
	return t.columnNames
}

// Column returns the named column source.
func (t *Table) Column(name string) column.Source {
	src, ok := t.columns[name]
	if !ok {
		panic(fmt.Sprintf("table: unknown column %q", name))
	}
	return src
}

// NewModifiedColumnSet creates a cleared modified-column set over the
// table's schema.
func (t *Table) NewModifiedColumnSet() *update.ModifiedColumnSet {
	return update.NewModifiedColumnSet(t.columnNames)
}

// Attribute returns a metadata tag and whether it is set.
func (t *Table) Attribute(a Attribute) (any, bool) {
	v, ok := t.attributes[a]
	return v, ok
}

// SetAttribute sets a metadata tag.
func (t *Table) SetAttribute(a Attribute, v any) {
	t.attributes[a] = v
}

// IsFlat reports whether the table carries the flat tag.
func (t *Table) IsFlat() bool {
	_, ok := t.attributes[AttrFlat]
	return ok
}

// CopyAttributesTo transfers the attributes that survive op onto child.
func (t *Table) CopyAttributesTo(child *Table, op Operation) {
	for _, a := range attributesFor[op] {
		if v, ok := t.attributes[a]; ok {
			child.attributes[a] = v
		}
	}
}

// Listen subscribes l to the table's updates and returns a token for
// removal. NotifyListeners delivers to every subscriber whether or not the
// table is refreshing.
func (t *Table) Listen(l update.Listener) uuid.UUID {
	token := uuid.New()
	t.listeners = append(t.listeners, listenerEntry{token: token, l: l})
	return token
}

// RemoveListener drops the subscription identified by token.
func (t *Table) RemoveListener(token uuid.UUID) {
	for i, e := range t.listeners {
		if e.token == token {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

// NotifyListeners delivers u to the table's listeners in registration
// order. Must run inside an update cycle on the update thread; children
// notified here propagate to their own listeners before this call
// returns, which yields the topological parents-before-children order.
func (t *Table) NotifyListeners(u *update.Update) {
	if !t.clock.CycleActive() {
		panic("table: notify outside an update cycle")
	}
	for _, e := range t.listeners {
		e.l.OnUpdate(u)
	}
}
