// Package update defines the messages and clockwork of change propagation:
// the Update record exchanged between tables, shift programs, modified
// column sets, and the single-threaded update clock that drives cycles.
package update

import (
	"errors"
	"fmt"

	"github.com/kasuganosora/deltatable/pkg/rowset"
)

// Contract-violation errors surfaced by Validate.
var (
	ErrOverlappingSets = errors.New("update: added and modified sets overlap")
	ErrBadShift        = errors.New("update: malformed shift program")
)

// Update describes the change between two successive states of a table.
//
// Added and Modified are expressed in the current row key space, Removed in
// the previous one. Shifted re-keys the survivors between the two spaces;
// when reasoning about positions, shifts apply conceptually before adds,
// removes and modifies.
type Update struct {
	Added    *rowset.RowSet
	Removed  *rowset.RowSet
	Modified *rowset.RowSet
	Shifted  *ShiftData

	// ModifiedColumns marks which columns may have changed for the
	// Modified rows. Receivers treat it as read-only.
	ModifiedColumns *ModifiedColumnSet
}

// NewEmptyUpdate returns an update with all payloads empty.
func NewEmptyUpdate(mcs *ModifiedColumnSet) *Update {
	return &Update{
		Added:           rowset.Empty(),
		Removed:         rowset.Empty(),
		Modified:        rowset.Empty(),
		Shifted:         EmptyShift,
		ModifiedColumns: mcs,
	}
}

// Empty reports whether the update carries no change at all.
func (u *Update) Empty() bool {
	return u.Added.IsEmpty() && u.Removed.IsEmpty() && u.Modified.IsEmpty() && u.Shifted.Empty()
}

// Validate checks the update invariants that are expressible within one
// message: Added and Modified (both current-space) are disjoint, and the
// shift program is well formed. Removed lives in the previous key space and
// may numerically coincide with Added.
func (u *Update) Validate() error {
	if u.Added.Overlaps(u.Modified) {
		return fmt.Errorf("%w: %s and %s", ErrOverlappingSets, u.Added, u.Modified)
	}
	if err := u.Shifted.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadShift, err)
	}
	return nil
}

// String renders the update for diagnostics.
func (u *Update) String() string {
	return fmt.Sprintf("update{added=%s removed=%s modified=%s shifted=%s}",
		u.Added, u.Removed, u.Modified, u.Shifted)
}

// Listener receives the updates of a table it is subscribed to. Delivery is
// single-threaded within an update cycle, parents before children.
type Listener interface {
	OnUpdate(u *Update)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(u *Update)

// OnUpdate implements Listener.
func (f ListenerFunc) OnUpdate(u *Update) {
	f(u)
}
