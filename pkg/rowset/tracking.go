package rowset

// TrackingRowSet is a row set that can snapshot its membership at the start
// of an update cycle. While a cycle is active the pre-cycle membership stays
// readable through PrevRowSet; committing the cycle discards the snapshot.
//
// All mutation happens on the update thread, so no locking is done here.
type TrackingRowSet struct {
	cur  *RowSet
	prev *RowSet // nil when no snapshot is held

	tracking bool
	// onFirstCapture runs once per cycle, right before the snapshot is
	// taken. The owner uses it to arm a commit callback with the update
	// clock.
	onFirstCapture func()
}

// NewTracking wraps an initial row set. The tracking set takes ownership of
// initial.
func NewTracking(initial *RowSet) *TrackingRowSet {
	return &TrackingRowSet{cur: initial}
}

// StartTrackingPrev arms previous-version capture. onFirstCapture (optional)
// runs once per cycle when the first mutation triggers the snapshot.
func (t *TrackingRowSet) StartTrackingPrev(onFirstCapture func()) {
	t.tracking = true
	t.onFirstCapture = onFirstCapture
}

// RowSet returns the live membership. Callers must not mutate it directly;
// use the tracking set's mutators so the snapshot stays correct.
func (t *TrackingRowSet) RowSet() *RowSet {
	return t.cur
}

// PrevRowSet returns the membership as of the last commit point. When no
// snapshot is held this is the live membership.
func (t *TrackingRowSet) PrevRowSet() *RowSet {
	if t.prev != nil {
		return t.prev
	}
	return t.cur
}

// Size returns the live membership size.
func (t *TrackingRowSet) Size() int64 {
	return t.cur.Size()
}

// SizePrev returns the size as of the last commit point.
func (t *TrackingRowSet) SizePrev() int64 {
	return t.PrevRowSet().Size()
}

func (t *TrackingRowSet) maybeCapture() {
	if !t.tracking || t.prev != nil {
		return
	}
	if t.onFirstCapture != nil {
		t.onFirstCapture()
	}
	t.prev = t.cur.Clone()
}

// Insert adds a key, snapshotting first if this is the cycle's first
// mutation.
func (t *TrackingRowSet) Insert(key int64) {
	t.maybeCapture()
	t.cur.Insert(key)
}

// InsertRange adds the contiguous keys [first, last].
func (t *TrackingRowSet) InsertRange(first, last int64) {
	t.maybeCapture()
	t.cur.InsertRange(first, last)
}

// InsertSet adds all keys of other.
func (t *TrackingRowSet) InsertSet(other *RowSet) {
	t.maybeCapture()
	t.cur.InsertSet(other)
}

// Remove deletes a key.
func (t *TrackingRowSet) Remove(key int64) {
	t.maybeCapture()
	t.cur.Remove(key)
}

// RemoveRange deletes the contiguous keys [first, last].
func (t *TrackingRowSet) RemoveRange(first, last int64) {
	t.maybeCapture()
	t.cur.RemoveRange(first, last)
}

// RemoveSet deletes all keys of other.
func (t *TrackingRowSet) RemoveSet(other *RowSet) {
	t.maybeCapture()
	t.cur.RemoveSet(other)
}

// CommitPrev drops the cycle snapshot; PrevRowSet reads the live membership
// again until the next mutation under tracking.
func (t *TrackingRowSet) CommitPrev() {
	t.prev = nil
}
