package column

import "sort"

// getShadow returns the shadow leaf and in-use words for key, or nils when
// the shadow path is unallocated. The two trees are allocated together, so
// one lookup answers for both.
func (s *Sparse[T]) getShadow(key int64) ([]T, []uint64) {
	b0, b1, b2, _ := splitKey(key)
	if b0 >= len(s.prevInUse) {
		return nil, nil
	}
	u1 := s.prevInUse[b0]
	if b1 >= len(u1) {
		return nil, nil
	}
	u2 := u1[b1]
	if b2 >= len(u2) {
		return nil, nil
	}
	words := u2[b2]
	if words == nil {
		return nil, nil
	}
	return s.prevBlocks[b0][b1][b2], words
}

// shouldRecordPrevious runs before every mutation of key. It returns the
// shadow leaf to copy the pre-image into, or nil when no capture is due:
// tracking is disarmed, or the cell's pre-image was already captured this
// cycle. The first capture of a cycle arms the commit flusher.
func (s *Sparse[T]) shouldRecordPrevious(key int64) []T {
	if !s.tracking {
		return nil
	}
	if !s.flusherArmed {
		s.clock.ArmFlusher(s.commitPrevValues)
		s.flusherArmed = true
	}
	shadow, words := s.ensureShadow(key)
	inner := int(key) & InnerMask
	w, bit := inner>>6, uint64(1)<<(uint(inner)&63)
	if words[w]&bit != 0 {
		return nil
	}
	words[w] |= bit
	return shadow
}

// ensureShadow allocates the shadow value leaf and in-use leaf along key's
// path as needed. A leaf's first allocation in the cycle is logged in
// prevAllocated for the commit teardown. Shadow value leaves are borrowed
// without null-filling; the in-use bits gate every read of them.
func (s *Sparse[T]) ensureShadow(key int64) ([]T, []uint64) {
	b0, b1, b2, _ := splitKey(key)

	if s.prevBlocks == nil {
		s.prevBlocks = s.pools.borrowRoot()
		s.prevInUse = inUseRootPool.Get()[:0]
	}
	s.prevBlocks = ensureLen(s.prevBlocks, b0, Block0Mask+1)
	s.prevInUse = ensureLen(s.prevInUse, b0, Block0Mask+1)

	d1 := s.prevBlocks[b0]
	u1 := s.prevInUse[b0]
	if d1 == nil {
		d1 = s.pools.borrowDir1()
		u1 = inUseDir1Pool.Get()[:0]
	}
	d1 = ensureLen(d1, b1, Block1Mask+1)
	u1 = ensureLen(u1, b1, Block1Mask+1)
	s.prevBlocks[b0] = d1
	s.prevInUse[b0] = u1

	d2 := d1[b1]
	u2 := u1[b1]
	if d2 == nil {
		d2 = s.pools.borrowDir2()
		u2 = inUseDir2Pool.Get()[:0]
	}
	d2 = ensureLen(d2, b2, Block2Mask+1)
	u2 = ensureLen(u2, b2, Block2Mask+1)
	d1[b1] = d2
	u1[b1] = u2

	words := u2[b2]
	if words == nil {
		d2[b2] = s.pools.borrowLeaf()
		words = inUseRecycler.Get()
		u2[b2] = words
		s.prevAllocated = append(s.prevAllocated, blockKey(key))
	}
	return d2[b2], words
}

// commitPrevValues is the cycle flusher: it walks the allocated-leaves log
// (never the directory), returns every shadow leaf and in-use leaf to its
// recycler, deduplicates the log upward by level to recycle the emptied
// directories, and resets the tracking state for the next cycle.
func (s *Sparse[T]) commitPrevValues() {
	if len(s.prevAllocated) == 0 {
		s.flusherArmed = false
		return
	}

	bks := s.prevAllocated
	sort.Slice(bks, func(i, j int) bool { return bks[i] < bks[j] })

	// Leaves.
	for _, bk := range bks {
		b0, b1, b2 := blockKeyIndices(bk)
		d2 := s.prevBlocks[b0][b1]
		u2 := s.prevInUse[b0][b1]
		s.pools.recycleLeaf(d2[b2])
		d2[b2] = nil
		inUseRecycler.Put(u2[b2])
		u2[b2] = nil
	}

	// Level-2 directories: every shadow leaf lived in this cycle's log, so
	// each directory on a logged path is now empty. Compact the sorted log
	// by parent coordinate and recycle each parent once.
	const l2Shift = LogBlock2
	for i := 0; i < len(bks); {
		group := bks[i] >> l2Shift
		b0, b1, _ := blockKeyIndices(bks[i])
		s.pools.recycleDir2(s.prevBlocks[b0][b1])
		s.prevBlocks[b0][b1] = nil
		recycleInUseDir2(s.prevInUse[b0][b1])
		s.prevInUse[b0][b1] = nil
		for i < len(bks) && bks[i]>>l2Shift == group {
			i++
		}
	}

	// Level-1 directories.
	const l1Shift = LogBlock2 + LogBlock1
	for i := 0; i < len(bks); {
		group := bks[i] >> l1Shift
		b0, _, _ := blockKeyIndices(bks[i])
		s.pools.recycleDir1(s.prevBlocks[b0])
		s.prevBlocks[b0] = nil
		recycleInUseDir1(s.prevInUse[b0])
		s.prevInUse[b0] = nil
		for i < len(bks) && bks[i]>>l1Shift == group {
			i++
		}
	}

	// Roots.
	s.pools.recycleRoot(s.prevBlocks)
	s.prevBlocks = nil
	recycleInUseRoot(s.prevInUse)
	s.prevInUse = nil

	s.prevAllocated = s.prevAllocated[:0]
	s.flusherArmed = false
}
