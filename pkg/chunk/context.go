package chunk

import "github.com/kasuganosora/deltatable/pkg/workerpool"

// FillContext carries reusable scratch state across repeated bulk fills of
// the same column. Obtain one from a column's MakeFillContext and release it
// with Close when the bulk operation is done.
type FillContext struct {
	keyScratch *[]uint64
}

// GetContext is the read-side analog of FillContext.
type GetContext struct {
	keyScratch *[]uint64
}

var keyScratchPool = workerpool.NewSlicePool[uint64](DefaultCapacity)

// NewFillContext creates a fill context with pooled scratch buffers.
func NewFillContext() *FillContext {
	return &FillContext{keyScratch: keyScratchPool.Get()}
}

// KeyScratch returns a scratch key buffer of at least n elements.
func (fc *FillContext) KeyScratch(n int) []uint64 {
	s := *fc.keyScratch
	if cap(s) < n {
		s = make([]uint64, n)
		*fc.keyScratch = s
	}
	return s[:n]
}

// Close returns pooled buffers. The context must not be used afterwards.
func (fc *FillContext) Close() {
	if fc.keyScratch != nil {
		keyScratchPool.Put(fc.keyScratch)
		fc.keyScratch = nil
	}
}

// NewGetContext creates a get context with pooled scratch buffers.
func NewGetContext() *GetContext {
	return &GetContext{keyScratch: keyScratchPool.Get()}
}

// Close returns pooled buffers. The context must not be used afterwards.
func (gc *GetContext) Close() {
	if gc.keyScratch != nil {
		keyScratchPool.Put(gc.keyScratch)
		gc.keyScratch = nil
	}
}
