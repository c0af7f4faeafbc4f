package column

import "github.com/kasuganosora/deltatable/pkg/types"

// Typed constructors for the primitive column kinds. Each carries its
// designated NULL sentinel; see pkg/types.

// NewCharColumn creates a char column (NULL = 0xFFFF).
func NewCharColumn() *Sparse[rune] {
	return NewSparse[rune](types.KindChar, types.NullChar, false)
}

// NewByteColumn creates a byte column (NULL = MinInt8).
func NewByteColumn() *Sparse[int8] {
	return NewSparse[int8](types.KindByte, types.NullByte, false)
}

// NewShortColumn creates a short column (NULL = MinInt16).
func NewShortColumn() *Sparse[int16] {
	return NewSparse[int16](types.KindShort, types.NullShort, false)
}

// NewIntColumn creates an int column (NULL = MinInt32).
func NewIntColumn() *Sparse[int32] {
	return NewSparse[int32](types.KindInt, types.NullInt, false)
}

// NewLongColumn creates a long column (NULL = MinInt64).
func NewLongColumn() *Sparse[int64] {
	return NewSparse[int64](types.KindLong, types.NullLong, false)
}

// NewFloatColumn creates a float column (NULL = -MaxFloat32).
func NewFloatColumn() *Sparse[float32] {
	return NewSparse[float32](types.KindFloat, types.NullFloat, false)
}

// NewDoubleColumn creates a double column (NULL = -MaxFloat64).
func NewDoubleColumn() *Sparse[float64] {
	return NewSparse[float64](types.KindDouble, types.NullDouble, false)
}

// NewObjectColumn creates a reference column. NULL is the zero value of T
// (nil for pointer, slice and interface types). Recycled shadow leaves are
// wiped so pooled arrays do not pin references.
func NewObjectColumn[T any]() *Sparse[T] {
	var null T
	return NewSparse[T](types.KindObject, null, true)
}
