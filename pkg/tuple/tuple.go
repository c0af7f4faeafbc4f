// Package tuple builds compound per-row values over N column sources,
// with reinterpreted export for domain-typed elements (booleans as bytes,
// instants as epoch nanoseconds).
package tuple

import (
	"fmt"
	"strings"
	"time"

	"github.com/kasuganosora/deltatable/pkg/chunk"
	"github.com/kasuganosora/deltatable/pkg/column"
	"github.com/kasuganosora/deltatable/pkg/types"
)

// Tuple is one compound row value, one element per source column.
type Tuple []any

// IndexError reports a tuple element index outside [0, arity).
type IndexError struct {
	Index int
	Arity int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("tuple: element index %d out of range [0, %d)", e.Index, e.Arity)
}

// Source produces tuples from a fixed list of column sources. The element
// order is the construction order.
type Source struct {
	columns []column.Source
}

// NewSource creates a tuple source over the given columns.
func NewSource(columns ...column.Source) *Source {
	if len(columns) == 0 {
		panic("tuple: at least one column required")
	}
	return &Source{columns: columns}
}

// Arity returns the number of elements per tuple.
func (s *Source) Arity() int {
	return len(s.columns)
}

func (s *Source) checkIndex(i int) {
	if i < 0 || i >= len(s.columns) {
		panic(&IndexError{Index: i, Arity: len(s.columns)})
	}
}

// CreateTuple reads the current row at key into a tuple.
func (s *Source) CreateTuple(key int64) Tuple {
	t := make(Tuple, len(s.columns))
	for i, c := range s.columns {
		t[i] = c.Get(key)
	}
	return t
}

// CreatePreviousTuple reads the previous row at key into a tuple.
func (s *Source) CreatePreviousTuple(key int64) Tuple {
	t := make(Tuple, len(s.columns))
	for i, c := range s.columns {
		t[i] = c.GetPrev(key)
	}
	return t
}

// CreateTupleFromValues builds a tuple from domain-typed values.
func (s *Source) CreateTupleFromValues(values ...any) Tuple {
	if len(values) != len(s.columns) {
		panic(fmt.Sprintf("tuple: got %d values for arity %d", len(values), len(s.columns)))
	}
	t := make(Tuple, len(values))
	copy(t, values)
	return t
}

// CreateTupleFromReinterpretedValues builds a tuple from values in their
// raw carrier form, converting each back to its domain type.
func (s *Source) CreateTupleFromReinterpretedValues(values ...any) Tuple {
	if len(values) != len(s.columns) {
		panic(fmt.Sprintf("tuple: got %d values for arity %d", len(values), len(s.columns)))
	}
	t := make(Tuple, len(values))
	for i, v := range values {
		t[i] = carrierToDomain(s.columns[i].Kind(), v)
	}
	return t
}

// ExportElement returns element i of the tuple in domain form.
func (s *Source) ExportElement(t Tuple, i int) any {
	s.checkIndex(i)
	return t[i]
}

// ExportElementReinterpreted returns element i in raw carrier form.
func (s *Source) ExportElementReinterpreted(t Tuple, i int) any {
	s.checkIndex(i)
	return domainToCarrier(s.columns[i].Kind(), t[i])
}

// ExportElementTo writes element i of the tuple into writable at destKey.
func (s *Source) ExportElementTo(t Tuple, i int, writable column.WritableSource, destKey int64) {
	s.checkIndex(i)
	writable.SetValue(destKey, t[i])
}

// ExternalKey is an opaque, comparable rendering of a tuple, usable as a
// map key by surrounding code.
type ExternalKey string

// ExportToExternalKey renders the tuple as an opaque comparable key.
func (s *Source) ExportToExternalKey(t Tuple) ExternalKey {
	var sb strings.Builder
	for i, v := range t {
		if i > 0 {
			sb.WriteByte(0x1f)
		}
		fmt.Fprintf(&sb, "%v", v)
	}
	return ExternalKey(sb.String())
}

// ConvertChunks assembles size tuples from parallel per-column value
// chunks. srcs must hold one chunk per column, each with at least size
// valid elements.
func (s *Source) ConvertChunks(dest *chunk.Chunk[Tuple], size int, srcs ...*chunk.Chunk[any]) {
	if len(srcs) != len(s.columns) {
		panic(fmt.Sprintf("tuple: got %d source chunks for arity %d", len(srcs), len(s.columns)))
	}
	for _, src := range srcs {
		if src.Size() < size {
			panic(fmt.Sprintf("tuple: source chunk holds %d of %d values", src.Size(), size))
		}
	}
	dest.Reset()
	for r := 0; r < size; r++ {
		t := make(Tuple, len(srcs))
		for c, src := range srcs {
			t[c] = src.Get(r)
		}
		dest.Set(r, t)
	}
}

// domainToCarrier reinterprets a domain value as its raw primitive:
// booleans map to bytes {false: 0, true: 1, NULL: -1}, instants to epoch
// nanoseconds. Primitive kinds pass through.
func domainToCarrier(k types.Kind, v any) any {
	switch k {
	case types.KindBoolean:
		return types.BoolAsByte(v)
	case types.KindTime:
		if v == nil {
			return types.NullLong
		}
		return v.(time.Time).UnixNano()
	default:
		return v
	}
}

// carrierToDomain is the inverse of domainToCarrier.
func carrierToDomain(k types.Kind, v any) any {
	switch k {
	case types.KindBoolean:
		return types.ByteAsBool(v.(int8))
	case types.KindTime:
		nanos := v.(int64)
		if nanos == types.NullLong {
			return nil
		}
		return time.Unix(0, nanos)
	default:
		return v
	}
}
