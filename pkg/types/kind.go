package types

import "fmt"

// Kind identifies the storage carrier of a column element.
type Kind int

const (
	KindObject Kind = iota
	KindChar
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBoolean // stored as byte, see NullBoolean
	KindTime    // stored as long, epoch nanoseconds
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "Object"
	case KindChar:
		return "Char"
	case KindByte:
		return "Byte"
	case KindShort:
		return "Short"
	case KindInt:
		return "Int"
	case KindLong:
		return "Long"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindBoolean:
		return "Boolean"
	case KindTime:
		return "Time"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Reinterpreted returns the carrier kind used when a domain-typed column is
// presented in raw primitive form. Kinds that are already primitive map to
// themselves.
func (k Kind) Reinterpreted() Kind {
	switch k {
	case KindBoolean:
		return KindByte
	case KindTime:
		return KindLong
	default:
		return k
	}
}

// NullValueFor returns the boxed NULL sentinel for a kind.
func NullValueFor(k Kind) any {
	switch k {
	case KindChar:
		return NullChar
	case KindByte:
		return NullByte
	case KindShort:
		return NullShort
	case KindInt:
		return NullInt
	case KindLong, KindTime:
		return NullLong
	case KindFloat:
		return NullFloat
	case KindDouble:
		return NullDouble
	case KindBoolean:
		return NullBoolean
	default:
		return nil
	}
}
