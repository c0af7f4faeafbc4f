package column

import "fmt"

// MisuseError reports a broken caller contract: double-arming tracking,
// handing a write a chunk that aliases the destination, mutating with a
// negative key. These are fatal for the cycle, so they are raised as panics
// carrying this type.
type MisuseError struct {
	Op     string
	Detail string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("column: %s: %s", e.Op, e.Detail)
}

func misuse(op, format string, args ...any) {
	panic(&MisuseError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
