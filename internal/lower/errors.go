package lower

import "fmt"

// FatalKind classifies violations that abort a unit.
type FatalKind uint8

const (
	// FatalUnsoundRead is a byte read across pointer relocations.
	FatalUnsoundRead FatalKind = iota + 1
	// FatalPrecondition is a caller bug, e.g. a vtable slot of a non trait object.
	FatalPrecondition
)

func (k FatalKind) String() string {
	switch k {
	case FatalUnsoundRead:
		return "unsound read"
	case FatalPrecondition:
		return "precondition violation"
	default:
		return fmt.Sprintf("FatalKind(%d)", k)
	}
}

// FatalError aborts the lowering of a whole unit.
type FatalError struct {
	Kind FatalKind
	Msg  string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("lower: %s: %s", e.Kind, e.Msg)
}

func fatalf(kind FatalKind, format string, args ...any) {
	panic(&FatalError{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// Recover turns a *FatalError panic into *err. It must be deferred directly:
//
//	defer lower.Recover(&err)
//
// Any other panic is re-raised.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	fe, ok := r.(*FatalError)
	if !ok {
		panic(r)
	}
	if err != nil {
		*err = fe
	}
}
