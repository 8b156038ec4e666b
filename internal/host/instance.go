package host

import "fmt"

// InstanceKind distinguishes direct items from compiler-synthesized shims.
type InstanceKind uint8

const (
	InstItem InstanceKind = iota
	InstIntrinsic
	InstVtableShim
	InstReifyShim
	InstFnPtrShim
	InstVirtual
	InstClosureOnceShim
	InstDropGlue
	InstCloneShim
)

var instanceKindNames = [...]string{
	InstItem:            "Item",
	InstIntrinsic:       "Intrinsic",
	InstVtableShim:      "VtableShim",
	InstReifyShim:       "ReifyShim",
	InstFnPtrShim:       "FnPtrShim",
	InstVirtual:         "Virtual",
	InstClosureOnceShim: "ClosureOnceShim",
	InstDropGlue:        "DropGlue",
	InstCloneShim:       "CloneShim",
}

func (k InstanceKind) String() string {
	if int(k) < len(instanceKindNames) {
		return instanceKindNames[k]
	}
	return fmt.Sprintf("InstanceKind(%d)", k)
}

// Instance is a resolved, concrete callable.
type Instance struct {
	Kind InstanceKind
	// Def is the item, the shimmed trait method, the call_once method of a
	// ClosureOnceShim, or drop_in_place for DropGlue.
	Def    DefID
	Substs Substs
	// Ty is the FnPtrShim pointee, the DropGlue target (nil when nothing needs
	// dropping) or the CloneShim target.
	Ty *Ty
	// Slot is the raw vtable slot of a Virtual instance.
	Slot int
}

// Key returns a canonical structural key.
func (i Instance) Key() string {
	k := i.Kind.String() + "#" + fmt.Sprint(uint32(i.Def)) + i.Substs.Key()
	if i.Ty != nil {
		k += "@" + i.Ty.Key()
	}
	if i.Kind == InstVirtual {
		k += fmt.Sprintf("/%d", i.Slot)
	}
	return k
}

// Usage is how an instance is being referenced.
type Usage uint8

const (
	UsageCall Usage = iota
	UsageFnPtr
	UsageVtable
)

func (u Usage) String() string {
	switch u {
	case UsageFnPtr:
		return "fnptr"
	case UsageVtable:
		return "vtable"
	default:
		return "call"
	}
}

// VtableEntry is one raw vtable slot. Methods excluded from dynamic dispatch
// keep their slot with Present unset.
type VtableEntry struct {
	Method  DefID
	Present bool
}
