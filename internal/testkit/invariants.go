package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"tyjson/internal/ir"
)

// CheckDocumentInvariants runs the structural checks every lowered document
// must pass:
// 1) type ids are dense, each entry named by its index and filled
// 2) every type id referenced anywhere is in range
// 3) names are unique within fns, intrinsics, adts, traits and vtables
// 4) every fn and every root has an intrinsics entry
// 5) every unsize use names a vtable of the document
func CheckDocumentInvariants(doc *ir.Document) error {
	if doc == nil {
		return fmt.Errorf("nil document")
	}
	n, err := safecast.Conv[uint32](len(doc.Tys))
	if err != nil {
		return fmt.Errorf("type table overflow: %w", err)
	}
	inRange := func(where string, id ir.TypeID) error {
		if uint32(id) >= n {
			return fmt.Errorf("%s: type id %d out of range (%d entries)", where, id, n)
		}
		return nil
	}

	// 1) + 2) type table
	for i, e := range doc.Tys {
		if int(e.Name) != i {
			return fmt.Errorf("tys[%d] is named %d", i, e.Name)
		}
		if e.Ty == nil {
			return fmt.Errorf("tys[%d] was reserved but never filled", i)
		}
		for _, ref := range typeRefs(e.Ty) {
			if err := inRange(fmt.Sprintf("tys[%d]", i), ref); err != nil {
				return err
			}
		}
	}

	// 3) unique names
	intrinsics := make(map[string]bool, len(doc.Intrinsics))
	for _, in := range doc.Intrinsics {
		if intrinsics[in.Name] {
			return fmt.Errorf("duplicate intrinsic %q", in.Name)
		}
		intrinsics[in.Name] = true
	}
	if err := unique("adt", len(doc.Adts), func(i int) string { return doc.Adts[i].Name }); err != nil {
		return err
	}
	if err := unique("trait", len(doc.Traits), func(i int) string { return doc.Traits[i].Name }); err != nil {
		return err
	}
	if err := unique("vtable", len(doc.Vtables), func(i int) string { return doc.Vtables[i].Name }); err != nil {
		return err
	}
	if err := unique("fn", len(doc.Fns), func(i int) string { return doc.Fns[i].Name }); err != nil {
		return err
	}
	vtables := make(map[string]bool, len(doc.Vtables))
	for _, vt := range doc.Vtables {
		vtables[vt.Name] = true
	}

	// 4) + 5) fns
	for _, fn := range doc.Fns {
		if !intrinsics[fn.Name] {
			return fmt.Errorf("fn %q has no intrinsics entry", fn.Name)
		}
		refs := append([]ir.TypeID{fn.Output}, fn.Inputs...)
		for _, u := range fn.Body {
			switch u := u.(type) {
			case ir.TypeUse:
				refs = append(refs, u.Ty)
			case ir.DropUse:
				refs = append(refs, u.Ty)
			case ir.UnsizeUse:
				refs = append(refs, u.Ty, u.Target)
				if !vtables[u.Vtable] {
					return fmt.Errorf("fn %q unsizes through unknown vtable %q", fn.Name, u.Vtable)
				}
			}
		}
		for _, ref := range refs {
			if err := inRange("fn "+fn.Name, ref); err != nil {
				return err
			}
		}
	}
	for _, root := range doc.Roots {
		if !intrinsics[root] {
			return fmt.Errorf("root %q has no intrinsics entry", root)
		}
	}
	return nil
}

func unique(what string, n int, name func(int) string) error {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		s := name(i)
		if seen[s] {
			return fmt.Errorf("duplicate %s %q", what, s)
		}
		seen[s] = true
	}
	return nil
}

func typeRefs(node ir.TypeNode) []ir.TypeID {
	switch t := node.(type) {
	case ir.TupleTy:
		return t.Tys
	case ir.SliceTy:
		return []ir.TypeID{t.Ty}
	case ir.ArrayTy:
		return []ir.TypeID{t.Ty}
	case ir.RefTy:
		return []ir.TypeID{t.Ty}
	case ir.RawPtrTy:
		return []ir.TypeID{t.Ty}
	case ir.ClosureTy:
		return t.UpvarTys
	case ir.FnPtrTy:
		return append([]ir.TypeID{t.Signature.Output}, t.Signature.Inputs...)
	default:
		return nil
	}
}
