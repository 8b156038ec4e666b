package naming

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"tyjson/internal/host"
)

// StableName is a globally unique, reproducible symbol.
type StableName string

func (n StableName) String() string { return string(n) }

// EmptyTrait names the trait instance of a trait object with no principal.
const EmptyTrait StableName = "trait/0::empty[0]"

// Instance tags.
const (
	TagAdt       = "_adt"
	TagInst      = "_inst"
	TagVtShim    = "_vtshim"
	TagReify     = "_reify"
	TagDrop      = "_drop"
	TagCallOnce  = "_callonce"
	TagShim      = "_shim"
	TagTrait     = "_trait"
	TagVtable    = "_vtbl"
	disambigSize = 8
)

// VirtTag is the tag of a Virtual instance using raw vtable slot.
func VirtTag(slot int) string { return fmt.Sprintf("_virt%d_", slot) }

// Extra is a payload folded into a disambiguated name.
type Extra interface {
	WriteStable(h *Hasher)
}

// SubstsExtra hashes a substitution list.
type SubstsExtra host.Substs

func (s SubstsExtra) WriteStable(h *Hasher) { h.Substs(host.Substs(s)) }

// TyExtra hashes a single type.
type TyExtra struct{ Ty *host.Ty }

func (e TyExtra) WriteStable(h *Hasher) { h.Ty(e.Ty) }

// PairExtra hashes two types in order.
type PairExtra struct{ A, B *host.Ty }

func (e PairExtra) WriteStable(h *Hasher) {
	h.Ty(e.A)
	h.Ty(e.B)
}

// Mangler computes stable names. It holds no state besides the lookup, so one
// value can serve any number of sessions over the same program.
type Mangler struct {
	defs host.DefLookup
}

// NewMangler creates a mangler over defs.
func NewMangler(defs host.DefLookup) *Mangler {
	return &Mangler{defs: defs}
}

// DefName returns the bare name of a definition.
func (m *Mangler) DefName(id host.DefID) StableName {
	p, ok := m.defs.DefPath(id)
	if !ok {
		return StableName(fmt.Sprintf("unknown/00000000::def%d[0]", id))
	}
	disambig := p.Disambiguator
	if len(disambig) > disambigSize {
		disambig = disambig[:disambigSize]
	}
	var b strings.Builder
	b.Grow(len(p.Crate) + len(disambig) + len(p.Path) + 1)
	b.WriteString(norm.NFC.String(p.Crate))
	b.WriteByte('/')
	b.WriteString(disambig)
	b.WriteString(norm.NFC.String(p.Path))
	return StableName(b.String())
}

// Hash returns the 64-bit digest of extra. The payload must already be
// region-erased and normalized.
func (m *Mangler) Hash(extra Extra) uint64 {
	h := newHasher(m.defs)
	extra.WriteStable(h)
	return h.Sum64()
}

// Disambiguated appends ::<tag><hash>[0] to the definition's name.
func (m *Mangler) Disambiguated(id host.DefID, tag string, extra Extra) StableName {
	return StableName(fmt.Sprintf("%s::%s%016x[0]", m.DefName(id), tag, m.Hash(extra)))
}

// InstanceName names a resolved instance. Substitutions must be normalized.
// Items and intrinsics without substitutions reuse the bare definition name.
func (m *Mangler) InstanceName(inst host.Instance) StableName {
	extra := SubstsExtra(inst.Substs)
	switch inst.Kind {
	case host.InstItem, host.InstIntrinsic:
		if len(inst.Substs) == 0 {
			return m.DefName(inst.Def)
		}
		return m.Disambiguated(inst.Def, TagInst, extra)
	case host.InstVtableShim:
		return m.Disambiguated(inst.Def, TagVtShim, extra)
	case host.InstReifyShim:
		return m.Disambiguated(inst.Def, TagReify, extra)
	case host.InstVirtual:
		return m.Disambiguated(inst.Def, VirtTag(inst.Slot), extra)
	case host.InstDropGlue:
		return m.Disambiguated(inst.Def, TagDrop, extra)
	case host.InstFnPtrShim, host.InstClosureOnceShim:
		return m.Disambiguated(inst.Def, TagCallOnce, extra)
	case host.InstCloneShim:
		return m.Disambiguated(inst.Def, TagShim, extra)
	default:
		panic(fmt.Sprintf("naming: unexpected instance kind %s", inst.Kind))
	}
}

// AdtName names an ADT instantiation.
func (m *Mangler) AdtName(ai host.AdtInstance) StableName {
	return m.Disambiguated(ai.Def, TagAdt, SubstsExtra(ai.Substs.EraseRegions()))
}

// TraitName names a trait instance by hashing the trait object type it
// describes. Objects without a principal trait share EmptyTrait.
func (m *Mangler) TraitName(dyn *host.Ty) StableName {
	principal, ok := dyn.Principal()
	if !ok {
		return EmptyTrait
	}
	return m.Disambiguated(principal.Def, TagTrait, TyExtra{dyn.EraseRegions()})
}

// VtableName names the vtable of concrete viewed as the trait object dyn.
func (m *Mangler) VtableName(concrete, dyn *host.Ty) StableName {
	principal, ok := dyn.Principal()
	if !ok {
		return StableName(string(EmptyTrait) + "::" + TagVtable)
	}
	return m.Disambiguated(principal.Def, TagVtable, PairExtra{concrete.EraseRegions(), dyn.EraseRegions()})
}

// PromotedName names the promoted constant index of a parent.
func PromotedName(parent StableName, index uint32) StableName {
	return StableName(fmt.Sprintf("%s::{{promoted}}[%d]", parent, index))
}
