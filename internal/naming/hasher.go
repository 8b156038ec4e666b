package naming

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"tyjson/internal/host"
)

// Hasher folds payloads into a 64-bit digest. Definitions are hashed by their
// rendered path so digests do not depend on session-local ids, and regions are
// never written.
type Hasher struct {
	d    *xxhash.Digest
	defs host.DefLookup
	buf  [8]byte
}

func newHasher(defs host.DefLookup) *Hasher {
	return &Hasher{d: xxhash.New(), defs: defs}
}

// Sum64 returns the digest of everything written so far.
func (h *Hasher) Sum64() uint64 { return h.d.Sum64() }

func (h *Hasher) u8(v uint8) {
	h.buf[0] = v
	_, _ = h.d.Write(h.buf[:1])
}

func (h *Hasher) u64(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:])
}

func (h *Hasher) str(s string) {
	h.u64(uint64(len(s)))
	_, _ = h.d.WriteString(s)
}

func (h *Hasher) def(id host.DefID) {
	if p, ok := h.defs.DefPath(id); ok {
		h.str(p.Crate)
		h.str(p.Disambiguator)
		h.str(p.Path)
		return
	}
	h.str("?")
	h.u64(uint64(id))
}

// Ty writes a type.
func (h *Hasher) Ty(t *host.Ty) {
	if t == nil {
		h.u8(0xff)
		return
	}
	h.u8(uint8(t.Kind))
	switch t.Kind {
	case host.TyInt:
		h.u8(uint8(t.Int))
	case host.TyUint:
		h.u8(uint8(t.Uint))
	case host.TyFloat:
		h.u8(uint8(t.Float))
	case host.TyTuple:
		h.tys(t.Elems)
	case host.TySlice:
		h.Ty(t.Elem)
	case host.TyArray:
		h.Ty(t.Elem)
		h.Const(t.Len)
	case host.TyRef, host.TyRawPtr:
		h.u8(uint8(t.Mutbl))
		h.Ty(t.Elem)
	case host.TyAdt, host.TyFnDef, host.TyProjection:
		h.def(t.Def)
		h.Substs(t.Substs)
	case host.TyClosure:
		h.def(t.Def)
		h.Substs(t.Substs)
		h.u8(uint8(t.ClosureKind))
		h.tys(t.Elems)
	case host.TyFnPtr:
		if t.Sig == nil {
			h.u8(0)
			break
		}
		h.u8(1)
		h.tys(t.Sig.Inputs)
		h.Ty(t.Sig.Output)
		h.str(t.Sig.Abi)
	case host.TyDynamic:
		h.u64(uint64(len(t.Preds)))
		for _, p := range t.Preds {
			h.Pred(p)
		}
	case host.TyParam:
		h.u64(uint64(t.Param.Index))
	case host.TyBool, host.TyChar, host.TyStr, host.TyNever, host.TyError:
	default:
		h.def(t.Def)
	}
}

func (h *Hasher) tys(ts []*host.Ty) {
	h.u64(uint64(len(ts)))
	for _, t := range ts {
		h.Ty(t)
	}
}

// Substs writes a substitution list. Lifetimes contribute only their position.
func (h *Hasher) Substs(s host.Substs) {
	h.u64(uint64(len(s)))
	for _, a := range s {
		h.u8(uint8(a.Kind))
		switch a.Kind {
		case host.ArgType:
			h.Ty(a.Ty)
		case host.ArgConst:
			h.Const(a.Const)
		}
	}
}

// Pred writes an existential predicate.
func (h *Hasher) Pred(p host.ExistentialPredicate) {
	h.u8(uint8(p.Kind))
	h.def(p.Def)
	h.Substs(p.Substs)
	if p.Kind == host.PredProjection {
		h.Ty(p.Ty)
	}
}

// Const writes a constant.
func (h *Hasher) Const(c *host.Const) {
	if c == nil {
		h.u8(0xff)
		return
	}
	h.u8(uint8(c.Kind))
	switch c.Kind {
	case host.ConstParam:
		h.u64(uint64(c.Param.Index))
	case host.ConstUnevaluated:
		h.def(c.Def)
		h.Substs(c.Substs)
		if c.Promoted != nil {
			h.u8(1)
			h.u64(uint64(*c.Promoted))
		} else {
			h.u8(0)
		}
	default:
		h.Ty(c.Ty)
		h.str(c.Key())
	}
}
