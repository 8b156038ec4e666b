package host

import (
	"strconv"
	"strings"
)

// ArgKind classifies generic arguments.
type ArgKind uint8

const (
	ArgType ArgKind = iota
	ArgLifetime
	ArgConst
)

// GenericArg is one entry of a substitution list.
type GenericArg struct {
	Kind   ArgKind
	Ty     *Ty
	Region Region
	Const  *Const
}

func TypeArg(t *Ty) GenericArg        { return GenericArg{Kind: ArgType, Ty: t} }
func LifetimeArg(r Region) GenericArg { return GenericArg{Kind: ArgLifetime, Region: r} }
func ConstArg(c *Const) GenericArg    { return GenericArg{Kind: ArgConst, Const: c} }

// Substs is an ordered substitution list.
type Substs []GenericArg

// TypeArgs builds a substitution list of type arguments only.
func TypeArgs(tys ...*Ty) Substs {
	if len(tys) == 0 {
		return nil
	}
	out := make(Substs, len(tys))
	for i, t := range tys {
		out[i] = TypeArg(t)
	}
	return out
}

// Type returns the i-th argument if it is a type.
func (s Substs) Type(i int) *Ty {
	if i < 0 || i >= len(s) || s[i].Kind != ArgType {
		return nil
	}
	return s[i].Ty
}

// Types returns the type arguments in order.
func (s Substs) Types() []*Ty {
	var out []*Ty
	for _, a := range s {
		if a.Kind == ArgType {
			out = append(out, a.Ty)
		}
	}
	return out
}

// Key returns a canonical structural key.
func (s Substs) Key() string {
	var b strings.Builder
	writeSubstsKey(&b, s)
	return b.String()
}

func writeSubstsKey(b *strings.Builder, s Substs) {
	if len(s) == 0 {
		return
	}
	b.WriteByte('<')
	for i, a := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		switch a.Kind {
		case ArgType:
			writeTyKey(b, a.Ty)
		case ArgLifetime:
			b.WriteByte('\'')
			b.WriteString(string(a.Region))
		case ArgConst:
			b.WriteString("const ")
			b.WriteString(a.Const.Key())
		}
	}
	b.WriteByte('>')
}

// PredKind classifies existential predicates.
type PredKind uint8

const (
	PredTrait PredKind = iota
	PredProjection
	PredAutoTrait
)

func (k PredKind) String() string {
	switch k {
	case PredTrait:
		return "Trait"
	case PredProjection:
		return "Projection"
	default:
		return "AutoTrait"
	}
}

// ExistentialPredicate is a trait-object constraint that omits the Self type.
type ExistentialPredicate struct {
	Kind PredKind
	// Def is the trait for Trait and AutoTrait, the associated type for Projection.
	Def    DefID
	Substs Substs
	// Ty is the right-hand side of a Projection.
	Ty *Ty
}

func (p ExistentialPredicate) writeKey(b *strings.Builder) {
	switch p.Kind {
	case PredTrait:
		b.WriteString("trait#")
	case PredProjection:
		b.WriteString("proj#")
	default:
		b.WriteString("auto#")
	}
	b.WriteString(strconv.FormatUint(uint64(p.Def), 10))
	writeSubstsKey(b, p.Substs)
	if p.Kind == PredProjection {
		b.WriteString(" = ")
		writeTyKey(b, p.Ty)
	}
}

// Subst replaces generic parameters with the corresponding arguments.
// Parameters beyond the end of args are left in place.
func (t *Ty) Subst(args Substs) *Ty {
	if t == nil || len(args) == 0 || !t.HasParams() {
		return t
	}
	return mapTy(t, func(x *Ty) (*Ty, bool) {
		if x.Kind != TyParam {
			return nil, false
		}
		if a := args.Type(int(x.Param.Index)); a != nil {
			return a, true
		}
		return x, true
	}, func(c *Const) *Const { return c.Subst(args) }, keepRegion)
}

// Subst applies args to every argument of s.
func (s Substs) Subst(args Substs) Substs {
	if len(s) == 0 || len(args) == 0 {
		return s
	}
	out := make(Substs, len(s))
	for i, a := range s {
		switch a.Kind {
		case ArgType:
			a.Ty = a.Ty.Subst(args)
		case ArgConst:
			a.Const = a.Const.Subst(args)
		}
		out[i] = a
	}
	return out
}

// EraseRegions returns t with every region replaced by the erased region.
func (t *Ty) EraseRegions() *Ty {
	if t == nil {
		return nil
	}
	return mapTy(t, func(*Ty) (*Ty, bool) { return nil, false }, func(c *Const) *Const { return c }, eraseRegion)
}

// EraseRegions erases regions in every argument.
func (s Substs) EraseRegions() Substs {
	if len(s) == 0 {
		return s
	}
	out := make(Substs, len(s))
	for i, a := range s {
		switch a.Kind {
		case ArgType:
			a.Ty = a.Ty.EraseRegions()
		case ArgLifetime:
			a.Region = ErasedRegion
		}
		out[i] = a
	}
	return out
}

// HasParams reports whether t mentions a generic parameter.
func (t *Ty) HasParams() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case TyParam:
		return true
	case TySlice, TyRef, TyRawPtr:
		return t.Elem.HasParams()
	case TyArray:
		return t.Elem.HasParams() || t.Len.HasParams()
	case TyTuple:
		return anyHasParams(t.Elems)
	case TyClosure:
		return anyHasParams(t.Elems) || t.Substs.HasParams()
	case TyAdt, TyFnDef, TyProjection:
		return t.Substs.HasParams()
	case TyFnPtr:
		return t.Sig != nil && (anyHasParams(t.Sig.Inputs) || t.Sig.Output.HasParams())
	case TyDynamic:
		for _, p := range t.Preds {
			if p.Substs.HasParams() || p.Ty.HasParams() {
				return true
			}
		}
	}
	return false
}

// HasParams reports whether any argument mentions a generic parameter.
func (s Substs) HasParams() bool {
	for _, a := range s {
		switch a.Kind {
		case ArgType:
			if a.Ty.HasParams() {
				return true
			}
		case ArgConst:
			if a.Const.HasParams() {
				return true
			}
		}
	}
	return false
}

// HasRegions reports whether t still carries a non-erased region.
func (t *Ty) HasRegions() bool {
	found := false
	if t == nil {
		return false
	}
	mapTy(t, func(*Ty) (*Ty, bool) { return nil, false }, func(c *Const) *Const { return c }, func(r Region) Region {
		if r != ErasedRegion {
			found = true
		}
		return r
	})
	return found
}

func anyHasParams(tys []*Ty) bool {
	for _, t := range tys {
		if t.HasParams() {
			return true
		}
	}
	return false
}

func keepRegion(r Region) Region { return r }
func eraseRegion(Region) Region  { return ErasedRegion }

// mapTy rebuilds t bottom-up. leaf may replace a node outright; otherwise the
// node is copied with its children mapped.
func mapTy(t *Ty, leaf func(*Ty) (*Ty, bool), onConst func(*Const) *Const, onRegion func(Region) Region) *Ty {
	if t == nil {
		return nil
	}
	if repl, ok := leaf(t); ok {
		return repl
	}
	rec := func(x *Ty) *Ty { return mapTy(x, leaf, onConst, onRegion) }
	recList := func(xs []*Ty) []*Ty {
		if xs == nil {
			return nil
		}
		out := make([]*Ty, len(xs))
		for i, x := range xs {
			out[i] = rec(x)
		}
		return out
	}
	recSubsts := func(s Substs) Substs {
		if s == nil {
			return nil
		}
		out := make(Substs, len(s))
		for i, a := range s {
			switch a.Kind {
			case ArgType:
				a.Ty = rec(a.Ty)
			case ArgLifetime:
				a.Region = onRegion(a.Region)
			case ArgConst:
				a.Const = onConst(a.Const)
			}
			out[i] = a
		}
		return out
	}

	cp := *t
	switch t.Kind {
	case TySlice, TyRawPtr:
		cp.Elem = rec(t.Elem)
	case TyRef:
		cp.Elem = rec(t.Elem)
		cp.Region = onRegion(t.Region)
	case TyArray:
		cp.Elem = rec(t.Elem)
		cp.Len = onConst(t.Len)
	case TyTuple:
		cp.Elems = recList(t.Elems)
	case TyClosure:
		cp.Elems = recList(t.Elems)
		cp.Substs = recSubsts(t.Substs)
	case TyAdt, TyFnDef, TyProjection:
		cp.Substs = recSubsts(t.Substs)
	case TyFnPtr:
		if t.Sig != nil {
			cp.Sig = &FnSig{Inputs: recList(t.Sig.Inputs), Output: rec(t.Sig.Output), Abi: t.Sig.Abi}
		}
	case TyDynamic:
		cp.Region = onRegion(t.Region)
		if t.Preds != nil {
			cp.Preds = make([]ExistentialPredicate, len(t.Preds))
			for i, p := range t.Preds {
				p.Substs = recSubsts(p.Substs)
				p.Ty = rec(p.Ty)
				cp.Preds[i] = p
			}
		}
	}
	return &cp
}

// Subst applies args to every input and the output.
func (sig *FnSig) Subst(args Substs) *FnSig {
	if sig == nil || len(args) == 0 {
		return sig
	}
	out := &FnSig{Inputs: make([]*Ty, len(sig.Inputs)), Output: sig.Output.Subst(args), Abi: sig.Abi}
	for i, in := range sig.Inputs {
		out.Inputs[i] = in.Subst(args)
	}
	return out
}
