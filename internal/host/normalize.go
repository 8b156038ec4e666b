package host

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// NormalizeErasingRegions implements Normalizer. Projections whose Self type is
// concrete are replaced by the associated type of the matching impl, or by the
// bound of a trait object's projection predicate.
func (p *Program) NormalizeErasingRegions(t *Ty) *Ty {
	if t == nil {
		return nil
	}
	return p.normalize(t.EraseRegions())
}

// NormalizeSubsts implements Normalizer.
func (p *Program) NormalizeSubsts(s Substs) Substs {
	if len(s) == 0 {
		return s
	}
	out := make(Substs, len(s))
	for i, a := range s {
		switch a.Kind {
		case ArgType:
			a.Ty = p.NormalizeErasingRegions(a.Ty)
		case ArgLifetime:
			a.Region = ErasedRegion
		case ArgConst:
			if a.Const != nil && a.Const.Ty != nil {
				cp := *a.Const
				cp.Ty = p.NormalizeErasingRegions(a.Const.Ty)
				a.Const = &cp
			}
		}
		out[i] = a
	}
	return out
}

func (p *Program) normalize(t *Ty) *Ty {
	return mapTy(t, func(x *Ty) (*Ty, bool) {
		if x.Kind == TyDynamic {
			return p.normalizeDyn(x), true
		}
		if x.Kind != TyProjection {
			return nil, false
		}
		substs := p.NormalizeSubsts(x.Substs)
		if r, ok := p.project(x.Def, substs); ok {
			return p.normalize(r.EraseRegions()), true
		}
		return ProjectionOf(x.Def, substs), true
	}, func(c *Const) *Const { return c }, keepRegion)
}

// normalizeDyn normalizes the predicates of a trait object and puts them in
// canonical order: the principal trait, then projections by associated item
// path, then auto traits by trait path.
func (p *Program) normalizeDyn(t *Ty) *Ty {
	cp := *t
	if t.Preds != nil {
		cp.Preds = make([]ExistentialPredicate, len(t.Preds))
	}
	for i, pred := range t.Preds {
		pred.Substs = p.NormalizeSubsts(pred.Substs)
		if pred.Ty != nil {
			pred.Ty = p.normalize(pred.Ty)
		}
		cp.Preds[i] = pred
	}
	slices.SortStableFunc(cp.Preds, p.comparePreds)
	return &cp
}

func predRank(k PredKind) int {
	switch k {
	case PredTrait:
		return 0
	case PredProjection:
		return 1
	default:
		return 2
	}
}

func (p *Program) comparePreds(a, b ExistentialPredicate) int {
	if c := cmp.Compare(predRank(a.Kind), predRank(b.Kind)); c != 0 {
		return c
	}
	if c := cmp.Compare(p.defSortKey(a.Def), p.defSortKey(b.Def)); c != 0 {
		return c
	}
	return cmp.Compare(a.key(), b.key())
}

// defSortKey orders definitions by path; ids are only a tiebreak for
// definitions the program does not know.
func (p *Program) defSortKey(id DefID) string {
	dp, ok := p.DefPath(id)
	if !ok {
		return "~" + strconv.FormatUint(uint64(id), 10)
	}
	return dp.Crate + "[" + dp.Disambiguator + "]" + dp.Path
}

func (pr ExistentialPredicate) key() string {
	var b strings.Builder
	pr.writeKey(&b)
	return b.String()
}

// project resolves <substs[0] as Trait<substs[1:]>>::item.
func (p *Program) project(item DefID, substs Substs) (*Ty, bool) {
	d := p.def(item)
	if d == nil || d.Kind != DefAssocTy {
		return nil, false
	}
	self := substs.Type(0)
	if self == nil || self.HasParams() {
		return nil, false
	}
	if self.Kind == TyDynamic {
		for _, pred := range self.Preds {
			if pred.Kind == PredProjection && pred.Def == item {
				return pred.Ty, true
			}
		}
		return nil, false
	}
	im, binds, ok := p.findImpl(d.Parent, substs)
	if !ok {
		return nil, false
	}
	ty, ok := im.AssocTypes[item]
	if !ok {
		return nil, false
	}
	return ty.Subst(binds), true
}

// findImpl returns the impl of trait matching traitSubsts (Self first) and the
// bindings of the impl's parameters.
func (p *Program) findImpl(trait DefID, traitSubsts Substs) (*ImplDef, Substs, bool) {
	self := traitSubsts.Type(0)
	if self == nil {
		return nil, nil, false
	}
	self = self.EraseRegions()
	for _, im := range p.impls {
		if im.Trait != trait {
			continue
		}
		binds := make(Substs, im.NumParams)
		if !matchTy(im.SelfTy.EraseRegions(), self, binds) {
			continue
		}
		ok := true
		for i, pat := range im.TraitArgs {
			if 1+i >= len(traitSubsts) {
				ok = false
				break
			}
			if !matchArg(pat, traitSubsts[1+i], binds) {
				ok = false
				break
			}
		}
		if ok {
			return im, binds, true
		}
	}
	return nil, nil, false
}

func matchArg(pat, got GenericArg, binds Substs) bool {
	switch pat.Kind {
	case ArgType:
		return got.Kind == ArgType && matchTy(pat.Ty.EraseRegions(), got.Ty.EraseRegions(), binds)
	case ArgConst:
		return got.Kind == ArgConst && matchConst(pat.Const, got.Const, binds)
	default:
		return got.Kind == ArgLifetime
	}
}

func matchConst(pat, got *Const, binds Substs) bool {
	if pat == nil || got == nil {
		return pat == got
	}
	if pat.Kind == ConstParam {
		i := int(pat.Param.Index)
		if i >= len(binds) {
			return false
		}
		if binds[i].Const == nil {
			binds[i] = ConstArg(got)
			return true
		}
		return binds[i].Const.Key() == got.Key()
	}
	return pat.Key() == got.Key()
}

// matchTy unifies a pattern over impl parameters with a concrete type.
func matchTy(pat, got *Ty, binds Substs) bool {
	if pat == nil || got == nil {
		return pat == got
	}
	if pat.Kind == TyParam {
		i := int(pat.Param.Index)
		if i >= len(binds) {
			return false
		}
		if binds[i].Ty == nil {
			binds[i] = TypeArg(got)
			return true
		}
		return binds[i].Ty.Key() == got.Key()
	}
	if pat.Kind != got.Kind {
		return false
	}
	switch pat.Kind {
	case TyInt:
		return pat.Int == got.Int
	case TyUint:
		return pat.Uint == got.Uint
	case TyFloat:
		return pat.Float == got.Float
	case TySlice:
		return matchTy(pat.Elem, got.Elem, binds)
	case TyRef, TyRawPtr:
		return pat.Mutbl == got.Mutbl && matchTy(pat.Elem, got.Elem, binds)
	case TyArray:
		return matchTy(pat.Elem, got.Elem, binds) && matchConst(pat.Len, got.Len, binds)
	case TyTuple:
		return matchList(pat.Elems, got.Elems, binds)
	case TyAdt, TyFnDef, TyProjection, TyClosure:
		return pat.Def == got.Def && matchSubsts(pat.Substs, got.Substs, binds)
	case TyFnPtr:
		if pat.Sig == nil || got.Sig == nil {
			return pat.Sig == got.Sig
		}
		return pat.Sig.Abi == got.Sig.Abi &&
			matchList(pat.Sig.Inputs, got.Sig.Inputs, binds) &&
			matchTy(pat.Sig.Output, got.Sig.Output, binds)
	case TyDynamic:
		if len(pat.Preds) != len(got.Preds) {
			return false
		}
		for i := range pat.Preds {
			a, b := pat.Preds[i], got.Preds[i]
			if a.Kind != b.Kind || a.Def != b.Def || !matchSubsts(a.Substs, b.Substs, binds) {
				return false
			}
			if a.Kind == PredProjection && !matchTy(a.Ty, b.Ty, binds) {
				return false
			}
		}
		return true
	default:
		return pat.Key() == got.Key()
	}
}

func matchList(pat, got []*Ty, binds Substs) bool {
	if len(pat) != len(got) {
		return false
	}
	for i := range pat {
		if !matchTy(pat[i], got[i], binds) {
			return false
		}
	}
	return true
}

func matchSubsts(pat, got Substs, binds Substs) bool {
	if len(pat) != len(got) {
		return false
	}
	for i := range pat {
		if !matchArg(pat[i], got[i], binds) {
			return false
		}
	}
	return true
}
