package lower

import (
	"fmt"

	"tyjson/internal/diag"
	"tyjson/internal/host"
	"tyjson/internal/ir"
	"tyjson/internal/naming"
)

// Ty interns t and returns its id. The type is normalized and region-erased
// first; a type seen before is not lowered again.
func (s *Session) Ty(t *host.Ty) ir.TypeID {
	t = s.oracles.NormalizeErasingRegions(t)
	key := t.Key()
	if id, ok := s.tys.Lookup(key); ok {
		return id
	}
	id := s.tys.reserve(key)
	s.tys.fill(id, s.lowerTy(t))
	return id
}

func (s *Session) tyList(ts []*host.Ty) []ir.TypeID {
	out := make([]ir.TypeID, len(ts))
	for i, t := range ts {
		out[i] = s.Ty(t)
	}
	return out
}

func (s *Session) lowerTy(t *host.Ty) ir.TypeNode {
	if t == nil {
		return s.unhandled("nil", "")
	}
	switch t.Kind {
	case host.TyBool:
		return ir.BoolTy{}
	case host.TyChar:
		return ir.CharTy{}
	case host.TyStr:
		return ir.StrTy{}
	case host.TyNever:
		return ir.NeverTy{}
	case host.TyError:
		return ir.ErrorTy{}
	case host.TyInt:
		return ir.IntTy{IntKind: t.Int.String()}
	case host.TyUint:
		return ir.UintTy{UintKind: t.Uint.String()}
	case host.TyFloat:
		return ir.FloatTy{Size: t.Float.String()}
	case host.TyTuple:
		return ir.TupleTy{Tys: s.tyList(t.Elems)}
	case host.TySlice:
		return ir.SliceTy{Ty: s.Ty(t.Elem)}
	case host.TyArray:
		size := s.Const(t.Len)
		return ir.ArrayTy{Ty: s.Ty(t.Elem), Size: &size}
	case host.TyRef:
		return ir.RefTy{Ty: s.Ty(t.Elem), Mutability: t.Mutbl.String()}
	case host.TyRawPtr:
		return ir.RawPtrTy{Ty: s.Ty(t.Elem), Mutability: t.Mutbl.String()}
	case host.TyAdt:
		ai := host.AdtInstance{Def: t.Def, Substs: t.Substs}
		return ir.AdtTy{
			Name:      string(s.RecordAdt(ai)),
			OrigDefID: string(s.names.DefName(t.Def)),
			Substs:    s.Substs(t.Substs),
		}
	case host.TyFnDef:
		return ir.FnDefTy{DefID: string(s.FnDefName(t.Def, t.Substs)), Substs: ir.NoSubsts}
	case host.TyFnPtr:
		return ir.FnPtrTy{Signature: s.Sig(t.Sig)}
	case host.TyClosure:
		return ir.ClosureTy{
			DefID:         string(s.names.DefName(t.Def)),
			ClosureSubsts: s.Substs(t.Substs),
			UpvarTys:      s.tyList(t.Elems),
		}
	case host.TyDynamic:
		return ir.DynamicTy{TraitID: string(s.RecordTrait(t)), Predicates: s.predicates(t.Preds)}
	case host.TyProjection:
		return ir.ProjectionTy{Substs: s.Substs(t.Substs), DefID: string(s.names.DefName(t.Def))}
	case host.TyParam:
		return ir.ParamTy{Param: t.Param.Index}
	case host.TyInvalid, host.TyOpaque, host.TyInfer, host.TyBound, host.TyPlaceholder,
		host.TyForeign, host.TyGenerator, host.TyGeneratorWitness:
		return s.unhandled(t.Kind.String(), t.Key())
	}
	return s.unhandled(t.Kind.String(), t.Key())
}

func (s *Session) unhandled(kind, subject string) ir.TypeNode {
	diag.ReportWarning(s.reporter, diag.LowerUnsupportedType, subject,
		fmt.Sprintf("type kind %s has no IR mapping", kind)).Emit()
	s.point("unhandled", naming.StableName(kind))
	return ir.UnhandledTy{Kind: kind}
}

// Substs lowers a substitution list. Lifetimes and consts become markers.
func (s *Session) Substs(substs host.Substs) []ir.GenericArg {
	if len(substs) == 0 {
		return ir.NoSubsts
	}
	out := make([]ir.GenericArg, len(substs))
	for i, a := range substs {
		switch a.Kind {
		case host.ArgType:
			out[i] = ir.GenericArg{Ty: s.Ty(a.Ty)}
		case host.ArgLifetime:
			out[i] = ir.GenericArg{NonTy: ir.NonTyLifetime}
		case host.ArgConst:
			out[i] = ir.GenericArg{NonTy: ir.NonTyConst}
		}
	}
	return out
}

// Sig lowers a function signature. A missing signature is fn() -> ().
func (s *Session) Sig(sig *host.FnSig) ir.FnSig {
	if sig == nil {
		return ir.FnSig{Inputs: []ir.TypeID{}, Output: s.Ty(host.UnitTy())}
	}
	out := sig.Output
	if out == nil {
		out = host.UnitTy()
	}
	return ir.FnSig{Inputs: s.tyList(sig.Inputs), Output: s.Ty(out), Abi: sig.Abi}
}

func (s *Session) predicates(preds []host.ExistentialPredicate) []ir.ExistentialPredicate {
	out := make([]ir.ExistentialPredicate, 0, len(preds))
	for _, p := range preds {
		switch p.Kind {
		case host.PredTrait:
			out = append(out, ir.TraitPredicate{Trait: string(s.names.DefName(p.Def)), Substs: s.Substs(p.Substs)})
		case host.PredProjection:
			out = append(out, ir.ProjectionPredicate{
				Proj:   string(s.names.DefName(p.Def)),
				Substs: s.Substs(p.Substs),
				RhsTy:  s.Ty(p.Ty),
			})
		case host.PredAutoTrait:
			out = append(out, ir.AutoTraitPredicate{Trait: string(s.names.DefName(p.Def))})
		}
	}
	return out
}
