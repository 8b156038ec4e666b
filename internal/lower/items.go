package lower

import (
	"fmt"

	"tyjson/internal/diag"
	"tyjson/internal/host"
	"tyjson/internal/ir"
)

// Adt lowers an ADT instantiation. Field types are instantiated and
// normalized; it reports false when the oracle does not know the ADT.
func (s *Session) Adt(ai host.AdtInstance) (ir.Adt, bool) {
	ai.Substs = s.oracles.NormalizeSubsts(ai.Substs)
	name := string(s.names.AdtName(ai))
	def, ok := s.oracles.Adt(ai.Def)
	if !ok {
		diag.ReportWarning(s.reporter, diag.LowerMissingAdt, name,
			fmt.Sprintf("no definition for %s", s.names.DefName(ai.Def))).Emit()
		return ir.Adt{}, false
	}
	out := ir.Adt{
		Name:       name,
		Kind:       def.Kind.String(),
		Variants:   make([]ir.Variant, len(def.Variants)),
		OrigDefID:  string(s.names.DefName(def.Def)),
		OrigSubsts: s.Substs(ai.Substs),
	}
	for i, v := range def.Variants {
		out.Variants[i] = s.variant(v, ai.Substs)
	}
	return out, true
}

func (s *Session) variant(v *host.VariantDef, substs host.Substs) ir.Variant {
	out := ir.Variant{
		Name:     string(s.names.DefName(v.Def)),
		Fields:   make([]ir.Field, len(v.Fields)),
		CtorKind: v.Ctor.String(),
	}
	if v.Discr.Explicit {
		out.Discr = ir.ExplicitDiscr{Name: string(s.names.DefName(v.Discr.Def))}
	} else {
		out.Discr = ir.RelativeDiscr{Index: v.Discr.Index}
	}
	for i, f := range v.Fields {
		out.Fields[i] = ir.Field{
			Name:   string(s.names.DefName(f.Def)),
			Ty:     s.Ty(f.Ty.Subst(substs)),
			Substs: ir.NoSubsts,
		}
	}
	return out
}

// Trait lowers the trait instance of a trait object type: its predicates,
// the principal trait's where-clauses and the methods that keep a vtable
// slot, in slot order.
func (s *Session) Trait(dyn *host.Ty) ir.Trait {
	dyn = s.oracles.NormalizeErasingRegions(dyn)
	if dyn == nil || dyn.Kind != host.TyDynamic {
		fatalf(FatalPrecondition, "trait instance of %s, which is not a trait object", dyn)
	}
	out := ir.Trait{
		Name:       string(s.RecordTrait(dyn)),
		Predicates: s.predicates(dyn.Preds),
		Clauses:    []ir.Clause{},
		Items:      []ir.TraitItem{},
	}
	principal, ok := dyn.Principal()
	if !ok {
		return out
	}
	tr, ok := s.oracles.Trait(principal.Def)
	if !ok {
		return out
	}
	args := append(host.TypeArgs(dyn), principal.Substs...)
	for _, c := range tr.Clauses {
		out.Clauses = append(out.Clauses, s.clause(c, args))
	}
	for _, e := range s.vtableEntries(dyn) {
		if !e.Present {
			continue
		}
		m, ok := s.oracles.TraitMethod(e.Method)
		if !ok {
			continue
		}
		out.Items = append(out.Items, ir.TraitItem{
			Kind:      "Method",
			Name:      string(s.names.DefName(m.Def)),
			Signature: s.Sig(m.Sig.Subst(args)),
		})
	}
	return out
}

func (s *Session) clause(c host.Clause, args host.Substs) ir.Clause {
	switch c.Kind {
	case host.ClauseTrait:
		return ir.TraitClause{TraitPred: ir.TraitRef{
			Trait:  string(s.names.DefName(c.Def)),
			Substs: s.Substs(c.Substs.Subst(args)),
		}}
	case host.ClauseProjection:
		var out ir.ProjectionClause
		out.TraitProj.ProjectionTy = ir.ProjectionRef{
			Substs:    s.Substs(c.Substs.Subst(args)),
			ItemDefID: string(s.names.DefName(c.Def)),
		}
		out.TraitProj.Ty = s.Ty(c.Ty.Subst(args))
		return out
	default:
		diag.ReportInfo(s.reporter, diag.LowerUnknownPredicate, string(s.names.DefName(c.Def)),
			"where-clause kind has no IR mapping").Emit()
		return ir.UnknownClause{}
	}
}
