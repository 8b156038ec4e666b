package host

import "fmt"

// Resolve implements Resolver under a reveal-all environment. It reports false
// when no instance exists for the target, e.g. when a required impl is missing
// or the arguments do not fit the definition.
func (p *Program) Resolve(def DefID, substs Substs, usage Usage) (Instance, bool) {
	substs = p.NormalizeSubsts(substs)
	if m, ok := p.methods[def]; ok {
		return p.resolveTraitMethod(m, substs, usage)
	}
	fn, ok := p.fns[def]
	if !ok {
		return Instance{}, false
	}
	switch {
	case fn.Lang == LangDropInPlace:
		ty := substs.Type(0)
		if ty == nil {
			return Instance{}, false
		}
		inst := Instance{Kind: InstDropGlue, Def: def, Substs: substs}
		if p.NeedsDrop(ty) {
			inst.Ty = ty
		}
		return inst, true
	case len(substs) != fn.NumParams:
		return Instance{}, false
	case fn.Intrinsic:
		return Instance{Kind: InstIntrinsic, Def: def, Substs: substs}, true
	default:
		return Instance{Kind: InstItem, Def: def, Substs: substs}, true
	}
}

func (p *Program) resolveTraitMethod(m *TraitMethod, substs Substs, usage Usage) (Instance, bool) {
	tr, ok := p.traits[m.Trait]
	if !ok || len(substs) != tr.NumParams+m.OwnParams {
		return Instance{}, false
	}
	self := substs.Type(0)
	if self == nil {
		return Instance{}, false
	}

	if self.Kind == TyDynamic {
		if m.RequiresSized || m.OwnParams > 0 {
			return Instance{}, false
		}
		if usage == UsageFnPtr {
			return Instance{Kind: InstReifyShim, Def: m.Def, Substs: substs}, true
		}
		slot, _ := tr.Method(m.Def)
		return Instance{Kind: InstVirtual, Def: m.Def, Substs: substs, Slot: slot}, true
	}

	if tr.Lang.isFnFamily() {
		switch self.Kind {
		case TyClosure:
			if tr.Lang == LangFnOnce && self.ClosureKind != ClosureFnOnce {
				return Instance{Kind: InstClosureOnceShim, Def: m.Def, Substs: substs}, true
			}
			if !closureImplements(self.ClosureKind, tr.Lang) {
				return Instance{}, false
			}
			return Instance{Kind: InstItem, Def: self.Def, Substs: self.Substs}, true
		case TyFnPtr, TyFnDef:
			return Instance{Kind: InstFnPtrShim, Def: m.Def, Substs: substs, Ty: self}, true
		}
	}

	if im, binds, ok := p.findImpl(tr.Def, substs[:tr.NumParams]); ok {
		kind := InstItem
		if usage == UsageVtable && m.ByValueSelf {
			kind = InstVtableShim
		}
		if fn, ok := im.Methods[m.Def]; ok {
			own := substs[tr.NumParams:]
			args := make(Substs, 0, len(binds)+len(own))
			args = append(append(args, binds...), own...)
			return Instance{Kind: kind, Def: fn.Def, Substs: args}, true
		}
		if m.Default != nil {
			return Instance{Kind: kind, Def: m.Def, Substs: substs}, true
		}
		return Instance{}, false
	}

	if tr.Lang == LangClone && builtinClone(self) {
		return Instance{Kind: InstCloneShim, Def: m.Def, Substs: substs, Ty: self}, true
	}
	return Instance{}, false
}

func closureImplements(kind ClosureKind, lang LangItem) bool {
	switch lang {
	case LangFn:
		return kind == ClosureFn
	case LangFnMut:
		return kind == ClosureFn || kind == ClosureFnMut
	default:
		return true
	}
}

func builtinClone(t *Ty) bool {
	switch t.Kind {
	case TyArray, TyTuple, TyClosure, TyFnDef, TyFnPtr, TyNever, TyRawPtr:
		return true
	case TyRef:
		return t.Mutbl == Not
	default:
		return false
	}
}

// NeedsDrop reports whether dropping a value of t runs any code.
func (p *Program) NeedsDrop(t *Ty) bool {
	return p.needsDrop(t, make(map[string]bool))
}

func (p *Program) needsDrop(t *Ty, visiting map[string]bool) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case TyDynamic, TyParam, TyProjection:
		return true
	case TySlice, TyArray:
		return p.needsDrop(t.Elem, visiting)
	case TyTuple, TyClosure:
		for _, e := range t.Elems {
			if p.needsDrop(e, visiting) {
				return true
			}
		}
		return false
	case TyAdt:
		key := t.Key()
		if visiting[key] {
			return false
		}
		visiting[key] = true
		if drop, ok := p.lang[LangDrop]; ok {
			if _, _, ok := p.findImpl(drop, TypeArgs(t)); ok {
				return true
			}
		}
		adt, ok := p.adts[t.Def]
		if !ok {
			return false
		}
		for v := range adt.Variants {
			for _, f := range adt.FieldTys(v, t.Substs) {
				if p.needsDrop(p.NormalizeErasingRegions(f), visiting) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// VtableMethods implements VtableOracle.
func (p *Program) VtableMethods(dyn *Ty) ([]VtableEntry, error) {
	if dyn == nil || dyn.Kind != TyDynamic {
		return nil, fmt.Errorf("host: expected a trait object type, got %s", dyn)
	}
	principal, ok := dyn.Principal()
	if !ok {
		return nil, fmt.Errorf("host: trait object %s has no principal trait", dyn)
	}
	tr, ok := p.traits[principal.Def]
	if !ok {
		return nil, fmt.Errorf("host: unknown trait %s", p.describe(principal.Def))
	}
	entries := make([]VtableEntry, len(tr.Methods))
	for i, m := range tr.Methods {
		entries[i] = VtableEntry{Method: m.Def, Present: !m.RequiresSized && m.OwnParams == 0}
	}
	return entries, nil
}
