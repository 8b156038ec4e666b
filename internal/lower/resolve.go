package lower

import (
	"fmt"

	"tyjson/internal/diag"
	"tyjson/internal/host"
	"tyjson/internal/ir"
	"tyjson/internal/naming"
)

// ResolveAndRecord resolves def applied to substs for the given usage, records
// the instance as reachable and returns its name. A target the resolver
// cannot handle falls back to the bare definition name with a warning.
func (s *Session) ResolveAndRecord(def host.DefID, substs host.Substs, usage host.Usage) naming.StableName {
	substs = s.oracles.NormalizeSubsts(substs)
	inst, ok := s.oracles.Resolve(def, substs, usage)
	if !ok {
		name := s.names.DefName(def)
		diag.ReportWarning(s.reporter, diag.LowerUnresolvedInstance, string(name),
			fmt.Sprintf("cannot resolve %s%s for %s use", name, substs.Key(), usage)).Emit()
		return name
	}
	return s.RecordInstance(inst)
}

// FnDefName is the name of the instance a function item refers to.
func (s *Session) FnDefName(def host.DefID, substs host.Substs) naming.StableName {
	return s.ResolveAndRecord(def, substs, host.UsageCall)
}

// RecordInstance inserts an already resolved instance into the used set.
func (s *Session) RecordInstance(inst host.Instance) naming.StableName {
	name := s.names.InstanceName(inst)
	if s.used.Instances.Insert(name, inst) {
		s.point("instance", name)
	}
	return name
}

// RecordAdt inserts an ADT instantiation into the used set.
func (s *Session) RecordAdt(ai host.AdtInstance) naming.StableName {
	ai.Substs = s.oracles.NormalizeSubsts(ai.Substs)
	name := s.names.AdtName(ai)
	if s.used.Adts.Insert(name, ai) {
		s.point("adt", name)
	}
	return name
}

// RecordTrait inserts the trait instance of a trait object type into the
// used set.
func (s *Session) RecordTrait(dyn *host.Ty) naming.StableName {
	dyn = s.oracles.NormalizeErasingRegions(dyn)
	name := s.names.TraitName(dyn)
	if s.used.Traits.Insert(name, dyn) {
		s.point("trait", name)
	}
	return name
}

// PromotedName names a constant item or one of its promoted parts. Function
// owners are resolved like any other function reference.
func (s *Session) PromotedName(def host.DefID, substs host.Substs, promoted *uint32) naming.StableName {
	var parent naming.StableName
	switch s.oracles.DefKind(def) {
	case host.DefFn, host.DefTraitMethod, host.DefClosure:
		parent = s.FnDefName(def, substs)
	default:
		parent = s.names.DefName(def)
	}
	if promoted == nil {
		return parent
	}
	return naming.PromotedName(parent, *promoted)
}

// Instance lowers a resolved instance.
func (s *Session) Instance(inst host.Instance) ir.Instance {
	def := string(s.names.DefName(inst.Def))
	switch inst.Kind {
	case host.InstItem:
		return ir.ItemInst{DefID: def, Substs: s.Substs(inst.Substs)}
	case host.InstIntrinsic:
		return ir.IntrinsicInst{DefID: def, Substs: s.Substs(inst.Substs)}
	case host.InstVtableShim:
		return ir.VtableShimInst{DefID: def, Substs: s.Substs(inst.Substs)}
	case host.InstReifyShim:
		return ir.ReifyShimInst{DefID: def, Substs: s.Substs(inst.Substs)}
	case host.InstFnPtrShim:
		return ir.FnPtrShimInst{DefID: def, Substs: s.Substs(inst.Substs), Ty: s.Ty(inst.Ty)}
	case host.InstVirtual:
		self := inst.Substs.Type(0)
		return ir.VirtualInst{
			TraitID: string(s.RecordTrait(self)),
			ItemID:  def,
			Index:   s.NormalizeSlot(self, inst.Slot),
		}
	case host.InstClosureOnceShim:
		return ir.ClosureOnceShimInst{CallOnce: def, Substs: s.Substs(inst.Substs)}
	case host.InstDropGlue:
		out := ir.DropGlueInst{DefID: def, Substs: s.Substs(inst.Substs)}
		if inst.Ty != nil {
			id := s.Ty(inst.Ty)
			out.Ty = &id
		}
		return out
	case host.InstCloneShim:
		return ir.CloneShimInst{
			DefID:   def,
			Substs:  s.Substs(inst.Substs),
			Ty:      s.Ty(inst.Ty),
			Callees: s.cloneCallees(inst),
		}
	default:
		fatalf(FatalPrecondition, "unknown instance kind %s", inst.Kind)
		return nil
	}
}

// cloneCallees resolves Clone::clone for every component a clone shim copies
// and records each as reachable.
func (s *Session) cloneCallees(inst host.Instance) []*string {
	if inst.Ty == nil {
		return []*string{}
	}
	var parts []*host.Ty
	switch t := inst.Ty; t.Kind {
	case host.TyArray:
		parts = []*host.Ty{t.Elem}
	case host.TyTuple, host.TyClosure:
		parts = t.Elems
	case host.TyFnDef, host.TyFnPtr, host.TyNever, host.TyRawPtr, host.TyRef:
		return []*string{}
	default:
		diag.ReportWarning(s.reporter, diag.LowerCloneShim, t.Key(),
			"don't know how to build the clone shim for this type").Emit()
		return []*string{}
	}
	out := make([]*string, len(parts))
	for i, part := range parts {
		callee, ok := s.oracles.Resolve(inst.Def, s.oracles.NormalizeSubsts(host.TypeArgs(part)), host.UsageCall)
		if !ok {
			continue
		}
		name := string(s.RecordInstance(callee))
		out[i] = &name
	}
	return out
}
