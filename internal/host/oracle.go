package host

// DefLookup reports where definitions live.
type DefLookup interface {
	DefPath(id DefID) (DefPath, bool)
	DefKind(id DefID) DefKind
}

// Normalizer erases regions and normalizes projections under a reveal-all
// environment.
type Normalizer interface {
	NormalizeErasingRegions(t *Ty) *Ty
	NormalizeSubsts(s Substs) Substs
}

// Resolver picks the concrete instance for a call target.
type Resolver interface {
	Resolve(def DefID, substs Substs, usage Usage) (Instance, bool)
}

// ConstEvaluator evaluates constant items and exposes global memory.
type ConstEvaluator interface {
	EvalConst(def DefID, substs Substs, promoted *uint32) (ConstValue, error)
	GlobalAlloc(id AllocID) (GlobalAlloc, bool)
}

// VtableOracle returns the raw method table of a trait object type.
type VtableOracle interface {
	VtableMethods(dyn *Ty) ([]VtableEntry, error)
}

// ItemLookup gives access to item definitions.
type ItemLookup interface {
	Adt(id DefID) (*AdtDef, bool)
	Trait(id DefID) (*TraitDef, bool)
	TraitMethod(id DefID) (*TraitMethod, bool)
	Fn(id DefID) (*FnItem, bool)
	Lang(item LangItem) (DefID, bool)
}

// Oracles bundles every collaborator the lowering engine consults.
type Oracles interface {
	DefLookup
	Normalizer
	Resolver
	ConstEvaluator
	VtableOracle
	ItemLookup
}

var _ Oracles = (*Program)(nil)
