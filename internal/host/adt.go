package host

// AdtKind is the flavor of an algebraic data type.
type AdtKind uint8

const (
	AdtStruct AdtKind = iota
	AdtEnum
	AdtUnion
)

func (k AdtKind) String() string {
	switch k {
	case AdtEnum:
		return "Enum"
	case AdtUnion:
		return "Union"
	default:
		return "Struct"
	}
}

// CtorKind is the constructor shape of a variant.
type CtorKind uint8

const (
	// CtorFn is a tuple-like constructor.
	CtorFn CtorKind = iota
	// CtorConst is a unit constructor.
	CtorConst
	// CtorFictive is a struct-like variant with named fields.
	CtorFictive
)

func (k CtorKind) String() string {
	switch k {
	case CtorFn:
		return "Fn"
	case CtorConst:
		return "Const"
	default:
		return "Fictive"
	}
}

// Discr is a variant discriminant: either relative to the previous explicit
// one, or given by a constant item.
type Discr struct {
	Explicit bool
	// Index is the distance from the last explicit discriminant.
	Index uint32
	// Def is the discriminant's constant when Explicit.
	Def DefID
}

// FieldDef is a field with a type written against the ADT's generics.
type FieldDef struct {
	Def DefID
	Ty  *Ty
}

// VariantDef is one variant; structs and unions have exactly one.
type VariantDef struct {
	Def    DefID
	Discr  Discr
	Fields []*FieldDef
	Ctor   CtorKind
}

// AdtDef is a generic ADT definition.
type AdtDef struct {
	Def       DefID
	Kind      AdtKind
	NumParams int
	Variants  []*VariantDef
}

// FieldTys returns the field types of variant v instantiated with substs.
func (a *AdtDef) FieldTys(v int, substs Substs) []*Ty {
	if a == nil || v < 0 || v >= len(a.Variants) {
		return nil
	}
	fields := a.Variants[v].Fields
	out := make([]*Ty, len(fields))
	for i, f := range fields {
		out[i] = f.Ty.Subst(substs)
	}
	return out
}

// AdtInstance is an ADT applied to concrete arguments.
type AdtInstance struct {
	Def    DefID
	Substs Substs
}

// Key returns a canonical structural key.
func (ai AdtInstance) Key() string {
	return AdtOf(ai.Def, ai.Substs).Key()
}
