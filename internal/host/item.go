package host

// LangItem names definitions the resolver treats specially.
type LangItem uint8

const (
	LangNone LangItem = iota
	// LangClone is the Clone trait.
	LangClone
	// LangFn, LangFnMut and LangFnOnce are the closure call traits.
	LangFn
	LangFnMut
	LangFnOnce
	// LangDrop is the Drop trait.
	LangDrop
	// LangDropInPlace is the drop glue entry point, generic over one type.
	LangDropInPlace
)

var langNames = map[string]LangItem{
	"clone":         LangClone,
	"fn":            LangFn,
	"fn_mut":        LangFnMut,
	"fn_once":       LangFnOnce,
	"drop":          LangDrop,
	"drop_in_place": LangDropInPlace,
}

// LookupLang maps a lang item name to its LangItem.
func LookupLang(name string) (LangItem, bool) {
	l, ok := langNames[name]
	return l, ok
}

func (l LangItem) isFnFamily() bool {
	return l == LangFn || l == LangFnMut || l == LangFnOnce
}

// TraitMethod is a method declared by a trait.
type TraitMethod struct {
	Def   DefID
	Trait DefID
	// OwnParams counts the method's own generic parameters.
	OwnParams int
	// RequiresSized excludes the method from dynamic dispatch.
	RequiresSized bool
	// ByValueSelf methods need a vtable shim when called through a vtable.
	ByValueSelf bool
	// Default holds the provided body, if any.
	Default *FnItem
	Sig     *FnSig
}

// TraitDef is a trait. Generic parameter 0 is always Self.
type TraitDef struct {
	Def DefID
	// NumParams counts Self plus the trait's parameters.
	NumParams  int
	Methods    []*TraitMethod
	AssocTypes []DefID
	// Clauses are the where-clauses of the trait, written against its
	// generics with Self as parameter 0.
	Clauses []Clause
	Lang    LangItem
	Auto    bool
}

// ClauseKind classifies where-clause predicates.
type ClauseKind uint8

const (
	// ClauseTrait requires Substs[0] to implement trait Def.
	ClauseTrait ClauseKind = iota
	// ClauseProjection fixes associated type Def of Substs to Ty.
	ClauseProjection
	// ClauseOther covers outlives, well-formedness and similar predicates.
	ClauseOther
)

// Clause is a where-clause predicate.
type Clause struct {
	Kind   ClauseKind
	Def    DefID
	Substs Substs
	Ty     *Ty
}

// Method returns the trait method with the given definition.
func (t *TraitDef) Method(def DefID) (int, *TraitMethod) {
	if t == nil {
		return -1, nil
	}
	for i, m := range t.Methods {
		if m.Def == def {
			return i, m
		}
	}
	return -1, nil
}

// ImplDef is a trait implementation.
type ImplDef struct {
	Def       DefID
	Trait     DefID
	NumParams int
	// SelfTy and TraitArgs are patterns over the impl's parameters.
	SelfTy    *Ty
	TraitArgs Substs
	// Methods maps a trait method to the implementing function.
	Methods    map[DefID]*FnItem
	AssocTypes map[DefID]*Ty
}

// FnItem is a function with a body, or an intrinsic.
type FnItem struct {
	Def       DefID
	NumParams int
	Sig       *FnSig
	Intrinsic bool
	Lang      LangItem
	Body      Body
}

// UseKind classifies what a body refers to.
type UseKind uint8

const (
	// UseCall calls Def with Substs.
	UseCall UseKind = iota
	// UseFnPtr takes the address of Def with Substs.
	UseFnPtr
	// UseType mentions Ty.
	UseType
	// UseConst mentions Const.
	UseConst
	// UseUnsize coerces Ty into the trait object Target.
	UseUnsize
	// UseDrop drops a value of Ty.
	UseDrop
)

func (k UseKind) String() string {
	switch k {
	case UseCall:
		return "call"
	case UseFnPtr:
		return "fnptr"
	case UseType:
		return "type"
	case UseConst:
		return "const"
	case UseUnsize:
		return "unsize"
	default:
		return "drop"
	}
}

// Use is one reference made by a function body, written against the
// function's own generic parameters.
type Use struct {
	Kind   UseKind
	Def    DefID
	Substs Substs
	Ty     *Ty
	Target *Ty
	Const  *Const
}

// Body is the list of uses of a function, in source order.
type Body struct {
	Uses []Use
}

// ConstItem is a named constant with its evaluated value and promoted parts.
type ConstItem struct {
	Def      DefID
	Ty       *Ty
	Value    *ConstValue
	Promoted []ConstValue
}

// StaticItem is a named static backed by an allocation.
type StaticItem struct {
	Def   DefID
	Ty    *Ty
	Alloc AllocID
}
