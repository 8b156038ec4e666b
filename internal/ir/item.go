package ir

// Discr is a variant discriminant.
type Discr interface {
	discr()
}

type (
	RelativeDiscr struct {
		Index uint32 `json:"index"`
	}
	ExplicitDiscr struct {
		Name string `json:"name"`
	}
)

func (RelativeDiscr) discr() {}
func (ExplicitDiscr) discr() {}

func (d RelativeDiscr) MarshalJSON() ([]byte, error) {
	type plain RelativeDiscr
	return tagged("Relative", plain(d))
}

func (d ExplicitDiscr) MarshalJSON() ([]byte, error) {
	type plain ExplicitDiscr
	return tagged("Explicit", plain(d))
}

// Field is an instantiated field; its substitutions are already applied.
type Field struct {
	Name   string       `json:"name"`
	Ty     TypeID       `json:"ty"`
	Substs []GenericArg `json:"substs"`
}

// Variant is one variant of an ADT instance.
type Variant struct {
	Name     string  `json:"name"`
	Discr    Discr   `json:"discr"`
	Fields   []Field `json:"fields"`
	CtorKind string  `json:"ctor_kind"`
}

// Adt is an instantiated algebraic data type.
type Adt struct {
	Name       string       `json:"name"`
	Kind       string       `json:"kind"`
	Variants   []Variant    `json:"variants"`
	OrigDefID  string       `json:"orig_def_id"`
	OrigSubsts []GenericArg `json:"orig_substs"`
}

// TraitItem is a method that appears in a trait's vtable, in slot order.
type TraitItem struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Signature FnSig  `json:"signature"`
}

// Trait is a trait instance: the trait-object shape it was reached through.
type Trait struct {
	Name       string                 `json:"name"`
	Predicates []ExistentialPredicate `json:"predicates"`
	Clauses    []Clause               `json:"clauses"`
	Items      []TraitItem            `json:"items"`
}

// VtableEntry fills one slot of a vtable.
type VtableEntry struct {
	ItemID string `json:"item_id"`
	DefID  string `json:"def_id"`
}

// Vtable is the method table of a concrete type viewed as a trait object.
type Vtable struct {
	Name    string        `json:"name"`
	TraitID string        `json:"trait_id"`
	Items   []VtableEntry `json:"items"`
}
