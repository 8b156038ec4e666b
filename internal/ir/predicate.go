package ir

import "encoding/json"

// ExistentialPredicate is one constraint of a trait object.
type ExistentialPredicate interface {
	existentialPredicate()
}

type (
	TraitPredicate struct {
		Trait  string       `json:"trait"`
		Substs []GenericArg `json:"substs"`
	}
	ProjectionPredicate struct {
		Proj   string       `json:"proj"`
		Substs []GenericArg `json:"substs"`
		RhsTy  TypeID       `json:"rhs_ty"`
	}
	AutoTraitPredicate struct {
		Trait string `json:"trait"`
	}
)

func (TraitPredicate) existentialPredicate()      {}
func (ProjectionPredicate) existentialPredicate() {}
func (AutoTraitPredicate) existentialPredicate()  {}

func (p TraitPredicate) MarshalJSON() ([]byte, error) {
	type plain TraitPredicate
	p.Substs = nonNilArgs(p.Substs)
	return tagged("Trait", plain(p))
}

func (p ProjectionPredicate) MarshalJSON() ([]byte, error) {
	type plain ProjectionPredicate
	p.Substs = nonNilArgs(p.Substs)
	return tagged("Projection", plain(p))
}

func (p AutoTraitPredicate) MarshalJSON() ([]byte, error) {
	type plain AutoTraitPredicate
	return tagged("AutoTrait", plain(p))
}

// TraitRef is a trait applied to arguments, Self first.
type TraitRef struct {
	Trait  string       `json:"trait"`
	Substs []GenericArg `json:"substs"`
}

// ProjectionRef is <Self as Trait>::Item.
type ProjectionRef struct {
	Substs    []GenericArg `json:"substs"`
	ItemDefID string       `json:"item_def_id"`
}

// Clause is a where-clause of a trait definition.
type Clause interface {
	clause()
}

type (
	TraitClause struct {
		TraitPred TraitRef `json:"trait_pred"`
	}
	ProjectionClause struct {
		TraitProj struct {
			ProjectionTy ProjectionRef `json:"projection_ty"`
			Ty           TypeID        `json:"ty"`
		} `json:"trait_proj"`
	}
	// UnknownClause stands for every clause kind without a lowering.
	UnknownClause struct{}
)

func (TraitClause) clause()      {}
func (ProjectionClause) clause() {}
func (UnknownClause) clause()    {}

func (UnknownClause) MarshalJSON() ([]byte, error) { return json.Marshal("unknown_pred") }
