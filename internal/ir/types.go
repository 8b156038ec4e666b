package ir

import (
	"encoding/json"
	"strconv"
)

// TypeID references an entry of the document's type table.
type TypeID uint32

// GenericArg is a substitution entry: an interned type, or a marker for a
// non-type argument.
type GenericArg struct {
	Ty    TypeID
	NonTy string
}

const (
	NonTyLifetime = "nonty::Lifetime"
	NonTyConst    = "nonty::Const"
)

func (a GenericArg) MarshalJSON() ([]byte, error) {
	if a.NonTy != "" {
		return json.Marshal(a.NonTy)
	}
	return []byte(strconv.FormatUint(uint64(a.Ty), 10)), nil
}

// NoSubsts is the always-empty substitution list emitted next to names that
// already encode their arguments.
var NoSubsts = []GenericArg{}

// FnSig is a lowered function signature.
type FnSig struct {
	Inputs []TypeID `json:"inputs"`
	Output TypeID   `json:"output"`
	Abi    string   `json:"abi"`
}

// TypeNode is a lowered type.
type TypeNode interface {
	typeNode()
}

type (
	BoolTy  struct{}
	CharTy  struct{}
	StrTy   struct{}
	NeverTy struct{}
	ErrorTy struct{}

	IntTy struct {
		IntKind string `json:"intkind"`
	}
	UintTy struct {
		UintKind string `json:"uintkind"`
	}
	FloatTy struct {
		Size string `json:"size"`
	}
	TupleTy struct {
		Tys []TypeID `json:"tys"`
	}
	SliceTy struct {
		Ty TypeID `json:"ty"`
	}
	ArrayTy struct {
		Ty   TypeID `json:"ty"`
		Size *Const `json:"size"`
	}
	RefTy struct {
		Ty         TypeID `json:"ty"`
		Mutability string `json:"mutability"`
	}
	RawPtrTy struct {
		Ty         TypeID `json:"ty"`
		Mutability string `json:"mutability"`
	}
	AdtTy struct {
		Name      string       `json:"name"`
		OrigDefID string       `json:"orig_def_id"`
		Substs    []GenericArg `json:"substs"`
	}
	FnDefTy struct {
		DefID  string       `json:"defid"`
		Substs []GenericArg `json:"substs"`
	}
	FnPtrTy struct {
		Signature FnSig `json:"signature"`
	}
	ClosureTy struct {
		DefID         string       `json:"defid"`
		ClosureSubsts []GenericArg `json:"closuresubsts"`
		UpvarTys      []TypeID     `json:"upvar_tys"`
	}
	DynamicTy struct {
		TraitID    string                 `json:"trait_id"`
		Predicates []ExistentialPredicate `json:"predicates"`
	}
	ProjectionTy struct {
		Substs []GenericArg `json:"substs"`
		DefID  string       `json:"defid"`
	}
	ParamTy struct {
		Param uint32 `json:"param"`
	}
	// UnhandledTy marks a host type kind with no IR mapping. Kind is the host
	// kind name.
	UnhandledTy struct {
		Kind string `json:"-"`
	}
)

func (BoolTy) typeNode()       {}
func (CharTy) typeNode()       {}
func (StrTy) typeNode()        {}
func (NeverTy) typeNode()      {}
func (ErrorTy) typeNode()      {}
func (IntTy) typeNode()        {}
func (UintTy) typeNode()       {}
func (FloatTy) typeNode()      {}
func (TupleTy) typeNode()      {}
func (SliceTy) typeNode()      {}
func (ArrayTy) typeNode()      {}
func (RefTy) typeNode()        {}
func (RawPtrTy) typeNode()     {}
func (AdtTy) typeNode()        {}
func (FnDefTy) typeNode()      {}
func (FnPtrTy) typeNode()      {}
func (ClosureTy) typeNode()    {}
func (DynamicTy) typeNode()    {}
func (ProjectionTy) typeNode() {}
func (ParamTy) typeNode()      {}
func (UnhandledTy) typeNode()  {}

func (t BoolTy) MarshalJSON() ([]byte, error)  { return tagged("Bool", struct{}{}) }
func (t CharTy) MarshalJSON() ([]byte, error)  { return tagged("Char", struct{}{}) }
func (t StrTy) MarshalJSON() ([]byte, error)   { return tagged("Str", struct{}{}) }
func (t NeverTy) MarshalJSON() ([]byte, error) { return tagged("Never", struct{}{}) }
func (t ErrorTy) MarshalJSON() ([]byte, error) { return tagged("Error", struct{}{}) }

func (t IntTy) MarshalJSON() ([]byte, error) {
	type plain IntTy
	return tagged("Int", plain(t))
}

func (t UintTy) MarshalJSON() ([]byte, error) {
	type plain UintTy
	return tagged("Uint", plain(t))
}

func (t FloatTy) MarshalJSON() ([]byte, error) {
	type plain FloatTy
	return tagged("Float", plain(t))
}

func (t TupleTy) MarshalJSON() ([]byte, error) {
	type plain TupleTy
	if t.Tys == nil {
		t.Tys = []TypeID{}
	}
	return tagged("Tuple", plain(t))
}

func (t SliceTy) MarshalJSON() ([]byte, error) {
	type plain SliceTy
	return tagged("Slice", plain(t))
}

func (t ArrayTy) MarshalJSON() ([]byte, error) {
	type plain ArrayTy
	return tagged("Array", plain(t))
}

func (t RefTy) MarshalJSON() ([]byte, error) {
	type plain RefTy
	return tagged("Ref", plain(t))
}

func (t RawPtrTy) MarshalJSON() ([]byte, error) {
	type plain RawPtrTy
	return tagged("RawPtr", plain(t))
}

func (t AdtTy) MarshalJSON() ([]byte, error) {
	type plain AdtTy
	t.Substs = nonNilArgs(t.Substs)
	return tagged("Adt", plain(t))
}

func (t FnDefTy) MarshalJSON() ([]byte, error) {
	type plain FnDefTy
	t.Substs = nonNilArgs(t.Substs)
	return tagged("FnDef", plain(t))
}

func (t FnPtrTy) MarshalJSON() ([]byte, error) {
	type plain FnPtrTy
	t.Signature = nonNilSig(t.Signature)
	return tagged("FnPtr", plain(t))
}

func (t ClosureTy) MarshalJSON() ([]byte, error) {
	type plain ClosureTy
	t.ClosureSubsts = nonNilArgs(t.ClosureSubsts)
	if t.UpvarTys == nil {
		t.UpvarTys = []TypeID{}
	}
	return tagged("Closure", plain(t))
}

func (t DynamicTy) MarshalJSON() ([]byte, error) {
	type plain DynamicTy
	if t.Predicates == nil {
		t.Predicates = []ExistentialPredicate{}
	}
	return tagged("Dynamic", plain(t))
}

func (t ProjectionTy) MarshalJSON() ([]byte, error) {
	type plain ProjectionTy
	t.Substs = nonNilArgs(t.Substs)
	return tagged("Projection", plain(t))
}

func (t ParamTy) MarshalJSON() ([]byte, error) {
	type plain ParamTy
	return tagged("Param", plain(t))
}

func (t UnhandledTy) MarshalJSON() ([]byte, error) {
	return tagged(t.Kind, struct {
		Unhandled bool `json:"unhandled"`
	}{true})
}

func nonNilArgs(a []GenericArg) []GenericArg {
	if a == nil {
		return NoSubsts
	}
	return a
}

func nonNilSig(s FnSig) FnSig {
	if s.Inputs == nil {
		s.Inputs = []TypeID{}
	}
	return s
}
