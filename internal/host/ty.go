package host

import (
	"fmt"
	"strconv"
	"strings"
)

// TyKind enumerates host type constructors.
type TyKind uint8

const (
	TyInvalid TyKind = iota
	TyBool
	TyChar
	TyInt
	TyUint
	TyFloat
	TyTuple
	TySlice
	TyStr
	TyArray
	TyRef
	TyRawPtr
	TyFnDef
	TyFnPtr
	TyClosure
	TyAdt
	TyDynamic
	TyProjection
	TyParam
	TyNever
	TyError
	// Constructors below have no IR mapping.
	TyOpaque
	TyInfer
	TyBound
	TyPlaceholder
	TyForeign
	TyGenerator
	TyGeneratorWitness
)

var tyKindNames = [...]string{
	TyInvalid:          "Invalid",
	TyBool:             "Bool",
	TyChar:             "Char",
	TyInt:              "Int",
	TyUint:             "Uint",
	TyFloat:            "Float",
	TyTuple:            "Tuple",
	TySlice:            "Slice",
	TyStr:              "Str",
	TyArray:            "Array",
	TyRef:              "Ref",
	TyRawPtr:           "RawPtr",
	TyFnDef:            "FnDef",
	TyFnPtr:            "FnPtr",
	TyClosure:          "Closure",
	TyAdt:              "Adt",
	TyDynamic:          "Dynamic",
	TyProjection:       "Projection",
	TyParam:            "Param",
	TyNever:            "Never",
	TyError:            "Error",
	TyOpaque:           "Opaque",
	TyInfer:            "Infer",
	TyBound:            "Bound",
	TyPlaceholder:      "Placeholder",
	TyForeign:          "Foreign",
	TyGenerator:        "Generator",
	TyGeneratorWitness: "GeneratorWitness",
}

func (k TyKind) String() string {
	if int(k) < len(tyKindNames) {
		return tyKindNames[k]
	}
	return fmt.Sprintf("TyKind(%d)", k)
}

// IntTy is a signed integer width.
type IntTy uint8

const (
	I8 IntTy = iota
	I16
	I32
	I64
	I128
	Isize
)

// UintTy is an unsigned integer width.
type UintTy uint8

const (
	U8 UintTy = iota
	U16
	U32
	U64
	U128
	Usize
)

// FloatTy is a floating point width.
type FloatTy uint8

const (
	F32 FloatTy = iota
	F64
)

// PointerSize is the target pointer width in bytes.
const PointerSize = 8

var intNames = [...]string{I8: "I8", I16: "I16", I32: "I32", I64: "I64", I128: "I128", Isize: "Isize"}
var uintNames = [...]string{U8: "U8", U16: "U16", U32: "U32", U64: "U64", U128: "U128", Usize: "Usize"}

func (t IntTy) String() string  { return intNames[t] }
func (t UintTy) String() string { return uintNames[t] }

func (t FloatTy) String() string {
	if t == F32 {
		return "F32"
	}
	return "F64"
}

// Size returns the width in bytes.
func (t IntTy) Size() int {
	switch t {
	case I8:
		return 1
	case I16:
		return 2
	case I32:
		return 4
	case I64:
		return 8
	case I128:
		return 16
	default:
		return PointerSize
	}
}

// Size returns the width in bytes.
func (t UintTy) Size() int { return IntTy(t).Size() }

// Size returns the width in bytes.
func (t FloatTy) Size() int {
	if t == F32 {
		return 4
	}
	return 8
}

// Mutability of references and raw pointers.
type Mutability uint8

const (
	Not Mutability = iota
	Mut
)

func (m Mutability) String() string {
	if m == Mut {
		return "Mut"
	}
	return "Not"
}

// Region names a lifetime. The empty region is the erased one.
type Region string

// ErasedRegion is what region erasure leaves behind.
const ErasedRegion Region = ""

// ParamTy is a generic type parameter.
type ParamTy struct {
	Index uint32
	Name  string
}

// ClosureKind is the most permissive Fn trait a closure implements.
type ClosureKind uint8

const (
	ClosureFn ClosureKind = iota
	ClosureFnMut
	ClosureFnOnce
)

// FnSig is a function signature.
type FnSig struct {
	Inputs []*Ty
	Output *Ty
	Abi    string
}

// Ty is a host type. Values are treated as immutable once built.
type Ty struct {
	Kind TyKind

	Int   IntTy
	Uint  UintTy
	Float FloatTy

	// Elem is the element or pointee of Slice, Array, Ref and RawPtr.
	Elem *Ty
	// Elems are the Tuple fields or the Closure upvars.
	Elems []*Ty
	// Len is the Array length.
	Len *Const

	Region Region
	Mutbl  Mutability

	// Def is the definition of Adt, FnDef, Closure, Projection (associated
	// item), Foreign, Opaque and Generator types.
	Def    DefID
	Substs Substs

	Sig   *FnSig
	Preds []ExistentialPredicate
	Param ParamTy
	// ClosureKind is meaningful for TyClosure only.
	ClosureKind ClosureKind
}

// Constructors -----------------------------------------------------------------

func BoolTy() *Ty              { return &Ty{Kind: TyBool} }
func CharTy() *Ty              { return &Ty{Kind: TyChar} }
func StrTy() *Ty               { return &Ty{Kind: TyStr} }
func NeverTy() *Ty             { return &Ty{Kind: TyNever} }
func ErrorTy() *Ty             { return &Ty{Kind: TyError} }
func IntOf(w IntTy) *Ty        { return &Ty{Kind: TyInt, Int: w} }
func UintOf(w UintTy) *Ty      { return &Ty{Kind: TyUint, Uint: w} }
func FloatOf(w FloatTy) *Ty    { return &Ty{Kind: TyFloat, Float: w} }
func TupleOf(elems ...*Ty) *Ty { return &Ty{Kind: TyTuple, Elems: elems} }
func SliceOf(elem *Ty) *Ty     { return &Ty{Kind: TySlice, Elem: elem} }
func UnitTy() *Ty              { return TupleOf() }

// ArrayOf describes [elem; n].
func ArrayOf(elem *Ty, n uint64) *Ty {
	return &Ty{Kind: TyArray, Elem: elem, Len: UsizeConst(n)}
}

// RefTo describes &'r elem or &'r mut elem.
func RefTo(r Region, elem *Ty, m Mutability) *Ty {
	return &Ty{Kind: TyRef, Region: r, Elem: elem, Mutbl: m}
}

// PtrTo describes *const elem or *mut elem.
func PtrTo(elem *Ty, m Mutability) *Ty {
	return &Ty{Kind: TyRawPtr, Elem: elem, Mutbl: m}
}

// AdtOf describes an instantiated ADT.
func AdtOf(def DefID, substs Substs) *Ty { return &Ty{Kind: TyAdt, Def: def, Substs: substs} }

// FnDefOf describes the zero-sized type of a function item.
func FnDefOf(def DefID, substs Substs) *Ty { return &Ty{Kind: TyFnDef, Def: def, Substs: substs} }

// FnPtrOf describes a function pointer.
func FnPtrOf(sig *FnSig) *Ty { return &Ty{Kind: TyFnPtr, Sig: sig} }

// ClosureOf describes a closure with its captured upvar types.
func ClosureOf(def DefID, substs Substs, kind ClosureKind, upvars ...*Ty) *Ty {
	return &Ty{Kind: TyClosure, Def: def, Substs: substs, ClosureKind: kind, Elems: upvars}
}

// DynOf describes a trait object.
func DynOf(r Region, preds ...ExistentialPredicate) *Ty {
	return &Ty{Kind: TyDynamic, Region: r, Preds: preds}
}

// ProjectionOf describes <substs[0] as Trait<substs[1:]>>::Item.
func ProjectionOf(item DefID, substs Substs) *Ty {
	return &Ty{Kind: TyProjection, Def: item, Substs: substs}
}

// ParamOf describes generic parameter number index.
func ParamOf(index uint32, name string) *Ty {
	return &Ty{Kind: TyParam, Param: ParamTy{Index: index, Name: name}}
}

// OpaqueKind builds a type of a kind the IR cannot express.
func OpaqueKind(kind TyKind, def DefID) *Ty { return &Ty{Kind: kind, Def: def} }

// IsUnsupported reports whether the kind has no IR mapping.
func (k TyKind) IsUnsupported() bool { return k >= TyOpaque }

// Principal returns the principal trait predicate of a trait object.
func (t *Ty) Principal() (ExistentialPredicate, bool) {
	if t == nil || t.Kind != TyDynamic {
		return ExistentialPredicate{}, false
	}
	for _, p := range t.Preds {
		if p.Kind == PredTrait {
			return p, true
		}
	}
	return ExistentialPredicate{}, false
}

// IsStrRef reports whether t is &str (shared).
func (t *Ty) IsStrRef() bool {
	return t != nil && t.Kind == TyRef && t.Mutbl == Not && t.Elem != nil && t.Elem.Kind == TyStr
}

// Key returns a canonical structural key. Two types have the same key iff they
// are structurally identical, regions included.
func (t *Ty) Key() string {
	var b strings.Builder
	writeTyKey(&b, t)
	return b.String()
}

func (t *Ty) String() string { return t.Key() }

func writeTyKey(b *strings.Builder, t *Ty) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	switch t.Kind {
	case TyBool:
		b.WriteString("bool")
	case TyChar:
		b.WriteString("char")
	case TyStr:
		b.WriteString("str")
	case TyNever:
		b.WriteString("!")
	case TyError:
		b.WriteString("{error}")
	case TyInt:
		b.WriteString(strings.ToLower(t.Int.String()))
	case TyUint:
		b.WriteString(strings.ToLower(t.Uint.String()))
	case TyFloat:
		b.WriteString(strings.ToLower(t.Float.String()))
	case TyTuple:
		b.WriteByte('(')
		writeTyList(b, t.Elems)
		b.WriteByte(')')
	case TySlice:
		b.WriteByte('[')
		writeTyKey(b, t.Elem)
		b.WriteByte(']')
	case TyArray:
		b.WriteByte('[')
		writeTyKey(b, t.Elem)
		b.WriteString("; ")
		b.WriteString(t.Len.Key())
		b.WriteByte(']')
	case TyRef:
		b.WriteByte('&')
		if t.Region != ErasedRegion {
			b.WriteString(string(t.Region))
			b.WriteByte(' ')
		}
		if t.Mutbl == Mut {
			b.WriteString("mut ")
		}
		writeTyKey(b, t.Elem)
	case TyRawPtr:
		if t.Mutbl == Mut {
			b.WriteString("*mut ")
		} else {
			b.WriteString("*const ")
		}
		writeTyKey(b, t.Elem)
	case TyAdt:
		b.WriteString("adt#")
		b.WriteString(strconv.FormatUint(uint64(t.Def), 10))
		writeSubstsKey(b, t.Substs)
	case TyFnDef:
		b.WriteString("fndef#")
		b.WriteString(strconv.FormatUint(uint64(t.Def), 10))
		writeSubstsKey(b, t.Substs)
	case TyFnPtr:
		writeSigKey(b, t.Sig)
	case TyClosure:
		b.WriteString("closure#")
		b.WriteString(strconv.FormatUint(uint64(t.Def), 10))
		writeSubstsKey(b, t.Substs)
		b.WriteByte('{')
		writeTyList(b, t.Elems)
		b.WriteByte('}')
		b.WriteString(strconv.Itoa(int(t.ClosureKind)))
	case TyDynamic:
		b.WriteString("dyn ")
		for i, p := range t.Preds {
			if i > 0 {
				b.WriteString(" + ")
			}
			p.writeKey(b)
		}
		if t.Region != ErasedRegion {
			b.WriteString(" + ")
			b.WriteString(string(t.Region))
		}
	case TyProjection:
		b.WriteString("proj#")
		b.WriteString(strconv.FormatUint(uint64(t.Def), 10))
		writeSubstsKey(b, t.Substs)
	case TyParam:
		b.WriteByte('^')
		b.WriteString(strconv.FormatUint(uint64(t.Param.Index), 10))
	default:
		b.WriteByte('{')
		b.WriteString(strings.ToLower(t.Kind.String()))
		b.WriteByte('#')
		b.WriteString(strconv.FormatUint(uint64(t.Def), 10))
		b.WriteByte('}')
	}
}

func writeTyList(b *strings.Builder, tys []*Ty) {
	for i, e := range tys {
		if i > 0 {
			b.WriteString(", ")
		}
		writeTyKey(b, e)
	}
}

func writeSigKey(b *strings.Builder, sig *FnSig) {
	if sig == nil {
		b.WriteString("fn(?)")
		return
	}
	if sig.Abi != "" && sig.Abi != "Rust" {
		b.WriteString("extern ")
		b.WriteString(strconv.Quote(sig.Abi))
		b.WriteByte(' ')
	}
	b.WriteString("fn(")
	writeTyList(b, sig.Inputs)
	b.WriteString(") -> ")
	writeTyKey(b, sig.Output)
}
