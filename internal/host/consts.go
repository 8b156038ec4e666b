package host

import (
	"strconv"

	"tyjson/internal/scalar"
)

// ConstKind classifies constants.
type ConstKind uint8

const (
	// ConstEvaluated carries its value inline.
	ConstEvaluated ConstKind = iota
	// ConstUnevaluated must be evaluated through the constant evaluator.
	ConstUnevaluated
	// ConstParam is a const generic parameter.
	ConstParam
)

// Const is a typed compile-time constant.
type Const struct {
	Ty    *Ty
	Kind  ConstKind
	Value ConstValue

	// Def, Substs and Promoted identify an unevaluated constant.
	Def      DefID
	Substs   Substs
	Promoted *uint32

	Param ParamTy
}

// ValueKind classifies evaluated values.
type ValueKind uint8

const (
	ValScalar ValueKind = iota
	ValPtr
	ValSlice
	// ValByRef is an aggregate stored in memory; it has no leaf rendering.
	ValByRef
)

// AllocID identifies a global allocation.
type AllocID uint32

// ConstValue is the result of constant evaluation.
type ConstValue struct {
	Kind ValueKind

	// Size in bytes and raw bits of a ValScalar.
	Size uint8
	Bits scalar.Uint

	// Alloc is the target of ValPtr, the backing memory of ValSlice and ValByRef.
	Alloc  AllocID
	Offset uint64
	// Start and End bound a ValSlice.
	Start, End uint64
}

// ScalarValue builds a scalar value from a uint64 bit pattern.
func ScalarValue(size uint8, bits uint64) ConstValue {
	return ConstValue{Kind: ValScalar, Size: size, Bits: scalar.UintFromUint64(bits)}
}

// WideScalarValue builds a scalar value from an arbitrary-width pattern.
func WideScalarValue(size uint8, bits scalar.Uint) ConstValue {
	return ConstValue{Kind: ValScalar, Size: size, Bits: bits}
}

// PtrValue points at offset inside a global allocation.
func PtrValue(alloc AllocID, offset uint64) ConstValue {
	return ConstValue{Kind: ValPtr, Alloc: alloc, Offset: offset}
}

// SliceValue is a fat reference to bytes [start, end) of an allocation.
func SliceValue(alloc AllocID, start, end uint64) ConstValue {
	return ConstValue{Kind: ValSlice, Alloc: alloc, Start: start, End: end}
}

// UsizeConst is an evaluated usize constant.
func UsizeConst(n uint64) *Const {
	return &Const{Ty: UintOf(Usize), Kind: ConstEvaluated, Value: ScalarValue(PointerSize, n)}
}

// ValueConst is an evaluated constant of type ty.
func ValueConst(ty *Ty, v ConstValue) *Const {
	return &Const{Ty: ty, Kind: ConstEvaluated, Value: v}
}

// UnevaluatedConst names a constant item, or one of its promoted parts.
func UnevaluatedConst(ty *Ty, def DefID, substs Substs, promoted *uint32) *Const {
	return &Const{Ty: ty, Kind: ConstUnevaluated, Def: def, Substs: substs, Promoted: promoted}
}

// Key returns a canonical structural key.
func (c *Const) Key() string {
	if c == nil {
		return "?"
	}
	switch c.Kind {
	case ConstParam:
		return "^" + strconv.FormatUint(uint64(c.Param.Index), 10)
	case ConstUnevaluated:
		k := "const#" + strconv.FormatUint(uint64(c.Def), 10) + c.Substs.Key()
		if c.Promoted != nil {
			k += "#" + strconv.FormatUint(uint64(*c.Promoted), 10)
		}
		return k
	}
	v := c.Value
	switch v.Kind {
	case ValScalar:
		return v.Bits.String()
	case ValPtr:
		return "alloc" + strconv.FormatUint(uint64(v.Alloc), 10) + "+" + strconv.FormatUint(v.Offset, 10)
	case ValSlice:
		return "alloc" + strconv.FormatUint(uint64(v.Alloc), 10) + "[" +
			strconv.FormatUint(v.Start, 10) + ".." + strconv.FormatUint(v.End, 10) + "]"
	default:
		return "alloc" + strconv.FormatUint(uint64(v.Alloc), 10)
	}
}

// Subst replaces a const parameter with its argument and substitutes inside
// the type and unevaluated substitutions.
func (c *Const) Subst(args Substs) *Const {
	if c == nil || len(args) == 0 {
		return c
	}
	if c.Kind == ConstParam {
		i := int(c.Param.Index)
		if i < len(args) && args[i].Kind == ArgConst && args[i].Const != nil {
			return args[i].Const
		}
		return c
	}
	if !c.HasParams() {
		return c
	}
	cp := *c
	cp.Ty = c.Ty.Subst(args)
	cp.Substs = c.Substs.Subst(args)
	return &cp
}

// HasParams reports whether the constant depends on generic parameters.
func (c *Const) HasParams() bool {
	if c == nil {
		return false
	}
	return c.Kind == ConstParam || c.Ty.HasParams() || c.Substs.HasParams()
}

// AllocKind classifies global allocations.
type AllocKind uint8

const (
	AllocMemory AllocKind = iota
	AllocStatic
	AllocFunction
)

// Relocation marks a pointer stored at Offset inside an allocation.
type Relocation struct {
	Offset uint64
	Target AllocID
}

// Allocation is raw constant memory.
type Allocation struct {
	Bytes       []byte
	Relocations []Relocation
}

// HasRelocationsIn reports whether any pointer overlaps [start, end). An empty
// range overlaps nothing.
func (a *Allocation) HasRelocationsIn(start, end uint64) bool {
	if a == nil || start >= end {
		return false
	}
	for _, r := range a.Relocations {
		if r.Offset < end && r.Offset+PointerSize > start {
			return true
		}
	}
	return false
}

// GlobalAlloc is an entry of the global allocation table.
type GlobalAlloc struct {
	Kind   AllocKind
	Memory *Allocation
	Static DefID
	Fn     Instance
}
