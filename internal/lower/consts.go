package lower

import (
	"fmt"
	"math"
	"strconv"

	"tyjson/internal/diag"
	"tyjson/internal/host"
	"tyjson/internal/ir"
	"tyjson/internal/scalar"
)

// Const lowers a constant. Unevaluated constants name their source in
// Initializer and are evaluated through the oracle; evaluation failures leave
// Rendered empty and are reported.
func (s *Session) Const(c *host.Const) ir.Const {
	if c == nil {
		return ir.Const{Ty: s.Ty(host.ErrorTy())}
	}
	out := ir.Const{Ty: s.Ty(c.Ty)}
	switch c.Kind {
	case host.ConstEvaluated:
		out.Rendered = s.Render(c.Ty, c.Value)
	case host.ConstUnevaluated:
		substs := s.oracles.NormalizeSubsts(c.Substs)
		out.Initializer = &ir.Initializer{
			DefID:  string(s.PromotedName(c.Def, substs, c.Promoted)),
			Substs: ir.NoSubsts,
		}
		v, err := s.oracles.EvalConst(c.Def, substs, c.Promoted)
		if err != nil {
			diag.ReportWarning(s.reporter, diag.LowerConstEval, out.Initializer.DefID, err.Error()).Emit()
			return out
		}
		out.Rendered = s.Render(c.Ty, v)
	case host.ConstParam:
		// a generic parameter has no value yet
	}
	return out
}

// Render produces the leaf form of an evaluated value of type ty, or nil when
// the value has none.
func (s *Session) Render(ty *host.Ty, v host.ConstValue) ir.Literal {
	ty = s.oracles.NormalizeErasingRegions(ty)
	if ty == nil {
		return nil
	}
	switch v.Kind {
	case host.ValScalar:
		return s.renderScalar(ty, v)
	case host.ValPtr:
		ga, ok := s.oracles.GlobalAlloc(v.Alloc)
		if !ok || ga.Kind != host.AllocStatic {
			return nil
		}
		return ir.StaticRefLit{DefID: string(s.names.DefName(ga.Static))}
	case host.ValSlice:
		if !ty.IsStrRef() {
			return nil
		}
		return s.renderStr(ty, v)
	default:
		return nil
	}
}

func (s *Session) renderScalar(ty *host.Ty, v host.ConstValue) ir.Literal {
	val := v.Bits
	switch ty.Kind {
	case host.TyInt:
		n, err := scalar.SignExtend(val, int(v.Size))
		if err != nil {
			s.unsupportedConst(ty, err.Error())
			return nil
		}
		return ir.IntLit{Isize: ty.Int == host.Isize, Size: v.Size, Val: n.String()}
	case host.TyBool:
		return ir.BitsLit{Kind: ir.BitsBool, Size: v.Size, Val: val.String()}
	case host.TyChar:
		return ir.BitsLit{Kind: ir.BitsChar, Size: v.Size, Val: val.String()}
	case host.TyUint:
		kind := ir.BitsUint
		if ty.Uint == host.Usize {
			kind = ir.BitsUsize
		}
		return ir.BitsLit{Kind: kind, Size: v.Size, Val: val.String()}
	case host.TyFloat:
		return s.renderFloat(ty, v)
	case host.TyRawPtr:
		return ir.RawPtrLit{Val: val.String()}
	case host.TyFnDef:
		return ir.FnDefLit{DefID: string(s.FnDefName(ty.Def, ty.Substs)), Substs: ir.NoSubsts}
	}
	if v.Size == 0 {
		return ir.ZstLit{}
	}
	return nil
}

func (s *Session) renderFloat(ty *host.Ty, v host.ConstValue) ir.Literal {
	bits, ok := v.Bits.Uint64()
	if !ok {
		s.unsupportedConst(ty, "float bit pattern wider than 64 bits")
		return nil
	}
	var f float64
	prec := 64
	switch ty.Float {
	case host.F32:
		if bits > math.MaxUint32 {
			s.unsupportedConst(ty, "f32 bit pattern wider than 32 bits")
			return nil
		}
		f = float64(math.Float32frombits(uint32(bits)))
		prec = 32
	default:
		f = math.Float64frombits(bits)
	}
	return ir.FloatLit{Size: v.Size, Val: formatFloat(f, prec)}
}

func formatFloat(f float64, prec int) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, prec)
}

func (s *Session) renderStr(ty *host.Ty, v host.ConstValue) ir.Literal {
	ga, ok := s.oracles.GlobalAlloc(v.Alloc)
	if !ok || ga.Memory == nil {
		s.unsupportedConst(ty, fmt.Sprintf("string constant points at unknown allocation %d", v.Alloc))
		return nil
	}
	mem := ga.Memory
	if v.Start > v.End || v.End > uint64(len(mem.Bytes)) {
		fatalf(FatalUnsoundRead, "string constant reads [%d, %d) of a %d-byte allocation", v.Start, v.End, len(mem.Bytes))
	}
	if mem.HasRelocationsIn(v.Start, v.End) {
		fatalf(FatalUnsoundRead, "string constant bytes [%d, %d) of allocation %d contain pointers", v.Start, v.End, v.Alloc)
	}
	b := make([]byte, v.End-v.Start)
	copy(b, mem.Bytes[v.Start:v.End])
	return ir.StrLit{Val: b}
}

func (s *Session) unsupportedConst(ty *host.Ty, msg string) {
	diag.ReportWarning(s.reporter, diag.LowerUnsupportedConst, ty.Key(), msg).Emit()
}
