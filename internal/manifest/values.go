package manifest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"

	"tyjson/internal/host"
	"tyjson/internal/scalar"
)

var errNoValueForm = errors.New("no literal form for this type")

// parseValue turns the literal src into an evaluated value of type ty.
// String references allocate their bytes in prog; &crate::STATIC points at
// the static's allocation.
func parseValue(prog *host.Program, ty *host.Ty, src string) (host.ConstValue, error) {
	src = strings.TrimSpace(src)
	switch ty.Kind {
	case host.TyBool:
		switch src {
		case "true":
			return host.ScalarValue(1, 1), nil
		case "false":
			return host.ScalarValue(1, 0), nil
		}
		return host.ConstValue{}, fmt.Errorf("bad bool %q", src)
	case host.TyChar:
		r, n := utf8.DecodeRuneInString(src)
		if r == utf8.RuneError || n != len(src) {
			return host.ConstValue{}, fmt.Errorf("char literal must be exactly one character, got %q", src)
		}
		return host.ScalarValue(4, uint64(r)), nil
	case host.TyInt:
		return intValue(src, ty.Int.Size())
	case host.TyUint:
		if strings.HasPrefix(src, "-") {
			return host.ConstValue{}, fmt.Errorf("negative value %q for unsigned type", src)
		}
		return intValue(src, ty.Uint.Size())
	case host.TyRawPtr:
		return intValue(src, host.PointerSize)
	case host.TyFloat:
		return floatValue(src, ty.Float)
	case host.TyTuple:
		if len(ty.Elems) == 0 && (src == "" || src == "()") {
			return host.ScalarValue(0, 0), nil
		}
	case host.TyFnDef:
		if src == "" {
			return host.ScalarValue(0, 0), nil
		}
	case host.TyRef:
		if ty.IsStrRef() {
			s, err := strconv.Unquote(src)
			if err != nil {
				s = src
			}
			end, err := safecast.Conv[uint64](len(s))
			if err != nil {
				return host.ConstValue{}, err
			}
			return host.SliceValue(prog.AddMemory([]byte(s)), 0, end), nil
		}
		if rest, ok := strings.CutPrefix(src, "&"); ok {
			def, ok := prog.Lookup(rest)
			if !ok {
				return host.ConstValue{}, fmt.Errorf("unknown static %s", rest)
			}
			st, ok := prog.Static(def)
			if !ok {
				return host.ConstValue{}, fmt.Errorf("%s is not a static", rest)
			}
			return host.PtrValue(st.Alloc, 0), nil
		}
	}
	return host.ConstValue{}, fmt.Errorf("%w: %s", errNoValueForm, ty)
}

func intValue(src string, size int) (host.ConstValue, error) {
	bits, err := scalar.ParseIntLiteral(src, size)
	if err != nil {
		return host.ConstValue{}, err
	}
	sz, err := safecast.Conv[uint8](size)
	if err != nil {
		return host.ConstValue{}, err
	}
	return host.WideScalarValue(sz, bits), nil
}

func floatValue(src string, w host.FloatTy) (host.ConstValue, error) {
	bitSize := 64
	if w == host.F32 {
		bitSize = 32
	}
	var f float64
	switch src {
	case "inf":
		f = math.Inf(1)
	case "-inf":
		f = math.Inf(-1)
	case "nan":
		f = math.NaN()
	default:
		var err error
		f, err = strconv.ParseFloat(src, bitSize)
		if err != nil {
			return host.ConstValue{}, err
		}
	}
	if bitSize == 32 {
		return host.ScalarValue(4, uint64(math.Float32bits(float32(f)))), nil
	}
	return host.ScalarValue(8, math.Float64bits(f)), nil
}
