package lower_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"tyjson/internal/host"
	"tyjson/internal/testkit"
)

// buildTy turns a list of shape codes into a nested type, innermost first.
func buildTy(codes []int, region host.Region) *host.Ty {
	t := host.IntOf(host.I32)
	for _, c := range codes {
		switch c % 6 {
		case 0:
			t = host.RefTo(region, t, host.Not)
		case 1:
			t = host.PtrTo(t, host.Mut)
		case 2:
			t = host.SliceOf(t)
		case 3:
			t = host.TupleOf(t, host.BoolTy())
		case 4:
			t = host.ArrayOf(t, uint64(c))
		default:
			t = host.TupleOf(host.UintOf(host.U8), t)
		}
	}
	return t
}

func TestInternProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("interning twice gives the same id and no new entries", prop.ForAll(
		func(codes []int) bool {
			s, _ := newSession(testkit.NewCore())
			first := s.Ty(buildTy(codes, "a"))
			n := s.Types().Len()
			second := s.Ty(buildTy(codes, "b"))
			return first == second && s.Types().Len() == n
		},
		gen.SliceOfN(8, gen.IntRange(0, 40)),
	))

	properties.Property("every entry is filled once interning returns", prop.ForAll(
		func(codes []int) bool {
			s, _ := newSession(testkit.NewCore())
			s.Ty(buildTy(codes, ""))
			for i, e := range s.Types().Entries() {
				if e.Ty == nil || int(e.Name) != i {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 40)),
	))

	properties.TestingRun(t)
}
