package naming

import (
	"regexp"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tyjson/internal/host"
)

type fixture struct {
	prog  *host.Program
	m     *Mangler
	main  host.DefID
	id    host.DefID
	pair  host.DefID
	show  host.DefID
	inner host.DefID
}

func newFixture() *fixture {
	p := host.NewProgram()
	app := p.AddCrate("app", "0123456789abcdef")
	f := &fixture{prog: p, m: NewMangler(p)}
	f.main = p.DefineFn(app, host.NoDefID, "main", 0, nil).Def
	f.id = p.DefineFn(app, host.NoDefID, "id", 1, nil).Def
	f.pair = p.DefineAdt(app, host.NoDefID, "Pair", host.AdtStruct, 2).Def
	f.show = p.DefineTrait(app, host.NoDefID, "Show", 0).Def
	m := p.AddDef(app, host.NoDefID, host.DefFn, "outer")
	p.AddDef(app, m, host.DefFn, "inner")
	f.inner = p.AddDef(app, m, host.DefFn, "inner")
	return f
}

var hashedName = regexp.MustCompile(`^app/01234567::[a-z]+\[0\]::_[a-z]+(?:[0-9]+_)?[0-9a-f]{16}\[0\]$`)

func TestDefName(t *testing.T) {
	f := newFixture()
	tests := []struct {
		name     string
		def      host.DefID
		expected StableName
	}{
		{"top level fn", f.main, "app/01234567::main[0]"},
		{"adt", f.pair, "app/01234567::Pair[0]"},
		{"second sibling", f.inner, "app/01234567::outer[0]::inner[1]"},
		{"unknown", host.DefID(999), "unknown/00000000::def999[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.m.DefName(tt.def))
		})
	}
}

func TestInstanceNameTags(t *testing.T) {
	f := newFixture()
	i32 := host.TypeArgs(host.IntOf(host.I32))
	tests := []struct {
		name string
		inst host.Instance
		tag  string
	}{
		{"generic item", host.Instance{Kind: host.InstItem, Def: f.id, Substs: i32}, "_inst"},
		{"intrinsic", host.Instance{Kind: host.InstIntrinsic, Def: f.id, Substs: i32}, "_inst"},
		{"vtable shim", host.Instance{Kind: host.InstVtableShim, Def: f.id, Substs: i32}, "_vtshim"},
		{"reify shim", host.Instance{Kind: host.InstReifyShim, Def: f.id, Substs: i32}, "_reify"},
		{"virtual", host.Instance{Kind: host.InstVirtual, Def: f.id, Substs: i32, Slot: 3}, "_virt3_"},
		{"drop glue", host.Instance{Kind: host.InstDropGlue, Def: f.id, Substs: i32}, "_drop"},
		{"fn ptr shim", host.Instance{Kind: host.InstFnPtrShim, Def: f.id, Substs: i32}, "_callonce"},
		{"closure once shim", host.Instance{Kind: host.InstClosureOnceShim, Def: f.id, Substs: i32}, "_callonce"},
		{"clone shim", host.Instance{Kind: host.InstCloneShim, Def: f.id, Substs: i32}, "_shim"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(f.m.InstanceName(tt.inst))
			require.Regexp(t, hashedName, got)
			assert.Contains(t, got, "::"+tt.tag)
		})
	}
}

func TestZeroSubstsReuseDefName(t *testing.T) {
	f := newFixture()
	got := f.m.InstanceName(host.Instance{Kind: host.InstItem, Def: f.main})
	assert.Equal(t, f.m.DefName(f.main), got)

	shim := f.m.InstanceName(host.Instance{Kind: host.InstReifyShim, Def: f.main})
	assert.NotEqual(t, got, shim, "shims are always hashed")
}

func TestRegionsDoNotAffectNames(t *testing.T) {
	f := newFixture()
	a := host.AdtInstance{Def: f.pair, Substs: host.TypeArgs(host.RefTo("a", host.StrTy(), host.Not), host.BoolTy())}
	b := host.AdtInstance{Def: f.pair, Substs: host.TypeArgs(host.RefTo("static", host.StrTy(), host.Not), host.BoolTy())}
	assert.Equal(t, f.m.AdtName(a), f.m.AdtName(b))
}

func TestTraitNames(t *testing.T) {
	f := newFixture()
	assert.Equal(t, EmptyTrait, f.m.TraitName(host.DynOf("", host.ExistentialPredicate{Kind: host.PredAutoTrait, Def: f.show})))

	dyn := host.DynOf("a", host.ExistentialPredicate{Kind: host.PredTrait, Def: f.show})
	name := string(f.m.TraitName(dyn))
	assert.Regexp(t, `^app/01234567::Show\[0\]::_trait[0-9a-f]{16}\[0\]$`, name)
	assert.Equal(t, name, string(f.m.TraitName(dyn.EraseRegions())))
}

func TestPromotedName(t *testing.T) {
	assert.Equal(t, StableName("app/01234567::K[0]::{{promoted}}[2]"), PromotedName("app/01234567::K[0]", 2))
}

func TestNameProperties(t *testing.T) {
	f := newFixture()
	widths := []*host.Ty{
		host.IntOf(host.I8), host.IntOf(host.I64), host.UintOf(host.U8), host.UintOf(host.Usize),
		host.BoolTy(), host.CharTy(), host.FloatOf(host.F64), host.StrTy(),
	}
	build := func(picks []uint8, arrayLen uint64) host.Substs {
		tys := make([]*host.Ty, 0, len(picks)+1)
		for _, p := range picks {
			tys = append(tys, widths[int(p)%len(widths)])
		}
		tys = append(tys, host.ArrayOf(host.UintOf(host.U8), arrayLen))
		return host.TypeArgs(host.TupleOf(tys...))
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("equal substitutions give equal names", prop.ForAll(
		func(picks []uint8, n uint64) bool {
			a := f.m.InstanceName(host.Instance{Kind: host.InstItem, Def: f.id, Substs: build(picks, n)})
			b := f.m.InstanceName(host.Instance{Kind: host.InstItem, Def: f.id, Substs: build(picks, n)})
			return a == b
		},
		gen.SliceOf(gen.UInt8()),
		gen.UInt64(),
	))

	properties.Property("different array lengths give different names", prop.ForAll(
		func(picks []uint8, n uint64) bool {
			a := f.m.InstanceName(host.Instance{Kind: host.InstItem, Def: f.id, Substs: build(picks, n)})
			b := f.m.InstanceName(host.Instance{Kind: host.InstItem, Def: f.id, Substs: build(picks, n+1)})
			return a != b
		},
		gen.SliceOf(gen.UInt8()),
		gen.UInt64Range(0, 1<<62),
	))

	properties.Property("names have the documented shape", prop.ForAll(
		func(picks []uint8) bool {
			return hashedName.MatchString(string(f.m.InstanceName(host.Instance{Kind: host.InstItem, Def: f.id, Substs: build(picks, 0)})))
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
