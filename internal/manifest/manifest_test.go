package manifest_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tyjson/internal/diag"
	"tyjson/internal/host"
	"tyjson/internal/manifest"
)

const header = `
version = 1
roots = ["app::main"]

[[crate]]
name = "app"
disambiguator = "0123456789abcdef"
`

func parse(t *testing.T, src string) (*manifest.Unit, *diag.Bag, error) {
	t.Helper()
	bag := diag.NewBag(50)
	u, err := manifest.Parse("unit.toml", []byte(src), diag.BagReporter{Bag: bag})
	return u, bag, err
}

func mustParse(t *testing.T, src string) *manifest.Unit {
	t.Helper()
	u, bag, err := parse(t, src)
	require.NoError(t, err)
	require.False(t, bag.HasErrors())
	return u
}

func lookup(t *testing.T, u *manifest.Unit, path string) host.DefID {
	t.Helper()
	def, ok := u.Program.Lookup(path)
	require.True(t, ok, "missing %s", path)
	return def
}

func TestLoadShapes(t *testing.T) {
	bag := diag.NewBag(50)
	u, err := manifest.Load(filepath.Join("testdata", "shapes.toml"), diag.BagReporter{Bag: bag})
	require.NoError(t, err)
	assert.Zero(t, bag.Len())
	assert.Equal(t, "shapes", u.Name)
	require.Len(t, u.Roots, 1)
	assert.Equal(t, lookup(t, u, "app::main"), u.Roots[0])

	color, ok := u.Program.Adt(lookup(t, u, "app::Color"))
	require.True(t, ok)
	require.Len(t, color.Variants, 3)
	assert.Equal(t, host.Discr{Index: 0}, color.Variants[0].Discr)
	assert.True(t, color.Variants[1].Discr.Explicit)
	assert.Equal(t, lookup(t, u, "app::GREEN"), color.Variants[1].Discr.Def)
	assert.Equal(t, host.Discr{Index: 1}, color.Variants[2].Discr)
	assert.Equal(t, host.CtorConst, color.Variants[0].Ctor)

	circle, _ := u.Program.Adt(lookup(t, u, "app::Circle"))
	require.Len(t, circle.Variants, 1)
	assert.Equal(t, host.CtorFictive, circle.Variants[0].Ctor)

	area, ok := u.Program.Fn(lookup(t, u, "app::{{impl}}::area"))
	require.True(t, ok)
	circleTy := host.AdtOf(circle.Def, nil)
	assert.Equal(t, host.RefTo("", circleTy, host.Not).Key(), area.Sig.Inputs[0].Key(),
		"impl methods see Self as the impl's self type")

	clo := lookup(t, u, "app::main::{{closure}}")
	assert.Equal(t, host.DefClosure, u.Program.DefKind(clo))

	dip, ok := u.Program.Lang(host.LangDropInPlace)
	require.True(t, ok)
	assert.Equal(t, lookup(t, u, "core::drop_in_place"), dip)

	main, _ := u.Program.Fn(u.Roots[0])
	assert.Len(t, main.Body.Uses, 11)

	limit, err := u.Program.EvalConst(lookup(t, u, "app::LIMIT"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(16), limit.Size)
	_, err = u.Program.EvalConst(lookup(t, u, "app::BROKEN"), nil, nil)
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	u, err := manifest.Load(filepath.Join("testdata", "small.yaml"), nil)
	require.NoError(t, err)
	first, ok := u.Program.Fn(lookup(t, u, "app::first"))
	require.True(t, ok)
	require.Len(t, first.Sig.Inputs, 1)
	pair := lookup(t, u, "app::Pair")
	want := host.AdtOf(pair, host.TypeArgs(host.ParamOf(0, "A"), host.ParamOf(1, "B")))
	assert.Equal(t, want.Key(), first.Sig.Inputs[0].Key())
	assert.Equal(t, host.TyParam, first.Sig.Output.Kind)
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]manifest.Format{
		"a.toml": manifest.FormatTOML,
		"b.YAML": manifest.FormatYAML,
		"c.yml":  manifest.FormatYAML,
	} {
		got, err := manifest.FormatOf(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := manifest.FormatOf("d.json")
	assert.Error(t, err)
}

func TestUnknownTOMLKeysWarn(t *testing.T) {
	u, bag, err := parse(t, header+`
colour = "blue"

[[fn]]
path = "app::main"
inline = true
`)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, 2, bag.Len())
	for _, d := range bag.Items() {
		assert.Equal(t, diag.ManUnknownKey, d.Code)
		assert.Equal(t, diag.SevWarning, d.Severity)
	}
}

func TestUnknownYAMLKeysFail(t *testing.T) {
	_, err := manifest.Parse("unit.yaml", []byte("version: 1\nroots: [\"app::main\"]\ncolour: blue\n"), nil)
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestVersion(t *testing.T) {
	_, bag, err := parse(t, strings.Replace(header, "version = 1", "version = 2", 1))
	assert.ErrorContains(t, err, "unsupported manifest version 2")
	assert.True(t, bag.HasErrors())

	_, _, err = parse(t, strings.Replace(header, "version = 1", "", 1))
	assert.ErrorContains(t, err, "missing version")
}

func TestItemErrors(t *testing.T) {
	cases := map[string]struct {
		src  string
		code diag.Code
	}{
		"unknown crate": {`[[fn]]
path = "std::main"`, diag.ManUnknownItem},
		"duplicate": {`[[fn]]
path = "app::main"
[[fn]]
path = "app::main"`, diag.ManDuplicateItem},
		"unknown callee": {`[[fn]]
path = "app::main"
uses = [{ kind = "call", callee = "app::nope" }]`, diag.ManUnknownItem},
		"bad type": {`[[fn]]
path = "app::main"
inputs = ["&&"]`, diag.ManBadType},
		"bad value": {`[[const]]
path = "app::X"
ty = "u8"
value = "256"
[[fn]]
path = "app::main"`, diag.ManBadValue},
		"bad use": {`[[fn]]
path = "app::main"
uses = [{ kind = "jump" }]`, diag.ManBadValue},
		"unknown root": {``, diag.ManUnknownItem},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, bag, err := parse(t, header+tc.src)
			var ie *manifest.ItemError
			require.True(t, errors.As(err, &ie), "got %v", err)
			assert.Equal(t, tc.code, ie.Code)
			assert.Equal(t, "unit.toml", ie.Path)
			assert.True(t, bag.HasErrors())
		})
	}
}

func TestMissingRoots(t *testing.T) {
	_, _, err := parse(t, strings.Replace(header, `roots = ["app::main"]`, "", 1)+`
[[fn]]
path = "app::main"`)
	var ie *manifest.ItemError
	require.True(t, errors.As(err, &ie), "got %v", err)
	assert.Equal(t, diag.ManMissingRoot, ie.Code)
}
