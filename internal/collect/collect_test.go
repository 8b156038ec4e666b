package collect_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tyjson/internal/collect"
	"tyjson/internal/diag"
	"tyjson/internal/host"
	"tyjson/internal/ir"
	"tyjson/internal/lower"
	"tyjson/internal/testkit"
	"tyjson/internal/trace"
)

func run(t *testing.T, c *testkit.Core, roots ...host.DefID) (*ir.Document, *lower.Session, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(100)
	sess := lower.NewSession(c.P, lower.Options{Reporter: diag.BagReporter{Bag: bag}})
	doc, err := collect.Collect(context.Background(), sess, roots)
	require.NoError(t, err)
	require.NoError(t, testkit.CheckDocumentInvariants(doc))
	require.Equal(t, sess.Used().Instances.Len(), len(doc.Intrinsics), "drain stopped before the fixed point")
	return doc, sess, bag
}

func fnNames(doc *ir.Document) []string {
	out := make([]string, 0, len(doc.Fns))
	for _, fn := range doc.Fns {
		out = append(out, fn.Name)
	}
	return out
}

func findFn(doc *ir.Document, prefix string) (ir.Fn, bool) {
	for _, fn := range doc.Fns {
		if strings.HasPrefix(fn.Name, prefix) {
			return fn, true
		}
	}
	return ir.Fn{}, false
}

func TestCallsAreFollowed(t *testing.T) {
	c := testkit.NewCore()
	generic := c.Fn("generic", 1, host.ParamOf(0, "T"))
	generic.Body.Uses = []host.Use{{Kind: host.UseType, Ty: host.ParamOf(0, "T")}}
	main := c.Fn("main", 0)
	main.Body.Uses = []host.Use{{Kind: host.UseCall, Def: generic.Def, Substs: host.TypeArgs(host.IntOf(host.I32))}}

	doc, sess, bag := run(t, c, main.Def)

	assert.Equal(t, []string{"app/01234567::main[0]"}, doc.Roots)
	require.Len(t, doc.Fns, 2)
	inst, ok := findFn(doc, "app/01234567::generic[0]::_inst")
	require.True(t, ok, "generic instance not lowered: %v", fnNames(doc))

	i32 := sess.Ty(host.IntOf(host.I32))
	assert.Equal(t, []ir.TypeID{i32}, inst.Inputs)
	require.Len(t, inst.Body, 1)
	assert.Equal(t, ir.TypeUse{Ty: i32}, inst.Body[0])

	call, ok := doc.Fns[0].Body[0].(ir.CallUse)
	require.True(t, ok)
	assert.Equal(t, inst.Name, call.Callee)
	assert.Zero(t, bag.Len())
}

func TestRootsAreDeduplicated(t *testing.T) {
	c := testkit.NewCore()
	main := c.Fn("main", 0)
	main.Body.Uses = []host.Use{{Kind: host.UseCall, Def: main.Def}}

	doc, _, _ := run(t, c, main.Def, main.Def)
	assert.Len(t, doc.Roots, 2)
	assert.Len(t, doc.Fns, 1)
	assert.Len(t, doc.Intrinsics, 1)
}

func shape(c *testkit.Core) (*host.TraitDef, *host.Ty, *host.Ty) {
	tr := c.P.DefineTrait(c.App, host.NoDefID, "Shape", 0)
	self := host.RefTo("", host.ParamOf(0, "Self"), host.Not)
	sig := &host.FnSig{Inputs: []*host.Ty{self}, Output: host.FloatOf(host.F64), Abi: "Rust"}
	sized := c.P.AddTraitMethod(tr, "new", host.TraitMethod{RequiresSized: true, Sig: sig})
	area := c.P.AddTraitMethod(tr, "area", host.TraitMethod{Sig: sig})

	circle := c.Struct("Circle", 0, host.FloatOf(host.F64))
	circleTy := host.AdtOf(circle.Def, nil)
	im := c.P.DefineImpl(c.App, host.NoDefID, tr.Def, 0, circleTy, nil)
	c.P.AddImplMethod(im, sized.Def, 0)
	c.P.AddImplMethod(im, area.Def, 0)

	dyn := host.DynOf("", host.ExistentialPredicate{Kind: host.PredTrait, Def: tr.Def})
	return tr, circleTy, dyn
}

func TestUnsizeReachesVtableMethods(t *testing.T) {
	c := testkit.NewCore()
	_, circle, dyn := shape(c)
	main := c.Fn("main", 0)
	unsize := host.Use{Kind: host.UseUnsize, Ty: circle, Target: dyn}
	main.Body.Uses = []host.Use{unsize, unsize}

	doc, _, _ := run(t, c, main.Def)

	require.Len(t, doc.Vtables, 1, "the same coercion must share one vtable")
	vt := doc.Vtables[0]
	require.Len(t, vt.Items, 1)
	assert.Equal(t, "app/01234567::{{impl}}[0]::area[0]", vt.Items[0].DefID)

	names := fnNames(doc)
	assert.Contains(t, names, "app/01234567::{{impl}}[0]::area[0]")
	assert.NotContains(t, names, "app/01234567::{{impl}}[0]::new[0]")

	require.Len(t, doc.Traits, 1)
	assert.Equal(t, vt.TraitID, doc.Traits[0].Name)
	require.Len(t, doc.Adts, 1)
	assert.Equal(t, "app/01234567::Circle[0]", doc.Adts[0].OrigDefID)

	u, ok := doc.Fns[0].Body[0].(ir.UnsizeUse)
	require.True(t, ok)
	assert.Equal(t, vt.Name, u.Vtable)
}

func TestDropGlueReachesDropImpls(t *testing.T) {
	c := testkit.NewCore()
	guard := c.Struct("Guard", 0)
	guardTy := host.AdtOf(guard.Def, nil)
	im := c.P.DefineImpl(c.App, host.NoDefID, c.Drop.Def, 0, guardTy, nil)
	c.P.AddImplMethod(im, c.DropFn.Def, 0)
	pair := c.Struct("Pair", 0, guardTy, host.IntOf(host.I32))
	pairTy := host.AdtOf(pair.Def, nil)

	main := c.Fn("main", 0)
	main.Body.Uses = []host.Use{{Kind: host.UseDrop, Ty: pairTy}, {Kind: host.UseDrop, Ty: host.IntOf(host.I32)}}

	doc, _, _ := run(t, c, main.Def)

	glues, noops := 0, 0
	for _, in := range doc.Intrinsics {
		if g, ok := in.Inst.(ir.DropGlueInst); ok {
			glues++
			if g.Ty == nil {
				noops++
			}
		}
	}
	// Pair, Guard and the no-op glue of i32
	assert.Equal(t, 3, glues)
	assert.Equal(t, 1, noops)
	assert.Contains(t, fnNames(doc), "app/01234567::{{impl}}[0]::drop[0]")

	d, ok := doc.Fns[0].Body[0].(ir.DropUse)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(d.Glue, "core/c0ffee00::drop_in_place[0]"), "glue %q", d.Glue)
}

func TestClosureOnceShimReachesClosure(t *testing.T) {
	c := testkit.NewCore()
	main := c.Fn("main", 0)
	closure := c.P.DefineClosure(c.App, main.Def, 0, &host.FnSig{Output: host.UnitTy(), Abi: "rust-call"})
	closureTy := host.ClosureOf(closure.Def, nil, host.ClosureFn)
	main.Body.Uses = []host.Use{{Kind: host.UseCall, Def: c.CallOnce.Def, Substs: host.TypeArgs(closureTy, host.UnitTy())}}

	doc, _, _ := run(t, c, main.Def)

	var shims int
	for _, in := range doc.Intrinsics {
		if _, ok := in.Inst.(ir.ClosureOnceShimInst); ok {
			shims++
		}
	}
	assert.Equal(t, 1, shims)
	assert.Contains(t, fnNames(doc), "app/01234567::main[0]::{{closure}}[0]")
}

func TestCloneShimReachesComponentClones(t *testing.T) {
	c := testkit.NewCore()
	c.ImplClone(host.IntOf(host.I32), 0)
	tuple := host.TupleOf(host.IntOf(host.I32), host.IntOf(host.I32))
	main := c.Fn("main", 0)
	main.Body.Uses = []host.Use{{Kind: host.UseCall, Def: c.CloneFn.Def, Substs: host.TypeArgs(tuple)}}

	doc, _, _ := run(t, c, main.Def)
	assert.Contains(t, fnNames(doc), "app/01234567::{{impl}}[0]::clone[0]")
	assert.Len(t, doc.Intrinsics, 3)
}

func TestConstUsesAreInstantiated(t *testing.T) {
	c := testkit.NewCore()
	limit := c.P.DefineConst(c.App, host.NoDefID, "LIMIT", host.UintOf(host.U32), nil)
	v := host.ScalarValue(4, 7)
	limit.Value = &v
	main := c.Fn("main", 0)
	main.Body.Uses = []host.Use{{Kind: host.UseConst, Const: host.UnevaluatedConst(host.UintOf(host.U32), limit.Def, nil, nil)}}

	doc, _, bag := run(t, c, main.Def)
	cu, ok := doc.Fns[0].Body[0].(ir.ConstUse)
	require.True(t, ok)
	assert.NotNil(t, cu.Const.Rendered)
	assert.Zero(t, bag.Len())
}

func TestRoundsAreTraced(t *testing.T) {
	c := testkit.NewCore()
	leaf := c.Fn("leaf", 0)
	main := c.Fn("main", 0)
	main.Body.Uses = []host.Use{{Kind: host.UseCall, Def: leaf.Def}}

	ring := trace.NewRingTracer(64, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)
	_, err := collect.Collect(ctx, lower.NewSession(c.P, lower.Options{}), []host.DefID{main.Def})
	require.NoError(t, err)

	rounds := 0
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanEnd && ev.Scope == trace.ScopePass {
			rounds++
		}
	}
	assert.Equal(t, 2, rounds)
}

func TestCancelledContextStops(t *testing.T) {
	c := testkit.NewCore()
	main := c.Fn("main", 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, err := collect.Collect(ctx, lower.NewSession(c.P, lower.Options{}), []host.DefID{main.Def})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, doc)
}

func TestFatalErrorAbortsUnit(t *testing.T) {
	c := testkit.NewCore()
	main := c.Fn("main", 0)
	main.Body.Uses = []host.Use{{Kind: host.UseUnsize, Ty: host.IntOf(host.I32), Target: host.IntOf(host.I64)}}

	doc, err := collect.Collect(context.Background(), lower.NewSession(c.P, lower.Options{}), []host.DefID{main.Def})
	var fatal *lower.FatalError
	require.True(t, errors.As(err, &fatal), "got %v", err)
	assert.Equal(t, lower.FatalPrecondition, fatal.Kind)
	assert.Nil(t, doc)
}
