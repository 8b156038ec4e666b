package lower_test

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"tyjson/internal/diag"
	"tyjson/internal/host"
	"tyjson/internal/ir"
	"tyjson/internal/lower"
	"tyjson/internal/scalar"
	"tyjson/internal/testkit"
)

func newSession(c *testkit.Core) (*lower.Session, *diag.Bag) {
	bag := diag.NewBag(100)
	return lower.NewSession(c.P, lower.Options{Reporter: diag.BagReporter{Bag: bag}}), bag
}

func catchFatal(fn func()) (err error) {
	defer lower.Recover(&err)
	fn()
	return nil
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestInternIsIdempotent(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)

	a := s.Ty(host.RefTo("a", host.IntOf(host.I32), host.Not))
	n := s.Types().Len()
	b := s.Ty(host.RefTo("b", host.IntOf(host.I32), host.Not))
	if a != b {
		t.Fatalf("same type after region erasure got ids %d and %d", a, b)
	}
	if s.Types().Len() != n {
		t.Fatalf("re-interning grew the table: %d -> %d", n, s.Types().Len())
	}

	refs := 0
	for _, e := range s.Types().Entries() {
		if _, ok := e.Ty.(ir.RefTy); ok {
			refs++
		}
	}
	if refs != 1 {
		t.Fatalf("expected one Ref entry, got %d", refs)
	}
}

func TestInternReservesBeforeChildren(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)

	ref := s.Ty(host.RefTo("", host.IntOf(host.I32), host.Mut))
	i32 := s.Ty(host.IntOf(host.I32))
	if ref != 0 || i32 != 1 {
		t.Fatalf("want ids 0 (ref) and 1 (i32), got %d and %d", ref, i32)
	}
	node, _ := s.Types().Node(ref)
	if want := (ir.RefTy{Ty: i32, Mutability: "Mut"}); node != want {
		t.Fatalf("ref node = %#v, want %#v", node, want)
	}
}

func TestTupleSharesElements(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)

	id := s.Ty(host.TupleOf(host.IntOf(host.I32), host.IntOf(host.I32)))
	node, _ := s.Types().Node(id)
	tup, ok := node.(ir.TupleTy)
	if !ok || len(tup.Tys) != 2 || tup.Tys[0] != tup.Tys[1] {
		t.Fatalf("unexpected tuple node %#v", node)
	}
	if s.Types().Len() != 2 {
		t.Fatalf("expected 2 interned types, got %d", s.Types().Len())
	}
}

func TestRecursiveAdtThroughPointer(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)

	list := c.P.DefineAdt(c.App, host.NoDefID, "List", host.AdtStruct, 0)
	v := c.P.AddVariant(list, "List", host.Discr{}, host.CtorFictive)
	c.P.AddField(v, "next", host.PtrTo(host.AdtOf(list.Def, nil), host.Not))
	c.P.AddField(v, "val", host.IntOf(host.I32))

	id := s.Ty(host.AdtOf(list.Def, nil))
	if s.Used().Adts.Len() != 1 {
		t.Fatalf("expected the ADT to be recorded once, got %d", s.Used().Adts.Len())
	}
	adt, ok := s.Adt(s.Used().Adts.From(0)[0].Value)
	if !ok {
		t.Fatalf("adt lowering failed")
	}
	ptr, _ := s.Types().Node(adt.Variants[0].Fields[0].Ty)
	if got := ptr.(ir.RawPtrTy).Ty; got != id {
		t.Fatalf("pointer field points at %d, want %d", got, id)
	}
	if s.Used().Adts.Len() != 1 {
		t.Fatalf("lowering the fields recorded the ADT again")
	}
	if adt.Variants[0].CtorKind != "Fictive" || adt.Kind != "Struct" {
		t.Fatalf("unexpected adt shape: %+v", adt)
	}
	if d, ok := adt.Variants[0].Discr.(ir.RelativeDiscr); !ok || d.Index != 0 {
		t.Fatalf("unexpected discriminant %#v", adt.Variants[0].Discr)
	}
}

func TestAdtFieldsAreInstantiated(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)

	wrap := c.Struct("Wrap", 1, host.ParamOf(0, "T"))
	adt, ok := s.Adt(host.AdtInstance{Def: wrap.Def, Substs: host.TypeArgs(host.UintOf(host.U8))})
	if !ok {
		t.Fatalf("adt lowering failed")
	}
	node, _ := s.Types().Node(adt.Variants[0].Fields[0].Ty)
	if node != (ir.UintTy{UintKind: "U8"}) {
		t.Fatalf("field type = %#v, want u8", node)
	}
	if !strings.HasPrefix(adt.Name, "app/01234567::Wrap[0]::_adt") {
		t.Fatalf("unexpected adt name %q", adt.Name)
	}
	if adt.OrigDefID != "app/01234567::Wrap[0]" {
		t.Fatalf("unexpected orig_def_id %q", adt.OrigDefID)
	}
}

func TestMissingAdtIsReported(t *testing.T) {
	c := testkit.NewCore()
	s, bag := newSession(c)
	f := c.Fn("not_an_adt", 0)
	if _, ok := s.Adt(host.AdtInstance{Def: f.Def}); ok {
		t.Fatalf("expected failure for a function def")
	}
	if !hasCode(bag, diag.LowerMissingAdt) {
		t.Fatalf("missing %s diagnostic", diag.LowerMissingAdt.ID())
	}
}

func TestCallAndFnPtrShareOneInstance(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)
	f := c.Fn("helper", 0)

	call := s.ResolveAndRecord(f.Def, nil, host.UsageCall)
	ptr := s.ResolveAndRecord(f.Def, nil, host.UsageFnPtr)
	if call != ptr || call != "app/01234567::helper[0]" {
		t.Fatalf("names differ or are not bare: %q vs %q", call, ptr)
	}
	if n := s.Used().Instances.Len(); n != 1 {
		t.Fatalf("expected 1 reachable instance, got %d", n)
	}
}

func TestGenericInstancesAreDistinct(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)
	g := c.Fn("generic", 1, host.ParamOf(0, "T"))

	a := s.ResolveAndRecord(g.Def, host.TypeArgs(host.IntOf(host.I32)), host.UsageCall)
	b := s.ResolveAndRecord(g.Def, host.TypeArgs(host.UintOf(host.U8)), host.UsageCall)
	again := s.ResolveAndRecord(g.Def, host.TypeArgs(host.IntOf(host.I32)), host.UsageCall)
	if a == b {
		t.Fatalf("different substitutions share name %q", a)
	}
	if a != again {
		t.Fatalf("equal substitutions got %q and %q", a, again)
	}
	if !strings.HasPrefix(string(a), "app/01234567::generic[0]::_inst") {
		t.Fatalf("unexpected instance name %q", a)
	}
	if n := s.Used().Instances.Len(); n != 2 {
		t.Fatalf("expected 2 reachable instances, got %d", n)
	}
}

func TestUnresolvedFallsBackToDefName(t *testing.T) {
	c := testkit.NewCore()
	s, bag := newSession(c)
	g := c.Fn("generic", 1)

	name := s.ResolveAndRecord(g.Def, nil, host.UsageCall)
	if name != "app/01234567::generic[0]" {
		t.Fatalf("fallback name = %q", name)
	}
	if s.Used().Instances.Len() != 0 {
		t.Fatalf("unresolved target was recorded")
	}
	if !hasCode(bag, diag.LowerUnresolvedInstance) {
		t.Fatalf("missing %s diagnostic", diag.LowerUnresolvedInstance.ID())
	}
}

func shapeTrait(c *testkit.Core) (*host.TraitDef, []*host.TraitMethod, *host.Ty) {
	tr := c.P.DefineTrait(c.App, host.NoDefID, "Shape", 0)
	self := host.RefTo("", host.ParamOf(0, "Self"), host.Not)
	sig := &host.FnSig{Inputs: []*host.Ty{self}, Output: host.FloatOf(host.F64), Abi: "Rust"}
	ms := []*host.TraitMethod{
		c.P.AddTraitMethod(tr, "a", host.TraitMethod{RequiresSized: true, Sig: sig}),
		c.P.AddTraitMethod(tr, "b", host.TraitMethod{Sig: sig}),
		c.P.AddTraitMethod(tr, "c", host.TraitMethod{RequiresSized: true, Sig: sig}),
		c.P.AddTraitMethod(tr, "d", host.TraitMethod{Sig: sig}),
	}
	dyn := host.DynOf("", host.ExistentialPredicate{Kind: host.PredTrait, Def: tr.Def})
	return tr, ms, dyn
}

func TestVtableSlotRenumbering(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)
	_, ms, dyn := shapeTrait(c)

	if got := s.NormalizeSlot(dyn, 3); got != 1 {
		t.Fatalf("slot 3 normalized to %d, want 1", got)
	}
	if got := s.NormalizeSlot(dyn, 1); got != 0 {
		t.Fatalf("slot 1 normalized to %d, want 0", got)
	}

	inst, ok := c.P.Resolve(ms[3].Def, host.TypeArgs(dyn), host.UsageCall)
	if !ok || inst.Kind != host.InstVirtual || inst.Slot != 3 {
		t.Fatalf("unexpected resolution %+v (ok=%v)", inst, ok)
	}
	virt, ok := s.Instance(inst).(ir.VirtualInst)
	if !ok {
		t.Fatalf("expected a Virtual instance")
	}
	if virt.Index != 1 || virt.ItemID != "app/01234567::Shape[0]::d[0]" {
		t.Fatalf("unexpected virtual instance %+v", virt)
	}
	if !strings.HasPrefix(virt.TraitID, "app/01234567::Shape[0]::_trait") {
		t.Fatalf("unexpected trait id %q", virt.TraitID)
	}
	if s.Used().Traits.Len() != 1 {
		t.Fatalf("trait instance not recorded")
	}
}

func TestNormalizeSlotPreconditions(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)
	send := c.P.DefineTrait(c.Std, host.NoDefID, "Send", 0)

	for name, ty := range map[string]*host.Ty{
		"not a trait object": host.IntOf(host.I32),
		"no principal":       host.DynOf("", host.ExistentialPredicate{Kind: host.PredAutoTrait, Def: send.Def}),
	} {
		err := catchFatal(func() { s.NormalizeSlot(ty, 0) })
		var fe *lower.FatalError
		if !errors.As(err, &fe) || fe.Kind != lower.FatalPrecondition {
			t.Fatalf("%s: expected precondition violation, got %v", name, err)
		}
	}
}

func TestTraitObjectPredicateOrder(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)
	tr, _, _ := shapeTrait(c)
	area := c.P.AddAssocType(tr, "Area")
	unit := c.P.AddAssocType(tr, "Unit")
	send := c.P.DefineTrait(c.Std, host.NoDefID, "Send", 0)
	sync := c.P.DefineTrait(c.Std, host.NoDefID, "Sync", 0)

	principal := host.ExistentialPredicate{Kind: host.PredTrait, Def: tr.Def}
	pArea := host.ExistentialPredicate{Kind: host.PredProjection, Def: area, Ty: host.FloatOf(host.F64)}
	pUnit := host.ExistentialPredicate{Kind: host.PredProjection, Def: unit, Ty: host.StrTy()}
	aSend := host.ExistentialPredicate{Kind: host.PredAutoTrait, Def: send.Def}
	aSync := host.ExistentialPredicate{Kind: host.PredAutoTrait, Def: sync.Def}

	a := s.Ty(host.DynOf("", principal, pArea, pUnit, aSend, aSync))
	b := s.Ty(host.DynOf("", aSync, pUnit, aSend, principal, pArea))
	if a != b {
		t.Fatalf("predicate order changed the type: %v vs %v", a, b)
	}
	if s.Used().Traits.Len() != 1 {
		t.Fatalf("expected one trait instance, got %d", s.Used().Traits.Len())
	}

	node, _ := s.Types().Node(a)
	dyn, ok := node.(ir.DynamicTy)
	if !ok {
		t.Fatalf("expected a trait object, got %#v", node)
	}
	if len(dyn.Predicates) != 5 {
		t.Fatalf("expected 5 predicates, got %d", len(dyn.Predicates))
	}

	want := c.P.NormalizeErasingRegions(host.DynOf("", principal, pArea, pUnit, aSend, aSync))
	got := c.P.NormalizeErasingRegions(host.DynOf("", aSync, aSend, pUnit, pArea, principal))
	if want.Key() != got.Key() {
		t.Fatalf("keys differ:\n%s\n%s", want.Key(), got.Key())
	}
	for i, k := range []host.PredKind{host.PredTrait, host.PredProjection, host.PredProjection, host.PredAutoTrait, host.PredAutoTrait} {
		if got.Preds[i].Kind != k {
			t.Fatalf("predicate %d is %s, want %s", i, got.Preds[i].Kind, k)
		}
	}
	if got.Preds[1].Def != area || got.Preds[3].Def != send.Def {
		t.Fatalf("predicates not sorted by path: %+v", got.Preds)
	}
}

func TestRecoverReraisesOtherPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("expected the original panic, got %v", r)
		}
	}()
	_ = catchFatal(func() { panic("boom") })
}

func TestRenderScalars(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)
	allOnes := scalar.Uint{Limbs: []uint32{math.MaxUint32, math.MaxUint32, math.MaxUint32, math.MaxUint32}}

	cases := []struct {
		name string
		ty   *host.Ty
		val  host.ConstValue
		want ir.Literal
	}{
		{"i8 -1", host.IntOf(host.I8), host.ScalarValue(1, 0xFF), ir.IntLit{Size: 1, Val: "-1"}},
		{"u8 255", host.UintOf(host.U8), host.ScalarValue(1, 0xFF), ir.BitsLit{Kind: ir.BitsUint, Size: 1, Val: "255"}},
		{"i32 max", host.IntOf(host.I32), host.ScalarValue(4, 0x7fffffff), ir.IntLit{Size: 4, Val: "2147483647"}},
		{"isize -1", host.IntOf(host.Isize), host.ScalarValue(8, math.MaxUint64), ir.IntLit{Isize: true, Size: 8, Val: "-1"}},
		{"i128 -1", host.IntOf(host.I128), host.WideScalarValue(16, allOnes), ir.IntLit{Size: 16, Val: "-1"}},
		{"usize", host.UintOf(host.Usize), host.ScalarValue(8, 42), ir.BitsLit{Kind: ir.BitsUsize, Size: 8, Val: "42"}},
		{"bool", host.BoolTy(), host.ScalarValue(1, 1), ir.BitsLit{Kind: ir.BitsBool, Size: 1, Val: "1"}},
		{"char", host.CharTy(), host.ScalarValue(4, 'A'), ir.BitsLit{Kind: ir.BitsChar, Size: 4, Val: "65"}},
		{"raw ptr", host.PtrTo(host.UintOf(host.U8), host.Not), host.ScalarValue(8, 4096), ir.RawPtrLit{Val: "4096"}},
		{"f32 pi", host.FloatOf(host.F32), host.ScalarValue(4, 0x40490FDB), ir.FloatLit{Size: 4, Val: "3.1415927"}},
		{"f64 half", host.FloatOf(host.F64), host.ScalarValue(8, math.Float64bits(0.5)), ir.FloatLit{Size: 8, Val: "0.5"}},
		{"f64 inf", host.FloatOf(host.F64), host.ScalarValue(8, math.Float64bits(math.Inf(1))), ir.FloatLit{Size: 8, Val: "inf"}},
		{"unit zst", host.UnitTy(), host.ScalarValue(0, 0), ir.ZstLit{}},
	}
	for _, tc := range cases {
		got := s.Render(tc.ty, tc.val)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %#v, want %#v", tc.name, got, tc.want)
		}
	}
}

func TestRenderWithoutLeafForm(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)
	pair := c.Struct("Pair", 0, host.IntOf(host.I32), host.IntOf(host.I32))

	if got := s.Render(host.AdtOf(pair.Def, nil), host.ScalarValue(8, 7)); got != nil {
		t.Fatalf("expected no rendering, got %#v", got)
	}
	mem := c.P.AddMemory(make([]byte, 8))
	if got := s.Render(host.AdtOf(pair.Def, nil), host.ConstValue{Kind: host.ValByRef, Alloc: mem}); got != nil {
		t.Fatalf("expected no rendering for by-ref aggregate, got %#v", got)
	}
}

func TestRenderFnDef(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)
	f := c.Fn("helper", 0)

	got := s.Render(host.FnDefOf(f.Def, nil), host.ScalarValue(0, 0))
	want := ir.FnDefLit{DefID: "app/01234567::helper[0]", Substs: ir.NoSubsts}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	if s.Used().Instances.Len() != 1 {
		t.Fatalf("fndef constant did not record its instance")
	}
}

func TestRenderStrAndStatics(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)
	strRef := host.RefTo("static", host.StrTy(), host.Not)

	mem := c.P.AddMemory([]byte("hello world"))
	got := s.Render(strRef, host.SliceValue(mem, 0, 5))
	if !reflect.DeepEqual(got, ir.StrLit{Val: ir.ByteList("hello")}) {
		t.Fatalf("unexpected str literal %#v", got)
	}

	st := c.P.DefineStatic(c.App, host.NoDefID, "COUNTER", host.IntOf(host.I32), &host.Allocation{Bytes: make([]byte, 4)})
	got = s.Render(host.RefTo("static", host.IntOf(host.I32), host.Not), host.PtrValue(st.Alloc, 0))
	if got != (ir.StaticRefLit{DefID: "app/01234567::COUNTER[0]"}) {
		t.Fatalf("unexpected static ref %#v", got)
	}
}

func TestRenderStrAcrossRelocationIsFatal(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)
	target := c.P.AddMemory([]byte("x"))
	mem := c.P.AddMemory(make([]byte, 16), host.Relocation{Offset: 8, Target: target})

	err := catchFatal(func() {
		s.Render(host.RefTo("", host.StrTy(), host.Not), host.SliceValue(mem, 4, 12))
	})
	var fe *lower.FatalError
	if !errors.As(err, &fe) || fe.Kind != lower.FatalUnsoundRead {
		t.Fatalf("expected unsound read, got %v", err)
	}

	if err := catchFatal(func() {
		s.Render(host.RefTo("", host.StrTy(), host.Not), host.SliceValue(mem, 0, 8))
	}); err != nil {
		t.Fatalf("bytes before the relocation are readable: %v", err)
	}

	var got ir.Literal
	if err := catchFatal(func() {
		got = s.Render(host.RefTo("", host.StrTy(), host.Not), host.SliceValue(mem, 8, 8))
	}); err != nil {
		t.Fatalf("empty slice at the relocation is readable: %v", err)
	}
	if lit, ok := got.(ir.StrLit); !ok || len(lit.Val) != 0 {
		t.Fatalf("unexpected empty literal %#v", got)
	}
}

func TestUnevaluatedConsts(t *testing.T) {
	c := testkit.NewCore()
	s, bag := newSession(c)

	ten := host.ScalarValue(4, 10)
	limit := c.P.DefineConst(c.App, host.NoDefID, "LIMIT", host.UintOf(host.U32), &ten)
	got := s.Const(host.UnevaluatedConst(host.UintOf(host.U32), limit.Def, nil, nil))
	if got.Initializer == nil || got.Initializer.DefID != "app/01234567::LIMIT[0]" {
		t.Fatalf("unexpected initializer %+v", got.Initializer)
	}
	if got.Rendered != (ir.BitsLit{Kind: ir.BitsUint, Size: 4, Val: "10"}) {
		t.Fatalf("unexpected rendering %#v", got.Rendered)
	}

	f := c.Fn("greet", 0)
	mem := c.P.AddMemory([]byte("hi"))
	idx := c.P.AddPromoted(f.Def, host.SliceValue(mem, 0, 2))
	got = s.Const(host.UnevaluatedConst(host.RefTo("", host.StrTy(), host.Not), f.Def, nil, &idx))
	if got.Initializer.DefID != "app/01234567::greet[0]::{{promoted}}[0]" {
		t.Fatalf("unexpected promoted initializer %q", got.Initializer.DefID)
	}
	if !reflect.DeepEqual(got.Rendered, ir.StrLit{Val: ir.ByteList("hi")}) {
		t.Fatalf("unexpected promoted rendering %#v", got.Rendered)
	}

	broken := c.P.DefineConst(c.App, host.NoDefID, "BROKEN", host.IntOf(host.I32), nil)
	got = s.Const(host.UnevaluatedConst(host.IntOf(host.I32), broken.Def, nil, nil))
	if got.Rendered != nil {
		t.Fatalf("failed evaluation still rendered %#v", got.Rendered)
	}
	if !hasCode(bag, diag.LowerConstEval) {
		t.Fatalf("missing %s diagnostic", diag.LowerConstEval.ID())
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "rendered") {
		t.Fatalf("rendered should be omitted: %s", data)
	}
}

func TestUnsupportedKindIsMarked(t *testing.T) {
	c := testkit.NewCore()
	s, bag := newSession(c)

	id := s.Ty(host.TupleOf(host.OpaqueKind(host.TyInfer, host.NoDefID), host.BoolTy()))
	tup, _ := s.Types().Node(id)
	infer, _ := s.Types().Node(tup.(ir.TupleTy).Tys[0])
	if infer != (ir.UnhandledTy{Kind: "Infer"}) {
		t.Fatalf("expected unhandled marker, got %#v", infer)
	}
	data, err := json.Marshal(infer)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"kind":"Infer","unhandled":true}` {
		t.Fatalf("unexpected json %s", data)
	}
	if !hasCode(bag, diag.LowerUnsupportedType) {
		t.Fatalf("missing %s diagnostic", diag.LowerUnsupportedType.ID())
	}

	unknown, _ := s.Types().Node(s.Ty(host.OpaqueKind(host.TyKind(200), host.NoDefID)))
	if unknown != (ir.UnhandledTy{Kind: "TyKind(200)"}) {
		t.Fatalf("unknown kind not marked, got %#v", unknown)
	}
}

func TestCloneShimCallees(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)
	c.ImplClone(host.IntOf(host.I32), 0)
	opaque := c.Struct("Opaque", 0)

	tuple := host.TupleOf(host.IntOf(host.I32), host.AdtOf(opaque.Def, nil))
	inst, ok := c.P.Resolve(c.CloneFn.Def, host.TypeArgs(tuple), host.UsageCall)
	if !ok || inst.Kind != host.InstCloneShim {
		t.Fatalf("expected a clone shim, got %+v (ok=%v)", inst, ok)
	}
	shim := s.Instance(inst).(ir.CloneShimInst)
	if len(shim.Callees) != 2 {
		t.Fatalf("expected 2 callees, got %d", len(shim.Callees))
	}
	if shim.Callees[0] == nil || *shim.Callees[0] != "app/01234567::{{impl}}[0]::clone[0]" {
		t.Fatalf("unexpected first callee %v", shim.Callees[0])
	}
	if shim.Callees[1] != nil {
		t.Fatalf("struct without Clone impl should have a null callee")
	}
	if !s.Used().Instances.Contains("app/01234567::{{impl}}[0]::clone[0]") {
		t.Fatalf("callee not recorded as reachable")
	}
}

func TestTraitLowering(t *testing.T) {
	c := testkit.NewCore()
	s, _ := newSession(c)
	tr, _, dyn := shapeTrait(c)
	tr.Clauses = []host.Clause{
		{Kind: host.ClauseTrait, Def: c.Clone.Def, Substs: host.TypeArgs(host.ParamOf(0, "Self"))},
		{Kind: host.ClauseOther},
	}

	out := s.Trait(dyn)
	if len(out.Items) != 2 || out.Items[0].Name != "app/01234567::Shape[0]::b[0]" || out.Items[1].Name != "app/01234567::Shape[0]::d[0]" {
		t.Fatalf("unexpected trait items %+v", out.Items)
	}
	if len(out.Clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(out.Clauses))
	}
	if _, ok := out.Clauses[1].(ir.UnknownClause); !ok {
		t.Fatalf("expected unknown clause, got %#v", out.Clauses[1])
	}
	tc := out.Clauses[0].(ir.TraitClause)
	self, _ := s.Types().Node(ir.TypeID(tc.TraitPred.Substs[0].Ty))
	if _, ok := self.(ir.DynamicTy); !ok {
		t.Fatalf("Self should be the trait object, got %#v", self)
	}

	empty := s.Trait(host.DynOf(""))
	if empty.Name != "trait/0::empty[0]" || len(empty.Items) != 0 {
		t.Fatalf("unexpected empty trait %+v", empty)
	}
}

func TestVtableEntries(t *testing.T) {
	c := testkit.NewCore()
	s, bag := newSession(c)
	tr, ms, dyn := shapeTrait(c)
	circle := c.Struct("Circle", 0, host.FloatOf(host.F64))
	self := host.AdtOf(circle.Def, nil)
	im := c.P.DefineImpl(c.App, host.NoDefID, tr.Def, 0, self, nil)
	for _, m := range ms {
		c.P.AddImplMethod(im, m.Def, 0)
	}

	vt := s.Vtable(self, dyn)
	if len(vt.Items) != 2 {
		t.Fatalf("expected 2 vtable entries, got %+v", vt.Items)
	}
	if vt.Items[1].DefID != "app/01234567::{{impl}}[0]::d[0]" {
		t.Fatalf("unexpected slot filler %q", vt.Items[1].DefID)
	}
	if !strings.Contains(vt.Name, "::_vtbl") {
		t.Fatalf("unexpected vtable name %q", vt.Name)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diag.FormatShortDiagnostics(bag.Items(), false))
	}
}
