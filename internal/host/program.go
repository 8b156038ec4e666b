package host

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

type siblingKey struct {
	crate  CrateID
	parent DefID
	name   string
}

// Program is an in-memory host program. The zero value is not usable; call
// NewProgram.
type Program struct {
	crates   []Crate
	defs     []Def
	siblings map[siblingKey]uint32

	fns     map[DefID]*FnItem
	adts    map[DefID]*AdtDef
	traits  map[DefID]*TraitDef
	methods map[DefID]*TraitMethod
	impls   []*ImplDef
	consts  map[DefID]*ConstItem
	statics map[DefID]*StaticItem
	allocs  []GlobalAlloc
	lang    map[LangItem]DefID

	roots []DefID
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{
		defs:     make([]Def, 1), // DefID 0 is reserved
		siblings: make(map[siblingKey]uint32),
		fns:      make(map[DefID]*FnItem),
		adts:     make(map[DefID]*AdtDef),
		traits:   make(map[DefID]*TraitDef),
		methods:  make(map[DefID]*TraitMethod),
		consts:   make(map[DefID]*ConstItem),
		statics:  make(map[DefID]*StaticItem),
		allocs:   make([]GlobalAlloc, 1), // AllocID 0 is reserved
		lang:     make(map[LangItem]DefID),
	}
}

// AddCrate registers a crate and returns its id.
func (p *Program) AddCrate(name, disambiguator string) CrateID {
	id, err := safecast.Conv[CrateID](len(p.crates))
	if err != nil {
		panic(fmt.Errorf("host: crate count overflow: %w", err))
	}
	p.crates = append(p.crates, Crate{Name: name, Disambiguator: disambiguator})
	return id
}

// Crate returns the crate with the given id.
func (p *Program) Crate(id CrateID) (Crate, bool) {
	if p == nil || int(id) >= len(p.crates) {
		return Crate{}, false
	}
	return p.crates[id], true
}

// AddDef registers a definition. Siblings sharing a name get increasing
// indices.
func (p *Program) AddDef(crate CrateID, parent DefID, kind DefKind, name string) DefID {
	id, err := safecast.Conv[DefID](len(p.defs))
	if err != nil {
		panic(fmt.Errorf("host: definition count overflow: %w", err))
	}
	key := siblingKey{crate: crate, parent: parent, name: name}
	idx := p.siblings[key]
	p.siblings[key] = idx + 1
	p.defs = append(p.defs, Def{ID: id, Crate: crate, Kind: kind, Parent: parent, Name: name, Index: idx})
	return id
}

func (p *Program) def(id DefID) *Def {
	if p == nil || !id.IsValid() || int(id) >= len(p.defs) {
		return nil
	}
	return &p.defs[id]
}

// Def returns the definition with the given id.
func (p *Program) Def(id DefID) (Def, bool) {
	d := p.def(id)
	if d == nil {
		return Def{}, false
	}
	return *d, true
}

// DefPath implements DefLookup.
func (p *Program) DefPath(id DefID) (DefPath, bool) {
	d := p.def(id)
	if d == nil {
		return DefPath{}, false
	}
	c, ok := p.Crate(d.Crate)
	if !ok {
		return DefPath{}, false
	}
	return DefPath{Crate: c.Name, Disambiguator: c.Disambiguator, Path: p.renderPath(id)}, true
}

// DefKind implements DefLookup.
func (p *Program) DefKind(id DefID) DefKind {
	if d := p.def(id); d != nil {
		return d.Kind
	}
	return DefInvalid
}

// Lookup finds a definition by crate::seg::seg. A segment may carry an explicit
// [n] sibling index; without one the first sibling matches.
func (p *Program) Lookup(qualified string) (DefID, bool) {
	segs := strings.Split(qualified, "::")
	if p == nil || len(segs) < 2 {
		return NoDefID, false
	}
	crate := -1
	for i, c := range p.crates {
		if c.Name == segs[0] {
			crate = i
			break
		}
	}
	if crate < 0 {
		return NoDefID, false
	}
	parent := NoDefID
	for _, seg := range segs[1:] {
		name, idx := splitSegment(seg)
		found := NoDefID
		for i := 1; i < len(p.defs); i++ {
			d := &p.defs[i]
			if int(d.Crate) == crate && d.Parent == parent && d.Name == name && d.Index == idx {
				found = d.ID
				break
			}
		}
		if !found.IsValid() {
			return NoDefID, false
		}
		parent = found
	}
	return parent, true
}

func splitSegment(seg string) (string, uint32) {
	open := strings.LastIndexByte(seg, '[')
	if open < 0 || !strings.HasSuffix(seg, "]") {
		return seg, 0
	}
	var n uint32
	for _, ch := range seg[open+1 : len(seg)-1] {
		if ch < '0' || ch > '9' {
			return seg, 0
		}
		n = n*10 + uint32(ch-'0')
	}
	return seg[:open], n
}

// Builders ---------------------------------------------------------------------

// DefineFn adds a free function.
func (p *Program) DefineFn(crate CrateID, parent DefID, name string, numParams int, sig *FnSig) *FnItem {
	fn := &FnItem{Def: p.AddDef(crate, parent, DefFn, name), NumParams: numParams, Sig: sig}
	p.fns[fn.Def] = fn
	return fn
}

// DefineClosure adds a closure nested in parent. Closures share their parent's
// generic parameters.
func (p *Program) DefineClosure(crate CrateID, parent DefID, numParams int, sig *FnSig) *FnItem {
	fn := &FnItem{Def: p.AddDef(crate, parent, DefClosure, "{{closure}}"), NumParams: numParams, Sig: sig}
	p.fns[fn.Def] = fn
	return fn
}

// DefineAdt adds an ADT with no variants yet.
func (p *Program) DefineAdt(crate CrateID, parent DefID, name string, kind AdtKind, numParams int) *AdtDef {
	dk := DefStruct
	switch kind {
	case AdtEnum:
		dk = DefEnum
	case AdtUnion:
		dk = DefUnion
	}
	a := &AdtDef{Def: p.AddDef(crate, parent, dk, name), Kind: kind, NumParams: numParams}
	p.adts[a.Def] = a
	return a
}

// AddVariant appends a variant. Structs and unions use the ADT's own name.
func (p *Program) AddVariant(a *AdtDef, name string, discr Discr, ctor CtorKind) *VariantDef {
	d := p.def(a.Def)
	v := &VariantDef{Def: p.AddDef(d.Crate, a.Def, DefVariant, name), Discr: discr, Ctor: ctor}
	a.Variants = append(a.Variants, v)
	return v
}

// AddField appends a field to a variant.
func (p *Program) AddField(v *VariantDef, name string, ty *Ty) *FieldDef {
	d := p.def(v.Def)
	f := &FieldDef{Def: p.AddDef(d.Crate, v.Def, DefField, name), Ty: ty}
	v.Fields = append(v.Fields, f)
	return f
}

// DefineTrait adds a trait; numParams excludes Self.
func (p *Program) DefineTrait(crate CrateID, parent DefID, name string, numParams int) *TraitDef {
	t := &TraitDef{Def: p.AddDef(crate, parent, DefTrait, name), NumParams: numParams + 1}
	p.traits[t.Def] = t
	return t
}

// AddTraitMethod appends a method to a trait.
func (p *Program) AddTraitMethod(t *TraitDef, name string, m TraitMethod) *TraitMethod {
	d := p.def(t.Def)
	m.Def = p.AddDef(d.Crate, t.Def, DefTraitMethod, name)
	m.Trait = t.Def
	tm := &m
	t.Methods = append(t.Methods, tm)
	p.methods[tm.Def] = tm
	return tm
}

// ProvideDefault gives a trait method a default body.
func (p *Program) ProvideDefault(m *TraitMethod, numParams int) *FnItem {
	fn := &FnItem{Def: m.Def, NumParams: numParams, Sig: m.Sig}
	m.Default = fn
	p.fns[m.Def] = fn
	return fn
}

// AddAssocType declares an associated type on a trait.
func (p *Program) AddAssocType(t *TraitDef, name string) DefID {
	d := p.def(t.Def)
	id := p.AddDef(d.Crate, t.Def, DefAssocTy, name)
	t.AssocTypes = append(t.AssocTypes, id)
	return id
}

// DefineImpl adds an impl of trait for selfTy.
func (p *Program) DefineImpl(crate CrateID, parent, trait DefID, numParams int, selfTy *Ty, traitArgs Substs) *ImplDef {
	im := &ImplDef{
		Def:        p.AddDef(crate, parent, DefImpl, "{{impl}}"),
		Trait:      trait,
		NumParams:  numParams,
		SelfTy:     selfTy,
		TraitArgs:  traitArgs,
		Methods:    make(map[DefID]*FnItem),
		AssocTypes: make(map[DefID]*Ty),
	}
	p.impls = append(p.impls, im)
	return im
}

// AddImplMethod implements traitMethod inside im. The function's parameters are
// the impl's followed by the method's own; its signature is the trait method's
// rewritten accordingly.
func (p *Program) AddImplMethod(im *ImplDef, traitMethod DefID, numParams int) *FnItem {
	d := p.def(im.Def)
	name := "?"
	if md := p.def(traitMethod); md != nil {
		name = md.Name
	}
	fn := &FnItem{Def: p.AddDef(d.Crate, im.Def, DefFn, name), NumParams: numParams}
	if m, ok := p.methods[traitMethod]; ok {
		// Self and the trait's parameters become the impl's; the method's own
		// parameters follow the impl's.
		args := append(TypeArgs(im.SelfTy), im.TraitArgs...)
		for i := im.NumParams; i < numParams; i++ {
			args = append(args, TypeArg(ParamOf(uint32(i), "")))
		}
		fn.Sig = m.Sig.Subst(args)
	}
	im.Methods[traitMethod] = fn
	p.fns[fn.Def] = fn
	return fn
}

// DefineConst adds a constant item. value may be nil when evaluation fails.
func (p *Program) DefineConst(crate CrateID, parent DefID, name string, ty *Ty, value *ConstValue) *ConstItem {
	c := &ConstItem{Def: p.AddDef(crate, parent, DefConst, name), Ty: ty, Value: value}
	p.consts[c.Def] = c
	return c
}

// AddPromoted records a promoted constant of owner and returns its index.
func (p *Program) AddPromoted(owner DefID, value ConstValue) uint32 {
	c, ok := p.consts[owner]
	if !ok {
		c = &ConstItem{Def: owner}
		p.consts[owner] = c
	}
	idx, err := safecast.Conv[uint32](len(c.Promoted))
	if err != nil {
		panic(fmt.Errorf("host: promoted count overflow: %w", err))
	}
	c.Promoted = append(c.Promoted, value)
	return idx
}

// DefineStatic adds a static backed by mem and returns it with its allocation.
func (p *Program) DefineStatic(crate CrateID, parent DefID, name string, ty *Ty, mem *Allocation) *StaticItem {
	s := &StaticItem{Def: p.AddDef(crate, parent, DefStatic, name), Ty: ty}
	s.Alloc = p.AddAlloc(GlobalAlloc{Kind: AllocStatic, Static: s.Def, Memory: mem})
	p.statics[s.Def] = s
	return s
}

// AddAlloc appends a global allocation.
func (p *Program) AddAlloc(ga GlobalAlloc) AllocID {
	id, err := safecast.Conv[AllocID](len(p.allocs))
	if err != nil {
		panic(fmt.Errorf("host: allocation count overflow: %w", err))
	}
	p.allocs = append(p.allocs, ga)
	return id
}

// AddMemory appends a plain memory allocation.
func (p *Program) AddMemory(bytes []byte, relocs ...Relocation) AllocID {
	return p.AddAlloc(GlobalAlloc{Kind: AllocMemory, Memory: &Allocation{Bytes: bytes, Relocations: relocs}})
}

// SetLang marks def as a lang item. Traits also record it on their TraitDef.
func (p *Program) SetLang(item LangItem, def DefID) {
	p.lang[item] = def
	if t, ok := p.traits[def]; ok {
		t.Lang = item
	}
	if fn, ok := p.fns[def]; ok {
		fn.Lang = item
	}
}

// AddRoot marks a function as an entry point.
func (p *Program) AddRoot(def DefID) { p.roots = append(p.roots, def) }

// Roots returns the entry points in insertion order.
func (p *Program) Roots() []DefID { return p.roots }

// Lookups ----------------------------------------------------------------------

// Adt implements ItemLookup.
func (p *Program) Adt(id DefID) (*AdtDef, bool) {
	a, ok := p.adts[id]
	return a, ok
}

// Trait implements ItemLookup.
func (p *Program) Trait(id DefID) (*TraitDef, bool) {
	t, ok := p.traits[id]
	return t, ok
}

// TraitMethod implements ItemLookup.
func (p *Program) TraitMethod(id DefID) (*TraitMethod, bool) {
	m, ok := p.methods[id]
	return m, ok
}

// Fn implements ItemLookup.
func (p *Program) Fn(id DefID) (*FnItem, bool) {
	fn, ok := p.fns[id]
	return fn, ok
}

// Lang implements ItemLookup.
func (p *Program) Lang(item LangItem) (DefID, bool) {
	id, ok := p.lang[item]
	return id, ok
}

// Static returns a static item.
func (p *Program) Static(id DefID) (*StaticItem, bool) {
	s, ok := p.statics[id]
	return s, ok
}

// GlobalAlloc implements ConstEvaluator.
func (p *Program) GlobalAlloc(id AllocID) (GlobalAlloc, bool) {
	if id == 0 || int(id) >= len(p.allocs) {
		return GlobalAlloc{}, false
	}
	return p.allocs[id], true
}

// EvalConst implements ConstEvaluator.
func (p *Program) EvalConst(def DefID, substs Substs, promoted *uint32) (ConstValue, error) {
	c, ok := p.consts[def]
	if !ok {
		return ConstValue{}, fmt.Errorf("host: %s is not a constant", p.describe(def))
	}
	if substs.HasParams() {
		return ConstValue{}, fmt.Errorf("host: cannot evaluate %s with generic arguments %s", p.describe(def), substs.Key())
	}
	if promoted != nil {
		if int(*promoted) >= len(c.Promoted) {
			return ConstValue{}, fmt.Errorf("host: %s has no promoted constant %d", p.describe(def), *promoted)
		}
		return c.Promoted[*promoted], nil
	}
	if c.Value == nil {
		return ConstValue{}, fmt.Errorf("host: evaluation of %s failed", p.describe(def))
	}
	return *c.Value, nil
}

func (p *Program) describe(id DefID) string {
	if path, ok := p.DefPath(id); ok {
		return path.String()
	}
	return fmt.Sprintf("def#%d", id)
}
