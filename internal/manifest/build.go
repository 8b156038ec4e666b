package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tyjson/internal/diag"
	"tyjson/internal/host"
)

// ItemError is a manifest problem tied to one item.
type ItemError struct {
	Path string
	Item string
	Code diag.Code
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Item, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// pendingBody is a function whose uses are parsed once every item exists.
type pendingBody struct {
	item   string
	fn     *host.FnItem
	params []string
	uses   []useDecl
}

type builder struct {
	path string
	r    diag.Reporter
	prog *host.Program
	env  *typeEnv

	crates    map[string]host.CrateID
	consts    map[host.DefID]*host.ConstItem
	fnParams  map[host.DefID][]string
	constTys  map[host.DefID]*host.Ty
	promoTys  map[host.DefID][]*host.Ty
	bodies    []pendingBody
	roots     []host.DefID
}

func newBuilder(path string, r diag.Reporter) *builder {
	prog := host.NewProgram()
	return &builder{
		path:      path,
		r:         r,
		prog:      prog,
		env:       &typeEnv{prog: prog, closures: make(map[host.DefID]closureShape)},
		crates:    make(map[string]host.CrateID),
		consts:    make(map[host.DefID]*host.ConstItem),
		fnParams:  make(map[host.DefID][]string),
		constTys:  make(map[host.DefID]*host.Ty),
		promoTys:  make(map[host.DefID][]*host.Ty),
	}
}

func (b *builder) fail(item string, code diag.Code, err error) error {
	diag.ReportError(b.r, code, item, err.Error()).Emit()
	return &ItemError{Path: b.path, Item: item, Code: code, Err: err}
}

func (b *builder) failf(item string, code diag.Code, format string, args ...any) error {
	return b.fail(item, code, fmt.Errorf(format, args...))
}

func (b *builder) ty(item string, src string, params []string) (*host.Ty, error) {
	if strings.TrimSpace(src) == "" {
		return host.UnitTy(), nil
	}
	t, err := parseType(b.env.withParams(params), src)
	if err != nil {
		return nil, b.fail(item, diag.ManBadType, err)
	}
	return t, nil
}

func (b *builder) tys(item string, srcs []string, params []string) ([]*host.Ty, error) {
	out := make([]*host.Ty, 0, len(srcs))
	for _, src := range srcs {
		t, err := b.ty(item, src, params)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (b *builder) args(item string, srcs []string, params []string) (host.Substs, error) {
	s, err := parseArgs(b.env.withParams(params), srcs)
	if err != nil {
		return nil, b.fail(item, diag.ManBadType, err)
	}
	return s, nil
}

func (b *builder) lookup(item, path string) (host.DefID, error) {
	def, ok := b.prog.Lookup(path)
	if !ok {
		return host.NoDefID, b.failf(item, diag.ManUnknownItem, "unknown item %s", path)
	}
	return def, nil
}

// declare splits path into its crate, parent and last segment, and checks
// the path is still free.
func (b *builder) declare(path string) (host.CrateID, host.DefID, string, error) {
	segs := strings.Split(path, "::")
	if len(segs) < 2 {
		return 0, host.NoDefID, "", b.failf(path, diag.ManBadValue, "item path needs a crate and a name")
	}
	crate, ok := b.crates[segs[0]]
	if !ok {
		return 0, host.NoDefID, "", b.failf(path, diag.ManUnknownItem, "unknown crate %s", segs[0])
	}
	if _, taken := b.prog.Lookup(path); taken {
		return 0, host.NoDefID, "", b.failf(path, diag.ManDuplicateItem, "declared twice")
	}
	parent := host.NoDefID
	if len(segs) > 2 {
		var err error
		if parent, err = b.lookup(path, strings.Join(segs[:len(segs)-1], "::")); err != nil {
			return 0, host.NoDefID, "", err
		}
	}
	return crate, parent, segs[len(segs)-1], nil
}

func (b *builder) lang(item, name string, def host.DefID) error {
	if name == "" {
		return nil
	}
	l, ok := host.LookupLang(name)
	if !ok {
		return b.failf(item, diag.ManBadValue, "unknown lang item %q", name)
	}
	b.prog.SetLang(l, def)
	return nil
}

func (b *builder) build(cfg *fileConfig) error {
	for _, c := range cfg.Crates {
		if _, dup := b.crates[c.Name]; dup || c.Name == "" {
			return b.failf("crate "+c.Name, diag.ManDuplicateItem, "crate names must be unique and non-empty")
		}
		b.crates[c.Name] = b.prog.AddCrate(c.Name, c.Disambiguator)
	}

	steps := []func(*fileConfig) error{
		b.declareItems,
		b.fillClosures,
		b.fillTraits,
		b.fillAdts,
		b.fillFns,
		b.fillConsts,
		b.fillImpls,
		b.fillBodies,
		b.fillRoots,
	}
	for _, step := range steps {
		if err := step(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Pass 1: every definition gets its id, so later passes may refer to items
// declared further down the file.
func (b *builder) declareItems(cfg *fileConfig) error {
	for _, d := range cfg.Traits {
		crate, parent, name, err := b.declare(d.Path)
		if err != nil {
			return err
		}
		tr := b.prog.DefineTrait(crate, parent, name, len(d.Params))
		tr.Auto = d.Auto
		for _, assoc := range d.Assoc {
			b.prog.AddAssocType(tr, assoc)
		}
		for _, m := range d.Methods {
			b.prog.AddTraitMethod(tr, m.Name, host.TraitMethod{
				OwnParams:     len(m.Params),
				RequiresSized: m.RequiresSized,
				ByValueSelf:   m.ByValueSelf,
			})
		}
		if err := b.lang(d.Path, d.Lang, tr.Def); err != nil {
			return err
		}
	}
	for _, d := range cfg.Adts {
		crate, parent, name, err := b.declare(d.Path)
		if err != nil {
			return err
		}
		kind := host.AdtStruct
		switch d.Kind {
		case "", "struct":
		case "enum":
			kind = host.AdtEnum
		case "union":
			kind = host.AdtUnion
		default:
			return b.failf(d.Path, diag.ManBadValue, "unknown ADT kind %q", d.Kind)
		}
		b.prog.DefineAdt(crate, parent, name, kind, len(d.Params))
	}
	for _, d := range cfg.Fns {
		crate, parent, name, err := b.declare(d.Path)
		if err != nil {
			return err
		}
		fn := b.prog.DefineFn(crate, parent, name, len(d.Params), nil)
		fn.Intrinsic = d.Intrinsic
		b.fnParams[fn.Def] = d.Params
		if err := b.lang(d.Path, d.Lang, fn.Def); err != nil {
			return err
		}
	}
	for _, d := range cfg.Consts {
		crate, parent, name, err := b.declare(d.Path)
		if err != nil {
			return err
		}
		c := b.prog.DefineConst(crate, parent, name, nil, nil)
		b.consts[c.Def] = c
	}
	for _, d := range cfg.Statics {
		crate, parent, name, err := b.declare(d.Path)
		if err != nil {
			return err
		}
		b.prog.DefineStatic(crate, parent, name, nil, &host.Allocation{Bytes: []byte(d.Bytes)})
	}
	return nil
}

func closureKind(s string) (host.ClosureKind, bool) {
	switch s {
	case "", "fn":
		return host.ClosureFn, true
	case "fn_mut":
		return host.ClosureFnMut, true
	case "fn_once":
		return host.ClosureFnOnce, true
	}
	return 0, false
}

// Closures come first: their upvars may appear inside any later type.
func (b *builder) fillClosures(cfg *fileConfig) error {
	type declared struct {
		fn   *host.FnItem
		decl *closureDecl
	}
	closures := make([]declared, 0, len(cfg.Closures))
	for i := range cfg.Closures {
		d := &cfg.Closures[i]
		item := "closure in " + d.Parent
		parent, err := b.lookup(item, d.Parent)
		if err != nil {
			return err
		}
		kind, ok := closureKind(d.Kind)
		if !ok {
			return b.failf(item, diag.ManBadValue, "unknown closure kind %q", d.Kind)
		}
		def, _ := b.prog.Def(parent)
		params := b.fnParams[parent]
		fn := b.prog.DefineClosure(def.Crate, parent, len(params), nil)
		b.fnParams[fn.Def] = params
		b.env.closures[fn.Def] = closureShape{kind: kind}
		closures = append(closures, declared{fn: fn, decl: d})
	}
	for _, c := range closures {
		params := b.fnParams[c.fn.Def]
		item := "closure in " + c.decl.Parent
		upvars, err := b.tys(item, c.decl.Upvars, params)
		if err != nil {
			return err
		}
		shape := b.env.closures[c.fn.Def]
		shape.upvars = upvars
		b.env.closures[c.fn.Def] = shape
	}
	for _, c := range closures {
		params := b.fnParams[c.fn.Def]
		item := "closure in " + c.decl.Parent
		sig, err := b.sig(item, c.decl.Inputs, c.decl.Output, "rust-call", params)
		if err != nil {
			return err
		}
		c.fn.Sig = sig
		b.bodies = append(b.bodies, pendingBody{item: item, fn: c.fn, params: params, uses: c.decl.Uses})
	}
	return nil
}

func (b *builder) sig(item string, inputs []string, output, abi string, params []string) (*host.FnSig, error) {
	in, err := b.tys(item, inputs, params)
	if err != nil {
		return nil, err
	}
	out, err := b.ty(item, output, params)
	if err != nil {
		return nil, err
	}
	if abi == "" {
		abi = "Rust"
	}
	return &host.FnSig{Inputs: in, Output: out, Abi: abi}, nil
}

func (b *builder) fillTraits(cfg *fileConfig) error {
	for _, d := range cfg.Traits {
		def, _ := b.prog.Lookup(d.Path)
		tr, _ := b.prog.Trait(def)
		self := append([]string{"Self"}, d.Params...)
		for j, md := range d.Methods {
			m := tr.Methods[j]
			item := d.Path + "::" + md.Name
			params := append(append([]string{}, self...), md.Params...)
			sig, err := b.sig(item, md.Inputs, md.Output, md.Abi, params)
			if err != nil {
				return err
			}
			m.Sig = sig
			if md.Default || len(md.Uses) > 0 {
				fn := b.prog.ProvideDefault(m, len(params))
				b.bodies = append(b.bodies, pendingBody{item: item, fn: fn, params: params, uses: md.Uses})
			}
		}
		for _, cd := range d.Clauses {
			c, err := b.clause(d.Path, cd, self)
			if err != nil {
				return err
			}
			tr.Clauses = append(tr.Clauses, c)
		}
	}
	return nil
}

func (b *builder) clause(item string, d clauseDecl, params []string) (host.Clause, error) {
	args, err := b.args(item, d.Args, params)
	if err != nil {
		return host.Clause{}, err
	}
	switch d.Kind {
	case "trait":
		def, err := b.lookup(item, d.Trait)
		if err != nil {
			return host.Clause{}, err
		}
		return host.Clause{Kind: host.ClauseTrait, Def: def, Substs: args}, nil
	case "projection":
		def, err := b.lookup(item, d.Trait+"::"+d.Assoc)
		if err != nil {
			return host.Clause{}, err
		}
		ty, err := b.ty(item, d.Ty, params)
		if err != nil {
			return host.Clause{}, err
		}
		return host.Clause{Kind: host.ClauseProjection, Def: def, Substs: args, Ty: ty}, nil
	case "other":
		return host.Clause{Kind: host.ClauseOther}, nil
	}
	return host.Clause{}, b.failf(item, diag.ManBadValue, "unknown clause kind %q", d.Kind)
}

func (b *builder) fillAdts(cfg *fileConfig) error {
	for i := range cfg.Adts {
		d := &cfg.Adts[i]
		def, _ := b.prog.Lookup(d.Path)
		adt, _ := b.prog.Adt(def)
		variants := d.Variants
		if len(variants) == 0 && adt.Kind != host.AdtEnum {
			segs := strings.Split(d.Path, "::")
			variants = []variantDecl{{Name: segs[len(segs)-1], Fields: d.Fields}}
		}
		lastExplicit := 0
		for vi, vd := range variants {
			item := d.Path + "::" + vd.Name
			discr := host.Discr{Index: uint32(vi - lastExplicit)}
			if vd.Discr != "" {
				c, err := b.lookup(item, vd.Discr)
				if err != nil {
					return err
				}
				discr = host.Discr{Explicit: true, Def: c}
				lastExplicit = vi
			}
			ctor, err := ctorKind(item, vd, b)
			if err != nil {
				return err
			}
			v := b.prog.AddVariant(adt, vd.Name, discr, ctor)
			for fi, fd := range vd.Fields {
				ty, err := b.ty(item, fd.Ty, d.Params)
				if err != nil {
					return err
				}
				name := fd.Name
				if name == "" {
					name = strconv.Itoa(fi)
				}
				b.prog.AddField(v, name, ty)
			}
		}
	}
	return nil
}

func ctorKind(item string, vd variantDecl, b *builder) (host.CtorKind, error) {
	switch vd.Ctor {
	case "fn":
		return host.CtorFn, nil
	case "const":
		return host.CtorConst, nil
	case "fictive":
		return host.CtorFictive, nil
	case "":
		if len(vd.Fields) == 0 {
			return host.CtorConst, nil
		}
		for i, f := range vd.Fields {
			if f.Name != "" && f.Name != strconv.Itoa(i) {
				return host.CtorFictive, nil
			}
		}
		return host.CtorFn, nil
	}
	return 0, b.failf(item, diag.ManBadValue, "unknown constructor kind %q", vd.Ctor)
}

func (b *builder) fillFns(cfg *fileConfig) error {
	for _, d := range cfg.Fns {
		def, _ := b.prog.Lookup(d.Path)
		fn, _ := b.prog.Fn(def)
		sig, err := b.sig(d.Path, d.Inputs, d.Output, d.Abi, d.Params)
		if err != nil {
			return err
		}
		fn.Sig = sig
		b.bodies = append(b.bodies, pendingBody{item: d.Path, fn: fn, params: d.Params, uses: d.Uses})
	}
	return nil
}

func (b *builder) fillConsts(cfg *fileConfig) error {
	for _, d := range cfg.Statics {
		def, _ := b.prog.Lookup(d.Path)
		st, _ := b.prog.Static(def)
		ty, err := b.ty(d.Path, d.Ty, nil)
		if err != nil {
			return err
		}
		st.Ty = ty
	}
	for _, d := range cfg.Consts {
		def, _ := b.prog.Lookup(d.Path)
		ty, err := b.ty(d.Path, d.Ty, nil)
		if err != nil {
			return err
		}
		var value *host.ConstValue
		if d.Value != nil {
			v, err := parseValue(b.prog, ty, *d.Value)
			if err != nil {
				return b.fail(d.Path, diag.ManBadValue, err)
			}
			value = &v
		}
		c := b.consts[def]
		c.Ty, c.Value = ty, value
		b.constTys[def] = ty
	}
	for _, d := range cfg.Promoted {
		item := "promoted of " + d.Owner
		owner, err := b.lookup(item, d.Owner)
		if err != nil {
			return err
		}
		ty, err := b.ty(item, d.Ty, nil)
		if err != nil {
			return err
		}
		v, err := parseValue(b.prog, ty, d.Value)
		if err != nil {
			return b.fail(item, diag.ManBadValue, err)
		}
		b.prog.AddPromoted(owner, v)
		b.promoTys[owner] = append(b.promoTys[owner], ty)
	}
	return nil
}

func (b *builder) fillImpls(cfg *fileConfig) error {
	for i, d := range cfg.Impls {
		item := fmt.Sprintf("impl #%d of %s", i, d.Trait)
		traitDef, err := b.lookup(item, d.Trait)
		if err != nil {
			return err
		}
		tr, ok := b.prog.Trait(traitDef)
		if !ok {
			return b.failf(item, diag.ManUnknownItem, "%s is not a trait", d.Trait)
		}
		self, err := b.ty(item, d.Self, d.Params)
		if err != nil {
			return err
		}
		args, err := b.args(item, d.Args, d.Params)
		if err != nil {
			return err
		}
		if len(args)+1 != tr.NumParams {
			return b.failf(item, diag.ManBadType, "%s takes %d arguments besides Self, got %d", d.Trait, tr.NumParams-1, len(args))
		}
		crate, err := b.implCrate(item, d.Crate, traitDef, self)
		if err != nil {
			return err
		}
		im := b.prog.DefineImpl(crate, host.NoDefID, traitDef, len(d.Params), self, args)

		for name, src := range d.Assoc {
			assoc, err := b.lookup(item, d.Trait+"::"+name)
			if err != nil {
				return err
			}
			ty, err := b.ty(item, src, d.Params)
			if err != nil {
				return err
			}
			im.AssocTypes[assoc] = ty
		}
		for _, md := range d.Methods {
			mitem := item + " method " + md.Name
			mdef, err := b.lookup(mitem, d.Trait+"::"+md.Name)
			if err != nil {
				return err
			}
			params := append(append([]string{}, d.Params...), md.Params...)
			fn := b.prog.AddImplMethod(im, mdef, len(params))
			b.bodies = append(b.bodies, pendingBody{item: mitem, fn: fn, params: params, uses: md.Uses})
		}
	}
	return nil
}

// implCrate places an impl in the named crate, else next to its self type,
// else next to its trait.
func (b *builder) implCrate(item, name string, trait host.DefID, self *host.Ty) (host.CrateID, error) {
	if name != "" {
		c, ok := b.crates[name]
		if !ok {
			return 0, b.failf(item, diag.ManUnknownItem, "unknown crate %s", name)
		}
		return c, nil
	}
	owner := trait
	if self.Kind == host.TyAdt {
		owner = self.Def
	}
	d, _ := b.prog.Def(owner)
	return d.Crate, nil
}

func (b *builder) fillBodies(*fileConfig) error {
	for _, pb := range b.bodies {
		uses := make([]host.Use, 0, len(pb.uses))
		for _, ud := range pb.uses {
			u, err := b.use(pb.item, ud, pb.params)
			if err != nil {
				return err
			}
			uses = append(uses, u)
		}
		pb.fn.Body = host.Body{Uses: uses}
	}
	return nil
}

func (b *builder) use(item string, d useDecl, params []string) (host.Use, error) {
	switch d.Kind {
	case "call", "fnptr":
		kind := host.UseCall
		if d.Kind == "fnptr" {
			kind = host.UseFnPtr
		}
		def, err := b.lookup(item, d.Callee)
		if err != nil {
			return host.Use{}, err
		}
		args, err := b.args(item, d.Args, params)
		if err != nil {
			return host.Use{}, err
		}
		return host.Use{Kind: kind, Def: def, Substs: args}, nil
	case "type", "drop":
		kind := host.UseType
		if d.Kind == "drop" {
			kind = host.UseDrop
		}
		ty, err := b.ty(item, d.Ty, params)
		if err != nil {
			return host.Use{}, err
		}
		return host.Use{Kind: kind, Ty: ty}, nil
	case "unsize":
		from, err := b.ty(item, d.Ty, params)
		if err != nil {
			return host.Use{}, err
		}
		to, err := b.ty(item, d.To, params)
		if err != nil {
			return host.Use{}, err
		}
		return host.Use{Kind: host.UseUnsize, Ty: from, Target: to}, nil
	case "const":
		c, err := b.constUse(item, d, params)
		if err != nil {
			return host.Use{}, err
		}
		return host.Use{Kind: host.UseConst, Const: c}, nil
	}
	return host.Use{}, b.failf(item, diag.ManBadValue, "unknown use kind %q", d.Kind)
}

func (b *builder) constUse(item string, d useDecl, params []string) (*host.Const, error) {
	var ty *host.Ty
	if d.Ty != "" {
		t, err := b.ty(item, d.Ty, params)
		if err != nil {
			return nil, err
		}
		ty = t
	}
	if d.Const == "" {
		if ty == nil {
			return nil, b.failf(item, diag.ManBadValue, "inline constant needs a type")
		}
		v, err := parseValue(b.prog, ty, d.Value)
		if err != nil {
			return nil, b.fail(item, diag.ManBadValue, err)
		}
		return host.ValueConst(ty, v), nil
	}

	def, err := b.lookup(item, d.Const)
	if err != nil {
		return nil, err
	}
	args, err := b.args(item, d.Args, params)
	if err != nil {
		return nil, err
	}
	if ty == nil {
		if d.Promoted != nil {
			if tys := b.promoTys[def]; int(*d.Promoted) < len(tys) {
				ty = tys[*d.Promoted]
			}
		} else {
			ty = b.constTys[def]
		}
	}
	if ty == nil {
		return nil, b.failf(item, diag.ManBadType, "cannot tell the type of %s; give ty", d.Const)
	}
	return host.UnevaluatedConst(ty, def, args, d.Promoted), nil
}

func (b *builder) fillRoots(cfg *fileConfig) error {
	if len(cfg.Roots) == 0 {
		return b.fail(b.path, diag.ManMissingRoot, errors.New("no roots declared"))
	}
	for _, path := range cfg.Roots {
		def, err := b.lookup("roots", path)
		if err != nil {
			return err
		}
		b.prog.AddRoot(def)
		b.roots = append(b.roots, def)
	}
	return nil
}
