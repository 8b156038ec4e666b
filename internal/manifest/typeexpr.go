package manifest

import (
	"fmt"
	"strconv"
	"strings"

	"tyjson/internal/host"
)

// closureShape is what a closure type expression cannot spell out itself.
type closureShape struct {
	kind   host.ClosureKind
	upvars []*host.Ty
}

// typeEnv resolves the names a type expression may mention.
type typeEnv struct {
	prog     *host.Program
	closures map[host.DefID]closureShape
	params   []string
}

func (env *typeEnv) withParams(params []string) *typeEnv {
	cp := *env
	cp.params = params
	return &cp
}

func (env *typeEnv) param(name string) (uint32, bool) {
	for i := len(env.params) - 1; i >= 0; i-- {
		if env.params[i] == name {
			return uint32(i), true
		}
	}
	return 0, false
}

var primitives = map[string]func() *host.Ty{
	"bool":  host.BoolTy,
	"char":  host.CharTy,
	"str":   host.StrTy,
	"i8":    func() *host.Ty { return host.IntOf(host.I8) },
	"i16":   func() *host.Ty { return host.IntOf(host.I16) },
	"i32":   func() *host.Ty { return host.IntOf(host.I32) },
	"i64":   func() *host.Ty { return host.IntOf(host.I64) },
	"i128":  func() *host.Ty { return host.IntOf(host.I128) },
	"isize": func() *host.Ty { return host.IntOf(host.Isize) },
	"u8":    func() *host.Ty { return host.UintOf(host.U8) },
	"u16":   func() *host.Ty { return host.UintOf(host.U16) },
	"u32":   func() *host.Ty { return host.UintOf(host.U32) },
	"u64":   func() *host.Ty { return host.UintOf(host.U64) },
	"u128":  func() *host.Ty { return host.UintOf(host.U128) },
	"usize": func() *host.Ty { return host.UintOf(host.Usize) },
	"f32":   func() *host.Ty { return host.FloatOf(host.F32) },
	"f64":   func() *host.Ty { return host.FloatOf(host.F64) },
}

// typeParser is a recursive-descent parser over one type expression.
type typeParser struct {
	src string
	lx  *lexer
	env *typeEnv
}

func parseType(env *typeEnv, src string) (ty *host.Ty, err error) {
	p := &typeParser{src: src, lx: newLexer(src), env: env}
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}
			ty, err = nil, se
		}
	}()
	ty = p.ty()
	p.expect(tokEOF)
	return ty, nil
}

func parseArgs(env *typeEnv, srcs []string) (host.Substs, error) {
	if len(srcs) == 0 {
		return nil, nil
	}
	out := make(host.Substs, 0, len(srcs))
	for _, src := range srcs {
		p := &typeParser{src: src, lx: newLexer(src), env: env}
		a, err := p.standaloneArg()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (p *typeParser) standaloneArg() (a host.GenericArg, err error) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}
			err = se
		}
	}()
	a = p.arg()
	p.expect(tokEOF)
	return a, nil
}

func (p *typeParser) fail(at token, format string, args ...any) {
	panic(&SyntaxError{Src: p.src, Off: at.off, Msg: fmt.Sprintf(format, args...)})
}

func (p *typeParser) at(k tokenKind) bool { return p.lx.peek().kind == k }

func (p *typeParser) atKeyword(kw string) bool {
	t := p.lx.peek()
	return t.kind == tokIdent && t.text == kw
}

func (p *typeParser) eat(k tokenKind) bool {
	if p.at(k) {
		p.lx.next()
		return true
	}
	return false
}

func (p *typeParser) expect(k tokenKind) token {
	t := p.lx.next()
	if t.kind != k {
		p.fail(t, "expected %s, found %s", k, describe(t))
	}
	return t
}

func describe(t token) string {
	if t.text == "" {
		return t.kind.String()
	}
	return strconv.Quote(t.text)
}

func (p *typeParser) ty() *host.Ty {
	t := p.lx.peek()
	switch t.kind {
	case tokBang:
		p.lx.next()
		return host.NeverTy()
	case tokLParen:
		return p.tuple()
	case tokLBrack:
		p.lx.next()
		elem := p.ty()
		if p.eat(tokSemi) {
			n := p.number()
			p.expect(tokRBrack)
			return host.ArrayOf(elem, n)
		}
		p.expect(tokRBrack)
		return host.SliceOf(elem)
	case tokAmp:
		p.lx.next()
		var r host.Region
		if p.at(tokLifetime) {
			r = host.Region(strings.TrimPrefix(p.lx.next().text, "'"))
		}
		m := host.Not
		if p.atKeyword("mut") {
			p.lx.next()
			m = host.Mut
		}
		return host.RefTo(r, p.ty(), m)
	case tokStar:
		p.lx.next()
		kw := p.expect(tokIdent)
		switch kw.text {
		case "const":
			return host.PtrTo(p.ty(), host.Not)
		case "mut":
			return host.PtrTo(p.ty(), host.Mut)
		}
		p.fail(kw, "expected const or mut after '*'")
	case tokLt:
		return p.projection()
	case tokIdent:
		return p.named()
	}
	p.fail(t, "expected a type, found %s", describe(t))
	return nil
}

func (p *typeParser) tuple() *host.Ty {
	p.expect(tokLParen)
	var elems []*host.Ty
	trailing := false
	for !p.at(tokRParen) {
		elems = append(elems, p.ty())
		trailing = p.eat(tokComma)
		if !trailing {
			break
		}
	}
	p.expect(tokRParen)
	if len(elems) == 1 && !trailing {
		return elems[0]
	}
	return host.TupleOf(elems...)
}

func (p *typeParser) number() uint64 {
	t := p.expect(tokNumber)
	n, err := strconv.ParseUint(strings.ReplaceAll(t.text, "_", ""), 0, 64)
	if err != nil {
		p.fail(t, "bad number %q", t.text)
	}
	return n
}

func (p *typeParser) named() *host.Ty {
	t := p.lx.peek()
	switch t.text {
	case "_":
		p.lx.next()
		return host.OpaqueKind(host.TyInfer, host.NoDefID)
	case "fn", "extern":
		return p.fnPtr()
	case "dyn":
		p.lx.next()
		return p.dyn()
	}
	if mk, ok := primitives[t.text]; ok {
		p.lx.next()
		return mk()
	}
	if idx, ok := p.env.param(t.text); ok {
		p.lx.next()
		if !p.at(tokColons) {
			return host.ParamOf(idx, t.text)
		}
		p.fail(t, "generic parameter %s cannot start a path", t.text)
	}
	path, start := p.path()
	def, ok := p.env.prog.Lookup(path)
	if !ok {
		p.fail(start, "unknown item %s", path)
	}
	var args host.Substs
	if p.at(tokLt) {
		args = p.args()
	}
	switch kind := p.env.prog.DefKind(def); kind {
	case host.DefStruct, host.DefEnum, host.DefUnion:
		return host.AdtOf(def, args)
	case host.DefFn, host.DefTraitMethod:
		return host.FnDefOf(def, args)
	case host.DefClosure:
		shape := p.env.closures[def]
		return host.ClosureOf(def, args, shape.kind, shape.upvars...)
	case host.DefForeign:
		return host.OpaqueKind(host.TyForeign, def)
	case host.DefOpaque:
		return host.OpaqueKind(host.TyOpaque, def)
	default:
		p.fail(start, "%s is a %s, not a type", path, kind)
	}
	return nil
}

// path reads crate::seg[n]::seg into its canonical string.
func (p *typeParser) path() (string, token) {
	start := p.expect(tokIdent)
	var b strings.Builder
	b.WriteString(start.text)
	segs := 1
	for p.eat(tokColons) {
		seg := p.expect(tokIdent)
		b.WriteString("::")
		b.WriteString(seg.text)
		segs++
		if p.at(tokLBrack) {
			p.lx.next()
			n := p.expect(tokNumber)
			p.expect(tokRBrack)
			b.WriteString("[" + n.text + "]")
		}
	}
	if segs < 2 {
		p.fail(start, "unknown type %s", start.text)
	}
	return b.String(), start
}

func (p *typeParser) args() host.Substs {
	p.expect(tokLt)
	var out host.Substs
	for !p.at(tokGt) {
		out = append(out, p.arg())
		if !p.eat(tokComma) {
			break
		}
	}
	p.expect(tokGt)
	return out
}

func (p *typeParser) arg() host.GenericArg {
	switch p.lx.peek().kind {
	case tokLifetime:
		return host.LifetimeArg(host.Region(strings.TrimPrefix(p.lx.next().text, "'")))
	case tokNumber:
		return host.ConstArg(host.UsizeConst(p.number()))
	default:
		return host.TypeArg(p.ty())
	}
}

func (p *typeParser) fnPtr() *host.Ty {
	abi := "Rust"
	if p.atKeyword("extern") {
		p.lx.next()
		s := p.expect(tokString)
		abi = strings.Trim(s.text, `"`)
	}
	kw := p.expect(tokIdent)
	if kw.text != "fn" {
		p.fail(kw, "expected fn")
	}
	p.expect(tokLParen)
	var inputs []*host.Ty
	for !p.at(tokRParen) {
		inputs = append(inputs, p.ty())
		if !p.eat(tokComma) {
			break
		}
	}
	p.expect(tokRParen)
	out := host.UnitTy()
	if p.eat(tokArrow) {
		out = p.ty()
	}
	return host.FnPtrOf(&host.FnSig{Inputs: inputs, Output: out, Abi: abi})
}

// dyn parses the bounds of a trait object: an optional principal trait with
// its arguments and projection bindings, auto traits and a region.
func (p *typeParser) dyn() *host.Ty {
	var preds []host.ExistentialPredicate
	var region host.Region
	for {
		if p.at(tokLifetime) {
			region = host.Region(strings.TrimPrefix(p.lx.next().text, "'"))
		} else {
			preds = append(preds, p.bound(len(preds) == 0)...)
		}
		if !p.eat(tokPlus) {
			break
		}
	}
	return host.DynOf(region, preds...)
}

func (p *typeParser) bound(first bool) []host.ExistentialPredicate {
	path, start := p.path()
	def, ok := p.env.prog.Lookup(path)
	if !ok || p.env.prog.DefKind(def) != host.DefTrait {
		p.fail(start, "%s is not a trait", path)
	}
	tr, _ := p.env.prog.Trait(def)
	if tr.Auto {
		return []host.ExistentialPredicate{{Kind: host.PredAutoTrait, Def: def}}
	}
	if !first {
		p.fail(start, "only the first bound of a trait object may be a non-auto trait")
	}

	var substs host.Substs
	var bindings []host.ExistentialPredicate
	if p.eat(tokLt) {
		for !p.at(tokGt) {
			if name := p.lx.peek(); name.kind == tokIdent && p.bindingAhead() {
				p.lx.next()
				p.expect(tokEq)
				assoc, ok := p.env.prog.Lookup(path + "::" + name.text)
				if !ok || p.env.prog.DefKind(assoc) != host.DefAssocTy {
					p.fail(name, "%s has no associated type %s", path, name.text)
				}
				bindings = append(bindings, host.ExistentialPredicate{Kind: host.PredProjection, Def: assoc, Ty: p.ty()})
			} else {
				substs = append(substs, p.arg())
			}
			if !p.eat(tokComma) {
				break
			}
		}
		p.expect(tokGt)
	}
	for i := range bindings {
		bindings[i].Substs = substs
	}
	return append([]host.ExistentialPredicate{{Kind: host.PredTrait, Def: def, Substs: substs}}, bindings...)
}

// bindingAhead reports whether the identifier under the lexer is followed by
// '=' without consuming anything.
func (p *typeParser) bindingAhead() bool {
	save := p.lx.cur
	look := p.lx.look
	p.lx.next()
	ok := p.at(tokEq)
	p.lx.cur = save
	p.lx.look = look
	return ok
}

// projection parses <T as crate::Trait<Args>>::Item.
func (p *typeParser) projection() *host.Ty {
	p.expect(tokLt)
	self := p.ty()
	kw := p.expect(tokIdent)
	if kw.text != "as" {
		p.fail(kw, "expected as")
	}
	path, start := p.path()
	def, ok := p.env.prog.Lookup(path)
	if !ok || p.env.prog.DefKind(def) != host.DefTrait {
		p.fail(start, "%s is not a trait", path)
	}
	substs := host.TypeArgs(self)
	if p.at(tokLt) {
		substs = append(substs, p.args()...)
	}
	p.expect(tokGt)
	p.expect(tokColons)
	name := p.expect(tokIdent)
	assoc, ok := p.env.prog.Lookup(path + "::" + name.text)
	if !ok || p.env.prog.DefKind(assoc) != host.DefAssocTy {
		p.fail(name, "%s has no associated type %s", path, name.text)
	}
	return host.ProjectionOf(assoc, substs)
}
