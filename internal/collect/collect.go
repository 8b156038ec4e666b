package collect

import (
	"context"
	"fmt"
	"strconv"

	"tyjson/internal/diag"
	"tyjson/internal/host"
	"tyjson/internal/ir"
	"tyjson/internal/lower"
	"tyjson/internal/trace"
)

type collector struct {
	sess  *lower.Session
	items host.Oracles
	doc   *ir.Document

	vtables map[string]bool

	dropInPlace host.DefID
	dropFn      host.DefID
}

// Collect lowers everything reachable from roots. A fatal lowering error
// aborts the unit and no document is returned.
func Collect(ctx context.Context, sess *lower.Session, roots []host.DefID) (doc *ir.Document, err error) {
	defer lower.Recover(&err)

	items := sess.Oracles()
	c := &collector{
		sess:    sess,
		items:   items,
		doc:     ir.NewDocument(),
		vtables: make(map[string]bool),
	}
	if id, ok := items.Lang(host.LangDropInPlace); ok {
		c.dropInPlace = id
	}
	if id, ok := items.Lang(host.LangDrop); ok {
		if tr, ok := items.Trait(id); ok && len(tr.Methods) > 0 {
			c.dropFn = tr.Methods[0].Def
		}
	}

	for _, root := range roots {
		c.doc.Roots = append(c.doc.Roots, string(sess.ResolveAndRecord(root, nil, host.UsageCall)))
	}

	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	used := sess.Used()
	var nInst, nTraits, nAdts int
	for round := 1; nInst < used.Instances.Len() || nTraits < used.Traits.Len() || nAdts < used.Adts.Len(); round++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collect: %w", err)
		}
		span := trace.Begin(tracer, trace.ScopePass, "round "+strconv.Itoa(round), parent)
		before := used.Size()

		for _, u := range used.Instances.From(nInst) {
			nInst++
			c.instance(u)
		}
		for _, u := range used.Traits.From(nTraits) {
			nTraits++
			c.doc.Traits = append(c.doc.Traits, sess.Trait(u.Value))
		}
		for _, u := range used.Adts.From(nAdts) {
			nAdts++
			if adt, ok := sess.Adt(u.Value); ok {
				c.doc.Adts = append(c.doc.Adts, adt)
			}
		}

		span.WithExtra("drained", strconv.Itoa(before)).
			WithExtra("discovered", strconv.Itoa(used.Size()-before)).
			End("")
	}

	c.doc.Tys = sess.Types().Entries()
	return c.doc, nil
}

func (c *collector) instance(u lower.Used[host.Instance]) {
	inst := u.Value
	c.doc.Intrinsics = append(c.doc.Intrinsics, ir.Intrinsic{Name: string(u.Name), Inst: c.sess.Instance(inst)})

	switch inst.Kind {
	case host.InstItem:
		fn, ok := c.items.Fn(inst.Def)
		if !ok {
			diag.ReportWarning(c.sess.Reporter(), diag.LowerMissingBody, string(u.Name), "reachable item has no body").Emit()
			return
		}
		c.doc.Fns = append(c.doc.Fns, c.body(string(u.Name), fn, inst.Substs))
	case host.InstVtableShim:
		c.sess.RecordInstance(host.Instance{Kind: host.InstItem, Def: inst.Def, Substs: inst.Substs})
	case host.InstReifyShim:
		c.sess.ResolveAndRecord(inst.Def, inst.Substs, host.UsageCall)
	case host.InstFnPtrShim:
		if inst.Ty != nil && inst.Ty.Kind == host.TyFnDef {
			c.sess.FnDefName(inst.Ty.Def, inst.Ty.Substs)
		}
	case host.InstClosureOnceShim:
		if self := inst.Substs.Type(0); self != nil && self.Kind == host.TyClosure {
			c.sess.ResolveAndRecord(self.Def, self.Substs, host.UsageCall)
		}
	case host.InstDropGlue:
		if inst.Ty != nil {
			c.dropGlue(inst.Ty)
		}
	case host.InstIntrinsic, host.InstVirtual, host.InstCloneShim:
		// no body; clone callees are recorded while lowering the shim
	}
}

// dropGlue records what dropping a value of t runs: the type's Drop impl and
// the glue of every component that needs dropping.
func (c *collector) dropGlue(t *host.Ty) {
	if c.dropFn.IsValid() && t.Kind == host.TyAdt {
		if inst, ok := c.items.Resolve(c.dropFn, host.TypeArgs(t), host.UsageCall); ok {
			c.sess.RecordInstance(inst)
		}
	}
	var parts []*host.Ty
	switch t.Kind {
	case host.TyAdt:
		if adt, ok := c.items.Adt(t.Def); ok {
			for v := range adt.Variants {
				parts = append(parts, adt.FieldTys(v, t.Substs)...)
			}
		}
	case host.TyTuple, host.TyClosure:
		parts = t.Elems
	case host.TyArray, host.TySlice:
		parts = []*host.Ty{t.Elem}
	}
	if !c.dropInPlace.IsValid() {
		return
	}
	for _, part := range parts {
		inst, ok := c.items.Resolve(c.dropInPlace, host.TypeArgs(part), host.UsageCall)
		if ok && inst.Ty != nil {
			c.sess.RecordInstance(inst)
		}
	}
}
