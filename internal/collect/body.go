package collect

import (
	"tyjson/internal/diag"
	"tyjson/internal/host"
	"tyjson/internal/ir"
)

// body lowers the uses of fn instantiated with args.
func (c *collector) body(name string, fn *host.FnItem, args host.Substs) ir.Fn {
	sig := c.sess.Sig(fn.Sig.Subst(args))
	out := ir.Fn{Name: name, Inputs: sig.Inputs, Output: sig.Output, Body: make([]ir.Use, 0, len(fn.Body.Uses))}
	for _, u := range fn.Body.Uses {
		out.Body = append(out.Body, c.use(name, u, args))
	}
	return out
}

func (c *collector) use(owner string, u host.Use, args host.Substs) ir.Use {
	s := c.sess
	switch u.Kind {
	case host.UseCall:
		return ir.CallUse{Callee: string(s.ResolveAndRecord(u.Def, u.Substs.Subst(args), host.UsageCall))}
	case host.UseFnPtr:
		return ir.FnPtrUse{Callee: string(s.ResolveAndRecord(u.Def, u.Substs.Subst(args), host.UsageFnPtr))}
	case host.UseType:
		return ir.TypeUse{Ty: s.Ty(u.Ty.Subst(args))}
	case host.UseConst:
		return ir.ConstUse{Const: s.Const(u.Const.Subst(args))}
	case host.UseUnsize:
		concrete, target := u.Ty.Subst(args), u.Target.Subst(args)
		vt := s.Vtable(concrete, target)
		if !c.vtables[vt.Name] {
			c.vtables[vt.Name] = true
			c.doc.Vtables = append(c.doc.Vtables, vt)
		}
		return ir.UnsizeUse{Ty: s.Ty(concrete), Target: s.Ty(target), Vtable: vt.Name}
	default:
		ty := u.Ty.Subst(args)
		out := ir.DropUse{Ty: s.Ty(ty)}
		if c.dropInPlace.IsValid() {
			out.Glue = string(s.ResolveAndRecord(c.dropInPlace, host.TypeArgs(ty), host.UsageCall))
		} else {
			diag.ReportWarning(s.Reporter(), diag.LowerUnresolvedInstance, owner, "no drop_in_place lang item to drop "+ty.Key()).Emit()
		}
		return out
	}
}
