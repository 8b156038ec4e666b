package testkit

import (
	"strconv"

	"tyjson/internal/host"
)

// Core is a host program preloaded with the lang items the resolver relies
// on, plus an empty application crate for tests to fill.
type Core struct {
	P   *host.Program
	Std host.CrateID
	App host.CrateID

	Clone    *host.TraitDef
	CloneFn  *host.TraitMethod
	FnOnce   *host.TraitDef
	CallOnce *host.TraitMethod
	FnTrait  *host.TraitDef
	Call     *host.TraitMethod
	Drop     *host.TraitDef
	DropFn   *host.TraitMethod

	DropInPlace *host.FnItem
}

// Well-known crate disambiguators of the fixture.
const (
	StdDisambiguator = "c0ffee00deadbeef"
	AppDisambiguator = "0123456789abcdef"
)

// NewCore builds the fixture.
func NewCore() *Core {
	p := host.NewProgram()
	c := &Core{P: p}
	c.Std = p.AddCrate("core", StdDisambiguator)
	c.App = p.AddCrate("app", AppDisambiguator)

	self := host.ParamOf(0, "Self")
	args := host.ParamOf(1, "Args")

	c.Clone = p.DefineTrait(c.Std, host.NoDefID, "Clone", 0)
	c.CloneFn = p.AddTraitMethod(c.Clone, "clone", host.TraitMethod{
		Sig: &host.FnSig{Inputs: []*host.Ty{host.RefTo("a", self, host.Not)}, Output: self, Abi: "Rust"},
	})
	p.SetLang(host.LangClone, c.Clone.Def)

	c.FnOnce = p.DefineTrait(c.Std, host.NoDefID, "FnOnce", 1)
	c.CallOnce = p.AddTraitMethod(c.FnOnce, "call_once", host.TraitMethod{
		ByValueSelf: true,
		Sig:         &host.FnSig{Inputs: []*host.Ty{self, args}, Output: host.UnitTy(), Abi: "rust-call"},
	})
	p.SetLang(host.LangFnOnce, c.FnOnce.Def)

	c.FnTrait = p.DefineTrait(c.Std, host.NoDefID, "Fn", 1)
	c.Call = p.AddTraitMethod(c.FnTrait, "call", host.TraitMethod{
		Sig: &host.FnSig{Inputs: []*host.Ty{host.RefTo("a", self, host.Not), args}, Output: host.UnitTy(), Abi: "rust-call"},
	})
	p.SetLang(host.LangFn, c.FnTrait.Def)

	c.Drop = p.DefineTrait(c.Std, host.NoDefID, "Drop", 0)
	c.DropFn = p.AddTraitMethod(c.Drop, "drop", host.TraitMethod{
		Sig: &host.FnSig{Inputs: []*host.Ty{host.RefTo("a", self, host.Mut)}, Output: host.UnitTy(), Abi: "Rust"},
	})
	p.SetLang(host.LangDrop, c.Drop.Def)

	t := host.ParamOf(0, "T")
	c.DropInPlace = p.DefineFn(c.Std, host.NoDefID, "drop_in_place", 1,
		&host.FnSig{Inputs: []*host.Ty{host.PtrTo(t, host.Mut)}, Output: host.UnitTy(), Abi: "Rust"})
	p.SetLang(host.LangDropInPlace, c.DropInPlace.Def)

	return c
}

// Fn adds a function to the application crate.
func (c *Core) Fn(name string, numParams int, inputs ...*host.Ty) *host.FnItem {
	return c.P.DefineFn(c.App, host.NoDefID, name, numParams,
		&host.FnSig{Inputs: inputs, Output: host.UnitTy(), Abi: "Rust"})
}

// Struct adds a struct with one tuple-like variant holding fields.
func (c *Core) Struct(name string, numParams int, fields ...*host.Ty) *host.AdtDef {
	a := c.P.DefineAdt(c.App, host.NoDefID, name, host.AdtStruct, numParams)
	v := c.P.AddVariant(a, name, host.Discr{}, host.CtorFn)
	for i, f := range fields {
		c.P.AddField(v, strconv.Itoa(i), f)
	}
	return a
}

// ImplClone adds `impl Clone for self` with a body-less clone method.
func (c *Core) ImplClone(self *host.Ty, numParams int) *host.FnItem {
	im := c.P.DefineImpl(c.App, host.NoDefID, c.Clone.Def, numParams, self, nil)
	return c.P.AddImplMethod(im, c.CloneFn.Def, numParams)
}
