package lower

import (
	"tyjson/internal/host"
	"tyjson/internal/ir"
)

// NormalizeSlot renumbers a raw vtable slot of the trait object type dyn so
// that methods excluded from dynamic dispatch take no slot. dyn must have a
// principal trait.
func (s *Session) NormalizeSlot(dyn *host.Ty, raw int) int {
	entries := s.vtableEntries(dyn)
	if raw < 0 || raw >= len(entries) {
		fatalf(FatalPrecondition, "raw vtable slot %d out of range for %s (%d slots)", raw, dyn, len(entries))
	}
	n := 0
	for _, e := range entries[:raw] {
		if e.Present {
			n++
		}
	}
	return n
}

func (s *Session) vtableEntries(dyn *host.Ty) []host.VtableEntry {
	if dyn == nil || dyn.Kind != host.TyDynamic {
		fatalf(FatalPrecondition, "vtable requested for %s, which is not a trait object", dyn)
	}
	if _, ok := dyn.Principal(); !ok {
		fatalf(FatalPrecondition, "trait object %s has no principal trait", dyn)
	}
	entries, err := s.oracles.VtableMethods(dyn)
	if err != nil {
		fatalf(FatalPrecondition, "%v", err)
	}
	return entries
}

// Vtable lowers the method table of concrete viewed as the trait object dyn.
// Each slot filler is resolved for vtable use and recorded as reachable.
func (s *Session) Vtable(concrete, dyn *host.Ty) ir.Vtable {
	concrete = s.oracles.NormalizeErasingRegions(concrete)
	dyn = s.oracles.NormalizeErasingRegions(dyn)
	if dyn == nil || dyn.Kind != host.TyDynamic {
		fatalf(FatalPrecondition, "unsizing %s to %s, which is not a trait object", concrete, dyn)
	}
	vt := ir.Vtable{
		Name:    string(s.names.VtableName(concrete, dyn)),
		TraitID: string(s.RecordTrait(dyn)),
		Items:   []ir.VtableEntry{},
	}
	principal, ok := dyn.Principal()
	if !ok {
		return vt
	}
	args := append(host.TypeArgs(concrete), principal.Substs...)
	for _, e := range s.vtableEntries(dyn) {
		if !e.Present {
			continue
		}
		vt.Items = append(vt.Items, ir.VtableEntry{
			ItemID: string(s.names.DefName(e.Method)),
			DefID:  string(s.ResolveAndRecord(e.Method, args, host.UsageVtable)),
		})
	}
	return vt
}
