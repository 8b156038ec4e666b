package lower

import (
	"fmt"

	"fortio.org/safecast"

	"tyjson/internal/ir"
)

// TypeTable maps normalized host types to sequential ids. An id is reserved
// before the type's structure is lowered, so a parent may get a smaller id
// than its children.
type TypeTable struct {
	index   map[string]ir.TypeID
	entries []ir.TyEntry
}

// NewTypeTable creates an empty table.
func NewTypeTable() *TypeTable {
	return &TypeTable{index: make(map[string]ir.TypeID, 64)}
}

// Lookup returns the id of a structural key.
func (tt *TypeTable) Lookup(key string) (ir.TypeID, bool) {
	id, ok := tt.index[key]
	return id, ok
}

func (tt *TypeTable) reserve(key string) ir.TypeID {
	n, err := safecast.Conv[uint32](len(tt.entries))
	if err != nil {
		panic(fmt.Errorf("lower: len(types) overflow: %w", err))
	}
	id := ir.TypeID(n)
	tt.entries = append(tt.entries, ir.TyEntry{Name: id})
	tt.index[key] = id
	return id
}

func (tt *TypeTable) fill(id ir.TypeID, node ir.TypeNode) {
	tt.entries[id].Ty = node
}

// Node returns the lowered node of id. It is nil while the id's structure is
// still being lowered.
func (tt *TypeTable) Node(id ir.TypeID) (ir.TypeNode, bool) {
	if int(id) >= len(tt.entries) {
		return nil, false
	}
	return tt.entries[id].Ty, true
}

// Len returns the number of interned types.
func (tt *TypeTable) Len() int { return len(tt.entries) }

// Entries returns a copy of the table in id order.
func (tt *TypeTable) Entries() []ir.TyEntry {
	out := make([]ir.TyEntry, len(tt.entries))
	copy(out, tt.entries)
	return out
}
