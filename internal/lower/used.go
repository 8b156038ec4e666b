package lower

import (
	"tyjson/internal/host"
	"tyjson/internal/naming"
)

// Used is one entry of a used set.
type Used[T any] struct {
	Name  naming.StableName
	Value T
}

// UsedSet is an append-only set keyed by stable name, in insertion order.
type UsedSet[T any] struct {
	index map[naming.StableName]int
	items []Used[T]
}

// Insert adds v under name. It reports false when name is already present; the
// stored value is not replaced.
func (u *UsedSet[T]) Insert(name naming.StableName, v T) bool {
	if u.index == nil {
		u.index = make(map[naming.StableName]int)
	}
	if _, ok := u.index[name]; ok {
		return false
	}
	u.index[name] = len(u.items)
	u.items = append(u.items, Used[T]{Name: name, Value: v})
	return true
}

// Contains reports whether name was inserted.
func (u *UsedSet[T]) Contains(name naming.StableName) bool {
	_, ok := u.index[name]
	return ok
}

// Len returns the number of entries.
func (u *UsedSet[T]) Len() int { return len(u.items) }

// From returns a copy of the entries inserted at position start or later.
func (u *UsedSet[T]) From(start int) []Used[T] {
	if start >= len(u.items) {
		return nil
	}
	if start < 0 {
		start = 0
	}
	out := make([]Used[T], len(u.items)-start)
	copy(out, u.items[start:])
	return out
}

// UsedSets are the reachable instances, trait instances and ADT instances of
// a session. Traits are keyed by the trait object type they were seen in.
type UsedSets struct {
	Instances UsedSet[host.Instance]
	Traits    UsedSet[*host.Ty]
	Adts      UsedSet[host.AdtInstance]
}

// Size is the total number of entries across all sets. It only grows.
func (u *UsedSets) Size() int {
	return u.Instances.Len() + u.Traits.Len() + u.Adts.Len()
}
