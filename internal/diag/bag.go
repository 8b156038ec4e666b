package diag

import (
	"math"
	"slices"
	"sync"

	"fortio.org/safecast"
)

// Bag collects diagnostics up to a limit. It is safe for concurrent use.
type Bag struct {
	mu      sync.Mutex
	items   []Diagnostic
	limit   uint16
	dropped int
}

// NewBag returns a bag holding at most max diagnostics; larger limits are
// clamped to 65535.
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil {
		limit = math.MaxUint16
	}
	return &Bag{items: make([]Diagnostic, 0, min(int(limit), 64)), limit: limit}
}

// Add stores d unless the bag is full, and reports whether it did.
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= int(b.limit) {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Dropped counts diagnostics refused because the bag was full.
func (b *Bag) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *Bag) HasErrors() bool { return b.count(SevError) > 0 }

func (b *Bag) HasWarnings() bool { return b.count(SevWarning) > 0 }

// count returns how many diagnostics are at least sev.
func (b *Bag) count(sev Severity) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= sev {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a copy of the diagnostics in insertion order.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

// Sorted returns a copy ordered by Less.
func (b *Bag) Sorted() []Diagnostic {
	out := b.Items()
	slices.SortStableFunc(out, compare)
	return out
}
