package host

import (
	"fmt"
	"strings"
)

// DefID identifies a definition inside a Program.
type DefID uint32

// NoDefID marks the absence of a definition.
const NoDefID DefID = 0

// IsValid reports whether the id refers to a definition.
func (id DefID) IsValid() bool { return id != NoDefID }

// CrateID identifies a crate (module) inside a Program.
type CrateID uint16

// DefKind classifies definitions.
type DefKind uint8

const (
	DefInvalid DefKind = iota
	DefFn
	DefStruct
	DefEnum
	DefUnion
	DefVariant
	DefField
	DefTrait
	DefTraitMethod
	DefImpl
	DefAssocTy
	DefConst
	DefStatic
	DefClosure
	DefForeign
	DefOpaque
)

func (k DefKind) String() string {
	switch k {
	case DefFn:
		return "fn"
	case DefStruct:
		return "struct"
	case DefEnum:
		return "enum"
	case DefUnion:
		return "union"
	case DefVariant:
		return "variant"
	case DefField:
		return "field"
	case DefTrait:
		return "trait"
	case DefTraitMethod:
		return "trait-method"
	case DefImpl:
		return "impl"
	case DefAssocTy:
		return "assoc-type"
	case DefConst:
		return "const"
	case DefStatic:
		return "static"
	case DefClosure:
		return "closure"
	case DefForeign:
		return "foreign"
	case DefOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("DefKind(%d)", k)
	}
}

// Crate is an owning module.
type Crate struct {
	Name string
	// Disambiguator is a hex fingerprint distinguishing crates that share a name.
	Disambiguator string
}

// Def is a single definition.
type Def struct {
	ID     DefID
	Crate  CrateID
	Kind   DefKind
	Parent DefID
	Name   string
	// Index disambiguates siblings with the same name under the same parent.
	Index uint32
}

// DefPath is what the definition lookup oracle reports for a definition.
type DefPath struct {
	Crate         string
	Disambiguator string
	// Path is rendered as ::seg[n]::seg[n] without the crate prefix.
	Path string
}

// String renders the path with its crate for diagnostics.
func (p DefPath) String() string {
	return p.Crate + p.Path
}

// renderPath walks parents up to the crate root.
func (p *Program) renderPath(id DefID) string {
	var segs []string
	for cur := id; cur.IsValid(); {
		d := p.def(cur)
		if d == nil {
			break
		}
		segs = append(segs, fmt.Sprintf("::%s[%d]", d.Name, d.Index))
		cur = d.Parent
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteString(segs[i])
	}
	return b.String()
}
