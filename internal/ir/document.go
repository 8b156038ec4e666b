package ir

// Use is one lowered reference made by a function body.
type Use interface {
	use()
}

type (
	CallUse struct {
		Callee string `json:"callee"`
	}
	FnPtrUse struct {
		Callee string `json:"callee"`
	}
	TypeUse struct {
		Ty TypeID `json:"ty"`
	}
	ConstUse struct {
		Const Const `json:"const"`
	}
	UnsizeUse struct {
		Ty     TypeID `json:"ty"`
		Target TypeID `json:"target"`
		Vtable string `json:"vtable"`
	}
	DropUse struct {
		Ty   TypeID `json:"ty"`
		Glue string `json:"glue"`
	}
)

func (CallUse) use()   {}
func (FnPtrUse) use()  {}
func (TypeUse) use()   {}
func (ConstUse) use()  {}
func (UnsizeUse) use() {}
func (DropUse) use()   {}

func (u CallUse) MarshalJSON() ([]byte, error) {
	type plain CallUse
	return tagged("call", plain(u))
}

func (u FnPtrUse) MarshalJSON() ([]byte, error) {
	type plain FnPtrUse
	return tagged("fnptr", plain(u))
}

func (u TypeUse) MarshalJSON() ([]byte, error) {
	type plain TypeUse
	return tagged("type", plain(u))
}

func (u ConstUse) MarshalJSON() ([]byte, error) {
	type plain ConstUse
	return tagged("const", plain(u))
}

func (u UnsizeUse) MarshalJSON() ([]byte, error) {
	type plain UnsizeUse
	return tagged("unsize", plain(u))
}

func (u DropUse) MarshalJSON() ([]byte, error) {
	type plain DropUse
	return tagged("drop", plain(u))
}

// Fn is the body of a reachable instance.
type Fn struct {
	Name   string   `json:"name"`
	Inputs []TypeID `json:"inputs"`
	Output TypeID   `json:"output"`
	Body   []Use    `json:"body"`
}

// Intrinsic pairs a reachable instance's name with its lowered form.
type Intrinsic struct {
	Name string   `json:"name"`
	Inst Instance `json:"inst"`
}

// TyEntry is one interned type.
type TyEntry struct {
	Name TypeID   `json:"name"`
	Ty   TypeNode `json:"ty"`
}

// Document is the complete lowered output of one unit.
type Document struct {
	Fns        []Fn        `json:"fns"`
	Adts       []Adt       `json:"adts"`
	Traits     []Trait     `json:"traits"`
	Vtables    []Vtable    `json:"vtables"`
	Intrinsics []Intrinsic `json:"intrinsics"`
	Tys        []TyEntry   `json:"tys"`
	Roots      []string    `json:"roots"`
}

// NewDocument returns a document whose lists marshal as [] when empty.
func NewDocument() *Document {
	return &Document{
		Fns:        []Fn{},
		Adts:       []Adt{},
		Traits:     []Trait{},
		Vtables:    []Vtable{},
		Intrinsics: []Intrinsic{},
		Tys:        []TyEntry{},
		Roots:      []string{},
	}
}
