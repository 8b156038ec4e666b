package ir

// Literal is the rendered leaf form of a constant.
type Literal interface {
	literal()
}

// BitsKind is the kind tag of an unsigned-rendered scalar.
type BitsKind string

const (
	BitsBool  BitsKind = "bool"
	BitsChar  BitsKind = "char"
	BitsUsize BitsKind = "usize"
	BitsUint  BitsKind = "uint"
)

type (
	// IntLit is a sign-extended signed integer.
	IntLit struct {
		Isize bool   `json:"-"`
		Size  uint8  `json:"size"`
		Val   string `json:"val"`
	}
	// BitsLit renders the raw bits of bool, char and unsigned scalars.
	BitsLit struct {
		Kind BitsKind `json:"-"`
		Size uint8    `json:"size"`
		Val  string   `json:"val"`
	}
	FloatLit struct {
		Size uint8  `json:"size"`
		Val  string `json:"val"`
	}
	StrLit struct {
		Val ByteList `json:"val"`
	}
	RawPtrLit struct {
		Val string `json:"val"`
	}
	FnDefLit struct {
		DefID  string       `json:"def_id"`
		Substs []GenericArg `json:"substs"`
	}
	ZstLit       struct{}
	StaticRefLit struct {
		DefID string `json:"def_id"`
	}
)

func (IntLit) literal()       {}
func (BitsLit) literal()      {}
func (FloatLit) literal()     {}
func (StrLit) literal()       {}
func (RawPtrLit) literal()    {}
func (FnDefLit) literal()     {}
func (ZstLit) literal()       {}
func (StaticRefLit) literal() {}

func (l IntLit) MarshalJSON() ([]byte, error) {
	type plain IntLit
	kind := "int"
	if l.Isize {
		kind = "isize"
	}
	return tagged(kind, plain(l))
}

func (l BitsLit) MarshalJSON() ([]byte, error) {
	type plain BitsLit
	return tagged(string(l.Kind), plain(l))
}

func (l FloatLit) MarshalJSON() ([]byte, error) {
	type plain FloatLit
	return tagged("float", plain(l))
}

func (l StrLit) MarshalJSON() ([]byte, error) {
	type plain StrLit
	if l.Val == nil {
		l.Val = ByteList{}
	}
	return tagged("str", plain(l))
}

func (l RawPtrLit) MarshalJSON() ([]byte, error) {
	type plain RawPtrLit
	return tagged("raw_ptr", plain(l))
}

func (l FnDefLit) MarshalJSON() ([]byte, error) {
	type plain FnDefLit
	l.Substs = nonNilArgs(l.Substs)
	return tagged("fndef", plain(l))
}

func (ZstLit) MarshalJSON() ([]byte, error) { return tagged("zst", struct{}{}) }

func (l StaticRefLit) MarshalJSON() ([]byte, error) {
	type plain StaticRefLit
	return tagged("static_ref", plain(l))
}

// Initializer names the item an unevaluated constant comes from.
type Initializer struct {
	DefID  string       `json:"def_id"`
	Substs []GenericArg `json:"substs"`
}

// Const is a lowered constant. Rendered is absent when the value has no leaf
// form.
type Const struct {
	Ty          TypeID       `json:"ty"`
	Initializer *Initializer `json:"initializer,omitempty"`
	Rendered    Literal      `json:"rendered,omitempty"`
}

func (c Const) MarshalJSON() ([]byte, error) {
	type plain Const
	if c.Initializer != nil && c.Initializer.Substs == nil {
		init := *c.Initializer
		init.Substs = NoSubsts
		c.Initializer = &init
	}
	return tagged("Const", plain(c))
}
