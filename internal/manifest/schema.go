package manifest

// SchemaVersion is the only manifest version understood.
const SchemaVersion = 1

type fileConfig struct {
	Version  int           `toml:"version" yaml:"version"`
	Roots    []string      `toml:"roots" yaml:"roots"`
	Crates   []crateDecl   `toml:"crate" yaml:"crate"`
	Traits   []traitDecl   `toml:"trait" yaml:"trait"`
	Adts     []adtDecl     `toml:"adt" yaml:"adt"`
	Fns      []fnDecl      `toml:"fn" yaml:"fn"`
	Closures []closureDecl `toml:"closure" yaml:"closure"`
	Impls    []implDecl    `toml:"impl" yaml:"impl"`
	Consts   []constDecl   `toml:"const" yaml:"const"`
	Promoted []promoDecl   `toml:"promoted" yaml:"promoted"`
	Statics  []staticDecl  `toml:"static" yaml:"static"`
}

type crateDecl struct {
	Name          string `toml:"name" yaml:"name"`
	Disambiguator string `toml:"disambiguator" yaml:"disambiguator"`
}

type traitDecl struct {
	Path    string       `toml:"path" yaml:"path"`
	Params  []string     `toml:"params" yaml:"params"`
	Lang    string       `toml:"lang" yaml:"lang"`
	Auto    bool         `toml:"auto" yaml:"auto"`
	Assoc   []string     `toml:"assoc" yaml:"assoc"`
	Methods []methodDecl `toml:"method" yaml:"method"`
	Clauses []clauseDecl `toml:"clause" yaml:"clause"`
}

type methodDecl struct {
	Name          string    `toml:"name" yaml:"name"`
	Params        []string  `toml:"params" yaml:"params"`
	Inputs        []string  `toml:"inputs" yaml:"inputs"`
	Output        string    `toml:"output" yaml:"output"`
	Abi           string    `toml:"abi" yaml:"abi"`
	RequiresSized bool      `toml:"requires_sized" yaml:"requires_sized"`
	ByValueSelf   bool      `toml:"by_value_self" yaml:"by_value_self"`
	Default       bool      `toml:"default" yaml:"default"`
	Uses          []useDecl `toml:"uses" yaml:"uses"`
}

type clauseDecl struct {
	Kind  string   `toml:"kind" yaml:"kind"`
	Trait string   `toml:"trait" yaml:"trait"`
	Assoc string   `toml:"assoc" yaml:"assoc"`
	Args  []string `toml:"args" yaml:"args"`
	Ty    string   `toml:"ty" yaml:"ty"`
}

type adtDecl struct {
	Path     string        `toml:"path" yaml:"path"`
	Kind     string        `toml:"kind" yaml:"kind"`
	Params   []string      `toml:"params" yaml:"params"`
	Fields   []fieldDecl   `toml:"fields" yaml:"fields"`
	Variants []variantDecl `toml:"variant" yaml:"variant"`
}

type variantDecl struct {
	Name   string      `toml:"name" yaml:"name"`
	Ctor   string      `toml:"ctor" yaml:"ctor"`
	Discr  string      `toml:"discr" yaml:"discr"`
	Fields []fieldDecl `toml:"fields" yaml:"fields"`
}

type fieldDecl struct {
	Name string `toml:"name" yaml:"name"`
	Ty   string `toml:"ty" yaml:"ty"`
}

type fnDecl struct {
	Path      string    `toml:"path" yaml:"path"`
	Params    []string  `toml:"params" yaml:"params"`
	Inputs    []string  `toml:"inputs" yaml:"inputs"`
	Output    string    `toml:"output" yaml:"output"`
	Abi       string    `toml:"abi" yaml:"abi"`
	Intrinsic bool      `toml:"intrinsic" yaml:"intrinsic"`
	Lang      string    `toml:"lang" yaml:"lang"`
	Uses      []useDecl `toml:"uses" yaml:"uses"`
}

type closureDecl struct {
	Parent string    `toml:"parent" yaml:"parent"`
	Kind   string    `toml:"kind" yaml:"kind"`
	Upvars []string  `toml:"upvars" yaml:"upvars"`
	Inputs []string  `toml:"inputs" yaml:"inputs"`
	Output string    `toml:"output" yaml:"output"`
	Uses   []useDecl `toml:"uses" yaml:"uses"`
}

type implDecl struct {
	Crate   string            `toml:"crate" yaml:"crate"`
	Trait   string            `toml:"trait" yaml:"trait"`
	Params  []string          `toml:"params" yaml:"params"`
	Self    string            `toml:"self" yaml:"self"`
	Args    []string          `toml:"args" yaml:"args"`
	Assoc   map[string]string `toml:"assoc" yaml:"assoc"`
	Methods []implMethodDecl  `toml:"method" yaml:"method"`
}

type implMethodDecl struct {
	Name   string    `toml:"name" yaml:"name"`
	Params []string  `toml:"params" yaml:"params"`
	Uses   []useDecl `toml:"uses" yaml:"uses"`
}

type constDecl struct {
	Path  string  `toml:"path" yaml:"path"`
	Ty    string  `toml:"ty" yaml:"ty"`
	Value *string `toml:"value" yaml:"value"`
}

type promoDecl struct {
	Owner string `toml:"owner" yaml:"owner"`
	Ty    string `toml:"ty" yaml:"ty"`
	Value string `toml:"value" yaml:"value"`
}

type staticDecl struct {
	Path  string `toml:"path" yaml:"path"`
	Ty    string `toml:"ty" yaml:"ty"`
	Bytes string `toml:"bytes" yaml:"bytes"`
}

// useDecl is one entry of a body. Which fields apply depends on Kind:
// call/fnptr use Callee and Args, type and drop use Ty, unsize uses Ty and
// To, const uses either Const (+Args, Promoted) or Ty and Value.
type useDecl struct {
	Kind     string   `toml:"kind" yaml:"kind"`
	Callee   string   `toml:"callee" yaml:"callee"`
	Args     []string `toml:"args" yaml:"args"`
	Ty       string   `toml:"ty" yaml:"ty"`
	To       string   `toml:"to" yaml:"to"`
	Const    string   `toml:"const" yaml:"const"`
	Promoted *uint32  `toml:"promoted" yaml:"promoted"`
	Value    string   `toml:"value" yaml:"value"`
}
