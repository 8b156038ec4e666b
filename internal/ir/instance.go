package ir

// Instance is a lowered callable instance.
type Instance interface {
	instance()
}

type (
	ItemInst struct {
		DefID  string       `json:"def_id"`
		Substs []GenericArg `json:"substs"`
	}
	IntrinsicInst struct {
		DefID  string       `json:"def_id"`
		Substs []GenericArg `json:"substs"`
	}
	VtableShimInst struct {
		DefID  string       `json:"def_id"`
		Substs []GenericArg `json:"substs"`
	}
	ReifyShimInst struct {
		DefID  string       `json:"def_id"`
		Substs []GenericArg `json:"substs"`
	}
	FnPtrShimInst struct {
		DefID  string       `json:"def_id"`
		Substs []GenericArg `json:"substs"`
		Ty     TypeID       `json:"ty"`
	}
	VirtualInst struct {
		TraitID string `json:"trait_id"`
		ItemID  string `json:"item_id"`
		Index   int    `json:"index"`
	}
	ClosureOnceShimInst struct {
		CallOnce string       `json:"call_once"`
		Substs   []GenericArg `json:"substs"`
	}
	DropGlueInst struct {
		DefID  string       `json:"def_id"`
		Substs []GenericArg `json:"substs"`
		// Ty is null when the dropped type needs no glue.
		Ty *TypeID `json:"ty"`
	}
	CloneShimInst struct {
		DefID  string       `json:"def_id"`
		Substs []GenericArg `json:"substs"`
		Ty     TypeID       `json:"ty"`
		// Callees holds one entry per cloned component, null when unresolved.
		Callees []*string `json:"callees"`
	}
)

func (ItemInst) instance()            {}
func (IntrinsicInst) instance()       {}
func (VtableShimInst) instance()      {}
func (ReifyShimInst) instance()       {}
func (FnPtrShimInst) instance()       {}
func (VirtualInst) instance()         {}
func (ClosureOnceShimInst) instance() {}
func (DropGlueInst) instance()        {}
func (CloneShimInst) instance()       {}

func (i ItemInst) MarshalJSON() ([]byte, error) {
	type plain ItemInst
	i.Substs = nonNilArgs(i.Substs)
	return tagged("Item", plain(i))
}

func (i IntrinsicInst) MarshalJSON() ([]byte, error) {
	type plain IntrinsicInst
	i.Substs = nonNilArgs(i.Substs)
	return tagged("Intrinsic", plain(i))
}

func (i VtableShimInst) MarshalJSON() ([]byte, error) {
	type plain VtableShimInst
	i.Substs = nonNilArgs(i.Substs)
	return tagged("VtableShim", plain(i))
}

func (i ReifyShimInst) MarshalJSON() ([]byte, error) {
	type plain ReifyShimInst
	i.Substs = nonNilArgs(i.Substs)
	return tagged("ReifyShim", plain(i))
}

func (i FnPtrShimInst) MarshalJSON() ([]byte, error) {
	type plain FnPtrShimInst
	i.Substs = nonNilArgs(i.Substs)
	return tagged("FnPtrShim", plain(i))
}

func (i VirtualInst) MarshalJSON() ([]byte, error) {
	type plain VirtualInst
	return tagged("Virtual", plain(i))
}

func (i ClosureOnceShimInst) MarshalJSON() ([]byte, error) {
	type plain ClosureOnceShimInst
	i.Substs = nonNilArgs(i.Substs)
	return tagged("ClosureOnceShim", plain(i))
}

func (i DropGlueInst) MarshalJSON() ([]byte, error) {
	type plain DropGlueInst
	i.Substs = nonNilArgs(i.Substs)
	return tagged("DropGlue", plain(i))
}

func (i CloneShimInst) MarshalJSON() ([]byte, error) {
	type plain CloneShimInst
	i.Substs = nonNilArgs(i.Substs)
	if i.Callees == nil {
		i.Callees = []*string{}
	}
	return tagged("CloneShim", plain(i))
}
