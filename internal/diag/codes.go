package diag

import (
	"fmt"
)

type Code uint16

const (
	// never emitted; zero value
	UnknownCode Code = 0

	// Lowering
	LowerInfo               Code = 1000
	LowerUnresolvedInstance Code = 1001
	LowerUnsupportedType    Code = 1002
	LowerUnsupportedConst   Code = 1003
	LowerConstEval          Code = 1004
	LowerCloneShim          Code = 1005
	LowerMissingAdt         Code = 1006
	LowerUnknownPredicate   Code = 1007
	LowerMissingBody        Code = 1008
	LowerFatal              Code = 1009

	// Manifest
	ManInfo           Code = 2000
	ManSyntax         Code = 2001
	ManUnknownKey     Code = 2002
	ManUnknownItem    Code = 2003
	ManBadType        Code = 2004
	ManDuplicateItem  Code = 2005
	ManBadValue       Code = 2006
	ManMissingRoot    Code = 2007
	ManUnknownVersion Code = 2008

	// I/O
	IOLoadFileError  Code = 3001
	IOWriteFileError Code = 3002

	// Cache
	CacheInfo    Code = 4000
	CacheCorrupt Code = 4001
	CacheLocked  Code = 4002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		LowerInfo:               "Lowering information",
		LowerUnresolvedInstance: "Instance could not be resolved",
		LowerUnsupportedType:    "Type kind has no IR representation",
		LowerUnsupportedConst:   "Constant kind has no IR representation",
		LowerConstEval:          "Constant evaluation failed",
		LowerCloneShim:          "Clone shim for unsupported component type",
		LowerMissingAdt:         "ADT definition not found",
		LowerUnknownPredicate:   "Predicate kind has no IR representation",
		LowerMissingBody:        "Reachable instance has no body",
		LowerFatal:              "Lowering aborted",
		ManInfo:                 "Manifest information",
		ManSyntax:               "Manifest syntax error",
		ManUnknownKey:           "Unknown manifest key",
		ManUnknownItem:          "Unknown item reference",
		ManBadType:              "Malformed type expression",
		ManDuplicateItem:        "Duplicate item",
		ManBadValue:             "Malformed constant value",
		ManMissingRoot:          "Manifest declares no roots",
		ManUnknownVersion:       "Unsupported manifest version",
		IOLoadFileError:         "I/O load file error",
		IOWriteFileError:        "I/O write file error",
		CacheInfo:               "Cache information",
		CacheCorrupt:            "Cache entry is corrupt",
		CacheLocked:             "Cache directory is locked",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("MAN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CCH%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
