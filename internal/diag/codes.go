package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Семантические: результаты алгоритмов фаз
	SemaInfo                 Code = 3000
	SemaUnresolvedImport     Code = 3001
	SemaUnresolvedType       Code = 3002
	SemaUnresolvedReference  Code = 3003
	SemaBadSupertype         Code = 3004
	SemaCyclicAlias          Code = 3005
	SemaImplicitTypeCycle    Code = 3006
	SemaInvalidContract      Code = 3007
	SemaUnresolvedAnnotation Code = 3008
	SemaConflictingModality  Code = 3009

	// I/O
	IOLoadFileError Code = 4001
	IOBadTreeFile   Code = 4002

	// Project / configuration
	ProjInfo          Code = 5000
	ProjBadConfig     Code = 5001
	ProjDuplicateDecl Code = 5002
	ProjImportCycle   Code = 5003

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// Internal resolver invariants
	ResInternalError        Code = 7000
	ResMissingFile          Code = 7001
	ResLocalDesignation     Code = 7002
	ResPhaseOrder           Code = 7003
	ResDesignationNotPassed Code = 7004
	ResPostcondition        Code = 7005
	ResNonLazyPhase         Code = 7006
	ResInconsistentTree     Code = 7007
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	SemaInfo:                 "Semantic information",
	SemaUnresolvedImport:     "Unresolved import",
	SemaUnresolvedType:       "Unresolved type reference",
	SemaUnresolvedReference:  "Unresolved reference",
	SemaBadSupertype:         "Invalid supertype",
	SemaCyclicAlias:          "Cyclic type alias",
	SemaImplicitTypeCycle:    "Type checking has run into a recursive problem",
	SemaInvalidContract:      "Invalid contract clause",
	SemaUnresolvedAnnotation: "Unresolved annotation",
	SemaConflictingModality:  "Conflicting modality",
	IOLoadFileError:          "Failed to load tree file",
	IOBadTreeFile:            "Malformed tree file",
	ProjInfo:                 "Project information",
	ProjBadConfig:            "Invalid configuration",
	ProjDuplicateDecl:        "Duplicate declaration",
	ProjImportCycle:          "Packages import each other",
	ObsInfo:                  "Observability information",
	ObsTimings:               "Resolution timings",
	ResInternalError:         "Internal resolver error",
	ResMissingFile:           "Declaration has no containing file",
	ResLocalDesignation:      "Local designation cannot be resolved",
	ResPhaseOrder:            "Resolution phase out of order",
	ResDesignationNotPassed:  "Designation was not passed",
	ResPostcondition:         "Phase postcondition failed",
	ResNonLazyPhase:          "Phase has no lazy transformer",
	ResInconsistentTree:      "Designation does not match the tree",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("RES%04d", ic)
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

// Internal reports whether the code describes a resolver invariant violation.
func (c Code) Internal() bool {
	return c >= ResInternalError && c < 8000
}
