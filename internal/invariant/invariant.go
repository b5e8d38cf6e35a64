// Package invariant defines the error raised when the resolver's internal
// assumptions about the declaration tree do not hold.
//
// Invariant errors are programming or data errors; callers never retry them.
package invariant

import (
	"errors"
	"fmt"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
	"lazyres/internal/phase"
	"lazyres/internal/source"
)

// Kind classifies an invariant violation.
type Kind uint8

const (
	KindUnknown Kind = iota
	// MissingFile: a declaration has no owning file.
	MissingFile
	// LocalDesignation: a local declaration reached the designated loop.
	LocalDesignation
	// PhaseOrder: a precondition on a path or target phase failed.
	PhaseOrder
	// DesignationNotPassed: the scoped walk never visited the target.
	DesignationNotPassed
	// Postcondition: a declaration lacks the data its phase promises.
	Postcondition
	// NonLazyPhase: a transformer was requested for a phase without one.
	NonLazyPhase
	// Inconsistent: the designation path does not match the tree.
	Inconsistent
)

var kindNames = [...]string{
	KindUnknown:          "unknown",
	MissingFile:          "missing file",
	LocalDesignation:     "local designation",
	PhaseOrder:           "phase order",
	DesignationNotPassed: "designation not passed",
	Postcondition:        "postcondition",
	NonLazyPhase:         "non-lazy phase",
	Inconsistent:         "inconsistent designation",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Code maps the kind to its diagnostic code.
func (k Kind) Code() diag.Code {
	switch k {
	case MissingFile:
		return diag.ResMissingFile
	case LocalDesignation:
		return diag.ResLocalDesignation
	case PhaseOrder:
		return diag.ResPhaseOrder
	case DesignationNotPassed:
		return diag.ResDesignationNotPassed
	case Postcondition:
		return diag.ResPostcondition
	case NonLazyPhase:
		return diag.ResNonLazyPhase
	case Inconsistent:
		return diag.ResInconsistentTree
	}
	return diag.ResInternalError
}

// Error is an invariant violation.
type Error struct {
	Kind  Kind
	Decl  decl.Decl
	File  *decl.File
	Phase phase.Phase
	Msg   string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	if e.Decl != nil {
		msg += fmt.Sprintf(" (%s, phase %s)", decl.Describe(e.Decl), e.Decl.Head().Phase())
	}
	return msg
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: k})
// works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an Error.
func New(kind Kind, d decl.Decl, p phase.Phase, format string, args ...any) *Error {
	e := &Error{Kind: kind, Decl: d, Phase: p, Msg: fmt.Sprintf(format, args...)}
	if d != nil {
		e.File, _ = decl.ContainingFile(d)
	}
	return e
}

// KindOf returns the kind of the invariant error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindUnknown, false
}

// Diagnostic converts the violation into an internal-error diagnostic.
func (e *Error) Diagnostic() diag.Diagnostic {
	d := diag.NewError(e.Kind.Code(), e.span(), e.Error())
	if e.File != nil && e.Decl != e.File {
		d = d.WithNote(e.File.Span, "in file of package "+e.File.Package)
	}
	return d
}

func (e *Error) span() (sp source.Span) {
	if e.Decl != nil {
		return e.Decl.Head().Span
	}
	return sp
}
