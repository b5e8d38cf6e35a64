// Package algo holds the per-phase semantic algorithms.
//
// An algorithm computes the payload of one declaration for one phase and
// nothing else: which declarations it is applied to is decided by the walk
// that drives it (see internal/walk and internal/designation). Everything
// an algorithm needs is passed in Env; there is no ambient session.
package algo

import (
	"context"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
	"lazyres/internal/phase"
	"lazyres/internal/source"
	"lazyres/internal/symbols"
)

// Algorithm computes one phase for one declaration.
type Algorithm interface {
	Apply(ctx context.Context, env *Env, d decl.Decl) error
}

// Func adapts a function to Algorithm.
type Func func(ctx context.Context, env *Env, d decl.Decl) error

func (f Func) Apply(ctx context.Context, env *Env, d decl.Decl) error { return f(ctx, env, d) }

// FileAlgorithm computes file-wide data (imports, file annotations).
type FileAlgorithm interface {
	ApplyFile(ctx context.Context, env *Env, f *decl.File) error
}

// FileFunc adapts a function to FileAlgorithm.
type FileFunc func(ctx context.Context, env *Env, f *decl.File) error

func (f FileFunc) ApplyFile(ctx context.Context, env *Env, file *decl.File) error {
	return f(ctx, env, file)
}

// ReturnTypeCalculator resolves another declaration far enough for its
// return type to be known. The resolver implements it.
type ReturnTypeCalculator interface {
	ResolveReturnType(ctx context.Context, d decl.Decl) error
}

// ReturnTypeFunc adapts a function to ReturnTypeCalculator.
type ReturnTypeFunc func(ctx context.Context, d decl.Decl) error

func (f ReturnTypeFunc) ResolveReturnType(ctx context.Context, d decl.Decl) error { return f(ctx, d) }

// Env is the environment of one resolution request.
type Env struct {
	Symbols     symbols.Provider
	Scopes      *ScopeSession
	Computation *ComputationSession
	ReturnTypes ReturnTypeCalculator
	Reporter    diag.Reporter
}

// Set is one algorithm per phase.
type Set struct {
	Imports         FileAlgorithm
	FileAnnotations FileAlgorithm
	SuperTypes      Algorithm
	Types           Algorithm
	Status          Algorithm
	Contracts       Algorithm
	ImplicitTypes   Algorithm
	Body            Algorithm
}

// Default returns the reference algorithms.
func Default() Set {
	return Set{
		Imports:         FileFunc(resolveImports),
		FileAnnotations: FileFunc(resolveFileAnnotations),
		SuperTypes:      Func(resolveSuperTypes),
		Types:           Func(resolveTypes),
		Status:          Func(resolveStatus),
		Contracts:       Func(resolveContracts),
		ImplicitTypes:   Func(resolveImplicitTypes),
		Body:            Func(resolveBody),
	}
}

// For returns the declaration algorithm of a lazy phase. Phases without a
// per-declaration algorithm (plugin phases, sealed inheritors, non-lazy
// phases) report false.
func (s Set) For(p phase.Phase) (Algorithm, bool) {
	var a Algorithm
	switch p {
	case phase.SuperTypes:
		a = s.SuperTypes
	case phase.Types:
		a = s.Types
	case phase.Status:
		a = s.Status
	case phase.Contracts:
		a = s.Contracts
	case phase.ImplicitTypesBodyResolve:
		a = s.ImplicitTypes
	case phase.BodyResolve:
		a = s.Body
	}
	return a, a != nil
}

// WithDefaults fills nil entries from Default.
func (s Set) WithDefaults() Set {
	def := Default()
	if s.Imports == nil {
		s.Imports = def.Imports
	}
	if s.FileAnnotations == nil {
		s.FileAnnotations = def.FileAnnotations
	}
	if s.SuperTypes == nil {
		s.SuperTypes = def.SuperTypes
	}
	if s.Types == nil {
		s.Types = def.Types
	}
	if s.Status == nil {
		s.Status = def.Status
	}
	if s.Contracts == nil {
		s.Contracts = def.Contracts
	}
	if s.ImplicitTypes == nil {
		s.ImplicitTypes = def.ImplicitTypes
	}
	if s.Body == nil {
		s.Body = def.Body
	}
	return s
}

func (e *Env) report(code diag.Code, sp source.Span, msg string) {
	if e == nil || e.Reporter == nil {
		return
	}
	diag.ReportError(e.Reporter, code, sp, msg).Emit()
}

func (e *Env) warn(code diag.Code, sp source.Span, msg string) {
	if e == nil || e.Reporter == nil {
		return
	}
	diag.ReportWarning(e.Reporter, code, sp, msg).Emit()
}
