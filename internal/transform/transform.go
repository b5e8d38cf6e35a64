// Package transform runs one phase of the resolution for one designation.
//
// A transformer checks the phase's preconditions, walks the designation
// from the file root applying the phase algorithm to the path classes and
// the target's subtree, stamps what it visited, checks the postconditions
// and finally bumps the path classes whose members all reached the phase.
package transform

import (
	"context"

	"lazyres/internal/algo"
	"lazyres/internal/decl"
	"lazyres/internal/designation"
	"lazyres/internal/invariant"
	"lazyres/internal/phase"
)

// Transformer applies one phase to one designation.
type Transformer interface {
	Transform(ctx context.Context) error
}

// Config is what every transformer of a request shares.
type Config struct {
	Env        *algo.Env
	Algorithms algo.Set
	// Strict enables the designation consistency check before each step.
	Strict bool
	// Visit, when set, observes every declaration an algorithm is applied to.
	Visit func(p phase.Phase, d decl.Decl)
}

// New returns the transformer of phase p. Plugin and non-lazy phases have
// none.
func New(p phase.Phase, des *designation.Designation, cfg *Config) (Transformer, error) {
	if !p.IsLazy() || p.IsPlugin() {
		return nil, invariant.New(invariant.NonLazyPhase, des.Target, p, "no lazy transformer for %s", p)
	}
	t := &lazy{phase: p, des: des, cfg: cfg}
	t.alg, _ = cfg.Algorithms.For(p)
	switch p {
	case phase.SuperTypes:
		t.pre = func() error { return fileAt(des, phase.Imports) }
		t.fast = t.aliasFastPath
	case phase.SealedClassInheritors:
		t.alg = nil
	case phase.Types:
		t.pre = func() error { return des.EnsurePathPhase(phase.SuperTypes) }
		t.after = t.bumpPathInitializers
	case phase.Status:
		t.pre = func() error { return des.EnsureDesignation(phase.Types) }
	case phase.Contracts:
		t.pre = func() error { return des.EnsureDesignation(phase.Status) }
	case phase.ImplicitTypesBodyResolve:
		t.pre = func() error { return callableOrClassesAt(des, phase.Contracts, phase.Status) }
		t.fast = t.skipResolvedReturnType
	case phase.BodyResolve:
		t.pre = func() error { return callableOrClassesAt(des, phase.Contracts, phase.Status) }
		t.fast = t.forceStampAlias
	}
	return t, nil
}

func fileAt(des *designation.Designation, p phase.Phase) error {
	if got := des.File.Phase(); got < p {
		return invariant.New(invariant.PhaseOrder, des.File, p, "file is at %s, expected at least %s", got, p)
	}
	return nil
}

func callableOrClassesAt(des *designation.Designation, callable, classes phase.Phase) error {
	if err := des.EnsurePhaseForClasses(classes); err != nil {
		return err
	}
	if decl.IsCallable(des.Target) {
		return des.EnsureTargetPhase(callable)
	}
	return nil
}
