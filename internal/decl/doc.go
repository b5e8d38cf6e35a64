// Package decl models the declaration tree the lazy resolver works on.
//
// A tree is rooted at a *File. Containers (files and classes) own child
// declarations; callables own sub-elements (parameters, type parameters,
// accessors) whose phase follows their owner. Declarations nested in a body
// are local: they are not addressable from the file and are resolved only as
// part of their non-local container's body.
//
// Declarations are a closed set of variants. Code that must treat every kind
// switches on the concrete type; the unexported marker method keeps the set
// closed to this package.
//
// The phase stamp and the phase-dependent payload (resolved type references,
// status, contracts, bodies) are written only under the owning file's
// resolution lock. The stamp itself is atomic so advisory reads stay race-free.
package decl
