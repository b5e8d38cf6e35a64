// Package diag defines the diagnostic model shared by the resolver, the
// semantic algorithms and the CLI.
//
// Diagnostic is the central record: severity, a stable numeric Code, a short
// message, a primary source.Span and optional notes. Producers emit through
// a Reporter so that storage stays pluggable: BagReporter collects into a
// Bag, SyncReporter makes any reporter safe for concurrent resolution runs,
// DedupReporter drops repeats when the same declaration is resolved twice.
//
// Two families of codes exist. Semantic codes (SEM) describe problems in the
// resolved program, such as an unresolved supertype. Resolver codes (RES)
// describe internal invariant violations of the lazy resolver; they are
// surfaced as internal errors tied to a declaration, never as silent wrong
// answers.
package diag
