package resolve

import (
	"errors"

	"lazyres/internal/diag"
	"lazyres/internal/invariant"
	"lazyres/internal/source"
)

// InvariantError is the failure raised when the tree or a designation
// breaks the resolver's assumptions. It is never retried.
type InvariantError = invariant.Error

// Diagnostic converts a resolve error into the diagnostic interactive
// tooling should show. Cancellation has none.
func Diagnostic(err error) (diag.Diagnostic, bool) {
	if err == nil || errors.Is(err, ErrCancelled) {
		return diag.Diagnostic{}, false
	}
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Diagnostic(), true
	}
	return diag.NewError(diag.ResInternalError, source.Span{}, err.Error()), true
}

// report forwards a failed request to the configured reporter.
func (r *Resolver) report(err error) {
	if d, ok := Diagnostic(err); ok {
		diag.Emit(r.reporter, d)
	}
}
