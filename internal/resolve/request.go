package resolve

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RequestOption tunes one resolve call.
type RequestOption func(*request)

// Cancellable lets the call be abandoned when its context is done: while
// waiting for the file lock and before every phase step. Without it the
// context's cancellation is ignored.
func Cancellable() RequestOption {
	return func(q *request) { q.cancellable = true }
}

// OnAir resolves a designated target that is attached to, but not part
// of, its container. Only ResolveDesignated honors it.
func OnAir() RequestOption {
	return func(q *request) { q.onAir = true }
}

type request struct {
	id          string
	cancellable bool
	onAir       bool
}

func newRequest(opts []RequestOption) *request {
	q := &request{id: uuid.NewString()}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// ErrCancelled is returned when a cancellable request is abandoned.
// errors.Is(err, context.Canceled) holds for it as well.
var ErrCancelled error = cancelledError{}

type cancelledError struct{}

func (cancelledError) Error() string { return "resolution cancelled" }

func (cancelledError) Is(target error) bool { return target == context.Canceled }

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}

// checkCancelled is the poll point of cancellable requests.
func (q *request) checkCancelled(ctx context.Context) error {
	if q.cancellable && ctx.Err() != nil {
		return cancelled(ctx)
	}
	return nil
}
