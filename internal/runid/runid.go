// Package runid threads the per-run correlation identifier through every
// call of one trigger invocation. The id is an explicit context value, never
// ambient state, so each asynchronous hop of a run logs the same id.
package runid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// NewContext attaches a freshly minted run id to ctx and returns both.
func NewContext(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(ctx, ctxKey{}, id), id
}

// FromContext returns the run id, or "" when the context carries none.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}
