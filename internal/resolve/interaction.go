package resolve

import (
	"context"

	"github.com/google/uuid"
)

type interactionKey struct{}

// WithInteractionID tags ctx with an interaction id for log correlation.
func WithInteractionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, interactionKey{}, id)
}

// InteractionID returns the id carried by ctx, or a fresh one.
func InteractionID(ctx context.Context) string {
	if id, ok := ctx.Value(interactionKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// ensureInteractionID tags ctx with a fresh id unless it already carries one,
// so every log line and downstream call of an interaction shares it.
func ensureInteractionID(ctx context.Context) (context.Context, string) {
	if id, ok := ctx.Value(interactionKey{}).(string); ok && id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithInteractionID(ctx, id), id
}
