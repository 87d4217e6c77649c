package auth

import (
	"context"

	"github.com/termgraph/changetrack/internal/domain"
)

type contextKey string

const actorKey contextKey = "actor"

// ContextWithActor returns a new context carrying the authenticated actor.
func ContextWithActor(ctx context.Context, actor domain.URI) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the authenticated actor from the context, if any.
// The tracking engine itself takes the author as an explicit parameter; this
// helper serves callers that carry the actor on the request context.
func ActorFromContext(ctx context.Context) (domain.URI, bool) {
	if ctx == nil {
		return "", false
	}
	value := ctx.Value(actorKey)
	if value == nil {
		return "", false
	}
	actor, ok := value.(domain.URI)
	if !ok || actor.Empty() {
		return "", false
	}
	return actor, true
}
