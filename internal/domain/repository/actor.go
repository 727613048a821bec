package repository

import "context"

type ctxKey string

// ActorKey is the context key for the username writes are attributed to.
const ActorKey ctxKey = "actor"

// WithActor attributes writes made with ctx to username.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ActorKey, username)
}

// ActorFrom returns the username set by WithActor, or fallback.
func ActorFrom(ctx context.Context, fallback string) string {
	if name, ok := ctx.Value(ActorKey).(string); ok && name != "" {
		return name
	}
	return fallback
}
