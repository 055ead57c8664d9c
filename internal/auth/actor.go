package auth

import "context"

// Actor is the identity performing a request.
type Actor struct {
	ID          int64
	Role        string
	IsModerator bool
}

type ctxKey struct{}

// WithActor stores the resolved actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// ActorFrom returns the actor resolved for the request, if any.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}
