package session

import "context"

// Principal identifies the actor performing an operation. It is passed
// explicitly through the request context; there is no ambient current
// user.
type Principal struct {
	Actor string
}

type contextKey struct{}

// WithPrincipal returns a context carrying the given principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext extracts the principal from ctx. The zero principal is
// returned when none was set (e.g. background jobs).
func FromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(contextKey{}).(Principal)
	return p
}
