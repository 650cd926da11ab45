package auth

import "context"

type ctxKey struct{}

// WithUserName attaches the authenticated username to ctx.
func WithUserName(ctx context.Context, userName string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userName)
}

// UserNameFromContext returns the username set by the request gate.
func UserNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ctxKey{}).(string)
	return name, ok && name != ""
}
