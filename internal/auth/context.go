package auth

import "context"

type contextKey struct{}

// SessionContext carries the resolved session through a request. It is the
// only way handlers learn who is calling; there is no ambient current-user
// state anywhere in the process.
type SessionContext struct {
	SessionID int64
	AccountID string
	Name      string
	Email     string
	Picture   string
	Provider  string
}

func WithSession(ctx context.Context, sc SessionContext) context.Context {
	return context.WithValue(ctx, contextKey{}, sc)
}

func FromContext(ctx context.Context) (SessionContext, bool) {
	sc, ok := ctx.Value(contextKey{}).(SessionContext)
	return sc, ok
}

// AccountID returns the calling account's id, or "" when unauthenticated.
func AccountID(ctx context.Context) string {
	sc, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return sc.AccountID
}
