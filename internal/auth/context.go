package auth

import "context"

type contextKey struct{}

// Context is the resolved identity of a request: who is calling and which
// household scopes their data. HouseholdID is 0 for users who have not
// joined a household yet.
type Context struct {
	UserID      int64
	Username    string
	HouseholdID int64
}

func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (Context, bool) {
	ac, ok := ctx.Value(contextKey{}).(Context)
	return ac, ok
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

func HouseholdID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.HouseholdID
}
