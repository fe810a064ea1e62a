package context

import "context"

// Anonymous is the subject of unauthenticated requests.
const Anonymous int64 = 0

type contextKeySubject struct{}

// GetSubject returns the acting user id or Anonymous.
func GetSubject(ctx context.Context) int64 {
	userID, ok := ctx.Value(contextKeySubject{}).(int64)
	if !ok {
		return Anonymous
	}

	return userID
}

func WithSubject(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, contextKeySubject{}, userID)
}

func IsAuthenticated(ctx context.Context) bool {
	return GetSubject(ctx) != Anonymous
}
