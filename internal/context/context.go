package context

import "context"

type (
	userIDKey   struct{}
	usernameKey struct{}
)

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey{}).(int64)
	return userID, ok
}

func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey{}, username)
}

func UsernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey{}).(string)
	return username
}

func MustUserIDFromContext(ctx context.Context) int64 {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		panic("user id not found in context")
	}
	return userID
}
