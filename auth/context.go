package auth

import (
	"context"

	"github.com/user/microblog-go/policy"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const userIDKey contextKey = "userID"

// NewContextWithUserID returns a child context carrying the authenticated
// user's id. Set by the bearer middleware.
func NewContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's id. The second return
// value is false when the request was not authenticated.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok
}

// ActorFromContext derives the policy actor for the request: the
// authenticated identity, or the anonymous actor if none.
func ActorFromContext(ctx context.Context) policy.Actor {
	if userID, ok := UserIDFromContext(ctx); ok {
		return policy.Actor{ID: userID}
	}
	return policy.Anonymous()
}
