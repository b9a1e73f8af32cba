package auth

import (
	"context"

	"github.com/coreybb/dietlog/models"
)

type contextKey struct{}

// WithUser returns a copy of ctx carrying the resolved session user.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(contextKey{}).(models.User)
	return user, ok
}
