package authctx

import (
	"context"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
)

type contextKey string

const userContextKey contextKey = "currentUser"

type CurrentUser struct {
	ID       int64
	Email    string
	FullName string
	Role     domain.UserRole
}

// HasAnyRole reports whether the user carries one of the given roles.
func (u CurrentUser) HasAnyRole(roles ...domain.UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}
