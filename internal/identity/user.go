package identity

import (
	"context"
	"strings"
)

// User is the identity attached to a session.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Anonymous   bool   `json:"anonymous"`
}

// NameOr returns the display name, or fallback when none was provided.
func (u User) NameOr(fallback string) string {
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name
	}
	return fallback
}

// AnonymousUser returns an anonymous session user with the given id.
func AnonymousUser(id string) User {
	return User{ID: id, Anonymous: true}
}

type userKey struct{}

// WithUser stores the user in ctx.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// FromContext returns the user stored in ctx, if any.
func FromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey{}).(User)
	return user, ok
}
