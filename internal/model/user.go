package model

import (
	"context"
	"strings"
)

// UserContext is either Authenticated or Anonymous. Anonymous sessions see
// demo data and never write.
type UserContext interface {
	userContext()
}

type Authenticated struct {
	ID string
}

type Anonymous struct{}

func (Authenticated) userContext() {}
func (Anonymous) userContext()     {}

// UserFromID maps a blank id to Anonymous.
func UserFromID(id string) UserContext {
	if strings.TrimSpace(id) == "" {
		return Anonymous{}
	}
	return Authenticated{ID: id}
}

// UserID returns the id of an authenticated user and false otherwise.
func UserID(u UserContext) (string, bool) {
	if a, ok := u.(Authenticated); ok {
		return a.ID, true
	}
	return "", false
}

const DemoUser = "demo"

// AuditName is the name usage is attributed to.
func AuditName(u UserContext) string {
	if id, ok := UserID(u); ok {
		return id
	}
	return DemoUser
}

type userKey struct{}

func WithUser(ctx context.Context, u UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns Anonymous when ctx carries no user.
func UserFrom(ctx context.Context) UserContext {
	if u, ok := ctx.Value(userKey{}).(UserContext); ok {
		return u
	}
	return Anonymous{}
}
