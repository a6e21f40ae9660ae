package identity

import (
	"context"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

// Resolver maps an authenticated caller's credential to a stable user ID.
// Registration, confirmation and password-recovery flows live with whatever
// service implements this; the gateway only consumes the resolution.
type Resolver interface {
	ResolveUserID(ctx context.Context, credential string) (string, error)
}

// User is a local account record.
type User struct {
	ID       string
	Username string
	PassHash string // bcrypt
	Role     string
}

// UserStore looks up local accounts for login.
type UserStore interface {
	Lookup(ctx context.Context, username string) (User, error)
}
