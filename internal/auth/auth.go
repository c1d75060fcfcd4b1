// Package auth provides authentication and authorization for the API.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/okarpenko/staybase/internal/model"
)

// Identity holds the authenticated identity attached to a request.
// User carries the full record when the gate loaded one.
type Identity struct {
	Username string
	User     *model.User
}

// Authenticator validates a request and returns the authenticated
// identity.
type Authenticator interface {
	Authenticate(r *http.Request) (*Identity, error)
}

// Sentinel errors for authentication and authorization failures.
var (
	ErrNoCredentials      = errors.New("unauthenticated: no credentials provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrPermissionDenied   = errors.New("permission denied")
)

// contextKey is the type for context keys in this package.
type contextKey string

// identityKey is the context key for Identity.
const identityKey contextKey = "identity"

// FromContext retrieves the Identity from the context.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// WithIdentity stores the Identity in the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
