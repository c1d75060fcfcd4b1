package auth

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// BasicAuthenticator authenticates requests using HTTP Basic
// authentication against the user directory.
type BasicAuthenticator struct {
	dir    *Directory
	logger *zap.Logger
}

// NewBasicAuthenticator creates a Basic authenticator backed by the
// given directory.
func NewBasicAuthenticator(dir *Directory, logger *zap.Logger) *BasicAuthenticator {
	return &BasicAuthenticator{
		dir:    dir,
		logger: logger,
	}
}

// Authenticate extracts Basic credentials from the request, looks up
// the user by username and verifies the password against the stored
// bcrypt hash. A request without credentials fails with
// ErrNoCredentials so the caller can emit a challenge.
func (a *BasicAuthenticator) Authenticate(r *http.Request) (*Identity, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, ErrNoCredentials
	}

	a.logger.Info("basic auth attempt", zap.String("username", username))

	user, err := a.dir.FindByUsername(r.Context(), username)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: unknown user", ErrInvalidCredentials)
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash), []byte(password),
	); err != nil {
		return nil, fmt.Errorf("%w: wrong password", ErrInvalidCredentials)
	}

	return &Identity{
		Username: username,
		User:     user,
	}, nil
}
