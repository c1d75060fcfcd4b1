package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/okarpenko/staybase/internal/model"
)

// bearerPrefix is the expected Authorization scheme for token auth.
const bearerPrefix = "Bearer "

// TokenClaims are the JWT claims carried by issued tokens. UserID is
// the internal id of the user record.
type TokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenAuthenticator issues and verifies HMAC-signed bearer tokens and
// resolves the embedded user id against the directory.
type TokenAuthenticator struct {
	dir    *Directory
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

// NewTokenAuthenticator creates a token authenticator with the given
// signing secret and token lifetime.
func NewTokenAuthenticator(dir *Directory, secret string, ttl time.Duration, logger *zap.Logger) *TokenAuthenticator {
	return &TokenAuthenticator{
		dir:    dir,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
	}
}

// Issue signs a token carrying the user's internal id.
func (a *TokenAuthenticator) Issue(user *model.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Authenticate verifies the bearer token and loads the referenced user
// record. Signature, expiry and lookup failures are all reported as
// ErrInvalidToken; only a token referencing a user that no longer
// exists yields ErrPermissionDenied. Role checks are left to
// Authorize.
func (a *TokenAuthenticator) Authenticate(r *http.Request) (*Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return nil, ErrNoCredentials
	}

	raw := strings.TrimPrefix(header, bearerPrefix)

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return a.secret, nil
	})
	if err != nil || !token.Valid {
		a.logger.Warn("token verification failed", zap.Error(err))
		return nil, ErrInvalidToken
	}

	user, err := a.dir.FindByID(r.Context(), claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPermissionDenied
		}

		a.logger.Warn("token user lookup failed", zap.Error(err))
		return nil, ErrInvalidToken
	}

	return &Identity{
		Username: user.Username,
		User:     user,
	}, nil
}
