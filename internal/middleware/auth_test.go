package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/okarpenko/staybase/internal/auth"
	"github.com/okarpenko/staybase/internal/model"
	"github.com/okarpenko/staybase/internal/store"
)

func newGateDirectory(t *testing.T, users ...model.User) *auth.Directory {
	t.Helper()

	dir := auth.NewDirectory(store.NewMemoryStore(), zap.NewNop())
	for _, u := range users {
		if _, err := dir.Create(context.Background(), &u); err != nil {
			t.Fatalf("creating test user: %v", err)
		}
	}

	return dir
}

func gateHash(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	return string(hash)
}

// identityProbe records whether the gate let the request through and
// what identity it attached.
func identityProbe(called *bool, id **auth.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		got, _ := auth.FromContext(r.Context())
		*id = got

		w.WriteHeader(http.StatusOK)
	})
}

func gateField(t *testing.T, w *httptest.ResponseRecorder, key string) string {
	t.Helper()

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}

	return body[key]
}

func TestBasicAuthGate(t *testing.T) {
	t.Parallel()

	dir := newGateDirectory(t, model.User{
		Username:     "admin",
		Role:         model.RoleUser,
		PasswordHash: gateHash(t, "secretpw"),
	})
	gate := BasicAuth(auth.NewBasicAuthenticator(dir, zap.NewNop()), zap.NewNop())

	t.Run("missing credentials challenge", func(t *testing.T) {
		t.Parallel()

		var called bool
		var id *auth.Identity
		w := httptest.NewRecorder()

		gate(identityProbe(&called, &id)).ServeHTTP(w,
			httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil))

		if called {
			t.Error("handler reached without credentials")
		}
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if got := w.Header().Get("WWW-Authenticate"); got != `Basic realm="Secure Area"` {
			t.Errorf("unexpected challenge %q", got)
		}
		if got := gateField(t, w, "msg"); got != "Authorization required" {
			t.Errorf("unexpected body msg %q", got)
		}
	})

	t.Run("bad credentials get no challenge", func(t *testing.T) {
		t.Parallel()

		var called bool
		var id *auth.Identity
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
		r.SetBasicAuth("admin", "wrongpw")

		gate(identityProbe(&called, &id)).ServeHTTP(w, r)

		if called {
			t.Error("handler reached with bad credentials")
		}
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if got := w.Header().Get("WWW-Authenticate"); got != "" {
			t.Errorf("expected no challenge, got %q", got)
		}
		if got := gateField(t, w, "msg"); got != "Authorization failed" {
			t.Errorf("unexpected body msg %q", got)
		}
	})

	t.Run("valid credentials pass identity through", func(t *testing.T) {
		t.Parallel()

		var called bool
		var id *auth.Identity
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
		r.SetBasicAuth("admin", "secretpw")

		gate(identityProbe(&called, &id)).ServeHTTP(w, r)

		if !called {
			t.Fatal("handler not reached with valid credentials")
		}
		if id == nil || id.Username != "admin" {
			t.Errorf("expected admin identity in context, got %+v", id)
		}
	})
}

func TestOperatorAuthGate(t *testing.T) {
	t.Parallel()

	dir := newGateDirectory(t,
		model.User{Username: "op@example.com", Role: model.RoleOperator},
		model.User{Username: "u@example.com", Role: model.RoleUser},
	)
	tokens := auth.NewTokenAuthenticator(dir, "test-signing-secret", time.Hour, zap.NewNop())
	gate := OperatorAuth(tokens, zap.NewNop())

	issue := func(t *testing.T, username string) string {
		t.Helper()

		user, err := dir.FindByUsername(context.Background(), username)
		if err != nil {
			t.Fatalf("looking up %q: %v", username, err)
		}

		token, err := tokens.Issue(user)
		if err != nil {
			t.Fatalf("issuing token: %v", err)
		}

		return token
	}

	run := func(token string) (*httptest.ResponseRecorder, bool, *auth.Identity) {
		var called bool
		var id *auth.Identity
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/hotels", nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}

		gate(identityProbe(&called, &id)).ServeHTTP(w, r)

		return w, called, id
	}

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()

		w, called, _ := run("")
		if called {
			t.Error("handler reached without token")
		}
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if got := gateField(t, w, "message"); got != "Authentication required" {
			t.Errorf("unexpected body message %q", got)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()

		w, called, _ := run("not.a.token")
		if called {
			t.Error("handler reached with garbage token")
		}
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if got := gateField(t, w, "message"); got != "Invalid token" {
			t.Errorf("unexpected body message %q", got)
		}
	})

	t.Run("token for deleted user", func(t *testing.T) {
		t.Parallel()

		ghost := &model.User{ID: "00000000-0000-0000-0000-000000000000"}
		token, err := tokens.Issue(ghost)
		if err != nil {
			t.Fatalf("issuing token: %v", err)
		}

		w, called, _ := run(token)
		if called {
			t.Error("handler reached for deleted user")
		}
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("non-operator role", func(t *testing.T) {
		t.Parallel()

		w, called, _ := run(issue(t, "u@example.com"))
		if called {
			t.Error("handler reached for non-operator")
		}
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
		if got := gateField(t, w, "message"); got != "Operator access required" {
			t.Errorf("unexpected body message %q", got)
		}
	})

	t.Run("operator passes through", func(t *testing.T) {
		t.Parallel()

		w, called, id := run(issue(t, "op@example.com"))
		if !called {
			t.Fatalf("handler not reached for operator: %d %s", w.Code, w.Body.String())
		}
		if id == nil || id.User == nil || id.User.Role != model.RoleOperator {
			t.Errorf("expected operator identity in context, got %+v", id)
		}
	})
}
