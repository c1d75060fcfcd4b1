package auth

import (
	"errors"
	"testing"

	"github.com/okarpenko/staybase/internal/model"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	operator := &model.User{Username: "op", Role: model.RoleOperator}
	plain := &model.User{Username: "someone", Role: model.RoleUser}

	tests := []struct {
		name       string
		identity   *Identity
		capability Capability
		wantAllow  bool
	}{
		{
			name:       "admin may list articles",
			identity:   &Identity{Username: "admin", User: plain},
			capability: CapabilityListArticles,
			wantAllow:  true,
		},
		{
			name:       "non-admin may not list articles",
			identity:   &Identity{Username: "someone", User: plain},
			capability: CapabilityListArticles,
		},
		{
			name:       "operator may manage hotels",
			identity:   &Identity{Username: "op", User: operator},
			capability: CapabilityManageHotels,
			wantAllow:  true,
		},
		{
			name:       "plain user may not manage hotels",
			identity:   &Identity{Username: "someone", User: plain},
			capability: CapabilityManageHotels,
		},
		{
			name:       "identity without user record may not manage hotels",
			identity:   &Identity{Username: "admin"},
			capability: CapabilityManageHotels,
		},
		{
			name:       "nil identity denied",
			capability: CapabilityListArticles,
		},
		{
			name:       "unknown capability denied",
			identity:   &Identity{Username: "admin", User: operator},
			capability: Capability("articles:purge"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Authorize(tt.identity, tt.capability)

			if tt.wantAllow {
				if err != nil {
					t.Fatalf("expected allow, got %v", err)
				}
				return
			}

			if !errors.Is(err, ErrPermissionDenied) {
				t.Fatalf("expected ErrPermissionDenied, got %v", err)
			}
		})
	}
}
