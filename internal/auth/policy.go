package auth

import "github.com/okarpenko/staybase/internal/model"

// Capability names a privileged operation that the authorization
// policy can grant.
type Capability string

// Capabilities gated by the policy.
const (
	// CapabilityListArticles guards the unfiltered article listing.
	CapabilityListArticles Capability = "articles:list"
	// CapabilityManageHotels guards hotel create/update/delete.
	CapabilityManageHotels Capability = "hotels:manage"
)

// adminUsername is the account allowed to list all articles.
const adminUsername = "admin"

// Authorize is the single authorization policy: it decides whether the
// identity may exercise the capability. Returns ErrPermissionDenied on
// deny.
func Authorize(id *Identity, c Capability) error {
	if id == nil {
		return ErrPermissionDenied
	}

	switch c {
	case CapabilityListArticles:
		if id.Username == adminUsername {
			return nil
		}
	case CapabilityManageHotels:
		if id.User != nil && id.User.Role == model.RoleOperator {
			return nil
		}
	}

	return ErrPermissionDenied
}
