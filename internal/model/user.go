package model

// User roles.
const (
	RoleUser     = "user"
	RoleOperator = "operator"
)

// User represents an account in the users collection. PasswordHash is
// the bcrypt hash of the password and is never serialized in API
// responses.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

// ValidRole reports whether the role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleOperator
}

// Document returns the storage representation of the user. The
// password hash is stored under "password".
func (u *User) Document() map[string]any {
	return map[string]any{
		"username": u.Username,
		"email":    u.Email,
		"name":     u.Name,
		"role":     u.Role,
		"password": u.PasswordHash,
	}
}

// UserFromDocument reconstructs a user from its storage document.
func UserFromDocument(id string, doc map[string]any) *User {
	return &User{
		ID:           id,
		Username:     docString(doc, "username"),
		Email:        docString(doc, "email"),
		Name:         docString(doc, "name"),
		Role:         docString(doc, "role"),
		PasswordHash: docString(doc, "password"),
	}
}

func docString(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}
