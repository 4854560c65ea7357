package models

type UserRole string

const (
	RoleStudent  UserRole = "student"
	RoleLecturer UserRole = "lecturer"
	RoleAdmin    UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleAdmin:
		return true
	}
	return false
}

// CanManageTests reports whether the role may author tests and launch runs.
func (r UserRole) CanManageTests() bool {
	return r == RoleLecturer || r == RoleAdmin
}

// Identity is the authenticated caller. Users themselves are owned by the identity provider.
type Identity struct {
	UserID   string   `json:"user_id" validate:"required,max=255"`
	Username string   `json:"username"`
	Role     UserRole `json:"role" validate:"required,user_role"`
}
