package models

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Viewer identifies the caller for role-based filtering. It is passed in
// explicitly rather than read from ambient session state.
type Viewer struct {
	UserID string
	Role   Role
}

func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}
