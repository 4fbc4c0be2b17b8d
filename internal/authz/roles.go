package authz

import "dobtasks/internal/models"

// Actor is the authenticated user making the current request, as carried in
// the token claims. DepartmentID is nil for users outside any department.
type Actor struct {
	ID           int64
	Role         models.Role
	DepartmentID *int64
	IsSuperuser  bool
}

// IsStaff reports whether the actor may enter the management surface.
func (a Actor) IsStaff() bool {
	return a.IsSuperuser || a.Role == models.RoleAdmin || a.Role == models.RoleManager
}

// IsAdmin reports whether the actor has unrestricted visibility.
func (a Actor) IsAdmin() bool {
	return a.IsSuperuser || a.Role == models.RoleAdmin
}
