package authz

import "dobtasks/internal/models"

// ScopeKind classifies how much of a collection an actor may see.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeDepartment
	ScopeAll
)

// Scope is the visibility boundary computed for an actor. Repositories
// translate it into WHERE clauses so no handler can enumerate past it.
type Scope struct {
	Kind         ScopeKind
	DepartmentID int64
}

// TaskScope computes which tasks an actor may see on the management surface:
// admins and superusers see everything, a manager with a department sees the
// tasks assigned to users of that department, everyone else sees nothing.
func TaskScope(actor Actor) Scope {
	if actor.IsAdmin() {
		return Scope{Kind: ScopeAll}
	}
	if actor.Role == models.RoleManager && actor.DepartmentID != nil {
		return Scope{Kind: ScopeDepartment, DepartmentID: *actor.DepartmentID}
	}
	return Scope{Kind: ScopeNone}
}

// UserScope computes which accounts an actor may see. The rule mirrors
// TaskScope, filtering on the account's own department.
func UserScope(actor Actor) Scope {
	if actor.IsAdmin() {
		return Scope{Kind: ScopeAll}
	}
	if actor.Role == models.RoleManager && actor.DepartmentID != nil {
		return Scope{Kind: ScopeDepartment, DepartmentID: *actor.DepartmentID}
	}
	return Scope{Kind: ScopeNone}
}

// AssigneeScope restricts the foreign-key choices offered when picking a
// task assignee: a manager may only assign within their own department.
func AssigneeScope(actor Actor) Scope {
	return UserScope(actor)
}

// FieldPermissions marks which task fields the actor may write. A field
// left editable=false must be reverted to the stored value on save, not
// rejected with an error.
type FieldPermissions struct {
	Priority bool
}

// TaskFieldPermissions computes per-field editability for an existing task.
// The one lock: if the task was assigned by an admin, a manager may read but
// never write its priority. Every mutation entry point (single edit, bulk
// edit) must consult this same function.
func TaskFieldPermissions(actor Actor, task *models.Task) FieldPermissions {
	p := FieldPermissions{Priority: true}
	if task == nil {
		return p
	}
	if actor.Role == models.RoleManager && !actor.IsSuperuser && task.AssignedByRole == models.RoleAdmin {
		p.Priority = false
	}
	return p
}

// InScope reports whether a task already loaded from the store falls inside
// the actor's visibility boundary.
func InScope(s Scope, task *models.Task) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeDepartment:
		return task.AssigneeDepartmentID != nil && *task.AssigneeDepartmentID == s.DepartmentID
	}
	return false
}
