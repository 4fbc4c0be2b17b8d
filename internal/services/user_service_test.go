package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dobtasks/internal/models"
	"dobtasks/internal/repositories"
)

func rolep(r models.Role) *models.Role { return &r }
func boolp(b bool) *bool               { return &b }

func TestRegisterPendingByDefault(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, NewAuthService())

	u := &models.User{FullName: "New Person", Email: "New.Person@Corp.Test", Role: models.RoleUser, DobID: "D-100"}
	require.NoError(t, svc.Register(u, "secret123", false))

	stored, err := users.GetByID(u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive, "accounts start pending")
	assert.False(t, stored.IsStaff)
	assert.Equal(t, "new.person@corp.test", stored.Email)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
}

func TestRegisterAutoApprove(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, NewAuthService())

	u := &models.User{FullName: "Fast Track", Email: "fast@corp.test", Role: models.RoleUser, DobID: "D-101"}
	require.NoError(t, svc.Register(u, "secret123", true))

	stored, _ := users.GetByID(u.ID)
	assert.True(t, stored.IsActive)
	assert.True(t, u.IsActive, "the in-memory copy reflects activation too")
}

func TestRegisterManagerGetsStaff(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, NewAuthService())

	u := &models.User{FullName: "Lead Person", Email: "lead@corp.test", Role: models.RoleManager, DobID: "D-102"}
	require.NoError(t, svc.Register(u, "secret123", false))

	stored, _ := users.GetByID(u.ID)
	assert.True(t, stored.IsStaff, "managers get management access on approval")
	assert.False(t, stored.IsActive)
}

func TestRegisterRejectsAdminAndUnknownRoles(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, NewAuthService())

	err := svc.Register(&models.User{Email: "a@corp.test", Role: models.RoleAdmin, DobID: "D-1"}, "secret123", false)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	err = svc.Register(&models.User{Email: "b@corp.test", Role: "WIZARD", DobID: "D-2"}, "secret123", false)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	assert.Empty(t, users.users)
}

func TestRegisterDuplicate(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, NewAuthService())

	first := &models.User{FullName: "One", Email: "dup@corp.test", Role: models.RoleUser, DobID: "D-200"}
	require.NoError(t, svc.Register(first, "secret123", false))

	err := svc.Register(&models.User{FullName: "Two", Email: "dup@corp.test", Role: models.RoleUser, DobID: "D-201"}, "secret123", false)
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestUserUpdateRoleChangeIsAdminOnly(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, NewAuthService())

	target := users.add(models.User{FullName: "Wes", Email: "wes@corp.test", Role: models.RoleUser, DepartmentID: int64p(1), IsActive: true, DobID: "D-3"})

	_, err := svc.Update(managerActor(), target.ID, &UserUpdate{Role: rolep(models.RoleManager)})
	assert.ErrorIs(t, err, ErrForbidden, "managers may not grant roles")

	updated, err := svc.Update(adminActor(), target.ID, &UserUpdate{Role: rolep(models.RoleManager)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, updated.Role)
	assert.True(t, updated.IsStaff, "staff flag follows the role")
}

func TestUserUpdateApprovalIsAdminOnly(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, NewAuthService())

	pending := users.add(models.User{FullName: "Pending", Email: "p@corp.test", Role: models.RoleUser, DepartmentID: int64p(1), IsActive: false, DobID: "D-4"})

	_, err := svc.Update(managerActor(), pending.ID, &UserUpdate{IsActive: boolp(true)})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(adminActor(), pending.ID, &UserUpdate{IsActive: boolp(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)

	// a manager can still edit harmless fields inside their department
	name := "Pending Renamed"
	updated, err = svc.Update(managerActor(), pending.ID, &UserUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
}

func TestUserUpdateOutOfScope(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, NewAuthService())

	outside := users.add(models.User{FullName: "Olga", Email: "olga@corp.test", Role: models.RoleUser, DepartmentID: int64p(2), IsActive: true, DobID: "D-5"})

	name := "Renamed"
	_, err := svc.Update(managerActor(), outside.ID, &UserUpdate{FullName: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(managerActor(), outside.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDeleteIsAdminOnly(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, NewAuthService())

	target := users.add(models.User{FullName: "Wes", Email: "wes@corp.test", Role: models.RoleUser, DepartmentID: int64p(1), IsActive: true, DobID: "D-6"})

	assert.ErrorIs(t, svc.Delete(managerActor(), target.ID), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(adminActor(), 999), ErrNotFound)
	require.NoError(t, svc.Delete(adminActor(), target.ID))

	gone, err := users.GetByID(target.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestUserListScoped(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, NewAuthService())

	users.add(models.User{FullName: "In", Email: "in@corp.test", Role: models.RoleUser, DepartmentID: int64p(1), IsActive: true, DobID: "D-7"})
	users.add(models.User{FullName: "Out", Email: "out@corp.test", Role: models.RoleUser, DepartmentID: int64p(2), IsActive: true, DobID: "D-8"})

	all, err := svc.List(adminActor(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := svc.List(managerActor(), models.UserFilter{})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "In", scoped[0].FullName)

	none, err := svc.List(workerActor(), models.UserFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
