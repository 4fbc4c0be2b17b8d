package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dobtasks/internal/models"
)

func TestResetByEmailUnknownAddress(t *testing.T) {
	users := newFakeUserRepo()
	emails := newFakeEmail()
	svc := NewPasswordResetService(users, emails, NewAuthService())

	found, err := svc.ResetByEmail("nobody@corp.test")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, emails.sent, "nothing is sent for unknown addresses")
	assert.Empty(t, users.passwords, "nothing is changed either")
}

func TestResetByEmailReplacesCredentialAndMails(t *testing.T) {
	users := newFakeUserRepo()
	auth := NewAuthService()
	oldHash, err := auth.HashPassword("old-secret")
	require.NoError(t, err)
	u := users.add(models.User{FullName: "Wes", Email: "wes@corp.test", PasswordHash: oldHash, Role: models.RoleUser, IsActive: true})

	emails := newFakeEmail()
	svc := NewPasswordResetService(users, emails, auth)

	found, err := svc.ResetByEmail("Wes@Corp.Test")
	require.NoError(t, err)
	assert.True(t, found)

	require.Len(t, emails.sent, 1)
	mail := emails.sent[0]
	assert.Equal(t, "password", mail.kind)
	assert.Equal(t, "wes@corp.test", mail.to)
	assert.Len(t, mail.password, 8)
	for _, c := range mail.password {
		assert.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", string(c))
	}

	// the stored hash matches the mailed password, not the old one
	stored, _ := users.GetByID(u.ID)
	assert.NoError(t, auth.CheckPassword(stored.PasswordHash, mail.password))
	assert.Error(t, auth.CheckPassword(stored.PasswordHash, "old-secret"))
}

func TestResetByEmailMailFailureStillSucceeds(t *testing.T) {
	users := newFakeUserRepo()
	auth := NewAuthService()
	oldHash, _ := auth.HashPassword("old-secret")
	u := users.add(models.User{FullName: "Wes", Email: "wes@corp.test", PasswordHash: oldHash, Role: models.RoleUser, IsActive: true})

	emails := newFakeEmail()
	emails.failTo["wes@corp.test"] = true
	svc := NewPasswordResetService(users, emails, auth)

	found, err := svc.ResetByEmail("wes@corp.test")
	require.NoError(t, err, "delivery failure is logged, not surfaced")
	assert.True(t, found)

	// the credential is rotated regardless
	stored, _ := users.GetByID(u.ID)
	assert.Error(t, auth.CheckPassword(stored.PasswordHash, "old-secret"))
}
