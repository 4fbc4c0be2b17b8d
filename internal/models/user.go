package models

import "time"

// Role defines the access level of a user.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// User represents an account. Email doubles as the login name.
type User struct {
	ID           int64  `json:"id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never serialized
	Role         Role   `json:"role"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	DobID        string `json:"dob_id"`
	IsActive     bool   `json:"is_active"`
	IsStaff      bool   `json:"is_staff"`
	IsSuperuser  bool   `json:"is_superuser"`

	// Optional Telegram mirror channel for task notifications.
	TelegramChatID *int64 `json:"-"`
	NotifyTelegram bool   `json:"-"`

	// refresh-token storage
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// UserFilter defines the available parameters for listing users.
type UserFilter struct {
	Role         *Role
	DepartmentID *int64
	IsActive     *bool
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}
