package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"dobtasks/internal/authz"
	"dobtasks/internal/models"
	"dobtasks/internal/repositories"
)

// UserUpdate carries the fields of a management edit to an account.
type UserUpdate struct {
	FullName     *string
	Role         *models.Role
	DepartmentID *int64
	IsActive     *bool
	DobID        *string

	TelegramChatID *int64
	NotifyTelegram *bool
}

type UserService interface {
	// Register creates a pending account per the public signup form.
	// autoApprove is read from the settings store by the caller and passed
	// in; it is never ambient state.
	Register(user *models.User, password string, autoApprove bool) error

	GetByID(id int64) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// Get is the scoped single-record read used by the management surface.
	Get(actor authz.Actor, id int64) (*models.User, error)
	List(actor authz.Actor, filter models.UserFilter) ([]*models.User, error)
	Update(actor authz.Actor, id int64, upd *UserUpdate) (*models.User, error)
	Delete(actor authz.Actor, id int64) error

	// refresh-token session helpers
	UpdateRefresh(userID int64, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	ClearRefresh(userID int64) error
	GetByRefreshToken(token string) (*models.User, error)
}

type userService struct {
	repo        repositories.UserRepository
	authService AuthService
}

func NewUserService(repo repositories.UserRepository, authService AuthService) UserService {
	return &userService{repo: repo, authService: authService}
}

func (s *userService) Register(user *models.User, password string, autoApprove bool) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("password is required")
	}
	// the public form never offers ADMIN
	if user.Role == models.RoleAdmin || !user.Role.Valid() {
		return ErrRoleNotAllowed
	}

	hash, err := s.authService.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	user.IsActive = false
	user.IsStaff = user.Role == models.RoleManager

	if err := s.repo.Create(user); err != nil {
		return err
	}
	log.Printf("[user][register] created id=%d role=%s staff=%v", user.ID, user.Role, user.IsStaff)

	if autoApprove {
		if err := s.repo.SetActive(user.ID, true); err != nil {
			return err
		}
		user.IsActive = true
		log.Printf("[user][register] auto-approved id=%d", user.ID)
	}
	return nil
}

func (s *userService) GetByID(id int64) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(strings.TrimSpace(strings.ToLower(email)))
}

func (s *userService) Get(actor authz.Actor, id int64) (*models.User, error) {
	target, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	// out-of-scope reads surface as not-found
	if target == nil || !s.inScope(actor, target) {
		return nil, ErrNotFound
	}
	return target, nil
}

func (s *userService) List(actor authz.Actor, filter models.UserFilter) ([]*models.User, error) {
	return s.repo.List(filter, authz.UserScope(actor))
}

func (s *userService) Update(actor authz.Actor, id int64, upd *UserUpdate) (*models.User, error) {
	target, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if target == nil || !s.inScope(actor, target) {
		return nil, ErrNotFound
	}

	if upd.FullName != nil {
		target.FullName = *upd.FullName
	}
	if upd.DobID != nil {
		target.DobID = *upd.DobID
	}
	if upd.DepartmentID != nil {
		target.DepartmentID = upd.DepartmentID
	}
	if upd.TelegramChatID != nil {
		target.TelegramChatID = upd.TelegramChatID
	}
	if upd.NotifyTelegram != nil {
		target.NotifyTelegram = *upd.NotifyTelegram
	}
	if upd.Role != nil && *upd.Role != target.Role {
		// role assignment, including granting ADMIN, is admin-only
		if !actor.IsAdmin() {
			return nil, ErrForbidden
		}
		if !upd.Role.Valid() {
			return nil, ErrRoleNotAllowed
		}
		target.Role = *upd.Role
		target.IsStaff = target.Role == models.RoleManager || target.Role == models.RoleAdmin
	}
	if upd.IsActive != nil && *upd.IsActive != target.IsActive {
		// approval of pending accounts is admin-only
		if !actor.IsAdmin() {
			return nil, ErrForbidden
		}
		target.IsActive = *upd.IsActive
	}

	if err := s.repo.Update(target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *userService) Delete(actor authz.Actor, id int64) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	target, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotFound
	}
	// assigned tasks cascade away with the account
	return s.repo.Delete(id)
}

func (s *userService) inScope(actor authz.Actor, target *models.User) bool {
	scope := authz.UserScope(actor)
	switch scope.Kind {
	case authz.ScopeAll:
		return true
	case authz.ScopeDepartment:
		return target.DepartmentID != nil && *target.DepartmentID == scope.DepartmentID
	}
	return false
}

func (s *userService) UpdateRefresh(userID int64, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(userID, token, expiresAt)
}

func (s *userService) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	return s.repo.RotateRefresh(oldToken, newToken, newExpiresAt)
}

func (s *userService) ClearRefresh(userID int64) error {
	return s.repo.ClearRefresh(userID)
}

func (s *userService) GetByRefreshToken(token string) (*models.User, error) {
	return s.repo.GetByRefreshToken(token)
}
