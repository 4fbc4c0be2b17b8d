package services

import (
	"log"
	"strings"

	"dobtasks/internal/repositories"
	"dobtasks/internal/utils"
)

// PasswordResetService implements the ad-hoc reset: no token and no expiry.
// A fresh password is generated, stored and mailed in plaintext on request.
type PasswordResetService interface {
	// ResetByEmail returns found=false when no account matches; nothing is
	// changed in that case.
	ResetByEmail(email string) (found bool, err error)
}

type passwordResetService struct {
	users  repositories.UserRepository
	emails EmailService
	auth   AuthService
}

func NewPasswordResetService(users repositories.UserRepository, emails EmailService, auth AuthService) PasswordResetService {
	return &passwordResetService{users: users, emails: emails, auth: auth}
}

func (s *passwordResetService) ResetByEmail(email string) (bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return false, nil
	}
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return false, err
	}
	if user == nil {
		log.Printf("[password-reset] no user for %q", email)
		return false, nil
	}

	newPassword, err := utils.GeneratePassword(8)
	if err != nil {
		return true, err
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return true, err
	}
	if err := s.users.UpdatePassword(user.ID, hash); err != nil {
		return true, err
	}
	log.Printf("[password-reset] credential replaced for userID=%d", user.ID)

	if s.emails != nil {
		if err := s.emails.SendNewPasswordEmail(user.Email, user.FullName, newPassword); err != nil {
			// the credential is already rotated; warn but do not fail
			log.Printf("[password-reset] failed to mail new password to %s: %v", user.Email, err)
		}
	}
	return true, nil
}
