package services

import (
	"fmt"
	"html"
	"log"

	"dobtasks/internal/models"
	"dobtasks/internal/repositories"
)

// NotificationService is the dispatcher fired after a task is created or
// reassigned. Delivery failures never roll back the task mutation; the
// returned error is ErrDelivery and handlers degrade it to a warning.
type NotificationService interface {
	TaskAssigned(task *models.Task) error
}

type notificationService struct {
	emails EmailService
	tg     *TelegramService
	users  repositories.UserRepository
}

func NewNotificationService(emails EmailService, tg *TelegramService, users repositories.UserRepository) NotificationService {
	return &notificationService{emails: emails, tg: tg, users: users}
}

func (s *notificationService) TaskAssigned(task *models.Task) error {
	if task == nil {
		return nil
	}

	// Telegram mirror is best effort only; a failure is logged inside
	// SendMessage and never surfaces.
	s.mirrorToTelegram(task)

	if task.AssigneeEmail == "" {
		log.Printf("[notify][skip] task=%d assignee=%d has no email", task.ID, task.AssignedToID)
		return nil
	}
	if err := s.emails.SendTaskAssignedEmail(task.AssigneeEmail, task); err != nil {
		log.Printf("[notify][err] task=%d to=%s: %v", task.ID, task.AssigneeEmail, err)
		return err
	}
	log.Printf("[notify][ok] task=%d to=%s", task.ID, task.AssigneeEmail)
	return nil
}

func (s *notificationService) mirrorToTelegram(task *models.Task) {
	if s.tg == nil || s.users == nil {
		return
	}
	u, err := s.users.GetByID(task.AssignedToID)
	if err != nil || u == nil {
		return
	}
	if !u.NotifyTelegram || u.TelegramChatID == nil {
		return
	}
	text := fmt.Sprintf(
		"📌 Task assigned\n• <b>%s</b>\n• Priority: <code>%s</code>\n• Deadline: <code>%s</code>",
		html.EscapeString(task.Title), task.Priority, task.Deadline.Format("2006-01-02"),
	)
	_ = s.tg.SendMessage(*u.TelegramChatID, text)
}
