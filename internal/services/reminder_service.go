package services

import (
	"context"
	"log"
	"time"

	"dobtasks/internal/models"
	"dobtasks/internal/repositories"
)

// ReminderService runs the deadline-proximity sweep: one email per open task
// due tomorrow. It is triggered on demand from the management surface, not
// by an in-process scheduler.
type ReminderService interface {
	SendDeadlineReminders(ctx context.Context, now time.Time) (sent int, err error)
}

type reminderService struct {
	tasks  repositories.TaskRepository
	emails EmailService
}

func NewReminderService(tasks repositories.TaskRepository, emails EmailService) ReminderService {
	return &reminderService{tasks: tasks, emails: emails}
}

func (s *reminderService) SendDeadlineReminders(ctx context.Context, now time.Time) (int, error) {
	y, m, d := now.AddDate(0, 0, 1).Date()
	tomorrow := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	due, err := s.tasks.ListDueOn(ctx, tomorrow, []models.TaskStatus{
		models.StatusPending, models.StatusInProgress,
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		task := &due[i]
		if task.AssigneeEmail == "" {
			log.Printf("[reminders][skip] task=%d assignee=%d has no email", task.ID, task.AssignedToID)
			continue
		}
		// a failed send counts as not-sent; the sweep keeps going
		if err := s.emails.SendDeadlineReminderEmail(task.AssigneeEmail, task); err != nil {
			log.Printf("[reminders][err] task=%d to=%s: %v", task.ID, task.AssigneeEmail, err)
			continue
		}
		sent++
	}
	log.Printf("[reminders][ok] due=%d sent=%d", len(due), sent)
	return sent, nil
}
