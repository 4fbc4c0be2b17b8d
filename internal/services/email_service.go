package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"dobtasks/internal/models"
)

type EmailService interface {
	SendTaskAssignedEmail(to string, task *models.Task) error
	SendDeadlineReminderEmail(to string, task *models.Task) error
	SendNewPasswordEmail(to, fullName, newPassword string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendTaskAssignedEmail(to string, task *models.Task) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("New task assigned: %s", task.Title))

	body := fmt.Sprintf(`
		<h3>You have been assigned a task</h3>
		<p><strong>%s</strong></p>
		<p>Priority: %s<br>Deadline: %s</p>
		<p>%s</p>
		<p>Regards,<br>DOB Task Manager</p>
	`, task.Title, task.Priority, task.Deadline.Format("2006-01-02"), task.Description)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: task assigned email: %v", ErrDelivery, err)
	}
	return nil
}

func (s *emailService) SendDeadlineReminderEmail(to string, task *models.Task) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Reminder: Task '%s' is due tomorrow!", task.Title))

	name := task.AssigneeName
	if name == "" {
		name = to
	}
	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>This is a reminder that your task <strong>%s</strong> is due tomorrow (%s).<br>
		Current Status: %s</p>
		<p>Please ensure it is completed on time.</p>
		<p>Regards,<br>DOB Task Manager</p>
	`, name, task.Title, task.Deadline.Format("2006-01-02"), task.Status.Label())

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: deadline reminder email: %v", ErrDelivery, err)
	}
	return nil
}

func (s *emailService) SendNewPasswordEmail(to, fullName, newPassword string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Account Password Reset")

	name := fullName
	if name == "" {
		name = to
	}
	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your password has been reset. Use the following credentials to sign in:</p>
		<p>Email: <strong>%s</strong><br>Password: <strong>%s</strong></p>
		<p>Please change this password after signing in.</p>
		<p>Regards,<br>DOB Task Manager</p>
	`, name, to, newPassword)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: password reset email: %v", ErrDelivery, err)
	}
	return nil
}
