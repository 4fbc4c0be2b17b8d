package services

import (
	"context"
	"time"

	"dobtasks/internal/authz"
	"dobtasks/internal/models"
	"dobtasks/internal/repositories"
)

// TaskSummary aggregates the tasks inside an actor's scope.
type TaskSummary struct {
	Total       int                         `json:"total"`
	ByStatus    map[models.TaskStatus]int   `json:"by_status"`
	ByPriority  map[models.TaskPriority]int `json:"by_priority"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

type ReportService struct {
	tasks repositories.TaskRepository
}

func NewReportService(tasks repositories.TaskRepository) *ReportService {
	return &ReportService{tasks: tasks}
}

// Summary counts tasks by status and priority within the actor's scope; the
// same policy evaluator that bounds the list views bounds the report.
func (s *ReportService) Summary(ctx context.Context, actor authz.Actor) (*TaskSummary, error) {
	scope := authz.TaskScope(actor)

	byStatus, err := s.tasks.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.tasks.CountByPriority(ctx, scope)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}
	return &TaskSummary{
		Total:       total,
		ByStatus:    byStatus,
		ByPriority:  byPriority,
		GeneratedAt: time.Now(),
	}, nil
}
