package services

import (
	"context"
	"time"

	"dobtasks/internal/authz"
	"dobtasks/internal/models"
	"dobtasks/internal/repositories"
)

// TaskUpdate carries the fields of a management edit. Nil means "leave as
// stored". A Priority the actor may not write is silently discarded, not
// rejected.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Priority     *models.TaskPriority
	Status       *models.TaskStatus
	Deadline     *time.Time
	AssignedToID *int64
}

// TaskService defines the task business logic. Every method takes the actor
// so the policy evaluator is consulted on each entry point; nothing here can
// be reached without it.
type TaskService interface {
	Create(ctx context.Context, actor authz.Actor, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, actor authz.Actor, id int64) (*models.Task, error)
	GetAll(ctx context.Context, actor authz.Actor, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, actor authz.Actor, id int64, upd *TaskUpdate) (task *models.Task, reassigned bool, err error)
	ListOwn(ctx context.Context, actorID int64, status models.TaskStatus) ([]models.Task, error)
	RequestStatusChange(ctx context.Context, actor authz.Actor, taskID int64, to models.TaskStatus) (*models.Task, error)
}

type taskService struct {
	repo  repositories.TaskRepository
	users repositories.UserRepository
}

func NewTaskService(repo repositories.TaskRepository, users repositories.UserRepository) TaskService {
	return &taskService{repo: repo, users: users}
}

func (s *taskService) Create(ctx context.Context, actor authz.Actor, task *models.Task) (*models.Task, error) {
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}

	if err := s.checkAssignee(actor, task.AssignedToID); err != nil {
		return nil, err
	}

	// assigned_by is set exactly once, to the creating actor, if absent
	if task.AssignedByID == nil {
		id := actor.ID
		task.AssignedByID = &id
	}

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, task.ID)
}

func (s *taskService) GetByID(ctx context.Context, actor authz.Actor, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// out-of-scope reads surface as not-found, not as an error page
	if task == nil || !authz.InScope(authz.TaskScope(actor), task) {
		return nil, ErrNotFound
	}
	return task, nil
}

func (s *taskService) GetAll(ctx context.Context, actor authz.Actor, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, filter, authz.TaskScope(actor))
}

func (s *taskService) Update(ctx context.Context, actor authz.Actor, id int64, upd *TaskUpdate) (*models.Task, bool, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if current == nil || !authz.InScope(authz.TaskScope(actor), current) {
		return nil, false, ErrNotFound
	}

	update := *current
	reassigned := false

	if upd.Title != nil {
		update.Title = *upd.Title
	}
	if upd.Description != nil {
		update.Description = *upd.Description
	}
	if upd.Deadline != nil {
		update.Deadline = *upd.Deadline
	}
	if upd.Status != nil {
		// the management form writes status directly; only the
		// assignee-facing endpoint is bound to the transition table
		update.Status = *upd.Status
	}
	if upd.Priority != nil {
		// NOTE: read-then-write against the stored assigner role; racy
		// under concurrent edits of the same task, acceptable at this
		// contention level.
		perms := authz.TaskFieldPermissions(actor, current)
		if perms.Priority {
			update.Priority = *upd.Priority
		}
		// locked priority keeps the stored value with no error
	}
	if upd.AssignedToID != nil && *upd.AssignedToID != current.AssignedToID {
		if err := s.checkAssignee(actor, *upd.AssignedToID); err != nil {
			return nil, false, err
		}
		update.AssignedToID = *upd.AssignedToID
		reassigned = true
	}

	if err := s.repo.Update(ctx, &update); err != nil {
		return nil, false, err
	}
	saved, err := s.repo.FindByID(ctx, id)
	return saved, reassigned, err
}

func (s *taskService) ListOwn(ctx context.Context, actorID int64, status models.TaskStatus) ([]models.Task, error) {
	filter := models.TaskFilter{
		AssignedToID: &actorID,
		Status:       &status,
	}
	// own tasks are always visible to their assignee, regardless of role
	return s.repo.FindAll(ctx, filter, authz.Scope{Kind: authz.ScopeAll})
}

func (s *taskService) RequestStatusChange(ctx context.Context, actor authz.Actor, taskID int64, to models.TaskStatus) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if task.AssignedToID != actor.ID {
		return task, ErrNotAssignee
	}
	if !to.Valid() || !CanTransition(task.Status, to) {
		return task, ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ctx, taskID, to); err != nil {
		return task, err
	}
	return s.repo.FindByID(ctx, taskID)
}

// checkAssignee validates that the actor may assign tasks to the given user
// at all: admins anywhere, managers only inside their own department.
func (s *taskService) checkAssignee(actor authz.Actor, assigneeID int64) error {
	assignee, err := s.users.GetByID(assigneeID)
	if err != nil {
		return err
	}
	if assignee == nil {
		return ErrNotFound
	}
	scope := authz.AssigneeScope(actor)
	switch scope.Kind {
	case authz.ScopeAll:
		return nil
	case authz.ScopeDepartment:
		if assignee.DepartmentID != nil && *assignee.DepartmentID == scope.DepartmentID {
			return nil
		}
	}
	return ErrForbidden
}
