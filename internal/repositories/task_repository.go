package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dobtasks/internal/authz"
	"dobtasks/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter, scope authz.Scope) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error

	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error
	ListDueOn(ctx context.Context, day time.Time, statuses []models.TaskStatus) ([]models.Task, error)
	CountByStatus(ctx context.Context, scope authz.Scope) (map[models.TaskStatus]int, error)
	CountByPriority(ctx context.Context, scope authz.Scope) (map[models.TaskPriority]int, error)
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Every read joins the assignee (for department scoping and notification
// addresses) and the assigner (for the priority field lock).
const taskSelect = `
SELECT t.id, t.title, t.description, t.priority, t.status, t.deadline,
       t.assigned_to, t.assigned_by, t.created_at, t.status_updated_at,
       COALESCE(b.role, ''), a.department_id, a.full_name, a.email
FROM tasks t
JOIN users a ON a.id = t.assigned_to
LEFT JOIN users b ON b.id = t.assigned_by`

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	const q = `
		INSERT INTO tasks (title, description, priority, status, deadline,
			assigned_to, assigned_by, created_at, status_updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING id, created_at, status_updated_at`
	return r.db.QueryRowContext(ctx, q,
		task.Title, task.Description, task.Priority, task.Status, task.Deadline,
		task.AssignedToID, task.AssignedByID,
	).Scan(&task.ID, &task.CreatedAt, &task.StatusUpdatedAt)
}

func scanTask(row interface{ Scan(...any) error }, t *models.Task) error {
	var (
		assignedBy sql.NullInt64
		deptID     sql.NullInt64
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.Deadline,
		&t.AssignedToID, &assignedBy, &t.CreatedAt, &t.StatusUpdatedAt,
		&t.AssignedByRole, &deptID, &t.AssigneeName, &t.AssigneeEmail,
	)
	if err != nil {
		return err
	}
	if assignedBy.Valid {
		v := assignedBy.Int64
		t.AssignedByID = &v
	}
	if deptID.Valid {
		v := deptID.Int64
		t.AssigneeDepartmentID = &v
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	task := &models.Task{}
	err := scanTask(r.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1`, id), task)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter, scope authz.Scope) ([]models.Task, error) {
	if scope.Kind == authz.ScopeNone {
		return nil, nil
	}

	q := taskSelect
	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if scope.Kind == authz.ScopeDepartment {
		conditions = append(conditions, fmt.Sprintf("a.department_id = $%d", argID))
		args = append(args, scope.DepartmentID)
		argID++
	}
	if filter.AssignedToID != nil {
		conditions = append(conditions, fmt.Sprintf("t.assigned_to = $%d", argID))
		args = append(args, *filter.AssignedToID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("t.priority = $%d", argID))
		args = append(args, *filter.Priority)
		argID++
	}
	if filter.DeadlineOn != nil {
		// deadline is a DATE; cast so the match is timezone-independent
		conditions = append(conditions, fmt.Sprintf("t.deadline = $%d::date", argID))
		args = append(args, filter.DeadlineOn.Format("2006-01-02"))
		argID++
	}

	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}
	q += " ORDER BY t.created_at DESC, t.id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	const q = `
		UPDATE tasks SET
			title=$1, description=$2, priority=$3, status=$4, deadline=$5,
			assigned_to=$6, status_updated_at=NOW()
		WHERE id=$7`
	_, err := r.db.ExecContext(ctx, q,
		task.Title, task.Description, task.Priority, task.Status, task.Deadline,
		task.AssignedToID, task.ID,
	)
	return err
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status=$1, status_updated_at=NOW() WHERE id=$2`, to, id)
	return err
}

func (r *taskRepository) ListDueOn(ctx context.Context, day time.Time, statuses []models.TaskStatus) ([]models.Task, error) {
	q := taskSelect + ` WHERE t.deadline = $1::date`
	args := []interface{}{day.Format("2006-01-02")}
	if len(statuses) > 0 {
		ph := make([]string, len(statuses))
		for i, s := range statuses {
			ph[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, s)
		}
		q += fmt.Sprintf(" AND t.status IN (%s)", strings.Join(ph, ","))
	}
	q += " ORDER BY t.id ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) CountByStatus(ctx context.Context, scope authz.Scope) (map[models.TaskStatus]int, error) {
	out := map[models.TaskStatus]int{}
	if scope.Kind == authz.ScopeNone {
		return out, nil
	}
	q := `SELECT t.status, COUNT(*) FROM tasks t JOIN users a ON a.id = t.assigned_to`
	args := []interface{}{}
	if scope.Kind == authz.ScopeDepartment {
		q += ` WHERE a.department_id = $1`
		args = append(args, scope.DepartmentID)
	}
	q += ` GROUP BY t.status`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s models.TaskStatus
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

func (r *taskRepository) CountByPriority(ctx context.Context, scope authz.Scope) (map[models.TaskPriority]int, error) {
	out := map[models.TaskPriority]int{}
	if scope.Kind == authz.ScopeNone {
		return out, nil
	}
	q := `SELECT t.priority, COUNT(*) FROM tasks t JOIN users a ON a.id = t.assigned_to`
	args := []interface{}{}
	if scope.Kind == authz.ScopeDepartment {
		q += ` WHERE a.department_id = $1`
		args = append(args, scope.DepartmentID)
	}
	q += ` GROUP BY t.priority`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p models.TaskPriority
		var n int
		if err := rows.Scan(&p, &n); err != nil {
			return nil, err
		}
		out[p] = n
	}
	return out, rows.Err()
}
