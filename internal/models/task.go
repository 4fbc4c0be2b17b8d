package models

import "time"

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// Task represents an assignment given to a user.
// AssignedByID is set once, automatically, to the creating actor.
type Task struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Priority        TaskPriority `json:"priority"`
	Status          TaskStatus   `json:"status"`
	Deadline        time.Time    `json:"deadline"`
	AssignedToID    int64        `json:"assigned_to_id"`
	AssignedByID    *int64       `json:"assigned_by_id,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	StatusUpdatedAt time.Time    `json:"status_updated_at"`

	// Denormalized for scoping and notices; populated by joined queries.
	AssignedByRole       Role   `json:"-"`
	AssigneeDepartmentID *int64 `json:"-"`
	AssigneeName         string `json:"-"`
	AssigneeEmail        string `json:"-"`
}

// TaskFilter defines the available parameters for filtering tasks.
type TaskFilter struct {
	AssignedToID *int64
	Status       *TaskStatus
	Priority     *TaskPriority
	DeadlineOn   *time.Time
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Label returns the human form used in notices, e.g. "In Progress".
func (s TaskStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}
