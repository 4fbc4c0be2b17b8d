package services

import "dobtasks/internal/models"

// TaskTransitions is intentionally linear: a task moves forward one step at
// a time and never backward. The assignee-facing status endpoint is the only
// path bound by this table; the management edit form writes status directly.
var TaskTransitions = map[models.TaskStatus]map[models.TaskStatus]bool{
	models.StatusPending:    {models.StatusInProgress: true},
	models.StatusInProgress: {models.StatusCompleted: true},
	models.StatusCompleted:  {},
}

// CanTransition reports whether the move is one of the allowed edges.
// Self-transitions, skips and backward moves all fail.
func CanTransition(from, to models.TaskStatus) bool {
	nexts, ok := TaskTransitions[from]
	if !ok {
		return false
	}
	return nexts[to]
}
