package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dobtasks/internal/models"
)

func TestCanTransition(t *testing.T) {
	all := []models.TaskStatus{models.StatusPending, models.StatusInProgress, models.StatusCompleted}

	allowed := map[models.TaskStatus]models.TaskStatus{
		models.StatusPending:    models.StatusInProgress,
		models.StatusInProgress: models.StatusCompleted,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from] == to
			assert.Equal(t, want, CanTransition(from, to), "from=%s to=%s", from, to)
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	assert.False(t, CanTransition(models.StatusCompleted, models.StatusPending), "terminal state has no exits")
	assert.False(t, CanTransition("ARCHIVED", models.StatusPending))
	assert.False(t, CanTransition(models.StatusPending, "ARCHIVED"))
}
