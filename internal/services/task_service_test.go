package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dobtasks/internal/authz"
	"dobtasks/internal/models"
)

func int64p(v int64) *int64 { return &v }

func priorityp(p models.TaskPriority) *models.TaskPriority { return &p }
func statusp(s models.TaskStatus) *models.TaskStatus       { return &s }

func testDeadline() time.Time {
	return time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
}

// seedWorld builds one admin, one manager and one worker in department 1,
// plus a worker in department 2.
func seedWorld() (*fakeUserRepo, *fakeTaskRepo) {
	users := newFakeUserRepo()
	users.add(models.User{ID: 1, FullName: "Ada Admin", Email: "ada@corp.test", Role: models.RoleAdmin, IsActive: true, IsStaff: true})
	users.add(models.User{ID: 2, FullName: "Mira Manager", Email: "mira@corp.test", Role: models.RoleManager, DepartmentID: int64p(1), IsActive: true, IsStaff: true})
	users.add(models.User{ID: 3, FullName: "Wes Worker", Email: "wes@corp.test", Role: models.RoleUser, DepartmentID: int64p(1), IsActive: true})
	users.add(models.User{ID: 4, FullName: "Olga Outside", Email: "olga@corp.test", Role: models.RoleUser, DepartmentID: int64p(2), IsActive: true})
	return users, newFakeTaskRepo(users)
}

func adminActor() authz.Actor   { return authz.Actor{ID: 1, Role: models.RoleAdmin} }
func managerActor() authz.Actor { return authz.Actor{ID: 2, Role: models.RoleManager, DepartmentID: int64p(1)} }
func workerActor() authz.Actor  { return authz.Actor{ID: 3, Role: models.RoleUser, DepartmentID: int64p(1)} }

func TestCreateAppliesDefaults(t *testing.T) {
	users, tasks := seedWorld()
	svc := NewTaskService(tasks, users)

	created, err := svc.Create(context.Background(), adminActor(), &models.Task{
		Title:        "Quarterly filing",
		Deadline:     testDeadline(),
		AssignedToID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, created.Priority)
	assert.Equal(t, models.StatusPending, created.Status)
	require.NotNil(t, created.AssignedByID)
	assert.Equal(t, int64(1), *created.AssignedByID, "assigner is stamped from the actor")
	assert.Equal(t, models.RoleAdmin, created.AssignedByRole)
	assert.Equal(t, "wes@corp.test", created.AssigneeEmail)
}

func TestCreateManagerCannotAssignOutsideDepartment(t *testing.T) {
	users, tasks := seedWorld()
	svc := NewTaskService(tasks, users)

	_, err := svc.Create(context.Background(), managerActor(), &models.Task{
		Title:        "Cross-department chore",
		Deadline:     testDeadline(),
		AssignedToID: 4,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(context.Background(), managerActor(), &models.Task{
		Title:        "Local chore",
		Deadline:     testDeadline(),
		AssignedToID: 3,
	})
	assert.NoError(t, err)
}

func TestUpdatePriorityLockRevertsSilently(t *testing.T) {
	users, tasks := seedWorld()
	svc := NewTaskService(tasks, users)

	// admin creates an URGENT task for the worker in department 1
	seeded := tasks.add(models.Task{
		Title:        "Escalated incident",
		Priority:     models.PriorityUrgent,
		Status:       models.StatusPending,
		Deadline:     testDeadline(),
		AssignedToID: 3,
		AssignedByID: int64p(1),
	})

	newDeadline := testDeadline().AddDate(0, 0, 2)
	saved, reassigned, err := svc.Update(context.Background(), managerActor(), seeded.ID, &TaskUpdate{
		Priority: priorityp(models.PriorityLow),
		Status:   statusp(models.StatusInProgress),
		Deadline: &newDeadline,
	})
	require.NoError(t, err, "a locked priority is reverted, never rejected")
	assert.False(t, reassigned)
	assert.Equal(t, models.PriorityUrgent, saved.Priority, "priority set by an admin survives a manager edit")
	assert.Equal(t, models.StatusInProgress, saved.Status, "other fields still apply")
	assert.True(t, saved.Deadline.Equal(newDeadline))
}

func TestUpdatePriorityAllowedCases(t *testing.T) {
	users, tasks := seedWorld()
	svc := NewTaskService(tasks, users)

	managerTask := tasks.add(models.Task{
		Title: "Routine check", Priority: models.PriorityHigh, Status: models.StatusPending,
		Deadline: testDeadline(), AssignedToID: 3, AssignedByID: int64p(2),
	})
	adminTask := tasks.add(models.Task{
		Title: "Board request", Priority: models.PriorityHigh, Status: models.StatusPending,
		Deadline: testDeadline(), AssignedToID: 3, AssignedByID: int64p(1),
	})

	saved, _, err := svc.Update(context.Background(), managerActor(), managerTask.ID, &TaskUpdate{
		Priority: priorityp(models.PriorityLow),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityLow, saved.Priority, "manager edits manager-assigned priority freely")

	saved, _, err = svc.Update(context.Background(), adminActor(), adminTask.ID, &TaskUpdate{
		Priority: priorityp(models.PriorityLow),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityLow, saved.Priority, "admins are never locked")
}

func TestUpdateOutOfScopeIsNotFound(t *testing.T) {
	users, tasks := seedWorld()
	svc := NewTaskService(tasks, users)

	outside := tasks.add(models.Task{
		Title: "Other department work", Priority: models.PriorityMedium, Status: models.StatusPending,
		Deadline: testDeadline(), AssignedToID: 4, AssignedByID: int64p(1),
	})

	_, _, err := svc.Update(context.Background(), managerActor(), outside.ID, &TaskUpdate{
		Status: statusp(models.StatusCompleted),
	})
	assert.ErrorIs(t, err, ErrNotFound, "out-of-scope tasks are indistinguishable from missing ones")

	_, err = svc.GetByID(context.Background(), managerActor(), outside.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReassignment(t *testing.T) {
	users, tasks := seedWorld()
	svc := NewTaskService(tasks, users)

	seeded := tasks.add(models.Task{
		Title: "Handover", Priority: models.PriorityMedium, Status: models.StatusPending,
		Deadline: testDeadline(), AssignedToID: 3, AssignedByID: int64p(1),
	})

	saved, reassigned, err := svc.Update(context.Background(), adminActor(), seeded.ID, &TaskUpdate{
		AssignedToID: int64p(4),
	})
	require.NoError(t, err)
	assert.True(t, reassigned)
	assert.Equal(t, int64(4), saved.AssignedToID)
	assert.Equal(t, "olga@corp.test", saved.AssigneeEmail)

	// same assignee is not a reassignment
	_, reassigned, err = svc.Update(context.Background(), adminActor(), seeded.ID, &TaskUpdate{
		AssignedToID: int64p(4),
	})
	require.NoError(t, err)
	assert.False(t, reassigned)
}

func TestRequestStatusChange(t *testing.T) {
	users, tasks := seedWorld()
	svc := NewTaskService(tasks, users)

	seeded := tasks.add(models.Task{
		Title: "Step by step", Priority: models.PriorityMedium, Status: models.StatusPending,
		Deadline: testDeadline(), AssignedToID: 3, AssignedByID: int64p(2),
	})

	// non-assignee, even an admin, may not move it
	_, err := svc.RequestStatusChange(context.Background(), adminActor(), seeded.ID, models.StatusInProgress)
	assert.ErrorIs(t, err, ErrNotAssignee)

	// skipping a step is rejected
	_, err = svc.RequestStatusChange(context.Background(), workerActor(), seeded.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := svc.RequestStatusChange(context.Background(), workerActor(), seeded.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	// backwards is rejected
	_, err = svc.RequestStatusChange(context.Background(), workerActor(), seeded.ID, models.StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err = svc.RequestStatusChange(context.Background(), workerActor(), seeded.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	// terminal
	_, err = svc.RequestStatusChange(context.Background(), workerActor(), seeded.ID, models.StatusInProgress)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.RequestStatusChange(context.Background(), workerActor(), 999, models.StatusInProgress)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOwnIgnoresRoleScope(t *testing.T) {
	users, tasks := seedWorld()
	svc := NewTaskService(tasks, users)

	tasks.add(models.Task{
		Title: "Mine", Priority: models.PriorityMedium, Status: models.StatusPending,
		Deadline: testDeadline(), AssignedToID: 3, AssignedByID: int64p(1),
	})
	tasks.add(models.Task{
		Title: "Mine too", Priority: models.PriorityMedium, Status: models.StatusInProgress,
		Deadline: testDeadline(), AssignedToID: 3, AssignedByID: int64p(1),
	})
	tasks.add(models.Task{
		Title: "Not mine", Priority: models.PriorityMedium, Status: models.StatusPending,
		Deadline: testDeadline(), AssignedToID: 4, AssignedByID: int64p(1),
	})

	own, err := svc.ListOwn(context.Background(), 3, models.StatusPending)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Mine", own[0].Title)
}

func TestGetAllScoped(t *testing.T) {
	users, tasks := seedWorld()
	svc := NewTaskService(tasks, users)

	tasks.add(models.Task{
		Title: "Dept 1 work", Priority: models.PriorityMedium, Status: models.StatusPending,
		Deadline: testDeadline(), AssignedToID: 3, AssignedByID: int64p(1),
	})
	tasks.add(models.Task{
		Title: "Dept 2 work", Priority: models.PriorityMedium, Status: models.StatusPending,
		Deadline: testDeadline(), AssignedToID: 4, AssignedByID: int64p(1),
	})

	all, err := svc.GetAll(context.Background(), adminActor(), models.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := svc.GetAll(context.Background(), managerActor(), models.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Dept 1 work", scoped[0].Title)

	none, err := svc.GetAll(context.Background(), workerActor(), models.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, none, "regular users see nothing on the management surface")
}
