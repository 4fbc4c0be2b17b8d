package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"dobtasks/internal/models"
	"dobtasks/internal/services"
)

type TaskHandler struct {
	service   services.TaskService
	notifier  services.NotificationService
	reminders services.ReminderService
}

func NewTaskHandler(service services.TaskService, notifier services.NotificationService, reminders services.ReminderService) *TaskHandler {
	return &TaskHandler{service: service, notifier: notifier, reminders: reminders}
}

// GET / sends staff to the management console, everyone else to their list.
func (h *TaskHandler) Dashboard(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if actor.IsStaff() {
		c.Redirect(http.StatusFound, "/admin/tasks?status=PENDING")
		return
	}
	c.Redirect(http.StatusFound, "/tasks/PENDING")
}

// GET /tasks and GET /tasks/:status return the actor's own tasks by status.
// A missing or unknown status lands on PENDING.
func (h *TaskHandler) ListOwn(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	statusParam := c.Param("status")
	if statusParam == "" {
		c.Redirect(http.StatusFound, "/tasks/PENDING")
		return
	}
	status := models.TaskStatus(statusParam)
	if !status.Valid() {
		log.Printf("[task][list-own] invalid status=%q userID=%d", statusParam, actor.ID)
		c.Redirect(http.StatusFound, "/tasks/PENDING?error="+url.QueryEscape("Unknown status: "+statusParam))
		return
	}

	tasks, err := h.service.ListOwn(c.Request.Context(), actor.ID, status)
	if err != nil {
		log.Printf("[task][list-own][err] userID=%d: %v", actor.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tasks"})
		return
	}
	body := gin.H{
		"tasks":          tasks,
		"current_status": status,
		"status_label":   status.Label(),
	}
	// notice carried through a redirect, e.g. from an unknown status
	if e := c.Query("error"); e != "" {
		body["error"] = e
	}
	c.JSON(http.StatusOK, body)
}

// POST /update_task_status { "task_id": 1, "status": "IN_PROGRESS" }
// The assignee-only state machine. Failures come back as notices, never as
// faults.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req struct {
		TaskID int64             `json:"task_id" binding:"required"`
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.RequestStatusChange(c.Request.Context(), actor, req.TaskID, req.Status)
	switch {
	case err == nil:
		log.Printf("[task][status][ok] id=%d new=%q by=%d", task.ID, task.Status, actor.ID)
		c.JSON(http.StatusOK, gin.H{
			"message":  fmt.Sprintf("Task '%s' updated to %s.", task.Title, task.Status.Label()),
			"task":     task,
			"redirect": "/tasks/" + string(task.Status),
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, services.ErrNotAssignee):
		log.Printf("[task][status][deny] id=%d not assignee userID=%d", req.TaskID, actor.ID)
		c.JSON(http.StatusForbidden, gin.H{"error": "task is not assigned to you"})
	case errors.Is(err, services.ErrInvalidTransition):
		log.Printf("[task][status][deny] id=%d illegal %q->%q", req.TaskID, task.Status, req.Status)
		c.JSON(http.StatusConflict, gin.H{
			"error":    fmt.Sprintf("Cannot change task from %s to %s.", task.Status.Label(), req.Status.Label()),
			"redirect": "/tasks/" + string(task.Status),
		})
	default:
		log.Printf("[task][status][err] id=%d: %v", req.TaskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task status"})
	}
}

type createTaskRequest struct {
	Title        string              `json:"title" binding:"required"`
	Description  string              `json:"description"`
	Priority     models.TaskPriority `json:"priority"`
	Deadline     string              `json:"deadline" binding:"required"` // YYYY-MM-DD
	AssignedToID int64               `json:"assigned_to_id" binding:"required"`
}

// POST /admin/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Priority != "" && !req.Priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
		return
	}
	deadline, err := parseDate(req.Deadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline (YYYY-MM-DD)"})
		return
	}

	task := &models.Task{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Deadline:     deadline,
		AssignedToID: req.AssignedToID,
	}
	created, err := h.service.Create(c.Request.Context(), actor, task)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "assignee not found"})
		case errors.Is(err, services.ErrForbidden):
			log.Printf("[task][create][deny] userID=%d assignee=%d", actor.ID, req.AssignedToID)
			c.JSON(http.StatusForbidden, gin.H{"error": "you can only assign tasks within your department"})
		default:
			log.Printf("[task][create][err] %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		}
		return
	}
	log.Printf("[task][create][ok] id=%d assignee=%d by=%d", created.ID, created.AssignedToID, actor.ID)

	body := gin.H{"task": created}
	if err := h.notifier.TaskAssigned(created); err != nil {
		// the task stands; the admin just gets told the mail did not go out
		body["warning"] = "Task created, but the notification email could not be sent."
	}
	c.JSON(http.StatusCreated, body)
}

// GET /admin/tasks lists tasks inside the actor's scope.
func (h *TaskHandler) GetAll(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var filter models.TaskFilter
	if v, ok := c.GetQuery("status"); ok {
		st := models.TaskStatus(v)
		if !st.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		filter.Status = &st
	}
	if v, ok := c.GetQuery("priority"); ok {
		p := models.TaskPriority(v)
		if !p.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
			return
		}
		filter.Priority = &p
	}

	tasks, err := h.service.GetAll(c.Request.Context(), actor, filter)
	if err != nil {
		log.Printf("[task][list][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /admin/tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		log.Printf("[task][get][err] id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get task"})
		return
	}
	c.JSON(http.StatusOK, task)
}

type updateTaskRequest struct {
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	Priority     *models.TaskPriority `json:"priority"`
	Status       *models.TaskStatus   `json:"status"`
	Deadline     *string              `json:"deadline"` // YYYY-MM-DD
	AssignedToID *int64               `json:"assigned_to_id"`
}

func (r *updateTaskRequest) toUpdate() (*services.TaskUpdate, error) {
	if r.Priority != nil && !r.Priority.Valid() {
		return nil, fmt.Errorf("invalid priority")
	}
	if r.Status != nil && !r.Status.Valid() {
		return nil, fmt.Errorf("invalid status")
	}
	upd := &services.TaskUpdate{
		Title:        r.Title,
		Description:  r.Description,
		Priority:     r.Priority,
		Status:       r.Status,
		AssignedToID: r.AssignedToID,
	}
	if r.Deadline != nil {
		d, err := parseDate(*r.Deadline)
		if err != nil {
			return nil, fmt.Errorf("invalid deadline (YYYY-MM-DD)")
		}
		upd.Deadline = &d
	}
	return upd, nil
}

// PUT /admin/tasks/:id is the single-record edit form. A priority change the
// actor may not make is discarded silently; the rest of the edit applies.
func (h *TaskHandler) Update(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	upd, err := req.toUpdate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, reassigned, err := h.service.Update(c.Request.Context(), actor, id, upd)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "you can only assign tasks within your department"})
		default:
			log.Printf("[task][update][err] id=%d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		}
		return
	}
	log.Printf("[task][update][ok] id=%d by=%d reassigned=%v", id, actor.ID, reassigned)

	body := gin.H{"task": updated}
	if reassigned {
		if err := h.notifier.TaskAssigned(updated); err != nil {
			body["warning"] = "Task updated, but the notification email could not be sent."
		}
	}
	c.JSON(http.StatusOK, body)
}

type bulkTaskEdit struct {
	ID       int64                `json:"id" binding:"required"`
	Priority *models.TaskPriority `json:"priority"`
	Status   *models.TaskStatus   `json:"status"`
}

// POST /admin/tasks/bulk is the inline list edit. Each row goes through the
// exact same service path (and the same priority lock) as the single form.
func (h *TaskHandler) BulkUpdate(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req struct {
		Edits []bulkTaskEdit `json:"edits" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated := make([]*models.Task, 0, len(req.Edits))
	skipped := 0
	for _, e := range req.Edits {
		if (e.Priority != nil && !e.Priority.Valid()) || (e.Status != nil && !e.Status.Valid()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid value for task %d", e.ID)})
			return
		}
		task, _, err := h.service.Update(c.Request.Context(), actor, e.ID, &services.TaskUpdate{
			Priority: e.Priority,
			Status:   e.Status,
		})
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				skipped++
				continue
			}
			log.Printf("[task][bulk][err] id=%d: %v", e.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "bulk update failed"})
			return
		}
		updated = append(updated, task)
	}
	c.JSON(http.StatusOK, gin.H{
		"updated": updated,
		"skipped": skipped,
	})
}

// POST /admin-action/send-reminders runs the on-demand sweep over tasks due
// tomorrow; reports how many reminders went out.
func (h *TaskHandler) SendReminders(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	sent, err := h.reminders.SendDeadlineReminders(c.Request.Context(), time.Now())
	if err != nil {
		log.Printf("[reminders][err] by=%d: %v", actor.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send reminders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  fmt.Sprintf("Successfully sent %d deadline reminder(s).", sent),
		"sent":     sent,
		"redirect": "/admin/tasks?status=PENDING",
	})
}
