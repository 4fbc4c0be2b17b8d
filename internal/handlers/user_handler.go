package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dobtasks/internal/models"
	"dobtasks/internal/repositories"
	"dobtasks/internal/services"
)

type UserHandler struct {
	service  services.UserService
	settings repositories.SettingRepository
}

func NewUserHandler(service services.UserService, settings repositories.SettingRepository) *UserHandler {
	return &UserHandler{service: service, settings: settings}
}

type registerRequest struct {
	FullName     string      `json:"full_name" binding:"required"`
	Email        string      `json:"email" binding:"required,email"`
	Password     string      `json:"password" binding:"required,min=6"`
	Role         models.Role `json:"role" binding:"required"`
	DepartmentID *int64      `json:"department_id"`
	DobID        string      `json:"dob_id" binding:"required"`
}

// POST /signup handles public registration. New accounts start inactive; the
// auto-approve setting is read per request and decides whether the account
// activates (and logs in) immediately.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setting, err := h.settings.Get()
	if err != nil {
		log.Printf("[user][register] read settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
		DobID:        req.DobID,
	}
	if err := h.service.Register(user, req.Password, setting.AutoApprove); err != nil {
		switch {
		case errors.Is(err, services.ErrRoleNotAllowed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be MANAGER or USER."})
		case errors.Is(err, repositories.ErrDuplicate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "An account with this email or DOB ID already exists."})
		default:
			log.Printf("[user][register] service error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	if setting.AutoApprove {
		tokens, err := issueTokens(h.service, user)
		if err != nil {
			log.Printf("[user][register] issue tokens userID=%d: %v", user.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "You are now logged in.",
			"user":    user,
			"tokens":  tokens,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Your account has been created. Please wait for HR to approve your account.",
		"user":    user,
	})
}

// GET /admin/users lists accounts inside the actor's scope.
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var filter models.UserFilter
	if v, ok := c.GetQuery("role"); ok {
		r := models.Role(v)
		filter.Role = &r
	}
	if v, ok := c.GetQuery("is_active"); ok {
		b := v == "true" || v == "1"
		filter.IsActive = &b
	}

	users, err := h.service.List(actor, filter)
	if err != nil {
		log.Printf("[user][list] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.service.Get(actor, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("[user][get] id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	FullName       *string      `json:"full_name"`
	Role           *models.Role `json:"role"`
	DepartmentID   *int64       `json:"department_id"`
	IsActive       *bool        `json:"is_active"`
	DobID          *string      `json:"dob_id"`
	TelegramChatID *int64       `json:"telegram_chat_id"`
	NotifyTelegram *bool        `json:"notify_telegram"`
}

// PUT /admin/users/:id covers approval (is_active) and role assignment.
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.Update(actor, id, &services.UserUpdate{
		FullName:       req.FullName,
		Role:           req.Role,
		DepartmentID:   req.DepartmentID,
		IsActive:       req.IsActive,
		DobID:          req.DobID,
		TelegramChatID: req.TelegramChatID,
		NotifyTelegram: req.NotifyTelegram,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrRoleNotAllowed):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		case errors.Is(err, repositories.ErrDuplicate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "An account with this email or DOB ID already exists."})
		default:
			log.Printf("[user][update] id=%d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		}
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /admin/users/:id is admin only; the user's assigned tasks cascade.
func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(actor, id); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			log.Printf("[user][delete] id=%d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
