package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dobtasks/internal/models"
	"dobtasks/internal/repositories"
)

// DepartmentHandler is a thin CRUD surface; departments are pure lookup
// entities managed by admins.
type DepartmentHandler struct {
	repo repositories.DepartmentRepository
}

func NewDepartmentHandler(repo repositories.DepartmentRepository) *DepartmentHandler {
	return &DepartmentHandler{repo: repo}
}

type departmentRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *DepartmentHandler) Create(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dept := &models.Department{Name: req.Name}
	if err := h.repo.Create(dept); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A department with this name already exists."})
			return
		}
		log.Printf("[dept][create][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create department"})
		return
	}
	c.JSON(http.StatusCreated, dept)
}

func (h *DepartmentHandler) List(c *gin.Context) {
	depts, err := h.repo.List()
	if err != nil {
		log.Printf("[dept][list][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list departments"})
		return
	}
	c.JSON(http.StatusOK, depts)
}

func (h *DepartmentHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dept, err := h.repo.GetByID(id)
	if err != nil {
		log.Printf("[dept][update][err] get id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update department"})
		return
	}
	if dept == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Department not found"})
		return
	}

	dept.Name = req.Name
	if err := h.repo.Update(dept); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A department with this name already exists."})
			return
		}
		log.Printf("[dept][update][err] id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update department"})
		return
	}
	c.JSON(http.StatusOK, dept)
}

func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.repo.Delete(id); err != nil {
		log.Printf("[dept][delete][err] id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete department"})
		return
	}
	c.Status(http.StatusNoContent)
}
