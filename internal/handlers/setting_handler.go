package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dobtasks/internal/repositories"
)

// SettingHandler exposes the singleton auto-approve flag to admins.
type SettingHandler struct {
	repo repositories.SettingRepository
}

func NewSettingHandler(repo repositories.SettingRepository) *SettingHandler {
	return &SettingHandler{repo: repo}
}

func (h *SettingHandler) Get(c *gin.Context) {
	setting, err := h.repo.Get()
	if err != nil {
		log.Printf("[settings][get][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read settings"})
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (h *SettingHandler) Update(c *gin.Context) {
	var req struct {
		AutoApprove *bool `json:"auto_approve" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.repo.Update(*req.AutoApprove); err != nil {
		log.Printf("[settings][update][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}
	setting, err := h.repo.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read settings"})
		return
	}
	c.JSON(http.StatusOK, setting)
}
