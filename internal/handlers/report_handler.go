package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dobtasks/internal/authz"
	"dobtasks/internal/models"
	"dobtasks/internal/pdf"
	"dobtasks/internal/services"
)

type ReportHandler struct {
	Service *services.ReportService
	PDF     pdf.Generator
}

func NewReportHandler(service *services.ReportService, gen pdf.Generator) *ReportHandler {
	return &ReportHandler{Service: service, PDF: gen}
}

// GET /reports/summary
func (h *ReportHandler) GetSummary(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	data, err := h.Service.Summary(c.Request.Context(), actor)
	if err != nil {
		log.Printf("[report][summary][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build summary"})
		return
	}
	c.JSON(http.StatusOK, data)
}

// GET /reports/summary/pdf
func (h *ReportHandler) GetSummaryPDF(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	data, err := h.Service.Summary(c.Request.Context(), actor)
	if err != nil {
		log.Printf("[report][summary-pdf][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build summary"})
		return
	}

	scopeLabel := "All departments"
	if authz.TaskScope(actor).Kind == authz.ScopeDepartment {
		scopeLabel = "Your department"
	}

	statusOrder := []models.TaskStatus{models.StatusPending, models.StatusInProgress, models.StatusCompleted}
	priorityOrder := []models.TaskPriority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent}

	in := pdf.SummaryData{
		ScopeLabel:  scopeLabel,
		GeneratedAt: data.GeneratedAt,
		Total:       data.Total,
	}
	for _, s := range statusOrder {
		in.StatusRows = append(in.StatusRows, pdf.Row{Label: s.Label(), Count: data.ByStatus[s]})
	}
	for _, p := range priorityOrder {
		in.PriorityRows = append(in.PriorityRows, pdf.Row{Label: string(p), Count: data.ByPriority[p]})
	}

	out, err := h.PDF.GenerateSummary(in)
	if err != nil {
		log.Printf("[report][summary-pdf][err] render: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=task_summary_%s.pdf",
		data.GeneratedAt.Format("20060102")))
	c.Data(http.StatusOK, "application/pdf", out)
}
