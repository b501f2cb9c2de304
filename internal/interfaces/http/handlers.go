package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bizsuite/approval-engine/internal/application/service"
	"github.com/bizsuite/approval-engine/internal/domain/approval"
	"github.com/bizsuite/approval-engine/pkg/utils"
)

// RegisterExporter produces a downloadable approvals register workbook
type RegisterExporter interface {
	ExportRegister(ctx context.Context) ([]byte, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	approvalService service.ApprovalService
	bulkService     service.BulkService
	queryService    service.QueryService
	exporter        RegisterExporter
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	approvalService service.ApprovalService,
	bulkService service.BulkService,
	queryService service.QueryService,
	exporter RegisterExporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		approvalService: approvalService,
		bulkService:     bulkService,
		queryService:    queryService,
		exporter:        exporter,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SubmitRequest represents the submission payload
type SubmitRequest struct {
	EntityType  string  `json:"entity_type" binding:"required"`
	EntityID    string  `json:"entity_id" binding:"required"`
	Reference   string  `json:"reference" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	RequestedBy string  `json:"requested_by" binding:"required"`
	Priority    string  `json:"priority"`
}

// DecisionRequest represents an approve/escalate payload
type DecisionRequest struct {
	Notes string `json:"notes"`
}

// RejectRequest represents a reject payload
type RejectRequest struct {
	Reason string `json:"reason"`
}

// BulkDecisionRequest represents a bulk approve payload
type BulkDecisionRequest struct {
	IDs   []string `json:"ids"`
	Notes string   `json:"notes"`
}

// BulkRejectRequest represents a bulk reject payload
type BulkRejectRequest struct {
	IDs    []string `json:"ids"`
	Reason string   `json:"reason"`
}

// ListPendingRequest represents query parameters for listing pending items
type ListPendingRequest struct {
	EntityType   string `form:"entity_type"`
	Level        string `form:"level"`
	Priority     string `form:"priority"`
	BreachedOnly bool   `form:"breached_only"`
	Grouped      bool   `form:"grouped"`
}

// HistoryRequest represents query parameters for the history listing
type HistoryRequest struct {
	Limit int `form:"limit"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// Submit handles POST /api/approvals
func (h *Handlers) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	entityType := approval.EntityType(req.EntityType)
	if !entityType.IsValid() {
		h.badRequest(c, fmt.Sprintf("unknown entity type: %s", req.EntityType))
		return
	}

	priority := approval.Priority(req.Priority)
	if req.Priority != "" && !priority.IsValid() {
		h.badRequest(c, fmt.Sprintf("unknown priority: %s", req.Priority))
		return
	}

	if err := utils.ValidateReference(req.Reference); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	if err := utils.ValidateTitle(req.Title); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	item, err := h.approvalService.Submit(c.Request.Context(), service.SubmitRequest{
		EntityType:  entityType,
		EntityID:    req.EntityID,
		Reference:   utils.SanitizeString(req.Reference),
		Title:       utils.SanitizeString(req.Title),
		Description: utils.SanitizeString(req.Description),
		Amount:      req.Amount,
		RequestedBy: req.RequestedBy,
		Priority:    priority,
	})
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: item})
}

// ListPending handles GET /api/approvals
func (h *Handlers) ListPending(c *gin.Context) {
	var req ListPendingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}

	filter := approval.Filter{
		EntityType:      approval.EntityType(req.EntityType),
		Level:           approval.Level(req.Level),
		Priority:        approval.Priority(req.Priority),
		SLABreachedOnly: req.BreachedOnly,
	}

	if req.Grouped {
		groups, err := h.queryService.PendingView(c.Request.Context(), filter)
		if err != nil {
			h.domainError(c, err)
			return
		}
		c.JSON(http.StatusOK, Response{Success: true, Data: groups})
		return
	}

	items, err := h.queryService.ListPending(c.Request.Context(), filter)
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: items})
}

// GetStats handles GET /api/approvals/stats
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.queryService.GetStats(c.Request.Context())
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: stats})
}

// GetHistory handles GET /api/approvals/history
func (h *Handlers) GetHistory(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 50
	}

	items, err := h.queryService.GetHistory(c.Request.Context(), req.Limit)
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: items})
}

// GetDetails handles GET /api/approvals/:id
func (h *Handlers) GetDetails(c *gin.Context) {
	item, err := h.queryService.GetDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: item})
}

// Approve handles POST /api/approvals/:id/approve
func (h *Handlers) Approve(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.badRequest(c, "invalid request body")
		return
	}

	item, err := h.approvalService.Approve(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: item})
}

// Reject handles POST /api/approvals/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.badRequest(c, "invalid request body")
		return
	}

	item, err := h.approvalService.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: item})
}

// Escalate handles POST /api/approvals/:id/escalate
func (h *Handlers) Escalate(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.badRequest(c, "invalid request body")
		return
	}

	item, err := h.approvalService.Escalate(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: item})
}

// BulkApprove handles POST /api/approvals/bulk/approve
func (h *Handlers) BulkApprove(c *gin.Context) {
	var req BulkDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	result, err := h.bulkService.BulkApprove(c.Request.Context(), req.IDs, req.Notes)
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// BulkReject handles POST /api/approvals/bulk/reject
func (h *Handlers) BulkReject(c *gin.Context) {
	var req BulkRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	result, err := h.bulkService.BulkReject(c.Request.Context(), req.IDs, req.Reason)
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ExportRegister handles GET /api/approvals/export
func (h *Handlers) ExportRegister(c *gin.Context) {
	data, err := h.exporter.ExportRegister(c.Request.Context())
	if err != nil {
		h.domainError(c, err)
		return
	}

	filename := fmt.Sprintf("approvals-register-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// domainError maps the engine's typed errors onto HTTP status codes
func (h *Handlers) domainError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, approval.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, approval.ErrInvalidState), errors.Is(err, approval.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, approval.ErrMissingReason), errors.Is(err, approval.ErrInvalidAmount):
		status = http.StatusBadRequest
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}
