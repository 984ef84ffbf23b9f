package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openlistings/collateral-workflow/internal/application/service"
	"github.com/openlistings/collateral-workflow/internal/domain/entity"
	"github.com/openlistings/collateral-workflow/internal/domain/workflow"
	"github.com/openlistings/collateral-workflow/internal/report"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	draftService service.DraftService
	exporter     *report.AuditExporter
	logger       Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(draftService service.DraftService, exporter *report.AuditExporter, logger Logger) *Handlers {
	return &Handlers{
		draftService: draftService,
		exporter:     exporter,
		logger:       logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Reasons []string    `json:"reasons,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// CreateListingRequest is the body for POST /api/listings
type CreateListingRequest struct {
	ID            string `json:"id"`
	Address       string `json:"address"`
	ListingType   string `json:"listing_type"`
	BrokerContact string `json:"broker_contact"`
	PhotoCount    int    `json:"photo_count"`
}

// CreateListing handles POST /api/listings
func (h *Handlers) CreateListing(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	listing := &entity.ListingContext{
		ID:            req.ID,
		Address:       req.Address,
		ListingType:   req.ListingType,
		BrokerContact: req.BrokerContact,
		PhotoCount:    req.PhotoCount,
		CreatedAt:     time.Now(),
	}

	if err := h.draftService.CreateListing(c.Request.Context(), listing); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: listing})
}

// GetListing handles GET /api/listings/:id
func (h *Handlers) GetListing(c *gin.Context) {
	listing, err := h.draftService.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: listing})
}

// CreateDraftRequest is the body for POST /api/drafts
type CreateDraftRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
}

// CreateDraft handles POST /api/drafts
func (h *Handlers) CreateDraft(c *gin.Context) {
	var req CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	draft, err := h.draftService.CreateDraft(c.Request.Context(), req.ListingID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: draft})
}

// ListDrafts handles GET /api/drafts
func (h *Handlers) ListDrafts(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	drafts, err := h.draftService.ListDrafts(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: drafts})
}

// GetDraft handles GET /api/drafts/:id
func (h *Handlers) GetDraft(c *gin.Context) {
	draft, err := h.draftService.GetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: draft})
}

// GetHistory handles GET /api/drafts/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	history, err := h.draftService.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: history})
}

// ListTransitions handles GET /api/drafts/:id/transitions?role=broker.
// It projects the transitions the given role could attempt from the draft's
// current status, without evaluating guards.
func (h *Handlers) ListTransitions(c *gin.Context) {
	role := workflow.Role(c.Query("role"))
	if !role.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown role: " + c.Query("role")})
		return
	}

	draft, err := h.draftService.GetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	transitions := h.draftService.AvailableTransitions(workflow.Status(draft.Status), role)
	c.JSON(http.StatusOK, Response{Success: true, Data: transitions})
}

// ExecuteTransitionRequest is the body for POST /api/drafts/:id/transitions/:name
type ExecuteTransitionRequest struct {
	ActorID   string          `json:"actor_id" binding:"required"`
	ActorRole string          `json:"actor_role" binding:"required"`
	Params    workflow.Params `json:"params"`
}

// ExecuteTransition handles POST /api/drafts/:id/transitions/:name
func (h *Handlers) ExecuteTransition(c *gin.Context) {
	var req ExecuteTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	role := workflow.Role(req.ActorRole)
	if !role.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown role: " + req.ActorRole})
		return
	}

	draft, err := h.draftService.ExecuteTransition(
		c.Request.Context(),
		c.Param("id"),
		c.Param("name"),
		req.ActorID,
		role,
		req.Params,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: draft})
}

// AuditReportResponse is the payload for a generated report
type AuditReportResponse struct {
	Path string `json:"path"`
}

// GenerateAuditReport handles POST /api/drafts/:id/audit-report
func (h *Handlers) GenerateAuditReport(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	draft, err := h.draftService.GetDraft(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	history, err := h.draftService.GetHistory(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	path, err := h.exporter.Export(draft, history)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: AuditReportResponse{Path: path}})
}

// respondError maps domain errors to their HTTP status; anything else is a 500
func (h *Handlers) respondError(c *gin.Context, err error) {
	if werr, ok := workflow.AsError(err); ok {
		c.JSON(werr.HTTPStatus(), Response{
			Success: false,
			Error:   werr.Message,
			Reasons: werr.Reasons,
		})
		return
	}

	h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
