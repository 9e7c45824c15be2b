package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	portssvc "github.com/dEvAshirvad/finager-backend/internal/core/ports/services"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
	"github.com/dEvAshirvad/finager-backend/internal/middleware"
)

// journalHandler handles HTTP requests for journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.POST("/validate", h.validateEntry)
		entries.POST("/import", h.importRows)
		entries.POST("/bulk/post", h.postMany)
		entries.POST("/bulk/reverse", h.reverseMany)
		entries.GET("/:id", h.getEntry)
		entries.PUT("/:id", h.updateDraft)
		entries.DELETE("/:id", h.deleteDraft)
		entries.POST("/:id/post", h.postEntry)
		entries.POST("/:id/reverse", h.reverseEntry)
	}

	// Posted-line history of one account.
	rg.GET("/accounts/:id/lines", h.listAccountLines)
}

// resolveTargetStatus maps caller privilege to the entry's target status.
// Elevated callers post immediately unless they explicitly ask for a draft;
// restricted callers always create drafts and may not request POSTED.
func resolveTargetStatus(c *gin.Context, requested domain.EntryStatus) (domain.EntryStatus, bool) {
	if middleware.IsElevated(c) {
		if requested == "" {
			return domain.Posted, true
		}
		return requested, true
	}
	if requested == domain.Posted {
		c.JSON(http.StatusForbidden, gin.H{"error": "direct posting requires an elevated role"})
		return "", false
	}
	return domain.Draft, true
}

func (h *journalHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	status, ok := resolveTargetStatus(c, req.Status)
	if !ok {
		return
	}
	req.Status = status

	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)
	logger.Info("Received request to create entry",
		slog.String("tenant_id", tenantID),
		slog.String("reference", req.Reference),
		slog.String("target_status", string(status)))

	resp, err := h.journalService.CreateEntry(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create entry")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *journalHandler) getEntry(c *gin.Context) {
	entry, err := h.journalService.GetEntry(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *journalHandler) listEntries(c *gin.Context) {
	params := dto.ListEntriesParams{}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		params.Limit = limit
	}
	if token := c.Query("nextToken"); token != "" {
		params.NextToken = &token
	}
	params.IncludeReversed = c.Query("includeReversed") == "true"

	resp, err := h.journalService.ListEntries(c.Request.Context(), middleware.GetTenantID(c), params)
	if err != nil {
		respondServiceError(c, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *journalHandler) listAccountLines(c *gin.Context) {
	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}

	lines, err := h.journalService.ListAccountLines(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"), from, to)
	if err != nil {
		respondServiceError(c, err, "Failed to list account lines")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func (h *journalHandler) updateDraft(c *gin.Context) {
	var req dto.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.journalService.UpdateDraft(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"), req, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to update draft")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *journalHandler) deleteDraft(c *gin.Context) {
	err := h.journalService.DeleteDraft(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to delete draft")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *journalHandler) postEntry(c *gin.Context) {
	if !middleware.IsElevated(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "posting requires an elevated role"})
		return
	}

	entry, err := h.journalService.PostEntry(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to post entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *journalHandler) reverseEntry(c *gin.Context) {
	if !middleware.IsElevated(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "reversing requires an elevated role"})
		return
	}

	entry, err := h.journalService.ReverseEntry(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to reverse entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *journalHandler) postMany(c *gin.Context) {
	if !middleware.IsElevated(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "posting requires an elevated role"})
		return
	}
	var req dto.BulkEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp := h.journalService.PostMany(c.Request.Context(), middleware.GetTenantID(c), req, middleware.GetUserID(c))
	c.JSON(http.StatusOK, resp)
}

func (h *journalHandler) reverseMany(c *gin.Context) {
	if !middleware.IsElevated(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "reversing requires an elevated role"})
		return
	}
	var req dto.BulkEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp := h.journalService.ReverseMany(c.Request.Context(), middleware.GetTenantID(c), req, middleware.GetUserID(c))
	c.JSON(http.StatusOK, resp)
}

func (h *journalHandler) validateEntry(c *gin.Context) {
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.journalService.ValidateEntry(c.Request.Context(), middleware.GetTenantID(c), req)
	if err != nil {
		respondServiceError(c, err, "Failed to validate entry")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *journalHandler) importRows(c *gin.Context) {
	if !middleware.IsElevated(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "importing requires an elevated role"})
		return
	}

	var req struct {
		Rows []dto.ImportRow `json:"rows" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.journalService.ImportRows(c.Request.Context(), middleware.GetTenantID(c), req.Rows, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to import rows")
		return
	}
	c.JSON(http.StatusOK, result)
}
