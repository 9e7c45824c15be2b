package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	portssvc "github.com/dEvAshirvad/finager-backend/internal/core/ports/services"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
	"github.com/dEvAshirvad/finager-backend/internal/middleware"
)

// reportingHandler handles HTTP requests for derived reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers routes related to reports.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/balance-sheet", h.balanceSheet)
		reports.GET("/net-income", h.netIncome)
		reports.GET("/profit-and-loss", h.profitAndLoss)
		reports.GET("/cash-flow", h.cashFlow)
		reports.GET("/inventory-valuation", h.inventoryValuation)
		reports.GET("/gst-summary", h.gstSummary)
		reports.POST("/reconciliation", h.reconcile)
		reports.GET("/config/:type", h.getConfig)
		reports.PUT("/config", h.saveConfig)
	}
}

// asOfOrToday resolves the optional asOf query parameter, defaulting to the
// current date.
func asOfOrToday(c *gin.Context) (time.Time, bool) {
	asOf, ok := parseDateQuery(c, "asOf")
	if !ok {
		return time.Time{}, false
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	return asOf, true
}

func periodRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := requireDateQuery(c, "from")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := requireDateQuery(c, "to")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not precede from"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *reportingHandler) trialBalance(c *gin.Context) {
	asOf, ok := asOfOrToday(c)
	if !ok {
		return
	}
	report, err := h.reportingService.TrialBalance(c.Request.Context(), middleware.GetTenantID(c), asOf)
	if err != nil {
		respondServiceError(c, err, "Failed to build trial balance")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) balanceSheet(c *gin.Context) {
	asOf, ok := asOfOrToday(c)
	if !ok {
		return
	}
	report, err := h.reportingService.BalanceSheet(c.Request.Context(), middleware.GetTenantID(c), asOf)
	if err != nil {
		respondServiceError(c, err, "Failed to build balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) netIncome(c *gin.Context) {
	from, to, ok := periodRange(c)
	if !ok {
		return
	}
	report, err := h.reportingService.NetIncome(c.Request.Context(), middleware.GetTenantID(c), from, to)
	if err != nil {
		respondServiceError(c, err, "Failed to compute net income")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) profitAndLoss(c *gin.Context) {
	from, to, ok := periodRange(c)
	if !ok {
		return
	}
	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), middleware.GetTenantID(c), from, to)
	if err != nil {
		respondServiceError(c, err, "Failed to build profit and loss")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) cashFlow(c *gin.Context) {
	from, to, ok := periodRange(c)
	if !ok {
		return
	}
	report, err := h.reportingService.CashFlow(c.Request.Context(), middleware.GetTenantID(c), from, to)
	if err != nil {
		respondServiceError(c, err, "Failed to build cash flow")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) inventoryValuation(c *gin.Context) {
	asOf, ok := asOfOrToday(c)
	if !ok {
		return
	}
	report, err := h.reportingService.InventoryValuation(c.Request.Context(), middleware.GetTenantID(c), asOf, c.Query("parentCode"))
	if err != nil {
		respondServiceError(c, err, "Failed to build inventory valuation")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) gstSummary(c *gin.Context) {
	from, to, ok := periodRange(c)
	if !ok {
		return
	}
	report, err := h.reportingService.GSTSummary(c.Request.Context(), middleware.GetTenantID(c), from, to)
	if err != nil {
		respondServiceError(c, err, "Failed to build GST summary")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) reconcile(c *gin.Context) {
	var req dto.ReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	report, err := h.reportingService.Reconcile(c.Request.Context(), middleware.GetTenantID(c), req)
	if err != nil {
		respondServiceError(c, err, "Failed to reconcile statement")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) getConfig(c *gin.Context) {
	reportType := domain.ReportType(c.Param("type"))
	if reportType != domain.ReportProfitAndLoss && reportType != domain.ReportCashFlow {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown report type"})
		return
	}

	config, err := h.reportingService.GetReportConfig(c.Request.Context(), middleware.GetTenantID(c), reportType)
	if err != nil {
		respondServiceError(c, err, "Failed to load report config")
		return
	}
	c.JSON(http.StatusOK, config)
}

func (h *reportingHandler) saveConfig(c *gin.Context) {
	var req dto.ReportConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	config, err := h.reportingService.SaveReportConfig(c.Request.Context(), middleware.GetTenantID(c), req)
	if err != nil {
		respondServiceError(c, err, "Failed to save report config")
		return
	}
	c.JSON(http.StatusOK, config)
}
