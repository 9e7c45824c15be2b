package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/dEvAshirvad/finager-backend/internal/core/ports/services"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
	"github.com/dEvAshirvad/finager-backend/internal/middleware"
)

// accountHandler handles HTTP requests for the account registry.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	balanceService portssvc.BalanceSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade, bs portssvc.BalanceSvcFacade) *accountHandler {
	return &accountHandler{accountService: as, balanceService: bs}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, balanceService portssvc.BalanceSvcFacade) {
	h := newAccountHandler(accountService, balanceService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.POST("/seed", h.seedStandardChart)
		accounts.GET("", h.listAccounts)
		accounts.GET("/tree", h.getTree)
		accounts.GET("/roots", h.getRoots)
		accounts.GET("/leaves", h.getLeaves)
		accounts.GET("/statistics", h.getStatistics)
		accounts.GET("/code/:code", h.getAccountByCode)
		accounts.GET("/code/:code/children", h.getChildren)
		accounts.GET("/code/:code/ancestors", h.getAncestors)
		accounts.GET("/code/:code/descendants", h.getDescendants)
		accounts.GET("/:id", h.getAccount)
		accounts.GET("/:id/balance", h.getBalance)
		accounts.PUT("/:id", h.updateAccount)
		accounts.POST("/:id/move", h.moveAccount)
		accounts.DELETE("/:id", h.deleteAccount)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)
	logger.Info("Received request to create account", slog.String("code", req.Code), slog.String("tenant_id", tenantID))

	account, err := h.accountService.CreateAccount(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create account")
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *accountHandler) seedStandardChart(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	accounts, err := h.accountService.SeedStandardChart(c.Request.Context(), tenantID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to seed standard chart")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"accounts": accounts})
}

func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByID(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *accountHandler) getAccountByCode(c *gin.Context) {
	account, err := h.accountService.GetAccountByCode(c.Request.Context(), middleware.GetTenantID(c), c.Param("code"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (h *accountHandler) getBalance(c *gin.Context) {
	asOf, ok := parseDateQuery(c, "asOf")
	if !ok {
		return
	}

	tenantID := middleware.GetTenantID(c)
	accountID := c.Param("id")
	if asOf.IsZero() {
		balance, err := h.balanceService.CurrentBalance(c.Request.Context(), tenantID, accountID)
		if err != nil {
			respondServiceError(c, err, "Failed to resolve balance")
			return
		}
		c.JSON(http.StatusOK, gin.H{"accountID": accountID, "balance": balance})
		return
	}

	balance, err := h.balanceService.BalanceAsOf(c.Request.Context(), tenantID, accountID, asOf)
	if err != nil {
		respondServiceError(c, err, "Failed to resolve balance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accountID": accountID, "balance": balance, "asOf": asOf})
}

func (h *accountHandler) updateAccount(c *gin.Context) {
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	diff, err := h.accountService.UpdateAccount(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"), req, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, diff)
}

func (h *accountHandler) moveAccount(c *gin.Context) {
	var req dto.MoveAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accountService.MoveAccount(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"), req, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to move account")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *accountHandler) deleteAccount(c *gin.Context) {
	err := h.accountService.DeleteAccount(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to delete account")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *accountHandler) getTree(c *gin.Context) {
	tree, err := h.accountService.GetTree(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to build account tree")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tree": tree})
}

func (h *accountHandler) getChildren(c *gin.Context) {
	children, err := h.accountService.GetChildren(c.Request.Context(), middleware.GetTenantID(c), c.Param("code"))
	if err != nil {
		respondServiceError(c, err, "Failed to list children")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": children})
}

func (h *accountHandler) getAncestors(c *gin.Context) {
	ancestors, err := h.accountService.GetAncestors(c.Request.Context(), middleware.GetTenantID(c), c.Param("code"))
	if err != nil {
		respondServiceError(c, err, "Failed to list ancestors")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": ancestors})
}

func (h *accountHandler) getDescendants(c *gin.Context) {
	descendants, err := h.accountService.GetDescendants(c.Request.Context(), middleware.GetTenantID(c), c.Param("code"))
	if err != nil {
		respondServiceError(c, err, "Failed to list descendants")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": descendants})
}

func (h *accountHandler) getRoots(c *gin.Context) {
	roots, err := h.accountService.GetRoots(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to list roots")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": roots})
}

func (h *accountHandler) getLeaves(c *gin.Context) {
	leaves, err := h.accountService.GetLeaves(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to list leaves")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": leaves})
}

func (h *accountHandler) getStatistics(c *gin.Context) {
	stats, err := h.accountService.GetStatistics(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to compute statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
