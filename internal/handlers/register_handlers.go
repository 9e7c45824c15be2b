package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/dEvAshirvad/finager-backend/internal/core/ports/services"
	"github.com/dEvAshirvad/finager-backend/internal/middleware"
	"github.com/dEvAshirvad/finager-backend/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerBindingValidations()

	// Health check route, outside the tenant-scoped API
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific
// entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	// Every v1 route runs in the context of a resolved tenant and user.
	v1 := r.Group("/api/v1", middleware.TenantContextMiddleware())

	registerAccountRoutes(v1, services.Account, services.Balance)
	registerJournalRoutes(v1, services.Journal)
	registerReportingRoutes(v1, services.Reporting)
}
