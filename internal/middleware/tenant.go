package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Authentication and role assignment happen upstream; this core receives an
// already-resolved tenant, user and role on every request and re-validates
// business invariants regardless of upstream shape validation.
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// RoleElevated marks callers whose journal entries post immediately;
// everyone else creates drafts.
const RoleElevated = "elevated"

const (
	tenantIDKey = "tenantID"
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// TenantContextMiddleware extracts the tenant/user/role triple from the
// request headers and rejects requests missing the tenant or user.
func TenantContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader(HeaderTenantID)
		userID := c.GetHeader(HeaderUserID)
		if tenantID == "" || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant and user identification required"})
			return
		}
		c.Set(tenantIDKey, tenantID)
		c.Set(userIDKey, userID)
		c.Set(userRoleKey, c.GetHeader(HeaderUserRole))
		c.Next()
	}
}

// GetTenantID returns the tenant ID resolved by TenantContextMiddleware.
func GetTenantID(c *gin.Context) string {
	return c.GetString(tenantIDKey)
}

// GetUserID returns the user ID resolved by TenantContextMiddleware.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// IsElevated reports whether the caller may post entries directly.
func IsElevated(c *gin.Context) bool {
	return c.GetString(userRoleKey) == RoleElevated
}
