package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/migestion/migestion/internal/common/cnst"
	"github.com/migestion/migestion/internal/common/errorx"
)

// RequireTenant cross-checks the tenant context attached to the request
// against the authenticated identity. Any path that could supply a tenant id
// independently of the verified claims (the X-Tenant-ID header, a :tenantId
// route param) is compared here, making this the single chokepoint against
// cross-tenant access.
func RequireTenant(errHandler *errorx.ErrorHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetString(cnst.CtxTenantID)
		if tenantID == "" {
			errHandler.Handle(c, errorx.ErrUnauthorized)
			return
		}

		identity, ok := IdentityFromContext(c)
		if !ok || identity.TenantID != tenantID {
			errHandler.Handle(c, errorx.ErrTenantMismatch)
			return
		}

		if claimed := claimedTenant(c); claimed != "" && claimed != identity.TenantID {
			errHandler.Handle(c, errorx.ErrTenantMismatch)
			return
		}

		c.Next()
	}
}

func claimedTenant(c *gin.Context) string {
	if v := c.Param("tenantId"); v != "" {
		return v
	}
	return c.GetHeader(cnst.HeaderTenantID)
}
