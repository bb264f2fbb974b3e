package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/migestion/migestion/internal/apiserver/database"
	"github.com/migestion/migestion/internal/common/errorx"
)

// roleLevels maps each role to its privilege level. Strictly descending,
// no ties.
var roleLevels = map[database.UserRole]int{
	database.RoleOwner:   100,
	database.RoleAdmin:   80,
	database.RoleManager: 60,
	database.RoleUser:    40,
}

// RoleLevel returns the numeric level of a role, 0 for unknown roles.
func RoleLevel(role string) int {
	return roleLevels[database.UserRole(role)]
}

// Authorize passes callers whose role level is at least the level of any of
// the allowed roles: naming manager also admits admin and owner. Runs after
// Auth, so a missing identity means the chain was assembled wrong.
func Authorize(errHandler *errorx.ErrorHandler, allowed ...database.UserRole) gin.HandlerFunc {
	threshold := 0
	for i, role := range allowed {
		if level := roleLevels[role]; i == 0 || level < threshold {
			threshold = level
		}
	}

	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			errHandler.Handle(c, errorx.ErrForbidden.WithMessage("Authentication required"))
			return
		}

		if threshold == 0 || RoleLevel(identity.Role) < threshold {
			errHandler.Handle(c, errorx.ErrForbidden)
			return
		}
		c.Next()
	}
}

// RequireExactRole ignores the hierarchy and requires exact membership. For
// the few actions that must not be inherited upward.
func RequireExactRole(errHandler *errorx.ErrorHandler, roles ...database.UserRole) gin.HandlerFunc {
	allowed := make(map[database.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			errHandler.Handle(c, errorx.ErrForbidden.WithMessage("Authentication required"))
			return
		}

		if _, ok := allowed[database.UserRole(identity.Role)]; !ok {
			errHandler.Handle(c, errorx.ErrForbidden)
			return
		}
		c.Next()
	}
}
