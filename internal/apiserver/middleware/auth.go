package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/migestion/migestion/internal/auth/jwt"
	"github.com/migestion/migestion/internal/common/cnst"
	"github.com/migestion/migestion/internal/common/dto"
	"github.com/migestion/migestion/internal/common/errorx"
)

// Auth verifies the bearer access token on every request and attaches the
// decoded identity and its tenant to the context. Verification errors are
// passed to the error handler with the expired/invalid distinction intact.
func Auth(codec *jwt.Service, errHandler *errorx.ErrorHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := jwt.ExtractBearer(c.GetHeader(cnst.HeaderAuthorization))
		if token == "" {
			errHandler.Handle(c, errorx.ErrUnauthorized)
			return
		}

		claims, err := codec.VerifyAccess(token)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				errHandler.Handle(c, errorx.ErrTokenExpired)
			} else {
				errHandler.Handle(c, errorx.ErrInvalidToken)
			}
			return
		}

		c.Set(cnst.CtxIdentity, &dto.Identity{
			UserID:   claims.UserID,
			TenantID: claims.TenantID,
			Email:    claims.Email,
			Role:     claims.Role,
		})
		c.Set(cnst.CtxTenantID, claims.TenantID)
		c.Next()
	}
}

// OptionalAuth attempts the same extraction and verification but proceeds
// silently without identity on any failure. For endpoints that behave
// differently for anonymous callers without rejecting them.
func OptionalAuth(codec *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := jwt.ExtractBearer(c.GetHeader(cnst.HeaderAuthorization))
		if token != "" {
			if claims, err := codec.VerifyAccess(token); err == nil {
				c.Set(cnst.CtxIdentity, &dto.Identity{
					UserID:   claims.UserID,
					TenantID: claims.TenantID,
					Email:    claims.Email,
					Role:     claims.Role,
				})
				c.Set(cnst.CtxTenantID, claims.TenantID)
			}
		}
		c.Next()
	}
}

// IdentityFromContext returns the authenticated identity attached by Auth.
func IdentityFromContext(c *gin.Context) (*dto.Identity, bool) {
	v, ok := c.Get(cnst.CtxIdentity)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*dto.Identity)
	return identity, ok && identity != nil
}
