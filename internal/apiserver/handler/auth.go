package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/migestion/migestion/internal/apiserver/database"
	"github.com/migestion/migestion/internal/apiserver/middleware"
	"github.com/migestion/migestion/internal/apiserver/service"
	"github.com/migestion/migestion/internal/common/dto"
	"github.com/migestion/migestion/internal/common/errorx"
	"github.com/migestion/migestion/pkg/metrics"
)

// Handler exposes the auth service over HTTP
type Handler struct {
	svc        *service.AuthService
	errHandler *errorx.ErrorHandler
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewHandler creates a new auth handler. metrics may be nil.
func NewHandler(svc *service.AuthService, errHandler *errorx.ErrorHandler, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		svc:        svc,
		errHandler: errHandler,
		metrics:    m,
		logger:     logger,
	}
}

// Register handles POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errHandler.Handle(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}

	result, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		CompanyName: req.CompanyName,
		Slug:        req.Slug,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		ClientIP:    c.ClientIP(),
	})
	h.metrics.AuthAttempt("register", err == nil)
	if err != nil {
		h.errHandler.Handle(c, err)
		return
	}
	h.metrics.TokenPairIssued()

	c.JSON(http.StatusCreated, authResponse(result))
}

// Login handles POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errHandler.Handle(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	h.metrics.AuthAttempt("login", err == nil)
	if err != nil {
		h.errHandler.Handle(c, err)
		return
	}
	h.metrics.TokenPairIssued()

	c.JSON(http.StatusOK, authResponse(result))
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errHandler.Handle(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}

	result, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	h.metrics.AuthAttempt("refresh", err == nil)
	if err != nil {
		h.errHandler.Handle(c, err)
		return
	}
	h.metrics.TokenPairIssued()

	c.JSON(http.StatusOK, &dto.TokenResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.ExpiresAt,
	})
}

// Logout handles POST /auth/logout. Idempotent: revoking an unknown or
// already-revoked token still returns 204.
func (h *Handler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.errHandler.Handle(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LogoutAll handles POST /auth/logout-all
func (h *Handler) LogoutAll(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		h.errHandler.Handle(c, errorx.ErrUnauthorized)
		return
	}

	if err := h.svc.LogoutAll(c.Request.Context(), identity.UserID); err != nil {
		h.errHandler.Handle(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me handles GET /auth/me
func (h *Handler) Me(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		h.errHandler.Handle(c, errorx.ErrUnauthorized)
		return
	}

	user, err := h.svc.CurrentUser(c.Request.Context(), identity.UserID)
	if err != nil {
		h.errHandler.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, &dto.MeResponse{
		User:   userResponse(user),
		Tenant: tenantResponse(&user.Tenant),
	})
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func authResponse(result *service.AuthResult) *dto.AuthResponse {
	return &dto.AuthResponse{
		User:         userResponse(result.User),
		Tenant:       tenantResponse(result.Tenant),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.ExpiresAt,
	}
}

func userResponse(user *database.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        string(user.Role),
		Status:      string(user.Status),
		LastLoginAt: user.LastLoginAt,
	}
}

func tenantResponse(tenant *database.Tenant) *dto.TenantResponse {
	return &dto.TenantResponse{
		ID:     tenant.ID,
		Name:   tenant.Name,
		Slug:   tenant.Slug,
		Status: string(tenant.Status),
	}
}
