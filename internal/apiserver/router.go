package apiserver

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/migestion/migestion/internal/apiserver/handler"
	"github.com/migestion/migestion/internal/apiserver/middleware"
	"github.com/migestion/migestion/internal/auth/jwt"
	"github.com/migestion/migestion/internal/common/cnst"
	"github.com/migestion/migestion/internal/common/errorx"
	"github.com/migestion/migestion/pkg/metrics"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Handler     *handler.Handler
	Codec       *jwt.Service
	ErrHandler  *errorx.ErrorHandler
	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimiter
	Tracing     bool
}

// NewRouter wires the middleware chain and routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if deps.Tracing {
		r.Use(otelgin.Middleware(cnst.AppName))
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	r.GET("/healthz", deps.Handler.Healthz)

	api := r.Group(cnst.APIPrefix)

	public := api.Group("/auth")
	public.POST("/register", deps.RateLimiter.Limit("register", deps.ErrHandler), deps.Handler.Register)
	public.POST("/login", deps.RateLimiter.Limit("login", deps.ErrHandler), deps.Handler.Login)
	public.POST("/refresh", deps.RateLimiter.Limit("refresh", deps.ErrHandler), deps.Handler.Refresh)

	protected := api.Group("/auth",
		middleware.Auth(deps.Codec, deps.ErrHandler),
		middleware.RequireTenant(deps.ErrHandler),
	)
	protected.POST("/logout", deps.Handler.Logout)
	protected.POST("/logout-all", deps.Handler.LogoutAll)
	protected.GET("/me", deps.Handler.Me)

	return r
}
