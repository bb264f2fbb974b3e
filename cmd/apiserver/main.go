package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/migestion/migestion/internal/apiserver"
	"github.com/migestion/migestion/internal/apiserver/audit"
	"github.com/migestion/migestion/internal/apiserver/database"
	"github.com/migestion/migestion/internal/apiserver/handler"
	"github.com/migestion/migestion/internal/apiserver/middleware"
	"github.com/migestion/migestion/internal/apiserver/service"
	"github.com/migestion/migestion/internal/auth/jwt"
	"github.com/migestion/migestion/internal/auth/password"
	"github.com/migestion/migestion/internal/common/config"
	"github.com/migestion/migestion/internal/common/errorx"
	"github.com/migestion/migestion/internal/i18n"
	"github.com/migestion/migestion/pkg/logger"
	"github.com/migestion/migestion/pkg/metrics"
	"github.com/migestion/migestion/pkg/trace"
	"github.com/migestion/migestion/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "MiGestion API server",
		Long:  `MiGestion API server provides the multi-tenant CRM REST API`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, cfgPath, err := config.LoadConfig[config.APIServerConfig](configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting apiserver",
		zap.String("version", version.Get()),
		zap.String("config", cfgPath))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := trace.InitTracing(ctx, &cfg.Tracing, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			_ = shutdown(context.Background())
		}()
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	codec, err := jwt.NewService(jwt.Config{
		AccessSecret:    cfg.Auth.AccessSecret,
		RefreshSecret:   cfg.Auth.RefreshSecret,
		AccessDuration:  cfg.Auth.AccessDuration,
		RefreshDuration: cfg.Auth.RefreshDuration,
	})
	if err != nil {
		zapLogger.Fatal("failed to initialize token codec", zap.Error(err))
	}

	var translator *i18n.Translator
	if cfg.I18n.Path != "" {
		translator = i18n.New(cfg.I18n.DefaultLanguage)
		if err := translator.LoadTranslations(cfg.I18n.Path); err != nil {
			zapLogger.Warn("failed to load translations", zap.Error(err))
			translator = nil
		}
	}

	errHandler := errorx.NewErrorHandler(zapLogger, translator)
	dispatcher := audit.NewDispatcher(audit.ZapSink{Logger: zapLogger.Named("audit")}, 256)
	defer dispatcher.Close()

	svc := service.NewAuthService(db, codec, password.NewHasher(cfg.Auth.BcryptCost), dispatcher, zapLogger)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled && cfg.RateLimit.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.Redis.Addr,
			Username: cfg.RateLimit.Redis.Username,
			Password: cfg.RateLimit.Redis.Password,
			DB:       cfg.RateLimit.Redis.DB,
		})
		defer func() {
			_ = rdb.Close()
		}()
		limiter = middleware.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window, zapLogger)
	}

	gin.SetMode(gin.ReleaseMode)
	router := apiserver.NewRouter(apiserver.RouterDeps{
		Handler:     handler.NewHandler(svc, errHandler, m, zapLogger),
		Codec:       codec,
		ErrHandler:  errHandler,
		Metrics:     m,
		RateLimiter: limiter,
		Tracing:     cfg.Tracing.Enabled,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		zapLogger.Info("listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
