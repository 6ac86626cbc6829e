package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/code-100-precent/LingQfight/cmd/bootstrap"
	"github.com/code-100-precent/LingQfight/internal/handlers"
	"github.com/code-100-precent/LingQfight/pkg/config"
	"github.com/code-100-precent/LingQfight/pkg/logger"
	"github.com/code-100-precent/LingQfight/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QfightApp struct {
	db        *gorm.DB
	apiPrefix string
	handlers  *handlers.Handlers
}

func NewQfightApp(db *gorm.DB, apiPrefix string) *QfightApp {
	return &QfightApp{
		db:        db,
		apiPrefix: apiPrefix,
		handlers:  handlers.NewHandlers(db, apiPrefix),
	}
}

// RegisterRoutes mounts the API behind the audit trail for register, update and reset
func (app *QfightApp) RegisterRoutes(r *gin.Engine) {
	audit := middleware.DefaultOperationLogConfig(app.apiPrefix)
	r.Use(middleware.OperationLogMiddleware(app.db, audit, logger.Lg.Named("audit")))
	app.handlers.Register(r)
}

func main() {
	// 1. Print Banner (optional)
	_ = bootstrap.PrintBannerFromFile("banner.txt")

	// 2. Parse Command Line Parameters
	mode := flag.String("mode", "", "running environment (development, test, production)")
	initSQL := flag.String("init-sql", "", "path to database init .sql script (optional)")
	addr := flag.String("addr", "", "HTTP serve address (overrides ADDR)")
	dbDriver := flag.String("db-driver", "", "database driver (overrides DB_DRIVER)")
	dsn := flag.String("dsn", "", "database source name (overrides DSN)")
	flag.Parse()

	// 3. Set Environment Variables
	if *mode != "" {
		os.Setenv("APP_ENV", *mode)
	}

	// 4. Load Global Configuration
	if err := config.Load(); err != nil {
		panic("config load failed: " + err.Error())
	}
	cfg := config.GlobalConfig
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbDriver != "" {
		cfg.Server.DBDriver = *dbDriver
	}
	if *dsn != "" {
		cfg.Server.DSN = *dsn
	}

	// 5. Load Log Configuration
	if err := logger.Init(&cfg.Log, cfg.Mode); err != nil {
		panic(err)
	}
	defer logger.Lg.Sync()

	// 6. Print Configuration
	bootstrap.LogConfigInfo()

	// 7. Load Data Source, migrate, seed the admin account
	db, err := bootstrap.SetupDatabase(os.Stdout, &bootstrap.Options{
		InitSQLPath: *initSQL,
		AutoMigrate: true,
		SeedAdmin:   true,
	})
	if err != nil {
		logger.Error("database setup failed", zap.Error(err))
		os.Exit(1)
	}

	// 8. Initialize Gin Routing
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(logger.Lg))
	r.Use(middleware.RecoveryMiddleware(logger.Lg))
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.CompressionMiddleware(middleware.DefaultCompressionConfig()))

	// 9. Register Routes
	NewQfightApp(db, cfg.Server.APIPrefix).RegisterRoutes(r)

	// 10. Start HTTP Server
	httpServer := &http.Server{
		Addr:           cfg.Server.Addr,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.Server.Addr), zap.String("api_prefix", cfg.Server.APIPrefix))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server run failed", zap.Error(err))
		}
	}()

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
