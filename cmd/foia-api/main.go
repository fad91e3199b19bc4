package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/noah-isme/foia-desk-api/api/swagger"
	"github.com/noah-isme/foia-desk-api/internal/handler"
	"github.com/noah-isme/foia-desk-api/internal/middleware"
	"github.com/noah-isme/foia-desk-api/internal/models"
	"github.com/noah-isme/foia-desk-api/internal/registry"
	"github.com/noah-isme/foia-desk-api/internal/repository"
	"github.com/noah-isme/foia-desk-api/internal/service"
	"github.com/noah-isme/foia-desk-api/pkg/cache"
	"github.com/noah-isme/foia-desk-api/pkg/config"
	"github.com/noah-isme/foia-desk-api/pkg/database"
	"github.com/noah-isme/foia-desk-api/pkg/export"
	"github.com/noah-isme/foia-desk-api/pkg/jobs"
	"github.com/noah-isme/foia-desk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/foia-desk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/foia-desk-api/pkg/middleware/requestid"
	"github.com/noah-isme/foia-desk-api/pkg/storage"
)

// @title FOIA Desk API
// @version 1.0.0
// @description Public records request tracking for a single agency
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	snapshots := repository.NewPostgresSnapshotStore(db)
	if err := snapshots.EnsureSchema(ctx); err != nil {
		logr.Sugar().Fatalw("failed to ensure snapshot schema", "error", err)
	}
	officers := repository.NewOfficerRepository(db)
	if err := officers.EnsureSchema(ctx); err != nil {
		logr.Sugar().Fatalw("failed to ensure officer schema", "error", err)
	}

	reg := registry.NewRequestRegistry(registry.Config{
		ResponseWindowDays: cfg.Registry.ResponseWindowDays,
		TrackingPrefix:     cfg.Registry.TrackingPrefix,
	})
	snapshot, err := snapshots.Load(ctx)
	if err != nil {
		logr.Sugar().Fatalw("failed to load registry snapshot", "error", err)
	}
	if err := reg.Restore(snapshot); err != nil {
		logr.Sugar().Fatalw("failed to restore registry", "error", err)
	}
	logr.Sugar().Infow("registry restored", "requests", len(snapshot.Requests))

	seedAdminOfficer(ctx, officers, logr)

	metrics := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Stats.CacheEnabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, statistics cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(client, logr)
			cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Stats.CacheTTL, logr, true)
		}
	}

	requests := service.NewRequestService(service.RequestServiceParams{
		Registry:  reg,
		Snapshots: snapshots,
		Audit:     officers,
		Cache:     cacheService,
		Metrics:   metrics,
		Logger:    logr,
	})
	reports := service.NewReportService(service.ReportServiceParams{
		Registry: reg,
		Cache:    cacheService,
		Logger:   logr,
		CacheTTL: cfg.Stats.CacheTTL,
	})
	auth := service.NewAuthService(officers, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "foia-desk-api",
		Audience:           []string{"foia-desk"},
	})

	var exports *service.ExportService
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		jobStore := repository.NewExportJobStore()
		generator := service.NewExportGenerator(reg, nil, store, signer, service.ExportGeneratorConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, export.NewCSVExporter(), export.NewPDFExporter(), nil)
		worker := service.NewExportWorker(jobStore, generator, cfg.Exports.WorkerRetries, logr)
		queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		exports = service.NewExportService(jobStore, queue, generator, logr, service.ExportServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exports.StartCleanup(ctx)
	}

	if cfg.Monitor.Enabled {
		monitor := service.NewMonitorService(service.MonitorServiceParams{
			Registry: reg,
			Metrics:  metrics,
			Logger:   logr,
			Interval: cfg.Monitor.Interval,
		})
		monitor.Start(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	requestHandler := handler.NewRequestHandler(requests)
	reportHandler := handler.NewReportHandler(reports)
	authHandler := handler.NewAuthHandler(auth)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/requests", requestHandler.Submit)
	api.GET("/requests", requestHandler.List)
	api.GET("/requests/overdue", requestHandler.Overdue)
	api.GET("/requests/:tracking", requestHandler.Get)
	api.GET("/requests/:tracking/report", reportHandler.DetailReport)
	api.POST("/requests/:tracking/appeal", requestHandler.Appeal)
	api.GET("/stats", reportHandler.Statistics)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", middleware.JWT(auth), authHandler.Logout)
	authGroup.POST("/password", middleware.JWT(auth), authHandler.ChangePassword)
	authGroup.GET("/me", middleware.JWT(auth), authHandler.Me)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin, models.RoleOfficer))
	secured.POST("/requests/:tracking/assign", requestHandler.Assign)
	secured.POST("/requests/:tracking/fulfill", requestHandler.Fulfill)
	secured.POST("/requests/:tracking/deny", requestHandler.Deny)
	secured.POST("/requests/:tracking/notes", requestHandler.AddNote)

	if exports != nil {
		exportHandler := handler.NewExportHandler(exports)
		secured.POST("/reports/export", exportHandler.CreateExport)
		secured.GET("/reports/export/:id", exportHandler.ExportStatus)
		// The signed token is the credential; downloads need no session.
		api.GET("/export/:token", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

type adminSeeder interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, officer *models.Officer) error
}

// seedAdminOfficer creates the first admin account on an empty officers table
// with a generated password logged once. Failure is non-fatal: the desk still
// serves public routes without any account.
func seedAdminOfficer(ctx context.Context, officers adminSeeder, logr *zap.Logger) {
	count, err := officers.Count(ctx)
	if err != nil {
		logr.Sugar().Warnw("failed to count officers, skipping admin seed", "error", err)
		return
	}
	if count > 0 {
		return
	}

	password := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logr.Sugar().Warnw("failed to hash seed password", "error", err)
		return
	}
	admin := &models.Officer{
		Email:        "admin@agency.gov",
		PasswordHash: string(hash),
		FullName:     "Desk Administrator",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := officers.Create(ctx, admin); err != nil {
		logr.Sugar().Warnw("failed to seed admin officer", "error", err)
		return
	}
	logr.Sugar().Warnw("seeded initial admin officer, rotate this password",
		"email", admin.Email, "password", password)
}
