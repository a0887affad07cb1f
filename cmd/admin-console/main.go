package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-admin-console/api/swagger"
	"github.com/noah-isme/school-admin-console/internal/handler"
	internalmiddleware "github.com/noah-isme/school-admin-console/internal/middleware"
	"github.com/noah-isme/school-admin-console/internal/models"
	"github.com/noah-isme/school-admin-console/internal/repository"
	"github.com/noah-isme/school-admin-console/internal/service"
	"github.com/noah-isme/school-admin-console/pkg/backend"
	"github.com/noah-isme/school-admin-console/pkg/cache"
	"github.com/noah-isme/school-admin-console/pkg/config"
	"github.com/noah-isme/school-admin-console/pkg/export"
	"github.com/noah-isme/school-admin-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-admin-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-admin-console/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// @title School Admin Console
// @version 1.0.0
// @description Server-side admin console over the school REST backend
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var metricsSvc *service.MetricsService
	var observer backend.Observer
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
		observer = metricsSvc
	}

	client := backend.New(backend.Options{
		BaseURL:  cfg.Backend.BaseURL,
		Timeout:  cfg.Backend.Timeout,
		Observer: observer,
		Logger:   logr,
	})

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, lookups will not be cached", "error", err)
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Lookups.CacheTTL, logr, redisClient != nil)

	repos := service.Repositories{
		Students:        repository.NewResourceRepository[models.Student](client, repository.StudentsEndpoint, logr),
		Teachers:        repository.NewResourceRepository[models.Teacher](client, repository.TeachersEndpoint, logr),
		Classes:         repository.NewResourceRepository[models.ClassRoom](client, repository.ClassesEndpoint, logr),
		Subjects:        repository.NewResourceRepository[models.Subject](client, repository.SubjectsEndpoint, logr),
		Scores:          repository.NewResourceRepository[models.ScoreGrade](client, repository.ScoresEndpoint, logr),
		FeeStructures:   repository.NewResourceRepository[models.FeeStructure](client, repository.FeeStructuresEndpoint, logr),
		FeePayments:     repository.NewResourceRepository[models.FeePayment](client, repository.FeePaymentsEndpoint, logr),
		PickupLocations: repository.NewResourceRepository[models.PickupLocation](client, repository.PickupLocationsEndpoint, logr),
	}
	lookups := service.NewLookupService(cacheSvc, cfg.Lookups.CacheTTL, logr)
	registry := service.NewResourceRegistry(repos, lookups, service.RegistryOptions{
		PerPage:           cfg.Lists.PageSize,
		ReferencePageSize: cfg.Lists.ReferencePageSize,
	}, logr)

	reportSvc := service.NewReportService(repository.NewReportRepository(client), export.NewPDFExporter(), logr)
	dashboardSvc := service.NewDashboardService(repository.NewDashboardRepository(client), logr)

	resourceHandler := handler.NewResourceHandler(registry, export.NewCSVExporter())
	reportHandler := handler.NewReportHandler(reportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, cacheSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	resourceHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)
	api.GET("/dashboard", dashboardHandler.Show)
	if cfg.Metrics.Enabled {
		api.GET("/metrics/summary", metricsHandler.Summary)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
