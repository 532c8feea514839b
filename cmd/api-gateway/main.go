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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/examseat/seat-alloc-api/api/swagger"
	"github.com/examseat/seat-alloc-api/internal/allocator"
	"github.com/examseat/seat-alloc-api/internal/handler"
	"github.com/examseat/seat-alloc-api/internal/middleware"
	"github.com/examseat/seat-alloc-api/internal/models"
	"github.com/examseat/seat-alloc-api/internal/repository"
	"github.com/examseat/seat-alloc-api/internal/service"
	rediscache "github.com/examseat/seat-alloc-api/pkg/cache"
	"github.com/examseat/seat-alloc-api/pkg/config"
	"github.com/examseat/seat-alloc-api/pkg/database"
	"github.com/examseat/seat-alloc-api/pkg/jobs"
	"github.com/examseat/seat-alloc-api/pkg/logger"
	corsmiddleware "github.com/examseat/seat-alloc-api/pkg/middleware/cors"
	reqidmiddleware "github.com/examseat/seat-alloc-api/pkg/middleware/requestid"
	"github.com/examseat/seat-alloc-api/pkg/storage"
)

// @title Exam Seat Allocation API
// @version 1.0.0
// @description Seat-assignment service for exam halls: rosters, room layouts,
// @description conflict-minimizing allocation runs, and seating-chart exports.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := rediscache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, seat lookups will hit the database", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	examRepo := repository.NewExamRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "seat-alloc-api",
	})
	userService := service.NewUserService(userRepo, validate, logr)
	studentService := service.NewStudentService(studentRepo, validate, logr)
	classroomService := service.NewClassroomService(classroomRepo, validate, logr)
	examService := service.NewExamService(examRepo, classroomRepo, validate, logr)

	allocationService := service.NewAllocationService(
		examRepo,
		classroomRepo,
		allocationRepo,
		cacheRepo,
		metricsService,
		engineOptions(cfg.Allocator),
		cfg.Lookup.CacheTTL,
		validate,
		logr,
	)

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportService := service.NewExportService(
		allocationRepo,
		examRepo,
		exportStorage,
		signer,
		service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
			JobTTL:    cfg.Exports.JobTTL,
		},
		logr,
		nil,
		nil,
	)
	exportQueue := jobs.NewQueue("exports", exportService.Process, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportService.SetQueue(exportQueue)
	exportQueue.Start(ctx)
	defer exportQueue.Stop()
	exportService.StartCleanupLoop(ctx, cfg.Exports.CleanupInterval)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	studentHandler := handler.NewStudentHandler(studentService)
	classroomHandler := handler.NewClassroomHandler(classroomService)
	examHandler := handler.NewExamHandler(examService)
	allocationHandler := handler.NewAllocationHandler(allocationService)
	exportHandler := handler.NewExportHandler(exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.GET("/public/seat-lookup", allocationHandler.Lookup)
	api.GET("/exports/download/:token", exportHandler.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.POST("/auth/change-password", authHandler.ChangePassword)
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/students", studentHandler.List)
		authed.GET("/students/:id", studentHandler.Get)
		authed.GET("/classrooms", classroomHandler.List)
		authed.GET("/classrooms/:id", classroomHandler.Get)
		authed.GET("/exams", examHandler.List)
		authed.GET("/exams/:id", examHandler.Get)
		authed.GET("/exams/:id/registrations", examHandler.Registrations)
		authed.GET("/exams/:id/allocations", allocationHandler.List)
		authed.GET("/exports/jobs/:jobId", exportHandler.Status)
		authed.POST("/exams/:id/exports", exportHandler.Create)
	}

	admin := api.Group("")
	admin.Use(middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.Get)
		admin.POST("/users", userHandler.Create)
		admin.PUT("/users/:id", userHandler.Update)
		admin.DELETE("/users/:id", userHandler.Delete)

		admin.POST("/students", studentHandler.Create)
		admin.PUT("/students/:id", studentHandler.Update)
		admin.DELETE("/students/:id", studentHandler.Delete)
		admin.POST("/students/import", studentHandler.Import)

		admin.POST("/classrooms", classroomHandler.Create)
		admin.PUT("/classrooms/:id", classroomHandler.Update)

		admin.POST("/exams", examHandler.Create)
		admin.POST("/exams/:id/registrations", examHandler.Register)
		admin.DELETE("/exams/:id/registrations/:studentId", examHandler.Unregister)
		admin.POST("/exams/:id/capacity", examHandler.Capacity)
		admin.POST("/exams/:id/allocate", allocationHandler.Allocate)

		admin.GET("/metrics/summary", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// engineOptions maps configured overrides onto the engine defaults. Zero
// values fall through to the canonical constants.
func engineOptions(cfg config.AllocatorConfig) allocator.Options {
	weights := allocator.DefaultWeights()
	if cfg.SubjectBenchWeight > 0 {
		weights.SubjectBench = cfg.SubjectBenchWeight
	}
	if cfg.DeptBenchWeight > 0 {
		weights.DeptBench = cfg.DeptBenchWeight
	}
	if cfg.SubjectAdjWeight > 0 {
		weights.SubjectAdj = cfg.SubjectAdjWeight
	}
	if cfg.DeptAdjWeight > 0 {
		weights.DeptAdj = cfg.DeptAdjWeight
	}
	if cfg.SectionAdjWeight > 0 {
		weights.SectionAdj = cfg.SectionAdjWeight
	}
	if cfg.YearAdjWeight > 0 {
		weights.YearAdj = cfg.YearAdjWeight
	}
	return allocator.Options{
		Weights:         weights,
		PrimaryPoolSize: cfg.PrimaryPoolSize,
		SampleBuckets:   cfg.SampleBuckets,
		PerBucketSample: cfg.PerBucketSample,
		MaxSwapTrials:   cfg.MaxSwapTrials,
	}
}
