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
	"go.uber.org/zap"

	_ "github.com/tutoringco/portal-api/api/swagger"
	"github.com/tutoringco/portal-api/internal/handler"
	"github.com/tutoringco/portal-api/internal/middleware"
	"github.com/tutoringco/portal-api/internal/models"
	"github.com/tutoringco/portal-api/internal/repository"
	"github.com/tutoringco/portal-api/internal/service"
	"github.com/tutoringco/portal-api/migrations"
	"github.com/tutoringco/portal-api/pkg/cache"
	"github.com/tutoringco/portal-api/pkg/config"
	"github.com/tutoringco/portal-api/pkg/database"
	"github.com/tutoringco/portal-api/pkg/jobs"
	"github.com/tutoringco/portal-api/pkg/logger"
	corsmiddleware "github.com/tutoringco/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tutoringco/portal-api/pkg/middleware/requestid"
	"github.com/tutoringco/portal-api/pkg/storage"
)

// @title Tutoring Portal API
// @version 1.0.0
// @description Student-tutor matching, update logs, session history and reporting
// @BasePath /
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, migrations.FS); err != nil {
			logr.Sugar().Fatalw("migrations failed", "error", err)
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching and pub/sub disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	updateRepo := repository.NewUpdateRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	tutorRepo := repository.NewTutorRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	// Services
	metricsSvc := service.NewMetricsService()
	syncSvc := service.NewSyncService(cacheRepo, logr, service.SyncConfig{
		PollInterval:  cfg.Sync.PollInterval,
		ChannelPrefix: cfg.Sync.ChannelPrefix,
	})
	authSvc := service.NewAuthService(userRepo, tokenRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:   cfg.JWT.Secret,
		AccessTokenExpiry:   cfg.JWT.Expiration,
		RefreshTokenExpiry:  cfg.JWT.RefreshExpiration,
		Issuer:              "portal-api",
		RegistrationTimeout: cfg.Registration.Timeout,
	})
	tutorSvc := service.NewTutorService(tutorRepo, cacheRepo, cfg.Directory.CacheTTL, metricsSvc, logr)
	requestSvc := service.NewRequestService(requestRepo, tutorRepo, syncSvc, metricsSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, requestRepo, auditRepo, syncSvc, metricsSvc, validate, logr)
	updateSvc := service.NewUpdateService(updateRepo, assignmentSvc, syncSvc, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, assignmentSvc, syncSvc, validate, logr)
	applicationSvc := service.NewApplicationService(applicationRepo, userRepo, tutorRepo, tutorSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(requestRepo, assignmentRepo, updateRepo, sessionRepo, userRepo, applicationRepo, cacheRepo, cfg.Dashboard.CacheTTL, metricsSvc, logr)

	var reportSvc *service.ReportService
	var reportStore *storage.ArtifactStore
	if cfg.Reports.Enabled {
		reportStore, err = storage.NewArtifactStore(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("report storage init failed", "error", err)
		}
		signer := storage.NewDownloadSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportSvc = service.NewReportService(reportRepo, sessionRepo, updateRepo, reportStore, signer, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		}, validate, logr)
		reportSvc.Start(ctx)
		defer reportSvc.Stop()

		if cfg.Reports.CleanupInterval > 0 {
			go cleanupReportArtifacts(ctx, reportStore, cfg.Reports.CleanupInterval, cfg.Reports.SignedURLTTL, logr.Sugar())
		}
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	requestHandler := handler.NewRequestHandler(requestSvc, tutorSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc, tutorSvc)
	updateHandler := handler.NewUpdateHandler(updateSvc, tutorSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc, tutorSvc)
	tutorHandler := handler.NewTutorHandler(tutorSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, tutorSvc)
	syncHandler := handler.NewSyncHandler(syncSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	// Public surface: directory, request intake and tutor applications.
	api.GET("/tutors", tutorHandler.Directory)
	api.GET("/tutors/:username", tutorHandler.Get)
	api.POST("/requests", requestHandler.Submit)
	api.POST("/applications", applicationHandler.Submit)

	tutor := api.Group("/tutor", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTutor, models.RoleAdmin))
	tutor.GET("/requests", requestHandler.Queue)
	tutor.POST("/requests/:id/accept", middleware.Audit(auditRepo, models.AuditActionAccept, "tutoring_request"), assignmentHandler.Accept)
	tutor.POST("/requests/:id/reject", middleware.Audit(auditRepo, models.AuditActionReject, "tutoring_request"), assignmentHandler.Reject)
	tutor.GET("/students", assignmentHandler.Students)
	tutor.POST("/students/:email/updates", updateHandler.Post)
	tutor.GET("/students/:email/updates", updateHandler.StudentLog)
	tutor.POST("/students/:email/sessions", sessionHandler.Log)
	tutor.POST("/students/:email/schedule", sessionHandler.Schedule)
	tutor.GET("/sessions", sessionHandler.TutorHistory)
	tutor.GET("/schedule", sessionHandler.TutorSchedule)
	tutor.PATCH("/schedule/:id/status", sessionHandler.Transition)
	tutor.GET("/profile", tutorHandler.MyProfile)
	tutor.PUT("/profile", tutorHandler.UpdateProfile)
	tutor.GET("/dashboard", dashboardHandler.Tutor)

	student := api.Group("/student", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent, models.RoleAdmin))
	student.GET("/updates", updateHandler.List)
	student.POST("/updates/:id/read", updateHandler.MarkRead)
	student.GET("/sessions", sessionHandler.History)
	student.GET("/schedule", sessionHandler.Upcoming)
	student.GET("/dashboard", dashboardHandler.Student)

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/requests", requestHandler.List)
	admin.GET("/applications", applicationHandler.List)
	admin.POST("/applications/:id/review", applicationHandler.Review)
	admin.GET("/dashboard", dashboardHandler.Admin)

	api.GET("/sync/stream", middleware.JWT(authSvc), syncHandler.Stream)

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc, reportStore)
		reports := api.Group("/reports")
		reports.GET("/download/:token", reportHandler.Download)
		reports.POST("", middleware.JWT(authSvc), reportHandler.Create)
		reports.GET("", middleware.JWT(authSvc), reportHandler.List)
		reports.GET("/:id", middleware.JWT(authSvc), reportHandler.Get)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}

// cleanupReportArtifacts deletes stored report files once their signed URLs
// can no longer be minted fresh.
func cleanupReportArtifacts(ctx context.Context, store *storage.ArtifactStore, interval, ttl time.Duration, logr *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.CleanupOlderThan(ttl)
			if err != nil {
				logr.Warnw("report cleanup failed", "error", err)
				continue
			}
			if len(removed) > 0 {
				logr.Infow("report artifacts removed", "count", len(removed))
			}
		}
	}
}
