package main

import (
	"context"
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

	_ "github.com/noah-isme/review-center-api/api/swagger"
	"github.com/noah-isme/review-center-api/internal/handler"
	internalmiddleware "github.com/noah-isme/review-center-api/internal/middleware"
	"github.com/noah-isme/review-center-api/internal/repository"
	"github.com/noah-isme/review-center-api/internal/service"
	"github.com/noah-isme/review-center-api/pkg/cache"
	"github.com/noah-isme/review-center-api/pkg/config"
	"github.com/noah-isme/review-center-api/pkg/database"
	"github.com/noah-isme/review-center-api/pkg/export"
	"github.com/noah-isme/review-center-api/pkg/jobs"
	"github.com/noah-isme/review-center-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/review-center-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/review-center-api/pkg/middleware/requestid"
	"github.com/noah-isme/review-center-api/pkg/storage"
)

// @title Review Center API
// @version 0.1.0
// @description Seasonal enrollment and invoicing service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, season cache disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	media, err := storage.NewLocalStorage(cfg.Storage.MediaDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init media storage", "error", err)
	}

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	seasonRepo := repository.NewSeasonRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	seasonSvc := service.NewSeasonService(seasonRepo, cacheRepo, cfg.Seasons.CacheTTL, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, invoiceRepo, logr)

	var expirationSvc *service.ExpirationService
	expirationQueue := jobs.NewQueue("expirations", func(ctx context.Context, job jobs.Job) error {
		return expirationSvc.HandleJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Enrollment.WorkerConcurrency,
		BufferSize: cfg.Enrollment.QueueBuffer,
		Logger:     logr,
	})
	expirationSvc = service.NewExpirationService(studentRepo, enrollmentSvc, expirationQueue, cfg.Enrollment.GracePeriod, metricsSvc, logr)

	paymentSvc := service.NewPaymentService(seasonSvc, enrollmentSvc, invoiceRepo, studentRepo, expirationSvc, metricsSvc, logr)
	studentSvc := service.NewStudentService(studentRepo, enrollmentSvc, userRepo, media, export.NewStatementPDF(), validate, logr)

	studentHandler := handler.NewStudentHandler(studentSvc, paymentSvc, expirationSvc)
	seasonHandler := handler.NewSeasonHandler(seasonSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	expirationQueue.Start(ctx)
	defer expirationQueue.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		students := api.Group("/students")
		{
			students.GET("", studentHandler.List)
			students.GET("/export", studentHandler.ExportCSV)
			students.POST("", studentHandler.Create)
			students.GET("/:id", studentHandler.Get)
			students.PUT("/:id", studentHandler.Update)
			students.DELETE("/:id", studentHandler.Delete)
			students.GET("/:id/export", studentHandler.Export)
			students.POST("/:id/payment-setup", studentHandler.SetupPayment)
			students.POST("/:id/finish", studentHandler.FinishEnrollment)
			students.POST("/:id/photo", studentHandler.UploadPhoto)
			students.GET("/:id/statement", studentHandler.Statement)
			students.GET("/:id/enrollment", enrollmentHandler.Status)
			students.GET("/:id/invoices", enrollmentHandler.Invoices)
			students.GET("/:id/invoices/current", enrollmentHandler.CurrentInvoices)
		}

		seasons := api.Group("/seasons")
		{
			seasons.GET("", seasonHandler.List)
			seasons.POST("", seasonHandler.Create)
			seasons.GET("/current", seasonHandler.Current)
			seasons.GET("/:id", seasonHandler.Get)
		}
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
