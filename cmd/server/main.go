package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/config"
	"github.com/sritlabs/sat-backend/internal/database"
	"github.com/sritlabs/sat-backend/internal/handler"
	"github.com/sritlabs/sat-backend/internal/logger"
	"github.com/sritlabs/sat-backend/internal/repository"
	"github.com/sritlabs/sat-backend/internal/router"
	"github.com/sritlabs/sat-backend/internal/service"
	"github.com/sritlabs/sat-backend/internal/validator"
	"github.com/sritlabs/sat-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting SAT Portal Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	certRepo := repository.NewCertificateRepository(pool)
	formRepo := repository.NewFormRepository(pool)
	responseRepo := repository.NewFormResponseRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	mailerService := service.NewMailerService(cfg, rdb)
	storageService := service.NewStorageService(cfg)
	notifyService := service.NewNotifyService(rdb, log)
	studentService := service.NewStudentService(studentRepo, authService, mailerService, log)
	adminService := service.NewAdminService(adminRepo, authService, mailerService, log)
	certService := service.NewCertificateService(certRepo, studentRepo, storageService, mailerService, notifyService, log)
	formService := service.NewFormService(formRepo, responseRepo, studentRepo, storageService, notifyService, log)
	reminderService := service.NewReminderService(formRepo, responseRepo, studentRepo, mailerService, log)
	dashboardService := service.NewDashboardService(dashboardRepo, rdb, log)
	reportService := service.NewReportService(log)
	messageService := service.NewMessageService(messageRepo, adminRepo, mailerService, notifyService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, studentService, adminService),
		StudentPortal: handler.NewStudentPortalHandler(certService, formService),
		StudentMgmt:   handler.NewStudentManagementHandler(studentService),
		Certificate:   handler.NewCertificateHandler(certService, storageService),
		Form:          handler.NewFormHandler(formService, reminderService, storageService),
		Report:        handler.NewReportHandler(reportService, certService, studentService, formService),
		Message:       handler.NewMessageHandler(messageService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
		SuperAdmin:    handler.NewSuperAdminHandler(adminService),
		System:        handler.NewSystemHandler(rdb, log),
		WS:            handler.NewWSHandler(notifyService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	mailWorker := worker.NewMailWorker(rdb, mailerService, log)
	reminderWorker := worker.NewReminderWorker(reminderService, cfg.ReminderCron, log)

	go mailWorker.Start(workerCtx)
	go reminderWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the mail queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
