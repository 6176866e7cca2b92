package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/campushealth/campushealth/internal/config"
	"github.com/campushealth/campushealth/internal/domain/account"
	"github.com/campushealth/campushealth/internal/domain/analytics"
	"github.com/campushealth/campushealth/internal/domain/audit"
	"github.com/campushealth/campushealth/internal/domain/files"
	"github.com/campushealth/campushealth/internal/domain/notices"
	"github.com/campushealth/campushealth/internal/domain/records"
	"github.com/campushealth/campushealth/internal/domain/scheduling"
	"github.com/campushealth/campushealth/internal/domain/settings"
	"github.com/campushealth/campushealth/internal/domain/support"
	"github.com/campushealth/campushealth/internal/domain/wellness"
	"github.com/campushealth/campushealth/internal/platform/auth"
	"github.com/campushealth/campushealth/internal/platform/blobstore"
	"github.com/campushealth/campushealth/internal/platform/db"
	"github.com/campushealth/campushealth/internal/platform/middleware"
	"github.com/campushealth/campushealth/internal/platform/notify"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "healthd",
		Short: "Campus Health API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the campus health API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	// migrate down - keep as warning
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Restore from a backup or write a forward migration instead.")
			return nil
		},
	})

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Token issuing and revocation
	issuer := auth.NewTokenIssuer(cfg.AuthSigningSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	revoked := auth.NewRevocationList()
	defer revoked.Close()

	// Upload storage
	store, err := blobstore.NewFSStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("failed to open upload directory")
	}

	// Repositories
	userRepo := account.NewUserRepoPG(pool)
	studentRepo := account.NewStudentProfileRepoPG(pool)
	providerRepo := account.NewProviderProfileRepoPG(pool)
	appointmentRepo := scheduling.NewAppointmentRepoPG(pool)
	recordRepo := records.NewHealthRecordRepoPG(pool)
	prescriptionRepo := records.NewPrescriptionRepoPG(pool)
	journalRepo := wellness.NewJournalRepoPG(pool)
	moodRepo := wellness.NewMoodLogRepoPG(pool)
	contactRepo := wellness.NewEmergencyContactRepoPG(pool)
	helpRequestRepo := support.NewHelpRequestRepoPG(pool)
	feedbackRepo := support.NewFeedbackRepoPG(pool)
	alertRepo := support.NewHealthAlertRepoPG(pool)
	notificationRepo := notices.NewNotificationRepoPG(pool)
	activityLogRepo := audit.NewActivityLogRepoPG(pool)
	systemLogRepo := audit.NewSystemLogRepoPG(pool)
	settingRepo := settings.NewSettingRepoPG(pool)
	fileRepo := files.NewFileMetadataRepoPG(pool)
	analyticsRepo := analytics.NewRepoPG(pool)

	// Services. The audit and notices services double as the activity
	// recorder and notice writer used by the other domains.
	auditSvc := audit.NewService(activityLogRepo, systemLogRepo)
	noticesSvc := notices.NewService(notificationRepo)
	accountSvc := account.NewService(userRepo, studentRepo, providerRepo, issuer, revoked, auditSvc, pool)
	if cfg.IsDev() {
		// No SMTP transport is configured yet, so outbound notice mail runs
		// against the in-memory sender in development only.
		mailer := notify.NewDispatcher(&notify.MockEmailSender{}, &notify.MockSMSSender{}, notify.NewTemplateEngine())
		noticesSvc.WithMailer(mailer, accountSvc)
	}
	schedulingSvc := scheduling.NewService(appointmentRepo, accountSvc, auditSvc, noticesSvc)
	recordsSvc := records.NewService(recordRepo, prescriptionRepo, auditSvc, noticesSvc)
	wellnessSvc := wellness.NewService(journalRepo, moodRepo, contactRepo)
	supportSvc := support.NewService(helpRequestRepo, feedbackRepo, alertRepo, auditSvc, noticesSvc)
	settingsSvc := settings.NewService(settingRepo)
	filesSvc := files.NewService(fileRepo, store, cfg.MaxUploadBytes)
	analyticsSvc := analytics.NewService(analyticsRepo)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// API groups. Auth endpoints stay public; everything else requires a
	// bearer access token.
	public := e.Group("/api/v1")
	apiV1 := e.Group("/api/v1")
	apiV1.Use(auth.Middleware(issuer, accountSvc, revoked))

	// Rate limiting middleware
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	public.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Routes
	account.NewHandler(accountSvc).RegisterRoutes(public, apiV1)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(apiV1)
	records.NewHandler(recordsSvc).RegisterRoutes(apiV1)
	wellness.NewHandler(wellnessSvc).RegisterRoutes(apiV1)
	support.NewHandler(supportSvc).RegisterRoutes(apiV1)
	notices.NewHandler(noticesSvc).RegisterRoutes(apiV1)
	audit.NewHandler(auditSvc).RegisterRoutes(apiV1)
	settings.NewHandler(settingsSvc).RegisterRoutes(apiV1)
	files.NewHandler(filesSvc).RegisterRoutes(apiV1)
	analytics.NewHandler(analyticsSvc).RegisterRoutes(apiV1)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
