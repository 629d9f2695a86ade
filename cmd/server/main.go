package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Teknovat/farm-tracker-sub001/internal/config"
	"github.com/Teknovat/farm-tracker-sub001/internal/database"
	"github.com/Teknovat/farm-tracker-sub001/internal/handlers"
	"github.com/Teknovat/farm-tracker-sub001/internal/logger"
	"github.com/Teknovat/farm-tracker-sub001/internal/permissions"
	"github.com/Teknovat/farm-tracker-sub001/internal/repository"
	"github.com/Teknovat/farm-tracker-sub001/internal/scheduler"
	"github.com/Teknovat/farm-tracker-sub001/internal/security"
	"github.com/Teknovat/farm-tracker-sub001/internal/service"
	"github.com/Teknovat/farm-tracker-sub001/internal/session"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	log := logger.Must(logger.New(cfg.Debug))
	defer log.Sync()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	log.Info("database connection established", zap.String("type", cfg.DatabaseType))

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	farmRepo := repository.NewFarmRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	animalRepo := repository.NewAnimalRepository(db)
	eventRepo := repository.NewEventRepository(db)
	cashboxRepo := repository.NewCashboxRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo)
	farmService := service.NewFarmService(farmRepo)
	invitationService := service.NewInvitationService(invitationRepo, userRepo, farmRepo, logger.Named(log, "invitations"))
	animalService := service.NewAnimalService(animalRepo)
	eventService := service.NewEventService(eventRepo, animalRepo, cashboxRepo, logger.Named(log, "events"))
	cashboxService := service.NewCashboxService(cashboxRepo)

	emailService, err := service.NewEmailService(logger.Named(log, "email"), cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatal("failed to initialize email service", zap.Error(err))
	}
	if !emailService.IsEnabled() {
		log.Warn("SES_FROM_EMAIL not set; invitation and reminder email disabled")
	}

	// Sessions, permissions and rate limiting
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionDuration)
	if cfg.GeneratedSecret {
		log.Warn("SESSION_SECRET not set; using an ephemeral secret, sessions will not survive a restart")
	}
	checker := permissions.NewChecker(farmRepo)
	limiter := security.NewRateLimiter(10, time.Minute)

	googleOAuth := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(sessions, checker, limiter, logger.Named(log, "http"))
	authHandler := handlers.NewAuthHandler(authService, farmService, sessions, googleOAuth, cfg.AppBaseURL, log)
	farmHandler := handlers.NewFarmHandler(farmService, sessions, checker, log)
	invitationHandler := handlers.NewInvitationHandler(invitationService, emailService, sessions, log)
	animalHandler := handlers.NewAnimalHandler(animalService, log)
	eventHandler := handlers.NewEventHandler(eventService, log)
	cashboxHandler := handlers.NewCashboxHandler(cashboxService, log)
	exportHandler := handlers.NewExportHandler(eventService, cashboxService, log)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Auth
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/google/start", authHandler.StartGoogleOAuth)
	mux.HandleFunc("GET /api/auth/google/callback", authHandler.GoogleOAuthCallback)
	mux.HandleFunc("GET /api/session", middleware.RequireUser(authHandler.Session))

	// Farms
	mux.HandleFunc("POST /api/farms", middleware.RequireUser(farmHandler.Create))
	mux.HandleFunc("GET /api/farms", middleware.RequireUser(farmHandler.List))
	mux.HandleFunc("GET /api/farms/{farmID}", middleware.RequireFarmAccess(permissions.ActionRead, farmHandler.Get))
	mux.HandleFunc("PUT /api/farms/{farmID}", middleware.RequireFarmAccess(permissions.ActionUpdate, farmHandler.Update))
	mux.HandleFunc("DELETE /api/farms/{farmID}", middleware.RequireFarmAccess(permissions.ActionDelete, farmHandler.Delete))
	mux.HandleFunc("POST /api/farms/{farmID}/select", middleware.RequireUser(farmHandler.Select))

	// Members. Removal only requires membership at the route because
	// members may remove themselves; the handler demands the
	// member-management capability for removing anyone else.
	mux.HandleFunc("GET /api/farms/{farmID}/members", middleware.RequireFarmAccess(permissions.ActionRead, farmHandler.Members))
	mux.HandleFunc("PUT /api/farms/{farmID}/members/{userID}", middleware.RequireFarmAccess(permissions.ActionManageMembers, farmHandler.UpdateMember))
	mux.HandleFunc("DELETE /api/farms/{farmID}/members/{userID}", middleware.RequireFarmAccess(permissions.ActionRead, farmHandler.RemoveMember))

	// Invitations
	mux.HandleFunc("POST /api/farms/{farmID}/invitations", middleware.RequireFarmAccess(permissions.ActionManageMembers, invitationHandler.Create))
	mux.HandleFunc("GET /api/farms/{farmID}/invitations", middleware.RequireFarmAccess(permissions.ActionManageMembers, invitationHandler.List))
	mux.HandleFunc("DELETE /api/farms/{farmID}/invitations/{invitationID}", middleware.RequireFarmAccess(permissions.ActionManageMembers, invitationHandler.Revoke))
	mux.HandleFunc("GET /api/invitations/{token}", invitationHandler.Show)
	mux.HandleFunc("POST /api/invitations/{token}/accept", middleware.RateLimit(invitationHandler.Accept))

	// Animals
	mux.HandleFunc("POST /api/farms/{farmID}/animals", middleware.RequireFarmAccess(permissions.ActionCreate, animalHandler.Create))
	mux.HandleFunc("GET /api/farms/{farmID}/animals", middleware.RequireFarmAccess(permissions.ActionRead, animalHandler.List))
	mux.HandleFunc("GET /api/farms/{farmID}/animals/{animalID}", middleware.RequireFarmAccess(permissions.ActionRead, animalHandler.Get))
	mux.HandleFunc("PUT /api/farms/{farmID}/animals/{animalID}", middleware.RequireFarmAccess(permissions.ActionUpdate, animalHandler.Update))
	mux.HandleFunc("DELETE /api/farms/{farmID}/animals/{animalID}", middleware.RequireFarmAccess(permissions.ActionDelete, animalHandler.Delete))

	// Events
	mux.HandleFunc("POST /api/farms/{farmID}/events", middleware.RequireFarmAccess(permissions.ActionCreate, eventHandler.Create))
	mux.HandleFunc("GET /api/farms/{farmID}/events", middleware.RequireFarmAccess(permissions.ActionRead, eventHandler.List))
	mux.HandleFunc("GET /api/farms/{farmID}/events/upcoming", middleware.RequireFarmAccess(permissions.ActionRead, eventHandler.Upcoming))
	mux.HandleFunc("GET /api/farms/{farmID}/events/statistics", middleware.RequireFarmAccess(permissions.ActionRead, eventHandler.Statistics))
	mux.HandleFunc("GET /api/farms/{farmID}/events/{eventID}", middleware.RequireFarmAccess(permissions.ActionRead, eventHandler.Get))
	mux.HandleFunc("PUT /api/farms/{farmID}/events/{eventID}", middleware.RequireFarmAccess(permissions.ActionUpdate, eventHandler.Update))
	mux.HandleFunc("DELETE /api/farms/{farmID}/events/{eventID}", middleware.RequireFarmAccess(permissions.ActionDelete, eventHandler.Delete))

	// Cashbox
	mux.HandleFunc("POST /api/farms/{farmID}/cashbox", middleware.RequireFarmAccess(permissions.ActionCreate, cashboxHandler.Create))
	mux.HandleFunc("GET /api/farms/{farmID}/cashbox", middleware.RequireFarmAccess(permissions.ActionRead, cashboxHandler.List))
	mux.HandleFunc("GET /api/farms/{farmID}/cashbox/summary", middleware.RequireFarmAccess(permissions.ActionRead, cashboxHandler.Summary))
	mux.HandleFunc("DELETE /api/farms/{farmID}/cashbox/{entryID}", middleware.RequireFarmAccess(permissions.ActionDelete, cashboxHandler.Delete))

	// Exports
	mux.HandleFunc("GET /api/farms/{farmID}/export/events", middleware.RequireFarmAccess(permissions.ActionExport, exportHandler.Events))
	mux.HandleFunc("GET /api/farms/{farmID}/export/cashbox", middleware.RequireFarmAccess(permissions.ActionExport, exportHandler.Cashbox))

	// Background jobs
	sched := scheduler.NewScheduler(invitationService, eventRepo, farmRepo, emailService, cfg.ReminderSchedule, logger.Named(log, "scheduler"))
	sched.Start()

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      middleware.RequestID(middleware.Logging(middleware.WithSession(mux))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}

	sched.Stop()
	limiter.Stop()
}
