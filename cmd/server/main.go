package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/hourlyx/hourlyx-api/internal/activity"
	"github.com/hourlyx/hourlyx-api/internal/assigner"
	"github.com/hourlyx/hourlyx-api/internal/config"
	"github.com/hourlyx/hourlyx-api/internal/handlers"
	"github.com/hourlyx/hourlyx-api/internal/invites"
	"github.com/hourlyx/hourlyx-api/internal/limits"
	"github.com/hourlyx/hourlyx-api/internal/members"
	"github.com/hourlyx/hourlyx-api/internal/middleware"
	"github.com/hourlyx/hourlyx-api/internal/migration"
	"github.com/hourlyx/hourlyx-api/internal/notification"
	"github.com/hourlyx/hourlyx-api/internal/payment"
	"github.com/hourlyx/hourlyx-api/internal/repository"
	"github.com/hourlyx/hourlyx-api/internal/routes"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config *config.Config
	db     *sql.DB
	logger zerolog.Logger
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	gooseAdapter := migration.NewGooseAdapter(logger)
	goose.SetLogger(gooseAdapter)

	// Load configuration.
	cfg := config.Load()

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	migration.RunMigrations(cfg.DatabaseURL, logger)

	// Create the application instance.
	app := &application{
		config: cfg,
		db:     db,
		logger: logger,
	}

	// Initialize the HTTP router and middleware.
	router := app.initRouter(logger)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{"http://localhost:3000"}),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, logger)

	logger.Info().Msg("Application terminated.")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter(logger zerolog.Logger) http.Handler {
	// Repositories
	orgRepo := repository.NewOrganizationRepository(app.db)
	profileRepo := repository.NewProfileRepository(app.db)
	membershipRepo := repository.NewMembershipRepository(app.db)
	invitationRepo := repository.NewInvitationRepository(app.db)
	subscriptionRepo := repository.NewSubscriptionRepository(app.db)
	activityRepo := repository.NewActivityRepository(app.db)
	entryRepo := repository.NewTimeEntryRepository(app.db)
	usageRepo := repository.NewUsageRepository(app.db)

	// Mailer for invites
	inviteMailer, err := notification.NewSMTPInviteMailer(app.config.Email)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure invite mailer")
	}

	// Hosted billing pages and the webhook-backed subscription reader.
	provider, err := payment.NewHostedProvider(app.config.Billing.CheckoutURL, app.config.Billing.PortalURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure payment provider")
	}
	refresher := payment.NewRefresher(subscriptionRepo, logger)

	// Domain services
	recorder := activity.NewRecorder(activityRepo, logger, activity.DefaultCooldown)
	limiter := limits.NewLimiter(usageRepo, limits.Caps{
		MaxEmployees:   app.config.Trial.MaxEmployees,
		MaxTimeEntries: app.config.Trial.MaxTimeEntries,
		MaxInvitations: app.config.Trial.MaxInvitations,
	})
	ledger := invites.NewLedger(
		invitationRepo,
		membershipRepo,
		profileRepo,
		orgRepo,
		inviteMailer,
		app.config.Email.InviteURLTemplate,
		app.config.InvitationTTL(),
		logger,
	)
	assignSvc := assigner.NewService(
		orgRepo,
		membershipRepo,
		invitationRepo,
		subscriptionRepo,
		recorder,
		app.config.OwnerEmail,
		app.config.RequireVerifiedEmail,
		app.config.Trial.Duration(),
		logger,
	)
	memberSvc := members.NewService(membershipRepo, recorder, logger)
	guard := handlers.NewGuard(orgRepo, subscriptionRepo)

	// Handlers
	return routes.NewRouter(routes.Handlers{
		Auth:       handlers.NewAuthHandler(profileRepo, membershipRepo, app.config.JWTSecret, logger),
		Onboarding: handlers.NewOnboardingHandler(assignSvc, logger),
		Access:     handlers.NewAccessHandler(guard, limiter, logger),
		Invites:    handlers.NewInviteHandler(ledger, limiter, guard, logger),
		Members:    handlers.NewMembersHandler(memberSvc, logger),
		Entries:    handlers.NewEntriesHandler(entryRepo, limiter, guard, recorder, logger),
		Billing:    handlers.NewBillingHandler(provider, refresher, logger),
		Activity:   handlers.NewActivityHandler(activityRepo, logger),
		Webhook:    handlers.NewBillingWebhookHandler(app.config.Billing.WebhookSecret, subscriptionRepo, logger),
	})
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}
}
