package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yazameet/yazameet-backend/api"
	"github.com/yazameet/yazameet-backend/config"
	"github.com/yazameet/yazameet-backend/database"
	"github.com/yazameet/yazameet-backend/models"
	"github.com/yazameet/yazameet-backend/services"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Info().Msg("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	c := config.New()
	if err := config.LoadSSMParameters(context.Background(), c); err != nil {
		log.Fatal().Err(err).Msg("Error loading SSM parameters")
	}

	log.Info().Str("DB_TYPE", c["DB_TYPE"]).Msg("Connecting to database...")
	db, err := database.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	if config.GetBool(c, "MIGRATE", false) {
		log.Info().Msg("Running migrations...")
		if err := models.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Error running migrations")
		}
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		if n := models.GenerateColumnMismatchReport(db); n > 0 {
			os.Exit(1)
		}
		return
	}

	currentDB := database.New(db)

	svc, err := newServices(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing services")
	}

	worker := services.NewEventWorker(currentDB.EventRepo())
	worker.Register(services.EventProjectCreated, services.NewProjectEmailsHandler(currentDB.UserRepo(), svc.Notifier))
	if err := worker.Start(config.GetString(c, "EVENT_WORKER_SCHEDULE", "@every 5s")); err != nil {
		log.Fatal().Err(err).Msg("Error starting event worker")
	}

	maintenance, err := startMaintenance(currentDB, svc.RateLimiter)
	if err != nil {
		log.Fatal().Err(err).Msg("Error starting maintenance jobs")
	}

	// Buffered so Start can still report ErrServerClosed after shutdown
	errChannel := make(chan error, 2)

	server, err := api.NewServer(c, currentDB, svc)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	worker.Stop(stopCtx)
	<-maintenance.Stop().Done()
}

func newServices(c config.Config) (api.Services, error) {
	secret := config.GetString(c, "SESSION_SECRET", "")
	if secret == "" {
		return api.Services{}, fmt.Errorf("SESSION_SECRET is required")
	}
	ttl := time.Duration(config.GetInt(c, "SESSION_TTL_HOURS", 24*30)) * time.Hour

	baseURL := services.GetBaseURL(c)
	templates, err := services.NewEmailTemplates(baseURL, config.GetString(c, "SUPPORT_EMAIL", config.GetString(c, "ADMIN_EMAIL", "")))
	if err != nil {
		return api.Services{}, fmt.Errorf("parse email templates: %w", err)
	}

	svc := api.Services{
		Sessions:    services.NewSessionManager(secret, ttl),
		OAuth:       services.NewOAuthProviders(c),
		Notifier:    services.NewNotifier(services.NewMailer(c), services.NewMessenger(c), templates, baseURL),
		RateLimiter: services.NewRateLimiter(context.Background(), c),
	}

	// Uploads answer 503 until S3 is configured
	storage, err := services.NewS3StorageFromConfig(c)
	if err != nil {
		log.Warn().Err(err).Msg("Object storage disabled")
	} else {
		svc.Storage = storage
	}

	if len(svc.OAuth) == 0 {
		log.Warn().Msg("No OAuth providers configured, only email sign-in is available")
	} else {
		log.Info().Str("providers", strings.Join(svc.OAuth.Names(), ",")).Msg("OAuth providers configured")
	}
	return svc, nil
}

// startMaintenance prunes expired sign-in tokens and idle in-process rate limiters.
func startMaintenance(db database.Database, limiter services.RateLimiter) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc("@hourly", func() {
		n, err := db.VerificationTokenRepo().DeleteExpired(context.Background(), time.Now())
		if err != nil {
			log.Error().Err(err).Msg("Error deleting expired sign-in tokens")
		} else if n > 0 {
			log.Info().Int64("deleted", n).Msg("Deleted expired sign-in tokens")
		}

		if memory, ok := limiter.(*services.MemoryRateLimiter); ok {
			memory.Cleanup(10000)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
