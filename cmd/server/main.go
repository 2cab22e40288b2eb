package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	httpapi "library-circulation/internal/api/http"
	"library-circulation/internal/config"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
	"library-circulation/internal/repository/memory"
	"library-circulation/internal/repository/postgres"
	"library-circulation/internal/security"
	"library-circulation/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	seedPath := flag.String("seed", "", "YAML file with users and books to load into the memory store")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting library circulation server...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "store", cfg.Store.Type)

	ctx := context.Background()

	// Initialize Store
	var store repository.Store
	switch cfg.Store.Type {
	case config.StoreMemory:
		mem := memory.NewStore()
		if *seedPath != "" {
			if err := loadSeed(ctx, mem, *seedPath); err != nil {
				log.Fatalf("Failed to load seed data: %v", err)
			}
		}
		logger.Warn("Using in-memory store, data is lost on restart")
		store = mem
	default:
		logger.Info("Database configuration", "driver", cfg.Database.Driver, "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
		db, err := postgres.Open(ctx, cfg.Database.Driver, cfg.GetDatabaseConnectionString(), postgres.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime(),
		})
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		logger.Info("Database connection established")

		if cfg.Database.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, db); err != nil {
				logger.Error("Failed to apply schema", "error", err)
				log.Fatalf("Failed to apply schema: %v", err)
			}
		}
		store = postgres.NewStore(db)
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	circulationSvc := service.NewCirculationService(store, emailSvc, service.CirculationConfig{
		LoanPeriod:         cfg.LoanPeriod(),
		MaxConflictRetries: cfg.Circulation.MaxConflictRetries,
		RetryBackoff:       cfg.RetryBackoff(),
	})

	// Set up HTTP server
	router := mux.NewRouter()
	httpapi.RegisterRoutes(router, httpapi.NewCirculationHandler(circulationSvc), httpapi.NewAuthMiddleware(tokenManager))
	httpapi.RegisterAuthRoutes(router, httpapi.NewAuthHandler(service.NewAuthService(store, tokenManager)))

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to serve HTTP", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
