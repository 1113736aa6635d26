// Package app assembles the user service: durable store, token store,
// broker publisher, services, and the HTTP server lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edustack/coursegate/internal/auth"
	"github.com/edustack/coursegate/internal/events/rabbit"
	tsredis "github.com/edustack/coursegate/internal/tokenstore/drivers/redis"
	httpapi "github.com/edustack/coursegate/internal/user/http"
	"github.com/edustack/coursegate/internal/user/service"
	"github.com/edustack/coursegate/internal/user/store"
	"github.com/edustack/coursegate/internal/user/store/drivers/sqlite"
	"github.com/edustack/coursegate/pkg/jwtx"
	"github.com/edustack/coursegate/pkg/slogx"
)

const BuildVersion = "v0.1.0"

// Application encapsulates the user service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store
	tokens    *tsredis.Store
	publisher *rabbit.Publisher
	codec     *jwtx.Codec

	authService *service.AuthenticationService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "user-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tokens, err := tsredis.NewStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("connect token store: %w", err)
	}
	app.tokens = tokens

	publisher, err := rabbit.NewPublisher(cfg.AMQPURL)
	if err != nil {
		_ = app.db.Close()
		_ = tokens.Close()
		return nil, fmt.Errorf("connect broker: %w", err)
	}
	app.publisher = publisher

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		_ = tokens.Close()
		_ = publisher.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("user service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down user service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.publisher.Close(); err != nil {
		app.logger.Error("error closing broker connection", "error", err)
	}
	if err := app.tokens.Close(); err != nil {
		app.logger.Error("error closing token store", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("user service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() error {
	codec, err := jwtx.NewCodec([]byte(app.cfg.JWTSecret), app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("build token codec: %w", err)
	}
	app.codec = codec

	app.authService = &service.AuthenticationService{
		Store: app.db,
		Tokens: &auth.TokenService{
			Codec:      app.codec,
			Store:      app.tokens,
			AccessTTL:  app.cfg.AccessTTL,
			RefreshTTL: app.cfg.RefreshTTL,
		},
		Correlation: &auth.CorrelationService{
			Store:     app.tokens,
			Publisher: app.publisher,
			SignupTTL: app.cfg.SignupTTL,
			ResetTTL:  app.cfg.ResetTTL,
		},
	}
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.codec, app.db, app.logger)
	router.Auth = app.authService
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
