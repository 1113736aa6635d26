// Package app assembles the gateway: token store client, admission filter,
// reverse proxy, metrics, and the HTTP server lifecycle.
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

	"github.com/edustack/coursegate/internal/gateway"
	tsredis "github.com/edustack/coursegate/internal/tokenstore/drivers/redis"
	"github.com/edustack/coursegate/pkg/httpx"
	"github.com/edustack/coursegate/pkg/jwtx"
	"github.com/edustack/coursegate/pkg/slogx"
)

const BuildVersion = "v0.1.0"

// Application encapsulates the gateway with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	tokens *tsredis.Store

	server *http.Server
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tokens, err := tsredis.NewStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("connect token store: %w", err)
	}
	app.tokens = tokens

	if err := app.initHTTP(); err != nil {
		_ = tokens.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the gateway and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("gateway starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully shuts down the gateway.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.tokens.Close(); err != nil {
		app.logger.Error("error closing token store", "error", err)
		return err
	}

	app.logger.Info("gateway stopped")
	return nil
}

func (app *Application) initHTTP() error {
	gateway.RegisterMetrics()

	codec, err := jwtx.NewCodec([]byte(app.cfg.JWTSecret), app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("build token codec: %w", err)
	}
	filter := &gateway.Filter{Verifier: codec, Sessions: app.tokens}

	proxy, err := gateway.NewProxy(
		map[string]string{
			"user":   app.cfg.UserServiceURL,
			"course": app.cfg.CourseServiceURL,
		},
		gateway.DefaultRoutes(),
	)
	if err != nil {
		return fmt.Errorf("build reverse proxy: %w", err)
	}

	mux := http.NewServeMux()
	proxy.Register(mux)

	mux.Handle("GET /metrics", gateway.MetricsHandler())
	mux.Handle("GET /livez", gateway.LivezHandler())
	mux.Handle("GET /readyz", gateway.ReadyzHandler(app.tokens, time.Now()))

	handler := httpx.Chain(mux,
		slogx.HTTPMiddleware(app.logger),
		filter.Middleware(),
	)

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}
