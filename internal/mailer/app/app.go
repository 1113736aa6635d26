// Package app assembles the mail worker: broker consumer, renderer, sender,
// and the shutdown lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edustack/coursegate/internal/events"
	"github.com/edustack/coursegate/internal/events/rabbit"
	"github.com/edustack/coursegate/internal/mailer"
	"github.com/edustack/coursegate/pkg/slogx"
)

const BuildVersion = "v0.1.0"

// Application encapsulates the mail worker with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	consumer *rabbit.Consumer
	worker   *mailer.Worker
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "mail-worker",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	consumer, err := rabbit.NewConsumer(cfg.AMQPURL, app.logger)
	if err != nil {
		return nil, fmt.Errorf("connect broker: %w", err)
	}
	app.consumer = consumer

	app.worker = &mailer.Worker{
		Renderer: &mailer.Renderer{BaseURL: cfg.BaseURL},
		Sender:   &mailer.LogSender{Logger: app.logger},
		Logger:   app.logger,
	}

	return app, nil
}

// Run drains both mail queues until a shutdown signal arrives or a consumer
// fails.
func (app *Application) Run() error {
	app.logger.Info("mail worker starting", "version", BuildVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerErrors := make(chan error, 2)
	go func() {
		consumerErrors <- app.consumer.Consume(ctx, events.VerificationQueue, app.worker.HandleVerification)
	}()
	go func() {
		consumerErrors <- app.consumer.Consume(ctx, events.ResetQueue, app.worker.HandleReset)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-consumerErrors:
		if err != nil && ctx.Err() == nil {
			_ = app.consumer.Close()
			return fmt.Errorf("consumer failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
	}

	cancel()

	if err := app.consumer.Close(); err != nil {
		app.logger.Error("error closing broker connection", "error", err)
		return err
	}

	app.logger.Info("mail worker stopped")
	return nil
}
