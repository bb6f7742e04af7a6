// Package app initializes and orchestrates the main components of the
// auto-me-bot server. It wires the bot into the webhook framework and serves
// it over HTTP.
package app

import (
	"fmt"
	"log/slog"

	"github.com/sevigo/auto-me-bot/internal/bot"
	"github.com/sevigo/auto-me-bot/internal/config"
	"github.com/sevigo/auto-me-bot/internal/server"
	"github.com/sevigo/auto-me-bot/internal/webhook"
)

// App holds the main application components.
type App struct {
	cfg    *config.Config
	hooks  *webhook.App
	server *server.Server
	logger *slog.Logger
}

// NewApp registers the bot with the webhook framework and prepares the HTTP
// server. A registration failure is fatal for the process.
func NewApp(cfg *config.Config, hooks *webhook.App, logger *slog.Logger) (*App, error) {
	logger.Info("initializing auto-me-bot",
		"app_id", cfg.GitHub.AppID,
		"github_api", cfg.GitHub.APIURL,
		"history", cfg.Database.Enabled())

	var fw bot.Framework
	if hooks != nil {
		fw = hooks
	}
	if err := bot.Initialize(fw, bot.DefaultConfigSpec()); err != nil {
		return nil, fmt.Errorf("failed to register bot handlers: %w", err)
	}

	return &App{
		cfg:    cfg,
		hooks:  hooks,
		server: server.NewServer(cfg, hooks, logger),
		logger: logger,
	}, nil
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting auto-me-bot", "server_port", a.cfg.Server.Port, "events", bot.SupportedEvents)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the HTTP server, letting in-flight deliveries finish.
func (a *App) Stop() error {
	a.logger.Info("shutting down auto-me-bot")

	if err := a.server.Stop(); err != nil {
		a.logger.Error("error during HTTP server shutdown", "error", err)
		return err
	}

	a.logger.Info("auto-me-bot stopped")
	return nil
}
