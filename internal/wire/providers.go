// Package wire assembles the server's dependency graph.
package wire

import (
	"io"
	"log/slog"

	"github.com/google/wire"

	"github.com/sevigo/auto-me-bot/internal/app"
	"github.com/sevigo/auto-me-bot/internal/config"
	"github.com/sevigo/auto-me-bot/internal/core"
	"github.com/sevigo/auto-me-bot/internal/db"
	ghclient "github.com/sevigo/auto-me-bot/internal/github"
	"github.com/sevigo/auto-me-bot/internal/logger"
	"github.com/sevigo/auto-me-bot/internal/storage"
	"github.com/sevigo/auto-me-bot/internal/webhook"
)

var AppSet = wire.NewSet(
	app.NewApp,
	config.LoadConfig,
	logger.NewLogger,
	db.NewDatabase,
	ghclient.NewClientFactory,
	provideLoggerConfig,
	provideLogWriter,
	provideDBConfig,
	provideAppCredentials,
	provideRecorder,
	provideWebhookApp,
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

// provideLogWriter leaves the destination to the logger configuration.
func provideLogWriter() io.Writer {
	return nil
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideAppCredentials(cfg *config.Config) ghclient.AppCredentials {
	return ghclient.AppCredentials{
		AppID:          cfg.GitHub.AppID,
		PrivateKeyPath: cfg.GitHub.PrivateKeyPath,
		BaseURL:        cfg.GitHub.APIURL,
	}
}

// provideRecorder returns nil when the delivery history is disabled.
func provideRecorder(conn *db.DB) core.DeliveryRecorder {
	if conn == nil {
		return nil
	}
	return storage.NewStore(conn.DB)
}

func provideWebhookApp(clients *ghclient.ClientFactory, recorder core.DeliveryRecorder, logger *slog.Logger) *webhook.App {
	return webhook.New(
		webhook.WithClientFactory(clients),
		webhook.WithConfigLoader(func(client ghclient.Client) core.ConfigLoader {
			return config.NewRepoConfigLoader(client)
		}),
		webhook.WithRecorder(recorder),
		webhook.WithLogger(logger),
	)
}
