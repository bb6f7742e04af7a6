package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/auto-me-bot/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	Server   ServerConfig
	GitHub   GitHubConfig
	Logging  logger.Config
	Database DBConfig
}

// ServerConfig configures the webhook HTTP server.
type ServerConfig struct {
	Port string
}

// GitHubConfig identifies the GitHub App and its webhook secret.
type GitHubConfig struct {
	AppID          int64
	WebhookSecret  string
	PrivateKeyPath string
	APIURL         string
}

// DBConfig configures the optional delivery history database.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Enabled reports whether a database was configured.
func (c DBConfig) Enabled() bool {
	return c.Host != ""
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	return fromViper(newViper())
}

// LoadDBConfig reads only the database settings. It is used by tools that
// talk to the delivery history without acting as the GitHub App.
func LoadDBConfig() DBConfig {
	return dbFromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/auto-me-bot.private-key.pem")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "auto-me-bot")
	v.SetDefault("DB_NAME", "auto-me-bot")
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")
}

func fromViper(v *viper.Viper) (*Config, error) {
	if v.GetInt64("GITHUB_APP_ID") == 0 {
		return nil, fmt.Errorf("GITHUB_APP_ID must be set")
	}
	if v.GetString("GITHUB_WEBHOOK_SECRET") == "" {
		return nil, fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set")
	}

	logLevel := strings.ToLower(v.GetString("LOG_LEVEL"))
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", logLevel)
		logLevel = "info"
	}

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
		},
		GitHub: GitHubConfig{
			AppID:          v.GetInt64("GITHUB_APP_ID"),
			WebhookSecret:  v.GetString("GITHUB_WEBHOOK_SECRET"),
			PrivateKeyPath: v.GetString("GITHUB_PRIVATE_KEY_PATH"),
			APIURL:         v.GetString("GITHUB_API_URL"),
		},
		Logging: logger.Config{
			Level:  logLevel,
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
		Database: dbFromViper(v),
	}, nil
}

func dbFromViper(v *viper.Viper) DBConfig {
	return DBConfig{
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetInt("DB_PORT"),
		Username:        v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Database:        v.GetString("DB_NAME"),
		ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
	}
}
