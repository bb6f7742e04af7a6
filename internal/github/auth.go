// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
)

// tokenExpiryMargin is subtracted from an installation token's lifetime so a
// cached token is never handed out moments before GitHub rejects it.
const tokenExpiryMargin = 5 * time.Minute

// AppCredentials identify the GitHub App the bot runs as.
type AppCredentials struct {
	AppID          int64
	PrivateKeyPath string
	// BaseURL is set for GitHub Enterprise Server, empty for github.com.
	BaseURL string
}

// ClientFactory hands out GitHub clients authenticated as a specific
// application installation. Installation tokens are cached until shortly
// before they expire.
type ClientFactory struct {
	appClient *github.Client
	baseURL   string
	tokens    *cache.Cache
	logger    *slog.Logger
}

// NewClientFactory loads the App private key and prepares the JWT transport
// used to mint installation tokens.
func NewClientFactory(creds AppCredentials, logger *slog.Logger) (*ClientFactory, error) {
	privateKey, err := os.ReadFile(creds.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key from %s: %w", creds.PrivateKeyPath, err)
	}

	// We use the apps transport to interact with the GitHub App API (e.g. to get installation tokens)
	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, creds.AppID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}

	appClient, err := newGitHubClient(&http.Client{Transport: appTransport}, creds.BaseURL)
	if err != nil {
		return nil, err
	}

	return &ClientFactory{
		appClient: appClient,
		baseURL:   creds.BaseURL,
		tokens:    cache.New(time.Hour, 10*time.Minute),
		logger:    logger,
	}, nil
}

// ForInstallation returns a client acting on behalf of the given installation.
func (f *ClientFactory) ForInstallation(ctx context.Context, installationID int64) (Client, error) {
	token, err := f.installationToken(ctx, installationID)
	if err != nil {
		return nil, err
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	installationClient, err := newGitHubClient(oauth2.NewClient(ctx, ts), f.baseURL)
	if err != nil {
		return nil, err
	}
	return NewGitHubClient(installationClient, f.logger), nil
}

func (f *ClientFactory) installationToken(ctx context.Context, installationID int64) (string, error) {
	key := strconv.FormatInt(installationID, 10)
	if cached, ok := f.tokens.Get(key); ok {
		return cached.(string), nil
	}

	f.logger.Info("creating installation token", "installation_id", installationID)
	token, _, err := f.appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create installation token for installation ID %d: %w", installationID, err)
	}
	if token.GetToken() == "" {
		return "", fmt.Errorf("received an empty installation token")
	}

	ttl := time.Until(token.GetExpiresAt().Time) - tokenExpiryMargin
	if ttl > 0 {
		f.tokens.Set(key, token.GetToken(), ttl)
	}
	f.logger.Debug("installation token created", "installation_id", installationID, "expires_at", token.GetExpiresAt())
	return token.GetToken(), nil
}

func newGitHubClient(httpClient *http.Client, baseURL string) (*github.Client, error) {
	client := github.NewClient(httpClient)
	if baseURL == "" {
		return client, nil
	}
	client, err := client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
	}
	return client, nil
}
