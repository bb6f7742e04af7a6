// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"context"
	"log/slog"

	"github.com/google/go-github/v73/github"

	ghclient "github.com/sevigo/auto-me-bot/internal/github"
)

// EventContext is everything a handler gets to know about a single webhook
// delivery. It is built by the webhook framework and treated as read-only by
// the dispatch logic.
type EventContext struct {
	// DeliveryID is the value of the X-GitHub-Delivery header.
	DeliveryID string
	// Name is the webhook event name, e.g. "pull_request".
	Name string
	// Payload is the decoded webhook body.
	Payload map[string]any
	// Event is the typed go-github view of Payload, nil when the event type
	// is unknown to go-github.
	Event any

	Owner          string
	Repo           string
	InstallationID int64

	// GitHub is authenticated as the installation that sent the delivery.
	GitHub ghclient.Client
	// ConfigLoader resolves repository configuration files.
	ConfigLoader ConfigLoader
	Logger       *slog.Logger
}

// Config loads the named configuration file of the repository the event
// originates from. A nil config with a nil error means the file is absent.
func (e *EventContext) Config(ctx context.Context, filename string) (RepoConfig, error) {
	if e.ConfigLoader == nil {
		return nil, nil
	}
	return e.ConfigLoader.Load(ctx, e.Owner, e.Repo, filename)
}

// PullRequest returns the pull request carried by the event, or nil.
func (e *EventContext) PullRequest() *github.PullRequest {
	if evt, ok := e.Event.(*github.PullRequestEvent); ok {
		return evt.GetPullRequest()
	}
	return nil
}

// Log returns the delivery scoped logger.
func (e *EventContext) Log() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
