package core

import (
	"context"
)

// EventHandler is a callback registered with the webhook framework for a set
// of event names. It is invoked once per matching delivery.
type EventHandler func(ctx context.Context, evt *EventContext) error

// Handler runs a single policy check. It receives the event context, the
// check's own section of the repository configuration and the dispatch
// timestamp (RFC 3339), shared by every handler of the same delivery.
type Handler func(ctx context.Context, evt *EventContext, cfg map[string]any, startedAt string) error

// ConfigLoader fetches and parses a repository configuration file.
// Implementations return (nil, nil) when the file does not exist.
type ConfigLoader interface {
	Load(ctx context.Context, owner, repo, filename string) (RepoConfig, error)
}

// ConfigLoaderFunc adapts a plain function to the ConfigLoader interface.
type ConfigLoaderFunc func(ctx context.Context, owner, repo, filename string) (RepoConfig, error)

// Load calls f.
func (f ConfigLoaderFunc) Load(ctx context.Context, owner, repo, filename string) (RepoConfig, error) {
	return f(ctx, owner, repo, filename)
}

// DeliveryRecorder persists the outcome of processed webhook deliveries.
type DeliveryRecorder interface {
	SaveDelivery(ctx context.Context, d *DeliveryRecord) error
}
