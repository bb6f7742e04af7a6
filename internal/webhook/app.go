// Package webhook hosts the bot: it keeps the event handler registry and
// turns raw GitHub deliveries into event contexts for the registered handlers.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/auto-me-bot/internal/core"
	ghclient "github.com/sevigo/auto-me-bot/internal/github"
)

// ErrInvalidPayload is returned when a delivery body is not a JSON object.
var ErrInvalidPayload = errors.New("invalid webhook payload")

// ClientFactory hands out GitHub clients acting as an App installation.
type ClientFactory interface {
	ForInstallation(ctx context.Context, installationID int64) (ghclient.Client, error)
}

// LoaderFactory binds a repository config loader to an installation client.
type LoaderFactory func(client ghclient.Client) core.ConfigLoader

// App is the webhook framework the bot registers its handlers with.
type App struct {
	mu       sync.RWMutex
	handlers map[string][]core.EventHandler

	clients  ClientFactory
	loaders  LoaderFactory
	recorder core.DeliveryRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an App.
type Option func(*App)

// WithClientFactory sets the source of installation clients. Without one,
// handlers receive an event context with a nil GitHub client.
func WithClientFactory(f ClientFactory) Option {
	return func(a *App) { a.clients = f }
}

// WithConfigLoader sets how repository configuration is read.
func WithConfigLoader(f LoaderFactory) Option {
	return func(a *App) { a.loaders = f }
}

// WithRecorder stores the outcome of every delivery.
func WithRecorder(r core.DeliveryRecorder) Option {
	return func(a *App) { a.recorder = r }
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// New creates an App with the given options.
func New(opts ...Option) *App {
	a := &App{
		handlers: make(map[string][]core.EventHandler),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// On registers h for every event name in events. A name is either an event
// ("pull_request") or an event and action ("pull_request.opened").
func (a *App) On(events []string, h core.EventHandler) {
	if h == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, name := range events {
		if name == "" {
			continue
		}
		a.handlers[name] = append(a.handlers[name], h)
	}
}

// Handlers returns the number of handlers registered for name.
func (a *App) Handlers(name string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.handlers[name])
}

// Receive dispatches a single delivery to the matching handlers, in
// registration order. Handler errors are joined.
func (a *App) Receive(ctx context.Context, d core.Delivery) error {
	start := a.now()
	record := &core.DeliveryRecord{DeliveryID: d.ID, Event: d.Name, CreatedAt: start.UTC()}

	err := a.receive(ctx, d, record)

	record.DurationMS = a.now().Sub(start).Milliseconds()
	if err != nil {
		record.Outcome = core.DeliveryFailed
		record.Error = err.Error()
	}
	a.record(ctx, record)
	return err
}

func (a *App) receive(ctx context.Context, d core.Delivery, record *core.DeliveryRecord) error {
	var payload map[string]any
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if payload == nil {
		return fmt.Errorf("%w: not a JSON object", ErrInvalidPayload)
	}

	action, _ := payload["action"].(string)
	record.Action = action
	record.RepoFullName = repoFullName(payload)
	record.Outcome = core.DeliveryIgnored

	handlers := a.resolve(d.Name, action)
	logger := a.logger.With("delivery", d.ID, "event", d.Name, "repo", record.RepoFullName)
	if len(handlers) == 0 {
		logger.Debug("no handlers registered for delivery", "action", action)
		return nil
	}

	evt, err := a.eventContext(ctx, d, payload, logger)
	if err != nil {
		return err
	}

	logger.Info("dispatching delivery", "action", action, "handlers", len(handlers))
	var errs []error
	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("delivery handling failed", "error", err)
		return err
	}
	record.Outcome = core.DeliveryProcessed
	return nil
}

func (a *App) resolve(name, action string) []core.EventHandler {
	a.mu.RLock()
	defer a.mu.RUnlock()

	handlers := append([]core.EventHandler(nil), a.handlers[name]...)
	if action != "" {
		handlers = append(handlers, a.handlers[name+"."+action]...)
	}
	return handlers
}

func (a *App) eventContext(ctx context.Context, d core.Delivery, payload map[string]any, logger *slog.Logger) (*core.EventContext, error) {
	evt := &core.EventContext{
		DeliveryID: d.ID,
		Name:       d.Name,
		Payload:    payload,
		Logger:     logger,
	}

	// Unknown event types still reach handlers through the raw payload.
	if typed, err := github.ParseWebHook(d.Name, d.Payload); err == nil {
		evt.Event = typed
	} else {
		logger.Debug("event has no typed representation", "error", err)
	}

	var envelope struct {
		Repository   *github.Repository   `json:"repository"`
		Installation *github.Installation `json:"installation"`
	}
	if err := json.Unmarshal(d.Payload, &envelope); err != nil {
		logger.Warn("payload carries a malformed repository or installation", "error", err)
	}
	evt.Owner = envelope.Repository.GetOwner().GetLogin()
	evt.Repo = envelope.Repository.GetName()
	evt.InstallationID = envelope.Installation.GetID()

	if a.clients != nil && evt.InstallationID != 0 {
		client, err := a.clients.ForInstallation(ctx, evt.InstallationID)
		if err != nil {
			return nil, fmt.Errorf("failed to authenticate installation %d: %w", evt.InstallationID, err)
		}
		evt.GitHub = client
	}
	if a.loaders != nil && evt.GitHub != nil {
		evt.ConfigLoader = a.loaders(evt.GitHub)
	}
	return evt, nil
}

func (a *App) record(ctx context.Context, record *core.DeliveryRecord) {
	if a.recorder == nil {
		return
	}
	// the request context may already be gone when the handler returns
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := a.recorder.SaveDelivery(ctx, record); err != nil {
		a.logger.Error("failed to record delivery", "delivery", record.DeliveryID, "error", err)
	}
}

func repoFullName(payload map[string]any) string {
	repo, ok := payload["repository"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := repo["full_name"].(string)
	return name
}
