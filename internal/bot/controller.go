package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/auto-me-bot/internal/core"
)

// ConfigFileName is the repository configuration file, looked up in .github/.
const ConfigFileName = "auto-me-bot.yml"

// Entry binds a configuration key path to the handler enabled by it.
type Entry struct {
	// Path is the dotted key path inside auto-me-bot.yml, e.g. "pr.tasksList".
	Path string
	// Event is the payload category the handler applies to, e.g. "pull_request".
	Event   string
	Handler core.Handler
}

// ConfigSpec is the declarative dispatch table: the event/action pairs the
// bot reacts to and the ordered handler entries.
type ConfigSpec struct {
	Events  []string
	Entries []Entry
}

// HandlersController returns the dispatch callback for spec. For one event
// context it loads the repository configuration and runs, concurrently, every
// entry whose key path is present. It waits for all handlers and returns the
// first failure.
func HandlersController(spec ConfigSpec) core.EventHandler {
	supported := make(map[string]struct{}, len(spec.Events))
	for _, event := range spec.Events {
		supported[event] = struct{}{}
	}

	return func(ctx context.Context, evt *core.EventContext) error {
		logger := evt.Log()

		category, action, ok := eventOf(evt.Payload, spec.Entries)
		if !ok {
			logger.Debug("payload carries no supported event object")
			return nil
		}
		if _, ok := supported[category+"."+action]; !ok {
			logger.Debug("ignoring unsupported action", "event", category, "action", action)
			return nil
		}

		cfg, err := evt.Config(ctx, ConfigFileName)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", ConfigFileName, err)
		}
		if cfg == nil {
			logger.Debug("no configuration found, nothing to do", "file", ConfigFileName)
			return nil
		}

		startedAt := time.Now().UTC().Format(time.RFC3339)

		var g errgroup.Group
		for _, entry := range spec.Entries {
			if entry.Event != category {
				continue
			}
			handlerCfg, enabled := handlerConfig(cfg, entry.Path, logger)
			if !enabled {
				continue
			}

			logger.Info("running handler", "check", entry.Path, "action", action)
			g.Go(func() error {
				if err := entry.Handler(ctx, evt, handlerCfg, startedAt); err != nil {
					return fmt.Errorf("%s: %w", entry.Path, err)
				}
				return nil
			})
		}
		return g.Wait()
	}
}

// eventOf finds the first entry event present as an object in the payload
// and its action. GitHub sends the action at the top level; the object's own
// action field is honoured as well.
func eventOf(payload map[string]any, entries []Entry) (string, string, bool) {
	for _, entry := range entries {
		object, ok := payload[entry.Event].(map[string]any)
		if !ok {
			continue
		}

		action, _ := payload["action"].(string)
		if action == "" {
			action, _ = object["action"].(string)
		}
		if action == "" {
			return "", "", false
		}
		return entry.Event, action, true
	}
	return "", "", false
}

// handlerConfig resolves the section enabling a check. A mapping is handed
// over as is; an empty key or true enables the check with no options.
func handlerConfig(cfg core.RepoConfig, path string, logger *slog.Logger) (map[string]any, bool) {
	value, found := cfg.Lookup(path)
	if !found {
		return nil, false
	}

	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case nil:
		return map[string]any{}, true
	case bool:
		if typed {
			return map[string]any{}, true
		}
		return nil, false
	default:
		logger.Warn("ignoring malformed check configuration", "check", path, "type", fmt.Sprintf("%T", value))
		return nil, false
	}
}
