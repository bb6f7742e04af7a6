// Package bot wires pull request webhook events to the policy checks enabled
// in a repository's auto-me-bot.yml.
package bot

import (
	"errors"

	"github.com/sevigo/auto-me-bot/internal/core"
)

// ErrNoFramework is returned when the bot is initialized without a webhook framework.
var ErrNoFramework = errors.New("webhook framework is not available")

// SupportedEvents are the pull request lifecycle events the bot subscribes to.
var SupportedEvents = []string{
	"pull_request.opened",
	"pull_request.edited",
	"pull_request.synchronize",
	"pull_request.reopened",
}

// Framework is the webhook delivery framework the bot registers with.
type Framework interface {
	On(events []string, handler core.EventHandler)
}

// Initialize subscribes the handlers controller for spec to the spec's
// events. It must be called exactly once, by the process entry point.
func Initialize(fw Framework, spec ConfigSpec) error {
	if fw == nil {
		return ErrNoFramework
	}
	fw.On(spec.Events, HandlersController(spec))
	return nil
}
