package bot

import (
	"slices"

	"github.com/sevigo/auto-me-bot/internal/checks"
)

const pullRequestEvent = "pull_request"

// DefaultConfigSpec maps the pr section of auto-me-bot.yml to the policy checks.
// Adding a check means adding an entry here.
func DefaultConfigSpec() ConfigSpec {
	return ConfigSpec{
		Events: slices.Clone(SupportedEvents),
		Entries: []Entry{
			{Path: "pr.conventionalCommits", Event: pullRequestEvent, Handler: checks.ConventionalCommits},
			{Path: "pr.signedCommits", Event: pullRequestEvent, Handler: checks.SignedCommits},
			{Path: "pr.tasksList", Event: pullRequestEvent, Handler: checks.TasksList},
		},
	}
}
