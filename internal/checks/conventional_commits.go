package checks

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/auto-me-bot/internal/core"
)

// ConventionalCommitsCheckName is the check run name shown on the pull request.
const ConventionalCommitsCheckName = "Auto-Me-Bot Conventional PR"

const defaultMaxHeaderLength = 100

var defaultCommitTypes = []string{
	"build", "chore", "ci", "docs", "feat", "fix", "perf", "refactor", "revert", "style", "test",
}

// type(scope)!: subject
var headerPattern = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^()\r\n]+)\))?(!)?: (\S.*)$`)

// ConventionalCommitsOptions is the pr.conventionalCommits section.
type ConventionalCommitsOptions struct {
	Types           []string `yaml:"types"`
	Scopes          []string `yaml:"scopes"`
	MaxHeaderLength *int     `yaml:"maxHeaderLength"`
}

type commitHeader struct {
	Type     string
	Scope    string
	Breaking bool
	Subject  string
}

// ConventionalCommits verifies the pull request title and every commit
// message header follow the conventional commits format.
func ConventionalCommits(ctx context.Context, evt *core.EventContext, cfg map[string]any, startedAt string) error {
	var opts ConventionalCommitsOptions
	if err := decodeOptions(cfg, &opts); err != nil {
		return err
	}

	return runCheck(ctx, evt, ConventionalCommitsCheckName, startedAt,
		func(ctx context.Context, evt *core.EventContext, pr *github.PullRequest) (result, error) {
			commits, err := evt.GitHub.ListPullRequestCommits(ctx, evt.Owner, evt.Repo, pr.GetNumber())
			if err != nil {
				return result{}, fmt.Errorf("failed to list pull request commits: %w", err)
			}
			return opts.evaluate(pr.GetTitle(), commits), nil
		})
}

func (o ConventionalCommitsOptions) evaluate(title string, commits []*github.RepositoryCommit) result {
	var violations []string
	checked := 1

	if problem := o.validate(title); problem != "" {
		violations = append(violations, fmt.Sprintf("- title `%s`: %s", title, problem))
	}
	for _, commit := range commits {
		// merge commits are generated by git
		if len(commit.Parents) > 1 {
			continue
		}
		checked++
		header := firstLine(commit.GetCommit().GetMessage())
		if problem := o.validate(header); problem != "" {
			violations = append(violations, fmt.Sprintf("- %s `%s`: %s", shortSHA(commit.GetSHA()), header, problem))
		}
	}

	if len(violations) == 0 {
		return passed("Conventional commits", fmt.Sprintf("All %d messages follow the conventional commits format.", checked))
	}
	return failed(
		"Conventional commits",
		fmt.Sprintf("%d of %d messages do not follow the conventional commits format.", len(violations), checked),
		strings.Join(violations, "\n"),
	)
}

// validate returns a description of what is wrong with header, or "".
func (o ConventionalCommitsOptions) validate(header string) string {
	maxLength := defaultMaxHeaderLength
	if o.MaxHeaderLength != nil {
		maxLength = *o.MaxHeaderLength
	}
	if maxLength > 0 && len(header) > maxLength {
		return fmt.Sprintf("header is longer than %d characters", maxLength)
	}

	parsed, ok := parseHeader(header)
	if !ok {
		return "expected `type(scope): subject`"
	}

	types := o.Types
	if len(types) == 0 {
		types = defaultCommitTypes
	}
	if !slices.Contains(types, parsed.Type) {
		return fmt.Sprintf("type %q is not one of %s", parsed.Type, strings.Join(types, ", "))
	}

	if len(o.Scopes) > 0 {
		if parsed.Scope == "" {
			return "scope is required"
		}
		if !slices.Contains(o.Scopes, parsed.Scope) {
			return fmt.Sprintf("scope %q is not one of %s", parsed.Scope, strings.Join(o.Scopes, ", "))
		}
	}
	return ""
}

func parseHeader(header string) (commitHeader, bool) {
	match := headerPattern.FindStringSubmatch(strings.TrimSpace(header))
	if match == nil {
		return commitHeader{}, false
	}
	return commitHeader{
		Type:     strings.ToLower(match[1]),
		Scope:    match[2],
		Breaking: match[3] == "!",
		Subject:  match[4],
	}, true
}

func firstLine(message string) string {
	header, _, _ := strings.Cut(message, "\n")
	return strings.TrimRight(header, "\r")
}
