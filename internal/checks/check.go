// Package checks implements the pull request policy checks. Every check
// reports its result as a GitHub check run on the head commit.
package checks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-github/v73/github"
	"gopkg.in/yaml.v3"

	"github.com/sevigo/auto-me-bot/internal/core"
	ghclient "github.com/sevigo/auto-me-bot/internal/github"
)

var (
	errNoPullRequest = errors.New("event carries no pull request")
	errNoClient      = errors.New("event carries no GitHub client")
)

// result is the verdict of a single check evaluation.
type result struct {
	conclusion string
	output     ghclient.CheckOutput
}

func passed(title, summary string) result {
	return result{
		conclusion: ghclient.ConclusionSuccess,
		output:     ghclient.CheckOutput{Title: title, Summary: summary},
	}
}

func failed(title, summary, text string) result {
	return result{
		conclusion: ghclient.ConclusionFailure,
		output:     ghclient.CheckOutput{Title: title, Summary: summary, Text: text},
	}
}

type evaluator func(ctx context.Context, evt *core.EventContext, pr *github.PullRequest) (result, error)

// runCheck opens an in-progress check run, evaluates the pull request and
// completes the run with the verdict. When evaluation itself fails the run
// is closed as failed so it does not stay pending forever.
func runCheck(ctx context.Context, evt *core.EventContext, name, startedAt string, evaluate evaluator) error {
	pr := evt.PullRequest()
	if pr == nil {
		return errNoPullRequest
	}
	if evt.GitHub == nil {
		return errNoClient
	}

	started, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return fmt.Errorf("invalid check start time %q: %w", startedAt, err)
	}

	target := ghclient.CheckTarget{Owner: evt.Owner, Repo: evt.Repo, HeadSHA: pr.GetHead().GetSHA()}
	reporter := ghclient.NewCheckReporter(evt.GitHub)
	logger := evt.Log().With("check", name, "pr", pr.GetNumber())

	checkRunID, err := reporter.InProgress(ctx, target, name, started)
	if err != nil {
		return err
	}

	verdict, err := evaluate(ctx, evt, pr)
	if err != nil {
		logger.Error("check evaluation failed", "error", err)
		out := ghclient.CheckOutput{Title: "Check could not be completed", Summary: err.Error()}
		if cerr := reporter.Completed(ctx, target, checkRunID, name, ghclient.ConclusionFailure, out); cerr != nil {
			logger.Error("failed to close check run", "error", cerr)
		}
		return err
	}

	logger.Info("check completed", "conclusion", verdict.conclusion)
	return reporter.Completed(ctx, target, checkRunID, name, verdict.conclusion, verdict.output)
}

// decodeOptions maps a check's configuration section onto its options struct.
func decodeOptions(cfg map[string]any, out any) error {
	if len(cfg) == 0 {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode check options: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid check options: %w", err)
	}
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
