package checks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/auto-me-bot/internal/core"
)

// SignedCommitsCheckName is the check run name shown on the pull request.
const SignedCommitsCheckName = "Auto-Me-Bot Signed PR"

// SignedCommitsOptions is the pr.signedCommits section.
type SignedCommitsOptions struct {
	Ignore struct {
		Users  []string `yaml:"users"`
		Emails []string `yaml:"emails"`
	} `yaml:"ignore"`
}

// SignedCommits verifies every commit of the pull request carries a
// signature GitHub could verify. Commits by ignored authors pass.
func SignedCommits(ctx context.Context, evt *core.EventContext, cfg map[string]any, startedAt string) error {
	var opts SignedCommitsOptions
	if err := decodeOptions(cfg, &opts); err != nil {
		return err
	}

	return runCheck(ctx, evt, SignedCommitsCheckName, startedAt,
		func(ctx context.Context, evt *core.EventContext, pr *github.PullRequest) (result, error) {
			commits, err := evt.GitHub.ListPullRequestCommits(ctx, evt.Owner, evt.Repo, pr.GetNumber())
			if err != nil {
				return result{}, fmt.Errorf("failed to list pull request commits: %w", err)
			}
			return opts.evaluate(commits), nil
		})
}

func (o SignedCommitsOptions) evaluate(commits []*github.RepositoryCommit) result {
	var unsigned []string
	for _, commit := range commits {
		if o.ignored(commit) {
			continue
		}
		verification := commit.GetCommit().GetVerification()
		if verification.GetVerified() {
			continue
		}
		reason := verification.GetReason()
		if reason == "" {
			reason = "unsigned"
		}
		unsigned = append(unsigned, fmt.Sprintf("- %s by %s: %s",
			shortSHA(commit.GetSHA()), commit.GetCommit().GetAuthor().GetEmail(), reason))
	}

	if len(unsigned) == 0 {
		return passed("Signed commits", fmt.Sprintf("All %d commits are signed.", len(commits)))
	}
	return failed(
		"Signed commits",
		fmt.Sprintf("%d of %d commits are not signed.", len(unsigned), len(commits)),
		strings.Join(unsigned, "\n"),
	)
}

func (o SignedCommitsOptions) ignored(commit *github.RepositoryCommit) bool {
	if login := commit.GetAuthor().GetLogin(); login != "" && slices.Contains(o.Ignore.Users, login) {
		return true
	}
	if email := commit.GetCommit().GetAuthor().GetEmail(); email != "" && slices.Contains(o.Ignore.Emails, email) {
		return true
	}
	return false
}
