// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v73/github"
)

// Check run conclusions reported by the policy checks.
const (
	ConclusionSuccess = "success"
	ConclusionFailure = "failure"
)

// CheckTarget identifies the commit a check run is attached to.
type CheckTarget struct {
	Owner   string
	Repo    string
	HeadSHA string
}

// CheckReporter defines the contract for reporting the lifecycle of a
// GitHub Check Run.
type CheckReporter interface {
	InProgress(ctx context.Context, target CheckTarget, name string, startedAt time.Time) (int64, error)
	Completed(ctx context.Context, target CheckTarget, checkRunID int64, name, conclusion string, output CheckOutput) error
}

// CheckOutput is the user-visible result attached to a completed check run.
type CheckOutput struct {
	Title   string
	Summary string
	Text    string
}

type checkReporter struct {
	client Client
	now    func() time.Time
}

// NewCheckReporter creates and returns a new instance of a checkReporter.
func NewCheckReporter(client Client) CheckReporter {
	return &checkReporter{client: client, now: time.Now}
}

// InProgress creates a new GitHub Check Run with an "in_progress" status.
func (c *checkReporter) InProgress(ctx context.Context, target CheckTarget, name string, startedAt time.Time) (int64, error) {
	opts := github.CreateCheckRunOptions{
		Name:      name,
		HeadSHA:   target.HeadSHA,
		Status:    github.Ptr("in_progress"),
		StartedAt: &github.Timestamp{Time: startedAt},
	}
	checkRun, err := c.client.CreateCheckRun(ctx, target.Owner, target.Repo, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to create check run %q: %w", name, err)
	}
	return checkRun.GetID(), nil
}

// Completed updates an existing GitHub Check Run to a "completed" status.
func (c *checkReporter) Completed(ctx context.Context, target CheckTarget, checkRunID int64, name, conclusion string, output CheckOutput) error {
	out := &github.CheckRunOutput{
		Title:   github.Ptr(output.Title),
		Summary: github.Ptr(output.Summary),
	}
	if output.Text != "" {
		out.Text = github.Ptr(output.Text)
	}

	opts := github.UpdateCheckRunOptions{
		Name:        name,
		Status:      github.Ptr("completed"),
		Conclusion:  github.Ptr(conclusion),
		CompletedAt: &github.Timestamp{Time: c.now()},
		Output:      out,
	}
	if _, err := c.client.UpdateCheckRun(ctx, target.Owner, target.Repo, checkRunID, opts); err != nil {
		return fmt.Errorf("failed to complete check run %d: %w", checkRunID, err)
	}
	return nil
}
