package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/sevigo/auto-me-bot/internal/core"
)

// TasksListCheckName is the check run name shown on the pull request.
const TasksListCheckName = "Auto-Me-Bot Tasks List"

var markdown = goldmark.New(goldmark.WithExtensions(extension.TaskList))

// TasksList fails while the pull request description has unchecked task
// list items. It takes no options.
func TasksList(ctx context.Context, evt *core.EventContext, _ map[string]any, startedAt string) error {
	return runCheck(ctx, evt, TasksListCheckName, startedAt,
		func(_ context.Context, _ *core.EventContext, pr *github.PullRequest) (result, error) {
			open, total := uncheckedTasks(pr.GetBody())
			if len(open) == 0 {
				return passed("Tasks list", fmt.Sprintf("All %d tasks are done.", total)), nil
			}

			var sb strings.Builder
			for _, task := range open {
				fmt.Fprintf(&sb, "- [ ] %s\n", task)
			}
			return failed(
				"Tasks list",
				fmt.Sprintf("%d of %d tasks are not done.", len(open), total),
				sb.String(),
			), nil
		})
}

// uncheckedTasks returns the text of every unchecked task item in body and
// the total number of task items.
func uncheckedTasks(body string) ([]string, int) {
	source := []byte(body)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var open []string
	total := 0
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		box, ok := node.(*extast.TaskCheckBox)
		if !ok {
			return ast.WalkContinue, nil
		}
		total++
		if !box.IsChecked {
			open = append(open, inlineText(box.NextSibling(), source))
		}
		return ast.WalkSkipChildren, nil
	})
	return open, total
}

// inlineText concatenates the text of n and its following siblings.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for ; n != nil; n = n.NextSibling() {
		_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			switch t := node.(type) {
			case *ast.Text:
				sb.Write(t.Segment.Value(source))
				if t.SoftLineBreak() || t.HardLineBreak() {
					sb.WriteByte(' ')
				}
			case *ast.String:
				sb.Write(t.Value)
			}
			return ast.WalkContinue, nil
		})
	}
	return strings.TrimSpace(sb.String())
}
