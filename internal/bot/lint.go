package bot

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sevigo/auto-me-bot/internal/core"
)

// LintReport describes how a configuration file would be dispatched.
type LintReport struct {
	Enabled  []string
	Disabled []string
	Warnings []string
}

// Lint evaluates cfg against spec the same way the handlers controller does,
// and reports keys no entry knows about.
func Lint(spec ConfigSpec, cfg core.RepoConfig) LintReport {
	var report LintReport
	known := make(map[string][]string)

	for _, entry := range spec.Entries {
		parent, key := splitPath(entry.Path)
		known[parent] = append(known[parent], key)

		value, found := cfg.Lookup(entry.Path)
		if _, enabled := handlerConfig(cfg, entry.Path, slog.New(slog.DiscardHandler)); enabled {
			report.Enabled = append(report.Enabled, entry.Path)
			continue
		}
		report.Disabled = append(report.Disabled, entry.Path)
		if found {
			if _, isBool := value.(bool); !isBool {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("%s: expected a mapping, true or an empty value, got %T", entry.Path, value))
			}
		}
	}

	for parent, keys := range known {
		section, found := cfg.Lookup(parent)
		if !found || section == nil {
			continue
		}
		fields, ok := section.(map[string]any)
		if !ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: expected a mapping, got %T", parent, section))
			continue
		}
		for key := range fields {
			if !slices.Contains(keys, key) {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s.%s: unknown check", parent, key))
			}
		}
	}
	slices.Sort(report.Warnings)
	return report
}

func splitPath(path string) (string, string) {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}
