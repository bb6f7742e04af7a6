package core

import "strings"

// RepoConfig is the parsed auto-me-bot.yml of a repository. It has no fixed
// schema: checks look up their own section by key path and unknown keys are
// ignored.
type RepoConfig map[string]any

// Lookup resolves a dotted key path such as "pr.signedCommits". The boolean
// reports whether the final key exists, its value may still be nil.
func (c RepoConfig) Lookup(path string) (any, bool) {
	if c == nil || path == "" {
		return nil, false
	}

	var current any = map[string]any(c)
	for _, segment := range strings.Split(path, ".") {
		node, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func asMap(v any) (map[string]any, bool) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, true
	case RepoConfig:
		return typed, true
	default:
		return nil, false
	}
}
