package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepoConfig_Lookup(t *testing.T) {
	signed := map[string]any{"ignore": map[string]any{"users": []any{"dependabot[bot]"}}}
	cfg := RepoConfig{
		"pr": map[string]any{
			"signedCommits": signed,
			"tasksList":     nil,
			"flag":          true,
		},
		"scalar": "value",
	}

	tests := []struct {
		name      string
		path      string
		wantFound bool
		want      any
	}{
		{name: "nested map", path: "pr.signedCommits", wantFound: true, want: signed},
		{name: "deeply nested", path: "pr.signedCommits.ignore.users", wantFound: true, want: []any{"dependabot[bot]"}},
		{name: "present but null", path: "pr.tasksList", wantFound: true, want: nil},
		{name: "scalar leaf", path: "pr.flag", wantFound: true, want: true},
		{name: "missing leaf", path: "pr.conventionalCommits", wantFound: false},
		{name: "missing section", path: "issues.labels", wantFound: false},
		{name: "walk through scalar", path: "scalar.child", wantFound: false},
		{name: "empty path", path: "", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := cfg.Lookup(tt.path)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRepoConfig_LookupNil(t *testing.T) {
	var cfg RepoConfig
	_, found := cfg.Lookup("pr.signedCommits")
	assert.False(t, found)
}
