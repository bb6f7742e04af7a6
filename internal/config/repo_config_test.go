package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/auto-me-bot/internal/core"
	"github.com/sevigo/auto-me-bot/internal/github"
	"github.com/sevigo/auto-me-bot/mocks"
)

func TestParseRepoConfig(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    core.RepoConfig
		wantErr error
	}{
		{
			name: "full pr section",
			data: "pr:\n  conventionalCommits: {}\n  signedCommits:\n    ignore:\n      users: [octocat]\n  tasksList:\n",
			want: core.RepoConfig{
				"pr": map[string]any{
					"conventionalCommits": map[string]any{},
					"signedCommits": map[string]any{
						"ignore": map[string]any{"users": []any{"octocat"}},
					},
					"tasksList": nil,
				},
			},
		},
		{
			name: "non-string keys in a section",
			data: "pr:\n  conventionalCommits: {}\n  2: legacy\n",
			want: core.RepoConfig{
				"pr": map[string]any{
					"conventionalCommits": map[string]any{},
					"2":                   "legacy",
				},
			},
		},
		{
			name: "non-string keys in check options",
			data: "pr:\n  conventionalCommits:\n    types: [feat]\n    1: x\n",
			want: core.RepoConfig{
				"pr": map[string]any{
					"conventionalCommits": map[string]any{
						"types": []any{"feat"},
						"1":     "x",
					},
				},
			},
		},
		{
			name: "non-string keys inside a list",
			data: "pr:\n  rules:\n    - true: yes\n",
			want: core.RepoConfig{
				"pr": map[string]any{
					"rules": []any{map[string]any{"true": "yes"}},
				},
			},
		},
		{
			name: "empty document",
			data: "",
			want: nil,
		},
		{
			name: "empty mapping",
			data: "{}",
			want: core.RepoConfig{},
		},
		{
			name:    "sequence document",
			data:    "- pr\n- issues\n",
			wantErr: ErrConfigParsing,
		},
		{
			name:    "invalid yaml",
			data:    "pr: [unterminated",
			wantErr: ErrConfigParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRepoConfig([]byte(tt.data))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepoConfigLoader_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the repository file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockClient(ctrl)
		client.EXPECT().
			GetContents(gomock.Any(), "octo", "bot", ".github/auto-me-bot.yml").
			Return([]byte("pr:\n  tasksList: {}\n"), nil)

		cfg, err := NewRepoConfigLoader(client).Load(ctx, "octo", "bot", "auto-me-bot.yml")
		require.NoError(t, err)
		_, found := cfg.Lookup("pr.tasksList")
		assert.True(t, found)
	})

	t.Run("falls back to the organisation repository", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockClient(ctrl)
		gomock.InOrder(
			client.EXPECT().
				GetContents(gomock.Any(), "octo", "bot", ".github/auto-me-bot.yml").
				Return(nil, github.ErrNotFound),
			client.EXPECT().
				GetContents(gomock.Any(), "octo", ".github", ".github/auto-me-bot.yml").
				Return([]byte("pr:\n  signedCommits: {}\n"), nil),
		)

		cfg, err := NewRepoConfigLoader(client).Load(ctx, "octo", "bot", "auto-me-bot.yml")
		require.NoError(t, err)
		_, found := cfg.Lookup("pr.signedCommits")
		assert.True(t, found)
	})

	t.Run("missing everywhere yields nil", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockClient(ctrl)
		client.EXPECT().
			GetContents(gomock.Any(), "octo", gomock.Any(), ".github/auto-me-bot.yml").
			Return(nil, github.ErrNotFound).
			Times(2)

		cfg, err := NewRepoConfigLoader(client).Load(ctx, "octo", "bot", "auto-me-bot.yml")
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("api failure is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockClient(ctrl)
		client.EXPECT().
			GetContents(gomock.Any(), "octo", "bot", ".github/auto-me-bot.yml").
			Return(nil, errors.New("bad gateway"))

		cfg, err := NewRepoConfigLoader(client).Load(ctx, "octo", "bot", "auto-me-bot.yml")
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}
