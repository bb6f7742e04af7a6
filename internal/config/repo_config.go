package config

import (
	"context"
	"errors"
	"fmt"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/auto-me-bot/internal/core"
	"github.com/sevigo/auto-me-bot/internal/github"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParsing  = errors.New("config parsing failed")
)

// orgConfigRepo is the repository holding organisation wide defaults.
const orgConfigRepo = ".github"

// RepoConfigLoader reads repository configuration files from the .github
// directory of a repository through the GitHub contents API.
type RepoConfigLoader struct {
	client github.Client
}

// NewRepoConfigLoader creates a loader backed by an installation client.
func NewRepoConfigLoader(client github.Client) *RepoConfigLoader {
	return &RepoConfigLoader{client: client}
}

// Load fetches .github/<filename> from the repository, falling back to the
// owner's .github repository. It returns (nil, nil) when neither has the file.
func (l *RepoConfigLoader) Load(ctx context.Context, owner, repo, filename string) (core.RepoConfig, error) {
	data, err := l.fetch(ctx, owner, repo, filename)
	if errors.Is(err, ErrConfigNotFound) && repo != orgConfigRepo {
		data, err = l.fetch(ctx, owner, orgConfigRepo, filename)
	}
	if errors.Is(err, ErrConfigNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseRepoConfig(data)
}

func (l *RepoConfigLoader) fetch(ctx context.Context, owner, repo, filename string) ([]byte, error) {
	data, err := l.client.GetContents(ctx, owner, repo, path.Join(".github", filename))
	if errors.Is(err, github.ErrNotFound) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s/%s: %w", filename, owner, repo, err)
	}
	return data, nil
}

// ParseRepoConfig decodes a YAML configuration document. An empty document
// yields a nil config. Every nested mapping is keyed by string, non-string
// keys such as `2: legacy` are stringified.
func ParseRepoConfig(data []byte) (core.RepoConfig, error) {
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParsing, err)
	}
	if config == nil {
		return nil, nil
	}
	for key, value := range config {
		config[key] = stringKeys(value)
	}
	return core.RepoConfig(config), nil
}

// stringKeys rewrites the map[any]any nodes yaml.v3 produces for mappings
// with non-string keys into map[string]any.
func stringKeys(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, child := range typed {
			typed[key] = stringKeys(child)
		}
		return typed
	case map[any]any:
		converted := make(map[string]any, len(typed))
		for key, child := range typed {
			converted[fmt.Sprint(key)] = stringKeys(child)
		}
		return converted
	case []any:
		for i, child := range typed {
			typed[i] = stringKeys(child)
		}
		return typed
	default:
		return value
	}
}
