package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of feed source definitions.
type Loader struct {
	feedsDir string
}

// NewLoader creates a new feed source loader.
func NewLoader(feedsDir string) *Loader {
	return &Loader{feedsDir: feedsDir}
}

// LoadAll loads all YAML definition files from the feeds directory. When the
// directory does not exist or contains no definitions, the built-in default
// sources are returned instead.
func (l *Loader) LoadAll() ([]FeedSource, error) {
	if _, err := os.Stat(l.feedsDir); os.IsNotExist(err) {
		return DefaultSources(), nil
	}

	files, err := filepath.Glob(filepath.Join(l.feedsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(l.feedsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)

	var sources []FeedSource
	for _, file := range files {
		loaded, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}
		sources = append(sources, loaded...)
	}

	if len(sources) == 0 {
		return DefaultSources(), nil
	}

	return sources, nil
}

func (l *Loader) loadFile(path string) ([]FeedSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file SourceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range file.Feeds {
		setDefaults(&file.Feeds[i])
		if err := validate(file.Feeds[i]); err != nil {
			return nil, fmt.Errorf("invalid feed at index %d: %w", i, err)
		}
	}

	return file.Feeds, nil
}

func setDefaults(source *FeedSource) {
	if source.Language == "" {
		source.Language = "english"
	}
	if source.Category == "" {
		source.Category = "technology"
	}
}

func validate(source FeedSource) error {
	if source.URL == "" {
		return fmt.Errorf("feed URL is required")
	}
	if source.Title == "" {
		return fmt.Errorf("feed title is required")
	}
	return nil
}
