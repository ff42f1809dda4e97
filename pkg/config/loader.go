package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "config/config.yaml"

// Loader provides the settings a test session starts from.
type Loader interface {
	Load() (Settings, error)
}

// FileLoader reads settings from a YAML file. JSON files are accepted
// since JSON is valid YAML.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for path.
// If path is empty, defaults to DefaultPath.
func NewFileLoader(path string) *FileLoader {
	if path == "" {
		path = DefaultPath
	}
	return &FileLoader{path: path}
}

// Path returns the file the loader reads.
func (l *FileLoader) Path() string {
	return l.path
}

// Load reads and decodes the config file.
func (l *FileLoader) Load() (Settings, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", l.path, err)
	}
	if settings == nil {
		settings = Settings{}
	}

	return settings, nil
}

// StaticLoader serves fixed settings. Useful in tests and for embedding.
type StaticLoader Settings

// Load returns a copy of the static settings.
func (l StaticLoader) Load() (Settings, error) {
	return Settings(l).Clone(), nil
}
