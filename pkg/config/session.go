package config

import (
	"fmt"

	"github.com/entrhq/browsertest/pkg/logging"
)

// Session is the effective configuration of one test run. It is built once,
// before any test starts, and is read-only afterwards: accessors hand out
// copies so tests cannot change what other tests see.
type Session struct {
	file      Settings
	settings  Settings
	overrides Overrides
	warnings  []Warning
}

// NewSession loads the file settings, applies the overrides, and logs any
// resolution warnings. A nil logger logs to the run log file.
func NewSession(loader Loader, ov Overrides, logger *logging.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.MustLogger("config")
	}

	file, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if missing := file.Missing(RequiredKeys...); len(missing) > 0 {
		logger.Warnf("config is missing keys %v", missing)
	}

	s := newSession(file, ov)
	for _, w := range s.warnings {
		logger.Warnf("%s", w)
	}
	logger.Infof("resolved session: browser=%s baseUrl=%s", s.BrowserName(), s.BaseURL())

	return s, nil
}

// NewSessionFromSettings builds a session from already loaded settings.
func NewSessionFromSettings(file Settings, ov Overrides) *Session {
	return newSession(file.Clone(), ov)
}

func newSession(file Settings, ov Overrides) *Session {
	res := Resolve(file, ov)

	params := make(map[string]string, len(ov.Params))
	for k, v := range ov.Params {
		params[k] = v
	}
	ov.Params = params

	return &Session{
		file:      file,
		settings:  res.Settings,
		overrides: ov,
		warnings:  res.Warnings,
	}
}

// WithBrowser returns a sibling session resolved from the same file
// settings with a different browser override.
func (s *Session) WithBrowser(name string) *Session {
	ov := s.overrides
	ov.BrowserName = name
	return newSession(s.file, ov)
}

// Settings returns a copy of the effective settings.
func (s *Session) Settings() Settings {
	return s.settings.Clone()
}

// Get returns a copy of the effective value for key.
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.settings[key]
	return cloneValue(v), ok
}

// String returns the effective value for key as a string.
func (s *Session) String(key string) string {
	return s.settings.String(key)
}

// BrowserName returns the effective browser name.
func (s *Session) BrowserName() string {
	return s.settings.String(KeyBrowserName)
}

// BaseURL returns the effective base URL, "" when unresolved.
func (s *Session) BaseURL() string {
	return s.settings.String(KeyBaseURL)
}

// Param returns a free-form command-line parameter.
func (s *Session) Param(name string) string {
	return s.overrides.Params[name]
}

// Warnings returns the warnings produced while resolving.
func (s *Session) Warnings() []Warning {
	return append([]Warning(nil), s.warnings...)
}
