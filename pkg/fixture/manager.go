// Package fixture provides per-test browser sessions with guaranteed
// release.
package fixture

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/entrhq/browsertest/pkg/browser"
	"github.com/entrhq/browsertest/pkg/config"
	"github.com/entrhq/browsertest/pkg/logging"
)

// AcquireError reports that the factory could not create a session.
type AcquireError struct {
	Browser string
	Err     error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("failed to acquire %s session: %v", e.Browser, e.Err)
}

func (e *AcquireError) Unwrap() error { return e.Err }

// ReleaseError reports that quitting a session failed.
type ReleaseError struct {
	Browser string
	Err     error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("failed to release %s session: %v", e.Browser, e.Err)
}

func (e *ReleaseError) Unwrap() error { return e.Err }

// Manager acquires drivers from a factory and releases them.
type Manager struct {
	factory  browser.Factory
	logger   *logging.Logger
	acquired atomic.Int64
	released atomic.Int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates a manager backed by factory.
func NewManager(factory browser.Factory, opts ...Option) *Manager {
	m := &Manager{factory: factory}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.MustLogger("fixture")
	}
	return m
}

// Acquire creates a driver for cfg. Factory failures are returned as
// *AcquireError and are never retried.
func (m *Manager) Acquire(ctx context.Context, cfg *config.Session) (browser.Driver, error) {
	d, err := m.factory.NewDriver(ctx, cfg)
	if err != nil {
		m.logger.Errorf("acquire %s failed: %v", cfg.BrowserName(), err)
		return nil, &AcquireError{Browser: cfg.BrowserName(), Err: err}
	}

	m.acquired.Add(1)
	m.logger.Debugf("acquired %s session", d.Name())
	return d, nil
}

// Release quits d. A nil driver is a no-op.
func (m *Manager) Release(d browser.Driver) error {
	if d == nil {
		return nil
	}

	m.released.Add(1)
	if err := d.Quit(); err != nil {
		m.logger.Warnf("release %s failed: %v", d.Name(), err)
		return &ReleaseError{Browser: d.Name(), Err: err}
	}

	m.logger.Debugf("released %s session", d.Name())
	return nil
}

// With acquires a driver, calls fn with it, and releases it on every exit
// path, panics included. A release failure is returned only when fn
// itself succeeded.
func (m *Manager) With(ctx context.Context, cfg *config.Session, fn func(browser.Driver) error) (err error) {
	d, err := m.Acquire(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		if relErr := m.Release(d); relErr != nil && err == nil {
			err = relErr
		}
	}()

	return fn(d)
}

// Acquired returns the number of successful acquisitions.
func (m *Manager) Acquired() int64 {
	return m.acquired.Load()
}

// Released returns the number of release attempts.
func (m *Manager) Released() int64 {
	return m.released.Load()
}

// Active returns acquisitions not yet released.
func (m *Manager) Active() int64 {
	return m.Acquired() - m.Released()
}
