package report

import (
	"errors"
	"fmt"
	"sync"

	"github.com/entrhq/browsertest/pkg/logging"
)

// Listener observes test outcomes. OnOutcome is called once per phase of
// every test, possibly from parallel tests at the same time.
type Listener interface {
	OnOutcome(tc *TestContext, o *Outcome)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(tc *TestContext, o *Outcome)

// OnOutcome calls f.
func (f ListenerFunc) OnOutcome(tc *TestContext, o *Outcome) {
	f(tc, o)
}

// Plugin is a named listener that produces output when the run ends.
type Plugin interface {
	Listener
	Name() string
	Close() error
}

// Registry dispatches outcomes to listeners in registration order and
// tracks which plugins are active.
type Registry struct {
	mu        sync.RWMutex
	listeners []Listener
	plugins   map[string]Plugin
	order     []string
	logger    *logging.Logger
	closeOnce sync.Once
	closeErr  error

	ownsLogger bool
}

// NewRegistry creates an empty registry. A nil logger makes the registry
// open its own, closed by Close.
func NewRegistry(logger *logging.Logger) *Registry {
	r := &Registry{
		plugins: make(map[string]Plugin),
		logger:  logger,
	}
	if r.logger == nil {
		r.logger = logging.MustLogger("report")
		r.ownsLogger = true
	}
	return r
}

// AddListener appends l to the dispatch order.
func (r *Registry) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Register adds a plugin. Names must be unique.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[p.Name()]; exists {
		return fmt.Errorf("plugin %q already registered", p.Name())
	}
	r.plugins[p.Name()] = p
	r.order = append(r.order, p.Name())
	r.listeners = append(r.listeners, p)
	return nil
}

// Has reports whether a plugin called name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.plugins[name]
	return ok
}

// Plugin returns the plugin called name.
func (r *Registry) Plugin(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// Names returns the registered plugin names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Dispatch hands o to every listener. A panicking listener is logged and
// skipped; it never affects o.Status or the remaining listeners.
func (r *Registry) Dispatch(tc *TestContext, o *Outcome) {
	r.mu.RLock()
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.RUnlock()

	for _, l := range listeners {
		r.notify(l, tc, o)
	}
}

func (r *Registry) notify(l Listener, tc *TestContext, o *Outcome) {
	status := o.Status
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorf("listener %T panicked on %s/%s: %v", l, o.Test, o.Phase, rec)
		}
		o.Status = status
	}()
	l.OnOutcome(tc, o)
}

// Close closes every plugin once, in registration order.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		r.mu.RLock()
		plugins := make([]Plugin, 0, len(r.order))
		for _, name := range r.order {
			plugins = append(plugins, r.plugins[name])
		}
		r.mu.RUnlock()

		var errs []error
		for _, p := range plugins {
			if err := p.Close(); err != nil {
				r.logger.Errorf("closing %s report: %v", p.Name(), err)
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			}
		}
		r.closeErr = errors.Join(errs...)
		if r.ownsLogger {
			_ = r.logger.Close()
		}
	})
	return r.closeErr
}
