package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"testing"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/browsertest/pkg/browser"
	"github.com/entrhq/browsertest/pkg/config"
	"github.com/entrhq/browsertest/pkg/fixture"
	"github.com/entrhq/browsertest/pkg/logging"
	"github.com/entrhq/browsertest/pkg/report"
)

var errDeselected = errors.New("deselected")

// T is the part of *testing.T the harness uses.
type T interface {
	Name() string
	Helper()
	Failed() bool
	Skipped() bool
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Skipf(format string, args ...any)
}

// Body is a test that uses a browser.
type Body func(tc *report.TestContext, d browser.Driver)

// MatrixBody is one browser's run of a matrix test. t is that browser's
// subtest and is the one to fail.
type MatrixBody func(t *testing.T, tc *report.TestContext, d browser.Driver)

// Harness runs tests with per-test browsers and reports their outcomes.
type Harness struct {
	cfg       *config.Session
	fixtures  *fixture.Manager
	registry  *report.Registry
	failures  *report.FailureReporter
	selector  glob.Glob
	pattern   string
	logger    *logging.Logger
	closeOnce sync.Once
	closeErr  error

	ownsLogger bool

	idMu sync.Mutex
	ids  map[string]bool
}

type settings struct {
	screenshotDir string
	domSnapshot   bool
	htmlReport    string
	reportTitle   string
	artifactsDir  string
	metricsFile   string
	summary       io.Writer
	selectPattern string
	plugins       []report.Plugin
	logger        *logging.Logger
}

// Option configures a Harness.
type Option func(*settings)

// WithScreenshotDir sets where failure screenshots are saved.
func WithScreenshotDir(dir string) Option {
	return func(s *settings) { s.screenshotDir = dir }
}

// WithDOMSnapshot saves a cleaned page snapshot next to each screenshot.
func WithDOMSnapshot() Option {
	return func(s *settings) { s.domSnapshot = true }
}

// WithHTMLReport enables the html report plugin.
func WithHTMLReport(path, title string) Option {
	return func(s *settings) {
		s.htmlReport = path
		s.reportTitle = title
	}
}

// WithArtifacts writes results.json and summary.md into dir.
func WithArtifacts(dir string) Option {
	return func(s *settings) { s.artifactsDir = dir }
}

// WithMetrics writes Prometheus metrics to path.
func WithMetrics(path string) Option {
	return func(s *settings) { s.metricsFile = path }
}

// WithSummary prints a run summary to w.
func WithSummary(w io.Writer) Option {
	return func(s *settings) { s.summary = w }
}

// WithSelect only runs tests whose full name matches the glob pattern.
// '/' separates subtest levels.
func WithSelect(pattern string) Option {
	return func(s *settings) { s.selectPattern = pattern }
}

// WithPlugin registers an additional report plugin.
func WithPlugin(p report.Plugin) Option {
	return func(s *settings) { s.plugins = append(s.plugins, p) }
}

// WithLogger sets the logger shared by the harness components.
func WithLogger(l *logging.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// New creates a harness for cfg. The failure reporter is always the first
// listener so the evidence it attaches is seen by every report.
func New(cfg *config.Session, factory browser.Factory, opts ...Option) (*Harness, error) {
	s := settings{screenshotDir: report.DefaultScreenshotDir}
	for _, opt := range opts {
		opt(&s)
	}
	owns := false
	if s.logger == nil {
		s.logger = logging.MustLogger("harness")
		owns = true
	}

	h := &Harness{
		cfg:        cfg,
		fixtures:   fixture.NewManager(factory, fixture.WithLogger(s.logger)),
		registry:   report.NewRegistry(s.logger),
		pattern:    s.selectPattern,
		logger:     s.logger,
		ownsLogger: owns,
		ids:        make(map[string]bool),
	}

	if s.selectPattern != "" {
		g, err := glob.Compile(s.selectPattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid select pattern %q: %w", s.selectPattern, err)
		}
		h.selector = g
	}

	var metrics *report.MetricsReport
	if s.metricsFile != "" {
		metrics = report.NewMetricsReport(s.metricsFile)
	}

	failureOpts := []report.FailureOption{report.WithFailureLogger(s.logger)}
	if s.domSnapshot {
		failureOpts = append(failureOpts, report.WithDOMSnapshot())
	}
	if metrics != nil {
		failureOpts = append(failureOpts, report.WithCaptureHook(metrics.RecordCapture))
	}
	h.failures = report.NewFailureReporter(s.screenshotDir, h.registry, failureOpts...)
	h.registry.AddListener(h.failures)

	plugins := []report.Plugin{}
	if s.htmlReport != "" {
		plugins = append(plugins, report.NewHTMLReport(s.htmlReport, s.reportTitle))
	}
	if s.artifactsDir != "" {
		plugins = append(plugins, report.NewArtifactWriter(s.artifactsDir, cfg))
	}
	if metrics != nil {
		plugins = append(plugins, metrics)
	}
	if s.summary != nil {
		plugins = append(plugins, report.NewConsoleSummary(s.summary))
	}
	plugins = append(plugins, s.plugins...)

	for _, p := range plugins {
		if err := h.registry.Register(p); err != nil {
			return nil, err
		}
	}

	h.logger.Infof("harness ready: browser=%s baseUrl=%s plugins=%v", cfg.BrowserName(), cfg.BaseURL(), h.registry.Names())
	return h, nil
}

// Config returns the session configuration.
func (h *Harness) Config() *config.Session {
	return h.cfg
}

// Fixtures returns the browser fixture manager.
func (h *Harness) Fixtures() *fixture.Manager {
	return h.fixtures
}

// Registry returns the report registry.
func (h *Harness) Registry() *report.Registry {
	return h.registry
}

// Failures returns the failure reporter.
func (h *Harness) Failures() *report.FailureReporter {
	return h.failures
}

// Run runs a test that does not need a browser.
func (h *Harness) Run(t T, body func(tc *report.TestContext)) {
	t.Helper()
	h.execute(t, h.cfg, false, func(tc *report.TestContext, _ browser.Driver) {
		body(tc)
	})
}

// Browser runs a test with a fresh browser that is released when the test
// ends, whatever its outcome.
func (h *Harness) Browser(t T, body Body) {
	t.Helper()
	h.execute(t, h.cfg, true, body)
}

// Matrix runs body once per browser name as subtests of t. The base URL
// and other settings are those of the session.
func (h *Harness) Matrix(t *testing.T, browsers []string, body MatrixBody) {
	t.Helper()
	runMatrix(h, t.Run, browsers, body)
}

func runMatrix[R T](h *Harness, run func(string, func(R)) bool, browsers []string, body func(R, *report.TestContext, browser.Driver)) {
	for _, name := range browsers {
		cfg := h.cfg.WithBrowser(name)
		run(name, func(t R) {
			h.execute(t, cfg, true, func(tc *report.TestContext, d browser.Driver) {
				body(t, tc, d)
			})
		})
	}
}

// uniqueID returns id, or id with a numeric suffix when a test already
// used it, so a test that asks for a browser twice keeps both results.
func (h *Harness) uniqueID(id string) string {
	h.idMu.Lock()
	defer h.idMu.Unlock()

	out := id
	for n := 2; h.ids[out]; n++ {
		out = fmt.Sprintf("%s-%d", id, n)
	}
	h.ids[out] = true
	return out
}

func (h *Harness) selected(name string) bool {
	return h.selector == nil || h.selector.Match(name)
}

func (h *Harness) execute(t T, cfg *config.Session, useBrowser bool, body Body) {
	t.Helper()
	tc := report.NewTestContext(t.Name(), cfg)
	tc.ID = h.uniqueID(tc.ID)

	if !h.selected(tc.Name) {
		h.dispatch(tc, report.PhaseSetup, report.StatusSkipped, time.Now(), errDeselected)
		t.Skipf("deselected by select pattern %q", h.pattern)
		return
	}

	setupStart := time.Now()
	var driver browser.Driver
	if useBrowser {
		d, err := h.fixtures.Acquire(context.Background(), cfg)
		if err != nil {
			h.dispatch(tc, report.PhaseSetup, report.StatusFailed, setupStart, err)
			t.Fatalf("setup: %v", err)
			return
		}
		driver = d
		tc.SetDriver(d)
		// Registered before the call defer so it runs after it
		defer h.teardown(t, tc)
	}
	h.dispatch(tc, report.PhaseSetup, report.StatusPassed, setupStart, nil)

	// Failures recorded before the body ran belong to the caller
	failedBefore := t.Failed()
	returned := false
	callStart := time.Now()
	defer func() {
		var err error
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
			t.Errorf("%v\n%s", err, debug.Stack())
		}

		status := report.StatusPassed
		switch {
		case err != nil, t.Failed() && (!failedBefore || !returned && !t.Skipped()):
			status = report.StatusFailed
			if err == nil {
				err = fmt.Errorf("test failed")
			}
		case t.Skipped():
			status = report.StatusSkipped
		}
		h.dispatch(tc, report.PhaseCall, status, callStart, err)
	}()

	body(tc, driver)
	returned = true
}

func (h *Harness) teardown(t T, tc *report.TestContext) {
	start := time.Now()
	err := h.fixtures.Release(tc.Driver())
	tc.SetDriver(nil)

	if err != nil {
		h.dispatch(tc, report.PhaseTeardown, report.StatusFailed, start, err)
		t.Errorf("teardown: %v", err)
		return
	}
	h.dispatch(tc, report.PhaseTeardown, report.StatusPassed, start, nil)
}

func (h *Harness) dispatch(tc *report.TestContext, phase report.Phase, status report.Status, start time.Time, err error) {
	o := &report.Outcome{
		TestID:   tc.ID,
		Test:     tc.Name,
		Phase:    phase,
		Status:   status,
		Err:      err,
		Start:    start,
		Duration: time.Since(start),
	}
	if err != nil {
		o.Message = err.Error()
	}

	h.logger.Debugf("%s %s: %s", tc.Name, phase, status)
	h.registry.Dispatch(tc, o)
}

// Close flushes every report plugin and closes the harness's own logger.
// It is safe to call more than once.
func (h *Harness) Close() error {
	h.closeOnce.Do(func() {
		if active := h.fixtures.Active(); active > 0 {
			h.logger.Warnf("%d browser sessions still active at close", active)
		}
		h.closeErr = h.registry.Close()
		if h.ownsLogger {
			_ = h.logger.Close()
		}
	})
	return h.closeErr
}
