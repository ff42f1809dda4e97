package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/entrhq/browsertest/pkg/browser"
	"github.com/entrhq/browsertest/pkg/logging"
)

// DefaultScreenshotDir is where failure screenshots go by default.
const DefaultScreenshotDir = "screenshots"

// CaptureFunc is notified of every artifact the failure reporter saves.
type CaptureFunc func(kind EvidenceKind, path string)

// FailureReporter saves a screenshot of the live browser when a test body
// fails, and attaches it to the outcome when the html report is active.
// Capture is best-effort: errors are logged and never change the outcome.
type FailureReporter struct {
	dir        string
	registry   *Registry
	logger     *logging.Logger
	captureDOM bool
	onCapture  CaptureFunc
	captured   atomic.Int64
}

// FailureOption configures a FailureReporter.
type FailureOption func(*FailureReporter)

// WithDOMSnapshot also saves a cleaned copy of the page HTML.
func WithDOMSnapshot() FailureOption {
	return func(r *FailureReporter) {
		r.captureDOM = true
	}
}

// WithCaptureHook sets a function called for each saved artifact.
func WithCaptureHook(fn CaptureFunc) FailureOption {
	return func(r *FailureReporter) {
		r.onCapture = fn
	}
}

// WithFailureLogger sets the reporter's logger.
func WithFailureLogger(l *logging.Logger) FailureOption {
	return func(r *FailureReporter) {
		r.logger = l
	}
}

// NewFailureReporter creates a reporter writing into dir. registry is
// consulted for the html plugin; it may be nil. Without WithFailureLogger
// the reporter logs through the registry's logger.
func NewFailureReporter(dir string, registry *Registry, opts ...FailureOption) *FailureReporter {
	if dir == "" {
		dir = DefaultScreenshotDir
	}
	r := &FailureReporter{dir: dir, registry: registry}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil && registry != nil {
		r.logger = registry.logger
	}
	if r.logger == nil {
		r.logger = logging.MustLogger("failure")
	}
	return r
}

// Dir returns the directory artifacts are written to.
func (r *FailureReporter) Dir() string {
	return r.dir
}

// Captured returns the number of artifacts saved.
func (r *FailureReporter) Captured() int64 {
	return r.captured.Load()
}

// ScreenshotPath returns where the screenshot for tc is saved.
func (r *FailureReporter) ScreenshotPath(tc *TestContext) string {
	return filepath.Join(r.dir, tc.ID+".png")
}

// OnOutcome implements Listener.
func (r *FailureReporter) OnOutcome(tc *TestContext, o *Outcome) {
	if o.Phase != PhaseCall || o.Status != StatusFailed {
		return
	}

	d := tc.Driver()
	if d == nil {
		return
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		r.logger.Warnf("cannot create %s for %s: %v", r.dir, tc.Name, err)
		return
	}

	path := r.ScreenshotPath(tc)
	if err := d.Screenshot(path); err != nil {
		r.logger.Warnf("screenshot of %s failed: %v", tc.Name, err)
	} else {
		r.saved(o, Evidence{Kind: EvidenceImage, Path: path, Title: "screenshot"})
	}

	if r.captureDOM {
		if err := r.snapshot(tc, d, o); err != nil {
			r.logger.Warnf("page snapshot of %s failed: %v", tc.Name, err)
		}
	}
}

func (r *FailureReporter) snapshot(tc *TestContext, d browser.Driver, o *Outcome) error {
	content, err := d.Content()
	if err != nil {
		return err
	}
	snap, err := browser.CleanSnapshot(content)
	if err != nil {
		return err
	}

	path := filepath.Join(r.dir, tc.ID+".html")
	if err := os.WriteFile(path, []byte(snap.HTML), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	title := "page"
	if snap.Title != "" {
		title = snap.Title
	}
	r.saved(o, Evidence{Kind: EvidenceHTML, Path: path, Title: title})
	return nil
}

func (r *FailureReporter) saved(o *Outcome, e Evidence) {
	r.captured.Add(1)
	r.logger.Infof("saved %s for %s: %s", e.Kind, o.Test, e.Path)

	if r.onCapture != nil {
		r.onCapture(e.Kind, e.Path)
	}
	if r.registry != nil && r.registry.Has(HTMLPluginName) {
		o.Attach(e)
	}
}
