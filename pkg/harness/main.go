package harness

import (
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/entrhq/browsertest/pkg/browser"
	"github.com/entrhq/browsertest/pkg/config"
	"github.com/entrhq/browsertest/pkg/logging"
	"github.com/entrhq/browsertest/pkg/options"
)

// Main wires a Harness from command-line options, runs the tests in m and
// closes everything. It is meant to be called from TestMain. setup receives
// the harness before any test runs.
func Main(m *testing.M, opts *options.Options, setup func(*Harness)) int {
	if !flag.Parsed() {
		flag.Parse()
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "browsertest: %v\n", err)
		return 2
	}

	logging.SetDirectory(opts.LogDir)
	logger := logging.MustLogger("harness")
	defer logger.Close()

	cfg, err := config.NewSession(config.NewFileLoader(opts.ConfigPath), opts.Overrides(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "browsertest: %v\n", err)
		return 1
	}

	factory := browser.NewPlaywrightFactory(browser.SessionOptions{Headless: opts.Headless}, browser.WithFactoryLogger(logger))
	if err := factory.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "browsertest: %v\n", err)
		return 1
	}
	defer func() {
		if err := factory.Shutdown(); err != nil {
			logger.Warnf("playwright shutdown: %v", err)
		}
	}()

	h, err := New(cfg, factory, FromOptions(opts, logger)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "browsertest: %v\n", err)
		return 1
	}
	if setup != nil {
		setup(h)
	}

	code := m.Run()
	if err := h.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "browsertest: writing reports: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

// FromOptions translates command-line options into harness options.
func FromOptions(opts *options.Options, logger *logging.Logger) []Option {
	out := []Option{
		WithScreenshotDir(opts.ScreenshotDir),
		WithSelect(opts.Select),
	}
	if logger != nil {
		out = append(out, WithLogger(logger))
	}
	if opts.DOMSnapshot {
		out = append(out, WithDOMSnapshot())
	}
	if opts.HTMLReport != "" {
		out = append(out, WithHTMLReport(opts.HTMLReport, ""))
	}
	if opts.ArtifactsDir != "" {
		out = append(out, WithArtifacts(opts.ArtifactsDir))
	}
	if opts.MetricsFile != "" {
		out = append(out, WithMetrics(opts.MetricsFile))
	}
	if opts.Summary {
		out = append(out, WithSummary(os.Stdout))
	}
	return out
}
