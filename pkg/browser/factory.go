package browser

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/browsertest/pkg/config"
	"github.com/entrhq/browsertest/pkg/logging"
)

// PlaywrightFactory launches one browser per driver through a shared
// Playwright instance.
type PlaywrightFactory struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	opts        SessionOptions
	initialized bool
	logger      *logging.Logger
	ownsLogger  bool
}

// FactoryOption configures a PlaywrightFactory.
type FactoryOption func(*PlaywrightFactory)

// WithFactoryLogger sets the logger. The caller keeps ownership of l.
func WithFactoryLogger(l *logging.Logger) FactoryOption {
	return func(f *PlaywrightFactory) {
		f.logger = l
	}
}

// NewPlaywrightFactory creates a factory. Initialize must be called before
// creating drivers. Without WithFactoryLogger the factory opens its own
// logger and closes it on Shutdown.
func NewPlaywrightFactory(opts SessionOptions, fopts ...FactoryOption) *PlaywrightFactory {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	f := &PlaywrightFactory{opts: opts}
	for _, opt := range fopts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logging.MustLogger("browser")
		f.ownsLogger = true
	}
	return f
}

// Install downloads the Playwright driver and browsers.
func Install() error {
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	return nil
}

// Initialize installs (unless SkipInstall is set) and starts Playwright.
func (f *PlaywrightFactory) Initialize() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.initialized {
		return nil
	}

	if !f.opts.SkipInstall {
		if err := Install(); err != nil {
			return err
		}
	}

	// Discard driver output so it does not interleave with go test output
	pw, err := playwright.Run(&playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	})
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	f.playwright = pw
	f.initialized = true
	f.logger.Infof("playwright started (headless=%t)", f.opts.Headless)
	return nil
}

// NewDriver launches a browser for cfg.BrowserName() and opens a page.
func (f *PlaywrightFactory) NewDriver(ctx context.Context, cfg *config.Session) (Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target, err := LookupBrowser(cfg.BrowserName())
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	pw, initialized := f.playwright, f.initialized
	f.mu.Unlock()
	if !initialized {
		return nil, fmt.Errorf("playwright factory not initialized")
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(f.opts.Headless),
	}
	if target.Channel != "" {
		launchOpts.Channel = playwright.String(target.Channel)
	}

	var browserType playwright.BrowserType
	switch target.Engine {
	case EngineFirefox:
		browserType = pw.Firefox
	case EngineWebKit:
		browserType = pw.WebKit
	default:
		browserType = pw.Chromium
	}

	browser, err := browserType.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.BrowserName(), err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  f.opts.Viewport.Width,
			Height: f.opts.Viewport.Height,
		},
	}
	if base := cfg.BaseURL(); base != "" {
		contextOpts.BaseURL = playwright.String(base)
	}
	browserCtx, err := browser.NewContext(contextOpts)
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		_ = browserCtx.Close()
		_ = browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(f.opts.Timeout)

	f.logger.Debugf("launched %s (engine=%s channel=%q)", cfg.BrowserName(), target.Engine, target.Channel)

	return &Session{
		BrowserName: cfg.BrowserName(),
		Browser:     browser,
		Context:     browserCtx,
		Page:        page,
		Headless:    f.opts.Headless,
		CreatedAt:   time.Now(),
		CurrentURL:  "about:blank",
	}, nil
}

// Shutdown stops Playwright and closes the factory's own logger. Drivers
// must be quit before.
func (f *PlaywrightFactory) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if f.initialized && f.playwright != nil {
		if stopErr := f.playwright.Stop(); stopErr != nil {
			err = fmt.Errorf("failed to stop playwright: %w", stopErr)
		} else {
			f.initialized = false
			f.logger.Infof("playwright stopped")
		}
	}
	if f.ownsLogger {
		_ = f.logger.Close()
	}
	return err
}
