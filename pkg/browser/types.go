package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/browsertest/pkg/config"
)

// Driver is a live handle to one browser instance.
type Driver interface {
	// Name returns the browser name the driver was created for
	Name() string

	// Navigate loads url in the driver's page
	Navigate(url string, opts NavigateOptions) error

	// URL returns the current page URL
	URL() string

	// Screenshot writes a PNG of the current page to path
	Screenshot(path string) error

	// Content returns the current page HTML
	Content() (string, error)

	// Quit closes the browser. Calling it more than once is safe.
	Quit() error
}

// Factory creates drivers from the effective configuration of a test run.
type Factory interface {
	NewDriver(ctx context.Context, cfg *config.Session) (Driver, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, cfg *config.Session) (Driver, error)

// NewDriver calls f.
func (f FactoryFunc) NewDriver(ctx context.Context, cfg *config.Session) (Driver, error) {
	return f(ctx, cfg)
}

// Engine identifies a Playwright browser type.
type Engine string

const (
	EngineChromium Engine = "chromium"
	EngineFirefox  Engine = "firefox"
	EngineWebKit   Engine = "webkit"
)

// ErrUnsupportedBrowser is returned for browser names with no engine.
var ErrUnsupportedBrowser = errors.New("unsupported browser")

// Target is the engine and optional release channel for a browser name.
type Target struct {
	Engine  Engine
	Channel string
}

// LookupBrowser maps a browserName setting to a Playwright target.
// An empty name selects Chromium.
func LookupBrowser(name string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "chrome", "chromium":
		return Target{Engine: EngineChromium}, nil
	case "edge", "msedge":
		return Target{Engine: EngineChromium, Channel: "msedge"}, nil
	case "firefox":
		return Target{Engine: EngineFirefox}, nil
	case "webkit", "safari":
		return Target{Engine: EngineWebKit}, nil
	default:
		return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedBrowser, name)
	}
}

// SessionOptions configures new browser sessions.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for operations (in milliseconds)
	Timeout float64

	// SkipInstall skips downloading drivers and browsers on Initialize
	SkipInstall bool
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// Default values for sessions
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)
