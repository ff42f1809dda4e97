package browser

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is a Playwright browser with its context and page. It implements
// Driver.
type Session struct {
	// BrowserName is the browserName setting the session was launched for
	BrowserName string

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the active page
	Page playwright.Page

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	// CurrentURL is the URL of the current page
	CurrentURL string

	quitOnce sync.Once
	quitErr  error
}

// Name returns the browser name.
func (s *Session) Name() string {
	return s.BrowserName
}

// Navigate navigates the session's page to the specified URL.
// Relative URLs resolve against the configured base URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	gotoOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		gotoOpts.WaitUntil = &waitUntil
	}
	if opts.Timeout > 0 {
		gotoOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.Goto(url, gotoOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// URL returns the URL of the current page.
func (s *Session) URL() string {
	return s.Page.URL()
}

// Screenshot saves a full-page PNG to path.
func (s *Session) Screenshot(path string) error {
	_, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
		Type:     playwright.ScreenshotTypePng,
	})
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	return nil
}

// Content returns the page HTML.
func (s *Session) Content() (string, error) {
	content, err := s.Page.Content()
	if err != nil {
		return "", fmt.Errorf("content extraction failed: %w", err)
	}
	return content, nil
}

// Quit closes the page, context and browser. Every close is attempted
// even when an earlier one fails.
func (s *Session) Quit() error {
	s.quitOnce.Do(func() {
		s.quitErr = errors.Join(
			s.Page.Close(),
			s.Context.Close(),
			s.Browser.Close(),
		)
	})
	return s.quitErr
}
