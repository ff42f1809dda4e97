// Package drivertest provides in-memory browser drivers for tests.
package drivertest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/entrhq/browsertest/pkg/browser"
	"github.com/entrhq/browsertest/pkg/config"
)

// PNGHeader is written by FakeDriver.Screenshot.
var PNGHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// FakeDriver records calls and writes a minimal PNG on Screenshot.
type FakeDriver struct {
	BrowserName string
	HTML        string

	// ScreenshotErr and QuitErr are returned by the matching calls
	ScreenshotErr error
	QuitErr       error

	mu          sync.Mutex
	url         string
	screenshots []string
	quits       int
}

// Name returns the browser name.
func (d *FakeDriver) Name() string {
	return d.BrowserName
}

// Navigate records url as the current page.
func (d *FakeDriver) Navigate(url string, _ browser.NavigateOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
	return nil
}

// URL returns the last navigated URL.
func (d *FakeDriver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

// Screenshot writes PNGHeader to path unless ScreenshotErr is set.
func (d *FakeDriver) Screenshot(path string) error {
	if d.ScreenshotErr != nil {
		return d.ScreenshotErr
	}
	if err := os.WriteFile(path, PNGHeader, 0600); err != nil {
		return err
	}
	d.mu.Lock()
	d.screenshots = append(d.screenshots, path)
	d.mu.Unlock()
	return nil
}

// Content returns HTML.
func (d *FakeDriver) Content() (string, error) {
	if d.HTML == "" {
		return "", errors.New("no content")
	}
	return d.HTML, nil
}

// Quit counts the call.
func (d *FakeDriver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quits++
	return d.QuitErr
}

// Screenshots returns the paths written so far.
func (d *FakeDriver) Screenshots() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.screenshots...)
}

// Quits returns how many times Quit was called.
func (d *FakeDriver) Quits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quits
}

// Factory hands out FakeDrivers and counts them.
type Factory struct {
	// Err fails every NewDriver call when set
	Err error
	// HTML is copied into each driver
	HTML string
	// Configure, when set, adjusts each driver before it is returned
	Configure func(*FakeDriver)

	created atomic.Int64
	mu      sync.Mutex
	drivers []*FakeDriver
}

// NewDriver returns a FakeDriver for cfg.BrowserName().
func (f *Factory) NewDriver(ctx context.Context, cfg *config.Session) (browser.Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, fmt.Errorf("fake factory: %w", f.Err)
	}

	d := &FakeDriver{BrowserName: cfg.BrowserName(), HTML: f.HTML, url: cfg.BaseURL()}
	if f.Configure != nil {
		f.Configure(d)
	}

	f.created.Add(1)
	f.mu.Lock()
	f.drivers = append(f.drivers, d)
	f.mu.Unlock()
	return d, nil
}

// Created returns how many drivers were handed out.
func (f *Factory) Created() int {
	return int(f.created.Load())
}

// Drivers returns the drivers handed out so far.
func (f *Factory) Drivers() []*FakeDriver {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeDriver(nil), f.drivers...)
}

// TotalQuits sums Quit calls over every driver.
func (f *Factory) TotalQuits() int {
	total := 0
	for _, d := range f.Drivers() {
		total += d.Quits()
	}
	return total
}
