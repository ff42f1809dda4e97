// Package main provides the browsertest command: it resolves the effective
// test configuration and runs a browser smoke check against the configured
// environment without writing a test.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/browsertest/pkg/browser"
	"github.com/entrhq/browsertest/pkg/config"
	"github.com/entrhq/browsertest/pkg/fixture"
	"github.com/entrhq/browsertest/pkg/logging"
	"github.com/entrhq/browsertest/pkg/options"
)

const version = "0.1.0"

var errUsage = errors.New("usage")

// newFactory starts the browser factory used by smoke. The returned
// function shuts it down.
var newFactory = func(opts *options.Options, logger *logging.Logger) (browser.Factory, func() error, error) {
	f := browser.NewPlaywrightFactory(browser.SessionOptions{Headless: opts.Headless}, browser.WithFactoryLogger(logger))
	if err := f.Initialize(); err != nil {
		return nil, nil, err
	}
	return f, f.Shutdown, nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	switch {
	case errors.Is(err, errUsage):
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "browsertest: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "browsertest - browser test configuration and smoke checks\n\n")
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  browsertest resolve [options]   Print the effective configuration\n")
	fmt.Fprintf(w, "  browsertest smoke [options]     Open baseUrl in a browser and save a screenshot\n")
	fmt.Fprintf(w, "  browsertest install             Install Playwright browsers\n")
	fmt.Fprintf(w, "  browsertest -version            Show version and exit\n\n")
	fmt.Fprintf(w, "Examples:\n")
	fmt.Fprintf(w, "  browsertest resolve --env stage1 --browser firefox\n")
	fmt.Fprintf(w, "  browsertest smoke --config e2e/config/config.yaml --headless=false\n")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errUsage
	}

	switch args[0] {
	case "-version", "--version", "version":
		fmt.Fprintf(stdout, "browsertest v%s\n", version)
		return nil
	case "-h", "--help", "help":
		usage(stdout)
		return nil
	case "install":
		return browser.Install()
	case "resolve":
		opts, err := parseOptions("resolve", args[1:], stderr)
		if err != nil {
			return err
		}
		return resolve(opts, stdout)
	case "smoke":
		opts, err := parseOptions("smoke", args[1:], stderr)
		if err != nil {
			return err
		}
		return smoke(ctx, opts, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return errUsage
	}
}

func parseOptions(name string, args []string, stderr io.Writer) (*options.Options, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := options.Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logging.SetDirectory(opts.LogDir)
	return opts, nil
}

func loadSession(opts *options.Options, logger *logging.Logger) (*config.Session, error) {
	cfg, err := config.NewSession(config.NewFileLoader(opts.ConfigPath), opts.Overrides(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// resolve prints the effective configuration as YAML, followed by warnings
// as comments so the output stays valid YAML.
func resolve(opts *options.Options, stdout io.Writer) error {
	logger := logging.MustLogger("cli")
	defer logger.Close()

	cfg, err := loadSession(opts, logger)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(cfg.Settings())); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	for _, w := range cfg.Warnings() {
		fmt.Fprintf(stdout, "# warning: %s\n", w)
	}
	for _, key := range cfg.Settings().Missing(config.KeyBrowserName, config.KeyBaseURL) {
		fmt.Fprintf(stdout, "# warning: missing %s\n", key)
	}
	return nil
}

// smoke acquires a browser, opens baseUrl and saves a screenshot.
func smoke(ctx context.Context, opts *options.Options, stdout io.Writer) error {
	logger := logging.MustLogger("cli")
	defer logger.Close()

	cfg, err := loadSession(opts, logger)
	if err != nil {
		return err
	}
	target := cfg.BaseURL()
	if target == "" {
		return fmt.Errorf("no baseUrl for environment %q", opts.Env)
	}

	factory, shutdown, err := newFactory(opts, logger)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := shutdown(); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	if err := os.MkdirAll(opts.ScreenshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	shot := filepath.Join(opts.ScreenshotDir, "smoke.png")

	start := time.Now()
	manager := fixture.NewManager(factory, fixture.WithLogger(logger))
	err = manager.With(ctx, cfg, func(d browser.Driver) error {
		if err := d.Navigate(target, browser.NavigateOptions{WaitUntil: "load"}); err != nil {
			return err
		}
		return d.Screenshot(shot)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✓ %s loaded %s in %s\n", cfg.BrowserName(), target, time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(stdout, "  screenshot: %s\n", shot)
	return nil
}
