// Package options defines the command-line flags of a browser test run.
package options

import (
	"flag"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/entrhq/browsertest/pkg/config"
	"github.com/entrhq/browsertest/pkg/report"
)

// Flag defaults.
const (
	DefaultEnv     = string(config.DefaultEnvironment)
	DefaultBrowser = "chrome"
)

// Options holds command-line configuration for a test run.
type Options struct {
	Env        string
	Browser    string
	Param1     string
	ConfigPath string

	ScreenshotDir string
	DOMSnapshot   bool
	HTMLReport    string
	ArtifactsDir  string
	MetricsFile   string
	Summary       bool

	Headless bool
	Select   string
	LogDir   string
}

// Defaults returns the options used when no flag is given.
func Defaults() Options {
	return Options{
		Env:           DefaultEnv,
		Browser:       DefaultBrowser,
		ConfigPath:    config.DefaultPath,
		ScreenshotDir: report.DefaultScreenshotDir,
		Headless:      true,
		Summary:       true,
	}
}

// Register defines the flags on fs and returns the options they fill.
// Flags can be given with one or two dashes, e.g. go test ./e2e -args --env stage1.
func Register(fs *flag.FlagSet) *Options {
	o := Defaults()

	fs.StringVar(&o.Env, "env", o.Env, "Target environment (pie1, stage1)")
	fs.StringVar(&o.Browser, "browser", o.Browser, "Browser to use (chrome, edge, firefox, webkit)")
	fs.StringVar(&o.Param1, "param1", o.Param1, "Custom parameter")
	fs.StringVar(&o.ConfigPath, "config", o.ConfigPath, "Path to configuration file (YAML or JSON)")
	fs.StringVar(&o.ScreenshotDir, "screenshots", o.ScreenshotDir, "Directory for failure screenshots")
	fs.BoolVar(&o.DOMSnapshot, "dom-snapshot", o.DOMSnapshot, "Also save a cleaned page snapshot on failure")
	fs.StringVar(&o.HTMLReport, "html", o.HTMLReport, "Write an HTML report to this path")
	fs.StringVar(&o.ArtifactsDir, "artifacts", o.ArtifactsDir, "Write results.json and summary.md into this directory")
	fs.StringVar(&o.MetricsFile, "metrics", o.MetricsFile, "Write Prometheus metrics to this textfile")
	fs.BoolVar(&o.Summary, "summary", o.Summary, "Print a summary when the run ends")
	fs.BoolVar(&o.Headless, "headless", o.Headless, "Run browsers without a visible window")
	fs.StringVar(&o.Select, "select", o.Select, "Only run tests whose name matches this glob")
	fs.StringVar(&o.LogDir, "log-dir", o.LogDir, "Directory for run logs (default ~/.browsertest/logs)")

	return &o
}

// Overrides returns the values that take precedence over the config file.
func (o *Options) Overrides() config.Overrides {
	ov := config.Overrides{
		BrowserName: strings.TrimSpace(o.Browser),
		EnvName:     strings.TrimSpace(o.Env),
	}
	if o.Param1 != "" {
		ov.Params = map[string]string{"param1": o.Param1}
	}
	return ov
}

// Validate checks the options for values that can never work.
func (o *Options) Validate() error {
	if o.ScreenshotDir == "" {
		return fmt.Errorf("screenshots directory cannot be empty")
	}
	if o.Select != "" {
		if _, err := glob.Compile(o.Select, '/'); err != nil {
			return fmt.Errorf("invalid --select pattern %q: %w", o.Select, err)
		}
	}
	return nil
}
