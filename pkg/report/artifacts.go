package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/entrhq/browsertest/pkg/config"
	"github.com/entrhq/browsertest/pkg/logging"
)

// ArtifactsPluginName is the registry name of the artifact writer.
const ArtifactsPluginName = "artifacts"

// RunSummary is the machine-readable summary of a test run.
type RunSummary struct {
	RunID     string            `json:"run_id"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Duration  time.Duration     `json:"duration"`
	Settings  map[string]string `json:"settings"`
	Warnings  []string          `json:"warnings,omitempty"`
	Counts    Counts            `json:"counts"`
	Tests     []TestResult      `json:"tests"`
}

// ArtifactWriter writes results.json and summary.md into a directory when
// the run ends.
type ArtifactWriter struct {
	*Collector
	outputDir string
	cfg       *config.Session
}

// NewArtifactWriter creates a writer for outputDir. cfg may be nil.
func NewArtifactWriter(outputDir string, cfg *config.Session) *ArtifactWriter {
	return &ArtifactWriter{
		Collector: NewCollector(),
		outputDir: outputDir,
		cfg:       cfg,
	}
}

// Name implements Plugin.
func (w *ArtifactWriter) Name() string {
	return ArtifactsPluginName
}

// OnOutcome implements Listener.
func (w *ArtifactWriter) OnOutcome(tc *TestContext, o *Outcome) {
	w.Collect(tc, o)
}

// Close writes all artifacts.
func (w *ArtifactWriter) Close() error {
	return w.WriteAll(w.Summary())
}

// Summary builds the run summary from what has been collected so far.
func (w *ArtifactWriter) Summary() *RunSummary {
	end := time.Now()
	summary := &RunSummary{
		RunID:     logging.GetRunID(),
		StartTime: w.Started(),
		EndTime:   end,
		Duration:  end.Sub(w.Started()),
		Settings:  map[string]string{},
		Counts:    w.Counts(),
		Tests:     w.Results(),
	}
	if w.cfg != nil {
		settings := w.cfg.Settings()
		for _, k := range settings.Keys() {
			summary.Settings[k] = settings.String(k)
		}
		for _, warn := range w.cfg.Warnings() {
			summary.Warnings = append(summary.Warnings, warn.String())
		}
	}
	return summary
}

// WriteAll writes every artifact format.
func (w *ArtifactWriter) WriteAll(summary *RunSummary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.WriteResultsJSON(summary); err != nil {
		return err
	}
	return w.WriteSummaryMarkdown(summary)
}

// WriteResultsJSON writes the full summary as JSON
func (w *ArtifactWriter) WriteResultsJSON(summary *RunSummary) error {
	path := filepath.Join(w.outputDir, "results.json")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0644); writeErr != nil {
		return fmt.Errorf("failed to write results JSON: %w", writeErr)
	}
	return nil
}

// WriteSummaryMarkdown writes a human-readable markdown summary
func (w *ArtifactWriter) WriteSummaryMarkdown(summary *RunSummary) error {
	path := filepath.Join(w.outputDir, "summary.md")

	var md strings.Builder

	md.WriteString("# Browser Test Summary\n\n")
	md.WriteString(fmt.Sprintf("**Run:** %s\n\n", summary.RunID))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", summary.Duration.Round(time.Millisecond)))

	if len(summary.Settings) > 0 {
		md.WriteString("## Settings\n\n")
		for _, k := range sortedKeys(summary.Settings) {
			md.WriteString(fmt.Sprintf("- `%s`: %s\n", k, summary.Settings[k]))
		}
		md.WriteString("\n")
	}

	for _, warn := range summary.Warnings {
		md.WriteString(fmt.Sprintf("⚠ %s\n\n", warn))
	}

	md.WriteString("## Results\n\n")
	md.WriteString(fmt.Sprintf("- **Passed:** %d\n", summary.Counts.Passed))
	md.WriteString(fmt.Sprintf("- **Failed:** %d\n", summary.Counts.Failed))
	md.WriteString(fmt.Sprintf("- **Errors:** %d\n", summary.Counts.Errors))
	md.WriteString(fmt.Sprintf("- **Skipped:** %d\n\n", summary.Counts.Skipped))

	for _, tr := range summary.Tests {
		mark := "✅"
		switch tr.Result {
		case ResultFailed, ResultError:
			mark = "❌"
		case ResultSkipped:
			mark = "⏭"
		}
		md.WriteString(fmt.Sprintf("%s **%s** (%s)\n", mark, tr.Name, tr.Result))
		if tr.Message != "" {
			md.WriteString(fmt.Sprintf("   %s\n", firstLine(tr.Message)))
		}
		for _, e := range tr.Evidence {
			md.WriteString(fmt.Sprintf("   - %s: `%s`\n", e.Kind, e.Path))
		}
	}

	if writeErr := os.WriteFile(path, []byte(md.String()), 0644); writeErr != nil {
		return fmt.Errorf("failed to write summary markdown: %w", writeErr)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
