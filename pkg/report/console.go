package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ConsolePluginName is the registry name of the console summary.
const ConsolePluginName = "console"

var (
	passedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// ConsoleSummary prints failed tests and result counts when the run ends.
type ConsoleSummary struct {
	*Collector
	out io.Writer
}

// NewConsoleSummary creates a summary printed to out, os.Stdout when nil.
func NewConsoleSummary(out io.Writer) *ConsoleSummary {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSummary{Collector: NewCollector(), out: out}
}

// Name implements Plugin.
func (c *ConsoleSummary) Name() string {
	return ConsolePluginName
}

// OnOutcome implements Listener.
func (c *ConsoleSummary) OnOutcome(tc *TestContext, o *Outcome) {
	c.Collect(tc, o)
}

// Close prints the summary.
func (c *ConsoleSummary) Close() error {
	results := c.Results()
	counts := c.Counts()

	var b strings.Builder
	b.WriteString("\n" + headerStyle.Render("browser test summary") + "\n")

	for _, tr := range results {
		if tr.Result != ResultFailed && tr.Result != ResultError {
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s", failedStyle.Render(strings.ToUpper(string(tr.Result))), tr.Name))
		if tr.Message != "" {
			b.WriteString(mutedStyle.Render(" - " + firstLine(tr.Message)))
		}
		b.WriteString("\n")
		for _, e := range tr.Evidence {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("    %s: %s", e.Kind, e.Path)) + "\n")
		}
	}

	parts := []string{passedStyle.Render(fmt.Sprintf("%d passed", counts.Passed))}
	if counts.Failed > 0 {
		parts = append(parts, failedStyle.Render(fmt.Sprintf("%d failed", counts.Failed)))
	}
	if counts.Errors > 0 {
		parts = append(parts, failedStyle.Render(fmt.Sprintf("%d errors", counts.Errors)))
	}
	if counts.Skipped > 0 {
		parts = append(parts, skippedStyle.Render(fmt.Sprintf("%d skipped", counts.Skipped)))
	}
	elapsed := time.Since(c.Started()).Round(time.Millisecond)
	b.WriteString(strings.Join(parts, ", ") + mutedStyle.Render(fmt.Sprintf(" in %s", elapsed)) + "\n")

	_, err := io.WriteString(c.out, b.String())
	return err
}
