package report

import (
	"sort"
	"sync"
	"time"
)

// Result is the aggregate outcome of a test.
type Result string

const (
	ResultPassed  Result = "passed"
	ResultFailed  Result = "failed"
	ResultSkipped Result = "skipped"
	// ResultError marks a failure outside the test body (setup or teardown)
	ResultError Result = "error"
)

// TestResult gathers every phase outcome of one test.
type TestResult struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Browser  string        `json:"browser,omitempty"`
	Result   Result        `json:"result"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
	Phases   []Outcome     `json:"phases"`
	Evidence []Evidence    `json:"evidence,omitempty"`

	seq int
}

// Counts tallies test results.
type Counts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Total returns the number of tests counted.
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Skipped + c.Errors
}

// Collector accumulates outcomes into per-test results. Report plugins
// embed it.
type Collector struct {
	mu      sync.Mutex
	tests   map[string]*TestResult
	seq     int
	started time.Time
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		tests:   make(map[string]*TestResult),
		started: time.Now(),
	}
}

// Collect records o for tc.
func (c *Collector) Collect(tc *TestContext, o *Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tr, ok := c.tests[tc.ID]
	if !ok {
		c.seq++
		tr = &TestResult{ID: tc.ID, Name: tc.Name, Result: ResultPassed, seq: c.seq}
		if tc.Config != nil {
			tr.Browser = tc.Config.BrowserName()
		}
		c.tests[tc.ID] = tr
	}

	rec := *o
	rec.Evidence = append([]Evidence(nil), o.Evidence...)
	tr.Phases = append(tr.Phases, rec)
	tr.Evidence = append(tr.Evidence, rec.Evidence...)
	tr.Duration += o.Duration
	applyOutcome(tr, o)
}

// applyOutcome folds a phase outcome into the aggregate result. A failed
// body outranks a teardown error; setup errors outrank everything.
func applyOutcome(tr *TestResult, o *Outcome) {
	switch {
	case o.Status == StatusSkipped && tr.Result == ResultPassed:
		tr.Result = ResultSkipped
		tr.Message = o.Message
	case o.Status != StatusFailed:
	case o.Phase == PhaseCall:
		tr.Result = ResultFailed
		tr.Message = o.Message
	case o.Phase == PhaseSetup:
		tr.Result = ResultError
		tr.Message = o.Message
	case tr.Result == ResultPassed || tr.Result == ResultSkipped:
		tr.Result = ResultError
		tr.Message = o.Message
	}
}

// Results returns the test results in the order tests first reported.
func (c *Collector) Results() []TestResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]TestResult, 0, len(c.tests))
	for _, tr := range c.tests {
		cp := *tr
		cp.Phases = append([]Outcome(nil), tr.Phases...)
		cp.Evidence = append([]Evidence(nil), tr.Evidence...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Counts tallies the collected results.
func (c *Collector) Counts() Counts {
	var counts Counts
	for _, tr := range c.Results() {
		switch tr.Result {
		case ResultPassed:
			counts.Passed++
		case ResultFailed:
			counts.Failed++
		case ResultSkipped:
			counts.Skipped++
		case ResultError:
			counts.Errors++
		}
	}
	return counts
}

// Started returns when the collector was created.
func (c *Collector) Started() time.Time {
	return c.started
}
