package report

import (
	"sync"
	"time"

	"github.com/entrhq/browsertest/pkg/browser"
	"github.com/entrhq/browsertest/pkg/config"
)

// Phase is a stage of a test's execution.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseCall     Phase = "call"
	PhaseTeardown Phase = "teardown"
)

// Status is the result of one phase.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// EvidenceKind identifies the type of an attached artifact.
type EvidenceKind string

const (
	EvidenceImage EvidenceKind = "image"
	EvidenceHTML  EvidenceKind = "html"
)

// Evidence is an artifact attached to an outcome.
type Evidence struct {
	Kind  EvidenceKind `json:"kind"`
	Path  string       `json:"path"`
	Title string       `json:"title,omitempty"`
}

// Outcome is the result of one phase of one test. Listeners may append
// evidence; the status is owned by the harness.
type Outcome struct {
	TestID   string        `json:"test_id"`
	Test     string        `json:"test"`
	Phase    Phase         `json:"phase"`
	Status   Status        `json:"status"`
	Err      error         `json:"-"`
	Message  string        `json:"message,omitempty"`
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
	Evidence []Evidence    `json:"evidence,omitempty"`
}

// Failed reports whether the phase failed.
func (o *Outcome) Failed() bool {
	return o.Status == StatusFailed
}

// Attach appends evidence to the outcome.
func (o *Outcome) Attach(e Evidence) {
	o.Evidence = append(o.Evidence, e)
}

// TestContext identifies a running test and carries its resources.
type TestContext struct {
	// ID is a path-safe identifier derived from Name, see StableID
	ID string
	// Name is the full test name as reported by go test
	Name string
	// Config is the effective configuration of the test
	Config *config.Session
	// StartedAt is when the test began
	StartedAt time.Time

	mu     sync.RWMutex
	driver browser.Driver
}

// NewTestContext creates the context for the test called name.
func NewTestContext(name string, cfg *config.Session) *TestContext {
	return &TestContext{
		ID:        StableID(name),
		Name:      name,
		Config:    cfg,
		StartedAt: time.Now(),
	}
}

// Driver returns the test's live browser, nil when the test has none.
func (tc *TestContext) Driver() browser.Driver {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.driver
}

// SetDriver attaches d to the test. Pass nil once d is released.
func (tc *TestContext) SetDriver(d browser.Driver) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.driver = d
}
