package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/browsertest/internal/testing/drivertest"
)

func newFailureFixture(t *testing.T, withHTML bool, opts ...FailureOption) (*FailureReporter, string) {
	t.Helper()
	logger, _ := testLogger()
	registry := NewRegistry(logger)
	if withHTML {
		require.NoError(t, registry.Register(NewHTMLReport(filepath.Join(t.TempDir(), "report.html"), "")))
	}
	dir := filepath.Join(t.TempDir(), "screenshots")
	opts = append([]FailureOption{WithFailureLogger(logger)}, opts...)
	return NewFailureReporter(dir, registry, opts...), dir
}

func pngFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	require.NoError(t, err)
	return matches
}

func TestFailureReporterCapturesOnFailedCall(t *testing.T) {
	r, dir := newFailureFixture(t, true)
	tc := NewTestContext("TestLogin", testConfig())
	driver := &drivertest.FakeDriver{BrowserName: "chrome"}
	tc.SetDriver(driver)

	o := outcome(tc, PhaseCall, StatusFailed)
	r.OnOutcome(tc, o)

	want := filepath.Join(dir, "TestLogin.png")
	assert.Equal(t, []string{want}, pngFiles(t, dir))
	assert.Equal(t, []string{want}, driver.Screenshots())
	require.Len(t, o.Evidence, 1)
	assert.Equal(t, Evidence{Kind: EvidenceImage, Path: want, Title: "screenshot"}, o.Evidence[0])
	assert.Equal(t, StatusFailed, o.Status)
	assert.Equal(t, int64(1), r.Captured())
}

func TestFailureReporterSkipsAttachmentWithoutHTMLPlugin(t *testing.T) {
	r, dir := newFailureFixture(t, false)
	tc := NewTestContext("TestCheckout", testConfig())
	tc.SetDriver(&drivertest.FakeDriver{})

	o := outcome(tc, PhaseCall, StatusFailed)
	r.OnOutcome(tc, o)

	assert.Len(t, pngFiles(t, dir), 1, "screenshot still saved")
	assert.Empty(t, o.Evidence)
}

func TestFailureReporterIgnoresOtherOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		phase  Phase
		status Status
	}{
		{"passing call", PhaseCall, StatusPassed},
		{"skipped call", PhaseCall, StatusSkipped},
		{"failed setup", PhaseSetup, StatusFailed},
		{"failed teardown", PhaseTeardown, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, dir := newFailureFixture(t, true)
			tc := NewTestContext("TestX", testConfig())
			driver := &drivertest.FakeDriver{}
			tc.SetDriver(driver)

			o := outcome(tc, tt.phase, tt.status)
			r.OnOutcome(tc, o)

			assert.Empty(t, pngFiles(t, dir))
			assert.Empty(t, driver.Screenshots())
			assert.Empty(t, o.Evidence)
		})
	}
}

func TestFailureReporterWithoutDriver(t *testing.T) {
	r, dir := newFailureFixture(t, true)
	tc := NewTestContext("TestNoBrowser", testConfig())

	o := outcome(tc, PhaseCall, StatusFailed)
	r.OnOutcome(tc, o)

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "directory should not be created")
	assert.Empty(t, o.Evidence)
}

func TestFailureReporterScreenshotErrorIsSwallowed(t *testing.T) {
	logger, logs := testLogger()
	registry := NewRegistry(logger)
	require.NoError(t, registry.Register(NewHTMLReport(filepath.Join(t.TempDir(), "r.html"), "")))
	r := NewFailureReporter(t.TempDir(), registry, WithFailureLogger(logger))

	tc := NewTestContext("TestBroken", testConfig())
	tc.SetDriver(&drivertest.FakeDriver{ScreenshotErr: errors.New("target closed")})

	o := outcome(tc, PhaseCall, StatusFailed)
	assert.NotPanics(t, func() { r.OnOutcome(tc, o) })

	assert.Equal(t, StatusFailed, o.Status)
	assert.Empty(t, o.Evidence)
	assert.Equal(t, int64(0), r.Captured())
	assert.Contains(t, logs.String(), "screenshot of TestBroken failed: target closed")
}

func TestFailureReporterLogsThroughRegistry(t *testing.T) {
	logger, logs := testLogger()
	registry := NewRegistry(logger)
	r := NewFailureReporter(t.TempDir(), registry)

	assert.Same(t, logger, r.logger)
	assert.False(t, registry.ownsLogger)

	tc := NewTestContext("TestShared", testConfig())
	tc.SetDriver(&drivertest.FakeDriver{ScreenshotErr: errors.New("target closed")})
	r.OnOutcome(tc, outcome(tc, PhaseCall, StatusFailed))

	assert.Contains(t, logs.String(), "screenshot of TestShared failed")
	require.NoError(t, registry.Close())
	logger.Infof("after close")
	assert.Contains(t, logs.String(), "after close")
}

func TestFailureReporterUnwritableDirectory(t *testing.T) {
	logger, logs := testLogger()
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	r := NewFailureReporter(filepath.Join(blocker, "shots"), nil, WithFailureLogger(logger))

	tc := NewTestContext("TestX", testConfig())
	driver := &drivertest.FakeDriver{}
	tc.SetDriver(driver)

	r.OnOutcome(tc, outcome(tc, PhaseCall, StatusFailed))

	assert.Empty(t, driver.Screenshots())
	assert.Contains(t, logs.String(), "[WARN] cannot create")
}

func TestFailureReporterSanitisesTestNames(t *testing.T) {
	r, dir := newFailureFixture(t, false)

	for _, name := range []string{"TestLogin/user a", "TestLogin/user_a"} {
		tc := NewTestContext(name, testConfig())
		tc.SetDriver(&drivertest.FakeDriver{})
		r.OnOutcome(tc, outcome(tc, PhaseCall, StatusFailed))
	}

	files := pngFiles(t, dir)
	assert.Len(t, files, 2, "distinct names must not collide")
	for _, f := range files {
		assert.Equal(t, dir, filepath.Dir(f), "names must not create subdirectories")
	}
}

func TestFailureReporterDOMSnapshot(t *testing.T) {
	var hooked []EvidenceKind
	r, dir := newFailureFixture(t, true,
		WithDOMSnapshot(),
		WithCaptureHook(func(kind EvidenceKind, _ string) { hooked = append(hooked, kind) }),
	)
	tc := NewTestContext("TestSearch", testConfig())
	tc.SetDriver(&drivertest.FakeDriver{HTML: `<html><head><title>Results</title><script>x()</script></head><body>none</body></html>`})

	o := outcome(tc, PhaseCall, StatusFailed)
	r.OnOutcome(tc, o)

	require.Len(t, o.Evidence, 2)
	assert.Equal(t, EvidenceHTML, o.Evidence[1].Kind)
	assert.Equal(t, "Results", o.Evidence[1].Title)

	data, err := os.ReadFile(filepath.Join(dir, "TestSearch.html"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<script>")
	assert.Equal(t, []EvidenceKind{EvidenceImage, EvidenceHTML}, hooked)
}
