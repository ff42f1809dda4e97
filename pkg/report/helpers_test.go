package report

import (
	"bytes"
	"time"

	"github.com/entrhq/browsertest/pkg/config"
	"github.com/entrhq/browsertest/pkg/logging"
)

func testConfig() *config.Session {
	return config.NewSessionFromSettings(config.Settings{
		config.KeyBrowserName:  "chrome",
		config.KeyBaseURLPie:   "https://pie.example",
		config.KeyBaseURLStage: "https://stg.example",
	}, config.Overrides{EnvName: "pie1"})
}

func testLogger() (*logging.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.NewWriterLogger("report", &buf), &buf
}

func outcome(tc *TestContext, phase Phase, status Status) *Outcome {
	return &Outcome{
		TestID:   tc.ID,
		Test:     tc.Name,
		Phase:    phase,
		Status:   status,
		Start:    time.Now(),
		Duration: 10 * time.Millisecond,
	}
}
