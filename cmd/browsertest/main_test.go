package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/browsertest/internal/testing/drivertest"
	"github.com/entrhq/browsertest/pkg/browser"
	"github.com/entrhq/browsertest/pkg/logging"
	"github.com/entrhq/browsertest/pkg/options"
)

const configYAML = `browserName: chrome
baseUrl_pie: https://pie.example
baseUrl_stg: https://stg.example
retries: 2
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0600))
	return path
}

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "browsertest-logs")
	if err != nil {
		panic(err)
	}
	logging.SetDirectory(dir)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Equal(t, "browsertest v"+version+"\n", stdout.String())
}

func TestUsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), nil, &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "Usage:")

	stderr.Reset()
	err = run(context.Background(), []string{"deploy"}, &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), `unknown command "deploy"`)

	stderr.Reset()
	err = run(context.Background(), []string{"resolve", "--no-such-flag"}, &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
}

func TestResolve(t *testing.T) {
	path := writeConfig(t)
	args := []string{"resolve", "--config", path, "--env", "PIE1", "--browser", "firefox"}

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), args, &stdout, &stderr))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "firefox", got["browserName"])
	assert.Equal(t, "https://pie.example", got["baseUrl"])
	assert.Equal(t, 2, got["retries"])
	assert.NotContains(t, stdout.String(), "# warning")
}

func TestResolveUnknownEnvironmentWarns(t *testing.T) {
	path := writeConfig(t)
	args := []string{"resolve", "--config", path, "--env", "qa9"}

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), args, &stdout, &stderr))

	assert.Contains(t, stdout.String(), "baseUrl: https://stg.example")
	assert.Contains(t, stdout.String(), "# warning:")
	assert.Contains(t, stdout.String(), "qa9")
}

func TestResolveMissingFile(t *testing.T) {
	args := []string{"resolve", "--config", filepath.Join(t.TempDir(), "nope.yaml")}

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func useFakeFactory(t *testing.T, f *drivertest.Factory) {
	t.Helper()
	orig := newFactory
	newFactory = func(*options.Options, *logging.Logger) (browser.Factory, func() error, error) {
		return f, func() error { return nil }, nil
	}
	t.Cleanup(func() { newFactory = orig })
}

func TestSmoke(t *testing.T) {
	factory := &drivertest.Factory{}
	useFakeFactory(t, factory)

	shots := filepath.Join(t.TempDir(), "shots")
	args := []string{"smoke", "--config", writeConfig(t), "--env", "stage1", "--screenshots", shots}

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), args, &stdout, &stderr))

	drivers := factory.Drivers()
	require.Len(t, drivers, 1)
	assert.Equal(t, "https://stg.example", drivers[0].URL())
	assert.Equal(t, 1, drivers[0].Quits())
	assert.FileExists(t, filepath.Join(shots, "smoke.png"))
	assert.Contains(t, stdout.String(), "chrome loaded https://stg.example")
}

func TestSmokeReleasesOnFailure(t *testing.T) {
	factory := &drivertest.Factory{Configure: func(d *drivertest.FakeDriver) {
		d.ScreenshotErr = errors.New("page crashed")
	}}
	useFakeFactory(t, factory)

	args := []string{"smoke", "--config", writeConfig(t), "--screenshots", t.TempDir()}

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page crashed")
	assert.Equal(t, 1, factory.TotalQuits())
}
