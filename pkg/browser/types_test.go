package browser

import (
	"context"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/browsertest/pkg/config"
	"github.com/entrhq/browsertest/pkg/logging"
)

func TestLookupBrowser(t *testing.T) {
	tests := []struct {
		name string
		want Target
	}{
		{"chrome", Target{Engine: EngineChromium}},
		{"Chromium", Target{Engine: EngineChromium}},
		{"", Target{Engine: EngineChromium}},
		{"edge", Target{Engine: EngineChromium, Channel: "msedge"}},
		{"MSEdge", Target{Engine: EngineChromium, Channel: "msedge"}},
		{"firefox", Target{Engine: EngineFirefox}},
		{" safari ", Target{Engine: EngineWebKit}},
		{"webkit", Target{Engine: EngineWebKit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LookupBrowser(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupBrowserUnsupported(t *testing.T) {
	_, err := LookupBrowser("netscape")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedBrowser))
	assert.Contains(t, err.Error(), "netscape")
}

func TestPlaywrightFactoryRequiresInitialize(t *testing.T) {
	f := NewPlaywrightFactory(SessionOptions{Headless: true, SkipInstall: true}, WithFactoryLogger(logging.NewWriterLogger("browser", &bytes.Buffer{})))
	cfg := config.NewSessionFromSettings(config.Settings{config.KeyBrowserName: "chrome"}, config.Overrides{})

	_, err := f.NewDriver(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
	assert.NoError(t, f.Shutdown())
}

func TestPlaywrightFactoryHonoursCancelledContext(t *testing.T) {
	f := NewPlaywrightFactory(SessionOptions{SkipInstall: true}, WithFactoryLogger(logging.NewWriterLogger("browser", &bytes.Buffer{})))
	cfg := config.NewSessionFromSettings(config.Settings{}, config.Overrides{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.NewDriver(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlaywrightFactoryRejectsUnknownBrowser(t *testing.T) {
	f := NewPlaywrightFactory(SessionOptions{SkipInstall: true}, WithFactoryLogger(logging.NewWriterLogger("browser", &bytes.Buffer{})))
	cfg := config.NewSessionFromSettings(config.Settings{config.KeyBrowserName: "lynx"}, config.Overrides{})

	_, err := f.NewDriver(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrUnsupportedBrowser)
}

func TestNewPlaywrightFactoryDefaults(t *testing.T) {
	f := NewPlaywrightFactory(SessionOptions{})
	t.Cleanup(func() { _ = f.Shutdown() })

	assert.True(t, f.ownsLogger)
	require.NotNil(t, f.opts.Viewport)
	assert.Equal(t, DefaultViewportWidth, f.opts.Viewport.Width)
	assert.Equal(t, DefaultViewportHeight, f.opts.Viewport.Height)
	assert.Equal(t, DefaultTimeout, f.opts.Timeout)
}

func TestPlaywrightFactoryInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewWriterLogger("browser", &buf)

	f := NewPlaywrightFactory(SessionOptions{SkipInstall: true}, WithFactoryLogger(l))

	assert.Same(t, l, f.logger)
	assert.False(t, f.ownsLogger)
	require.NoError(t, f.Shutdown())
	require.NoError(t, f.Shutdown())

	l.Infof("still open")
	assert.Contains(t, buf.String(), "still open")
}
