package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlugin struct {
	name     string
	seen     []Phase
	closeErr error
	closed   int
}

func (p *stubPlugin) Name() string { return p.name }

func (p *stubPlugin) OnOutcome(_ *TestContext, o *Outcome) { p.seen = append(p.seen, o.Phase) }

func (p *stubPlugin) Close() error {
	p.closed++
	return p.closeErr
}

func TestRegistryDispatchOrder(t *testing.T) {
	logger, _ := testLogger()
	r := NewRegistry(logger)

	var order []string
	r.AddListener(ListenerFunc(func(*TestContext, *Outcome) { order = append(order, "first") }))
	require.NoError(t, r.Register(&stubPlugin{name: "html"}))
	r.AddListener(ListenerFunc(func(*TestContext, *Outcome) { order = append(order, "last") }))

	tc := NewTestContext("TestA", testConfig())
	r.Dispatch(tc, outcome(tc, PhaseCall, StatusPassed))

	assert.Equal(t, []string{"first", "last"}, order)
	p, ok := r.Plugin("html")
	require.True(t, ok)
	assert.Equal(t, []Phase{PhaseCall}, p.(*stubPlugin).seen)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	logger, _ := testLogger()
	r := NewRegistry(logger)

	require.NoError(t, r.Register(&stubPlugin{name: "html"}))
	assert.Error(t, r.Register(&stubPlugin{name: "html"}))
	assert.True(t, r.Has("html"))
	assert.False(t, r.Has("json"))
	assert.Equal(t, []string{"html"}, r.Names())
}

func TestRegistryRecoversListenerPanics(t *testing.T) {
	logger, logs := testLogger()
	r := NewRegistry(logger)

	reached := false
	r.AddListener(ListenerFunc(func(_ *TestContext, o *Outcome) {
		o.Status = StatusPassed
		panic("reporter bug")
	}))
	r.AddListener(ListenerFunc(func(*TestContext, *Outcome) { reached = true }))

	tc := NewTestContext("TestA", testConfig())
	o := outcome(tc, PhaseCall, StatusFailed)
	assert.NotPanics(t, func() { r.Dispatch(tc, o) })

	assert.True(t, reached)
	assert.Equal(t, StatusFailed, o.Status, "listeners must not change the status")
	assert.Contains(t, logs.String(), "reporter bug")
}

func TestRegistryCloseOnce(t *testing.T) {
	logger, _ := testLogger()
	r := NewRegistry(logger)

	good := &stubPlugin{name: "a"}
	bad := &stubPlugin{name: "b", closeErr: errors.New("disk full")}
	require.NoError(t, r.Register(good))
	require.NoError(t, r.Register(bad))

	err := r.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b: disk full")
	assert.Equal(t, err, r.Close())
	assert.Equal(t, 1, good.closed)
	assert.Equal(t, 1, bad.closed)
}
