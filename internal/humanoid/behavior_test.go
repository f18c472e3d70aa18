// internal/humanoid/behavior_test.go
package humanoid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/itw-creative-works/puppeteer-profiles/internal/config"
)

func TestWaitBounds(t *testing.T) {
	exec := newMockExecutor()
	h := NewTestHumanoid(exec, 31)
	ctx := context.Background()

	for i := 0; i < 2000; i++ {
		d, err := h.Wait(ctx, 100*time.Millisecond, 200*time.Millisecond, nil)
		require.NoError(t, err)
		require.GreaterOrEqual(t, d, 100*time.Millisecond)
		require.LessOrEqual(t, d, 200*time.Millisecond)
	}

	d, err := h.Wait(ctx, 75*time.Millisecond, 75*time.Millisecond, &InteractionOptions{Mode: ModeGaussian})
	require.NoError(t, err)
	assert.Equal(t, 75*time.Millisecond, d)

	calls := exec.snapshot()
	assert.Equal(t, call{Kind: "sleep", Sleep: d}, calls[len(calls)-1])
}

func TestWaitZeroBounds(t *testing.T) {
	exec := newMockExecutor()
	h := NewTestHumanoid(exec, 5)
	for _, mode := range []Mode{ModeUniform, ModeGaussian} {
		d, err := h.Wait(context.Background(), 0, 0, &InteractionOptions{Mode: mode})
		require.NoError(t, err)
		assert.Zero(t, d)
	}
}

func TestWaitDefault(t *testing.T) {
	exec := newMockExecutor()
	h := NewTestHumanoid(exec, 32)
	for i := 0; i < 200; i++ {
		d, err := h.WaitDefault(context.Background(), nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d, h.cfg.WaitMin)
		assert.LessOrEqual(t, d, h.cfg.WaitMax)
	}
}

func TestWaitLogsSample(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := config.DefaultHumanoidConfig()
	cfg.Seed = 33
	h := New(cfg, zap.New(core), newMockExecutor())

	d, err := h.Wait(context.Background(), 10*time.Millisecond, 20*time.Millisecond, &InteractionOptions{Log: LogOption{Enabled: true}})
	require.NoError(t, err)

	entries := logs.FilterMessage("Waiting.").All()
	require.Len(t, entries, 1)
	assert.Equal(t, d, entries[0].ContextMap()["duration"])

	_, err = h.Wait(context.Background(), 10*time.Millisecond, 20*time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len(), "no log without the option")
}

func TestWaitCancelled(t *testing.T) {
	h := NewTestHumanoid(newMockExecutor(), 34)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Wait(ctx, time.Millisecond, 2*time.Millisecond, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGestureLogLabel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := config.DefaultHumanoidConfig()
	cfg.Seed = 35
	h := New(cfg, zap.New(core), newMockExecutor())

	require.NoError(t, h.Press(context.Background(), "Tab", &InteractionOptions{Log: LogMessage("Tabbing to next field")}))
	entries := logs.FilterMessage("Tabbing to next field").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "press", entries[0].ContextMap()["gesture"])
}
