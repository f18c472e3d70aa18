// cmd/run_test.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itw-creative-works/puppeteer-profiles/internal/config"
	"github.com/itw-creative-works/puppeteer-profiles/internal/script"
)

const clickScript = `
name: nodes
debug: true
steps:
  - action: repeat
    times: 3
    steps:
      - action: click
        selector: '[data-node="{{index}}"]'
`

// fakeOpener swaps openTargets for the duration of a test and records what it was asked for.
type fakeOpener struct {
	cfg         config.BrowserConfig
	seed        int64
	controllers []*recordingController
	closed      bool
	openErr     error
	clickErr    error
}

func (f *fakeOpener) install(t *testing.T) {
	t.Helper()
	original := openTargets
	openTargets = func(_ context.Context, cfg config.Interface, _ *zap.Logger, n int) ([]script.Target, func() error, error) {
		f.cfg = cfg.Browser()
		f.seed = cfg.Humanoid().Seed
		if f.openErr != nil {
			return nil, nil, f.openErr
		}
		targets := make([]script.Target, 0, n)
		for i := 0; i < n; i++ {
			c := &recordingController{err: f.clickErr}
			f.controllers = append(f.controllers, c)
			targets = append(targets, script.Target{ID: fmt.Sprintf("session-%d", i), Controller: c})
		}
		return targets, func() error { f.closed = true; return nil }, nil
	}
	t.Cleanup(func() { openTargets = original })
}

func TestRunCmd(t *testing.T) {
	t.Run("runs the script on every session", func(t *testing.T) {
		f := &fakeOpener{}
		f.install(t)
		path := writeFile(t, "nodes.yaml", clickScript)

		_, err := executeCommand(t, "run", path, "-n", "2", "--driver", "rod", "--seed", "9", "--remote-url", "ws://127.0.0.1:9333/devtools/browser/x")
		require.NoError(t, err)

		assert.Equal(t, 2, f.cfg.Sessions)
		assert.Equal(t, config.DriverRod, f.cfg.Driver)
		assert.Equal(t, "ws://127.0.0.1:9333/devtools/browser/x", f.cfg.RemoteURL)
		assert.Equal(t, int64(9), f.seed)
		assert.True(t, f.closed)

		require.Len(t, f.controllers, 2)
		for _, c := range f.controllers {
			assert.Equal(t, []string{`[data-node="1"]`, `[data-node="2"]`, `[data-node="3"]`}, c.snapshot())
			assert.True(t, c.debug)
		}
	})

	t.Run("defaults come from the config file", func(t *testing.T) {
		f := &fakeOpener{}
		f.install(t)
		path := writeFile(t, "nodes.yaml", clickScript)
		cfgPath := writeFile(t, "config.yaml", "browser:\n  sessions: 3\n  remote_url: http://127.0.0.1:9555\n")

		_, err := executeCommand(t, "--config", cfgPath, "run", path)
		require.NoError(t, err)
		assert.Equal(t, 3, f.cfg.Sessions)
		assert.Equal(t, config.DriverChromedp, f.cfg.Driver)
		assert.Equal(t, "http://127.0.0.1:9555", f.cfg.RemoteURL)
	})

	t.Run("invalid driver flag", func(t *testing.T) {
		f := &fakeOpener{}
		f.install(t)
		path := writeFile(t, "nodes.yaml", clickScript)

		_, err := executeCommand(t, "run", path, "--driver", "selenium")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "browser.driver")
		assert.Empty(t, f.controllers)
	})

	t.Run("script errors surface", func(t *testing.T) {
		f := &fakeOpener{}
		f.install(t)

		_, err := executeCommand(t, "run", writeFile(t, "bad.yaml", "steps:\n  - action: hover\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, script.ErrInvalidScript)
	})

	t.Run("open failure", func(t *testing.T) {
		f := &fakeOpener{openErr: errors.New("connection refused")}
		f.install(t)

		_, err := executeCommand(t, "run", writeFile(t, "nodes.yaml", clickScript))
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("step failure closes pages", func(t *testing.T) {
		f := &fakeOpener{clickErr: errors.New("element detached")}
		f.install(t)

		_, err := executeCommand(t, "run", writeFile(t, "nodes.yaml", clickScript))
		assert.ErrorContains(t, err, "element detached")
		assert.True(t, f.closed)
	})

	t.Run("requires exactly one script", func(t *testing.T) {
		_, err := executeCommand(t, "run")
		assert.Error(t, err)
	})
}
