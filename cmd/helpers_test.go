// cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/itw-creative-works/puppeteer-profiles/internal/humanoid"
)

// executeCommand runs a fresh command tree with args and returns its combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// recordingController implements humanoid.Controller and keeps the selectors it was asked to click.
type recordingController struct {
	mu     sync.Mutex
	clicks []string
	debug  bool
	err    error
}

var _ humanoid.Controller = (*recordingController)(nil)

func (c *recordingController) MoveTo(context.Context, string, *humanoid.InteractionOptions) error {
	return c.err
}

func (c *recordingController) MoveToVector(context.Context, humanoid.Vector2D, *humanoid.InteractionOptions) error {
	return c.err
}

func (c *recordingController) Click(_ context.Context, selector string, _ *humanoid.InteractionOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clicks = append(c.clicks, selector)
	return c.err
}

func (c *recordingController) Type(context.Context, string, *humanoid.InteractionOptions) error {
	return c.err
}

func (c *recordingController) Press(context.Context, string, *humanoid.InteractionOptions) error {
	return c.err
}

func (c *recordingController) Scroll(context.Context, string, *humanoid.InteractionOptions) error {
	return c.err
}

func (c *recordingController) Wait(_ context.Context, min, _ time.Duration, _ *humanoid.InteractionOptions) (time.Duration, error) {
	return min, c.err
}

func (c *recordingController) WaitDefault(context.Context, *humanoid.InteractionOptions) (time.Duration, error) {
	return 0, c.err
}

func (c *recordingController) SetDebug(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debug = enabled
}

func (c *recordingController) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.clicks...)
}
