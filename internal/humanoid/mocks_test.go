// internal/humanoid/mocks_test.go
package humanoid

import (
	"context"
	"sync"
	"time"

	"github.com/itw-creative-works/puppeteer-profiles/api/schemas"
)

// call is one recorded interaction with the mock driver, in dispatch order.
type call struct {
	Kind  string // "move", "press", "release", "sleep", "keys", "key", "scroll"
	X, Y  float64
	Sleep time.Duration
	Keys  string
	Key   schemas.KeyEventData
}

// mockExecutor records everything the engine sends to the device driver. Sleeps
// return immediately.
//
// Overrides must not call back into the Humanoid: gestures hold its mutex while
// the executor runs.
type mockExecutor struct {
	mu    sync.Mutex
	calls []call

	box         *schemas.BoundingBox
	inViewport  bool
	visibleHits int

	MockWaitVisible        func(ctx context.Context, selector string) error
	MockBoundingBox        func(ctx context.Context, selector string) (*schemas.BoundingBox, error)
	MockDispatchMouseEvent func(ctx context.Context, data schemas.MouseEventData) error
	MockSleep              func(ctx context.Context, d time.Duration) error
	MockSendKeys           func(ctx context.Context, keys string) error
}

// newMockExecutor returns a driver whose elements are a visible 50x50 box at (200, 200).
func newMockExecutor() *mockExecutor {
	return &mockExecutor{
		box:        &schemas.BoundingBox{X: 200, Y: 200, Width: 50, Height: 50},
		inViewport: true,
	}
}

func (m *mockExecutor) record(c call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *mockExecutor) Sleep(ctx context.Context, d time.Duration) error {
	if m.MockSleep != nil {
		return m.MockSleep(ctx, d)
	}
	return m.DefaultSleep(ctx, d)
}

func (m *mockExecutor) DefaultSleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.record(call{Kind: "sleep", Sleep: d})
	return nil
}

func (m *mockExecutor) DispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error {
	if m.MockDispatchMouseEvent != nil {
		return m.MockDispatchMouseEvent(ctx, data)
	}
	return m.DefaultDispatchMouseEvent(ctx, data)
}

func (m *mockExecutor) DefaultDispatchMouseEvent(_ context.Context, data schemas.MouseEventData) error {
	kind := map[schemas.MouseEventType]string{
		schemas.MouseMove:    "move",
		schemas.MousePress:   "press",
		schemas.MouseRelease: "release",
		schemas.MouseWheel:   "wheel",
	}[data.Type]
	m.record(call{Kind: kind, X: data.X, Y: data.Y})
	return nil
}

func (m *mockExecutor) SendKeys(ctx context.Context, keys string) error {
	if m.MockSendKeys != nil {
		return m.MockSendKeys(ctx, keys)
	}
	m.record(call{Kind: "keys", Keys: keys})
	return nil
}

func (m *mockExecutor) DispatchStructuredKey(_ context.Context, data schemas.KeyEventData) error {
	m.record(call{Kind: "key", Key: data})
	return nil
}

func (m *mockExecutor) WaitVisible(ctx context.Context, selector string) error {
	m.mu.Lock()
	m.visibleHits++
	m.mu.Unlock()
	if m.MockWaitVisible != nil {
		return m.MockWaitVisible(ctx, selector)
	}
	return ctx.Err()
}

func (m *mockExecutor) BoundingBox(ctx context.Context, selector string) (*schemas.BoundingBox, error) {
	if m.MockBoundingBox != nil {
		return m.MockBoundingBox(ctx, selector)
	}
	if m.box == nil {
		return nil, nil
	}
	b := *m.box
	return &b, nil
}

func (m *mockExecutor) InViewport(_ context.Context, _ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inViewport, nil
}

func (m *mockExecutor) ScrollIntoView(_ context.Context, _ string) error {
	m.record(call{Kind: "scroll"})
	m.mu.Lock()
	m.inViewport = true
	m.mu.Unlock()
	return nil
}

// snapshot returns a copy of the recorded calls.
func (m *mockExecutor) snapshot() []call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]call, len(m.calls))
	copy(out, m.calls)
	return out
}

// kinds lists the recorded call kinds in order.
func (m *mockExecutor) kinds() []string {
	var out []string
	for _, c := range m.snapshot() {
		out = append(out, c.Kind)
	}
	return out
}

// moves returns the recorded pointer moves.
func (m *mockExecutor) moves() []call {
	var out []call
	for _, c := range m.snapshot() {
		if c.Kind == "move" {
			out = append(out, c)
		}
	}
	return out
}

func (m *mockExecutor) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// recordingOverlay counts overlay installs and fails with err when set.
type recordingOverlay struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (o *recordingOverlay) EnsureCursorOverlay(context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	return o.err
}
