// internal/script/mocks_test.go
package script

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/itw-creative-works/puppeteer-profiles/internal/humanoid"
)

// mockController is a testify mock of humanoid.Controller.
type mockController struct {
	mock.Mock
}

var _ humanoid.Controller = (*mockController)(nil)

func (m *mockController) MoveTo(ctx context.Context, selector string, opts *humanoid.InteractionOptions) error {
	return m.Called(ctx, selector, opts).Error(0)
}

func (m *mockController) MoveToVector(ctx context.Context, target humanoid.Vector2D, opts *humanoid.InteractionOptions) error {
	return m.Called(ctx, target, opts).Error(0)
}

func (m *mockController) Click(ctx context.Context, selector string, opts *humanoid.InteractionOptions) error {
	return m.Called(ctx, selector, opts).Error(0)
}

func (m *mockController) Type(ctx context.Context, text string, opts *humanoid.InteractionOptions) error {
	return m.Called(ctx, text, opts).Error(0)
}

func (m *mockController) Press(ctx context.Context, key string, opts *humanoid.InteractionOptions) error {
	return m.Called(ctx, key, opts).Error(0)
}

func (m *mockController) Scroll(ctx context.Context, selector string, opts *humanoid.InteractionOptions) error {
	return m.Called(ctx, selector, opts).Error(0)
}

func (m *mockController) Wait(ctx context.Context, min, max time.Duration, opts *humanoid.InteractionOptions) (time.Duration, error) {
	args := m.Called(ctx, min, max, opts)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *mockController) WaitDefault(ctx context.Context, opts *humanoid.InteractionOptions) (time.Duration, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *mockController) SetDebug(enabled bool) {
	m.Called(enabled)
}

// recordingNavigator keeps every URL it was asked to load.
type recordingNavigator struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (n *recordingNavigator) Navigate(_ context.Context, url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, url)
	return n.err
}
