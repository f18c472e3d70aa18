// internal/humanoid/interface.go
package humanoid

import (
	"context"
	"time"

	"github.com/itw-creative-works/puppeteer-profiles/api/schemas"
)

// Controller is the gesture surface of a session.
type Controller interface {
	MoveTo(ctx context.Context, selector string, opts *InteractionOptions) error
	MoveToVector(ctx context.Context, target Vector2D, opts *InteractionOptions) error
	Click(ctx context.Context, selector string, opts *InteractionOptions) error
	Type(ctx context.Context, text string, opts *InteractionOptions) error
	Press(ctx context.Context, key string, opts *InteractionOptions) error
	Scroll(ctx context.Context, selector string, opts *InteractionOptions) error
	Wait(ctx context.Context, min, max time.Duration, opts *InteractionOptions) (time.Duration, error)
	WaitDefault(ctx context.Context, opts *InteractionOptions) (time.Duration, error)
	SetDebug(enabled bool)
}

// Executor is the device driver the engine talks to. Implementations must not add
// delays of their own; all pacing comes from Sleep.
type Executor interface {
	// Sleep pauses execution, respecting context cancellation.
	Sleep(ctx context.Context, d time.Duration) error

	// DispatchMouseEvent reports a pointer move, press or release at an absolute coordinate.
	DispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error

	// SendKeys types text into the focused element.
	SendKeys(ctx context.Context, keys string) error

	// DispatchStructuredKey presses a single named key with modifiers.
	DispatchStructuredKey(ctx context.Context, data schemas.KeyEventData) error

	// WaitVisible blocks until selector is visible. The deadline is carried by ctx.
	WaitVisible(ctx context.Context, selector string) error

	// BoundingBox returns the element's box in viewport coordinates, or nil when nothing matches.
	BoundingBox(ctx context.Context, selector string) (*schemas.BoundingBox, error)

	// InViewport reports whether the element's box lies entirely inside the visible viewport.
	InViewport(ctx context.Context, selector string) (bool, error)

	// ScrollIntoView jumps the element into view.
	ScrollIntoView(ctx context.Context, selector string) error
}

// Overlay is an optional visual cursor used in debug mode. Executors may implement it
// directly, or one can be injected with SetOverlay.
type Overlay interface {
	EnsureCursorOverlay(ctx context.Context) error
}
