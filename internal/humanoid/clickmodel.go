// internal/humanoid/clickmodel.go
package humanoid

import (
	"context"
	"fmt"

	"github.com/itw-creative-works/puppeteer-profiles/api/schemas"
)

// Click scrolls selector into view and moves onto it (both on by default), then
// presses and releases the left button at the tracked pointer position.
// With Move disabled the click lands wherever the pointer already is.
func (h *Humanoid) Click(ctx context.Context, selector string, opts *InteractionOptions) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	p := h.resolve(opts, ModeUniform)
	h.logGesture(p, "click", selector)

	if p.scroll {
		if err := h.ensureInView(ctx, selector, p); err != nil {
			return err
		}
	}
	if p.move {
		if err := h.moveTo(ctx, selector, p); err != nil {
			return err
		}
	}

	if err := h.predelay(ctx, p); err != nil {
		return err
	}
	hold := h.timing.Sample(p.holdMin, p.holdMax, p.mode)

	pos := h.pointer.Position()
	press := schemas.MouseEventData{
		Type:       schemas.MousePress,
		X:          pos.X,
		Y:          pos.Y,
		Button:     schemas.ButtonLeft,
		Buttons:    1,
		ClickCount: 1,
	}
	if err := h.executor.DispatchMouseEvent(ctx, press); err != nil {
		return fmt.Errorf("humanoid: pressing on '%s': %w", selector, err)
	}

	if err := h.executor.Sleep(ctx, hold); err != nil {
		// Never leave the button held down.
		_ = h.release(context.WithoutCancel(ctx), pos)
		return err
	}
	if err := h.release(ctx, pos); err != nil {
		return fmt.Errorf("humanoid: releasing on '%s': %w", selector, err)
	}

	return h.postDelay(ctx, p)
}

func (h *Humanoid) release(ctx context.Context, pos Vector2D) error {
	return h.executor.DispatchMouseEvent(ctx, schemas.MouseEventData{
		Type:       schemas.MouseRelease,
		X:          pos.X,
		Y:          pos.Y,
		Button:     schemas.ButtonLeft,
		Buttons:    0,
		ClickCount: 1,
	})
}
