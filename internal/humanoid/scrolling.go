// internal/humanoid/scrolling.go
package humanoid

import (
	"context"
	"fmt"
)

// Scroll brings selector into view with a single jump when it is not already
// fully visible. No incremental scroll motion is synthesized.
func (h *Humanoid) Scroll(ctx context.Context, selector string, opts *InteractionOptions) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	p := h.resolve(opts, ModeUniform)
	h.logGesture(p, "scroll", selector)

	if err := h.predelay(ctx, p); err != nil {
		return err
	}
	return h.ensureInView(ctx, selector, p)
}

// ensureInView is the non-locking visibility check shared by Scroll and Click.
func (h *Humanoid) ensureInView(ctx context.Context, selector string, p gestureParams) error {
	if err := h.waitVisible(ctx, selector, p.timeout); err != nil {
		return err
	}

	inView, err := h.executor.InViewport(ctx, selector)
	if err != nil {
		return fmt.Errorf("humanoid: checking viewport for '%s': %w", selector, err)
	}
	if inView {
		return nil
	}

	h.logger.Debug("Element outside viewport, scrolling into view.")
	if err := h.executor.ScrollIntoView(ctx, selector); err != nil {
		return fmt.Errorf("humanoid: scrolling '%s' into view: %w", selector, err)
	}
	return nil
}
