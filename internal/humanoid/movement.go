// internal/humanoid/movement.go
package humanoid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/itw-creative-works/puppeteer-profiles/api/schemas"
)

// MoveTo waits for selector to become visible and travels to a point inside it.
func (h *Humanoid) MoveTo(ctx context.Context, selector string, opts *InteractionOptions) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	p := h.resolve(opts, ModeUniform)
	h.logGesture(p, "move", selector)
	return h.moveTo(ctx, selector, p)
}

// MoveToVector travels to an absolute coordinate, with no element lookup.
func (h *Humanoid) MoveToVector(ctx context.Context, target Vector2D, opts *InteractionOptions) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	p := h.resolve(opts, ModeUniform)
	h.logGesture(p, "move", fmt.Sprintf("(%.1f, %.1f)", target.X, target.Y))

	if err := h.predelay(ctx, p); err != nil {
		return err
	}
	if p.debug {
		h.ensureOverlay(ctx)
	}
	return h.travel(ctx, target)
}

// moveTo is the internal, non-locking implementation of MoveTo.
func (h *Humanoid) moveTo(ctx context.Context, selector string, p gestureParams) error {
	if err := h.waitVisible(ctx, selector, p.timeout); err != nil {
		return err
	}
	if err := h.predelay(ctx, p); err != nil {
		return err
	}

	box, err := h.boundingBox(ctx, selector)
	if err != nil {
		return err
	}
	target := h.calculateTargetPoint(*box)

	if p.debug {
		h.ensureOverlay(ctx)
	}
	if err := h.travel(ctx, target); err != nil {
		return fmt.Errorf("humanoid: moving to '%s': %w", selector, err)
	}
	return nil
}

// waitVisible bounds the executor's visibility wait by timeout.
func (h *Humanoid) waitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := h.executor.WaitVisible(waitCtx, selector)
	if err == nil {
		return nil
	}
	// The caller's own cancellation is reported as is.
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || waitCtx.Err() != nil {
		return fmt.Errorf("humanoid: waiting for '%s' after %s: %w", selector, timeout, ErrVisibilityTimeout)
	}
	return fmt.Errorf("humanoid: waiting for '%s': %w", selector, err)
}

// boundingBox resolves the element geometry and maps missing results onto the error taxonomy.
func (h *Humanoid) boundingBox(ctx context.Context, selector string) (*schemas.BoundingBox, error) {
	box, err := h.executor.BoundingBox(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("humanoid: resolving geometry of '%s': %w", selector, err)
	}
	if box == nil {
		return nil, fmt.Errorf("humanoid: resolving geometry of '%s': %w", selector, ErrElementNotFound)
	}
	if box.Empty() {
		return nil, fmt.Errorf("humanoid: resolving geometry of '%s': %w", selector, ErrGeometryUnavailable)
	}
	return box, nil
}

// calculateTargetPoint draws a destination from the central TargetBand of the box,
// gaussian-weighted towards the middle and clamped to the band.
func (h *Humanoid) calculateTargetPoint(box schemas.BoundingBox) Vector2D {
	band := h.cfg.TargetBand
	return Vector2D{
		X: h.bandedAxis(box.X, box.Width, band),
		Y: h.bandedAxis(box.Y, box.Height, band),
	}
}

func (h *Humanoid) bandedAxis(origin, length, band float64) float64 {
	center := origin + length/2
	half := length * band / 2
	v := h.timing.Gaussian(center, half/2)
	return math.Max(center-half, math.Min(center+half, v))
}
