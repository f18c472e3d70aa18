// internal/humanoid/behavior.go
package humanoid

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Wait suspends for a randomized duration in [min, max] and returns it. The
// distribution is uniform unless the options name one.
func (h *Humanoid) Wait(ctx context.Context, min, max time.Duration, opts *InteractionOptions) (time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.wait(ctx, min, max, opts)
}

// WaitDefault is Wait over the configured wait range.
func (h *Humanoid) WaitDefault(ctx context.Context, opts *InteractionOptions) (time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.wait(ctx, h.cfg.WaitMin, h.cfg.WaitMax, opts)
}

func (h *Humanoid) wait(ctx context.Context, min, max time.Duration, opts *InteractionOptions) (time.Duration, error) {
	p := h.resolve(opts, ModeUniform)
	d := h.timing.Sample(min, max, p.mode)

	if p.log.Enabled {
		fields := []zap.Field{zap.Duration("duration", d)}
		if p.log.Message != "" {
			fields = append(fields, zap.String("label", p.log.Message))
		}
		h.logger.Info("Waiting.", fields...)
	}

	if err := h.executor.Sleep(ctx, d); err != nil {
		return 0, err
	}
	return d, nil
}

// predelay is the pause a gesture takes before acting.
func (h *Humanoid) predelay(ctx context.Context, p gestureParams) error {
	return h.executor.Sleep(ctx, h.timing.Sample(p.predelayMin, p.predelayMax, p.mode))
}

// postDelay pauses after an action with probability postChance.
func (h *Humanoid) postDelay(ctx context.Context, p gestureParams) error {
	if !h.timing.Chance(p.postChance) {
		return nil
	}
	return h.executor.Sleep(ctx, h.timing.Sample(p.postMin, p.postMax, p.mode))
}
