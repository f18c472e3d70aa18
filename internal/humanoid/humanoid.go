// internal/humanoid/humanoid.go
package humanoid

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/itw-creative-works/puppeteer-profiles/internal/config"
)

// Humanoid drives one pointer for one page. Gestures hold mu for their whole
// duration, so calls on the same session run strictly one after another.
type Humanoid struct {
	mu sync.Mutex

	cfg      config.HumanoidConfig
	logger   *zap.Logger
	executor Executor
	overlay  Overlay

	timing  *Timing
	pointer PointerState
	debug   bool
}

var _ Controller = (*Humanoid)(nil)

// New creates a Humanoid. A zero cfg.Seed seeds the random source from the clock.
func New(cfg config.HumanoidConfig, logger *zap.Logger, executor Executor) *Humanoid {
	if logger == nil {
		logger = zap.NewNop()
	}
	timing := NewTiming(newSeededRand(cfg.Seed))

	h := &Humanoid{
		cfg:      cfg,
		logger:   logger.Named("humanoid"),
		executor: executor,
		timing:   timing,
		pointer:  newPointerState(timing, cfg.ViewportWidth, cfg.ViewportHeight),
		debug:    cfg.Debug,
	}
	if ov, ok := executor.(Overlay); ok {
		h.overlay = ov
	}
	return h
}

// NewTestHumanoid builds a deterministic Humanoid over the default configuration.
func NewTestHumanoid(executor Executor, seed int64) *Humanoid {
	cfg := config.DefaultHumanoidConfig()
	if seed == 0 {
		seed = 1
	}
	cfg.Seed = seed
	return New(cfg, zap.NewNop(), executor)
}

// Position returns the last coordinate dispatched to the driver.
func (h *Humanoid) Position() Vector2D {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pointer.Position()
}

// SetDebug sets the session-wide default for the debug option.
func (h *Humanoid) SetDebug(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.debug = enabled
}

// SetOverlay injects the debug cursor overlay. A nil overlay disables it.
func (h *Humanoid) SetOverlay(ov Overlay) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.overlay = ov
}

// ensureOverlay installs the debug cursor. Failures never abort the gesture.
func (h *Humanoid) ensureOverlay(ctx context.Context) {
	if h.overlay == nil {
		return
	}
	if err := h.overlay.EnsureCursorOverlay(ctx); err != nil {
		h.logger.Warn("Failed to install debug cursor overlay; continuing without it.", zap.Error(err))
	}
}

// logGesture prints the caller's log label, if one was requested.
func (h *Humanoid) logGesture(p gestureParams, gesture, target string) {
	if !p.log.Enabled {
		return
	}
	msg := p.log.Message
	if msg == "" {
		msg = gesture
	}
	h.logger.Info(msg, zap.String("gesture", gesture), zap.String("target", target))
}
