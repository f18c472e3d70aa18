// internal/humanoid/keyboard.go
package humanoid

import (
	"context"
	"fmt"
	"strings"

	"github.com/itw-creative-works/puppeteer-profiles/api/schemas"
)

// Type sends text one character at a time into the focused element, pausing a
// randomized interval after each character. The cadence is gaussian unless the
// options or the configured type_mode say otherwise.
func (h *Humanoid) Type(ctx context.Context, text string, opts *InteractionOptions) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	defaultMode, err := ParseMode(h.cfg.TypeMode)
	if err != nil || defaultMode == "" {
		defaultMode = ModeGaussian
	}
	p := h.resolve(opts, defaultMode)
	h.logGesture(p, "type", text)

	for _, r := range text {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.executor.SendKeys(ctx, string(r)); err != nil {
			return fmt.Errorf("humanoid: typing %q: %w", r, err)
		}
		if err := h.executor.Sleep(ctx, h.timing.Sample(p.delayMin, p.delayMax, p.mode)); err != nil {
			return err
		}
	}
	return nil
}

// Press presses key Quantity times (default once), pausing after each press.
// key may carry modifiers, e.g. "Control+a" or "Shift+Tab".
func (h *Humanoid) Press(ctx context.Context, key string, opts *InteractionOptions) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	p := h.resolve(opts, ModeUniform)
	h.logGesture(p, "press", key)

	event, err := ParseKeyCombo(key)
	if err != nil {
		return err
	}
	for i := 0; i < p.quantity; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.executor.DispatchStructuredKey(ctx, event); err != nil {
			return fmt.Errorf("humanoid: pressing '%s': %w", key, err)
		}
		if err := h.executor.Sleep(ctx, h.timing.Sample(p.delayMin, p.delayMax, p.mode)); err != nil {
			return err
		}
	}
	return nil
}

var modifierNames = map[string]schemas.KeyModifier{
	"alt":     schemas.ModAlt,
	"option":  schemas.ModAlt,
	"control": schemas.ModCtrl,
	"ctrl":    schemas.ModCtrl,
	"meta":    schemas.ModMeta,
	"cmd":     schemas.ModMeta,
	"command": schemas.ModMeta,
	"shift":   schemas.ModShift,
}

// ParseKeyCombo splits "Mod+Mod+Key" into a key and its modifier mask.
// A lone "+" is the plus key.
func ParseKeyCombo(combo string) (schemas.KeyEventData, error) {
	if combo == "" {
		return schemas.KeyEventData{}, fmt.Errorf("humanoid: empty key")
	}
	if combo == "+" || !strings.Contains(combo, "+") {
		return schemas.KeyEventData{Key: combo}, nil
	}

	parts := strings.Split(combo, "+")
	key := parts[len(parts)-1]
	mods := parts[:len(parts)-1]
	// "Control++" ends in an empty element after the split.
	if key == "" && len(parts) >= 2 && parts[len(parts)-2] == "" {
		key = "+"
		mods = parts[:len(parts)-2]
	}
	if key == "" {
		return schemas.KeyEventData{}, fmt.Errorf("humanoid: key combination '%s' has no key", combo)
	}

	var mask schemas.KeyModifier
	for _, m := range mods {
		bit, ok := modifierNames[strings.ToLower(strings.TrimSpace(m))]
		if !ok {
			return schemas.KeyEventData{}, fmt.Errorf("humanoid: unknown modifier '%s' in '%s'", m, combo)
		}
		mask |= bit
	}
	return schemas.KeyEventData{Key: key, Modifiers: mask}, nil
}
