// internal/browser/rodexec/executor.go

// Package rodexec drives the humanoid engine through go-rod. It is the
// alternative to the chromedp driver for code that already holds a *rod.Page.
package rodexec

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/itw-creative-works/puppeteer-profiles/api/schemas"
	"github.com/itw-creative-works/puppeteer-profiles/internal/humanoid"
)

// Executor implements humanoid.Executor and humanoid.Overlay on a rod page.
type Executor struct {
	page   *rod.Page
	logger *zap.Logger
}

var (
	_ humanoid.Executor = (*Executor)(nil)
	_ humanoid.Overlay  = (*Executor)(nil)
)

// NewExecutor wraps page.
func NewExecutor(page *rod.Page, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{page: page, logger: logger.Named("rod")}
}

// on binds the page to ctx for a single call.
func (e *Executor) on(ctx context.Context) *rod.Page {
	return e.page.Context(ctx)
}

// Sleep blocks for d or until ctx is done.
func (e *Executor) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// mouseEvent converts the wire value into the rod protocol struct.
func mouseEvent(data schemas.MouseEventData) proto.InputDispatchMouseEvent {
	button := proto.InputMouseButton(data.Button)
	if data.Button == "" {
		button = proto.InputMouseButtonNone
	}
	buttons := int(data.Buttons)
	ev := proto.InputDispatchMouseEvent{
		Type:       proto.InputDispatchMouseEventType(data.Type),
		X:          data.X,
		Y:          data.Y,
		Button:     button,
		Buttons:    &buttons,
		ClickCount: data.ClickCount,
	}
	if data.Type == schemas.MouseWheel {
		ev.DeltaX, ev.DeltaY = data.DeltaX, data.DeltaY
	}
	return ev
}

// DispatchMouseEvent sends Input.dispatchMouseEvent.
func (e *Executor) DispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error {
	if err := mouseEvent(data).Call(e.on(ctx)); err != nil {
		return fmt.Errorf("rod: dispatching %s: %w", data.Type, err)
	}
	return nil
}

// typeable reports whether rod's US key map can type r as a key press.
func typeable(r rune) bool {
	return r >= 0x20 && r <= 0x7e
}

// SendKeys types printable ASCII as real key presses and inserts everything else as text.
func (e *Executor) SendKeys(ctx context.Context, keys string) error {
	page := e.on(ctx)
	var pending []rune
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		text := string(pending)
		pending = pending[:0]
		return page.InsertText(text)
	}

	for _, r := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !typeable(r) {
			pending = append(pending, r)
			continue
		}
		if err := flush(); err != nil {
			return fmt.Errorf("rod: inserting text: %w", err)
		}
		if err := page.Keyboard.Type(input.Key(r)); err != nil {
			return fmt.Errorf("rod: typing %q: %w", r, err)
		}
	}
	if err := flush(); err != nil {
		return fmt.Errorf("rod: inserting text: %w", err)
	}
	return nil
}

var namedKeys = map[string]input.Key{
	"Enter":      input.Enter,
	"Tab":        input.Tab,
	"Backspace":  input.Backspace,
	"Escape":     input.Escape,
	"Delete":     input.Delete,
	"ArrowUp":    input.ArrowUp,
	"ArrowDown":  input.ArrowDown,
	"ArrowLeft":  input.ArrowLeft,
	"ArrowRight": input.ArrowRight,
	"Home":       input.Home,
	"End":        input.End,
	"PageUp":     input.PageUp,
	"PageDown":   input.PageDown,
	"Space":      input.Space,
}

// resolveKey maps a DOM key name or a single printable character onto rod's key table.
func resolveKey(name string) (input.Key, error) {
	if k, ok := namedKeys[name]; ok {
		return k, nil
	}
	runes := []rune(name)
	if len(runes) == 1 && typeable(runes[0]) {
		return input.Key(runes[0]), nil
	}
	return 0, fmt.Errorf("rod: unsupported key '%s'", name)
}

// modifierKeys lists the physical keys to hold for m, in press order.
func modifierKeys(m schemas.KeyModifier) []input.Key {
	var keys []input.Key
	if m&schemas.ModCtrl != 0 {
		keys = append(keys, input.ControlLeft)
	}
	if m&schemas.ModAlt != 0 {
		keys = append(keys, input.AltLeft)
	}
	if m&schemas.ModShift != 0 {
		keys = append(keys, input.ShiftLeft)
	}
	if m&schemas.ModMeta != 0 {
		keys = append(keys, input.MetaLeft)
	}
	return keys
}

// DispatchStructuredKey holds the modifiers, taps the key and releases the modifiers in reverse.
func (e *Executor) DispatchStructuredKey(ctx context.Context, data schemas.KeyEventData) (err error) {
	key, err := resolveKey(data.Key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	kb := e.on(ctx).Keyboard
	held := modifierKeys(data.Modifiers)
	pressed := 0
	defer func() {
		for i := pressed - 1; i >= 0; i-- {
			if rerr := kb.Release(held[i]); rerr != nil && err == nil {
				err = fmt.Errorf("rod: releasing modifier: %w", rerr)
			}
		}
	}()
	for _, m := range held {
		if err := kb.Press(m); err != nil {
			return fmt.Errorf("rod: pressing modifier: %w", err)
		}
		pressed++
	}
	if err := kb.Type(key); err != nil {
		return fmt.Errorf("rod: pressing '%s': %w", data.Key, err)
	}
	return nil
}

// WaitVisible waits for selector to exist and become visible. The deadline comes from ctx.
func (e *Executor) WaitVisible(ctx context.Context, selector string) error {
	el, err := e.on(ctx).Element(selector)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

// BoundingBox returns the element's first content quad as a box, or nil when nothing matches.
func (e *Executor) BoundingBox(ctx context.Context, selector string) (*schemas.BoundingBox, error) {
	has, el, err := e.on(ctx).Has(selector)
	if err != nil {
		return nil, fmt.Errorf("rod: querying '%s': %w", selector, err)
	}
	if !has {
		return nil, nil
	}
	shape, err := el.Shape()
	if err != nil {
		return nil, fmt.Errorf("rod: reading geometry of '%s': %w", selector, err)
	}
	box := boxFromQuads(shape.Quads)
	return &box, nil
}

// boxFromQuads is the axis-aligned bounds of the first quad. No quads yields an empty box.
func boxFromQuads(quads []proto.DOMQuad) schemas.BoundingBox {
	if len(quads) == 0 || len(quads[0]) < 8 {
		return schemas.BoundingBox{}
	}
	q := quads[0]
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := 0; i+1 < len(q); i += 2 {
		minX, maxX = math.Min(minX, q[i]), math.Max(maxX, q[i])
		minY, maxY = math.Min(minY, q[i+1]), math.Max(maxY, q[i+1])
	}
	return schemas.BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

const inViewportJS = `function() {
	const r = this.getBoundingClientRect();
	const w = window.innerWidth || document.documentElement.clientWidth;
	const h = window.innerHeight || document.documentElement.clientHeight;
	return r.top >= 0 && r.left >= 0 && r.bottom <= h && r.right <= w;
}`

// InViewport reports whether the element's box lies fully inside the viewport.
func (e *Executor) InViewport(ctx context.Context, selector string) (bool, error) {
	has, el, err := e.on(ctx).Has(selector)
	if err != nil {
		return false, fmt.Errorf("rod: querying '%s': %w", selector, err)
	}
	if !has {
		return false, fmt.Errorf("rod: viewport check for '%s': %w", selector, humanoid.ErrElementNotFound)
	}
	res, err := el.Eval(inViewportJS)
	if err != nil {
		return false, fmt.Errorf("rod: viewport check for '%s': %w", selector, err)
	}
	return res.Value.Bool(), nil
}

// ScrollIntoView jumps the element into view.
func (e *Executor) ScrollIntoView(ctx context.Context, selector string) error {
	has, el, err := e.on(ctx).Has(selector)
	if err != nil {
		return fmt.Errorf("rod: querying '%s': %w", selector, err)
	}
	if !has {
		return fmt.Errorf("rod: scrolling to '%s': %w", selector, humanoid.ErrElementNotFound)
	}
	return el.ScrollIntoView()
}

const cursorOverlayJS = `() => {
	if (window.__profilesCursor) return true;
	const dot = document.createElement('div');
	dot.id = '__profiles-cursor';
	dot.style.cssText = 'position:fixed;top:0;left:0;width:12px;height:12px;margin:-6px 0 0 -6px;' +
		'border-radius:50%;background:rgba(255,64,64,0.8);pointer-events:none;z-index:2147483647;';
	(document.body || document.documentElement).appendChild(dot);
	document.addEventListener('mousemove', (ev) => {
		dot.style.transform = 'translate(' + ev.clientX + 'px,' + ev.clientY + 'px)';
	}, true);
	window.__profilesCursor = dot;
	return true;
}`

// EnsureCursorOverlay installs the debug cursor in the current document.
func (e *Executor) EnsureCursorOverlay(ctx context.Context) error {
	if _, err := e.on(ctx).Eval(cursorOverlayJS); err != nil {
		return fmt.Errorf("rod: installing cursor overlay: %w", err)
	}
	return nil
}
