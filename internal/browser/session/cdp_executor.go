// internal/browser/session/cdp_executor.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/itw-creative-works/puppeteer-profiles/api/schemas"
	"github.com/itw-creative-works/puppeteer-profiles/internal/humanoid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CDPExecutor drives a single tab over the DevTools protocol. It implements
// humanoid.Executor and humanoid.Overlay.
type CDPExecutor struct {
	ctx     context.Context // the tab's chromedp context
	logger  *zap.Logger
	timeout time.Duration // per-command bound

	runActionsFunc func(ctx context.Context, actions ...chromedp.Action) error
}

var (
	_ humanoid.Executor = (*CDPExecutor)(nil)
	_ humanoid.Overlay  = (*CDPExecutor)(nil)
)

// NewCDPExecutor wraps a chromedp tab context. timeout bounds each individual command.
func NewCDPExecutor(tabCtx context.Context, logger *zap.Logger, timeout time.Duration) *CDPExecutor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	e := &CDPExecutor{
		ctx:     tabCtx,
		logger:  logger.Named("cdp"),
		timeout: timeout,
	}
	e.runActionsFunc = e.runActions
	return e
}

// runActions executes actions on the tab, cancelled by either the tab or the caller's context.
func (e *CDPExecutor) runActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(e.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// run applies the per-command timeout and labels a timeout failure.
func (e *CDPExecutor) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := e.runActionsFunc(opCtx, actions...)
	if err != nil && ctx.Err() == nil && opCtx.Err() == context.DeadlineExceeded {
		e.logger.Debug("CDP command timed out.", zap.String("op", op), zap.Duration("timeout", e.timeout))
		return fmt.Errorf("cdp: %s timed out after %v: %w", op, e.timeout, opCtx.Err())
	}
	return err
}

// Sleep pauses for d, returning early when ctx or the tab is cancelled.
func (e *CDPExecutor) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return e.runActionsFunc(ctx, chromedp.Sleep(d))
}

// DispatchMouseEvent sends Input.dispatchMouseEvent.
func (e *CDPExecutor) DispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error {
	p := input.DispatchMouseEvent(input.MouseType(data.Type), data.X, data.Y).
		WithButton(input.MouseButton(data.Button)).
		WithButtons(data.Buttons).
		WithClickCount(int64(data.ClickCount))

	if data.Type == schemas.MouseWheel {
		p = p.WithDeltaX(data.DeltaX).WithDeltaY(data.DeltaY)
	}
	return e.run(ctx, "dispatch mouse event", p)
}

// SendKeys types text as key events into the focused element.
func (e *CDPExecutor) SendKeys(ctx context.Context, keys string) error {
	return e.run(ctx, "send keys", chromedp.KeyEvent(keys))
}

// namedKeys maps DOM key names onto the chromedp key table.
var namedKeys = map[string]string{
	"Enter":      kb.Enter,
	"Tab":        kb.Tab,
	"Backspace":  kb.Backspace,
	"Escape":     kb.Escape,
	"Delete":     kb.Delete,
	"ArrowUp":    kb.ArrowUp,
	"ArrowDown":  kb.ArrowDown,
	"ArrowLeft":  kb.ArrowLeft,
	"ArrowRight": kb.ArrowRight,
	"Home":       kb.Home,
	"End":        kb.End,
	"PageUp":     kb.PageUp,
	"PageDown":   kb.PageDown,
	"Space":      " ",
}

// cdpModifiers converts the schema bitmask into CDP modifiers.
func cdpModifiers(m schemas.KeyModifier) []input.Modifier {
	var mods []input.Modifier
	if m&schemas.ModAlt != 0 {
		mods = append(mods, input.ModifierAlt)
	}
	if m&schemas.ModCtrl != 0 {
		mods = append(mods, input.ModifierCtrl)
	}
	if m&schemas.ModMeta != 0 {
		mods = append(mods, input.ModifierMeta)
	}
	if m&schemas.ModShift != 0 {
		mods = append(mods, input.ModifierShift)
	}
	return mods
}

// DispatchStructuredKey presses and releases one key with its modifiers.
func (e *CDPExecutor) DispatchStructuredKey(ctx context.Context, data schemas.KeyEventData) error {
	mods := cdpModifiers(data.Modifiers)

	keys, known := namedKeys[data.Key]
	if !known && len([]rune(data.Key)) == 1 {
		keys, known = data.Key, true
	}
	if known {
		return e.run(ctx, "dispatch key", chromedp.KeyEvent(keys, chromedp.KeyModifiers(mods...)))
	}

	// Keys outside the table are sent by name only.
	var mask input.Modifier
	for _, m := range mods {
		mask |= m
	}
	keyDown := input.DispatchKeyEvent(input.KeyDown).WithModifiers(mask).WithKey(data.Key)
	keyUp := input.DispatchKeyEvent(input.KeyUp).WithModifiers(mask).WithKey(data.Key)
	if err := e.run(ctx, "dispatch key", keyDown, keyUp); err != nil {
		return fmt.Errorf("cdp: dispatching key '%s': %w", data.Key, err)
	}
	return nil
}

// WaitVisible waits until selector is visible. The deadline comes from ctx.
func (e *CDPExecutor) WaitVisible(ctx context.Context, selector string) error {
	return e.runActionsFunc(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

const boundingBoxScript = `(function(sel) {
	const node = document.querySelector(sel);
	if (!node) return null;
	const r = node.getBoundingClientRect();
	return { x: r.left, y: r.top, width: r.width, height: r.height };
})(%s)`

// BoundingBox returns the element's border box, or nil when the selector matches nothing.
func (e *CDPExecutor) BoundingBox(ctx context.Context, selector string) (*schemas.BoundingBox, error) {
	raw, err := e.evaluate(ctx, "bounding box", fmt.Sprintf(boundingBoxScript, jsonEncode(selector)))
	if err != nil {
		return nil, err
	}
	return decodeBoundingBox(raw)
}

// decodeBoundingBox parses the script result; JSON null means no element.
func decodeBoundingBox(raw []byte) (*schemas.BoundingBox, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var box schemas.BoundingBox
	if err := json.Unmarshal(raw, &box); err != nil {
		return nil, fmt.Errorf("cdp: decoding bounding box %s: %w", string(raw), err)
	}
	return &box, nil
}

const inViewportScript = `(function(sel) {
	const node = document.querySelector(sel);
	if (!node) return null;
	const r = node.getBoundingClientRect();
	const w = window.innerWidth || document.documentElement.clientWidth;
	const h = window.innerHeight || document.documentElement.clientHeight;
	return r.top >= 0 && r.left >= 0 && r.bottom <= h && r.right <= w;
})(%s)`

// InViewport reports whether the element's box lies fully inside the visible viewport.
func (e *CDPExecutor) InViewport(ctx context.Context, selector string) (bool, error) {
	raw, err := e.evaluate(ctx, "viewport check", fmt.Sprintf(inViewportScript, jsonEncode(selector)))
	if err != nil {
		return false, err
	}
	return decodeInViewport(raw, selector)
}

// decodeInViewport parses the script result; an empty result or JSON null means no element.
func decodeInViewport(raw []byte, selector string) (bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, fmt.Errorf("cdp: viewport check for '%s': %w", selector, humanoid.ErrElementNotFound)
	}
	var inView bool
	if err := json.Unmarshal(raw, &inView); err != nil {
		return false, fmt.Errorf("cdp: decoding viewport check: %w", err)
	}
	return inView, nil
}

// ScrollIntoView jumps the element into view.
func (e *CDPExecutor) ScrollIntoView(ctx context.Context, selector string) error {
	return e.run(ctx, "scroll into view", chromedp.ScrollIntoView(selector, chromedp.ByQuery))
}

// cursorOverlayScript draws a small dot that follows mouse events. Installing it twice is a no-op.
const cursorOverlayScript = `(function() {
	if (window.__profilesCursor) return true;
	const dot = document.createElement('div');
	dot.id = '__profiles-cursor';
	dot.style.cssText = 'position:fixed;top:0;left:0;width:12px;height:12px;margin:-6px 0 0 -6px;' +
		'border-radius:50%;background:rgba(255,64,64,0.8);pointer-events:none;z-index:2147483647;';
	(document.body || document.documentElement).appendChild(dot);
	const move = (ev) => { dot.style.transform = 'translate(' + ev.clientX + 'px,' + ev.clientY + 'px)'; };
	document.addEventListener('mousemove', move, true);
	document.addEventListener('mousedown', () => { dot.style.background = 'rgba(64,64,255,0.8)'; }, true);
	document.addEventListener('mouseup', () => { dot.style.background = 'rgba(255,64,64,0.8)'; }, true);
	window.__profilesCursor = dot;
	return true;
})()`

// EnsureCursorOverlay installs the debug cursor in the current document.
func (e *CDPExecutor) EnsureCursorOverlay(ctx context.Context) error {
	_, err := e.evaluate(ctx, "cursor overlay", cursorOverlayScript)
	return err
}

// evaluate runs script and returns its JSON-encoded result.
func (e *CDPExecutor) evaluate(ctx context.Context, op, script string) ([]byte, error) {
	var res []byte
	err := e.run(ctx, op, chromedp.Evaluate(script, &res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithReturnByValue(true).WithAwaitPromise(true).WithSilent(true)
	}))
	if err != nil {
		return nil, fmt.Errorf("cdp: %s: %w", op, err)
	}
	return res, nil
}

// jsonEncode quotes a value for embedding in a script.
func jsonEncode(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}
