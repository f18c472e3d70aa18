// internal/browser/session/context_utils.go
package session

import "context"

// CombineContext returns a context that carries the values and deadline of primary
// (the chromedp tab context) and is also cancelled when secondary (the caller's
// operation context) is done.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)
	stop := context.AfterFunc(secondary, cancel)
	return combined, func() {
		stop()
		cancel()
	}
}
