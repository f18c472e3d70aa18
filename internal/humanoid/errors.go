// internal/humanoid/errors.go
package humanoid

import "errors"

// Failures surfaced by the gestures. They are always wrapped with the selector,
// so match them with errors.Is.
var (
	// ErrVisibilityTimeout means the selector never became visible within the gesture timeout.
	ErrVisibilityTimeout = errors.New("element did not become visible before timeout")
	// ErrGeometryUnavailable means the element resolved but has no measurable bounding box.
	ErrGeometryUnavailable = errors.New("element geometry unavailable")
	// ErrElementNotFound means the selector resolved to nothing after waiting.
	ErrElementNotFound = errors.New("element not found")
)
