// internal/humanoid/pointer.go
package humanoid

// PointerState is the last coordinate physically dispatched to the driver.
// It belongs to exactly one Humanoid and is only written by the motion planner.
type PointerState struct {
	pos Vector2D
}

// newPointerState places the pointer at a random point inside the viewport,
// so a session never starts from a fixed origin.
func newPointerState(timing *Timing, width, height float64) PointerState {
	return PointerState{pos: Vector2D{
		X: timing.Uniform(0, width),
		Y: timing.Uniform(0, height),
	}}
}

// Position returns the tracked coordinate.
func (p *PointerState) Position() Vector2D {
	return p.pos
}

func (p *PointerState) set(v Vector2D) {
	p.pos = v
}
