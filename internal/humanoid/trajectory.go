// internal/humanoid/trajectory.go
package humanoid

import "math"

// ControlQuad holds the four control points of one cubic Bézier segment.
type ControlQuad struct {
	P0, P1, P2, P3 Vector2D
}

// At evaluates the segment at parameter t.
func (q ControlQuad) At(t float64) Vector2D {
	return Bezier(q.P0, q.P1, q.P2, q.P3, t)
}

// Bezier evaluates a cubic Bézier curve at t using the polynomial form
//
//	c = 3(p1-p0), b = 3(p2-p1)-c, a = p3-p0-c-b
//	B(t) = a·t³ + b·t² + c·t + p0
//
// t is clamped to [0, 1]. The endpoints are returned verbatim at the closed
// ends so a sampled path always starts and finishes on its anchors.
func Bezier(p0, p1, p2, p3 Vector2D, t float64) Vector2D {
	if t <= 0 {
		return p0
	}
	if t >= 1 {
		return p3
	}
	return Vector2D{
		X: cubic(p0.X, p1.X, p2.X, p3.X, t),
		Y: cubic(p0.Y, p1.Y, p2.Y, p3.Y, t),
	}
}

func cubic(p0, p1, p2, p3, t float64) float64 {
	c := 3 * (p1 - p0)
	b := 3*(p2-p1) - c
	a := p3 - p0 - c - b
	return ((a*t+b)*t+c)*t + p0
}

// EaseRaisedCosine maps t to 0.5 - 0.5·cos(πt): slow at both ends, fastest mid-path.
func EaseRaisedCosine(t float64) float64 {
	t = clamp01(t)
	return 0.5 - 0.5*math.Cos(math.Pi*t)
}

// EaseSmoothstep maps t to t²(3-2t).
func EaseSmoothstep(t float64) float64 {
	t = clamp01(t)
	return t * t * (3 - 2*t)
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
