// internal/humanoid/trajectory_test.go
package humanoid

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBezierEndpoints(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	randomPoint := func() Vector2D {
		return Vector2D{X: rng.Float64()*4000 - 2000, Y: rng.Float64()*4000 - 2000}
	}

	for i := 0; i < 1000; i++ {
		p0, p1, p2, p3 := randomPoint(), randomPoint(), randomPoint(), randomPoint()
		assert.Equal(t, p0, Bezier(p0, p1, p2, p3, 0))
		assert.Equal(t, p3, Bezier(p0, p1, p2, p3, 1))
	}
}

func TestBezierPolynomial(t *testing.T) {
	p0 := Vector2D{X: 0, Y: 0}
	p1 := Vector2D{X: 10, Y: 40}
	p2 := Vector2D{X: 90, Y: 40}
	p3 := Vector2D{X: 100, Y: 0}

	// Bernstein form as an independent reference.
	ref := func(t float64) Vector2D {
		u := 1 - t
		return p0.Mul(u * u * u).
			Add(p1.Mul(3 * u * u * t)).
			Add(p2.Mul(3 * u * t * t)).
			Add(p3.Mul(t * t * t))
	}
	for _, tt := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		got := Bezier(p0, p1, p2, p3, tt)
		want := ref(tt)
		assert.InDelta(t, want.X, got.X, 1e-9)
		assert.InDelta(t, want.Y, got.Y, 1e-9)
	}

	// Symmetric control points put the midpoint on the axis of symmetry.
	mid := Bezier(p0, p1, p2, p3, 0.5)
	assert.InDelta(t, 50.0, mid.X, 1e-9)
	assert.InDelta(t, 30.0, mid.Y, 1e-9)
}

func TestBezierClampsParameter(t *testing.T) {
	q := ControlQuad{P0: Vector2D{1, 2}, P1: Vector2D{3, 4}, P2: Vector2D{5, 6}, P3: Vector2D{7, 8}}
	assert.Equal(t, q.P0, q.At(-0.5))
	assert.Equal(t, q.P3, q.At(1.5))
}

func TestEasing(t *testing.T) {
	assert.Equal(t, 0.0, EaseRaisedCosine(0))
	assert.Equal(t, 1.0, EaseRaisedCosine(1))
	assert.InDelta(t, 0.5, EaseRaisedCosine(0.5), 1e-12)

	assert.Equal(t, 0.0, EaseSmoothstep(0))
	assert.Equal(t, 1.0, EaseSmoothstep(1))
	assert.InDelta(t, 0.5, EaseSmoothstep(0.5), 1e-12)

	// Both curves are monotonic and slow at the ends.
	prevC, prevS := 0.0, 0.0
	for i := 1; i <= 100; i++ {
		x := float64(i) / 100
		c, s := EaseRaisedCosine(x), EaseSmoothstep(x)
		assert.GreaterOrEqual(t, c, prevC)
		assert.GreaterOrEqual(t, s, prevS)
		prevC, prevS = c, s
	}
	assert.Less(t, EaseRaisedCosine(0.05), 0.05)
	assert.Less(t, EaseSmoothstep(0.05), 0.05)
}

func TestVectorMath(t *testing.T) {
	a := Vector2D{X: 3, Y: 4}
	assert.Equal(t, 5.0, a.Mag())
	assert.Equal(t, Vector2D{X: 6, Y: 8}, a.Mul(2))
	assert.Equal(t, Vector2D{X: 4, Y: 6}, a.Add(Vector2D{X: 1, Y: 2}))
	assert.Equal(t, Vector2D{X: 2, Y: 2}, a.Sub(Vector2D{X: 1, Y: 2}))
	assert.InDelta(t, 1.0, a.Normalize().Mag(), 1e-12)
	assert.Equal(t, Vector2D{}, Vector2D{}.Normalize())
	assert.Equal(t, 5.0, Vector2D{}.Dist(a))
	assert.Equal(t, Vector2D{X: 1.5, Y: 2}, Vector2D{}.Lerp(a, 0.5))
	assert.False(t, math.IsNaN(Vector2D{}.Normalize().X))
}
