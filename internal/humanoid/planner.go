// internal/humanoid/planner.go
package humanoid

import (
	"context"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/itw-creative-works/puppeteer-profiles/api/schemas"
)

// Hop is one continuous stroke of a travel.
type Hop struct {
	From, To     Vector2D
	MayOvershoot bool
}

// minHopLength is the distance below which a hop has no usable direction.
const minHopLength = 1e-6

// stepDelayJitter is the fraction of the step delay range added as noise per step.
const stepDelayJitter = 0.1

// travel moves the pointer from its tracked position to target. NOTE: callers hold h.mu.
func (h *Humanoid) travel(ctx context.Context, target Vector2D) error {
	from := h.pointer.Position()
	hops := h.planHops(from, target)

	h.logger.Debug("Planned travel.",
		zap.Float64("from_x", from.X), zap.Float64("from_y", from.Y),
		zap.Float64("to_x", target.X), zap.Float64("to_y", target.Y),
		zap.Int("hops", len(hops)))

	for i, hop := range hops {
		if i > 0 {
			pause := h.timing.Sample(h.cfg.HopPauseMin, h.cfg.HopPauseMax, ModeUniform)
			if err := h.executor.Sleep(ctx, pause); err != nil {
				return err
			}
		}
		if err := h.executeHop(ctx, hop); err != nil {
			return err
		}
	}
	return nil
}

// planHops splits a travel into one hop, or with SegmentProbability into
// 2..MaxHops hops through jittered waypoints on the straight line.
func (h *Humanoid) planHops(from, to Vector2D) []Hop {
	cfg := h.cfg
	if cfg.MaxHops < 2 || !h.timing.Chance(cfg.SegmentProbability) {
		return []Hop{newHop(from, to)}
	}

	count := h.timing.IntRange(2, cfg.MaxHops)
	fractions := make([]float64, count-1)
	for i := range fractions {
		fractions[i] = h.timing.Uniform(cfg.WaypointMinT, cfg.WaypointMaxT)
	}
	slices.Sort(fractions)

	hops := make([]Hop, 0, count)
	prev := from
	for _, t := range fractions {
		waypoint := from.Lerp(to, t).Add(Vector2D{
			X: h.timing.Uniform(-cfg.WaypointJitter, cfg.WaypointJitter),
			Y: h.timing.Uniform(-cfg.WaypointJitter, cfg.WaypointJitter),
		})
		hops = append(hops, newHop(prev, waypoint))
		prev = waypoint
	}
	return append(hops, newHop(prev, to))
}

func newHop(from, to Vector2D) Hop {
	return Hop{From: from, To: to, MayOvershoot: from.Dist(to) > minHopLength}
}

// executeHop samples the primary stroke (and its correction when it overshoots)
// and leaves the pointer on hop.To.
func (h *Humanoid) executeHop(ctx context.Context, hop Hop) error {
	cfg := h.cfg

	end := hop.To
	overshot := false
	if hop.MayOvershoot && h.timing.Chance(cfg.OvershootProbability) {
		end = h.overshoot(hop)
		overshot = true
	}

	primary := h.controlQuad(hop.From, end, cfg.ControlPointJitter)
	steps := h.timing.IntRange(cfg.StepsMin, cfg.StepsMax)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		if err := h.emit(ctx, primary.At(EaseRaisedCosine(t))); err != nil {
			return err
		}
		if err := h.executor.Sleep(ctx, h.stepDelay(t)); err != nil {
			return err
		}
	}

	if overshot {
		correction := h.controlQuad(end, hop.To, cfg.CorrectionJitter)
		steps := h.timing.IntRange(cfg.CorrectionStepsMin, cfg.CorrectionStepsMax)
		for i := 1; i <= steps; i++ {
			t := float64(i) / float64(steps)
			if err := h.emit(ctx, correction.At(EaseSmoothstep(t))); err != nil {
				return err
			}
			delay := h.timing.Sample(cfg.CorrectionDelayMin, cfg.CorrectionDelayMax, ModeUniform)
			if err := h.executor.Sleep(ctx, delay); err != nil {
				return err
			}
		}
	}

	h.pointer.set(hop.To)
	return nil
}

// overshoot extends the hop past its end along the direction of travel.
// Coordinates never go negative.
func (h *Humanoid) overshoot(hop Hop) Vector2D {
	dir := hop.To.Sub(hop.From).Normalize()
	magnitude := h.timing.Uniform(h.cfg.OvershootMin, h.cfg.OvershootMax)
	p := hop.To.Add(dir.Mul(magnitude))
	return Vector2D{X: math.Max(0, p.X), Y: math.Max(0, p.Y)}
}

// controlQuad places the interior control points at 30% and 70% of the chord,
// each axis jittered by up to ±jitter.
func (h *Humanoid) controlQuad(from, to Vector2D, jitter float64) ControlQuad {
	offset := func() Vector2D {
		return Vector2D{
			X: h.timing.Uniform(-jitter, jitter),
			Y: h.timing.Uniform(-jitter, jitter),
		}
	}
	return ControlQuad{
		P0: from,
		P1: from.Lerp(to, 0.3).Add(offset()),
		P2: from.Lerp(to, 0.7).Add(offset()),
		P3: to,
	}
}

// stepDelay follows a cosine profile over the stroke: StepDelayMax at both ends,
// StepDelayMin mid-path, with a little noise.
func (h *Humanoid) stepDelay(t float64) time.Duration {
	lo, hi := float64(h.cfg.StepDelayMin), float64(h.cfg.StepDelayMax)
	span := hi - lo
	base := lo + span*(0.5+0.5*math.Cos(2*math.Pi*t))
	d := base + h.timing.Uniform(-stepDelayJitter, stepDelayJitter)*span
	return time.Duration(math.Max(lo, math.Min(hi, d)))
}

// emit dispatches one pointer position. The pointer state follows every
// successful dispatch, so an aborted travel leaves it on the last sent point.
func (h *Humanoid) emit(ctx context.Context, pos Vector2D) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := h.executor.DispatchMouseEvent(ctx, schemas.MouseEventData{
		Type:   schemas.MouseMove,
		X:      pos.X,
		Y:      pos.Y,
		Button: schemas.ButtonNone,
	})
	if err != nil {
		return err
	}
	h.pointer.set(pos)
	return nil
}
