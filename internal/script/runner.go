// internal/script/runner.go
package script

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/itw-creative-works/puppeteer-profiles/internal/humanoid"
)

// Navigator loads a URL in the page a Controller is bound to.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// stepHandler runs a single expanded step.
type stepHandler func(ctx context.Context, step Step, opts *humanoid.InteractionOptions) error

// Runner executes scripts against one session.
type Runner struct {
	logger    *zap.Logger
	ctrl      humanoid.Controller
	navigator Navigator
	handlers  map[Action]stepHandler
}

// NewRunner binds a Runner to a session's controller and navigator. navigator may be
// nil for scripts without navigate steps.
func NewRunner(logger *zap.Logger, ctrl humanoid.Controller, navigator Navigator) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		logger:    logger.Named("script_runner"),
		ctrl:      ctrl,
		navigator: navigator,
		handlers:  make(map[Action]stepHandler),
	}
	r.registerHandlers()
	return r
}

func (r *Runner) registerHandlers() {
	r.handlers[ActionNavigate] = r.handleNavigate
	r.handlers[ActionMove] = r.handleMove
	r.handlers[ActionClick] = r.handleClick
	r.handlers[ActionType] = r.handleType
	r.handlers[ActionPress] = r.handlePress
	r.handlers[ActionScroll] = r.handleScroll
	r.handlers[ActionWait] = r.handleWait
	r.handlers[ActionSetDebug] = r.handleSetDebug
	r.handlers[ActionRepeat] = r.handleRepeat
}

// Run validates s and executes it from the top. The first failing step stops the run.
func (r *Runner) Run(ctx context.Context, s *Script) error {
	if err := s.Validate(); err != nil {
		return err
	}
	start := time.Now()
	r.logger.Info("Running script.", zap.String("script", s.Name), zap.Int("steps", len(s.Steps)))

	if s.Debug {
		r.ctrl.SetDebug(true)
	}
	if s.URL != "" {
		if err := r.handleNavigate(ctx, Step{Action: ActionNavigate, URL: s.URL}, nil); err != nil {
			return err
		}
	}
	if err := r.runSteps(ctx, s.Steps, "steps"); err != nil {
		return err
	}

	r.logger.Info("Script finished.", zap.String("script", s.Name), zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (r *Runner) runSteps(ctx context.Context, steps []Step, path string) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runStep(ctx, step); err != nil {
			return fmt.Errorf("script: %s[%d] (%s): %w", path, i, step.Action, err)
		}
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, step Step) error {
	handler, ok := r.handlers[step.Action]
	if !ok {
		return fmt.Errorf("no handler for action '%s'", step.Action)
	}
	opts, err := humanoid.DecodeOptions(step.Options)
	if err != nil {
		return err
	}
	r.logger.Debug("Executing step.", zap.String("action", string(step.Action)), zap.String("selector", step.Selector))
	return handler(ctx, step, opts)
}

func (r *Runner) handleNavigate(ctx context.Context, step Step, _ *humanoid.InteractionOptions) error {
	if r.navigator == nil {
		return fmt.Errorf("navigate requires a page navigator")
	}
	return r.navigator.Navigate(ctx, step.URL)
}

func (r *Runner) handleMove(ctx context.Context, step Step, opts *humanoid.InteractionOptions) error {
	if step.Selector != "" {
		return r.ctrl.MoveTo(ctx, step.Selector, opts)
	}
	return r.ctrl.MoveToVector(ctx, humanoid.Vector2D{X: *step.X, Y: *step.Y}, opts)
}

func (r *Runner) handleClick(ctx context.Context, step Step, opts *humanoid.InteractionOptions) error {
	return r.ctrl.Click(ctx, step.Selector, opts)
}

func (r *Runner) handleType(ctx context.Context, step Step, opts *humanoid.InteractionOptions) error {
	return r.ctrl.Type(ctx, step.Text, opts)
}

func (r *Runner) handlePress(ctx context.Context, step Step, opts *humanoid.InteractionOptions) error {
	return r.ctrl.Press(ctx, step.Key, opts)
}

func (r *Runner) handleScroll(ctx context.Context, step Step, opts *humanoid.InteractionOptions) error {
	return r.ctrl.Scroll(ctx, step.Selector, opts)
}

// handleWait takes its bounds from minDelay/maxDelay. A single bound fixes the duration;
// neither uses the configured wait range.
func (r *Runner) handleWait(ctx context.Context, _ Step, opts *humanoid.InteractionOptions) error {
	if opts.MinDelay == nil && opts.MaxDelay == nil {
		_, err := r.ctrl.WaitDefault(ctx, opts)
		return err
	}

	var min, max time.Duration
	if opts.MinDelay != nil {
		min = *opts.MinDelay
	}
	if opts.MaxDelay != nil {
		max = *opts.MaxDelay
	}
	if opts.MinDelay != nil && opts.MaxDelay == nil {
		max = min
	}
	if opts.MaxDelay != nil && opts.MinDelay == nil {
		min = max
	}

	_, err := r.ctrl.Wait(ctx, min, max, opts)
	return err
}

func (r *Runner) handleSetDebug(_ context.Context, step Step, _ *humanoid.InteractionOptions) error {
	r.ctrl.SetDebug(*step.Enabled)
	return nil
}

func (r *Runner) handleRepeat(ctx context.Context, step Step, _ *humanoid.InteractionOptions) error {
	for i := 1; i <= step.Times; i++ {
		expanded := make([]Step, len(step.Steps))
		for j, inner := range step.Steps {
			expanded[j] = inner.expand(i)
		}
		if err := r.runSteps(ctx, expanded, fmt.Sprintf("repeat#%d", i)); err != nil {
			return err
		}
	}
	return nil
}

// Target is one session a script can be run against.
type Target struct {
	ID         string
	Controller humanoid.Controller
	Navigator  Navigator
}

// RunAll runs s on every target concurrently. The first failure cancels the rest and
// is returned.
func RunAll(ctx context.Context, logger *zap.Logger, s *Script, targets []Target) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			runner := NewRunner(logger.With(zap.String("session_id", t.ID)), t.Controller, t.Navigator)
			if err := runner.Run(gctx, s); err != nil {
				return fmt.Errorf("session %s: %w", t.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}
