// internal/script/runner_test.go
package script

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/itw-creative-works/puppeteer-profiles/internal/humanoid"
)

func TestRunnerDispatch(t *testing.T) {
	ctrl := new(mockController)
	nav := &recordingNavigator{}
	runner := NewRunner(zaptest.NewLogger(t), ctrl, nav)

	s, err := Parse([]byte(`{
		"name": "dispatch",
		"url": "https://example.test/",
		"debug": true,
		"steps": [
			{"action": "navigate", "url": "https://example.test/form"},
			{"action": "move", "selector": "#name"},
			{"action": "move", "x": 5, "y": 6},
			{"action": "click", "selector": "#name", "options": {"minHold": 30, "maxHold": 30}},
			{"action": "type", "text": "alice"},
			{"action": "press", "key": "Tab", "options": {"quantity": 2}},
			{"action": "scroll", "selector": "#footer"},
			{"action": "wait", "options": {"minDelay": 1000, "maxDelay": 1500, "log": true}},
			{"action": "wait"},
			{"action": "wait", "options": {"minDelay": 0, "maxDelay": 0}},
			{"action": "setDebug", "enabled": false}
		]
	}`), "json")
	require.NoError(t, err)

	ctrl.On("SetDebug", true).Once()
	ctrl.On("MoveTo", mock.Anything, "#name", mock.Anything).Return(nil).Once()
	ctrl.On("MoveToVector", mock.Anything, humanoid.Vector2D{X: 5, Y: 6}, mock.Anything).Return(nil).Once()
	ctrl.On("Click", mock.Anything, "#name", mock.MatchedBy(func(o *humanoid.InteractionOptions) bool {
		return o.MinHold != nil && *o.MinHold == 30*time.Millisecond
	})).Return(nil).Once()
	ctrl.On("Type", mock.Anything, "alice", mock.Anything).Return(nil).Once()
	ctrl.On("Press", mock.Anything, "Tab", mock.MatchedBy(func(o *humanoid.InteractionOptions) bool {
		return o.Quantity == 2
	})).Return(nil).Once()
	ctrl.On("Scroll", mock.Anything, "#footer", mock.Anything).Return(nil).Once()
	ctrl.On("Wait", mock.Anything, time.Second, 1500*time.Millisecond, mock.MatchedBy(func(o *humanoid.InteractionOptions) bool {
		return o.Log.Enabled
	})).Return(1200*time.Millisecond, nil).Once()
	ctrl.On("WaitDefault", mock.Anything, mock.Anything).Return(150*time.Millisecond, nil).Once()
	ctrl.On("Wait", mock.Anything, time.Duration(0), time.Duration(0), mock.Anything).Return(time.Duration(0), nil).Once()
	ctrl.On("SetDebug", false).Once()

	require.NoError(t, runner.Run(context.Background(), s))

	ctrl.AssertExpectations(t)
	assert.Equal(t, []string{"https://example.test/", "https://example.test/form"}, nav.urls)
}

func TestRunnerRepeat(t *testing.T) {
	ctrl := new(mockController)
	runner := NewRunner(zaptest.NewLogger(t), ctrl, nil)

	s, err := Parse([]byte(interactionYAML), "yaml")
	require.NoError(t, err)
	s.URL = ""
	s.Debug = false

	ctrl.On("Wait", mock.Anything, time.Second, 1500*time.Millisecond, mock.Anything).Return(time.Second, nil).Once()
	for i := 1; i <= 10; i++ {
		selector := fmt.Sprintf(`[data-node="%d"]`, i)
		label := fmt.Sprintf("Clicking node %d", i)
		ctrl.On("Click", mock.Anything, selector, mock.MatchedBy(func(o *humanoid.InteractionOptions) bool {
			return o.Log.Message == label && *o.MaxPostdelay == 4*time.Second
		})).Return(nil).Once()
	}
	ctrl.On("Press", mock.Anything, "Ctrl+a", mock.Anything).Return(nil).Once()

	require.NoError(t, runner.Run(context.Background(), s))
	ctrl.AssertExpectations(t)
}

func TestRunnerStopsOnFirstError(t *testing.T) {
	ctrl := new(mockController)
	runner := NewRunner(zaptest.NewLogger(t), ctrl, nil)

	s := &Script{Steps: []Step{
		{Action: ActionClick, Selector: "#gone"},
		{Action: ActionClick, Selector: "#never"},
	}}
	ctrl.On("Click", mock.Anything, "#gone", mock.Anything).Return(humanoid.ErrElementNotFound).Once()

	err := runner.Run(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, humanoid.ErrElementNotFound)
	assert.Contains(t, err.Error(), "steps[0] (click)")
	ctrl.AssertNotCalled(t, "Click", mock.Anything, "#never", mock.Anything)
}

func TestRunnerNavigateWithoutNavigator(t *testing.T) {
	runner := NewRunner(zaptest.NewLogger(t), new(mockController), nil)
	err := runner.Run(context.Background(), &Script{Steps: []Step{{Action: ActionNavigate, URL: "https://example.test"}}})
	assert.ErrorContains(t, err, "navigator")
}

func TestRunnerRejectsInvalidScript(t *testing.T) {
	ctrl := new(mockController)
	runner := NewRunner(nil, ctrl, nil)
	x := 3.0

	for name, s := range map[string]*Script{
		"move without target":    {Steps: []Step{{Action: ActionMove}}},
		"move with half a point": {Steps: []Step{{Action: ActionMove, X: &x}}},
		"setDebug without flag":  {Steps: []Step{{Action: ActionSetDebug}}},
		"nested":                 {Steps: []Step{{Action: ActionRepeat, Times: 2, Steps: []Step{{Action: ActionMove}}}}},
	} {
		t.Run(name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { err = runner.Run(context.Background(), s) })
			assert.ErrorIs(t, err, ErrInvalidScript)
		})
	}
	ctrl.AssertNotCalled(t, "MoveToVector", mock.Anything, mock.Anything, mock.Anything)
	ctrl.AssertNotCalled(t, "SetDebug", mock.Anything)
}

func TestRunnerHonorsCancellation(t *testing.T) {
	ctrl := new(mockController)
	runner := NewRunner(zaptest.NewLogger(t), ctrl, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runner.Run(ctx, &Script{Steps: []Step{{Action: ActionScroll, Selector: "#a"}}})
	assert.ErrorIs(t, err, context.Canceled)
	ctrl.AssertNotCalled(t, "Scroll", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunAll(t *testing.T) {
	s := &Script{Name: "pair", Steps: []Step{{Action: ActionClick, Selector: "#go"}}}

	t.Run("all succeed", func(t *testing.T) {
		var targets []Target
		var ctrls []*mockController
		for i := 0; i < 3; i++ {
			c := new(mockController)
			c.On("Click", mock.Anything, "#go", mock.Anything).Return(nil).Once()
			ctrls = append(ctrls, c)
			targets = append(targets, Target{ID: fmt.Sprintf("s%d", i), Controller: c})
		}

		require.NoError(t, RunAll(context.Background(), zaptest.NewLogger(t), s, targets))
		for _, c := range ctrls {
			c.AssertExpectations(t)
		}
	})

	t.Run("first failure cancels the rest", func(t *testing.T) {
		boom := errors.New("target crashed")

		failing := new(mockController)
		failing.On("Click", mock.Anything, "#go", mock.Anything).Return(boom).Once()

		blocked := new(mockController)
		blocked.On("Click", mock.Anything, "#go", mock.Anything).
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return(context.Canceled).Once()

		err := RunAll(context.Background(), zaptest.NewLogger(t), s, []Target{
			{ID: "blocked", Controller: blocked},
			{ID: "failing", Controller: failing},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "session failing")
	})
}
