// internal/script/script.go

// Package script loads declarative gesture scripts and runs them against humanoid sessions.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/itw-creative-works/puppeteer-profiles/internal/humanoid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Action names a step type.
type Action string

const (
	ActionNavigate Action = "navigate"
	ActionMove     Action = "move"
	ActionClick    Action = "click"
	ActionType     Action = "type"
	ActionPress    Action = "press"
	ActionScroll   Action = "scroll"
	ActionWait     Action = "wait"
	ActionSetDebug Action = "setDebug"
	ActionRepeat   Action = "repeat"
)

// IndexPlaceholder is replaced with the 1-based iteration number inside a repeat block.
const IndexPlaceholder = "{{index}}"

// ErrInvalidScript is wrapped by every validation failure.
var ErrInvalidScript = errors.New("invalid script")

// Script is a named list of steps, optionally preceded by a navigation.
type Script struct {
	Name  string `yaml:"name" json:"name"`
	URL   string `yaml:"url,omitempty" json:"url,omitempty"`
	Debug bool   `yaml:"debug,omitempty" json:"debug,omitempty"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Step is one gesture. Which fields apply depends on Action:
//
//	navigate  URL
//	move      Selector, or X and Y
//	click     Selector
//	type      Text
//	press     Key (a combo such as "Ctrl+a" is allowed)
//	scroll    Selector
//	wait      bounds from options minDelay/maxDelay; none means the configured range
//	setDebug  Enabled
//	repeat    Times, Steps
type Step struct {
	Action   Action                 `yaml:"action" json:"action"`
	Selector string                 `yaml:"selector,omitempty" json:"selector,omitempty"`
	URL      string                 `yaml:"url,omitempty" json:"url,omitempty"`
	Text     string                 `yaml:"text,omitempty" json:"text,omitempty"`
	Key      string                 `yaml:"key,omitempty" json:"key,omitempty"`
	X        *float64               `yaml:"x,omitempty" json:"x,omitempty"`
	Y        *float64               `yaml:"y,omitempty" json:"y,omitempty"`
	Enabled  *bool                  `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Times    int                    `yaml:"times,omitempty" json:"times,omitempty"`
	Steps    []Step                 `yaml:"steps,omitempty" json:"steps,omitempty"`
	Options  map[string]interface{} `yaml:"options,omitempty" json:"options,omitempty"`
}

// Load reads a script from a .yaml, .yml or .json file and validates it.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: reading '%s': %w", path, err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("script: '%s': %w", path, err)
	}
	return s, nil
}

// Parse decodes data in the given format ("yaml", "yml" or "json") and validates it.
func Parse(data []byte, format string) (*Script, error) {
	var s Script
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported script format '%s'", format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every step carries the fields its action needs and that its
// options decode.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScript)
	}
	return validateSteps(s.Steps, "steps")
}

func validateSteps(steps []Step, path string) error {
	for i, st := range steps {
		where := path + "[" + strconv.Itoa(i) + "]"
		if err := st.validate(); err != nil {
			return fmt.Errorf("%w: %s (%s): %v", ErrInvalidScript, where, st.Action, err)
		}
		if st.Action == ActionRepeat {
			if err := validateSteps(st.Steps, where+".steps"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (st Step) validate() error {
	switch st.Action {
	case ActionNavigate:
		if st.URL == "" {
			return errors.New("url is required")
		}
	case ActionMove:
		if st.Selector == "" && (st.X == nil || st.Y == nil) {
			return errors.New("selector or both x and y are required")
		}
	case ActionClick, ActionScroll:
		if st.Selector == "" {
			return errors.New("selector is required")
		}
	case ActionType:
		if st.Text == "" {
			return errors.New("text is required")
		}
	case ActionPress:
		if _, err := humanoid.ParseKeyCombo(st.Key); err != nil {
			return err
		}
	case ActionWait:
	case ActionSetDebug:
		if st.Enabled == nil {
			return errors.New("enabled is required")
		}
	case ActionRepeat:
		if st.Times < 1 {
			return errors.New("times must be at least 1")
		}
		if len(st.Steps) == 0 {
			return errors.New("steps are required")
		}
	case "":
		return errors.New("action is required")
	default:
		return fmt.Errorf("unknown action '%s'", st.Action)
	}
	if _, err := humanoid.DecodeOptions(st.Options); err != nil {
		return err
	}
	return nil
}

// expand substitutes the repeat index into every string the step carries.
func (st Step) expand(index int) Step {
	n := strconv.Itoa(index)
	sub := func(s string) string { return strings.ReplaceAll(s, IndexPlaceholder, n) }

	out := st
	out.Selector = sub(st.Selector)
	out.URL = sub(st.URL)
	out.Text = sub(st.Text)
	out.Key = sub(st.Key)
	if st.Options != nil {
		out.Options = make(map[string]interface{}, len(st.Options))
		for k, v := range st.Options {
			if s, ok := v.(string); ok {
				v = sub(s)
			}
			out.Options[k] = v
		}
	}
	// Nested repeats keep their own placeholder for their own index.
	return out
}
