// internal/humanoid/options.go
package humanoid

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// InteractionOptions configures a single gesture. Nil pointers and zero values mean
// "use the session default". Durations decoded from maps accept either a number of
// milliseconds or a Go duration string.
type InteractionOptions struct {
	Timeout *time.Duration `mapstructure:"timeout" json:"timeout,omitempty" yaml:"timeout,omitempty"`

	MinPredelay *time.Duration `mapstructure:"minPredelay" json:"minPredelay,omitempty" yaml:"minPredelay,omitempty"`
	MaxPredelay *time.Duration `mapstructure:"maxPredelay" json:"maxPredelay,omitempty" yaml:"maxPredelay,omitempty"`
	MinDelay    *time.Duration `mapstructure:"minDelay" json:"minDelay,omitempty" yaml:"minDelay,omitempty"`
	MaxDelay    *time.Duration `mapstructure:"maxDelay" json:"maxDelay,omitempty" yaml:"maxDelay,omitempty"`

	// Hold bounds the press-to-release interval of a click; unset falls back to Min/MaxDelay.
	MinHold *time.Duration `mapstructure:"minHold" json:"minHold,omitempty" yaml:"minHold,omitempty"`
	MaxHold *time.Duration `mapstructure:"maxHold" json:"maxHold,omitempty" yaml:"maxHold,omitempty"`

	MinPostdelay    *time.Duration `mapstructure:"minPostdelay" json:"minPostdelay,omitempty" yaml:"minPostdelay,omitempty"`
	MaxPostdelay    *time.Duration `mapstructure:"maxPostdelay" json:"maxPostdelay,omitempty" yaml:"maxPostdelay,omitempty"`
	PostDelayChance *float64       `mapstructure:"postDelayChance" json:"postDelayChance,omitempty" yaml:"postDelayChance,omitempty"`

	Mode     Mode      `mapstructure:"mode" json:"mode,omitempty" yaml:"mode,omitempty"`
	Quantity int       `mapstructure:"quantity" json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Move     *bool     `mapstructure:"move" json:"move,omitempty" yaml:"move,omitempty"`
	Scroll   *bool     `mapstructure:"scroll" json:"scroll,omitempty" yaml:"scroll,omitempty"`
	Log      LogOption `mapstructure:"log" json:"log,omitempty" yaml:"log,omitempty"`
	Debug    *bool     `mapstructure:"debug" json:"debug,omitempty" yaml:"debug,omitempty"`
}

// LogOption is the decoded form of the `log` key: either a message to print or a plain flag.
type LogOption struct {
	Enabled bool
	Message string
}

// LogMessage returns an enabled LogOption carrying msg.
func LogMessage(msg string) LogOption {
	return LogOption{Enabled: msg != "", Message: msg}
}

// Duration, Bool and Float return pointers for literal option values.
func Duration(d time.Duration) *time.Duration { return &d }
func Bool(b bool) *bool                      { return &b }
func Float(f float64) *float64               { return &f }

// DecodeOptions builds InteractionOptions from a generic map, as read from a script or JSON.
// Unrecognized keys are ignored.
func DecodeOptions(raw map[string]interface{}) (*InteractionOptions, error) {
	var opts InteractionOptions
	if len(raw) == 0 {
		return &opts, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			millisecondDurationHook(),
			logOptionHook(),
		),
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return nil, fmt.Errorf("humanoid: building option decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("humanoid: decoding options: %w", err)
	}

	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	opts.Mode = mode
	if opts.Quantity < 0 {
		return nil, fmt.Errorf("humanoid: quantity must be at least 1, got %d", opts.Quantity)
	}
	return &opts, nil
}

// millisecondDurationHook decodes bare numbers as milliseconds and strings as either
// a number of milliseconds or a time.ParseDuration value.
func millisecondDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType {
			return data, nil
		}
		switch v := data.(type) {
		case int:
			return time.Duration(v) * time.Millisecond, nil
		case int64:
			return time.Duration(v) * time.Millisecond, nil
		case uint64:
			return time.Duration(v) * time.Millisecond, nil
		case float64:
			return time.Duration(v * float64(time.Millisecond)), nil
		case string:
			s := strings.TrimSpace(v)
			if ms, err := strconv.ParseFloat(s, 64); err == nil {
				return time.Duration(ms * float64(time.Millisecond)), nil
			}
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("invalid duration '%s'", v)
			}
			return d, nil
		}
		return data, nil
	}
}

// logOptionHook accepts a bool or a string for the `log` key.
func logOptionHook() mapstructure.DecodeHookFuncType {
	logType := reflect.TypeOf(LogOption{})
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != logType {
			return data, nil
		}
		switch v := data.(type) {
		case nil:
			return LogOption{}, nil
		case bool:
			return LogOption{Enabled: v}, nil
		case string:
			return LogMessage(v), nil
		}
		return data, nil
	}
}

// gestureParams is InteractionOptions with every default resolved.
type gestureParams struct {
	timeout                  time.Duration
	predelayMin, predelayMax time.Duration
	delayMin, delayMax       time.Duration
	holdMin, holdMax         time.Duration
	postMin, postMax         time.Duration
	postChance               float64
	mode                     Mode
	quantity                 int
	move, scroll, debug      bool
	log                      LogOption
}

// resolve fills unset options from the session configuration. defaultMode applies
// when the call does not name a distribution.
func (h *Humanoid) resolve(opts *InteractionOptions, defaultMode Mode) gestureParams {
	if opts == nil {
		opts = &InteractionOptions{}
	}
	cfg := h.cfg

	p := gestureParams{
		timeout:     durationOr(opts.Timeout, cfg.Timeout),
		predelayMin: durationOr(opts.MinPredelay, cfg.PredelayMin),
		predelayMax: durationOr(opts.MaxPredelay, cfg.PredelayMax),
		delayMin:    durationOr(opts.MinDelay, cfg.DelayMin),
		delayMax:    durationOr(opts.MaxDelay, cfg.DelayMax),
		postMin:     durationOr(opts.MinPostdelay, cfg.PostDelayMin),
		postMax:     durationOr(opts.MaxPostdelay, cfg.PostDelayMax),
		postChance:  cfg.PostDelayChance,
		mode:        opts.Mode,
		quantity:    opts.Quantity,
		move:        boolOr(opts.Move, true),
		scroll:      boolOr(opts.Scroll, true),
		debug:       boolOr(opts.Debug, h.debug),
		log:         opts.Log,
	}
	p.holdMin = durationOr(opts.MinHold, p.delayMin)
	p.holdMax = durationOr(opts.MaxHold, p.delayMax)
	if opts.PostDelayChance != nil {
		p.postChance = *opts.PostDelayChance
	}
	if p.mode == "" {
		p.mode = defaultMode
	}
	if p.quantity < 1 {
		p.quantity = 1
	}
	return p
}

func durationOr(v *time.Duration, def time.Duration) time.Duration {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
