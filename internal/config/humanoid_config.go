// File: internal/config/humanoid_config.go
// This file defines the HumanoidConfig struct, which contains all the tunable
// parameters for the humanoid interaction engine. These settings control the
// motion planner (segmentation, overshoot, curvature, sampling), the timing
// model, and the per-gesture defaults used when a call omits an option.
//
// The configuration is loaded through Viper alongside the rest of the
// application config, so every range can be changed from YAML or the
// environment without touching code.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// HumanoidConfig holds the motion and timing parameters of one humanoid session.
type HumanoidConfig struct {
	// Seed fixes the session's random source. Zero means seed from the clock.
	Seed  int64 `mapstructure:"seed" yaml:"seed"`
	Debug bool  `mapstructure:"debug" yaml:"debug"`

	// Initial pointer placement bounds.
	ViewportWidth  float64 `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight float64 `mapstructure:"viewport_height" yaml:"viewport_height"`

	// Segmentation
	SegmentProbability float64 `mapstructure:"segment_probability" yaml:"segment_probability"`
	MaxHops            int     `mapstructure:"max_hops" yaml:"max_hops"`
	WaypointMinT       float64 `mapstructure:"waypoint_min_t" yaml:"waypoint_min_t"`
	WaypointMaxT       float64 `mapstructure:"waypoint_max_t" yaml:"waypoint_max_t"`
	WaypointJitter     float64 `mapstructure:"waypoint_jitter" yaml:"waypoint_jitter"`

	// Overshoot
	OvershootProbability float64 `mapstructure:"overshoot_probability" yaml:"overshoot_probability"`
	OvershootMin         float64 `mapstructure:"overshoot_min" yaml:"overshoot_min"`
	OvershootMax         float64 `mapstructure:"overshoot_max" yaml:"overshoot_max"`

	// Curvature
	ControlPointJitter float64 `mapstructure:"control_point_jitter" yaml:"control_point_jitter"`
	CorrectionJitter   float64 `mapstructure:"correction_jitter" yaml:"correction_jitter"`

	// Primary sub-path sampling
	StepsMin     int           `mapstructure:"steps_min" yaml:"steps_min"`
	StepsMax     int           `mapstructure:"steps_max" yaml:"steps_max"`
	StepDelayMin time.Duration `mapstructure:"step_delay_min" yaml:"step_delay_min"`
	StepDelayMax time.Duration `mapstructure:"step_delay_max" yaml:"step_delay_max"`

	// Corrective sub-path sampling
	CorrectionStepsMin int           `mapstructure:"correction_steps_min" yaml:"correction_steps_min"`
	CorrectionStepsMax int           `mapstructure:"correction_steps_max" yaml:"correction_steps_max"`
	CorrectionDelayMin time.Duration `mapstructure:"correction_delay_min" yaml:"correction_delay_min"`
	CorrectionDelayMax time.Duration `mapstructure:"correction_delay_max" yaml:"correction_delay_max"`

	// Re-aim pause between hops
	HopPauseMin time.Duration `mapstructure:"hop_pause_min" yaml:"hop_pause_min"`
	HopPauseMax time.Duration `mapstructure:"hop_pause_max" yaml:"hop_pause_max"`

	// TargetBand is the fraction of an element's width/height the destination is drawn from.
	TargetBand float64 `mapstructure:"target_band" yaml:"target_band"`

	// Gesture defaults (used when a call leaves the option unset).
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PredelayMin     time.Duration `mapstructure:"predelay_min" yaml:"predelay_min"`
	PredelayMax     time.Duration `mapstructure:"predelay_max" yaml:"predelay_max"`
	DelayMin        time.Duration `mapstructure:"delay_min" yaml:"delay_min"`
	DelayMax        time.Duration `mapstructure:"delay_max" yaml:"delay_max"`
	WaitMin         time.Duration `mapstructure:"wait_min" yaml:"wait_min"`
	WaitMax         time.Duration `mapstructure:"wait_max" yaml:"wait_max"`
	TypeMode        string        `mapstructure:"type_mode" yaml:"type_mode"`
	PostDelayChance float64       `mapstructure:"post_delay_chance" yaml:"post_delay_chance"`
	PostDelayMin    time.Duration `mapstructure:"post_delay_min" yaml:"post_delay_min"`
	PostDelayMax    time.Duration `mapstructure:"post_delay_max" yaml:"post_delay_max"`
}

// setHumanoidDefaults registers the humanoid defaults on a viper instance.
func setHumanoidDefaults(v *viper.Viper) {
	v.SetDefault("humanoid.seed", 0)
	v.SetDefault("humanoid.debug", false)
	v.SetDefault("humanoid.viewport_width", 1280.0)
	v.SetDefault("humanoid.viewport_height", 1280.0)

	v.SetDefault("humanoid.segment_probability", 0.35)
	v.SetDefault("humanoid.max_hops", 3)
	v.SetDefault("humanoid.waypoint_min_t", 0.3)
	v.SetDefault("humanoid.waypoint_max_t", 0.7)
	v.SetDefault("humanoid.waypoint_jitter", 15.0)

	v.SetDefault("humanoid.overshoot_probability", 0.5)
	v.SetDefault("humanoid.overshoot_min", 20.0)
	v.SetDefault("humanoid.overshoot_max", 120.0)

	v.SetDefault("humanoid.control_point_jitter", 30.0)
	v.SetDefault("humanoid.correction_jitter", 4.0)

	v.SetDefault("humanoid.steps_min", 40)
	v.SetDefault("humanoid.steps_max", 70)
	v.SetDefault("humanoid.step_delay_min", "1ms")
	v.SetDefault("humanoid.step_delay_max", "15ms")

	v.SetDefault("humanoid.correction_steps_min", 15)
	v.SetDefault("humanoid.correction_steps_max", 25)
	v.SetDefault("humanoid.correction_delay_min", "4ms")
	v.SetDefault("humanoid.correction_delay_max", "10ms")

	v.SetDefault("humanoid.hop_pause_min", "150ms")
	v.SetDefault("humanoid.hop_pause_max", "400ms")

	v.SetDefault("humanoid.target_band", 0.8)

	v.SetDefault("humanoid.timeout", "10s")
	v.SetDefault("humanoid.predelay_min", "80ms")
	v.SetDefault("humanoid.predelay_max", "350ms")
	v.SetDefault("humanoid.delay_min", "40ms")
	v.SetDefault("humanoid.delay_max", "120ms")
	v.SetDefault("humanoid.wait_min", "100ms")
	v.SetDefault("humanoid.wait_max", "200ms")
	v.SetDefault("humanoid.type_mode", "gaussian")
	v.SetDefault("humanoid.post_delay_chance", 0.0)
	v.SetDefault("humanoid.post_delay_min", "0s")
	v.SetDefault("humanoid.post_delay_max", "0s")
}

// DefaultHumanoidConfig returns the humanoid section of the default configuration.
func DefaultHumanoidConfig() HumanoidConfig {
	return NewDefaultConfig().HumanoidCfg
}

// Validate checks that every range is ordered and every probability is in [0, 1].
func (h *HumanoidConfig) Validate() error {
	for name, p := range map[string]float64{
		"segment_probability":   h.SegmentProbability,
		"overshoot_probability": h.OvershootProbability,
		"post_delay_chance":     h.PostDelayChance,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be between 0.0 and 1.0", name)
		}
	}
	if h.TargetBand <= 0 || h.TargetBand > 1 {
		return fmt.Errorf("target_band must be in (0.0, 1.0]")
	}
	if h.MaxHops < 1 {
		return fmt.Errorf("max_hops must be at least 1")
	}
	if h.WaypointMinT < 0 || h.WaypointMaxT > 1 || h.WaypointMinT > h.WaypointMaxT {
		return fmt.Errorf("waypoint_min_t and waypoint_max_t must be an ordered range within [0, 1]")
	}
	if h.StepsMin < 1 || h.StepsMin > h.StepsMax {
		return fmt.Errorf("steps_min must be positive and not exceed steps_max")
	}
	if h.CorrectionStepsMin < 1 || h.CorrectionStepsMin > h.CorrectionStepsMax {
		return fmt.Errorf("correction_steps_min must be positive and not exceed correction_steps_max")
	}
	if h.OvershootMin < 0 || h.OvershootMin > h.OvershootMax {
		return fmt.Errorf("overshoot_min must be non-negative and not exceed overshoot_max")
	}
	if h.ViewportWidth <= 0 || h.ViewportHeight <= 0 {
		return fmt.Errorf("viewport_width and viewport_height must be positive")
	}
	for name, r := range map[string][2]time.Duration{
		"step_delay":       {h.StepDelayMin, h.StepDelayMax},
		"correction_delay": {h.CorrectionDelayMin, h.CorrectionDelayMax},
		"hop_pause":        {h.HopPauseMin, h.HopPauseMax},
		"predelay":         {h.PredelayMin, h.PredelayMax},
		"delay":            {h.DelayMin, h.DelayMax},
		"wait":             {h.WaitMin, h.WaitMax},
		"post_delay":       {h.PostDelayMin, h.PostDelayMax},
	} {
		if r[0] < 0 || r[0] > r[1] {
			return fmt.Errorf("%s_min must be non-negative and not exceed %s_max", name, name)
		}
	}
	if h.Timeout <= 0 {
		return fmt.Errorf("timeout must be a positive duration")
	}
	switch h.TypeMode {
	case "", "uniform", "gaussian":
	default:
		return fmt.Errorf("type_mode must be 'uniform' or 'gaussian', got %q", h.TypeMode)
	}
	return nil
}
