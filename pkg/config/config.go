package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Default simulation parameters. These are layout tuning constants, not
// user-facing flags; the YAML file exists so deployments can retune them
// without a rebuild.
const (
	DefaultAlphaStart        = 1.0
	DefaultAlphaMin          = 0.05
	DefaultAlphaDecay        = 0.0228
	DefaultVelocityDecay     = 0.4
	DefaultChargeStrength    = -400.0
	DefaultCenterStrengthX   = 0.03
	DefaultCenterStrengthY   = 0.03
	DefaultCollisionRadius   = 25.0
	DefaultLinkDistance      = 45.0
	DefaultLinkStrength      = 0.5
	DefaultTypicalEdgeLength = 45.0
	DefaultPrecomputeTicks   = 300
	DefaultTicksPerRender    = 10
	DefaultFrameIntervalMS   = 16
)

var validate = validator.New()

// LayoutConfig holds every tunable the simulation consumes.
type LayoutConfig struct {
	// AlphaStart is the simulation energy after a (re)start.
	AlphaStart float64 `yaml:"alpha_start" validate:"gt=0,lte=1"`
	// AlphaMin is the convergence floor; the simulation stops once alpha
	// drops below it.
	AlphaMin float64 `yaml:"alpha_min" validate:"gt=0"`
	// AlphaDecay is the fraction of alpha lost per tick.
	AlphaDecay float64 `yaml:"alpha_decay" validate:"gt=0,lt=1"`
	// VelocityDecay is the fraction of velocity lost per tick, keeping
	// the system dissipative so it settles.
	VelocityDecay float64 `yaml:"velocity_decay" validate:"gt=0,lt=1"`

	// ChargeStrength is the many-body force constant; negative repels.
	ChargeStrength  float64 `yaml:"charge_strength" validate:"lt=0"`
	CenterStrengthX float64 `yaml:"center_strength_x" validate:"gte=0,lte=1"`
	CenterStrengthY float64 `yaml:"center_strength_y" validate:"gte=0,lte=1"`
	// CollisionRadius is the disc radius used to keep node glyphs from
	// overlapping.
	CollisionRadius float64 `yaml:"collision_radius" validate:"gte=0"`
	// LinkDistance is the target distance between linked nodes.
	LinkDistance float64 `yaml:"link_distance" validate:"gt=0"`
	LinkStrength float64 `yaml:"link_strength" validate:"gt=0,lte=1"`
	// TypicalEdgeLength sizes the initial seeding circle.
	TypicalEdgeLength float64 `yaml:"typical_edge_length" validate:"gt=0"`

	// PrecomputeTicks is the synchronous burst length used to produce a
	// reasonable first frame before the graph is shown.
	PrecomputeTicks int `yaml:"precompute_ticks" validate:"gte=0"`
	// TicksPerRender is the number of sub-steps per animation frame.
	TicksPerRender int `yaml:"ticks_per_render" validate:"gte=1"`
	// FrameIntervalMS is the delay between automatic frames, in
	// milliseconds (yaml.v3 has no native duration syntax).
	FrameIntervalMS int `yaml:"frame_interval_ms" validate:"gte=1"`
}

// FrameInterval returns the frame delay as a duration.
func (c *LayoutConfig) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

// Default returns the layout configuration used when no file is given.
func Default() *LayoutConfig {
	return &LayoutConfig{
		AlphaStart:        DefaultAlphaStart,
		AlphaMin:          DefaultAlphaMin,
		AlphaDecay:        DefaultAlphaDecay,
		VelocityDecay:     DefaultVelocityDecay,
		ChargeStrength:    DefaultChargeStrength,
		CenterStrengthX:   DefaultCenterStrengthX,
		CenterStrengthY:   DefaultCenterStrengthY,
		CollisionRadius:   DefaultCollisionRadius,
		LinkDistance:      DefaultLinkDistance,
		LinkStrength:      DefaultLinkStrength,
		TypicalEdgeLength: DefaultTypicalEdgeLength,
		PrecomputeTicks:   DefaultPrecomputeTicks,
		TicksPerRender:    DefaultTicksPerRender,
		FrameIntervalMS:   DefaultFrameIntervalMS,
	}
}

// Load reads a YAML config file on top of the defaults and validates the
// result.
func Load(path string) (*LayoutConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse layout config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func Save(path string, cfg *LayoutConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks field constraints plus cross-field invariants.
func (c *LayoutConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.AlphaMin >= c.AlphaStart {
		return fmt.Errorf("alpha_min %g must be below alpha_start %g", c.AlphaMin, c.AlphaStart)
	}
	return nil
}
