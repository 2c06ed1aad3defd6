package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dpup/territory-planner/server/internal/lib/territory"
	"github.com/dpup/territory-planner/server/internal/lib/tracking"
)

// Config represents the application configuration. Listener settings belong to
// prefab and are read by it directly.
type Config struct {
	Territory TerritoryConfig `yaml:"territory"`
	Cache     CacheConfig     `yaml:"cache"`
	Tracking  TrackingConfig  `yaml:"tracking"`
}

// TerritoryConfig holds the engine defaults and request limits
type TerritoryConfig struct {
	ThresholdMeters      float64 `yaml:"threshold_meters"`
	DoImprovement        bool    `yaml:"do_improvement"`
	MaxImprovementPasses int     `yaml:"max_improvement_passes"`
	HullBufferMeters     float64 `yaml:"hull_buffer_meters"`
	PointBufferMeters    float64 `yaml:"point_buffer_meters"`
	Strategy             string  `yaml:"strategy"`

	// Pair scanning is quadratic, so requests are capped.
	MaxUnits int `yaml:"max_units"`
	MaxReps  int `yaml:"max_reps"`
}

// CacheConfig holds assignment memoization settings
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled"`
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// TrackingConfig holds live location classification settings
type TrackingConfig struct {
	NearbyMeters float64 `yaml:"nearby_meters"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Territory: TerritoryConfig{
			ThresholdMeters:      territory.DefaultThresholdMeters,
			DoImprovement:        true,
			MaxImprovementPasses: territory.DefaultMaxImprovementPasses,
			HullBufferMeters:     territory.DefaultHullBufferMeters,
			PointBufferMeters:    territory.DefaultPointBufferMeters,
			Strategy:             string(territory.StrategyRegion),
			MaxUnits:             5000,
			MaxReps:              200,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             30 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
		Tracking: TrackingConfig{
			NearbyMeters: tracking.DefaultNearbyMeters,
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine or server cannot run with
func (c *Config) Validate() error {
	var errs []error

	t := c.Territory
	if t.ThresholdMeters < 0 || t.HullBufferMeters < 0 || t.PointBufferMeters < 0 {
		errs = append(errs, errors.New("territory distances must not be negative"))
	}
	if t.MaxImprovementPasses < 0 {
		errs = append(errs, errors.New("territory.max_improvement_passes must not be negative"))
	}
	switch territory.Strategy(t.Strategy) {
	case "", territory.StrategyRegion, territory.StrategyGrid:
	default:
		errs = append(errs, fmt.Errorf("territory.strategy %q is not one of region, grid", t.Strategy))
	}
	if t.MaxUnits < 0 || t.MaxReps < 0 {
		errs = append(errs, errors.New("territory limits must not be negative"))
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive when the cache is enabled"))
	}
	if c.Cache.CleanupInterval < 0 {
		errs = append(errs, errors.New("cache.cleanup_interval must not be negative"))
	}
	if c.Tracking.NearbyMeters < 0 {
		errs = append(errs, errors.New("tracking.nearby_meters must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Options converts the territory section to engine options
func (t TerritoryConfig) Options() territory.Options {
	improve := t.DoImprovement
	return territory.Options{
		ThresholdMeters:      t.ThresholdMeters,
		DoImprovement:        &improve,
		MaxImprovementPasses: t.MaxImprovementPasses,
		HullBufferMeters:     t.HullBufferMeters,
		PointBufferMeters:    t.PointBufferMeters,
		Strategy:             territory.Strategy(t.Strategy),
	}
}
