package territory

import (
	"errors"
	"fmt"
)

// Strategy selects the partitioning algorithm.
type Strategy string

const (
	// StrategyRegion grows contiguous, weight-balanced regions over the adjacency graph.
	StrategyRegion Strategy = "region"
	// StrategyGrid splits the bounding box into equal rectangles, one per representative.
	StrategyGrid Strategy = "grid"
)

const (
	DefaultThresholdMeters      = 200.0
	DefaultMaxImprovementPasses = 50
	DefaultHullBufferMeters     = 20.0
	DefaultPointBufferMeters    = 50.0
)

var (
	ErrDuplicateUnitID = errors.New("duplicate unit id")
	ErrInvalidOptions  = errors.New("invalid options")
)

// Options tunes an assignment run. Zero values select the defaults.
type Options struct {
	// ThresholdMeters is the maximum centroid distance for two units to be neighbors.
	ThresholdMeters float64 `json:"threshold_meters,omitempty" yaml:"threshold_meters"`
	// DoImprovement enables the boundary-swap pass. Nil means enabled.
	DoImprovement        *bool    `json:"do_improvement,omitempty" yaml:"do_improvement"`
	MaxImprovementPasses int      `json:"max_improvement_passes,omitempty" yaml:"max_improvement_passes"`
	HullBufferMeters     float64  `json:"hull_buffer_meters,omitempty" yaml:"hull_buffer_meters"`
	PointBufferMeters    float64  `json:"point_buffer_meters,omitempty" yaml:"point_buffer_meters"`
	Strategy             Strategy `json:"strategy,omitempty" yaml:"strategy"`
}

// DefaultOptions returns the options used when nothing is overridden.
func DefaultOptions() Options {
	improve := true
	return Options{
		ThresholdMeters:      DefaultThresholdMeters,
		DoImprovement:        &improve,
		MaxImprovementPasses: DefaultMaxImprovementPasses,
		HullBufferMeters:     DefaultHullBufferMeters,
		PointBufferMeters:    DefaultPointBufferMeters,
		Strategy:             StrategyRegion,
	}
}

// Improve reports whether the local improvement pass runs.
func (o Options) Improve() bool {
	return o.DoImprovement == nil || *o.DoImprovement
}

// resolve validates o and fills unset fields from DefaultOptions.
func (o Options) resolve() (Options, error) {
	if o.ThresholdMeters < 0 || o.HullBufferMeters < 0 || o.PointBufferMeters < 0 {
		return o, fmt.Errorf("%w: distances must not be negative", ErrInvalidOptions)
	}
	if o.MaxImprovementPasses < 0 {
		return o, fmt.Errorf("%w: max improvement passes must not be negative", ErrInvalidOptions)
	}

	d := DefaultOptions()
	if o.ThresholdMeters == 0 {
		o.ThresholdMeters = d.ThresholdMeters
	}
	if o.DoImprovement == nil {
		o.DoImprovement = d.DoImprovement
	}
	if o.MaxImprovementPasses == 0 {
		o.MaxImprovementPasses = d.MaxImprovementPasses
	}
	if o.HullBufferMeters == 0 {
		o.HullBufferMeters = d.HullBufferMeters
	}
	if o.PointBufferMeters == 0 {
		o.PointBufferMeters = d.PointBufferMeters
	}

	switch o.Strategy {
	case "":
		o.Strategy = d.Strategy
	case StrategyRegion, StrategyGrid:
	default:
		return o, fmt.Errorf("%w: unknown strategy %q", ErrInvalidOptions, o.Strategy)
	}

	return o, nil
}
