package territory

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/dpup/territory-planner/server/internal/lib/geo"
)

// Assign partitions units into one territory per representative. The result
// lists territories in repIDs order. With no units the result is empty and
// perfectly balanced; with no representatives it is empty with a balance score
// of 0. Every unit ends up in exactly one territory otherwise.
//
// Assign is deterministic and holds no state between calls.
func Assign(units []Unit, repIDs []ID, opts Options) (*Result, error) {
	opts, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	if err := checkUniqueIDs(units); err != nil {
		return nil, err
	}

	if len(units) == 0 {
		return &Result{Territories: []TerritoryResult{}, BalanceScore: 1}, nil
	}
	if len(repIDs) == 0 {
		return &Result{Territories: []TerritoryResult{}, BalanceScore: 0}, nil
	}

	numReps := len(repIDs)
	if numReps == 1 {
		p := newPartition(len(units), 1)
		for i, u := range units {
			p.assign(i, 0, u.EffectiveWeight())
		}
		return buildResult(units, repIDs, p, opts, nil), nil
	}

	if opts.Strategy == StrategyGrid {
		p, cells := gridPartition(units, numReps)
		return buildResult(units, repIDs, p, opts, cells), nil
	}

	g := BuildGraph(units, opts.ThresholdMeters)
	seeds := SelectSeeds(units, numReps)
	p := GrowRegions(units, g, seeds, numReps)

	swaps := 0
	if opts.Improve() {
		swaps = Improve(p, g, units, opts.MaxImprovementPasses)
	}

	result := buildResult(units, repIDs, p, opts, nil)
	result.Swaps = swaps
	return result, nil
}

// BalanceScore is 1 minus the largest relative deviation of any weight from
// total/len(weights), floored at 0. No weights score 0; a zero target scores 1.
func BalanceScore(weights []float64, total float64) float64 {
	if len(weights) == 0 {
		return 0
	}
	target := total / float64(len(weights))
	if target <= 0 {
		return 1
	}

	var maxDeviation float64
	for _, w := range weights {
		maxDeviation = math.Max(maxDeviation, math.Abs(w-target)/target)
	}
	return math.Max(0, 1-maxDeviation)
}

func checkUniqueIDs(units []Unit) error {
	// 7 and "7" name the same unit
	seen := make(map[string]struct{}, len(units))
	for _, u := range units {
		if _, ok := seen[u.ID.String()]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateUnitID, u.ID)
		}
		seen[u.ID.String()] = struct{}{}
	}
	return nil
}

// buildResult turns a partition into territory results. Grid cells, when given,
// replace the computed shapes.
func buildResult(units []Unit, repIDs []ID, p *Partition, opts Options, cells []gridCell) *Result {
	result := &Result{
		Territories: make([]TerritoryResult, len(repIDs)),
		TotalWeight: p.TotalWeight(),
	}

	for t, rep := range repIDs {
		members := p.Members[t]
		tr := TerritoryResult{
			RepID:   rep,
			UnitIDs: make([]ID, 0, len(members)),
			Weight:  p.Weights[t],
		}

		var points []orb.Point
		for _, m := range members {
			tr.UnitIDs = append(tr.UnitIDs, units[m].ID)
			if units[m].Located() {
				points = append(points, units[m].point())
			}
		}

		var polygon orb.Polygon
		var bounds *geo.Bounds
		if cells != nil {
			polygon = cells[t].polygon()
			bounds = cellBounds(cells[t])
		} else {
			polygon = ShapeOf(points, opts)
			bounds = geo.BoundsOf(polygon)
		}

		if polygon != nil {
			tr.Polygon = geojson.NewGeometry(polygon)
			tr.Bounds = bounds
			tr.Outline = outline(polygon)
		}
		result.Territories[t] = tr
	}

	result.BalanceScore = BalanceScore(p.Weights, result.TotalWeight)
	return result
}

func outline(polygon orb.Polygon) string {
	encoded, err := geo.NewGeoUtils().EncodePolyline(geo.RingToPolyline(polygon[0]).Points)
	if err != nil {
		return ""
	}
	return encoded
}
