package territory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign_Degenerate(t *testing.T) {
	units := lineUnits()

	result, err := Assign(nil, repIDs(3), Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Territories)
	assert.Equal(t, 1.0, result.BalanceScore)
	assert.Zero(t, result.TotalWeight)

	result, err = Assign(units, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Territories)
	assert.Zero(t, result.BalanceScore)
	assert.Zero(t, result.TotalWeight)
}

func TestAssign_SingleRep(t *testing.T) {
	units := append(lineUnits(), Unit{ID: StringID("lost"), Weight: ptr(3)})

	result, err := Assign(units, ids("42"), Options{})
	require.NoError(t, err)
	require.Len(t, result.Territories, 1)

	tr := result.Territories[0]
	assert.Equal(t, StringID("42"), tr.RepID)
	assert.Len(t, tr.UnitIDs, 6)
	assert.InDelta(t, 8, tr.Weight, 1e-9)
	assert.Equal(t, 1.0, result.BalanceScore)
	require.NotNil(t, tr.Polygon)
	require.NotNil(t, tr.Bounds)
	assert.NotEmpty(t, tr.Outline)
	for _, u := range units[:5] {
		assert.True(t, IsPointInTerritory(*u.CentroidLat, *u.CentroidLon, tr.Polygon), "unit %s", u.ID)
	}
}

func TestAssign_BalancesFullyAdjacentUnits(t *testing.T) {
	units := gridUnits(2, 2, 50)
	for i := range units {
		units[i] = weighted(units[i], 10)
	}

	result, err := Assign(units, repIDs(2), Options{})
	require.NoError(t, err)
	require.Len(t, result.Territories, 2)

	for _, tr := range result.Territories {
		assert.InDelta(t, 20, tr.Weight, 1e-9)
		assert.Len(t, tr.UnitIDs, 2)
	}
	assert.InDelta(t, 1.0, result.BalanceScore, 1e-9)
	assert.InDelta(t, 40, result.TotalWeight, 1e-9)
}

func TestAssign_ConservesWeightAndCoversUnits(t *testing.T) {
	units := gridUnits(5, 7, 90)
	for i := range units {
		switch i % 4 {
		case 0:
			units[i].Weight = ptr(float64(i%9) + 0.5)
		case 1:
			units[i].Weight = ptr(0)
		}
	}
	units = append(units,
		Unit{ID: StringID("lost-1"), Weight: ptr(4)},
		Unit{ID: StringID("lost-2")},
		northOf("island", 9000),
	)

	var expected float64
	for _, u := range units {
		expected += u.EffectiveWeight()
	}

	for _, strategy := range []Strategy{StrategyRegion, StrategyGrid} {
		t.Run(string(strategy), func(t *testing.T) {
			result, err := Assign(units, repIDs(4), Options{Strategy: strategy})
			require.NoError(t, err)
			require.Len(t, result.Territories, 4)

			var sum float64
			for _, tr := range result.Territories {
				sum += tr.Weight
			}
			assert.InDelta(t, expected, sum, 1e-9)
			assert.InDelta(t, expected, result.TotalWeight, 1e-9)
			requireCoverage(t, units, result)
			assert.GreaterOrEqual(t, result.BalanceScore, 0.0)
			assert.LessOrEqual(t, result.BalanceScore, 1.0)
		})
	}
}

func TestAssign_Deterministic(t *testing.T) {
	units := gridUnits(6, 6, 100)
	for i := range units {
		units[i].Weight = ptr(float64(1 + i%3))
	}

	first, err := Assign(units, repIDs(3), Options{})
	require.NoError(t, err)
	second, err := Assign(units, repIDs(3), Options{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssign_TerritoriesAreContiguous(t *testing.T) {
	units := gridUnits(6, 6, 100)
	for i := range units {
		units[i].Weight = ptr(float64(1 + (i*7)%5))
	}
	idx := indexByID(units)
	g := BuildGraph(units, DefaultThresholdMeters)
	require.Len(t, g.Components(), 1)

	for _, reps := range []int{2, 3, 5} {
		result, err := Assign(units, repIDs(reps), Options{})
		require.NoError(t, err)

		for _, tr := range result.Territories {
			members := make([]int, len(tr.UnitIDs))
			for i, id := range tr.UnitIDs {
				members[i] = idx[id]
			}
			assert.True(t, g.Connected(members), "%d reps, territory %s", reps, tr.RepID)
		}
	}
}

func TestAssign_MembersInsideOwnPolygon(t *testing.T) {
	units := append(gridUnits(6, 6, 100),
		northOf("far-1", 3000),
		northOf("far-2", 3400),
	)
	idx := indexByID(units)

	result, err := Assign(units, repIDs(4), Options{})
	require.NoError(t, err)

	for _, tr := range result.Territories {
		require.NotNil(t, tr.Polygon, "territory %s", tr.RepID)
		encoded, err := json.Marshal(tr.Polygon)
		require.NoError(t, err)

		for _, id := range tr.UnitIDs {
			u := units[idx[id]]
			assert.True(t, IsPointInTerritory(*u.CentroidLat, *u.CentroidLon, tr.Polygon), "unit %s", id)
			assert.True(t, IsPointInTerritory(*u.CentroidLat, *u.CentroidLon, string(encoded)), "unit %s (serialized)", id)
		}

		assert.LessOrEqual(t, tr.Bounds.West, tr.Bounds.East)
		assert.LessOrEqual(t, tr.Bounds.South, tr.Bounds.North)
	}
}

func TestAssign_ImprovementCanBeDisabled(t *testing.T) {
	units := gridUnits(4, 4, 100)
	off := false

	result, err := Assign(units, repIDs(3), Options{DoImprovement: &off})
	require.NoError(t, err)
	assert.Zero(t, result.Swaps)
	requireCoverage(t, units, result)
}

func TestAssign_MoreRepsThanUnits(t *testing.T) {
	units := []Unit{northOf("a", 0), northOf("b", 100)}

	result, err := Assign(units, repIDs(3), Options{})
	require.NoError(t, err)
	require.Len(t, result.Territories, 3)

	assert.Equal(t, ids("a"), result.Territories[0].UnitIDs)
	assert.Equal(t, ids("b"), result.Territories[1].UnitIDs)
	assert.Empty(t, result.Territories[2].UnitIDs)
	assert.Nil(t, result.Territories[2].Polygon)
	assert.Nil(t, result.Territories[2].Bounds)
	// target 2/3, the empty territory deviates by 100%
	assert.Zero(t, result.BalanceScore)
}

func TestAssign_Errors(t *testing.T) {
	units := []Unit{northOf("a", 0), northOf("a", 100)}
	_, err := Assign(units, repIDs(2), Options{})
	assert.ErrorIs(t, err, ErrDuplicateUnitID)

	_, err = Assign(lineUnits(), repIDs(2), Options{ThresholdMeters: -1})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = Assign(lineUnits(), repIDs(2), Options{Strategy: "voronoi"})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = Assign(lineUnits(), repIDs(2), Options{MaxImprovementPasses: -3})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestBalanceScore(t *testing.T) {
	assert.Equal(t, 1.0, BalanceScore([]float64{5, 5}, 10))
	assert.InDelta(t, 0.5, BalanceScore([]float64{15, 5}, 20), 1e-9)
	assert.Zero(t, BalanceScore([]float64{30, 0, 0}, 30))
	assert.Equal(t, 1.0, BalanceScore([]float64{0, 0}, 0))
	assert.Zero(t, BalanceScore(nil, 10))
}

func TestOptions_Resolve(t *testing.T) {
	opts, err := Options{}.resolve()
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)

	off := false
	opts, err = Options{ThresholdMeters: 350, DoImprovement: &off, Strategy: StrategyGrid}.resolve()
	require.NoError(t, err)
	assert.Equal(t, 350.0, opts.ThresholdMeters)
	assert.False(t, opts.Improve())
	assert.Equal(t, StrategyGrid, opts.Strategy)
	assert.Equal(t, DefaultMaxImprovementPasses, opts.MaxImprovementPasses)
}
