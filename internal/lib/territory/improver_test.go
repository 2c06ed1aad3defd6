package territory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func partitionOf(numUnits int, units []Unit, members ...[]int) *Partition {
	p := newPartition(numUnits, len(members))
	for t, ms := range members {
		for _, m := range ms {
			p.assign(m, t, units[m].EffectiveWeight())
		}
	}
	return p
}

func TestImprove_MovesBorderUnit(t *testing.T) {
	units := []Unit{northOf("a", 0), northOf("b", 100), northOf("c", 200), northOf("d", 300)}
	g := BuildGraph(units, 150)
	p := partitionOf(len(units), units, []int{0, 1, 2}, []int{3})

	swaps := Improve(p, g, units, DefaultMaxImprovementPasses)

	assert.Equal(t, 1, swaps)
	assert.Equal(t, []int{0, 1}, p.Members[0])
	assert.Equal(t, []int{3, 2}, p.Members[1])
	assert.Equal(t, []float64{2, 2}, p.Weights)
	assert.Equal(t, 1, p.Owner(2))
}

func TestImprove_KeepsDonorConnected(t *testing.T) {
	// b is the only link between a and c, and the only unit touching d
	units := []Unit{
		weighted(northOf("a", 0), 3),
		northOf("b", 100),
		weighted(northOf("c", 200), 3),
		unitAt("d", originLat+100/metersPerDegreeLat, originLon+0.0012),
	}
	g := BuildGraph(units, 110)
	assert.True(t, g.Adjacent(1, 3))
	assert.False(t, g.Adjacent(2, 3))

	p := partitionOf(len(units), units, []int{0, 1, 2}, []int{3})

	assert.Equal(t, 0, Improve(p, g, units, DefaultMaxImprovementPasses))
	assert.Equal(t, []int{0, 1, 2}, p.Members[0])
}

func TestImprove_NeverEmptiesTerritory(t *testing.T) {
	units := []Unit{weighted(northOf("a", 0), 1), weighted(northOf("b", 100), 10)}
	g := BuildGraph(units, 150)
	p := partitionOf(len(units), units, []int{0}, []int{1})

	assert.Equal(t, 0, Improve(p, g, units, DefaultMaxImprovementPasses))
	assert.Equal(t, []int{0}, p.Members[0])
	assert.Equal(t, []int{1}, p.Members[1])
}

func TestImprove_RequiresStrictImprovement(t *testing.T) {
	units := []Unit{northOf("a", 0), northOf("b", 100), northOf("c", 200), northOf("d", 300)}
	g := BuildGraph(units, 150)
	p := partitionOf(len(units), units, []int{0, 1}, []int{2, 3})

	assert.Equal(t, 0, Improve(p, g, units, DefaultMaxImprovementPasses))
}

func TestImprove_RespectsPassCap(t *testing.T) {
	units := gridUnits(1, 8, 100)
	g := BuildGraph(units, 150)
	p := partitionOf(len(units), units, []int{0, 1, 2, 3, 4, 5, 6}, []int{7})

	assert.Equal(t, 1, Improve(p, g, units, 1))
	assert.Equal(t, 0, Improve(p, g, units, 0))
}
