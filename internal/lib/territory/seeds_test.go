package territory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lineUnits() []Unit {
	return []Unit{
		northOf("0m", 0),
		northOf("100m", 100),
		northOf("300m", 300),
		northOf("600m", 600),
		northOf("1000m", 1000),
	}
}

func TestSelectSeeds_MaxSpread(t *testing.T) {
	units := lineUnits()

	assert.Equal(t, []int{0, 4}, SelectSeeds(units, 2))
	// 600 m is 400 m from its nearest seed, further than 300 m (300 m away).
	assert.Equal(t, []int{0, 4, 3}, SelectSeeds(units, 3))
}

func TestSelectSeeds_Degenerate(t *testing.T) {
	units := lineUnits()

	assert.Nil(t, SelectSeeds(units, 0))
	assert.Nil(t, SelectSeeds(nil, 2))
	assert.Equal(t, []int{0}, SelectSeeds(units, 1))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, SelectSeeds(units, 5))
	assert.Equal(t, []int{0, 1}, SelectSeeds(units[:2], 4))
}

func TestSelectSeeds_TiesGoToInputOrder(t *testing.T) {
	units := []Unit{
		northOf("center", 0),
		northOf("north", 500),
		northOf("south", -500),
	}
	assert.Equal(t, []int{0, 1}, SelectSeeds(units, 2))
}

func TestSelectSeeds_UnlocatedUnitsLast(t *testing.T) {
	units := []Unit{
		{ID: StringID("lost")},
		northOf("a", 0),
		{ID: StringID("also-lost")},
		northOf("b", 800),
		northOf("c", 100),
	}

	assert.Equal(t, []int{0, 1, 3}, SelectSeeds(units, 3))
	assert.Equal(t, []int{0, 1, 3, 4}, SelectSeeds(units, 4))
}
