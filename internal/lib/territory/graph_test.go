package territory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildGraph(t *testing.T) {
	units := []Unit{
		northOf("a", 0),
		northOf("b", 150),
		northOf("c", 300),
		northOf("d", 1000),
		{ID: StringID("nowhere")},
	}

	g := BuildGraph(units, 200)

	assert.Equal(t, 5, g.Len())
	assert.Equal(t, []int{1}, g.Neighbors(0))
	assert.Equal(t, []int{0, 2}, g.Neighbors(1))
	assert.True(t, g.Adjacent(1, 2))
	assert.True(t, g.Adjacent(2, 1), "edges are symmetric")
	assert.False(t, g.Adjacent(0, 2), "300 m is beyond the threshold")
	assert.Equal(t, 0, g.Degree(3))
	assert.Equal(t, 0, g.Degree(4), "units without coordinates never gain edges")
}

func TestBuildGraph_ThresholdIsInclusive(t *testing.T) {
	units := []Unit{northOf("a", 0), northOf("b", 100)}
	g := BuildGraph(units, distance(units[0], units[1]))
	assert.True(t, g.Adjacent(0, 1))
}

func TestGraph_Components(t *testing.T) {
	units := []Unit{
		northOf("a", 0),
		northOf("b", 5000),
		northOf("c", 100),
		northOf("d", 5100),
	}
	g := BuildGraph(units, 200)

	assert.Equal(t, [][]int{{0, 2}, {1, 3}}, g.Components())
}

func TestGraph_ConnectedWithout(t *testing.T) {
	// a - b - c in a line
	units := []Unit{northOf("a", 0), northOf("b", 150), northOf("c", 300)}
	g := BuildGraph(units, 200)

	assert.True(t, g.Connected([]int{0, 1, 2}))
	assert.False(t, g.ConnectedWithout([]int{0, 1, 2}, 1), "removing the middle splits the line")
	assert.True(t, g.ConnectedWithout([]int{0, 1, 2}, 2))
	assert.True(t, g.ConnectedWithout([]int{0, 1}, 0), "a single remaining member is connected")
	assert.True(t, g.Connected(nil))
	assert.False(t, g.Connected([]int{0, 2}))
}
