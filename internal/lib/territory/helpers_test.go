package territory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// metersPerDegreeLat matches the haversine radius used by geo.DistanceMeters.
const metersPerDegreeLat = 6371000 * 3.141592653589793 / 180

const originLat, originLon = 52.5, 13.4

func ptr(v float64) *float64 { return &v }

func unitAt(id string, lat, lon float64) Unit {
	return Unit{ID: StringID(id), CentroidLat: ptr(lat), CentroidLon: ptr(lon)}
}

func weighted(u Unit, w float64) Unit {
	u.Weight = ptr(w)
	return u
}

// northOf places a unit the given number of meters north of the origin.
func northOf(id string, meters float64) Unit {
	return unitAt(id, originLat+meters/metersPerDegreeLat, originLon)
}

// gridUnits lays out rows x cols units spacing meters apart.
func gridUnits(rows, cols int, spacing float64) []Unit {
	lonStep := spacing / metersPerDegreeLat / 0.6087614290087207 // cos(52.5°)
	latStep := spacing / metersPerDegreeLat
	units := make([]Unit, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			units = append(units, unitAt(fmt.Sprintf("u%d-%d", r, c), originLat+float64(r)*latStep, originLon+float64(c)*lonStep))
		}
	}
	return units
}

func ids(values ...string) []ID {
	out := make([]ID, len(values))
	for i, v := range values {
		out[i] = StringID(v)
	}
	return out
}

func repIDs(n int) []ID {
	out := make([]ID, n)
	for i := range out {
		out[i] = StringID(fmt.Sprintf("rep-%d", i+1))
	}
	return out
}

// requireCoverage asserts that every unit appears in exactly one territory.
func requireCoverage(t *testing.T, units []Unit, result *Result) {
	t.Helper()
	seen := map[ID]int{}
	for _, tr := range result.Territories {
		for _, id := range tr.UnitIDs {
			seen[id]++
		}
	}
	require.Len(t, seen, len(units))
	for _, u := range units {
		require.Equal(t, 1, seen[u.ID], "unit %s", u.ID)
	}
}

func indexByID(units []Unit) map[ID]int {
	idx := make(map[ID]int, len(units))
	for i, u := range units {
		idx[u.ID] = i
	}
	return idx
}
