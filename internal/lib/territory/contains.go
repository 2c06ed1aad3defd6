package territory

import "github.com/dpup/territory-planner/server/internal/lib/geo"

// IsPointInTerritory reports whether (lat, lon) lies inside polygon. The polygon
// may be anything geo.ParsePolygon accepts, including a serialized GeoJSON
// string. Unparseable polygons and invalid coordinates yield false.
func IsPointInTerritory(lat, lon float64, polygon any) bool {
	parsed, err := geo.ParsePolygon(polygon)
	if err != nil {
		return false
	}
	return geo.PointInPolygon(lat, lon, parsed)
}
