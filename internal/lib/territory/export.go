package territory

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	kml "github.com/twpayne/go-kml"
)

// FeatureCollection renders the result as GeoJSON, one feature per territory
// that has a polygon.
func FeatureCollection(result *Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if result == nil {
		return fc
	}
	for _, t := range result.Territories {
		if t.Polygon == nil {
			continue
		}
		f := geojson.NewFeature(t.Polygon.Geometry())
		f.Properties["rep_id"] = t.RepID
		f.Properties["weight"] = t.Weight
		f.Properties["unit_count"] = len(t.UnitIDs)
		fc.Append(f)
	}
	fc.ExtraMembers = geojson.Properties{
		"balance_score": result.BalanceScore,
		"total_weight":  result.TotalWeight,
	}
	return fc
}

// ExportKML writes the result as a KML document with one placemark per
// territory polygon.
func ExportKML(result *Result, w io.Writer) error {
	doc := kml.Document(kml.Name("Territories"))
	if result != nil {
		for _, t := range result.Territories {
			placemark := kml.Placemark(
				kml.Name(t.RepID.String()),
				kml.Description(fmt.Sprintf("weight %.2f, %d units", t.Weight, len(t.UnitIDs))),
			)
			if t.Polygon != nil {
				if polygon, ok := t.Polygon.Geometry().(orb.Polygon); ok && len(polygon) > 0 {
					placemark.Add(kml.Polygon(
						kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(coordinates(polygon[0])...))),
					))
				}
			}
			doc.Add(placemark)
		}
	}

	if err := kml.KML(doc).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("writing kml: %w", err)
	}
	return nil
}

func coordinates(ring orb.Ring) []kml.Coordinate {
	coords := make([]kml.Coordinate, len(ring))
	for i, p := range ring {
		coords[i] = kml.Coordinate{Lon: p[0], Lat: p[1]}
	}
	return coords
}
