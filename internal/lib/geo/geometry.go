package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// DefaultCircleSegments is the vertex count used to approximate circles.
const DefaultCircleSegments = 64

// ErrInvalidPolygon is returned when input cannot be interpreted as a polygon.
var ErrInvalidPolygon = errors.New("invalid polygon")

// ConvexHull computes the convex hull of points with Andrew's monotone chain.
// Points are [lon, lat]. The returned ring is closed and counter-clockwise.
// Collinear points are dropped; nil is returned when fewer than three hull
// vertices remain.
func ConvexHull(points []orb.Point) orb.Ring {
	if len(points) < 3 {
		return nil
	}

	pts := make([]orb.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	lower := make([]orb.Point, 0, len(pts))
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]orb.Point, 0, len(pts))
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return nil
	}

	ring := make(orb.Ring, 0, len(hull)+1)
	ring = append(ring, hull...)
	return append(ring, hull[0])
}

// cross is the z component of (a-o) x (b-o); positive for a left turn.
func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// Center returns the center of the points' bounding box.
func Center(points []orb.Point) orb.Point {
	if len(points) == 0 {
		return orb.Point{}
	}
	bound := orb.MultiPoint(points).Bound()
	return bound.Center()
}

// Circle approximates a geodesic circle of radiusMeters around center. The
// polygon circumscribes the circle, so every point within radiusMeters of
// center lies inside it.
func Circle(center orb.Point, radiusMeters float64, segments int) orb.Polygon {
	if segments < 3 {
		segments = DefaultCircleSegments
	}

	ring := make(orb.Ring, 0, segments+1)
	step := 360.0 / float64(segments)
	vertexDistance := radiusMeters / math.Cos(math.Pi/float64(segments))
	for i := 0; i < segments; i++ {
		// decreasing bearings walk the circle counter-clockwise
		ring = append(ring, orbgeo.PointAtBearingAndDistance(center, 360-float64(i)*step, vertexDistance))
	}
	ring = append(ring, ring[0])

	return orb.Polygon{ring}
}

// Buffer dilates a convex ring outward by meters. Each vertex is replaced by a
// circle and the hull of all circle vertices is taken, which for convex input
// is the Minkowski sum with a polygonal disk.
func Buffer(ring orb.Ring, meters float64, segments int) orb.Polygon {
	if len(ring) == 0 {
		return nil
	}
	if meters <= 0 {
		return orb.Polygon{ring.Clone()}
	}

	vertices := ring
	if ring.Closed() && len(ring) > 1 {
		vertices = ring[:len(ring)-1]
	}

	var pts []orb.Point
	for _, v := range vertices {
		pts = append(pts, Circle(v, meters, segments)[0]...)
	}

	hull := ConvexHull(pts)
	if hull == nil {
		return orb.Polygon{ring.Clone()}
	}
	return orb.Polygon{hull}
}

// FarthestDistance returns the largest great-circle distance from center to any
// point, on the same earth radius Circle uses.
func FarthestDistance(center orb.Point, points []orb.Point) float64 {
	var farthest float64
	for _, p := range points {
		if d := orbgeo.DistanceHaversine(center, p); d > farthest {
			farthest = d
		}
	}
	return farthest
}

// BoundsOf extracts the envelope of a polygon. Nil for an empty polygon.
func BoundsOf(polygon orb.Polygon) *Bounds {
	if len(polygon) == 0 || len(polygon[0]) == 0 {
		return nil
	}
	b := polygon.Bound()
	return &Bounds{
		West:  b.Min[0],
		South: b.Min[1],
		East:  b.Max[0],
		North: b.Max[1],
	}
}

// PointInPolygon reports whether (lat, lon) lies inside polygon. Boundary
// points are inside and holes are excluded. Degenerate input yields false.
func PointInPolygon(lat, lon float64, polygon orb.Polygon) bool {
	if !isValidCoordinate(Point{Latitude: lat, Longitude: lon}) {
		return false
	}
	if len(polygon) == 0 || len(polygon[0]) < 3 {
		return false
	}
	return planar.PolygonContains(polygon, orb.Point{lon, lat})
}

// ParsePolygon interprets raw as a polygon. Accepted forms are orb.Polygon,
// orb.Ring, GeoJSON geometries and features (values or pointers), and the
// JSON encoding of either as a string or byte slice.
func ParsePolygon(raw any) (orb.Polygon, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrInvalidPolygon)
	case orb.Polygon:
		return checkPolygon(v)
	case orb.Ring:
		return checkPolygon(orb.Polygon{v})
	case *geojson.Geometry:
		if v == nil {
			return nil, fmt.Errorf("%w: nil geometry", ErrInvalidPolygon)
		}
		return fromGeometry(v.Geometry())
	case geojson.Geometry:
		return fromGeometry(v.Geometry())
	case *geojson.Feature:
		if v == nil {
			return nil, fmt.Errorf("%w: nil feature", ErrInvalidPolygon)
		}
		return fromGeometry(v.Geometry)
	case geojson.Feature:
		return fromGeometry(v.Geometry)
	case string:
		return parsePolygonJSON([]byte(v))
	case []byte:
		return parsePolygonJSON(v)
	case json.RawMessage:
		return parsePolygonJSON(v)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidPolygon, raw)
	}
}

func parsePolygonJSON(data []byte) (orb.Polygon, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolygon, err)
	}

	if probe.Type == "Feature" {
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPolygon, err)
		}
		return fromGeometry(f.Geometry)
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolygon, err)
	}
	return fromGeometry(g.Geometry())
}

func fromGeometry(g orb.Geometry) (orb.Polygon, error) {
	switch v := g.(type) {
	case orb.Polygon:
		return checkPolygon(v)
	case orb.Ring:
		return checkPolygon(orb.Polygon{v})
	default:
		return nil, fmt.Errorf("%w: geometry type %T", ErrInvalidPolygon, g)
	}
}

func checkPolygon(p orb.Polygon) (orb.Polygon, error) {
	if len(p) == 0 || len(p[0]) < 3 {
		return nil, fmt.Errorf("%w: outer ring needs at least 3 positions", ErrInvalidPolygon)
	}
	return p, nil
}

// RingToPolyline converts a [lon, lat] ring into a Polyline of Points.
func RingToPolyline(ring orb.Ring) Polyline {
	points := make([]Point, len(ring))
	for i, p := range ring {
		points[i] = Point{Latitude: p[1], Longitude: p[0]}
	}
	return Polyline{Points: points}
}
