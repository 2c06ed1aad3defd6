package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-polyline"
)

// EarthRadiusMeters is the mean earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000

// ErrInvalidCoordinates is returned when a latitude or longitude is out of range or not finite.
var ErrInvalidCoordinates = errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")

// geoUtils implements the GeoUtils interface
type geoUtils struct{}

// NewGeoUtils creates a new GeoUtils implementation
func NewGeoUtils() GeoUtils {
	return &geoUtils{}
}

// PointToPoint calculates great-circle distance between two points using Haversine formula
func (g *geoUtils) PointToPoint(p1, p2 Point) (float64, error) {
	if !isValidCoordinate(p1) || !isValidCoordinate(p2) {
		return 0, ErrInvalidCoordinates
	}
	return haversine(p1.Latitude, p1.Longitude, p2.Latitude, p2.Longitude), nil
}

// DistanceMeters returns the great-circle distance between two optional coordinate
// pairs. A missing, non-finite or out-of-range coordinate yields +Inf so the pair is
// never considered close.
func DistanceMeters(lat1, lon1, lat2, lon2 *float64) float64 {
	if lat1 == nil || lon1 == nil || lat2 == nil || lon2 == nil {
		return math.Inf(1)
	}
	p1 := Point{Latitude: *lat1, Longitude: *lon1}
	p2 := Point{Latitude: *lat2, Longitude: *lon2}
	if !isValidCoordinate(p1) || !isValidCoordinate(p2) {
		return math.Inf(1)
	}
	return haversine(p1.Latitude, p1.Longitude, p2.Latitude, p2.Longitude)
}

// ValidCoordinates reports whether lat/lon are present, finite and in range.
func ValidCoordinates(lat, lon *float64) bool {
	if lat == nil || lon == nil {
		return false
	}
	return isValidCoordinate(Point{Latitude: *lat, Longitude: *lon})
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dphi := (lat2 - lat1) * math.Pi / 180
	dlambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dphi/2)*math.Sin(dphi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dlambda/2)*math.Sin(dlambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// PointToPolyline calculates minimum distance from point to polyline
func (g *geoUtils) PointToPolyline(point Point, line Polyline) (float64, error) {
	closest, err := g.ClosestPointOnPolyline(point, line)
	if err != nil {
		return 0, err
	}
	return haversine(point.Latitude, point.Longitude, closest.Latitude, closest.Longitude), nil
}

// ClosestPointOnPolyline finds closest point on polyline to given point
func (g *geoUtils) ClosestPointOnPolyline(point Point, line Polyline) (Point, error) {
	if !isValidCoordinate(point) {
		return Point{}, errors.New("invalid point coordinates")
	}

	if len(line.Points) == 0 {
		return Point{}, errors.New("polyline has no points")
	}

	if len(line.Points) == 1 {
		return line.Points[0], nil
	}

	var closestPoint Point
	minDistance := math.Inf(1)

	for i := 0; i < len(line.Points)-1; i++ {
		candidate := closestPointOnSegment(point, line.Points[i], line.Points[i+1])
		distance := haversine(point.Latitude, point.Longitude, candidate.Latitude, candidate.Longitude)
		if distance < minDistance {
			minDistance = distance
			closestPoint = candidate
		}
	}

	return closestPoint, nil
}

// closestPointOnSegment projects point onto the segment in an equirectangular frame
// centred on point. Accurate for the sub-kilometre segments of territory outlines.
func closestPointOnSegment(point, start, end Point) Point {
	if start == end {
		return start
	}

	scale := math.Cos(point.Latitude * math.Pi / 180)
	ax, ay := (start.Longitude-point.Longitude)*scale, start.Latitude-point.Latitude
	bx, by := (end.Longitude-point.Longitude)*scale, end.Latitude-point.Latitude

	dx, dy := bx-ax, by-ay
	t := -(ax*dx + ay*dy) / (dx*dx + dy*dy)
	switch {
	case t <= 0:
		return start
	case t >= 1:
		return end
	}

	return Point{
		Latitude:  start.Latitude + t*(end.Latitude-start.Latitude),
		Longitude: start.Longitude + t*(end.Longitude-start.Longitude),
	}
}

// DecodePolyline decodes Google polyline string to point sequence
func (g *geoUtils) DecodePolyline(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		points[i] = Point{
			Latitude:  coord[0],
			Longitude: coord[1],
		}

		if !isValidCoordinate(points[i]) {
			return nil, errors.New("decoded polyline contains invalid coordinates")
		}
	}

	return points, nil
}

// EncodePolyline encodes points with the Google polyline algorithm (5 digit precision)
func (g *geoUtils) EncodePolyline(points []Point) (string, error) {
	coords := make([][]float64, len(points))
	for i, p := range points {
		if !isValidCoordinate(p) {
			return "", ErrInvalidCoordinates
		}
		coords[i] = []float64{p.Latitude, p.Longitude}
	}
	return string(polyline.EncodeCoords(coords)), nil
}

// DistanceFromCoords calculates distance between two coordinate pairs
// Convenience method for raw latitude/longitude values
func (g *geoUtils) DistanceFromCoords(lat1, lon1, lat2, lon2 float64) (float64, error) {
	return g.PointToPoint(Point{Latitude: lat1, Longitude: lon1}, Point{Latitude: lat2, Longitude: lon2})
}

// NewPoint creates a Point from latitude and longitude values with validation
func NewPoint(latitude, longitude float64) (Point, error) {
	point := Point{Latitude: latitude, Longitude: longitude}
	if !isValidCoordinate(point) {
		return Point{}, ErrInvalidCoordinates
	}
	return point, nil
}

// isValidCoordinate validates latitude and longitude values
func isValidCoordinate(point Point) bool {
	if math.IsNaN(point.Latitude) || math.IsNaN(point.Longitude) {
		return false
	}
	return point.Latitude >= -90 && point.Latitude <= 90 &&
		point.Longitude >= -180 && point.Longitude <= 180
}
