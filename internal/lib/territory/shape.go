package territory

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/dpup/territory-planner/server/internal/lib/geo"
)

// ShapeOf builds the renderable polygon for a set of [lon, lat] points. Three or
// more non-collinear points give their convex hull dilated by HullBufferMeters.
// Anything else becomes a circle around the points' center that is large enough
// to hold all of them with the same margin, and never smaller than
// PointBufferMeters. No points give nil.
func ShapeOf(points []orb.Point, opts Options) orb.Polygon {
	if len(points) == 0 {
		return nil
	}

	if hull := geo.ConvexHull(points); hull != nil {
		return geo.Buffer(hull, opts.HullBufferMeters, geo.DefaultCircleSegments)
	}

	center := geo.Center(points)
	radius := math.Max(opts.PointBufferMeters, geo.FarthestDistance(center, points)+opts.HullBufferMeters)
	return geo.Circle(center, radius, geo.DefaultCircleSegments)
}
