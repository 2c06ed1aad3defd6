package tracking

import (
	"context"
	"time"

	"github.com/paulmach/orb"

	"github.com/dpup/territory-planner/server/internal/lib/geo"
)

// Classification describes where a representative is relative to their territory
type Classification string

const (
	Inside  Classification = "inside"  // within the territory polygon
	Nearby  Classification = "nearby"  // outside, but within NearbyMeters of the boundary
	Outside Classification = "outside" // further away
)

// DefaultNearbyMeters is the boundary distance still considered nearby
const DefaultNearbyMeters = 100.0

// Territory is the polygon a representative is expected to work in
type Territory struct {
	RepID   string      `json:"rep_id"`
	Polygon orb.Polygon `json:"polygon"`
}

// Location is a position report from a representative's device
type Location struct {
	RepID      string    `json:"rep_id"`
	Point      geo.Point `json:"point"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

// ClassifiedLocation is a location report after classification
type ClassifiedLocation struct {
	Location
	Classification Classification `json:"classification"`
	TerritoryRepID string         `json:"territory_rep_id,omitempty"`
	// DistanceToBoundary is the distance in meters to the territory's outer ring, inside or out.
	DistanceToBoundary float64 `json:"distance_to_boundary"`
}

// Classifier classifies live locations against territory polygons
type Classifier interface {
	// Classify a location against a single territory
	Classify(ctx context.Context, loc Location, territory Territory) (ClassifiedLocation, error)

	// Classify a location against the territory registered for loc.RepID
	ClassifyRep(ctx context.Context, loc Location) (ClassifiedLocation, error)

	// Find the territory the location belongs to among candidates
	Locate(ctx context.Context, loc Location, territories []Territory) (ClassifiedLocation, error)

	// Register or replace the territory for a representative after reassignment
	UpdateTerritory(ctx context.Context, repID string, polygon orb.Polygon) error

	// Registered territories ordered by rep id
	Territories() []Territory
}

// NewClassifier is implemented in classifier.go
