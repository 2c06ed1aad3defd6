package tracking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/paulmach/orb"

	"github.com/dpup/territory-planner/server/internal/lib/geo"
)

var (
	ErrInvalidTerritory = errors.New("territory must have an outer ring with at least 3 points")
	ErrUnknownTerritory = errors.New("no territory registered for representative")
)

// classifier implements the Classifier interface
type classifier struct {
	geoUtils     geo.GeoUtils
	nearbyMeters float64

	territories map[string]Territory
	mu          sync.RWMutex
}

// NewClassifier creates a Classifier. A non-positive nearbyMeters selects DefaultNearbyMeters.
func NewClassifier(nearbyMeters float64) Classifier {
	if nearbyMeters <= 0 {
		nearbyMeters = DefaultNearbyMeters
	}
	return &classifier{
		geoUtils:     geo.NewGeoUtils(),
		nearbyMeters: nearbyMeters,
		territories:  make(map[string]Territory),
	}
}

// Classify classifies a location against one territory
func (c *classifier) Classify(ctx context.Context, loc Location, territory Territory) (ClassifiedLocation, error) {
	if err := validPolygon(territory.Polygon); err != nil {
		return ClassifiedLocation{}, err
	}
	if _, err := geo.NewPoint(loc.Point.Latitude, loc.Point.Longitude); err != nil {
		return ClassifiedLocation{}, err
	}

	// Distance to the outer ring; holes are ignored for the nearby check
	boundary := geo.RingToPolyline(territory.Polygon[0])
	distance, err := c.geoUtils.PointToPolyline(loc.Point, boundary)
	if err != nil {
		return ClassifiedLocation{}, fmt.Errorf("measuring distance to territory %s: %w", territory.RepID, err)
	}

	classification := Outside
	if geo.PointInPolygon(loc.Point.Latitude, loc.Point.Longitude, territory.Polygon) {
		classification = Inside
	} else if distance <= c.nearbyMeters {
		classification = Nearby
	}

	return ClassifiedLocation{
		Location:           loc,
		Classification:     classification,
		TerritoryRepID:     territory.RepID,
		DistanceToBoundary: distance,
	}, nil
}

// ClassifyRep classifies a location against the representative's registered territory
func (c *classifier) ClassifyRep(ctx context.Context, loc Location) (ClassifiedLocation, error) {
	c.mu.RLock()
	territory, ok := c.territories[loc.RepID]
	c.mu.RUnlock()

	if !ok {
		return ClassifiedLocation{}, fmt.Errorf("%w: %s", ErrUnknownTerritory, loc.RepID)
	}
	return c.Classify(ctx, loc, territory)
}

// Locate classifies a location against every candidate and returns the best match.
// Buffered territories can overlap, so among containing territories the one whose
// boundary is furthest away wins; otherwise the closest boundary wins.
func (c *classifier) Locate(ctx context.Context, loc Location, territories []Territory) (ClassifiedLocation, error) {
	best := ClassifiedLocation{
		Location:           loc,
		Classification:     Outside,
		DistanceToBoundary: math.Inf(1),
	}
	if len(territories) == 0 {
		return best, nil
	}

	for _, territory := range territories {
		if err := ctx.Err(); err != nil {
			return ClassifiedLocation{}, err
		}

		classified, err := c.Classify(ctx, loc, territory)
		if err != nil {
			if errors.Is(err, ErrInvalidTerritory) {
				continue // Skip territories without geometry
			}
			return ClassifiedLocation{}, err
		}

		if better(classified, best) {
			best = classified
		}
	}

	return best, nil
}

func better(a, b ClassifiedLocation) bool {
	if (a.Classification == Inside) != (b.Classification == Inside) {
		return a.Classification == Inside
	}
	if a.Classification == Inside {
		return a.DistanceToBoundary > b.DistanceToBoundary
	}
	return a.DistanceToBoundary < b.DistanceToBoundary
}

// UpdateTerritory registers or replaces a representative's territory
func (c *classifier) UpdateTerritory(ctx context.Context, repID string, polygon orb.Polygon) error {
	if err := validPolygon(polygon); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.territories[repID] = Territory{RepID: repID, Polygon: polygon}
	return nil
}

// Territories returns a snapshot of the registered territories ordered by rep id
func (c *classifier) Territories() []Territory {
	c.mu.RLock()
	defer c.mu.RUnlock()

	territories := make([]Territory, 0, len(c.territories))
	for _, t := range c.territories {
		territories = append(territories, t)
	}
	sort.Slice(territories, func(i, j int) bool {
		return territories[i].RepID < territories[j].RepID
	})
	return territories
}

func validPolygon(polygon orb.Polygon) error {
	if len(polygon) == 0 || len(polygon[0]) < 3 {
		return ErrInvalidTerritory
	}
	return nil
}
