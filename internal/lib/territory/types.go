package territory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/dpup/territory-planner/server/internal/lib/geo"
)

// ID is an opaque unit or representative handle. JSON input may be a number or a
// string and is written back in the same form, so "42" and 42 survive a round
// trip unchanged.
type ID struct {
	value  string
	number bool
}

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// StringID returns an id that encodes as a JSON string.
func StringID(s string) ID {
	return ID{value: s}
}

// NumberID returns an id that encodes as a JSON number. Text that is not a
// valid JSON number yields a string id.
func NumberID(n string) ID {
	return ID{value: n, number: jsonNumber.MatchString(n)}
}

// String returns the id text without JSON quoting.
func (id ID) String() string {
	return id.value
}

// IsNumber reports whether the id encodes as a JSON number.
func (id ID) IsNumber() bool {
	return id.number
}

// UnmarshalJSON accepts both `7` and `"7"` and remembers which one it saw.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	if !jsonNumber.Match(data) {
		return fmt.Errorf("id must be a string or number, got %s", data)
	}
	*id = ID{value: string(data), number: true}
	return nil
}

// MarshalJSON writes the id in the form it was read or built with.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.number {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// Unit is the smallest piece of geography that gets assigned, typically one
// street within a postal code area.
type Unit struct {
	ID          ID       `json:"id"`
	CentroidLat *float64 `json:"centroid_lat,omitempty"`
	CentroidLon *float64 `json:"centroid_lon,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
}

// UnmarshalJSON tolerates coordinates and weights encoded as strings (as decimal
// columns often are) and drops values that are not numeric instead of failing.
func (u *Unit) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          ID              `json:"id"`
		CentroidLat json.RawMessage `json:"centroid_lat"`
		CentroidLon json.RawMessage `json:"centroid_lon"`
		Weight      json.RawMessage `json:"weight"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.ID = raw.ID
	u.CentroidLat = lenientFloat(raw.CentroidLat)
	u.CentroidLon = lenientFloat(raw.CentroidLon)
	u.Weight = lenientFloat(raw.Weight)
	return nil
}

func lenientFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// EffectiveWeight is the unit's weight, or 1 when it is missing, negative or not finite.
func (u Unit) EffectiveWeight() float64 {
	if u.Weight == nil {
		return 1
	}
	w := *u.Weight
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 1
	}
	return w
}

// Located reports whether the unit has usable centroid coordinates.
func (u Unit) Located() bool {
	return geo.ValidCoordinates(u.CentroidLat, u.CentroidLon)
}

// point returns the centroid as an orb point ([lon, lat]). Only valid when Located.
func (u Unit) point() orb.Point {
	return orb.Point{*u.CentroidLon, *u.CentroidLat}
}

func distance(a, b Unit) float64 {
	return geo.DistanceMeters(a.CentroidLat, a.CentroidLon, b.CentroidLat, b.CentroidLon)
}

// TerritoryResult is the final assignment for one representative.
type TerritoryResult struct {
	RepID   ID                `json:"rep_id"`
	UnitIDs []ID              `json:"unit_ids"`
	Weight  float64           `json:"weight"`
	Polygon *geojson.Geometry `json:"polygon"`
	// Outline is the polygon's outer ring as a Google encoded polyline.
	Outline string      `json:"outline,omitempty"`
	Bounds  *geo.Bounds `json:"bounds"`
}

// Result is the outcome of one assignment run.
type Result struct {
	Territories  []TerritoryResult `json:"territories"`
	BalanceScore float64           `json:"balance_score"`
	TotalWeight  float64           `json:"total_weight"`
	// Swaps is the number of boundary swaps the improvement pass applied.
	Swaps int `json:"improvement_swaps,omitempty"`
}
