package services

import (
	"encoding/json"
	"time"

	"github.com/dpup/territory-planner/server/internal/lib/territory"
)

// AssignRequest asks for a partition of units among representatives. Over gRPC
// and the HTTP gateway, payloads travel as google.protobuf.Struct, which holds
// every number as a float64: numeric ids above 2^53 lose precision there and
// should be sent as strings.
type AssignRequest struct {
	Units   []territory.Unit   `json:"units"`
	RepIDs  []territory.ID     `json:"rep_ids"`
	Options *territory.Options `json:"options,omitempty"`
}

// AssignResponse carries the assignment plus run metadata
type AssignResponse struct {
	*territory.Result
	RunID       string `json:"run_id"`
	RequestHash string `json:"request_hash"`
	Cached      bool   `json:"cached"`
}

// ContainsRequest tests a point against a polygon. Polygon may be a GeoJSON
// geometry or feature, or a string holding one.
type ContainsRequest struct {
	Lat     float64         `json:"lat"`
	Lon     float64         `json:"lon"`
	Polygon json.RawMessage `json:"polygon"`
}

// ContainsResponse is the point-in-polygon answer
type ContainsResponse struct {
	Inside bool `json:"inside"`
}

// ClassifyRequest is a live position report. Without a polygon the location is
// classified against the representative's most recently assigned territory, and
// without a rep id against all assigned territories.
type ClassifyRequest struct {
	RepID      string          `json:"rep_id"`
	Lat        float64         `json:"lat"`
	Lon        float64         `json:"lon"`
	RecordedAt time.Time       `json:"recorded_at,omitempty"`
	Polygon    json.RawMessage `json:"polygon,omitempty"`
}
