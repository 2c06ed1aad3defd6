package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dpup/territory-planner/server/internal/cache"
	"github.com/dpup/territory-planner/server/internal/config"
	"github.com/dpup/territory-planner/server/internal/lib/geo"
	"github.com/dpup/territory-planner/server/internal/lib/territory"
	"github.com/dpup/territory-planner/server/internal/lib/tracking"
	"github.com/dpup/territory-planner/server/internal/metrics"
)

// KMLContentType is the media type of exported territory documents
const KMLContentType = "application/vnd.google-earth.kml+xml"

// TerritoryService plans territories and answers location questions about them
type TerritoryService struct {
	store      cache.AssignmentStore
	classifier tracking.Classifier
	hasher     *RequestHasher
	config     *config.TerritoryConfig
}

// NewTerritoryService creates a new TerritoryService. store may be nil to
// disable memoization.
func NewTerritoryService(store cache.AssignmentStore, classifier tracking.Classifier, config *config.TerritoryConfig) *TerritoryService {
	return &TerritoryService{
		store:      store,
		classifier: classifier,
		hasher:     NewRequestHasher(),
		config:     config,
	}
}

// AssignTerritories partitions the request's units among its representatives
func (s *TerritoryService) AssignTerritories(ctx context.Context, req *AssignRequest) (*AssignResponse, error) {
	if req == nil || len(req.Units) == 0 {
		return nil, status.Error(codes.InvalidArgument, "units are required")
	}
	if len(req.RepIDs) == 0 {
		return nil, status.Error(codes.InvalidArgument, "rep_ids are required")
	}
	if s.config.MaxUnits > 0 && len(req.Units) > s.config.MaxUnits {
		return nil, status.Errorf(codes.InvalidArgument, "too many units: %d (max %d)", len(req.Units), s.config.MaxUnits)
	}
	if s.config.MaxReps > 0 && len(req.RepIDs) > s.config.MaxReps {
		return nil, status.Errorf(codes.InvalidArgument, "too many rep_ids: %d (max %d)", len(req.RepIDs), s.config.MaxReps)
	}

	opts := s.options(req.Options)
	strategy := string(opts.Strategy)
	if strategy == "" {
		strategy = string(territory.StrategyRegion)
	}

	requestHash, err := s.hasher.Hash(req.Units, req.RepIDs, opts)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	if s.store != nil {
		cached, found, err := s.store.Get(ctx, requestHash)
		if err != nil {
			// Unreadable entries are dropped and recomputed
			log.Warn().Err(err).Str("request_hash", requestHash).Msg("Assignment cache read failed")
			s.store.Forget(ctx, requestHash)
			metrics.CachedAssignments.Set(float64(s.store.Len()))
		}
		if found {
			metrics.CacheHitsTotal.Inc()
			s.track(ctx, cached)
			return &AssignResponse{Result: cached, RunID: uuid.NewString(), RequestHash: requestHash, Cached: true}, nil
		}
		metrics.CacheMissesTotal.Inc()
	}

	// Assignment cannot be interrupted once started
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	start := time.Now()
	result, err := territory.Assign(req.Units, req.RepIDs, opts)
	elapsed := time.Since(start)
	if err != nil {
		metrics.AssignmentsTotal.WithLabelValues(strategy, "invalid").Inc()
		if errors.Is(err, territory.ErrDuplicateUnitID) || errors.Is(err, territory.ErrInvalidOptions) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Errorf(codes.Internal, "assignment failed: %v", err)
	}

	runID := uuid.NewString()
	metrics.AssignmentsTotal.WithLabelValues(strategy, "ok").Inc()
	metrics.AssignmentDurationMs.WithLabelValues(strategy).Observe(float64(elapsed.Microseconds()) / 1000)
	metrics.BalanceScore.Observe(result.BalanceScore)
	metrics.ImprovementSwapsTotal.Add(float64(result.Swaps))
	metrics.UnitsAssignedTotal.Add(float64(len(req.Units)))

	log.Info().
		Str("run_id", runID).
		Str("strategy", strategy).
		Int("units", len(req.Units)).
		Int("reps", len(req.RepIDs)).
		Int("swaps", result.Swaps).
		Float64("balance_score", result.BalanceScore).
		Dur("duration", elapsed).
		Msg("Territories assigned")

	if s.store != nil {
		if err := s.store.Put(ctx, requestHash, result); err != nil {
			log.Warn().Err(err).Str("run_id", runID).Msg("Failed to cache assignment")
		}
		metrics.CachedAssignments.Set(float64(s.store.Len()))
	}
	s.track(ctx, result)

	return &AssignResponse{Result: result, RunID: runID, RequestHash: requestHash}, nil
}

// ContainsPoint reports whether a point lies inside the given polygon
func (s *TerritoryService) ContainsPoint(ctx context.Context, req *ContainsRequest) (*ContainsResponse, error) {
	if req == nil || len(req.Polygon) == 0 {
		return nil, status.Error(codes.InvalidArgument, "polygon is required")
	}
	return &ContainsResponse{
		Inside: territory.IsPointInTerritory(req.Lat, req.Lon, polygonInput(req.Polygon)),
	}, nil
}

// ClassifyLocation classifies a live position as inside, nearby or outside a
// territory. With a polygon the position is checked against it; with only a
// rep id, against that rep's assigned territory; with neither, against every
// assigned territory, returning the best match.
func (s *TerritoryService) ClassifyLocation(ctx context.Context, req *ClassifyRequest) (*tracking.ClassifiedLocation, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	loc := tracking.Location{
		RepID:      req.RepID,
		Point:      geo.Point{Latitude: req.Lat, Longitude: req.Lon},
		RecordedAt: req.RecordedAt,
	}
	if _, err := geo.NewPoint(req.Lat, req.Lon); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var classified tracking.ClassifiedLocation
	var err error
	switch {
	case len(req.Polygon) > 0:
		polygon, perr := geo.ParsePolygon(polygonInput(req.Polygon))
		if perr != nil {
			return nil, status.Error(codes.InvalidArgument, perr.Error())
		}
		classified, err = s.classifier.Classify(ctx, loc, tracking.Territory{RepID: req.RepID, Polygon: polygon})
	case req.RepID != "":
		classified, err = s.classifier.ClassifyRep(ctx, loc)
	default:
		territories := s.classifier.Territories()
		if len(territories) == 0 {
			return nil, status.Error(codes.NotFound, "no territories have been assigned")
		}
		classified, err = s.classifier.Locate(ctx, loc, territories)
	}

	switch {
	case errors.Is(err, tracking.ErrUnknownTerritory):
		return nil, status.Error(codes.NotFound, err.Error())
	case errors.Is(err, geo.ErrInvalidCoordinates), errors.Is(err, tracking.ErrInvalidTerritory):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, status.FromContextError(err).Err()
	case err != nil:
		return nil, status.Errorf(codes.Internal, "classification failed: %v", err)
	}

	metrics.ClassificationsTotal.WithLabelValues(string(classified.Classification)).Inc()
	return &classified, nil
}

// ExportKML assigns territories and renders them as a KML document
func (s *TerritoryService) ExportKML(ctx context.Context, req *AssignRequest) (*httpbody.HttpBody, error) {
	resp, err := s.AssignTerritories(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := territory.ExportKML(resp.Result, &buf); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &httpbody.HttpBody{
		ContentType: KMLContentType,
		Data:        buf.Bytes(),
	}, nil
}

// options overlays request options on the configured defaults
func (s *TerritoryService) options(override *territory.Options) territory.Options {
	opts := s.config.Options()
	if override == nil {
		return opts
	}

	if override.ThresholdMeters != 0 {
		opts.ThresholdMeters = override.ThresholdMeters
	}
	if override.DoImprovement != nil {
		opts.DoImprovement = override.DoImprovement
	}
	if override.MaxImprovementPasses != 0 {
		opts.MaxImprovementPasses = override.MaxImprovementPasses
	}
	if override.HullBufferMeters != 0 {
		opts.HullBufferMeters = override.HullBufferMeters
	}
	if override.PointBufferMeters != 0 {
		opts.PointBufferMeters = override.PointBufferMeters
	}
	if override.Strategy != "" {
		opts.Strategy = override.Strategy
	}
	return opts
}

// track registers assigned polygons for live classification
func (s *TerritoryService) track(ctx context.Context, result *territory.Result) {
	if s.classifier == nil || result == nil {
		return
	}
	for _, t := range result.Territories {
		if t.Polygon == nil {
			continue
		}
		polygon, ok := t.Polygon.Geometry().(orb.Polygon)
		if !ok {
			continue
		}
		if err := s.classifier.UpdateTerritory(ctx, t.RepID.String(), polygon); err != nil {
			log.Debug().Err(err).Str("rep_id", t.RepID.String()).Msg("Territory not tracked")
		}
	}
}

// polygonInput unwraps polygons sent as a JSON string holding GeoJSON
func polygonInput(raw json.RawMessage) any {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return raw
}
