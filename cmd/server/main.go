package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/dpup/prefab"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/dpup/territory-planner/server/internal/cache"
	"github.com/dpup/territory-planner/server/internal/config"
	"github.com/dpup/territory-planner/server/internal/lib/tracking"
	"github.com/dpup/territory-planner/server/internal/logger"
	"github.com/dpup/territory-planner/server/internal/metrics"
	"github.com/dpup/territory-planner/server/internal/services"
)

type options struct {
	Logger logger.Logger `group:"Logging"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	opts.Logger.Setup()

	// Load configuration using Prefab's config system
	appConfig := loadConfig()

	ctx := context.Background()

	cacheInstance := cache.NewCache()
	if appConfig.Cache.CleanupInterval > 0 {
		cacheInstance.StartPeriodicCleanup(ctx, appConfig.Cache.CleanupInterval)
	}

	var store cache.AssignmentStore
	if appConfig.Cache.Enabled {
		store = cache.NewAssignmentStore(cacheInstance, appConfig.Cache.TTL)
	}

	classifier := tracking.NewClassifier(appConfig.Tracking.NearbyMeters)
	territoryService := services.NewTerritoryService(store, classifier, &appConfig.Territory)

	log.Info().
		Str("strategy", appConfig.Territory.Strategy).
		Bool("cache", appConfig.Cache.Enabled).
		Int("max_units", appConfig.Territory.MaxUnits).
		Int("max_reps", appConfig.Territory.MaxReps).
		Msg("Territory planner starting")

	// Server configuration (port, etc.) will be loaded from prefab.yaml/env vars
	server := prefab.New(
		prefab.WithGRPCReflection(),
		prefab.WithHTTPHandlerFunc("/metrics", metrics.Handler().ServeHTTP),
		prefab.WithHTTPHandlerFunc("/", homepageHandler),
	)

	services.RegisterTerritoryServiceServer(server.ServiceRegistrar(), territoryService)

	if err := services.RegisterTerritoryServiceHandlerFromEndpoint(server.GatewayArgs()); err != nil {
		log.Fatal().Err(err).Msg("Failed to register territory service gateway")
	}

	// Start the server (blocks until shutdown)
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// loadConfig unmarshals the application sections from prefab.yaml and PF__
// environment variables over the defaults
func loadConfig() *config.Config {
	appConfig := config.DefaultConfig()

	if err := prefab.Config.Unmarshal("territory", &appConfig.Territory); err != nil {
		log.Fatal().Err(err).Msg("Failed to unmarshal territory section")
	}
	if err := prefab.Config.Unmarshal("cache", &appConfig.Cache); err != nil {
		log.Fatal().Err(err).Msg("Failed to unmarshal cache section")
	}
	if err := prefab.Config.Unmarshal("tracking", &appConfig.Tracking); err != nil {
		log.Fatal().Err(err).Msg("Failed to unmarshal tracking section")
	}
	if err := appConfig.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	return appConfig
}

// homepageHandler serves a plain text index at the server root
func homepageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	const index = `territory-planner

Partitions geographic units among field sales representatives into
contiguous, weight-balanced territories.

POST /api/v1/territories/assign    units + rep_ids -> territories
POST /api/v1/territories/contains  lat, lon, polygon -> inside
POST /api/v1/territories/classify  rep_id, lat, lon -> inside | nearby | outside
POST /api/v1/territories/kml       units + rep_ids -> KML document
GET  /metrics                      Prometheus metrics
`
	if _, err := fmt.Fprint(w, index); err != nil {
		log.Error().Err(err).Msg("Failed to write homepage")
	}
}
