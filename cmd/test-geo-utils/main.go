package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/paulmach/orb"

	"github.com/dpup/territory-planner/server/internal/lib/geo"
	"github.com/dpup/territory-planner/server/internal/lib/territory"
)

type pointDistanceCmd struct {
	Lat1 float64 `long:"lat1" required:"true" description:"Latitude of first point"`
	Lng1 float64 `long:"lng1" required:"true" description:"Longitude of first point"`
	Lat2 float64 `long:"lat2" required:"true" description:"Latitude of second point"`
	Lng2 float64 `long:"lng2" required:"true" description:"Longitude of second point"`
}

func (c *pointDistanceCmd) Execute([]string) error {
	p1 := geo.Point{Latitude: c.Lat1, Longitude: c.Lng1}
	p2 := geo.Point{Latitude: c.Lat2, Longitude: c.Lng2}

	distance, err := geo.NewGeoUtils().PointToPoint(p1, p2)
	if err != nil {
		return fmt.Errorf("calculating distance: %w", err)
	}

	fmt.Printf("Distance between points:\n")
	fmt.Printf("  Point 1: (%.6f, %.6f)\n", p1.Latitude, p1.Longitude)
	fmt.Printf("  Point 2: (%.6f, %.6f)\n", p2.Latitude, p2.Longitude)
	fmt.Printf("  Distance: %.2f meters (%.2f km)\n", distance, distance/1000)
	return nil
}

type hullCmd struct {
	HullBuffer  float64 `long:"hull-buffer" default:"20" description:"Buffer around the hull in meters"`
	PointBuffer float64 `long:"point-buffer" default:"50" description:"Minimum circle radius for degenerate input in meters"`
	Args        struct {
		Points []string `positional-arg-name:"lat,lng" required:"1"`
	} `positional-args:"yes"`
}

func (c *hullCmd) Execute([]string) error {
	points, err := parsePoints(c.Args.Points)
	if err != nil {
		return err
	}

	hull := geo.ConvexHull(points)
	if hull == nil {
		fmt.Println("Hull: degenerate (fewer than 3 non-collinear points)")
	} else {
		fmt.Printf("Hull: %d vertices\n", len(hull)-1)
	}

	opts := territory.DefaultOptions()
	opts.HullBufferMeters = c.HullBuffer
	opts.PointBufferMeters = c.PointBuffer
	shape := territory.ShapeOf(points, opts)
	if len(shape) == 0 {
		return fmt.Errorf("no shape for %d points", len(points))
	}

	b := geo.BoundsOf(shape)
	fmt.Printf("Buffered shape: %d vertices\n", len(shape[0])-1)
	fmt.Printf("  Bounds: W %.6f S %.6f E %.6f N %.6f\n", b.West, b.South, b.East, b.North)

	encoded, err := geo.NewGeoUtils().EncodePolyline(geo.RingToPolyline(shape[0]).Points)
	if err != nil {
		return fmt.Errorf("encoding outline: %w", err)
	}
	fmt.Printf("  Outline: %s\n", encoded)
	return nil
}

type containsCmd struct {
	Lat     float64 `long:"lat" required:"true" description:"Latitude of point"`
	Lng     float64 `long:"lng" required:"true" description:"Longitude of point"`
	Polygon string  `long:"polygon" required:"true" description:"GeoJSON Polygon geometry or Feature"`
}

func (c *containsCmd) Execute([]string) error {
	if _, err := geo.ParsePolygon(c.Polygon); err != nil {
		return fmt.Errorf("parsing polygon: %w", err)
	}
	fmt.Printf("Inside: %t\n", territory.IsPointInTerritory(c.Lat, c.Lng, c.Polygon))
	return nil
}

type decodePolylineCmd struct {
	Args struct {
		Polyline string `positional-arg-name:"polyline" required:"yes"`
	} `positional-args:"yes"`
}

func (c *decodePolylineCmd) Execute([]string) error {
	points, err := geo.NewGeoUtils().DecodePolyline(c.Args.Polyline)
	if err != nil {
		return fmt.Errorf("decoding polyline: %w", err)
	}

	fmt.Printf("Decoded %d points:\n", len(points))
	for i, p := range points {
		fmt.Printf("  %d: (%.6f, %.6f)\n", i, p.Latitude, p.Longitude)
	}
	return nil
}

// parsePoints reads "lat,lng" pairs into orb points
func parsePoints(args []string) ([]orb.Point, error) {
	points := make([]orb.Point, 0, len(args))
	for _, arg := range args {
		lat, lng, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, fmt.Errorf("point %q is not lat,lng", arg)
		}
		latF, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", arg, err)
		}
		lngF, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", arg, err)
		}
		points = append(points, orb.Point{lngF, latF})
	}
	return points, nil
}

func main() {
	parser := flags.NewParser(nil, flags.Default)
	parser.Usage = "<command> [options]"

	commands := []struct {
		name, short string
		data        any
	}{
		{"point-distance", "Distance between two points", &pointDistanceCmd{}},
		{"hull", "Convex hull and buffered territory shape of points", &hullCmd{}},
		{"contains", "Point-in-polygon test", &containsCmd{}},
		{"decode-polyline", "Decode a Google encoded polyline", &decodePolylineCmd{}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.short, c.data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
