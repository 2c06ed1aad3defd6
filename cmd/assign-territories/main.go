package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/dpup/territory-planner/server/internal/config"
	"github.com/dpup/territory-planner/server/internal/lib/territory"
	"github.com/dpup/territory-planner/server/internal/logger"
)

type Options struct {
	Logger logger.Logger `group:"Logging"`

	Config    string `short:"c" long:"config" description:"YAML config file with a territory section"`
	Input     string `short:"i" long:"in" description:"Units file (YAML or JSON). Reads from stdin if empty"`
	Output    string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
	Reps      string `short:"r" long:"reps" description:"Comma separated rep ids, overrides rep_ids from the input"`
	Format    string `short:"f" long:"format" description:"Output format" choice:"json" choice:"geojson" choice:"kml" default:"json"`
	Strategy  string `short:"s" long:"strategy" description:"Partition strategy" choice:"region" choice:"grid"`
	NoImprove bool   `long:"no-improve" description:"Skip the boundary swap pass"`
}

// input is the file layout. A bare list is read as units.
type input struct {
	Units  []territory.Unit `json:"units"`
	RepIDs []territory.ID   `json:"rep_ids"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	opts.Logger.Setup()

	if err := run(opts); err != nil {
		log.Fatal().Err(err).Msg("assign-territories failed")
	}
}

func run(opts Options) error {
	cfg := config.DefaultConfig()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	engineOpts := cfg.Territory.Options()
	if opts.Strategy != "" {
		engineOpts.Strategy = territory.Strategy(opts.Strategy)
	}
	if opts.NoImprove {
		off := false
		engineOpts.DoImprovement = &off
	}

	data, err := readInput(opts.Input)
	if err != nil {
		return err
	}
	in, err := parseInput(data)
	if err != nil {
		return err
	}
	if opts.Reps != "" {
		in.RepIDs = splitReps(opts.Reps)
	}

	log.Debug().
		Int("units", len(in.Units)).
		Int("reps", len(in.RepIDs)).
		Str("strategy", string(engineOpts.Strategy)).
		Msg("Assigning territories")

	result, err := territory.Assign(in.Units, in.RepIDs, engineOpts)
	if err != nil {
		return err
	}

	log.Info().
		Int("territories", len(result.Territories)).
		Float64("balance_score", result.BalanceScore).
		Float64("total_weight", result.TotalWeight).
		Int("swaps", result.Swaps).
		Msg("Assignment complete")

	out := io.Writer(os.Stdout)
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	return write(out, opts.Format, result)
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input file: %w", err)
	}
	return data, nil
}

// parseInput accepts YAML or JSON. The document is normalized to JSON so the
// lenient unit decoding applies to both.
func parseInput(data []byte) (*input, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing input: %w", err)
	}
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalizing input: %w", err)
	}

	in := &input{}
	if _, isList := doc.([]any); isList {
		err = json.Unmarshal(normalized, &in.Units)
	} else {
		err = json.Unmarshal(normalized, in)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding units: %w", err)
	}
	return in, nil
}

func splitReps(s string) []territory.ID {
	var ids []territory.ID
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, territory.StringID(part))
		}
	}
	return ids
}

func write(w io.Writer, format string, result *territory.Result) error {
	switch format {
	case "kml":
		return territory.ExportKML(result, w)
	case "geojson":
		data, err := json.MarshalIndent(territory.FeatureCollection(result), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding geojson: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}
