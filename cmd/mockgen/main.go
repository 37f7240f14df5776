package main

import (
	"flag"
	"fmt"
	"hostel-mcp/cmd/mockgen/engine"
	"hostel-mcp/internal/analysis"
	"os"
	"time"
)

func main() {
	metric := flag.String("metric", "on_leave", "Metric to generate: late_checkins, on_leave, non_checked_in, leave_trends")
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos, drift")
	days := flag.Int("days", 90, "Number of days to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	out := flag.String("out", "-", "Output file, or - for stdout")
	flag.Parse()

	kind, err := analysis.ParseKind(*metric)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := engine.GeneratorConfig{
		Metric:   kind,
		Scenario: *scenario,
		Days:     *days,
		Seed:     *seed,
		End:      time.Now(),
	}

	fmt.Fprintf(os.Stderr, "Generating %s scenario '%s' (Days: %d, Seed: %d) to %s...\n", cfg.Metric, cfg.Scenario, cfg.Days, cfg.Seed, *out)

	body, err := engine.Generate(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate mock data: %v\n", err)
		os.Exit(1)
	}

	if err := engine.Save(*out, os.Stdout, body); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, "Done.")
}
