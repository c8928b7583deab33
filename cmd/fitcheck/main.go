// Command fitcheck measures how stable nozzle fitting is for a symbol when
// the target nozzles are displaced at random.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"mtp-placer/internal/placement"
	"mtp-placer/internal/symbol"
	"mtp-placer/internal/version"
	"mtp-placer/pkg/geometry"
)

func main() {
	name := flag.String("symbol", "", "Symbol to check (e.g. 'Valve')")
	libPath := flag.String("lib", "", "Symbol library (JSON file or SVG directory)")
	scale := flag.Float64("scale", 1.5, "Scale of the generated target")
	rot := flag.Float64("rot", 20, "Rotation of the generated target, degrees")
	trials := flag.Int("trials", 50, "Number of perturbed fits")
	amp := flag.Float64("amp", 1, "Maximum nozzle displacement per axis")
	seed := flag.Int64("seed", 1, "Random seed")
	asJSON := flag.Bool("json", false, "Print the report as JSON")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("fitcheck"))
		return
	}
	if *name == "" {
		fmt.Println("Usage: fitcheck -symbol <name> [-lib <library>] [-scale 1.5] [-rot 20] [-trials 50] [-amp 1]")
		os.Exit(1)
	}

	lib, err := symbol.Open(*libPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load symbol library: %v\n", err)
		os.Exit(1)
	}
	def, err := lib.Lookup(*name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if len(def.Nozzles) < 2 {
		fmt.Fprintf(os.Stderr, "%s has %d nozzles, fitting needs at least 2\n", def.Name, len(def.Nozzles))
		os.Exit(1)
	}

	pivot, _ := geometry.ComputeCOG(def.Nozzles)
	truth := placement.Transform2D{Scale: *scale, Rotation: *rot, OffsetX: 500, OffsetY: 500}
	field := placement.Apply(truth, pivot, def.Nozzles)

	// Seed the search the way the placer does: matched radii, no rotation.
	fieldCOG, _ := geometry.ComputeCOG(field)
	fieldRadius, _ := geometry.ComputeRadius(field, fieldCOG)
	symbolRadius, _ := geometry.ComputeRadius(def.Nozzles, pivot)
	start := placement.Transform2D{
		Scale:   fieldRadius / symbolRadius,
		OffsetX: fieldCOG.X,
		OffsetY: fieldCOG.Y,
	}

	opts := placement.JitterOptions{
		Trials:    *trials,
		Amplitude: *amp,
		Seed:      *seed,
		Search:    placement.DefaultSearchParams(),
	}
	report, err := placement.Jitter(def.Nozzles, field, start, opts, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Jitter failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode report: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Symbol: %s (%d nozzles)\n", def.Name, len(def.Nozzles))
	fmt.Printf("Target: %s\n", truth)
	fmt.Printf("Reference fit: %s\n", report.Reference)
	fmt.Printf("Search: %d evaluations per fit\n", opts.Search.Evaluations())
	fmt.Printf("\n%s\n", report)
}
