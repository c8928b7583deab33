// Command mtpplace lays out a diagram and prints the placements.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"mtp-placer/internal/diagram"
	"mtp-placer/internal/placement"
	"mtp-placer/internal/project"
	"mtp-placer/internal/render"
	"mtp-placer/internal/store"
	"mtp-placer/internal/symbol"
	"mtp-placer/internal/version"
)

func main() {
	projPath := flag.String("p", "", "Path to project file (.mtpproj)")
	diagramPath := flag.String("d", "", "Path to diagram JSON")
	libPath := flag.String("lib", "", "Symbol library (JSON file or SVG directory)")
	bgPath := flag.String("bg", "", "Background image drawn under the symbols")
	outImage := flag.String("o", "", "Write the rendered layout (.png, .tif)")
	outLayout := flag.String("layout", "", "Write the layout JSON to this file")
	dbPath := flag.String("db", "", "Save the layout to this SQLite database")
	scale := flag.Float64("scale", 1, "Render scale, pixels per diagram unit")
	workers := flag.Int("workers", 0, "Layout goroutines (0 = one per CPU)")
	steps := flag.Int("steps", 0, "Override fit grid steps")
	iterations := flag.Int("iterations", -1, "Override fit refinement passes")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("mtpplace"))
		return
	}
	if *projPath == "" && *diagramPath == "" {
		fmt.Println("Usage: mtpplace (-p <project> | -d <diagram> [-lib <library>]) [-o out.png] [-layout out.json] [-db layouts.db]")
		os.Exit(1)
	}

	opts := placement.DefaultOptions()
	if *projPath != "" {
		proj, err := project.Load(*projPath)
		if err != nil {
			fail("Failed to load project", err)
		}
		opts = proj.PlacementOptions()
		*diagramPath = proj.GetDiagramPath(*projPath)
		if *libPath == "" {
			*libPath = proj.GetLibraryPath(*projPath)
		}
		if *bgPath == "" {
			*bgPath = proj.GetBackgroundPath(*projPath)
		}
		if *outImage == "" && proj.OutputPath != "" {
			*outImage = proj.GetOutputPath(*projPath)
		}
		if *scale == 1 && proj.Settings.RenderScale > 0 {
			*scale = proj.Settings.RenderScale
		}
	}
	if *steps > 0 {
		opts.Search = opts.Search.WithSteps(*steps)
	}
	if *iterations >= 0 {
		opts.Search = opts.Search.WithIterations(*iterations)
	}

	lib, err := symbol.Open(*libPath)
	if err != nil {
		fail("Failed to load symbol library", err)
	}
	d, err := diagram.Load(*diagramPath)
	if err != nil {
		fail("Failed to load diagram", err)
	}

	fmt.Printf("=== Layout: %s (%d objects, %d symbols) ===\n", d.Name, len(d.Objects), len(lib.Symbols))
	fmt.Printf("Search: %d evaluations per fit\n", opts.Search.Evaluations())

	ctx := context.Background()
	l, err := diagram.Arrange(ctx, d, lib, placement.New(opts), *workers)
	if err != nil {
		fail("Layout failed", err)
	}
	printResults(l)

	if *outLayout != "" {
		f, err := os.Create(*outLayout)
		if err != nil {
			fail("Failed to create layout file", err)
		}
		if err := l.Write(f); err != nil {
			f.Close()
			fail("Failed to write layout", err)
		}
		if err := f.Close(); err != nil {
			fail("Failed to write layout", err)
		}
		fmt.Printf("\nLayout written to %s\n", *outLayout)
	}

	if *outImage != "" {
		writeImage(l, lib, *outImage, *bgPath, *scale)
	}

	if *dbPath != "" {
		st, err := store.Open(ctx, *dbPath)
		if err != nil {
			fail("Failed to open layout store", err)
		}
		defer st.Close()
		id, err := st.Save(ctx, l)
		if err != nil {
			fail("Failed to save layout", err)
		}
		fmt.Printf("Saved layout %s to %s\n", id, *dbPath)
	}
}

func printResults(l *diagram.Layout) {
	fmt.Printf("\n%-14s %-14s %-12s %8s %8s %8s %8s %10s\n",
		"ID", "Symbol", "Mode", "Scale", "Rot", "X", "Y", "Cost")
	for _, r := range l.Results {
		fmt.Printf("%-14s %-14s %-12s %8.3f %8.2f %8.1f %8.1f %10.3f\n",
			r.ID, r.Symbol, r.Mode, r.Transform.Scale, r.Rotation,
			r.Rect.X, r.Rect.Y, r.Cost)
	}

	fmt.Printf("\nPlaced: %d, placeholders: %d\n", l.Placed, l.Failed)
	for _, r := range l.Failures() {
		fmt.Printf("  %s: %s\n", r.ID, r.Err)
	}
}

func writeImage(l *diagram.Layout, lib *symbol.Library, path, bgPath string, scale float64) {
	opts := render.DefaultOptions()
	opts.Scale = scale
	r, err := render.New(opts)
	if err != nil {
		fail("Invalid render options", err)
	}

	var bg *render.Background
	if bgPath != "" {
		if bg, err = render.LoadBackground(bgPath); err != nil {
			fail("Failed to load background", err)
		}
	}

	img, err := r.Render(l, lib, bg)
	if err != nil {
		fail("Render failed", err)
	}
	if err := render.WriteFile(path, img); err != nil {
		fail("Failed to write image", err)
	}
	b := img.Bounds()
	fmt.Printf("Rendered %dx%d image to %s\n", b.Dx(), b.Dy(), path)
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
