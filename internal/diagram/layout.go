package diagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"
	"time"

	"mtp-placer/internal/placement"
	"mtp-placer/internal/symbol"
	"mtp-placer/pkg/geometry"
)

// SymbolSource resolves symbol names. *symbol.Library satisfies it.
type SymbolSource interface {
	Lookup(name string) (*symbol.Definition, error)
}

// Placer computes one placement. *placement.Placer satisfies it.
type Placer interface {
	Place(req placement.Request) (placement.Result, error)
}

// Layout is the placed form of a diagram. Results are in object order.
type Layout struct {
	Diagram   string             `json:"diagram"`
	Extent    geometry.Rect      `json:"extent"`
	Results   []placement.Result `json:"results"`
	Placed    int                `json:"placed"`
	Failed    int                `json:"failed"`
	CreatedAt time.Time          `json:"created_at"`
}

// Arrange places every object of d using up to workers goroutines
// (runtime.NumCPU() when workers <= 0).
//
// An object that cannot be placed gets a placeholder carrying the error and
// the run continues. Cancelling ctx stops dispatching further objects; the
// partial layout is discarded and ctx.Err() returned.
func Arrange(ctx context.Context, d *Diagram, lib SymbolSource, p Placer, workers int) (*Layout, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]placement.Result, len(d.Objects))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

dispatch:
	for i := range d.Objects {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = placeObject(&d.Objects[i], lib, p)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("layout %s: %w", d.Name, err)
	}

	layout := &Layout{
		Diagram:   d.Name,
		Extent:    d.Extent(),
		Results:   results,
		CreatedAt: time.Now().UTC(),
	}
	for _, r := range results {
		if r.Mode == placement.ModePlaceholder {
			layout.Failed++
		} else {
			layout.Placed++
		}
	}
	if layout.Failed > 0 {
		log.Printf("[LAYOUT] %s: %d placed, %d placeholders", d.Name, layout.Placed, layout.Failed)
	}
	return layout, nil
}

// placeObject isolates one object: any failure becomes a placeholder.
func placeObject(obj *Object, lib SymbolSource, p Placer) placement.Result {
	req, err := obj.Request(lib)
	if err != nil {
		log.Printf("[LAYOUT] %v", err)
		return placement.Placeholder(req, err)
	}
	res, err := p.Place(req)
	if err != nil {
		log.Printf("[LAYOUT] object %s: %v", obj.ID, err)
		return placement.Placeholder(req, err)
	}
	return res
}

// Find returns the result for an object id.
func (l *Layout) Find(id string) (placement.Result, bool) {
	for _, r := range l.Results {
		if r.ID == id {
			return r, true
		}
	}
	return placement.Result{}, false
}

// Failures returns the placeholder results.
func (l *Layout) Failures() []placement.Result {
	var out []placement.Result
	for _, r := range l.Results {
		if r.Mode == placement.ModePlaceholder {
			out = append(out, r)
		}
	}
	return out
}

// Bounds returns the union of the extent and every placed rectangle.
func (l *Layout) Bounds() geometry.Rect {
	b := l.Extent
	for _, r := range l.Results {
		if r.Rect.IsEmpty() {
			continue
		}
		if b.IsEmpty() {
			b = r.Rect
			continue
		}
		b = b.Union(r.Rect)
	}
	return b
}

// HitTest returns the topmost result whose symbol outline contains p, in
// diagram coordinates. Placeholders are hit by their rectangle.
func (l *Layout) HitTest(p geometry.Point2D, lib SymbolSource) (placement.Result, bool) {
	for i := len(l.Results) - 1; i >= 0; i-- {
		r := l.Results[i]
		if r.Mode == placement.ModePlaceholder {
			if r.Rect.Contains(p) {
				return r, true
			}
			continue
		}
		def, err := lib.Lookup(r.Symbol)
		if err != nil {
			continue
		}
		hull := r.SymbolTransform().ApplyAll(def.Hull())
		if geometry.PointInPolygon(p, hull) {
			return r, true
		}
	}
	return placement.Result{}, false
}

// Write encodes the layout as indented JSON.
func (l *Layout) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	return nil
}

// ReadLayout decodes a layout written by Write.
func ReadLayout(r io.Reader) (*Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to decode layout: %w", err)
	}
	return &l, nil
}
