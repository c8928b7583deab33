// Package diagram holds the objects of a process diagram and lays their
// symbols out.
package diagram

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"mtp-placer/internal/placement"
	"mtp-placer/internal/symbol"
	"mtp-placer/pkg/geometry"

	"github.com/google/uuid"
)

var (
	// ErrInvalidDiagram indicates diagram input that cannot be decoded.
	ErrInvalidDiagram = errors.New("diagram: invalid input")
	// ErrDuplicateID indicates two objects sharing an id.
	ErrDuplicateID = errors.New("diagram: duplicate object id")
)

// Object is one placeable element of a diagram.
type Object struct {
	ID       string                      `json:"id"`
	Symbol   string                      `json:"symbol"`
	Box      *geometry.Rect              `json:"box,omitempty"`
	Nozzles  map[string]geometry.Point2D `json:"nozzles,omitempty"` // "Nozzle#<n>" -> position
	Rotation float64                     `json:"rotation,omitempty"` // degrees
	Label    string                      `json:"label,omitempty"`
}

// Diagram is the input of a layout run.
type Diagram struct {
	Name    string   `json:"name"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Objects []Object `json:"objects"`
}

// Parse reads a diagram from JSON and normalizes it.
func Parse(r io.Reader) (*Diagram, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDiagram, err)
	}
	if err := d.Normalize(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads a diagram file.
func Load(path string) (*Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open diagram: %w", err)
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Save writes the diagram as indented JSON.
func (d *Diagram) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal diagram: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write diagram: %w", err)
	}
	return nil
}

// Normalize gives every object without an id a fresh one and rejects
// duplicate ids.
func (d *Diagram) Normalize() error {
	seen := make(map[string]bool, len(d.Objects))
	for i := range d.Objects {
		obj := &d.Objects[i]
		if strings.TrimSpace(obj.ID) == "" {
			obj.ID = uuid.NewString()
		}
		if seen[obj.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, obj.ID)
		}
		seen[obj.ID] = true
	}
	return nil
}

// Find returns the object with the given id, or nil.
func (d *Diagram) Find(id string) *Object {
	for i := range d.Objects {
		if d.Objects[i].ID == id {
			return &d.Objects[i]
		}
	}
	return nil
}

// Extent returns the canvas rectangle: the declared size, or the union of
// all boxes and nozzles when none is given.
func (d *Diagram) Extent() geometry.Rect {
	if d.Width > 0 && d.Height > 0 {
		return geometry.NewRect(0, 0, d.Width, d.Height)
	}
	var ext geometry.Rect
	first := true
	add := func(r geometry.Rect) {
		if first {
			ext, first = r, false
			return
		}
		ext = ext.Union(r)
	}
	for _, obj := range d.Objects {
		if obj.Box != nil {
			add(*obj.Box)
		}
		if len(obj.Nozzles) > 0 {
			pts := make([]geometry.Point2D, 0, len(obj.Nozzles))
			for _, p := range obj.Nozzles {
				pts = append(pts, p)
			}
			add(geometry.BoundingBox(pts))
		}
	}
	return ext
}

// Request converts the object into a placement request. The symbol is
// resolved through lib; nozzle names must be numbered contiguously when
// the symbol is fitted onto them.
func (o *Object) Request(lib SymbolSource) (placement.Request, error) {
	req := placement.Request{
		ID:       o.ID,
		Rotation: o.Rotation,
		Label:    o.Label,
	}
	if req.Label == "" {
		req.Label = o.ID
	}
	if o.Box != nil {
		req.Box = *o.Box
	}

	// A placeholder falls back to the nozzle extent, so the nozzles are kept
	// even when the symbol is unknown.
	nozzles, nozzleErr := symbol.IndexNozzles(o.Nozzles)
	req.Nozzles = nozzles

	def, err := lib.Lookup(o.Symbol)
	if err != nil {
		return req, fmt.Errorf("object %s: %w: %w", o.ID, placement.ErrUnknownSymbol, err)
	}
	req.Symbol = def

	// Stretched symbols never read the nozzles, so bad numbering only
	// matters for a fit.
	if nozzleErr != nil {
		if def.Placement == symbol.FitNozzles {
			return req, fmt.Errorf("object %s: %w", o.ID, nozzleErr)
		}
		log.Printf("[LAYOUT] object %s: ignoring nozzles: %v", o.ID, nozzleErr)
	}
	return req, nil
}
