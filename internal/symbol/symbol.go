// Package symbol provides the vector symbol definitions placed on MTP diagrams.
package symbol

import (
	"fmt"
	"strings"

	"mtp-placer/pkg/geometry"
)

// Direction names a label anchor position on a symbol.
type Direction int

const (
	Centered Direction = iota
	North
	East
	South
	West
)

// Directions lists all anchor directions in a stable order.
var Directions = []Direction{North, East, South, West, Centered}

func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Centered"
	}
}

// ParseDirection parses a direction name, case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, true
	case "east", "e":
		return East, true
	case "south", "s":
		return South, true
	case "west", "w":
		return West, true
	case "centered", "center", "c":
		return Centered, true
	}
	return Centered, false
}

// MarshalText implements encoding.TextMarshaler, so directions also work as JSON map keys.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(data []byte) error {
	dir, ok := ParseDirection(string(data))
	if !ok {
		return fmt.Errorf("unknown direction %q", string(data))
	}
	*d = dir
	return nil
}

// Placement is the strategy used to lay a symbol onto a diagram object.
type Placement int

const (
	StretchToBoundingBox Placement = iota // stretch into the object's box
	FitNozzles                            // fit symbol nozzles onto object nozzles
)

func (p Placement) String() string {
	switch p {
	case StretchToBoundingBox:
		return "stretch"
	case FitNozzles:
		return "fit-nozzles"
	default:
		return "unknown"
	}
}

// ParsePlacement parses a placement policy name.
func ParsePlacement(s string) (Placement, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stretch", "stretch-to-bounding-box", "":
		return StretchToBoundingBox, true
	case "fit-nozzles", "fit", "nozzles":
		return FitNozzles, true
	}
	return StretchToBoundingBox, false
}

// MarshalText implements encoding.TextMarshaler.
func (p Placement) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Placement) UnmarshalText(data []byte) error {
	pl, ok := ParsePlacement(string(data))
	if !ok {
		return fmt.Errorf("unknown placement %q", string(data))
	}
	*p = pl
	return nil
}

// Definition is a reusable vector symbol in local coordinates.
// The local bounding box spans (0,0) to (Size.Width, Size.Height).
// Definitions are read-only once loaded and shared by all placements.
type Definition struct {
	Name      string                         `json:"name"`
	Size      geometry.Size                  `json:"size"`
	Nozzles   []geometry.Point2D             `json:"nozzles,omitempty"`
	Anchors   map[Direction]geometry.Point2D `json:"anchors,omitempty"`
	Placement Placement                      `json:"placement"`
	Outline   [][]geometry.Point2D           `json:"outline,omitempty"`
	Aliases   []string                       `json:"aliases,omitempty"`
}

// Validate checks the definition is usable for placement.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSymbol)
	}
	if d.Size.Width <= 0 || d.Size.Height <= 0 {
		return fmt.Errorf("%w: %s: size must be positive", ErrInvalidSymbol, d.Name)
	}
	if d.Placement == FitNozzles && len(d.Nozzles) == 0 {
		return fmt.Errorf("%w: %s: nozzle fitting needs at least one nozzle", ErrInvalidSymbol, d.Name)
	}
	return nil
}

// Bounds returns the local bounding box.
func (d *Definition) Bounds() geometry.Rect {
	return geometry.Rect{Width: d.Size.Width, Height: d.Size.Height}
}

// Anchor returns the label anchor for dir, falling back to the box center.
func (d *Definition) Anchor(dir Direction) geometry.Point2D {
	if p, ok := d.Anchors[dir]; ok {
		return p
	}
	return d.Size.Center()
}

// OutlinePaths returns the drawable paths, or the closed bounding box when
// the symbol has no outline of its own.
func (d *Definition) OutlinePaths() [][]geometry.Point2D {
	if len(d.Outline) > 0 {
		return d.Outline
	}
	box := d.Bounds().Corners()
	return [][]geometry.Point2D{append(box, box[0])}
}

// Hull returns the convex hull of the outline, used for hit testing.
func (d *Definition) Hull() []geometry.Point2D {
	var pts []geometry.Point2D
	for _, path := range d.OutlinePaths() {
		pts = append(pts, path...)
	}
	return geometry.ConvexHull(pts)
}
