package placement

import (
	"fmt"
	"math"

	"mtp-placer/internal/symbol"
	"mtp-placer/pkg/geometry"
)

// Mode records how a result was placed.
type Mode int

const (
	ModePlaceholder Mode = iota // no placement possible, box outline only
	ModeStretch                 // stretched into the target box
	ModeFit                     // fitted onto the target nozzles
)

func (m Mode) String() string {
	switch m {
	case ModeStretch:
		return "stretch"
	case ModeFit:
		return "fit"
	default:
		return "placeholder"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(data []byte) error {
	switch string(data) {
	case "stretch":
		*m = ModeStretch
	case "fit":
		*m = ModeFit
	case "placeholder":
		*m = ModePlaceholder
	default:
		return fmt.Errorf("unknown placement mode %q", string(data))
	}
	return nil
}

// Request is the per-object input of a placement.
type Request struct {
	ID       string
	Symbol   *symbol.Definition
	Box      geometry.Rect      // target bounding box, diagram coordinates
	Nozzles  []geometry.Point2D // target nozzles, diagram coordinates
	Rotation float64            // nominal rotation hint, degrees
	Label    string
}

// Result is the computed placement of one object.
type Result struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Label  string `json:"label,omitempty"`
	Mode   Mode   `json:"mode"`

	// Transform maps symbol-local points about Pivot into the diagram.
	// For stretch placements Scale is the smaller axis factor; ScaleX and
	// ScaleY carry the actual stretch.
	Transform Transform2D      `json:"transform"`
	Pivot     geometry.Point2D `json:"pivot"`
	ScaleX    float64          `json:"scale_x"`
	ScaleY    float64          `json:"scale_y"`

	Rect     geometry.Rect `json:"rect"`
	Rotation float64       `json:"rotation"` // degrees, about Rect's center

	Anchors        map[symbol.Direction]geometry.Point2D `json:"anchors,omitempty"`
	LabelDirection symbol.Direction                      `json:"label_direction"`
	LabelAnchor    geometry.Point2D                      `json:"label_anchor"`

	Cost float64 `json:"cost,omitempty"` // match cost of a fit
	Err  string  `json:"error,omitempty"`
}

// SymbolTransform returns the matrix taking symbol-local coordinates to
// diagram coordinates. Placeholders map nothing and return the identity.
func (r Result) SymbolTransform() geometry.AffineTransform {
	switch r.Mode {
	case ModeFit:
		return r.Transform.Affine(r.Pivot)
	case ModeStretch:
		theta := -r.Rotation * math.Pi / 180
		cos, sin := math.Cos(theta), math.Sin(theta)
		c := r.Rect.Center()
		rotate := geometry.AffineTransform{A: cos, B: -sin, TX: c.X, C: sin, D: cos, TY: c.Y}
		stretch := geometry.AffineTransform{
			A: r.ScaleX, TX: -r.Pivot.X * r.ScaleX,
			D: r.ScaleY, TY: -r.Pivot.Y * r.ScaleY,
		}
		return rotate.Compose(stretch)
	}
	return geometry.Identity()
}

// Options configures a Placer.
type Options struct {
	Search SearchParams
	// MinSymbolRadius is the nozzle spread below which the seed scale is 1.
	MinSymbolRadius float64
}

// DefaultOptions returns default placement options.
func DefaultOptions() Options {
	return Options{
		Search:          DefaultSearchParams(),
		MinSymbolRadius: 1e-6,
	}
}

// Placer computes placements. It holds no per-request state and is safe for
// concurrent use.
type Placer struct {
	opts Options
}

// New creates a Placer.
func New(opts Options) *Placer {
	return &Placer{opts: opts}
}

// Options returns the placer's configuration.
func (p *Placer) Options() Options {
	return p.opts
}

// Place computes the placement for req according to the symbol's policy.
// A returned error means no placement was possible; callers fall back to
// Placeholder for that object.
func (p *Placer) Place(req Request) (Result, error) {
	def := req.Symbol
	if def == nil {
		return Result{}, ErrUnknownSymbol
	}

	switch def.Placement {
	case symbol.StretchToBoundingBox:
		return p.stretch(req)
	case symbol.FitNozzles:
		return p.fit(req)
	}
	return Result{}, fmt.Errorf("%w: %s has placement %v", ErrNoFit, def.Name, def.Placement)
}

func (p *Placer) stretch(req Request) (Result, error) {
	def := req.Symbol
	if req.Box.IsEmpty() {
		return Result{}, fmt.Errorf("%w: %s", ErrNoBoundingBox, req.ID)
	}

	sx := req.Box.Width / def.Size.Width
	sy := req.Box.Height / def.Size.Height
	center := req.Box.Center()

	return Result{
		ID:     req.ID,
		Symbol: def.Name,
		Label:  req.Label,
		Mode:   ModeStretch,
		Transform: Transform2D{
			Scale:    math.Min(sx, sy),
			Rotation: req.Rotation,
			OffsetX:  center.X,
			OffsetY:  center.Y,
		},
		Pivot:          def.Size.Center(),
		ScaleX:         sx,
		ScaleY:         sy,
		Rect:           req.Box,
		Rotation:       req.Rotation,
		Anchors:        rescaleAnchors(def, req.Box),
		LabelDirection: symbol.Centered,
		LabelAnchor:    center,
	}, nil
}

func (p *Placer) fit(req Request) (Result, error) {
	def := req.Symbol
	if len(def.Nozzles) == 0 {
		return Result{}, fmt.Errorf("%w: symbol %s has no nozzles", ErrNoFit, def.Name)
	}
	if len(req.Nozzles) == 0 {
		return Result{}, fmt.Errorf("%w: object %s has no nozzle points", ErrNoFit, req.ID)
	}

	symCOG, _ := geometry.ComputeCOG(def.Nozzles)
	symRadius, _ := geometry.ComputeRadius(def.Nozzles, symCOG)
	tgtCOG, _ := geometry.ComputeCOG(req.Nozzles)
	tgtRadius, _ := geometry.ComputeRadius(req.Nozzles, tgtCOG)

	scale := 1.0
	if symRadius > p.opts.MinSymbolRadius && tgtRadius > 0 {
		scale = tgtRadius / symRadius
	}
	seed := Transform2D{
		Scale:    scale,
		Rotation: req.Rotation,
		OffsetX:  tgtCOG.X,
		OffsetY:  tgtCOG.Y,
	}

	best, err := FindBestFit(def.Nozzles, req.Nozzles, seed, p.opts.Search)
	if err != nil {
		return Result{}, fmt.Errorf("fit %s onto %s: %w", def.Name, req.ID, err)
	}
	cost, err := MatchCost(Apply(best, symCOG, def.Nozzles), req.Nozzles)
	if err != nil {
		return Result{}, fmt.Errorf("fit %s onto %s: %w", def.Name, req.ID, err)
	}

	// The box center sits away from the nozzle COG, so it goes through the
	// transform as well.
	boxCenter := Apply(best, symCOG, []geometry.Point2D{def.Size.Center()})[0]
	rect := geometry.RectAround(boxCenter, def.Size.Width*best.Scale, def.Size.Height*best.Scale)

	anchors := rescaleAnchors(def, rect)
	dir := TranslateRotToAlignment(best.Rotation * math.Pi / 180)
	labelAnchor, ok := anchors[dir]
	if !ok {
		labelAnchor = rect.Center()
	}

	return Result{
		ID:             req.ID,
		Symbol:         def.Name,
		Label:          req.Label,
		Mode:           ModeFit,
		Transform:      best,
		Pivot:          symCOG,
		ScaleX:         best.Scale,
		ScaleY:         best.Scale,
		Rect:           rect,
		Rotation:       best.Rotation,
		Anchors:        anchors,
		LabelDirection: dir,
		LabelAnchor:    labelAnchor,
		Cost:           cost,
	}, nil
}

// Placeholder returns the degraded result for an object that could not be
// placed: its box (or the extent of its nozzles) with the label centered.
func Placeholder(req Request, cause error) Result {
	rect := req.Box
	if rect.IsEmpty() && len(req.Nozzles) > 0 {
		rect = geometry.BoundingBox(req.Nozzles)
	}
	res := Result{
		ID:             req.ID,
		Label:          req.Label,
		Mode:           ModePlaceholder,
		Transform:      Identity(),
		Rect:           rect,
		Rotation:       req.Rotation,
		LabelDirection: symbol.Centered,
		LabelAnchor:    rect.Center(),
	}
	if req.Symbol != nil {
		res.Symbol = req.Symbol.Name
	}
	if cause != nil {
		res.Err = cause.Error()
	}
	return res
}
