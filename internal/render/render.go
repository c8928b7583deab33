// Package render rasterizes placed layouts.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"mtp-placer/internal/diagram"
	"mtp-placer/internal/placement"
	"mtp-placer/internal/symbol"
	"mtp-placer/pkg/geometry"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrCanvasTooLarge is returned when the output would exceed MaxPixels.
var ErrCanvasTooLarge = errors.New("render: canvas too large")

// Options configures rendering.
type Options struct {
	Scale       float64 // pixels per diagram unit
	Padding     int     // pixels around the layout bounds
	Supersample int     // render at this multiple and downsample
	MaxPixels   int     // output width*height limit

	LineWidth  int     // outline thickness in output pixels
	NozzleSize int     // nozzle marker radius in output pixels
	FontSize   float64 // label size in points at 72 DPI

	// Placeholder outline dashes, in output pixels
	DashLength float64
	GapLength  float64

	BackColor   color.RGBA
	ShowNozzles bool
	ShowLabels  bool
}

// DefaultOptions returns default rendering options.
func DefaultOptions() Options {
	return Options{
		Scale:       1,
		Padding:     24,
		Supersample: 2,
		MaxPixels:   64 << 20,
		LineWidth:   2,
		NozzleSize:  3,
		FontSize:    12,
		DashLength:  8,
		GapLength:   5,
		BackColor:   color.RGBA{R: 255, G: 255, B: 255, A: 255},
		ShowNozzles: true,
		ShowLabels:  true,
	}
}

// Renderer draws layouts. It is safe for concurrent use.
type Renderer struct {
	opts Options
	font *opentype.Font
}

// New creates a Renderer using the Go Regular font for labels.
func New(opts Options) (*Renderer, error) {
	if opts.Scale <= 0 {
		return nil, fmt.Errorf("render: scale must be positive, got %g", opts.Scale)
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: cannot parse label font: %w", err)
	}
	return &Renderer{opts: opts, font: fnt}, nil
}

// renderContext holds the state of one Render call.
type renderContext struct {
	img  *image.RGBA
	view geometry.AffineTransform // diagram to supersampled pixels
	ss   int
	face font.Face
	opts Options
}

// CanvasSize returns the output size in pixels for a layout.
func (r *Renderer) CanvasSize(l *diagram.Layout) (int, int) {
	b := l.Bounds()
	w := int(math.Ceil(b.Width*r.opts.Scale)) + 2*r.opts.Padding
	h := int(math.Ceil(b.Height*r.opts.Scale)) + 2*r.opts.Padding
	return max(w, 1), max(h, 1)
}

// View returns the mapping from diagram coordinates to output pixels.
func (r *Renderer) View(l *diagram.Layout) geometry.AffineTransform {
	b := l.Bounds()
	s := r.opts.Scale
	pad := float64(r.opts.Padding)
	return geometry.AffineTransform{A: s, TX: pad - b.X*s, D: s, TY: pad - b.Y*s}
}

// Render draws the layout over an optional background. Symbols are looked
// up in lib for their outlines; results whose symbol is missing are drawn as
// placeholders.
func (r *Renderer) Render(l *diagram.Layout, lib diagram.SymbolSource, bg *Background) (*image.RGBA, error) {
	w, h := r.CanvasSize(l)
	if r.opts.MaxPixels > 0 && w*h > r.opts.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrCanvasTooLarge, w, h)
	}

	ss := r.opts.Supersample
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    r.opts.FontSize * float64(ss),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("render: cannot create label face: %w", err)
	}
	defer face.Close()

	superScale := geometry.AffineTransform{A: float64(ss), D: float64(ss)}
	ctx := &renderContext{
		img:  image.NewRGBA(image.Rect(0, 0, w*ss, h*ss)),
		view: superScale.Compose(r.View(l)),
		ss:   ss,
		face: face,
		opts: r.opts,
	}

	draw.Draw(ctx.img, ctx.img.Bounds(), image.NewUniform(r.opts.BackColor), image.Point{}, draw.Src)
	if bg != nil && bg.Image != nil {
		ctx.drawBackground(bg, l.Extent)
	}

	for _, res := range l.Results {
		var def *symbol.Definition
		if res.Mode != placement.ModePlaceholder {
			def, _ = lib.Lookup(res.Symbol)
		}
		if def == nil {
			ctx.drawPlaceholder(res)
			continue
		}
		ctx.drawSymbol(res, def)
	}

	if ss == 1 {
		return ctx.img, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), ctx.img, ctx.img.Bounds(), draw.Src, nil)
	return out, nil
}

func (c *renderContext) toPixels(rect geometry.Rect) image.Rectangle {
	p0 := c.view.Apply(geometry.Point2D{X: rect.X, Y: rect.Y})
	p1 := c.view.Apply(geometry.Point2D{X: rect.X + rect.Width, Y: rect.Y + rect.Height})
	return image.Rect(round(p0.X), round(p0.Y), round(p1.X), round(p1.Y))
}

// drawBackground stretches the background over the diagram extent.
func (c *renderContext) drawBackground(bg *Background, extent geometry.Rect) {
	if extent.IsEmpty() {
		return
	}
	dst := c.toPixels(extent)
	scaled := image.NewRGBA(dst)
	draw.ApproxBiLinear.Scale(scaled, dst, bg.Image, bg.Image.Bounds(), draw.Src, nil)

	alpha := uint8(math.Round(math.Max(0, math.Min(1, bg.Opacity)) * 255))
	draw.DrawMask(c.img, dst, scaled, dst.Min, image.NewUniform(color.Alpha{A: alpha}), image.Point{}, draw.Over)
}

func (c *renderContext) drawSymbol(res placement.Result, def *symbol.Definition) {
	pal := SymbolPalette(def.Name)
	m := c.view.Compose(res.SymbolTransform())
	thick := c.opts.LineWidth * c.ss

	for _, path := range def.OutlinePaths() {
		strokePath(c.img, m.ApplyAll(path), thick, 0, 0, pal.Outline)
	}
	if c.opts.ShowNozzles {
		rad := c.opts.NozzleSize * c.ss
		for _, n := range m.ApplyAll(def.Nozzles) {
			fillCircle(c.img, round(n.X), round(n.Y), rad, pal.Nozzle)
			drawCircle(c.img, round(n.X), round(n.Y), rad, pal.Outline)
		}
	}
	if c.opts.ShowLabels {
		c.drawLabel(res.Label, c.view.Apply(res.LabelAnchor), res.LabelDirection, pal.Label)
	}
}

func (c *renderContext) drawPlaceholder(res placement.Result) {
	pal := placeholderPalette
	if !res.Rect.IsEmpty() {
		corners := c.view.ApplyAll(res.Rect.Corners())
		corners = append(corners, corners[0])
		ss := float64(c.ss)
		strokePath(c.img, corners, c.opts.LineWidth*c.ss, c.opts.DashLength*ss, c.opts.GapLength*ss, pal.Outline)
	}
	if c.opts.ShowLabels {
		c.drawLabel(res.Label, c.view.Apply(res.LabelAnchor), symbol.Centered, pal.Label)
	}
}

// drawLabel draws text on the side of anchor given by dir: above for North,
// starting at the anchor for East, and so on.
func (c *renderContext) drawLabel(text string, anchor geometry.Point2D, dir symbol.Direction, col color.RGBA) {
	if text == "" {
		return
	}
	width := font.MeasureString(c.face, text).Ceil()
	metrics := c.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()

	x, y := round(anchor.X), round(anchor.Y)
	var dotX, dotY int
	switch dir {
	case symbol.North:
		dotX, dotY = x-width/2, y-descent
	case symbol.South:
		dotX, dotY = x-width/2, y+ascent
	case symbol.East:
		dotX, dotY = x, y+(ascent-descent)/2
	case symbol.West:
		dotX, dotY = x-width, y+(ascent-descent)/2
	default:
		dotX, dotY = x-width/2, y+(ascent-descent)/2
	}

	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.Point26_6{X: fixed.I(dotX), Y: fixed.I(dotY)},
	}
	d.DrawString(text)
}
