package render

import (
	"image"
	"image/color"
	"math"

	"mtp-placer/pkg/geometry"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// strokePath draws an anti-aliased polyline with the given thickness. A dash
// length of 0 draws it solid. A path ending on its first point is stroked as
// a closed loop.
//
// The rasterizer only covers the path's pixel bounds, so long outline lists
// do not pay for the full canvas on every path.
func strokePath(img *image.RGBA, path []geometry.Point2D, thickness int, dash, gap float64, c color.RGBA) {
	if len(path) < 2 || thickness <= 0 {
		return
	}
	pad := thickness + 2
	bb := geometry.BoundingBox(path)
	area := image.Rect(
		int(math.Floor(bb.X))-pad, int(math.Floor(bb.Y))-pad,
		int(math.Ceil(bb.X+bb.Width))+pad, int(math.Ceil(bb.Y+bb.Height))+pad,
	).Intersect(img.Bounds())
	if area.Empty() {
		return
	}
	dst := img.SubImage(area).(*image.RGBA)

	w, h := area.Dx(), area.Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)

	var dashes []float64
	capFn := rasterx.RoundCap
	if dash > 0 {
		dashes = []float64{dash, gap}
		capFn = rasterx.ButtCap
	}
	dasher.SetStroke(fixed.Int26_6(thickness*64), 0, capFn, capFn, rasterx.RoundGap, rasterx.Round, dashes, 0)
	dasher.SetColor(c)

	closed := len(path) > 2 && path[0] == path[len(path)-1]
	if closed {
		path = path[:len(path)-1]
	}
	at := func(p geometry.Point2D) fixed.Point26_6 {
		return rasterx.ToFixedP(p.X-float64(area.Min.X), p.Y-float64(area.Min.Y))
	}
	dasher.Start(at(path[0]))
	for _, p := range path[1:] {
		dasher.Line(at(p))
	}
	dasher.Stop(closed)
	dasher.Draw()
}

// fillCircle fills a circle with the given color.
func fillCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	bounds := img.Bounds()
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r && (image.Point{X: x, Y: y}).In(bounds) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// drawCircle draws a circle outline using the midpoint algorithm.
func drawCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	bounds := img.Bounds()
	set := func(x, y int) {
		if (image.Point{X: x, Y: y}).In(bounds) {
			img.SetRGBA(x, y, c)
		}
	}

	x, y, err := r, 0, 0
	for x >= y {
		set(cx+x, cy+y)
		set(cx+y, cy+x)
		set(cx-y, cy+x)
		set(cx-x, cy+y)
		set(cx-x, cy-y)
		set(cx-y, cy-x)
		set(cx+y, cy-x)
		set(cx+x, cy-y)

		y++
		if err <= 0 {
			err += 2*y + 1
		}
		if err > 0 {
			x--
			err -= 2*x + 1
		}
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
