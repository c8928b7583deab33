package placement

import (
	"math"

	"mtp-placer/internal/symbol"
	"mtp-placer/pkg/geometry"
)

// TranslateRotToAlignment picks the label side for a symbol rotated by rot
// radians. The angle is folded into [0, 2π) and split into quarter turns
// centered on the compass directions, each closed at its lower end:
// 0.25π itself is East. Values that do not fold into the range (NaN,
// infinities, or a fold that rounds up to exactly 2π) give Centered.
func TranslateRotToAlignment(rot float64) symbol.Direction {
	r := math.Mod(rot, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}

	switch {
	case r >= 0 && r < 0.25*math.Pi:
		return symbol.North
	case r >= 0.25*math.Pi && r < 0.75*math.Pi:
		return symbol.East
	case r >= 0.75*math.Pi && r < 1.25*math.Pi:
		return symbol.South
	case r >= 1.25*math.Pi && r < 1.75*math.Pi:
		return symbol.West
	case r >= 1.75*math.Pi && r < 2*math.Pi:
		return symbol.North
	}
	return symbol.Centered
}

// RescalePointsByRatio maps points from a box of size from into the
// rectangle to, scaling uniformly by the smaller of the two axis ratios and
// keeping the points centered on the rectangle's center.
func RescalePointsByRatio(points []geometry.Point2D, from geometry.Size, to geometry.Rect) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	center := to.Center()
	if from.Width <= 0 || from.Height <= 0 {
		for i := range out {
			out[i] = center
		}
		return out
	}

	factor := math.Min(to.Width/from.Width, to.Height/from.Height)
	fromCenter := from.Center()
	for i, p := range points {
		out[i] = center.Add(p.Sub(fromCenter).Scale(factor))
	}
	return out
}

// rescaleAnchors applies RescalePointsByRatio to a symbol's label anchors.
func rescaleAnchors(def *symbol.Definition, to geometry.Rect) map[symbol.Direction]geometry.Point2D {
	if len(def.Anchors) == 0 {
		return nil
	}
	dirs := make([]symbol.Direction, 0, len(def.Anchors))
	pts := make([]geometry.Point2D, 0, len(def.Anchors))
	for _, dir := range symbol.Directions {
		if p, ok := def.Anchors[dir]; ok {
			dirs = append(dirs, dir)
			pts = append(pts, p)
		}
	}

	scaled := RescalePointsByRatio(pts, def.Size, to)
	out := make(map[symbol.Direction]geometry.Point2D, len(dirs))
	for i, dir := range dirs {
		out[dir] = scaled[i]
	}
	return out
}
