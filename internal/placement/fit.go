package placement

import (
	"fmt"
	"math"

	"mtp-placer/pkg/geometry"
)

// FindBestFit searches for the transform that lays points onto field with the
// lowest MatchCost, starting from start.
//
// Each pass evaluates a (Steps+1)^4 grid spanning start ± the ranges in scale,
// rotation, Y offset and X offset (outermost to innermost), skipping
// non-positive scales. A candidate replaces the best only when strictly
// cheaper, so the earliest grid point wins ties. After a pass the ranges are
// divided by Steps around the best transform and the grid is repeated,
// Iterations more times. The result is the best transform of the last pass.
//
// Points are transformed about their center of gravity.
func FindBestFit(points, field []geometry.Point2D, start Transform2D, params SearchParams) (Transform2D, error) {
	if err := params.Validate(); err != nil {
		return Transform2D{}, err
	}
	center, ok := geometry.ComputeCOG(points)
	if !ok {
		return Transform2D{}, ErrEmptyPoints
	}
	if len(field) == 0 {
		return Transform2D{}, fmt.Errorf("%w: %w", ErrNoFit, ErrEmptyPoints)
	}
	if len(points) > len(field) {
		return Transform2D{}, fmt.Errorf("%w: %w", ErrNoFit, ErrFieldExhausted)
	}

	s := &searcher{
		points: points,
		field:  field,
		center: center,
		buf:    make([]geometry.Point2D, len(points)),
	}

	best := start
	bestCost := math.Inf(1)
	rangeScale, rangeRot, rangeXY := params.RangeScale, params.RangeRot, params.RangeXY
	steps := float64(params.Steps)

	for remaining := params.Iterations; ; remaining-- {
		best, bestCost = s.grid(best, rangeScale, rangeRot, rangeXY, params.Steps)
		if remaining <= 0 || degenerate(rangeScale, rangeRot, rangeXY) {
			break
		}
		rangeScale /= steps
		rangeRot /= steps
		rangeXY /= steps
	}

	if math.IsInf(bestCost, 1) {
		return Transform2D{}, ErrNoFit
	}
	return best, nil
}

func degenerate(rangeScale, rangeRot, rangeXY float64) bool {
	return rangeScale <= 0 && rangeRot <= 0 && rangeXY <= 0
}

// searcher evaluates candidate transforms against one point/field pair
// without allocating per candidate.
type searcher struct {
	points []geometry.Point2D
	field  []geometry.Point2D
	center geometry.Point2D
	buf    []geometry.Point2D
	match  matcher
}

// eval returns the match cost of t, or +Inf when it cannot be computed.
func (s *searcher) eval(t Transform2D) float64 {
	ApplyTo(s.buf, t, s.center, s.points)
	c, err := s.match.cost(s.buf, s.field)
	if err != nil || math.IsNaN(c) {
		return math.Inf(1)
	}
	return c
}

// grid runs one pass around start and returns the best transform and its cost.
func (s *searcher) grid(start Transform2D, rangeScale, rangeRot, rangeXY float64, steps int) (Transform2D, float64) {
	best := start
	bestCost := s.eval(start)
	if degenerate(rangeScale, rangeRot, rangeXY) {
		return best, bestCost
	}

	for is := 0; is <= steps; is++ {
		scale := gridValue(start.Scale, rangeScale, is, steps)
		if scale <= 0 {
			continue
		}
		for ir := 0; ir <= steps; ir++ {
			rot := gridValue(start.Rotation, rangeRot, ir, steps)
			for iy := 0; iy <= steps; iy++ {
				ofsY := gridValue(start.OffsetY, rangeXY, iy, steps)
				for ix := 0; ix <= steps; ix++ {
					cand := Transform2D{
						Scale:    scale,
						Rotation: rot,
						OffsetX:  gridValue(start.OffsetX, rangeXY, ix, steps),
						OffsetY:  ofsY,
					}
					if c := s.eval(cand); c < bestCost {
						best = cand
						bestCost = c
					}
				}
			}
		}
	}

	return best, bestCost
}

// gridValue returns the i-th of steps+1 evenly spaced values in [base-r, base+r].
func gridValue(base, r float64, i, steps int) float64 {
	return base - r + 2*r*float64(i)/float64(steps)
}
