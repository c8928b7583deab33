package placement

import (
	"math"

	"mtp-placer/pkg/geometry"
)

// MatchCost returns the summed distance of a greedy nearest-neighbour pairing
// of points onto field.
//
// Points are taken in order; each takes the nearest field point not yet taken,
// first one wins on equal distance. The pairing is not a globally optimal
// assignment and depends on the order of points.
func MatchCost(points, field []geometry.Point2D) (float64, error) {
	var m matcher
	return m.cost(points, field)
}

// matcher keeps the consumed-flags buffer between evaluations of the search.
type matcher struct {
	used []bool
}

func (m *matcher) cost(points, field []geometry.Point2D) (float64, error) {
	if len(points) == 0 || len(field) == 0 {
		return 0, ErrEmptyPoints
	}
	if len(points) > len(field) {
		return 0, ErrFieldExhausted
	}

	if cap(m.used) < len(field) {
		m.used = make([]bool, len(field))
	}
	used := m.used[:len(field)]
	for i := range used {
		used[i] = false
	}

	var total float64
	for _, p := range points {
		best := -1
		bestDist := math.Inf(1)
		for j, f := range field {
			if used[j] {
				continue
			}
			if d := p.Distance(f); best < 0 || d < bestDist {
				best = j
				bestDist = d
			}
		}
		if best < 0 {
			return 0, ErrFieldExhausted
		}
		used[best] = true
		total += bestDist
	}

	return total, nil
}
