package placement

import "fmt"

// SearchParams bounds the grid search of FindBestFit.
type SearchParams struct {
	RangeScale float64 `json:"range_scale"` // half-range around the seed scale
	RangeRot   float64 `json:"range_rot"`   // half-range around the seed rotation, degrees
	RangeXY    float64 `json:"range_xy"`    // half-range around the seed offsets
	Steps      int     `json:"steps"`       // grid intervals per dimension
	Iterations int     `json:"iterations"`  // refinement passes after the first grid
}

// DefaultSearchParams returns the parameters used for nozzle fitting.
// Tuned for symbols with 2-6 nozzles placed at screen scale.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		RangeScale: 0.3,
		RangeRot:   30,
		RangeXY:    10,
		Steps:      10,
		Iterations: 3,
	}
}

// WithRanges returns a copy of params with new half-ranges.
func (p SearchParams) WithRanges(scale, rot, xy float64) SearchParams {
	p.RangeScale = scale
	p.RangeRot = rot
	p.RangeXY = xy
	return p
}

// WithSteps returns a copy of params with a new grid resolution.
func (p SearchParams) WithSteps(steps int) SearchParams {
	p.Steps = steps
	return p
}

// WithIterations returns a copy of params with a new refinement depth.
func (p SearchParams) WithIterations(iterations int) SearchParams {
	p.Iterations = iterations
	return p
}

// Evaluations returns how many candidate transforms a full search visits.
func (p SearchParams) Evaluations() int {
	side := p.Steps + 1
	return side * side * side * side * (p.Iterations + 1)
}

// Validate checks that a search can run with these parameters.
func (p SearchParams) Validate() error {
	if p.Steps < 1 {
		return fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidParams, p.Steps)
	}
	if p.Iterations < 0 {
		return fmt.Errorf("%w: iterations must not be negative, got %d", ErrInvalidParams, p.Iterations)
	}
	if p.RangeScale < 0 || p.RangeRot < 0 || p.RangeXY < 0 {
		return fmt.Errorf("%w: ranges must not be negative", ErrInvalidParams)
	}
	return nil
}
