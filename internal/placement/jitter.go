package placement

import (
	"fmt"
	"math"
	"math/rand"

	"mtp-placer/pkg/geometry"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// JitterOptions configures a robustness run of FindBestFit.
type JitterOptions struct {
	Trials    int     // number of perturbed searches
	Amplitude float64 // maximum displacement applied to each field point
	Seed      int64   // 0 selects a fixed default seed
	Search    SearchParams
}

// JitterReport summarizes how far the fitted transform drifts from the
// unperturbed one when the target points are displaced at random.
type JitterReport struct {
	Reference Transform2D `json:"reference"`
	Trials    int         `json:"trials"`
	Failures  int         `json:"failures"`

	MeanScaleDev  float64 `json:"mean_scale_dev"`
	MaxScaleDev   float64 `json:"max_scale_dev"`
	MeanRotDev    float64 `json:"mean_rot_dev"` // degrees
	MaxRotDev     float64 `json:"max_rot_dev"`
	MeanOffsetDev float64 `json:"mean_offset_dev"`
	MaxOffsetDev  float64 `json:"max_offset_dev"`
}

func (r JitterReport) String() string {
	return fmt.Sprintf("%d trials, %d failed: scale ±%.4f (max %.4f) rot ±%.2f° (max %.2f°) offset ±%.3f (max %.3f)",
		r.Trials, r.Failures,
		r.MeanScaleDev, r.MaxScaleDev,
		r.MeanRotDev, r.MaxRotDev,
		r.MeanOffsetDev, r.MaxOffsetDev)
}

// NewRNG returns the deterministic source used by Jitter. A zero seed maps
// to 1 so that unset options still reproduce.
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}

// Jitter fits points onto field once unperturbed and then Trials more times
// with every field point displaced uniformly within ±Amplitude on each axis,
// reporting the deviation of the perturbed fits from the reference. A nil
// rng uses NewRNG(opts.Seed).
func Jitter(points, field []geometry.Point2D, start Transform2D, opts JitterOptions, rng *rand.Rand) (JitterReport, error) {
	if opts.Trials < 1 {
		return JitterReport{}, fmt.Errorf("%w: trials must be at least 1, got %d", ErrInvalidParams, opts.Trials)
	}
	if opts.Amplitude < 0 {
		return JitterReport{}, fmt.Errorf("%w: amplitude must not be negative", ErrInvalidParams)
	}
	if rng == nil {
		rng = NewRNG(opts.Seed)
	}

	ref, err := FindBestFit(points, field, start, opts.Search)
	if err != nil {
		return JitterReport{}, fmt.Errorf("reference fit: %w", err)
	}

	report := JitterReport{Reference: ref, Trials: opts.Trials}
	var scaleDev, rotDev, offsetDev []float64
	shaken := make([]geometry.Point2D, len(field))

	for trial := 0; trial < opts.Trials; trial++ {
		for i, p := range field {
			shaken[i] = geometry.Point2D{
				X: p.X + (rng.Float64()*2-1)*opts.Amplitude,
				Y: p.Y + (rng.Float64()*2-1)*opts.Amplitude,
			}
		}

		got, err := FindBestFit(points, shaken, ref, opts.Search)
		if err != nil {
			report.Failures++
			continue
		}
		scaleDev = append(scaleDev, math.Abs(got.Scale-ref.Scale))
		rotDev = append(rotDev, math.Abs(got.Rotation-ref.Rotation))
		offsetDev = append(offsetDev, got.Offset().Distance(ref.Offset()))
	}

	if len(scaleDev) > 0 {
		report.MeanScaleDev = stat.Mean(scaleDev, nil)
		report.MaxScaleDev = floats.Max(scaleDev)
		report.MeanRotDev = stat.Mean(rotDev, nil)
		report.MaxRotDev = floats.Max(rotDev)
		report.MeanOffsetDev = stat.Mean(offsetDev, nil)
		report.MaxOffsetDev = floats.Max(offsetDev)
	}
	return report, nil
}
