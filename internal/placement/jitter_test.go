package placement_test

import (
	"testing"

	"mtp-placer/internal/placement"
	"mtp-placer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jitterField(t *testing.T) []geometry.Point2D {
	t.Helper()
	cog, _ := geometry.ComputeCOG(unitSquare)
	return placement.Apply(placement.Transform2D{Scale: 10, Rotation: 15, OffsetX: 50, OffsetY: 50}, cog, unitSquare)
}

func TestJitter_ZeroAmplitude(t *testing.T) {
	field := jitterField(t)
	start := placement.Transform2D{Scale: 10, Rotation: 15, OffsetX: 50, OffsetY: 50}
	opts := placement.JitterOptions{Trials: 3, Search: placement.DefaultSearchParams()}

	report, err := placement.Jitter(unitSquare, field, start, opts, nil)
	require.NoError(t, err)

	assert.Equal(t, start, report.Reference)
	assert.Equal(t, 3, report.Trials)
	assert.Zero(t, report.Failures)
	assert.Zero(t, report.MaxScaleDev)
	assert.Zero(t, report.MaxRotDev)
	assert.Zero(t, report.MaxOffsetDev)
}

func TestJitter_Reproducible(t *testing.T) {
	field := jitterField(t)
	start := placement.Transform2D{Scale: 10, Rotation: 15, OffsetX: 50, OffsetY: 50}
	opts := placement.JitterOptions{
		Trials:    4,
		Amplitude: 0.2,
		Seed:      7,
		Search:    placement.DefaultSearchParams().WithIterations(2),
	}

	a, err := placement.Jitter(unitSquare, field, start, opts, nil)
	require.NoError(t, err)
	b, err := placement.Jitter(unitSquare, field, start, opts, placement.NewRNG(7))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a.MaxScaleDev, a.MeanScaleDev)
	assert.Less(t, a.MaxOffsetDev, 1.0)
	assert.NotEmpty(t, a.String())
}

func TestJitter_InvalidOptions(t *testing.T) {
	_, err := placement.Jitter(unitSquare, unitSquare, placement.Identity(), placement.JitterOptions{}, nil)
	assert.ErrorIs(t, err, placement.ErrInvalidParams)

	opts := placement.JitterOptions{Trials: 1, Amplitude: -1, Search: placement.DefaultSearchParams()}
	_, err = placement.Jitter(unitSquare, unitSquare, placement.Identity(), opts, nil)
	assert.ErrorIs(t, err, placement.ErrInvalidParams)
}
