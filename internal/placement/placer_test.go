package placement_test

import (
	"encoding/json"
	"errors"
	"testing"

	"mtp-placer/internal/placement"
	"mtp-placer/internal/symbol"
	"mtp-placer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlace_FitValve(t *testing.T) {
	p := placement.New(placement.DefaultOptions())
	req := placement.Request{
		ID:      "V-101",
		Symbol:  symbol.ValveSymbol(),
		Nozzles: []geometry.Point2D{{X: 100, Y: 200}, {X: 180, Y: 200}},
		Label:   "V-101",
	}

	res, err := p.Place(req)
	require.NoError(t, err)

	assert.Equal(t, placement.ModeFit, res.Mode)
	assert.Equal(t, placement.Transform2D{Scale: 2, OffsetX: 140, OffsetY: 200}, res.Transform)
	assert.Equal(t, 0.0, res.Cost)
	assert.Equal(t, geometry.NewRect(100, 180, 80, 40), res.Rect)
	assert.Equal(t, symbol.North, res.LabelDirection)
	assert.Equal(t, geometry.Point2D{X: 140, Y: 168}, res.LabelAnchor)

	m := res.SymbolTransform()
	assert.Equal(t, geometry.Point2D{X: 100, Y: 200}, m.Apply(geometry.Point2D{X: 0, Y: 10}))
}

func TestPlace_FitUsesRotationHint(t *testing.T) {
	p := placement.New(placement.DefaultOptions())
	req := placement.Request{
		ID:       "V-102",
		Symbol:   symbol.ValveSymbol(),
		Nozzles:  []geometry.Point2D{{X: 140, Y: 240}, {X: 140, Y: 160}},
		Rotation: 90,
	}

	res, err := p.Place(req)
	require.NoError(t, err)

	assert.InDelta(t, 90.0, res.Rotation, 1e-3)
	assert.InDelta(t, 2.0, res.Transform.Scale, 1e-3)
	assert.Less(t, res.Cost, 1e-3)
	assert.Equal(t, symbol.East, res.LabelDirection)

	nozzle := res.SymbolTransform().Apply(geometry.Point2D{X: 0, Y: 10})
	assert.InDelta(t, 140.0, nozzle.X, 1e-3)
	assert.InDelta(t, 240.0, nozzle.Y, 1e-3)
}

func TestPlace_Stretch(t *testing.T) {
	p := placement.New(placement.DefaultOptions())
	box := geometry.NewRect(10, 20, 80, 40)

	res, err := p.Place(placement.Request{ID: "T-1", Symbol: symbol.TankSymbol(), Box: box})
	require.NoError(t, err)

	assert.Equal(t, placement.ModeStretch, res.Mode)
	assert.Equal(t, box, res.Rect)
	assert.Equal(t, 2.0, res.ScaleX)
	assert.Equal(t, 0.5, res.ScaleY)
	assert.Equal(t, 0.5, res.Transform.Scale)
	assert.Equal(t, symbol.Centered, res.LabelDirection)
	assert.Equal(t, geometry.Point2D{X: 50, Y: 40}, res.LabelAnchor)

	m := res.SymbolTransform()
	topLeft := m.Apply(geometry.Point2D{X: 0, Y: 0})
	bottomRight := m.Apply(geometry.Point2D{X: 40, Y: 80})
	assert.InDelta(t, 10.0, topLeft.X, 1e-9)
	assert.InDelta(t, 20.0, topLeft.Y, 1e-9)
	assert.InDelta(t, 90.0, bottomRight.X, 1e-9)
	assert.InDelta(t, 60.0, bottomRight.Y, 1e-9)

	assert.Equal(t, geometry.Point2D{X: 50, Y: 40}, res.Anchors[symbol.Centered])
}

func TestPlace_RepeatedRequestsAgree(t *testing.T) {
	nozzles := []geometry.Point2D{{X: 131, Y: 243}, {X: 152, Y: 161}}
	place := func() placement.Result {
		p := placement.New(placement.DefaultOptions())
		res, err := p.Place(placement.Request{
			ID:       "V-9",
			Symbol:   symbol.ValveSymbol(),
			Nozzles:  nozzles,
			Rotation: 80,
		})
		require.NoError(t, err)
		return res
	}

	first := place()
	assert.Equal(t, first, place())
}

func pointSymbol(nozzles ...geometry.Point2D) *symbol.Definition {
	return &symbol.Definition{
		Name:      "Point",
		Size:      geometry.NewSize(10, 10),
		Placement: symbol.FitNozzles,
		Nozzles:   nozzles,
	}
}

func TestPlace_CoincidentNozzlesSeedUnitScale(t *testing.T) {
	opts := placement.DefaultOptions()
	opts.Search = opts.Search.WithRanges(0, 0, 0)
	p := placement.New(opts)

	res, err := p.Place(placement.Request{
		ID:      "X-1",
		Symbol:  pointSymbol(geometry.Point2D{X: 5, Y: 5}, geometry.Point2D{X: 5, Y: 5}),
		Nozzles: []geometry.Point2D{{X: 100, Y: 100}, {X: 120, Y: 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Transform.Scale)
	assert.Equal(t, geometry.NewRect(105, 95, 10, 10), res.Rect)
	assert.Equal(t, 20.0, res.Cost)
}

func TestPlace_MinSymbolRadius(t *testing.T) {
	def := pointSymbol(geometry.Point2D{X: 5, Y: 4.75}, geometry.Point2D{X: 5, Y: 5.25})
	req := placement.Request{
		ID:      "X-2",
		Symbol:  def,
		Nozzles: []geometry.Point2D{{X: 100, Y: 100}, {X: 120, Y: 100}},
	}

	opts := placement.DefaultOptions()
	opts.Search = opts.Search.WithRanges(0, 0, 0)
	res, err := placement.New(opts).Place(req)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, res.Transform.Scale, 1e-9, "spread above the threshold scales by radius ratio")

	opts.MinSymbolRadius = 1
	res, err = placement.New(opts).Place(req)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Transform.Scale)
}

func TestPlace_Errors(t *testing.T) {
	p := placement.New(placement.DefaultOptions())

	_, err := p.Place(placement.Request{ID: "x"})
	assert.ErrorIs(t, err, placement.ErrUnknownSymbol)

	_, err = p.Place(placement.Request{ID: "t", Symbol: symbol.TankSymbol()})
	assert.ErrorIs(t, err, placement.ErrNoBoundingBox)

	_, err = p.Place(placement.Request{ID: "v", Symbol: symbol.ValveSymbol()})
	assert.ErrorIs(t, err, placement.ErrNoFit)

	_, err = p.Place(placement.Request{
		ID:      "hx",
		Symbol:  symbol.HeatExchangerSymbol(),
		Nozzles: []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}},
	})
	assert.ErrorIs(t, err, placement.ErrNoFit)
	assert.ErrorIs(t, err, placement.ErrFieldExhausted)
}

func TestPlaceholder(t *testing.T) {
	req := placement.Request{
		ID:      "P-7",
		Symbol:  symbol.PumpSymbol(),
		Nozzles: []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 4}},
		Label:   "P-7",
	}
	res := placement.Placeholder(req, errors.New("no luck"))

	assert.Equal(t, placement.ModePlaceholder, res.Mode)
	assert.Equal(t, "Pump", res.Symbol)
	assert.Equal(t, geometry.NewRect(0, 0, 10, 4), res.Rect)
	assert.Equal(t, geometry.Point2D{X: 5, Y: 2}, res.LabelAnchor)
	assert.Equal(t, "no luck", res.Err)
	assert.Equal(t, geometry.Identity(), res.SymbolTransform())
}

func TestResultJSON(t *testing.T) {
	res := placement.Placeholder(placement.Request{ID: "a", Box: geometry.NewRect(0, 0, 2, 2)}, nil)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "placeholder", raw["mode"])
	assert.Equal(t, "Centered", raw["label_direction"])
	assert.NotContains(t, raw, "error")

	var back placement.Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, placement.ModePlaceholder, back.Mode)
	assert.Equal(t, res.Rect, back.Rect)
}
