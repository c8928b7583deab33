package app

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"mtp-placer/internal/diagram"
	"mtp-placer/internal/project"
	"mtp-placer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plant = `{
  "name": "unit-300",
  "objects": [
    {"id": "V-301", "symbol": "Valve", "nozzles": {"Nozzle#1": {"x": 100, "y": 200}, "Nozzle#2": {"x": 180, "y": 200}}},
    {"id": "T-301", "symbol": "Tank", "box": {"x": 10, "y": 10, "width": 40, "height": 80}},
    {"id": "Q-301", "symbol": "Unknown", "box": {"x": 300, "y": 10, "width": 20, "height": 20}}
  ]
}`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "unit"+project.Extension)
	diagramPath := filepath.Join(dir, "plant.json")
	require.NoError(t, os.WriteFile(diagramPath, []byte(plant), 0o644))

	p := project.New("unit")
	p.SetDiagram(path, diagramPath)
	p.Settings.Workers = 2
	require.NoError(t, p.Save(path))
	return path
}

func TestState_LoadProject(t *testing.T) {
	s := NewState()
	var events []EventType
	for _, ev := range []EventType{EventProjectLoaded, EventLayoutComplete, EventRendered, EventLayoutFailed} {
		ev := ev
		s.On(ev, func(interface{}) { events = append(events, ev) })
	}

	path := writeProject(t)
	require.NoError(t, s.LoadProject(context.Background(), path))

	assert.Equal(t, []EventType{EventProjectLoaded, EventLayoutComplete, EventRendered}, events)
	require.NotNil(t, s.Layout)
	assert.Equal(t, 2, s.Layout.Placed)
	assert.Equal(t, 1, s.Layout.Failed)
	require.NotNil(t, s.Image)
	assert.IsType(t, &image.RGBA{}, s.Image)
	assert.Len(t, s.Inputs(), 2)

	res, ok := s.ObjectAt(geometry.Point2D{X: 30, Y: 50})
	require.True(t, ok)
	assert.Equal(t, "T-301", res.ID)

	px := s.View.Apply(geometry.Point2D{X: 30, Y: 50})
	res, ok = s.ObjectAtPixel(px.X, px.Y)
	require.True(t, ok)
	assert.Equal(t, "T-301", res.ID)

	_, ok = NewState().ObjectAtPixel(1, 1)
	assert.False(t, ok)
}

func TestState_ReloadPicksUpEdits(t *testing.T) {
	s := NewState()
	path := writeProject(t)
	require.NoError(t, s.LoadProject(context.Background(), path))

	d, err := diagram.Load(filepath.Join(filepath.Dir(path), "plant.json"))
	require.NoError(t, err)
	d.Objects = d.Objects[:1]
	require.NoError(t, d.Save(filepath.Join(filepath.Dir(path), "plant.json")))

	require.NoError(t, s.Reload(context.Background()))
	assert.Len(t, s.Layout.Results, 1)
}

func TestState_Failures(t *testing.T) {
	s := NewState()
	assert.Error(t, s.Relayout(context.Background()))

	var failed error
	s.On(EventLayoutFailed, func(data interface{}) { failed = data.(error) })

	path := writeProject(t)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(path), "plant.json")))
	assert.Error(t, s.LoadProject(context.Background(), path))
	assert.Error(t, failed)
}
