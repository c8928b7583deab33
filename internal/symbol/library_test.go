package symbol_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mtp-placer/internal/symbol"
	"mtp-placer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexNozzles(t *testing.T) {
	named := map[string]geometry.Point2D{
		"Nozzle#2": {X: 2},
		"nozzle#1": {X: 1},
		"Nozzle#3": {X: 3},
		"Handle":   {X: 99},
	}

	nozzles, err := symbol.IndexNozzles(named)
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point2D{{X: 1}, {X: 2}, {X: 3}}, nozzles)
}

func TestIndexNozzles_Failures(t *testing.T) {
	_, err := symbol.IndexNozzles(map[string]geometry.Point2D{"Nozzle#2": {}})
	assert.ErrorIs(t, err, symbol.ErrNozzleGap)

	_, err = symbol.IndexNozzles(map[string]geometry.Point2D{"Nozzle#1": {}, "Nozzle#01": {}})
	assert.ErrorIs(t, err, symbol.ErrDuplicateNozzle)

	nozzles, err := symbol.IndexNozzles(nil)
	require.NoError(t, err)
	assert.Empty(t, nozzles)
}

func TestNozzleName(t *testing.T) {
	assert.Equal(t, "Nozzle#1", symbol.NozzleName(0))
	n, ok := symbol.NozzleNumber(symbol.NozzleName(4))
	assert.True(t, ok)
	assert.Equal(t, 5, n)
}

func TestLibrary_GetByAlias(t *testing.T) {
	lib := symbol.NewLibrary()
	lib.AddBuiltins()

	assert.Equal(t, "Valve", lib.Get("valve").Name)
	assert.Equal(t, "Valve", lib.Get("onoffvalve").Name)
	assert.Nil(t, lib.Get("nope"))

	_, err := lib.Lookup("nope")
	assert.ErrorIs(t, err, symbol.ErrNotFound)
}

func TestLibrary_AddReplacesAndSorts(t *testing.T) {
	lib := symbol.NewLibrary()
	lib.Add(&symbol.Definition{Name: "b", Size: geometry.NewSize(1, 1)})
	lib.Add(&symbol.Definition{Name: "A", Size: geometry.NewSize(1, 1)})
	lib.Add(&symbol.Definition{Name: "B", Size: geometry.NewSize(2, 2)})

	assert.Equal(t, []string{"A", "B"}, lib.Names())
	assert.Equal(t, 2.0, lib.Get("b").Size.Width)

	lib.Remove("a")
	assert.Equal(t, []string{"B"}, lib.Names())
}

func TestLibrary_SaveLoadRoundTrip(t *testing.T) {
	lib := symbol.NewLibrary()
	lib.AddBuiltins()

	path := filepath.Join(t.TempDir(), "symbols.json")
	require.NoError(t, lib.Save(path))

	loaded, err := symbol.LoadLibrary(path)
	require.NoError(t, err)
	assert.Equal(t, lib.Names(), loaded.Names())

	valve := loaded.Get("Valve")
	require.NotNil(t, valve)
	assert.Equal(t, symbol.FitNozzles, valve.Placement)
	assert.Equal(t, symbol.ValveSymbol().Anchors, valve.Anchors)
}

func TestOpen_MergesBuiltins(t *testing.T) {
	lib, err := symbol.Open("")
	require.NoError(t, err)
	assert.Len(t, lib.Symbols, len(symbol.BuiltinNames()))

	valve := *symbol.Builtin("Valve")
	valve.Size.Width = 50
	custom := symbol.NewLibrary()
	custom.Add(&valve)
	path := filepath.Join(t.TempDir(), "symbols.json")
	require.NoError(t, custom.Save(path))

	lib, err = symbol.Open(path)
	require.NoError(t, err)
	assert.Len(t, lib.Symbols, len(symbol.BuiltinNames()))
	assert.Equal(t, 50.0, lib.Get("Valve").Size.Width)
	assert.Equal(t, 40.0, symbol.Builtin("Valve").Size.Width)

	_, err = symbol.Open(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadLibrary_RejectsInvalidSymbol(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	data, err := json.Marshal(map[string]any{
		"symbols": []map[string]any{{"name": "Flat", "size": map[string]float64{"width": 0, "height": 3}}},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = symbol.LoadLibrary(path)
	assert.ErrorIs(t, err, symbol.ErrInvalidSymbol)
}

func TestLoadLibrary_SVGDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "valve.svg"), []byte(valveSheet), 0644))

	lib, err := symbol.LoadLibrary(dir)
	require.NoError(t, err)
	require.NotNil(t, lib.Get("valve"))
	assert.Len(t, lib.Get("valve").Nozzles, 2)
}

func TestDirectionJSON(t *testing.T) {
	data, err := json.Marshal(map[symbol.Direction]int{symbol.East: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"East":1}`, string(data))

	var d symbol.Direction
	require.NoError(t, json.Unmarshal([]byte(`"south"`), &d))
	assert.Equal(t, symbol.South, d)
	assert.Error(t, json.Unmarshal([]byte(`"up"`), &d))
}

func TestDefinition_OutlineFallsBackToBox(t *testing.T) {
	def := &symbol.Definition{Name: "box", Size: geometry.NewSize(4, 2)}

	paths := def.OutlinePaths()
	require.Len(t, paths, 1)
	assert.Len(t, paths[0], 5)
	assert.Len(t, def.Hull(), 4)
	assert.Equal(t, geometry.Point2D{X: 2, Y: 1}, def.Anchor(symbol.North))
}
