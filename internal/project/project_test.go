package project

import (
	"os"
	"path/filepath"
	"testing"

	"mtp-placer/internal/placement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit"+Extension)

	p := New("unit")
	p.SetDiagram(path, filepath.Join(dir, "diagrams", "unit.json"))
	p.SetLibrary(path, filepath.Join(dir, "symbols.json"))
	p.Settings.Search = p.Settings.Search.WithSteps(6)
	require.NoError(t, p.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "unit", loaded.Name)
	assert.Equal(t, filepath.Join("diagrams", "unit.json"), loaded.DiagramPath)
	assert.Equal(t, filepath.Join(dir, "diagrams", "unit.json"), loaded.GetDiagramPath(path))
	assert.Equal(t, filepath.Join(dir, "symbols.json"), loaded.GetLibraryPath(path))
	assert.Equal(t, 6, loaded.Settings.Search.Steps)
	assert.Equal(t, 6, loaded.PlacementOptions().Search.Steps)
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minimal"+Extension)
	require.NoError(t, os.WriteFile(path, []byte(`{"diagram": "/abs/plant.json"}`), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", p.Name)
	assert.Equal(t, placement.DefaultSearchParams(), p.Settings.Search)
	assert.Equal(t, "/abs/plant.json", p.GetDiagramPath(path))
	assert.Empty(t, p.GetLibraryPath(path))
	assert.Equal(t, filepath.Join(dir, "minimal.png"), p.GetOutputPath(path))
	assert.Equal(t, []string{path, "/abs/plant.json"}, p.Inputs(path))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"nodiagram": `{"name": "x"}`,
		"future":    `{"version": 99, "diagram": "d.json"}`,
		"badsteps":  `{"diagram": "d.json", "settings": {"search": {"steps": 0}}}`,
		"garbage":   `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+Extension)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "missing"+Extension))
	assert.Error(t, err)
}
