package server_test

import (
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mtp-placer/internal/config"
	"mtp-placer/internal/diagram"
	"mtp-placer/internal/placement"
	"mtp-placer/internal/server"
	"mtp-placer/internal/store"
	"mtp-placer/internal/symbol"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plant = `{
  "name": "unit-200",
  "objects": [
    {"id": "V-201", "symbol": "Valve", "nozzles": {"Nozzle#1": {"x": 100, "y": 200}, "Nozzle#2": {"x": 180, "y": 200}}},
    {"id": "S-201", "symbol": "Sensor", "box": {"x": 20, "y": 20, "width": 24, "height": 24}},
    {"id": "Z-201", "symbol": "Nope", "box": {"x": 50, "y": 50, "width": 10, "height": 10}}
  ]
}`

var testTimeout = fiber.TestConfig{Timeout: 10 * time.Second}

func newApp(t *testing.T, withStore bool) *fiber.App {
	t.Helper()
	cfg := config.Load()
	cfg.Workers = 2

	lib := symbol.NewLibrary()
	lib.AddBuiltins()

	var st server.LayoutStore
	if withStore {
		s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "layouts.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		st = s
	}

	srv, err := server.New(cfg, lib, st)
	require.NoError(t, err)
	return srv.App()
}

func do(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, testTimeout)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	app := newApp(t, true)

	resp := do(t, app, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ready", body["status"])
	assert.EqualValues(t, len(symbol.BuiltinNames()), body["symbols"])
}

func TestSymbols(t *testing.T) {
	app := newApp(t, false)

	resp := do(t, app, http.MethodGet, "/symbols", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, len(symbol.BuiltinNames()))

	resp = do(t, app, http.MethodGet, "/symbols/hx", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var def symbol.Definition
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&def))
	assert.Equal(t, "HeatExchanger", def.Name)
	assert.Len(t, def.Nozzles, 4)

	resp = do(t, app, http.MethodGet, "/symbols/unobtainium", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPlace(t *testing.T) {
	app := newApp(t, false)

	resp := do(t, app, http.MethodPost, "/place", plant)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var l diagram.Layout
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&l))
	assert.Equal(t, "unit-200", l.Diagram)
	require.Len(t, l.Results, 3)
	assert.Equal(t, placement.ModeFit, l.Results[0].Mode)
	assert.Equal(t, placement.ModeStretch, l.Results[1].Mode)
	assert.Equal(t, placement.ModePlaceholder, l.Results[2].Mode)
	assert.NotEmpty(t, l.Results[2].Err)
}

func TestPlace_BadInput(t *testing.T) {
	app := newApp(t, false)

	resp := do(t, app, http.MethodPost, "/place", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/place", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/place?save=true", plant)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRender(t *testing.T) {
	app := newApp(t, false)

	resp := do(t, app, http.MethodPost, "/render", plant)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())

	resp = do(t, app, http.MethodPost, "/render?format=tiff", plant)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/tiff", resp.Header.Get("Content-Type"))

	resp = do(t, app, http.MethodPost, "/render?format=bmp", plant)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLayouts_SaveAndFetch(t *testing.T) {
	app := newApp(t, true)

	resp := do(t, app, http.MethodPost, "/place?save=true", plant)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Layout-ID"))

	resp = do(t, app, http.MethodGet, "/layouts/unit-200", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var l diagram.Layout
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&l))
	assert.Equal(t, 2, l.Placed)

	resp = do(t, app, http.MethodGet, "/layouts?diagram=unit-200", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []store.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 1)

	resp = do(t, app, http.MethodDelete, "/layouts/unit-200", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/layouts/unit-200", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLayouts_NoStore(t *testing.T) {
	app := newApp(t, false)

	resp := do(t, app, http.MethodGet, "/layouts", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
