// Package server exposes symbol placement over HTTP.
package server

import (
	"context"
	"fmt"

	"mtp-placer/internal/config"
	"mtp-placer/internal/diagram"
	"mtp-placer/internal/placement"
	"mtp-placer/internal/render"
	"mtp-placer/internal/store"
	"mtp-placer/internal/symbol"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// LayoutStore is the persistence used by the layout routes. *store.Store
// satisfies it.
type LayoutStore interface {
	Save(ctx context.Context, l *diagram.Layout) (string, error)
	Latest(ctx context.Context, diagramName string) (*diagram.Layout, error)
	List(ctx context.Context, diagramName string) ([]store.Summary, error)
	Delete(ctx context.Context, diagramName string) (int64, error)
	Ping(ctx context.Context) error
}

// Server holds the shared state of the handlers.
type Server struct {
	cfg      *config.Config
	lib      *symbol.Library
	placer   *placement.Placer
	renderer *render.Renderer
	store    LayoutStore // nil disables the layout routes
}

// New creates a Server. st may be nil.
func New(cfg *config.Config, lib *symbol.Library, st LayoutStore) (*Server, error) {
	if err := cfg.Search.Validate(); err != nil {
		return nil, fmt.Errorf("search settings: %w", err)
	}
	r, err := render.New(render.DefaultOptions())
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		lib:      lib,
		placer:   placement.New(cfg.PlacementOptions()),
		renderer: r,
		store:    st,
	}, nil
}

// App builds the fiber application with all routes.
func (s *Server) App() *fiber.App {
	read, write := s.cfg.Timeouts()
	app := fiber.New(fiber.Config{
		ReadTimeout:  read,
		WriteTimeout: write,
		BodyLimit:    s.cfg.BodyLimit,
		AppName:      "MTP Placement Service",
	})

	app.Use(recover.New())
	app.Use(Logger())
	app.Use(CORS())

	app.Get("/health/live", s.liveness)
	app.Get("/health/ready", s.readiness)

	app.Get("/symbols", s.listSymbols)
	app.Get("/symbols/:name", s.getSymbol)

	app.Post("/place", s.place)
	app.Post("/render", s.render)

	app.Get("/layouts", s.listLayouts)
	app.Get("/layouts/:diagram", s.latestLayout)
	app.Delete("/layouts/:diagram", s.deleteLayouts)

	return app
}
