package server

import (
	"bytes"
	"errors"
	"log"

	"mtp-placer/internal/diagram"
	"mtp-placer/internal/render"
	"mtp-placer/internal/store"
	"mtp-placer/internal/symbol"

	"github.com/gofiber/fiber/v3"
)

// symbolInfo is the listing entry of GET /symbols.
type symbolInfo struct {
	Name      string           `json:"name"`
	Placement symbol.Placement `json:"placement"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Nozzles   int              `json:"nozzles"`
	Aliases   []string         `json:"aliases,omitempty"`
}

func (s *Server) liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

func (s *Server) readiness(c fiber.Ctx) error {
	if s.store != nil {
		if err := s.store.Ping(c.Context()); err != nil {
			log.Printf("[HEALTH] store not ready: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"error":  err.Error(),
			})
		}
	}
	return c.JSON(fiber.Map{
		"status":  "ready",
		"symbols": len(s.lib.Symbols),
	})
}

func (s *Server) listSymbols(c fiber.Ctx) error {
	out := make([]symbolInfo, 0, len(s.lib.Symbols))
	for _, def := range s.lib.Symbols {
		out = append(out, symbolInfo{
			Name:      def.Name,
			Placement: def.Placement,
			Width:     def.Size.Width,
			Height:    def.Size.Height,
			Nozzles:   len(def.Nozzles),
			Aliases:   def.Aliases,
		})
	}
	return c.JSON(out)
}

func (s *Server) getSymbol(c fiber.Ctx) error {
	def, err := s.lib.Lookup(c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(def)
}

// layoutBody decodes the request diagram and lays it out. On failure the
// error response is already written; the layout is nil and the error is
// that of the write.
func (s *Server) layoutBody(c fiber.Ctx, tag string) (*diagram.Layout, error) {
	log.Printf("[%s] Content-Length: %d", tag, len(c.Body()))
	if len(c.Body()) == 0 {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "body required"})
	}

	d, err := diagram.Parse(bytes.NewReader(c.Body()))
	if err != nil {
		log.Printf("[%s] Decode error: %v", tag, err)
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	l, err := diagram.Arrange(c.Context(), d, s.lib, s.placer, s.cfg.Workers)
	if err != nil {
		log.Printf("[%s] Layout error: %v", tag, err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("[%s] %s: %d placed, %d placeholders", tag, d.Name, l.Placed, l.Failed)
	return l, nil
}

func (s *Server) place(c fiber.Ctx) error {
	l, err := s.layoutBody(c, "PLACE")
	if l == nil {
		return err
	}

	if c.Query("save") == "true" {
		if s.store == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "layout store disabled"})
		}
		id, err := s.store.Save(c.Context(), l)
		if err != nil {
			log.Printf("[PLACE] Save error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set("X-Layout-ID", id)
	}
	return c.JSON(l)
}

func (s *Server) render(c fiber.Ctx) error {
	format, err := render.ParseFormat(c.Query("format", "png"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	l, err := s.layoutBody(c, "RENDER")
	if l == nil {
		return err
	}

	img, err := s.renderer.Render(l, s.lib, nil)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, render.ErrCanvasTooLarge) {
			status = fiber.StatusRequestEntityTooLarge
		}
		log.Printf("[RENDER] Render error: %v", err)
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	var buf bytes.Buffer
	if err := render.Encode(&buf, img, format); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(buf.Bytes())
}

func (s *Server) listLayouts(c fiber.Ctx) error {
	if s.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "layout store disabled"})
	}
	list, err := s.store.List(c.Context(), c.Query("diagram"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if list == nil {
		list = []store.Summary{}
	}
	return c.JSON(list)
}

func (s *Server) latestLayout(c fiber.Ctx) error {
	if s.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "layout store disabled"})
	}
	l, err := s.store.Latest(c.Context(), c.Params("diagram"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(l)
}

func (s *Server) deleteLayouts(c fiber.Ctx) error {
	if s.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "layout store disabled"})
	}
	n, err := s.store.Delete(c.Context(), c.Params("diagram"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"deleted": n})
}
