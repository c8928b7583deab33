// Package app provides viewer state management, events and file watching.
package app

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"

	"mtp-placer/internal/diagram"
	"mtp-placer/internal/placement"
	"mtp-placer/internal/project"
	"mtp-placer/internal/render"
	"mtp-placer/internal/symbol"
	"mtp-placer/pkg/geometry"
)

// State holds the open project, its inputs and the current layout.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	Project     *project.File

	// Inputs
	Library    *symbol.Library
	Diagram    *diagram.Diagram
	Background *render.Background

	// Output
	Layout *diagram.Layout
	Image  *image.RGBA
	View   geometry.AffineTransform // diagram to image pixels

	ShowNozzles bool

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventLayoutComplete
	EventLayoutFailed
	EventRendered
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates an empty application state.
func NewState() *State {
	return &State{
		ShowNozzles: true,
		listeners:   make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// LoadProject loads a project and its inputs, then lays it out.
func (s *State) LoadProject(ctx context.Context, path string) error {
	proj, err := project.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Project = proj
	s.mu.Unlock()
	log.Printf("Loaded project %s (%s)", proj.Name, path)
	s.Emit(EventProjectLoaded, proj)

	return s.Reload(ctx)
}

// Reload re-reads the project inputs from disk and re-runs the layout.
func (s *State) Reload(ctx context.Context) error {
	s.mu.RLock()
	path, proj := s.ProjectPath, s.Project
	s.mu.RUnlock()
	if proj == nil {
		return fmt.Errorf("no project loaded")
	}

	lib, err := symbol.Open(proj.GetLibraryPath(path))
	if err != nil {
		s.Emit(EventLayoutFailed, err)
		return err
	}
	d, err := diagram.Load(proj.GetDiagramPath(path))
	if err != nil {
		s.Emit(EventLayoutFailed, err)
		return err
	}

	var bg *render.Background
	if bgPath := proj.GetBackgroundPath(path); bgPath != "" {
		bg, err = render.LoadBackground(bgPath)
		if err != nil {
			log.Printf("Background %s: %v", bgPath, err)
		} else if proj.Settings.BackgroundOpacity > 0 {
			bg.Opacity = proj.Settings.BackgroundOpacity
		}
	}

	s.mu.Lock()
	s.Library = lib
	s.Diagram = d
	s.Background = bg
	s.mu.Unlock()

	return s.Relayout(ctx)
}

// Relayout places the loaded diagram and renders it.
func (s *State) Relayout(ctx context.Context) error {
	s.mu.RLock()
	proj, lib, d, bg, nozzles := s.Project, s.Library, s.Diagram, s.Background, s.ShowNozzles
	s.mu.RUnlock()
	if proj == nil || d == nil {
		return fmt.Errorf("no project loaded")
	}

	l, err := diagram.Arrange(ctx, d, lib, placement.New(proj.PlacementOptions()), proj.Settings.Workers)
	if err != nil {
		s.Emit(EventLayoutFailed, err)
		return err
	}
	log.Printf("Layout %s: %d placed, %d placeholders", d.Name, l.Placed, l.Failed)
	s.Emit(EventLayoutComplete, l)

	opts := render.DefaultOptions()
	if proj.Settings.RenderScale > 0 {
		opts.Scale = proj.Settings.RenderScale
	}
	opts.ShowNozzles = nozzles
	r, err := render.New(opts)
	if err != nil {
		s.Emit(EventLayoutFailed, err)
		return err
	}
	img, err := r.Render(l, lib, bg)
	if err != nil {
		s.Emit(EventLayoutFailed, err)
		return err
	}

	s.mu.Lock()
	s.Layout = l
	s.Image = img
	s.View = r.View(l)
	s.mu.Unlock()
	s.Emit(EventRendered, img)
	return nil
}

// SetShowNozzles toggles nozzle markers for the next render.
func (s *State) SetShowNozzles(show bool) {
	s.mu.Lock()
	s.ShowNozzles = show
	s.mu.Unlock()
}

// Inputs returns the files the current layout depends on.
func (s *State) Inputs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Project == nil {
		return nil
	}
	return s.Project.Inputs(s.ProjectPath)
}

// ObjectAt returns the placement result drawn at a point in diagram
// coordinates.
func (s *State) ObjectAt(p geometry.Point2D) (placement.Result, bool) {
	s.mu.RLock()
	l, lib := s.Layout, s.Library
	s.mu.RUnlock()
	if l == nil {
		return placement.Result{}, false
	}
	return l.HitTest(p, lib)
}

// ObjectAtPixel is ObjectAt for a point in rendered image pixels.
func (s *State) ObjectAtPixel(x, y float64) (placement.Result, bool) {
	s.mu.RLock()
	inv, ok := s.View.Inverse()
	s.mu.RUnlock()
	if !ok {
		return placement.Result{}, false
	}
	return s.ObjectAt(inv.Apply(geometry.Point2D{X: x, Y: y}))
}
