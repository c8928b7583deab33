// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mtp-placer/internal/placement"
)

// Extension is the project file extension.
const Extension = ".mtpproj"

// currentVersion is the project file format version written by Save.
const currentVersion = 1

// File represents a placement project file (.mtpproj).
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Input paths (relative to project file). An empty library means the
	// built-in symbols only.
	LibraryPath    string `json:"library,omitempty"`
	DiagramPath    string `json:"diagram"`
	BackgroundPath string `json:"background,omitempty"`

	// Rendered output (relative to project file)
	OutputPath string `json:"output,omitempty"`

	Settings Settings `json:"settings"`
}

// Settings holds the layout and render settings of a project.
type Settings struct {
	Search            placement.SearchParams `json:"search"`
	MinSymbolRadius   float64                `json:"min_symbol_radius,omitempty"`
	RenderScale       float64                `json:"render_scale,omitempty"`
	BackgroundOpacity float64                `json:"background_opacity,omitempty"`
	Workers           int                    `json:"workers,omitempty"`
}

// New creates a new project file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  currentVersion,
		Name:     name,
		Created:  now,
		Modified: now,
		Settings: Settings{
			Search:            placement.DefaultSearchParams(),
			MinSymbolRadius:   placement.DefaultOptions().MinSymbolRadius,
			RenderScale:       1,
			BackgroundOpacity: 0.35,
		},
	}
}

// Load loads a project from a .mtpproj file. Settings missing from the
// file keep their defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	proj := New(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err := json.Unmarshal(data, proj); err != nil {
		return nil, fmt.Errorf("project %s: %w", path, err)
	}
	if proj.Version > currentVersion {
		return nil, fmt.Errorf("project %s: unsupported version %d", path, proj.Version)
	}
	if proj.DiagramPath == "" {
		return nil, fmt.Errorf("project %s: no diagram", path)
	}
	if err := proj.Settings.Search.Validate(); err != nil {
		return nil, fmt.Errorf("project %s: %w", path, err)
	}
	return proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Version = currentVersion
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// PlacementOptions returns placer options for the project settings.
func (p *File) PlacementOptions() placement.Options {
	opts := placement.DefaultOptions()
	opts.Search = p.Settings.Search
	if p.Settings.MinSymbolRadius > 0 {
		opts.MinSymbolRadius = p.Settings.MinSymbolRadius
	}
	return opts
}

// SetLibrary sets the symbol library path (relative to project).
func (p *File) SetLibrary(projectPath, libraryPath string) {
	p.LibraryPath = relativeTo(projectPath, libraryPath)
	p.Modified = time.Now()
}

// SetDiagram sets the diagram path (relative to project).
func (p *File) SetDiagram(projectPath, diagramPath string) {
	p.DiagramPath = relativeTo(projectPath, diagramPath)
	p.Modified = time.Now()
}

// SetBackground sets the background image path (relative to project).
func (p *File) SetBackground(projectPath, imagePath string) {
	p.BackgroundPath = relativeTo(projectPath, imagePath)
	p.Modified = time.Now()
}

// SetOutput sets the render output path (relative to project).
func (p *File) SetOutput(projectPath, outputPath string) {
	p.OutputPath = relativeTo(projectPath, outputPath)
	p.Modified = time.Now()
}

// GetLibraryPath returns the absolute path to the symbol library, or "".
func (p *File) GetLibraryPath(projectPath string) string {
	return resolve(projectPath, p.LibraryPath)
}

// GetDiagramPath returns the absolute path to the diagram.
func (p *File) GetDiagramPath(projectPath string) string {
	return resolve(projectPath, p.DiagramPath)
}

// GetBackgroundPath returns the absolute path to the background image, or "".
func (p *File) GetBackgroundPath(projectPath string) string {
	return resolve(projectPath, p.BackgroundPath)
}

// GetOutputPath returns the absolute path of the rendered output.
func (p *File) GetOutputPath(projectPath string) string {
	if p.OutputPath == "" {
		// Default: project_name.png
		base := projectPath[:len(projectPath)-len(filepath.Ext(projectPath))]
		return base + ".png"
	}
	return resolve(projectPath, p.OutputPath)
}

// Inputs returns the files a layout of this project is computed from.
func (p *File) Inputs(projectPath string) []string {
	inputs := []string{projectPath, p.GetDiagramPath(projectPath)}
	if lib := p.GetLibraryPath(projectPath); lib != "" {
		inputs = append(inputs, lib)
	}
	if bg := p.GetBackgroundPath(projectPath); bg != "" {
		inputs = append(inputs, bg)
	}
	return inputs
}

func relativeTo(projectPath, path string) string {
	rel, err := filepath.Rel(filepath.Dir(projectPath), path)
	if err != nil {
		return path
	}
	return rel
}

func resolve(projectPath, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(projectPath), path)
}
