package symbol

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Library stores a collection of symbol definitions.
type Library struct {
	Symbols []*Definition `json:"symbols"`
}

// NewLibrary creates a new empty symbol library.
func NewLibrary() *Library {
	return &Library{
		Symbols: make([]*Definition, 0),
	}
}

// Add adds or replaces a symbol definition in the library.
func (lib *Library) Add(def *Definition) {
	for i, s := range lib.Symbols {
		if strings.EqualFold(s.Name, def.Name) {
			lib.Symbols[i] = def
			lib.Sort()
			return
		}
	}
	lib.Symbols = append(lib.Symbols, def)
	lib.Sort()
}

// Remove removes a symbol definition by name.
func (lib *Library) Remove(name string) {
	for i, s := range lib.Symbols {
		if strings.EqualFold(s.Name, name) {
			lib.Symbols = append(lib.Symbols[:i], lib.Symbols[i+1:]...)
			return
		}
	}
}

// Get returns a symbol by name or alias, case-insensitively, or nil if not found.
func (lib *Library) Get(name string) *Definition {
	if lib == nil {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	for _, s := range lib.Symbols {
		if strings.EqualFold(s.Name, name) {
			return s
		}
	}
	for _, s := range lib.Symbols {
		for _, alias := range s.Aliases {
			if strings.EqualFold(alias, name) {
				return s
			}
		}
	}
	return nil
}

// Lookup is Get returning ErrNotFound for missing symbols.
func (lib *Library) Lookup(name string) (*Definition, error) {
	if def := lib.Get(name); def != nil {
		return def, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Names returns the symbol names in library order.
func (lib *Library) Names() []string {
	names := make([]string, len(lib.Symbols))
	for i, s := range lib.Symbols {
		names[i] = s.Name
	}
	return names
}

// Sort sorts symbols by name (case-insensitive).
func (lib *Library) Sort() {
	sort.Slice(lib.Symbols, func(i, j int) bool {
		return strings.ToLower(lib.Symbols[i].Name) < strings.ToLower(lib.Symbols[j].Name)
	})
}

// AddBuiltins adds every registered built-in symbol that the library does not define yet.
func (lib *Library) AddBuiltins() {
	for _, name := range BuiltinNames() {
		if lib.Get(name) == nil {
			lib.Add(Builtin(name))
		}
	}
}

// Save writes the library as indented JSON.
func (lib *Library) Save(path string) error {
	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize symbol library: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write symbol library: %w", err)
	}
	return nil
}

// LoadLibrary loads a symbol library from a JSON file or from a directory of
// SVG symbol sheets. Every definition is validated.
func LoadLibrary(path string) (*Library, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read symbol library: %w", err)
	}
	if info.IsDir() {
		return LoadSVGDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read symbol library: %w", err)
	}

	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("cannot parse symbol library: %w", err)
	}
	for _, def := range lib.Symbols {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	lib.Sort()
	return &lib, nil
}

// Open loads the library at path and adds the built-in symbols it does not
// override. An empty path gives the built-ins only.
func Open(path string) (*Library, error) {
	lib := NewLibrary()
	if path != "" {
		var err error
		if lib, err = LoadLibrary(path); err != nil {
			return nil, err
		}
	}
	lib.AddBuiltins()
	lib.Sort()
	return lib, nil
}

// LoadSVGDir parses every *.svg file in dir into a library. The symbol name is
// the file name without extension unless the sheet sets its own id.
func LoadSVGDir(dir string) (*Library, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.svg"))
	if err != nil {
		return nil, err
	}

	lib := NewLibrary()
	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		def, err := ParseSVG(f, name)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		lib.Add(def)
	}
	return lib, nil
}
