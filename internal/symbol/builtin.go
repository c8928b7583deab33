package symbol

import (
	"sort"
	"strings"

	"mtp-placer/pkg/geometry"
)

// Registry of built-in symbols
var registry = make(map[string]*Definition)

// Register adds a symbol to the built-in registry.
func Register(def *Definition) {
	registry[strings.ToLower(def.Name)] = def
}

// Builtin returns a built-in symbol by name, or nil.
func Builtin(name string) *Definition {
	return registry[strings.ToLower(name)]
}

// BuiltinNames returns all registered built-in symbol names, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(registry))
	for _, def := range registry {
		names = append(names, def.Name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(ValveSymbol())
	Register(PumpSymbol())
	Register(TankSymbol())
	Register(SensorSymbol())
	Register(HeatExchangerSymbol())
}

// anchorsAround places label anchors margin units outside each side of the box.
func anchorsAround(size geometry.Size, margin float64) map[Direction]geometry.Point2D {
	c := size.Center()
	return map[Direction]geometry.Point2D{
		North:    {X: c.X, Y: -margin},
		East:     {X: size.Width + margin, Y: c.Y},
		South:    {X: c.X, Y: size.Height + margin},
		West:     {X: -margin, Y: c.Y},
		Centered: c,
	}
}

func closed(points ...geometry.Point2D) []geometry.Point2D {
	return append(points, points[0])
}

// ValveSymbol returns a two-way valve fitted between its two pipe nozzles.
func ValveSymbol() *Definition {
	size := geometry.NewSize(40, 20)
	return &Definition{
		Name:      "Valve",
		Size:      size,
		Placement: FitNozzles,
		Nozzles:   []geometry.Point2D{{X: 0, Y: 10}, {X: 40, Y: 10}},
		Anchors:   anchorsAround(size, 6),
		Outline: [][]geometry.Point2D{
			closed(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 40, Y: 20},
				geometry.Point2D{X: 40, Y: 0}, geometry.Point2D{X: 0, Y: 20}),
		},
		Aliases: []string{"VALVE_2WAY", "OnOffValve"},
	}
}

// PumpSymbol returns a centrifugal pump with a side inlet and a top outlet.
func PumpSymbol() *Definition {
	size := geometry.NewSize(40, 40)
	circle := geometry.GenerateCirclePoints(20, 20, 20, 32)
	return &Definition{
		Name:      "Pump",
		Size:      size,
		Placement: FitNozzles,
		Nozzles:   []geometry.Point2D{{X: 0, Y: 20}, {X: 20, Y: 0}},
		Anchors:   anchorsAround(size, 6),
		Outline: [][]geometry.Point2D{
			append(circle, circle[0]),
			{{X: 20, Y: 0}, {X: 40, Y: 20}, {X: 20, Y: 40}},
		},
		Aliases: []string{"CentrifugalPump"},
	}
}

// TankSymbol returns a vertical vessel stretched into its object box.
func TankSymbol() *Definition {
	size := geometry.NewSize(40, 80)
	return &Definition{
		Name:      "Tank",
		Size:      size,
		Placement: StretchToBoundingBox,
		Nozzles:   []geometry.Point2D{{X: 20, Y: 0}, {X: 20, Y: 80}},
		Anchors:   anchorsAround(size, 6),
		Outline: [][]geometry.Point2D{
			closed(geometry.Point2D{X: 0, Y: 8}, geometry.Point2D{X: 20, Y: 0},
				geometry.Point2D{X: 40, Y: 8}, geometry.Point2D{X: 40, Y: 72},
				geometry.Point2D{X: 20, Y: 80}, geometry.Point2D{X: 0, Y: 72}),
		},
		Aliases: []string{"Vessel"},
	}
}

// SensorSymbol returns an instrument bubble without nozzles.
func SensorSymbol() *Definition {
	size := geometry.NewSize(24, 24)
	circle := geometry.GenerateCirclePoints(12, 12, 12, 24)
	return &Definition{
		Name:      "Sensor",
		Size:      size,
		Placement: StretchToBoundingBox,
		Anchors:   anchorsAround(size, 4),
		Outline:   [][]geometry.Point2D{append(circle, circle[0])},
		Aliases:   []string{"Instrument"},
	}
}

// HeatExchangerSymbol returns a shell-and-tube exchanger with four nozzles.
func HeatExchangerSymbol() *Definition {
	size := geometry.NewSize(60, 30)
	return &Definition{
		Name:      "HeatExchanger",
		Size:      size,
		Placement: FitNozzles,
		Nozzles: []geometry.Point2D{
			{X: 0, Y: 15}, {X: 60, Y: 15}, {X: 15, Y: 0}, {X: 45, Y: 30},
		},
		Anchors: anchorsAround(size, 6),
		Outline: [][]geometry.Point2D{
			closed(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 60, Y: 0},
				geometry.Point2D{X: 60, Y: 30}, geometry.Point2D{X: 0, Y: 30}),
			{{X: 0, Y: 15}, {X: 20, Y: 5}, {X: 40, Y: 25}, {X: 60, Y: 15}},
		},
		Aliases: []string{"HX"},
	}
}
