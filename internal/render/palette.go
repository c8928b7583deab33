package render

import (
	"hash/fnv"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the colors of one rendered symbol.
type Palette struct {
	Outline color.RGBA
	Nozzle  color.RGBA
	Label   color.RGBA
}

var placeholderPalette = Palette{
	Outline: toRGBA(colorful.Hsv(0, 0.7, 0.8)),
	Nozzle:  toRGBA(colorful.Hsv(0, 0.7, 0.6)),
	Label:   toRGBA(colorful.Hsv(0, 0.7, 0.5)),
}

// SymbolPalette derives a stable palette from a symbol name so the same
// symbol always renders in the same hue.
func SymbolPalette(name string) Palette {
	h := fnv.New32a()
	h.Write([]byte(name))
	hue := float64(h.Sum32() % 360)

	base := colorful.Hsv(hue, 0.65, 0.7)
	black := colorful.Color{}
	return Palette{
		Outline: toRGBA(base),
		Nozzle:  toRGBA(colorful.Hsv(hue, 0.9, 0.9)),
		Label:   toRGBA(base.BlendLab(black, 0.5).Clamped()),
	}
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
