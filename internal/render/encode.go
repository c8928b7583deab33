package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// Format is a raster output format.
type Format int

const (
	FormatPNG Format = iota
	FormatTIFF
)

func (f Format) String() string {
	if f == FormatTIFF {
		return "tiff"
	}
	return "png"
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatTIFF {
		return "image/tiff"
	}
	return "image/png"
}

// ParseFormat accepts "png", "tif" or "tiff", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png", "":
		return FormatPNG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return FormatPNG, fmt.Errorf("render: unsupported output format %q", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Encode writes img in the given format. TIFF output is deflate-compressed.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return png.Encode(w, img)
	}
}

// WriteFile encodes img to path, choosing the format from its extension.
func WriteFile(path string, img image.Image) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return out.Close()
}
