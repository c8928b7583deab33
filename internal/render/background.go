package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mtp-placer/pkg/geometry"

	_ "golang.org/x/image/tiff"
)

// Background is a raster drawn underneath the symbols, for example a scan of
// the original drawing. It is stretched over the diagram extent.
type Background struct {
	Path    string
	Image   image.Image
	DPI     float64 // from TIFF metadata, 0 if unknown
	Opacity float64 // 0.0 - 1.0
}

// LoadBackground decodes a PNG, JPEG or TIFF file.
func LoadBackground(path string) (*Background, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open background: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode background: %w", err)
	}

	bg := &Background{Path: path, Image: img, Opacity: 0.5}
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".tif" || ext == ".tiff" {
		if dpi, err := tiffDPI(file); err == nil {
			bg.DPI = dpi
		}
	}
	return bg, nil
}

// Size returns the image dimensions in pixels.
func (b *Background) Size() geometry.Size {
	if b == nil || b.Image == nil {
		return geometry.Size{}
	}
	r := b.Image.Bounds()
	return geometry.NewSize(float64(r.Dx()), float64(r.Dy()))
}

// SupportedFormats returns the background file extensions LoadBackground reads.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks the extension of path.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

var errNoResolution = errors.New("no resolution tags")

// tiffDPI reads the X (or Y) resolution tag of the first IFD.
func tiffDPI(r io.ReaderAt) (float64, error) {
	header := make([]byte, 8)
	if _, err := r.ReadAt(header, 0); err != nil {
		return 0, err
	}

	var order binary.ByteOrder
	switch string(header[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0, fmt.Errorf("not a TIFF file")
	}

	ifd := int64(order.Uint32(header[4:8]))
	count := make([]byte, 2)
	if _, err := r.ReadAt(count, ifd); err != nil {
		return 0, err
	}

	var xRes, yRes float64
	unit := uint16(2) // inches
	entry := make([]byte, 12)
	for i := 0; i < int(order.Uint16(count)); i++ {
		if _, err := r.ReadAt(entry, ifd+2+int64(i)*12); err != nil {
			return 0, err
		}
		tag := order.Uint16(entry[0:2])
		kind := order.Uint16(entry[2:4])
		value := order.Uint32(entry[8:12])

		switch {
		case tag == 282 && kind == 5:
			xRes = tiffRational(r, int64(value), order)
		case tag == 283 && kind == 5:
			yRes = tiffRational(r, int64(value), order)
		case tag == 296 && kind == 3:
			unit = order.Uint16(entry[8:10])
		}
	}

	dpi := xRes
	if dpi == 0 {
		dpi = yRes
	}
	if dpi == 0 {
		return 0, errNoResolution
	}
	if unit == 3 { // centimeters
		dpi *= 2.54
	}
	return dpi, nil
}

func tiffRational(r io.ReaderAt, offset int64, order binary.ByteOrder) float64 {
	buf := make([]byte, 8)
	if _, err := r.ReadAt(buf, offset); err != nil {
		return 0
	}
	num, denom := order.Uint32(buf[0:4]), order.Uint32(buf[4:8])
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}
