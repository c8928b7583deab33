// Package placement fits vector symbols onto diagram objects.
//
// A symbol is placed either by stretching it into the object's bounding box or
// by searching for the similarity transform (uniform scale, rotation, offset)
// that lays the symbol's nozzles onto the object's nozzle points.
package placement

import (
	"fmt"
	"math"

	"mtp-placer/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// Transform2D is a similarity transform applied about a pivot point.
//
// Points are moved by -pivot, scaled, rotated by -Rotation degrees using the
// standard rotation matrix and finally moved by (OffsetX, OffsetY). On a y-down
// screen a positive Rotation therefore turns the symbol counter-clockwise.
type Transform2D struct {
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"` // degrees
	OffsetX  float64 `json:"offset_x"`
	OffsetY  float64 `json:"offset_y"`
}

// Identity returns the transform that only removes the pivot.
func Identity() Transform2D {
	return Transform2D{Scale: 1}
}

func (t Transform2D) String() string {
	return fmt.Sprintf("scale=%.4f rot=%.2f° ofs=(%.2f, %.2f)", t.Scale, t.Rotation, t.OffsetX, t.OffsetY)
}

// Offset returns the translation part as a point.
func (t Transform2D) Offset() geometry.Point2D {
	return geometry.Point2D{X: t.OffsetX, Y: t.OffsetY}
}

// Apply transforms points about pivot. The result is parallel to points.
func Apply(t Transform2D, pivot geometry.Point2D, points []geometry.Point2D) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	ApplyTo(out, t, pivot, points)
	return out
}

// ApplyTo is Apply writing into dst, which must be at least len(points) long.
func ApplyTo(dst []geometry.Point2D, t Transform2D, pivot geometry.Point2D, points []geometry.Point2D) {
	theta := -t.Rotation * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)
	for i, p := range points {
		x := (p.X - pivot.X) * t.Scale
		y := (p.Y - pivot.Y) * t.Scale
		dst[i] = geometry.Point2D{
			X: cos*x - sin*y + t.OffsetX,
			Y: sin*x + cos*y + t.OffsetY,
		}
	}
}

// Affine returns the same mapping as Apply about pivot as a 2x3 matrix, for
// transforming outline paths in bulk.
func (t Transform2D) Affine(pivot geometry.Point2D) geometry.AffineTransform {
	theta := -t.Rotation * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)

	toOrigin := mat.NewDense(3, 3, []float64{
		1, 0, -pivot.X,
		0, 1, -pivot.Y,
		0, 0, 1,
	})
	scale := mat.NewDense(3, 3, []float64{
		t.Scale, 0, 0,
		0, t.Scale, 0,
		0, 0, 1,
	})
	rotate := mat.NewDense(3, 3, []float64{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	})
	offset := mat.NewDense(3, 3, []float64{
		1, 0, t.OffsetX,
		0, 1, t.OffsetY,
		0, 0, 1,
	})

	// Applied right to left: toOrigin, scale, rotate, offset
	var or, ors, m mat.Dense
	or.Mul(offset, rotate)
	ors.Mul(&or, scale)
	m.Mul(&ors, toOrigin)

	return geometry.FromMatrix([2][3]float64{
		{m.At(0, 0), m.At(0, 1), m.At(0, 2)},
		{m.At(1, 0), m.At(1, 1), m.At(1, 2)},
	})
}
