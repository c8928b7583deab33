package placement

import "errors"

var (
	// ErrEmptyPoints indicates a point set or field with no points.
	ErrEmptyPoints = errors.New("placement: empty point set")
	// ErrFieldExhausted indicates more points than field points to match them against.
	ErrFieldExhausted = errors.New("placement: field has fewer points than the point set")
	// ErrInvalidParams indicates unusable search parameters.
	ErrInvalidParams = errors.New("placement: invalid search parameters")
	// ErrNoFit indicates no transform could be evaluated for the request.
	ErrNoFit = errors.New("placement: no fit possible")
	// ErrNoBoundingBox indicates a stretch placement without a usable target box.
	ErrNoBoundingBox = errors.New("placement: target bounding box is empty")
	// ErrUnknownSymbol indicates a request without a symbol definition.
	ErrUnknownSymbol = errors.New("placement: unknown symbol")
)
