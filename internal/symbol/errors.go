package symbol

import "errors"

var (
	// ErrInvalidSymbol indicates a definition that cannot be placed.
	ErrInvalidSymbol = errors.New("symbol: invalid definition")
	// ErrNozzleGap indicates nozzle names that do not number 1..N without gaps.
	ErrNozzleGap = errors.New("symbol: nozzle numbering is not contiguous")
	// ErrDuplicateNozzle indicates the same nozzle number given twice.
	ErrDuplicateNozzle = errors.New("symbol: duplicate nozzle number")
	// ErrNotFound indicates a symbol missing from the library.
	ErrNotFound = errors.New("symbol: not found")
)
