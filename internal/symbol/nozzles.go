package symbol

import (
	"fmt"
	"regexp"
	"strconv"

	"mtp-placer/pkg/geometry"
)

// nozzleNameRe matches nozzle anchor names such as "Nozzle#3".
var nozzleNameRe = regexp.MustCompile(`^(?i:nozzle)#(\d+)$`)

// NozzleName returns the anchor name of the nozzle at zero-based index i.
func NozzleName(i int) string {
	return "Nozzle#" + strconv.Itoa(i+1)
}

// NozzleNumber extracts the one-based number from a nozzle anchor name.
func NozzleNumber(name string) (int, bool) {
	m := nozzleNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// IndexNozzles orders named anchor points by nozzle number. Names that are not
// nozzle names are ignored. The numbers present must be exactly 1..N; any gap
// or duplicate fails the whole set rather than returning part of it.
func IndexNozzles(named map[string]geometry.Point2D) ([]geometry.Point2D, error) {
	byNumber := make(map[int]geometry.Point2D)
	for name, p := range named {
		n, ok := NozzleNumber(name)
		if !ok {
			continue
		}
		if _, dup := byNumber[n]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateNozzle, n)
		}
		byNumber[n] = p
	}

	nozzles := make([]geometry.Point2D, len(byNumber))
	for i := range nozzles {
		p, ok := byNumber[i+1]
		if !ok {
			return nil, fmt.Errorf("%w: %s missing of %d", ErrNozzleGap, NozzleName(i), len(byNumber))
		}
		nozzles[i] = p
	}
	return nozzles, nil
}
