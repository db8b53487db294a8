package gas

import (
	"strconv"
	"strings"
)

// FloorGwei is the threshold below which the literal number is
// replaced by a floor label.
const FloorGwei = 0.5

// FloorLabel is shown for readings below FloorGwei.
const FloorLabel = "< 0.5"

// FormatLabel renders a gwei value for display: values >= 10 with no
// decimals, [1,10) with one, below 1 with two, trailing zeros
// stripped. Values under 0.5 collapse to the floor label.
func FormatLabel(gwei float64) string {
	if gwei < FloorGwei {
		return FloorLabel
	}

	var raw string
	switch {
	case gwei >= 10:
		raw = strconv.FormatFloat(gwei, 'f', 0, 64)
	case gwei >= 1:
		raw = strconv.FormatFloat(gwei, 'f', 1, 64)
	default:
		raw = strconv.FormatFloat(gwei, 'f', 2, 64)
	}

	if strings.Contains(raw, ".") {
		raw = strings.TrimRight(raw, "0")
		raw = strings.TrimSuffix(raw, ".")
	}
	return raw
}
