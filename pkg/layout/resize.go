package layout

import (
	"fmt"
	"math"
	"strings"
)

// Handle identifies which edge of a field is being dragged.
type Handle string

const (
	HandleLeft  Handle = "left"
	HandleRight Handle = "right"
)

// ParseHandle validates a handle name.
func ParseHandle(raw string) (Handle, error) {
	switch Handle(strings.ToLower(strings.TrimSpace(raw))) {
	case HandleLeft:
		return HandleLeft, nil
	case HandleRight:
		return HandleRight, nil
	default:
		return "", fmt.Errorf("layout: unknown resize handle %q", raw)
	}
}

// ComputeResizedSpan converts a horizontal pointer delta into a new column
// span. The delta is measured in whole columns (rounded half away from zero)
// and inverted for the left handle. The result is clamped to [1, columns].
// A non-positive container width leaves the span unchanged.
func ComputeResizedSpan(startSpan int, startX, currentX, containerWidth float64, columns int, handle Handle) int {
	if columns <= 0 {
		columns = DefaultColumns
	}
	if containerWidth <= 0 {
		return ClampSpan(startSpan, columns)
	}
	columnWidth := containerWidth / float64(columns)
	// Bounded to ±columns before converting; tiny widths produce huge ratios.
	steps := math.Round((currentX - startX) / columnWidth)
	if math.IsNaN(steps) {
		return ClampSpan(startSpan, columns)
	}
	steps = math.Max(-float64(columns), math.Min(float64(columns), steps))
	delta := int(steps)
	if handle == HandleLeft {
		delta = -delta
	}
	return ClampSpan(startSpan+delta, columns)
}
