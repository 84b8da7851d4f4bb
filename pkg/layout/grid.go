// Package layout holds the pure geometry behind the 12-column builder grid:
// insertion index computation for drops and span computation for resizes.
package layout

import (
	"math"
	"strconv"
	"strings"
)

// DefaultColumns is the width of the builder grid.
const DefaultColumns = 12

// ClampSpan forces span into [1, columns]. Non-positive column counts use
// DefaultColumns.
func ClampSpan(span, columns int) int {
	if columns <= 0 {
		columns = DefaultColumns
	}
	if span < 1 {
		return 1
	}
	if span > columns {
		return columns
	}
	return span
}

// ColSpanClass renders the "col-span-N" descriptor for span, capped at the
// default grid width.
func ColSpanClass(span int) string {
	return "col-span-" + strconv.Itoa(ClampSpan(span, DefaultColumns))
}

// GridColumnSpan renders the "span N" descriptor for span, capped at the
// default grid width.
func GridColumnSpan(span int) string {
	return "span " + strconv.Itoa(ClampSpan(span, DefaultColumns))
}

// ParseSpanHint reads a span from the legacy descriptors "span N",
// "col-span-N" or a bare number. Numeric types are accepted when they hold a
// whole value. The result is not clamped.
func ParseSpanHint(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(v))
		for _, prefix := range []string{"col-span-", "span "} {
			if rest, ok := strings.CutPrefix(trimmed, prefix); ok {
				trimmed = strings.TrimSpace(rest)
				break
			}
		}
		if trimmed == "" {
			return 0, false
		}
		n, err := strconv.Atoi(trimmed)
		if err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && f == math.Trunc(f) {
			return int(f), true
		}
	}
	return 0, false
}
