package layout

import "testing"

func stackedBoxes(n int, height float64) []Box {
	boxes := make([]Box, n)
	for i := range boxes {
		top := float64(i) * height
		boxes[i] = Box{Top: top, Bottom: top + height}
	}
	return boxes
}

func TestComputeInsertionIndex(t *testing.T) {
	boxes := stackedBoxes(3, 40) // 0-40, 40-80, 80-120
	const containerTop = 200

	cases := []struct {
		name     string
		pointerY float64
		expect   int
	}{
		{name: "above all", pointerY: 100, expect: 0},
		{name: "top half of first", pointerY: 210, expect: 0},
		{name: "bottom half of first", pointerY: 230, expect: 1},
		{name: "top half of second", pointerY: 245, expect: 1},
		{name: "bottom half of last", pointerY: 310, expect: 3},
		{name: "below all", pointerY: 900, expect: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeInsertionIndex(tc.pointerY, containerTop, boxes); got != tc.expect {
				t.Fatalf("expected %d, got %d", tc.expect, got)
			}
		})
	}
}

func TestComputeInsertionIndex_EmptyList(t *testing.T) {
	if got := ComputeInsertionIndex(50, 0, nil); got != 0 {
		t.Fatalf("expected 0 for an empty list, got %d", got)
	}
}

func TestComputeResizedSpan(t *testing.T) {
	cases := []struct {
		name     string
		start    int
		deltaX   float64
		width    float64
		handle   Handle
		expected int
	}{
		{name: "three columns right", start: 6, deltaX: 300, width: 1200, handle: HandleRight, expected: 9},
		{name: "clamped to twelve", start: 9, deltaX: 1000, width: 1200, handle: HandleRight, expected: 12},
		{name: "left handle grows when dragged left", start: 6, deltaX: -200, width: 1200, handle: HandleLeft, expected: 8},
		{name: "left handle shrinks when dragged right", start: 6, deltaX: 200, width: 1200, handle: HandleLeft, expected: 4},
		{name: "clamped to one", start: 2, deltaX: -900, width: 1200, handle: HandleRight, expected: 1},
		{name: "rounds half away from zero", start: 6, deltaX: 150, width: 1200, handle: HandleRight, expected: 8},
		{name: "below half a column", start: 6, deltaX: 49, width: 1200, handle: HandleRight, expected: 6},
		{name: "zero width keeps span", start: 6, deltaX: 500, width: 0, handle: HandleRight, expected: 6},
		{name: "tiny width right saturates", start: 6, deltaX: 1, width: 1e-300, handle: HandleRight, expected: 12},
		{name: "tiny width left saturates", start: 6, deltaX: 1, width: 1e-300, handle: HandleLeft, expected: 1},
		{name: "huge delta left", start: 6, deltaX: -1e308, width: 1200, handle: HandleRight, expected: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeResizedSpan(tc.start, 100, 100+tc.deltaX, tc.width, DefaultColumns, tc.handle)
			if got != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestParseSpanHint(t *testing.T) {
	cases := []struct {
		input  any
		expect int
		ok     bool
	}{
		{input: "span 6", expect: 6, ok: true},
		{input: "col-span-4", expect: 4, ok: true},
		{input: " 8 ", expect: 8, ok: true},
		{input: float64(3), expect: 3, ok: true},
		{input: 14, expect: 14, ok: true},
		{input: "span", ok: false},
		{input: "wide", ok: false},
		{input: 2.5, ok: false},
		{input: nil, ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseSpanHint(tc.input)
		if ok != tc.ok || (ok && got != tc.expect) {
			t.Fatalf("ParseSpanHint(%v) = %d, %v; want %d, %v", tc.input, got, ok, tc.expect, tc.ok)
		}
	}
}

func TestSpanDescriptors(t *testing.T) {
	if got := ColSpanClass(20); got != "col-span-12" {
		t.Fatalf("unexpected class %q", got)
	}
	if got := GridColumnSpan(6); got != "span 6" {
		t.Fatalf("unexpected grid span %q", got)
	}
}

func TestParseHandle(t *testing.T) {
	if h, err := ParseHandle(" Right "); err != nil || h != HandleRight {
		t.Fatalf("expected right handle, got %q (%v)", h, err)
	}
	if _, err := ParseHandle("top"); err == nil {
		t.Fatalf("expected error for unknown handle")
	}
}
