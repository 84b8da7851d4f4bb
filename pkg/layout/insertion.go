package layout

// Box is the vertical extent of one rendered field, relative to the top of
// its container.
type Box struct {
	Top    float64
	Bottom float64
}

// Mid returns the vertical midpoint of the box.
func (b Box) Mid() float64 {
	return b.Top + (b.Bottom-b.Top)/2
}

// ComputeInsertionIndex converts a pointer position into the zero-based slot
// a dragged item should land in. Boxes are given in visual order and in
// container coordinates; pointerY and containerTop share page coordinates.
//
// The first box the pointer has not yet passed decides: the top half inserts
// before it, the bottom half after it. A pointer below every box appends.
func ComputeInsertionIndex(pointerY, containerTop float64, boxes []Box) int {
	y := pointerY - containerTop
	for i, box := range boxes {
		if y >= box.Bottom {
			continue
		}
		if y < box.Mid() {
			return i
		}
		return clampIndex(i+1, len(boxes))
	}
	return len(boxes)
}

func clampIndex(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}
