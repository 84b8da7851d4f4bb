// Package dragdrop implements the section and field repositioning state
// machine. A Controller works on a snapshot of the document taken when the
// drag starts and only hands back a new arrangement on drop, so the
// committed document is never touched while the pointer is moving.
package dragdrop

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

var (
	// ErrNotIdle is returned when a drag starts while another one is active.
	ErrNotIdle = errors.New("dragdrop: a drag is already in progress")
	// ErrInvalidSource is returned when the dragged item does not exist.
	ErrInvalidSource = errors.New("dragdrop: invalid drag source")
)

// State is the closed set of controller states.
type State uint8

const (
	StateIdle State = iota
	StateDragging
	StateHovering
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateHovering:
		return "hovering"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Kind tells sections and fields apart.
type Kind uint8

const (
	KindSection Kind = iota + 1
	KindField
)

// Ref points at the dragged item in the snapshot. Field is -1 for sections.
type Ref struct {
	Kind      Kind
	Section   int
	Field     int
	SectionID string
	FieldID   string
}

// Target is the hovered drop position. For field drags Index is a gap index
// in the target section's field list as it was when the drag started, with -1
// meaning the end. For section drags Index is the final section position.
type Target struct {
	Section int
	Index   int
}

// Controller is the drag state machine. The zero value is idle and ready.
type Controller struct {
	state   State
	source  Ref
	target  Target
	base    model.Document
	preview model.Document
	changed bool
}

// New returns an idle controller.
func New() *Controller {
	return &Controller{}
}

// State reports the current state.
func (c *Controller) State() State {
	return c.state
}

// Active reports whether a drag is in progress.
func (c *Controller) Active() bool {
	return c.state != StateIdle
}

// Source returns the dragged item while a drag is active.
func (c *Controller) Source() (Ref, bool) {
	if c.state == StateIdle {
		return Ref{}, false
	}
	return c.source, true
}

// Target returns the hovered position while hovering.
func (c *Controller) Target() (Target, bool) {
	if c.state != StateHovering {
		return Target{}, false
	}
	return c.target, true
}

// BeginSection starts dragging the section at sectionIdx of doc.
func (c *Controller) BeginSection(doc model.Document, sectionIdx int) error {
	if c.state != StateIdle {
		return ErrNotIdle
	}
	if sectionIdx < 0 || sectionIdx >= len(doc.Sections) {
		return fmt.Errorf("%w: section %d", ErrInvalidSource, sectionIdx)
	}
	c.start(doc, Ref{
		Kind:      KindSection,
		Section:   sectionIdx,
		Field:     -1,
		SectionID: doc.Sections[sectionIdx].ID,
	})
	return nil
}

// BeginField starts dragging the field at (sectionIdx, fieldIdx) of doc.
func (c *Controller) BeginField(doc model.Document, sectionIdx, fieldIdx int) error {
	if c.state != StateIdle {
		return ErrNotIdle
	}
	if sectionIdx < 0 || sectionIdx >= len(doc.Sections) {
		return fmt.Errorf("%w: section %d", ErrInvalidSource, sectionIdx)
	}
	fields := doc.Sections[sectionIdx].Fields
	if fieldIdx < 0 || fieldIdx >= len(fields) {
		return fmt.Errorf("%w: field %d of section %d", ErrInvalidSource, fieldIdx, sectionIdx)
	}
	c.start(doc, Ref{
		Kind:      KindField,
		Section:   sectionIdx,
		Field:     fieldIdx,
		SectionID: doc.Sections[sectionIdx].ID,
		FieldID:   fields[fieldIdx].ID,
	})
	return nil
}

func (c *Controller) start(doc model.Document, source Ref) {
	c.base = doc.Clone()
	c.preview = model.Document{}
	c.changed = false
	c.source = source
	c.target = Target{}
	c.state = StateDragging
}

// OverSection hovers the section at sectionIdx. A dragged section would move
// to that position; a dragged field would be appended to that section, or
// stay put when it already lives there.
func (c *Controller) OverSection(sectionIdx int) (model.Document, bool) {
	switch c.source.Kind {
	case KindSection:
		return c.hover(Target{Section: sectionIdx, Index: sectionIdx})
	case KindField:
		if sectionIdx == c.source.Section {
			return c.hover(Target{Section: sectionIdx, Index: c.source.Field})
		}
		return c.hover(Target{Section: sectionIdx, Index: -1})
	}
	return model.Document{}, false
}

// OverField hovers gap gapIndex of the field list of sectionIdx. Only field
// drags react; -1 targets the end of the list.
func (c *Controller) OverField(sectionIdx, gapIndex int) (model.Document, bool) {
	if c.source.Kind != KindField {
		return c.Preview()
	}
	return c.hover(Target{Section: sectionIdx, Index: gapIndex})
}

// OverFieldList hovers a rendered field list, turning the pointer position
// into a gap index with layout.ComputeInsertionIndex. Boxes describe the
// list as it was when the drag started.
func (c *Controller) OverFieldList(sectionIdx int, pointerY, containerTop float64, boxes []layout.Box) (model.Document, bool) {
	return c.OverField(sectionIdx, layout.ComputeInsertionIndex(pointerY, containerTop, boxes))
}

// Preview returns the would-be arrangement while hovering. The boolean is
// false when no hover happened yet.
func (c *Controller) Preview() (model.Document, bool) {
	if c.state != StateHovering {
		return model.Document{}, false
	}
	return c.preview.Clone(), true
}

// Changed reports whether the current preview differs from the snapshot.
func (c *Controller) Changed() bool {
	return c.state == StateHovering && c.changed
}

func (c *Controller) hover(target Target) (model.Document, bool) {
	if c.state == StateIdle {
		return model.Document{}, false
	}
	if target.Section < 0 || target.Section >= len(c.base.Sections) {
		return c.Preview()
	}

	preview := c.base.Clone()
	changed := false
	switch c.source.Kind {
	case KindSection:
		changed = preview.MoveSection(c.source.Section, target.Index)
	case KindField:
		changed = c.moveField(&preview, target)
	}

	c.target = target
	c.preview = preview
	c.changed = changed
	c.state = StateHovering
	return preview.Clone(), true
}

func (c *Controller) moveField(doc *model.Document, target Target) bool {
	from := c.source.Section
	if target.Section != from {
		return doc.TransferField(from, c.source.Field, target.Section, target.Index)
	}

	count := len(doc.Sections[from].Fields)
	gap := target.Index
	if gap < 0 || gap > count {
		gap = count
	}
	// Gaps after the dragged field shift by one once it is taken out.
	final := gap
	if gap > c.source.Field {
		final = gap - 1
	}
	return doc.MoveField(from, c.source.Field, final)
}

// Drop ends the drag and returns the arrangement to commit. The boolean is
// false when nothing should change: no hover happened, the drop was onto the
// original position, or no drag was active.
func (c *Controller) Drop() (model.Document, bool) {
	if c.state == StateIdle {
		return model.Document{}, false
	}
	doc, changed := c.preview, c.changed && c.state == StateHovering
	c.reset()
	if !changed {
		return model.Document{}, false
	}
	return doc, true
}

// Cancel ends the drag and discards the preview.
func (c *Controller) Cancel() {
	c.reset()
}

// End finishes the drag, dropping when commit is set and cancelling
// otherwise. It is safe to call on an idle controller, which makes it the
// natural deferred release for a drag.
func (c *Controller) End(commit bool) (model.Document, bool) {
	if !commit {
		c.Cancel()
		return model.Document{}, false
	}
	return c.Drop()
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.source = Ref{}
	c.target = Target{}
	c.base = model.Document{}
	c.preview = model.Document{}
	c.changed = false
}
