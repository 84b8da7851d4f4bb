package builder

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/dragdrop"
	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/resize"
)

// BeginSectionDrag starts dragging a section. Hover through the returned
// controller and finish with EndInteraction; calling Drop on the controller
// directly discards the result.
func (e *Editor) BeginSectionDrag(sectionID string) (*dragdrop.Controller, error) {
	if err := e.idle(); err != nil {
		return nil, err
	}
	si := e.doc.SectionIndex(sectionID)
	if si < 0 {
		return nil, fmt.Errorf("%w: section %s", ErrNotFound, sectionID)
	}
	if err := e.drag.BeginSection(e.doc, si); err != nil {
		return nil, err
	}
	return e.drag, nil
}

// BeginFieldDrag starts dragging a field.
func (e *Editor) BeginFieldDrag(fieldID string) (*dragdrop.Controller, error) {
	if err := e.idle(); err != nil {
		return nil, err
	}
	si, fi, ok := e.doc.Locate(fieldID)
	if !ok {
		return nil, fmt.Errorf("%w: field %s", ErrNotFound, fieldID)
	}
	if err := e.drag.BeginField(e.doc, si, fi); err != nil {
		return nil, err
	}
	e.selected = fieldID
	return e.drag, nil
}

// Drag returns the drag controller while a drag is active.
func (e *Editor) Drag() (*dragdrop.Controller, bool) {
	if !e.drag.Active() {
		return nil, false
	}
	return e.drag, true
}

// BeginResize opens a resize capture on fieldID.
func (e *Editor) BeginResize(fieldID string, handle layout.Handle, pointerX, containerWidth float64) (*resize.Session, error) {
	if err := e.idle(); err != nil {
		return nil, err
	}
	session, err := resize.Begin(e.doc, fieldID, handle, pointerX, containerWidth, resize.WithColumns(e.columns))
	if errors.Is(err, resize.ErrFieldNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	e.resize = session
	e.selected = fieldID
	return session, nil
}

// ResizeMove feeds a pointer position to the active resize session and
// commits the new span live. It returns the span and whether it changed.
func (e *Editor) ResizeMove(pointerX float64) (int, bool, error) {
	if !e.resize.Active() {
		return 0, false, ErrNoInteraction
	}
	span, changed := e.resize.Update(&e.doc, pointerX)
	return span, changed, nil
}

// EndInteraction releases whatever interaction is active and reports
// whether the document changed. A drag is dropped when commit is set and
// cancelled otherwise; a resize already committed its spans live, so it is
// only released. Safe to call when idle, which makes it the deferred release
// for every interaction.
func (e *Editor) EndInteraction(commit bool) bool {
	switch e.Interaction() {
	case InteractionDrag:
		doc, changed := e.drag.End(commit)
		if changed {
			e.doc = doc
		}
		if commit {
			e.selected = ""
		}
		return changed
	case InteractionResize:
		e.resize.End()
		e.resize = nil
	}
	return false
}

// Release cancels any active interaction.
func (e *Editor) Release() {
	e.EndInteraction(false)
}

// Preview returns the would-be document of an active drag, or the current
// document when nothing is being hovered.
func (e *Editor) Preview() model.Document {
	if doc, ok := e.drag.Preview(); ok {
		return doc
	}
	return e.Document()
}
