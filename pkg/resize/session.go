// Package resize implements the pointer-capture session that changes a
// field's column span while one of its edges is dragged.
package resize

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ErrFieldNotFound is returned when the field to resize does not exist.
var ErrFieldNotFound = errors.New("resize: field not found")

// Option customises a Session.
type Option func(*Session)

// WithColumns overrides the grid width used for span computation.
func WithColumns(columns int) Option {
	return func(s *Session) {
		if columns > 0 {
			s.columns = columns
		}
	}
}

// Session captures the pointer for one field and one handle. Every Update
// writes the recomputed span straight into the document so the grid reflows
// live; End only releases the capture.
type Session struct {
	fieldID   string
	handle    layout.Handle
	startSpan int
	startX    float64
	width     float64
	columns   int
	span      int
	active    bool
}

// Begin records the starting span, pointer position and container width of
// fieldID and opens the capture.
func Begin(doc model.Document, fieldID string, handle layout.Handle, pointerX, containerWidth float64, opts ...Option) (*Session, error) {
	field, ok := doc.Field(fieldID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, fieldID)
	}
	if handle != layout.HandleLeft && handle != layout.HandleRight {
		return nil, fmt.Errorf("resize: unknown handle %q", handle)
	}
	s := &Session{
		fieldID:   fieldID,
		handle:    handle,
		startSpan: field.ColumnSpan,
		startX:    pointerX,
		width:     containerWidth,
		columns:   layout.DefaultColumns,
		span:      field.ColumnSpan,
		active:    true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Update recomputes the span for pointerX and commits it to doc when it
// differs from the field's current span. It returns the span and whether the
// document changed. Updates after End are ignored.
func (s *Session) Update(doc *model.Document, pointerX float64) (int, bool) {
	if s == nil || !s.active || doc == nil {
		return s.Span(), false
	}
	next := layout.ComputeResizedSpan(s.startSpan, s.startX, pointerX, s.width, s.columns, s.handle)
	current, ok := doc.Field(s.fieldID)
	if !ok {
		s.active = false
		return s.span, false
	}
	s.span = next
	if current.ColumnSpan == next {
		return next, false
	}
	doc.UpdateField(s.fieldID, model.FieldPatch{ColumnSpan: model.Ptr(next)})
	return next, true
}

// End releases the capture. It is safe to call more than once.
func (s *Session) End() {
	if s == nil {
		return
	}
	s.active = false
}

// Active reports whether the capture is still held.
func (s *Session) Active() bool {
	return s != nil && s.active
}

// Span returns the last computed span.
func (s *Session) Span() int {
	if s == nil {
		return 0
	}
	return s.span
}

// FieldID returns the field being resized.
func (s *Session) FieldID() string {
	if s == nil {
		return ""
	}
	return s.fieldID
}

// Handle returns the dragged edge.
func (s *Session) Handle() layout.Handle {
	if s == nil {
		return ""
	}
	return s.handle
}
