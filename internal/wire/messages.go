// Package wire defines the WebSocket protocol for live template editing and
// the handler that runs one editing session per connection.
package wire

import (
	"encoding/json"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Client message types.
const (
	TypeDragSection   = "dragSection"
	TypeDragField     = "dragField"
	TypeHover         = "hover"
	TypeDrop          = "drop"
	TypeCancel        = "cancel"
	TypeResizeStart   = "resizeStart"
	TypeResizeMove    = "resizeMove"
	TypeResizeEnd     = "resizeEnd"
	TypeAddSection    = "addSection"
	TypeAddField      = "addField"
	TypeUpdateField   = "updateField"
	TypeRemoveField   = "removeField"
	TypeRemoveSection = "removeSection"
	TypeSetSection    = "setSection"
	TypeSetTitle      = "setTitle"
	TypeSave          = "save"
	TypePing          = "ping"
)

// Server message types.
const (
	TypeDocument = "document"
	TypePreview  = "preview"
	TypeSpan     = "span"
	TypeSaved    = "saved"
	TypeError    = "error"
	TypePong     = "pong"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DragSectionData starts a section drag.
type DragSectionData struct {
	SectionID string `json:"sectionId"`
}

// DragFieldData starts a field drag.
type DragFieldData struct {
	FieldID string `json:"fieldId"`
}

// HoverData moves the active drag over a section. Without Gap or Boxes the
// whole section is hovered. Gap picks an explicit gap (-1 for the end);
// Boxes lets the server compute the gap from the pointer.
type HoverData struct {
	Section      int       `json:"section"`
	Gap          *int      `json:"gap,omitempty"`
	PointerY     float64   `json:"pointerY,omitempty"`
	ContainerTop float64   `json:"containerTop,omitempty"`
	Boxes        []BoxData `json:"boxes,omitempty"`
}

// BoxData is the vertical extent of a rendered field, relative to its list.
type BoxData struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// ResizeStartData opens a resize capture.
type ResizeStartData struct {
	FieldID        string  `json:"fieldId"`
	Handle         string  `json:"handle"`
	PointerX       float64 `json:"pointerX"`
	ContainerWidth float64 `json:"containerWidth"`
}

// ResizeMoveData carries a pointer position during a resize.
type ResizeMoveData struct {
	PointerX float64 `json:"pointerX"`
}

// AddSectionData appends a section.
type AddSectionData struct {
	Title string `json:"title"`
}

// AddFieldData appends a field.
type AddFieldData struct {
	SectionID string `json:"sectionId"`
	Type      string `json:"type"`
	Label     string `json:"label"`
}

// UpdateFieldData patches a field. Nil members are left alone.
type UpdateFieldData struct {
	FieldID              string      `json:"fieldId"`
	Type                 *string     `json:"type,omitempty"`
	Label                *string     `json:"label,omitempty"`
	Name                 *string     `json:"name,omitempty"`
	Placeholder          *string     `json:"placeholder,omitempty"`
	Required             *bool       `json:"required,omitempty"`
	Order                *int        `json:"order,omitempty"`
	ColumnSpan           *int        `json:"columnSpan,omitempty"`
	Active               *bool       `json:"active,omitempty"`
	Options              []string    `json:"options,omitempty"`
	Source               *SourceData `json:"source,omitempty"`
	MinimumDaysFromToday *int        `json:"minimumDaysFromToday,omitempty"`
}

// SourceData binds a field to a lookup table.
type SourceData struct {
	Table        string `json:"table"`
	DisplayField string `json:"displayField"`
	ValueField   string `json:"valueField"`
}

// RemoveFieldData deletes a field.
type RemoveFieldData struct {
	SectionID string `json:"sectionId"`
	FieldID   string `json:"fieldId"`
}

// SectionData addresses a section; Title and Active are optional updates.
type SectionData struct {
	SectionID string  `json:"sectionId"`
	Title     *string `json:"title,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

// TitleData renames the template.
type TitleData struct {
	Title string `json:"title"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client messages. ID echoes
// the client message it answers.
type ServerMessage struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Data any    `json:"data,omitempty"`
}

// DocumentData is the committed state of the template.
type DocumentData struct {
	TemplateID  string                `json:"templateId,omitempty"`
	Title       string                `json:"title"`
	Interaction string                `json:"interaction"`
	Sections    []SectionView         `json:"sections"`
	Schema      schema.PortableSchema `json:"schema"`
	Validation  validation.Result     `json:"validation"`
}

// PreviewData is the would-be arrangement of an active drag.
type PreviewData struct {
	Changed  bool          `json:"changed"`
	Section  int           `json:"section"`
	Index    int           `json:"index"`
	Sections []SectionView `json:"sections"`
}

// SpanData reports the live span of a resize.
type SpanData struct {
	FieldID string `json:"fieldId"`
	Span    int    `json:"span"`
	Changed bool   `json:"changed"`
}

// SavedData confirms a save.
type SavedData struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
