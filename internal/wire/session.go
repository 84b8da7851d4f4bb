package wire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/dragdrop"
	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Error codes sent in ErrorData.
const (
	CodeInvalidData       = "invalid_data"
	CodeUnknownType       = "unknown_type"
	CodeNotFound          = "not_found"
	CodeInteractionActive = "interaction_active"
	CodeNoInteraction     = "no_interaction"
	CodeMissingTitle      = "missing_title"
	CodeNoSections        = "no_sections"
	CodeNoPersister       = "no_persister"
	CodeInternal          = "internal"
)

// Session applies client messages to one editor. It is transport agnostic;
// Handler feeds it from a WebSocket. Not safe for concurrent use.
type Session struct {
	editor *builder.Editor
	logger *zap.Logger
}

// NewSession wraps editor.
func NewSession(editor *builder.Editor, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{editor: editor, logger: logger}
}

// Close ends any interaction left open without committing it.
func (s *Session) Close() {
	s.editor.Release()
}

// Snapshot describes the committed document.
func (s *Session) Snapshot(id string) ServerMessage {
	doc := s.editor.Document()
	return ServerMessage{
		Type: TypeDocument,
		ID:   id,
		Data: DocumentData{
			TemplateID:  s.editor.TemplateID(),
			Title:       s.editor.Title(),
			Interaction: s.editor.Interaction().String(),
			Sections:    sectionViews(doc),
			Schema:      s.editor.Schema(),
			Validation:  s.editor.Validate(),
		},
	}
}

// Handle applies msg and returns the replies to send, in order.
func (s *Session) Handle(ctx context.Context, msg ClientMessage) []ServerMessage {
	reply, err := s.dispatch(ctx, msg)
	if err != nil {
		code := errorCode(err)
		if code == CodeInternal {
			s.logger.Error("message failed", zap.String("type", msg.Type), zap.String("id", msg.ID), zap.Error(err))
		}
		return []ServerMessage{errorMessage(msg.ID, code, err.Error())}
	}
	return []ServerMessage{reply}
}

func (s *Session) dispatch(ctx context.Context, msg ClientMessage) (ServerMessage, error) {
	switch msg.Type {
	case TypePing:
		return ServerMessage{Type: TypePong, ID: msg.ID}, nil
	case TypeDragSection:
		var data DragSectionData
		if err := decode(msg, &data); err != nil {
			return ServerMessage{}, err
		}
		if _, err := s.editor.BeginSectionDrag(data.SectionID); err != nil {
			return ServerMessage{}, err
		}
		return s.Snapshot(msg.ID), nil
	case TypeDragField:
		var data DragFieldData
		if err := decode(msg, &data); err != nil {
			return ServerMessage{}, err
		}
		if _, err := s.editor.BeginFieldDrag(data.FieldID); err != nil {
			return ServerMessage{}, err
		}
		return s.Snapshot(msg.ID), nil
	case TypeHover:
		return s.hover(msg)
	case TypeDrop, TypeCancel, TypeResizeEnd:
		want := builder.InteractionDrag
		if msg.Type == TypeResizeEnd {
			want = builder.InteractionResize
		}
		if s.editor.Interaction() != want {
			return ServerMessage{}, builder.ErrNoInteraction
		}
		s.editor.EndInteraction(msg.Type != TypeCancel)
		return s.Snapshot(msg.ID), nil
	case TypeResizeStart:
		var data ResizeStartData
		if err := decode(msg, &data); err != nil {
			return ServerMessage{}, err
		}
		handle, err := layout.ParseHandle(data.Handle)
		if err != nil {
			return ServerMessage{}, invalidData(err)
		}
		session, err := s.editor.BeginResize(data.FieldID, handle, data.PointerX, data.ContainerWidth)
		if err != nil {
			return ServerMessage{}, err
		}
		return ServerMessage{Type: TypeSpan, ID: msg.ID, Data: SpanData{FieldID: data.FieldID, Span: session.Span()}}, nil
	case TypeResizeMove:
		var data ResizeMoveData
		if err := decode(msg, &data); err != nil {
			return ServerMessage{}, err
		}
		span, changed, err := s.editor.ResizeMove(data.PointerX)
		if err != nil {
			return ServerMessage{}, err
		}
		fieldID, _ := s.editor.Selected()
		return ServerMessage{Type: TypeSpan, ID: msg.ID, Data: SpanData{FieldID: fieldID, Span: span, Changed: changed}}, nil
	case TypeAddSection:
		var data AddSectionData
		if err := decode(msg, &data); err != nil {
			return ServerMessage{}, err
		}
		if _, err := s.editor.AddSection(data.Title); err != nil {
			return ServerMessage{}, err
		}
		return s.Snapshot(msg.ID), nil
	case TypeAddField:
		var data AddFieldData
		if err := decode(msg, &data); err != nil {
			return ServerMessage{}, err
		}
		fieldType, ok := model.ParseFieldType(data.Type)
		if !ok {
			return ServerMessage{}, invalidData(fmt.Errorf("unknown field type %q", data.Type))
		}
		if _, err := s.editor.AddField(data.SectionID, fieldType, data.Label); err != nil {
			return ServerMessage{}, err
		}
		return s.Snapshot(msg.ID), nil
	case TypeUpdateField:
		var data UpdateFieldData
		if err := decode(msg, &data); err != nil {
			return ServerMessage{}, err
		}
		patch, err := data.patch()
		if err != nil {
			return ServerMessage{}, err
		}
		if _, err := s.editor.UpdateField(data.FieldID, patch); err != nil {
			return ServerMessage{}, err
		}
		return s.Snapshot(msg.ID), nil
	case TypeRemoveField:
		var data RemoveFieldData
		if err := decode(msg, &data); err != nil {
			return ServerMessage{}, err
		}
		if err := s.editor.RemoveField(data.SectionID, data.FieldID); err != nil {
			return ServerMessage{}, err
		}
		return s.Snapshot(msg.ID), nil
	case TypeRemoveSection:
		var data SectionData
		if err := decode(msg, &data); err != nil {
			return ServerMessage{}, err
		}
		if err := s.editor.RemoveSection(data.SectionID); err != nil {
			return ServerMessage{}, err
		}
		return s.Snapshot(msg.ID), nil
	case TypeSetSection:
		var data SectionData
		if err := decode(msg, &data); err != nil {
			return ServerMessage{}, err
		}
		if data.Title != nil {
			if err := s.editor.SetSectionTitle(data.SectionID, *data.Title); err != nil {
				return ServerMessage{}, err
			}
		}
		if data.Active != nil {
			if err := s.editor.SetSectionActive(data.SectionID, *data.Active); err != nil {
				return ServerMessage{}, err
			}
		}
		return s.Snapshot(msg.ID), nil
	case TypeSetTitle:
		var data TitleData
		if err := decode(msg, &data); err != nil {
			return ServerMessage{}, err
		}
		s.editor.SetTitle(data.Title)
		return s.Snapshot(msg.ID), nil
	case TypeSave:
		saved, err := s.editor.Save(ctx)
		if err != nil {
			return ServerMessage{}, err
		}
		s.logger.Info("template saved", zap.String("template", saved.ID))
		return ServerMessage{Type: TypeSaved, ID: msg.ID, Data: SavedData{ID: saved.ID, Title: saved.Title, UpdatedAt: saved.UpdatedAt}}, nil
	}
	return ServerMessage{}, unknownType(msg.Type)
}

func (s *Session) hover(msg ClientMessage) (ServerMessage, error) {
	var data HoverData
	if err := decode(msg, &data); err != nil {
		return ServerMessage{}, err
	}
	drag, ok := s.editor.Drag()
	if !ok {
		return ServerMessage{}, builder.ErrNoInteraction
	}

	var (
		preview model.Document
		hovered bool
	)
	switch {
	case len(data.Boxes) > 0:
		boxes := make([]layout.Box, len(data.Boxes))
		for i, box := range data.Boxes {
			boxes[i] = layout.Box{Top: box.Top, Bottom: box.Bottom}
		}
		preview, hovered = drag.OverFieldList(data.Section, data.PointerY, data.ContainerTop, boxes)
	case data.Gap != nil:
		preview, hovered = drag.OverField(data.Section, *data.Gap)
	default:
		preview, hovered = drag.OverSection(data.Section)
	}
	if !hovered {
		preview = s.editor.Document()
	}

	out := PreviewData{Changed: drag.Changed(), Sections: sectionViews(preview)}
	if target, ok := drag.Target(); ok {
		out.Section, out.Index = target.Section, target.Index
	}
	return ServerMessage{Type: TypePreview, ID: msg.ID, Data: out}, nil
}

func (d UpdateFieldData) patch() (model.FieldPatch, error) {
	patch := model.FieldPatch{
		Label:       d.Label,
		Name:        d.Name,
		Placeholder: d.Placeholder,
		Required:    d.Required,
		Order:       d.Order,
		ColumnSpan:  d.ColumnSpan,
		Active:      d.Active,
	}
	if d.Type != nil {
		fieldType, ok := model.ParseFieldType(*d.Type)
		if !ok {
			return model.FieldPatch{}, invalidData(fmt.Errorf("unknown field type %q", *d.Type))
		}
		patch.Type = &fieldType
	}
	switch {
	case d.Source != nil:
		patch.Options = model.DynamicSource{
			Table:        d.Source.Table,
			DisplayField: d.Source.DisplayField,
			ValueField:   d.Source.ValueField,
		}
	case d.Options != nil:
		patch.Options = model.StaticOptions(append([]string(nil), d.Options...))
	}
	if d.MinimumDaysFromToday != nil {
		patch.Extra = model.DateExtra{MinimumDaysFromToday: *d.MinimumDaysFromToday}
	}
	return patch, nil
}

type protocolError struct {
	code string
	err  error
}

func (e *protocolError) Error() string { return e.err.Error() }
func (e *protocolError) Unwrap() error { return e.err }

func invalidData(err error) error {
	return &protocolError{code: CodeInvalidData, err: err}
}

func unknownType(t string) error {
	return &protocolError{code: CodeUnknownType, err: fmt.Errorf("unknown message type: %s", t)}
}

func decode(msg ClientMessage, v any) error {
	if len(msg.Data) == 0 {
		return invalidData(fmt.Errorf("%s: missing data", msg.Type))
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return invalidData(fmt.Errorf("%s: %w", msg.Type, err))
	}
	return nil
}

func errorCode(err error) string {
	var perr *protocolError
	switch {
	case errors.As(err, &perr):
		return perr.code
	case errors.Is(err, builder.ErrInteractionActive), errors.Is(err, dragdrop.ErrNotIdle):
		return CodeInteractionActive
	case errors.Is(err, builder.ErrNoInteraction):
		return CodeNoInteraction
	case errors.Is(err, builder.ErrNotFound), errors.Is(err, dragdrop.ErrInvalidSource):
		return CodeNotFound
	case errors.Is(err, builder.ErrMissingTitle):
		return CodeMissingTitle
	case errors.Is(err, builder.ErrNoSections):
		return CodeNoSections
	case errors.Is(err, builder.ErrNoPersister):
		return CodeNoPersister
	}
	return CodeInternal
}

func errorMessage(id, code, message string) ServerMessage {
	return ServerMessage{Type: TypeError, ID: id, Data: ErrorData{Code: code, Message: message}}
}
