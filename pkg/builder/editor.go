// Package builder exposes the Editor, the single owner of a template being
// edited. Every mutation goes through the document model's invariant
// preserving operations, and at most one drag or resize interaction can be
// active at a time.
//
// An Editor is not safe for concurrent use; callers serialise access the way
// a UI event loop does.
package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-formbuilder/internal/sanitize"
	"github.com/goliatone/go-formbuilder/pkg/dragdrop"
	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/legacy"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/naming"
	"github.com/goliatone/go-formbuilder/pkg/resize"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

var (
	ErrMissingTitle      = errors.New("builder: template title is required")
	ErrNoSections        = errors.New("builder: template needs at least one section")
	ErrInteractionActive = errors.New("builder: a drag or resize is already in progress")
	ErrNoInteraction     = errors.New("builder: no matching drag or resize in progress")
	ErrNotFound          = errors.New("builder: not found")
	ErrNoPersister       = errors.New("builder: persister is not configured")
)

// Template is a saved template as exchanged with persistence.
type Template struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Schema    schema.PortableSchema `json:"schema"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// Persister stores templates. It is the external persistence collaborator.
type Persister interface {
	SaveTemplate(ctx context.Context, tpl Template) (Template, error)
}

// Interaction names the active pointer interaction.
type Interaction uint8

const (
	InteractionNone Interaction = iota
	InteractionDrag
	InteractionResize
)

func (i Interaction) String() string {
	switch i {
	case InteractionDrag:
		return "drag"
	case InteractionResize:
		return "resize"
	default:
		return "none"
	}
}

// Editor owns one document and its title.
type Editor struct {
	title      string
	templateID string
	doc        model.Document
	catalog    naming.Catalog
	gen        model.IDGenerator
	columns    int
	persister  Persister
	selected   string
	drag       *dragdrop.Controller
	resize     *resize.Session
	report     legacy.Report
	starter    string
}

// New returns an Editor holding the starter template.
func New(opts ...Option) *Editor {
	e := &Editor{
		catalog: naming.DefaultCatalog(),
		gen:     model.NewID,
		columns: layout.DefaultColumns,
		drag:    dragdrop.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.title = sanitize.Text(e.title)
	e.doc, e.report = legacy.Import(nil, e.importOptions()...)
	return e
}

func (e *Editor) importOptions() []legacy.Option {
	return []legacy.Option{
		legacy.WithCatalog(e.catalog),
		legacy.WithIDGenerator(e.gen),
		legacy.WithStarterTitle(e.starter),
	}
}

// Load replaces the document with the import of raw. Malformed or empty
// input yields the starter template; the report says what happened.
func (e *Editor) Load(raw []byte) (legacy.Report, error) {
	if e.Interaction() != InteractionNone {
		return legacy.Report{}, ErrInteractionActive
	}
	e.doc, e.report = legacy.Import(raw, e.importOptions()...)
	e.selected = ""
	return e.report, nil
}

// LoadTemplate loads a persisted template, keeping its id and title.
func (e *Editor) LoadTemplate(tpl Template) (legacy.Report, error) {
	raw, err := schema.Marshal(tpl.Schema)
	if err != nil {
		return legacy.Report{}, fmt.Errorf("builder: load template %s: %w", tpl.ID, err)
	}
	report, err := e.Load(raw)
	if err != nil {
		return report, err
	}
	e.templateID = tpl.ID
	e.title = sanitize.Text(tpl.Title)
	return report, nil
}

// Report returns the report of the last import.
func (e *Editor) Report() legacy.Report {
	return e.report
}

// Document returns a copy of the current document.
func (e *Editor) Document() model.Document {
	return e.doc.Clone()
}

// Title returns the template title.
func (e *Editor) Title() string {
	return e.title
}

// SetTitle renames the template.
func (e *Editor) SetTitle(title string) {
	e.title = sanitize.Text(title)
}

// TemplateID returns the persisted identifier, empty until the first save.
func (e *Editor) TemplateID() string {
	return e.templateID
}

// Interaction reports the active pointer interaction.
func (e *Editor) Interaction() Interaction {
	switch {
	case e.drag.Active():
		return InteractionDrag
	case e.resize.Active():
		return InteractionResize
	default:
		return InteractionNone
	}
}

func (e *Editor) idle() error {
	if e.Interaction() != InteractionNone {
		return ErrInteractionActive
	}
	return nil
}

// AddSection appends a new empty section.
func (e *Editor) AddSection(title string) (model.Section, error) {
	if err := e.idle(); err != nil {
		return model.Section{}, err
	}
	section := model.CreateSectionWithID(e.gen, sanitize.Text(title))
	e.doc.AddSection(section)
	return section, nil
}

// AddField appends a default field of fieldType to a section. The name is
// derived from the label and made unique.
func (e *Editor) AddField(sectionID string, fieldType model.FieldType, label string) (model.Field, error) {
	if err := e.idle(); err != nil {
		return model.Field{}, err
	}
	field := model.CreateFieldWithID(e.gen, fieldType, sanitize.Text(label))
	if !e.doc.AddField(sectionID, field) {
		return model.Field{}, fmt.Errorf("%w: section %s", ErrNotFound, sectionID)
	}
	e.doc = naming.ResolveDuplicateNames(e.doc)
	added, _ := e.doc.Field(field.ID)
	return added, nil
}

// UpdateField applies patch. Protected attributes of system fields are kept.
func (e *Editor) UpdateField(fieldID string, patch model.FieldPatch) (model.Field, error) {
	if err := e.idle(); err != nil {
		return model.Field{}, err
	}
	if patch.Label != nil {
		patch.Label = model.Ptr(sanitize.Text(*patch.Label))
	}
	if patch.Placeholder != nil {
		patch.Placeholder = model.Ptr(sanitize.Text(*patch.Placeholder))
	}
	if !e.doc.UpdateField(fieldID, patch) {
		return model.Field{}, fmt.Errorf("%w: field %s", ErrNotFound, fieldID)
	}
	if patch.Name != nil {
		e.doc = naming.ResolveDuplicateNames(e.doc)
	}
	field, _ := e.doc.Field(fieldID)
	return field, nil
}

// RemoveField deletes a field from its section.
func (e *Editor) RemoveField(sectionID, fieldID string) error {
	if err := e.idle(); err != nil {
		return err
	}
	if !e.doc.RemoveField(sectionID, fieldID) {
		return fmt.Errorf("%w: field %s in section %s", ErrNotFound, fieldID, sectionID)
	}
	if e.selected == fieldID {
		e.selected = ""
	}
	return nil
}

// RemoveSection deletes a section and its fields.
func (e *Editor) RemoveSection(sectionID string) error {
	if err := e.idle(); err != nil {
		return err
	}
	si := e.doc.SectionIndex(sectionID)
	if si < 0 {
		return fmt.Errorf("%w: section %s", ErrNotFound, sectionID)
	}
	for _, field := range e.doc.Sections[si].Fields {
		if field.ID == e.selected {
			e.selected = ""
		}
	}
	e.doc.RemoveSection(sectionID)
	return nil
}

// SetSectionActive soft-deletes or restores a section.
func (e *Editor) SetSectionActive(sectionID string, active bool) error {
	if err := e.idle(); err != nil {
		return err
	}
	if !e.doc.SetSectionActive(sectionID, active) {
		return fmt.Errorf("%w: section %s", ErrNotFound, sectionID)
	}
	return nil
}

// SetSectionTitle renames a section.
func (e *Editor) SetSectionTitle(sectionID, title string) error {
	if err := e.idle(); err != nil {
		return err
	}
	if !e.doc.SetSectionTitle(sectionID, sanitize.Text(title)) {
		return fmt.Errorf("%w: section %s", ErrNotFound, sectionID)
	}
	return nil
}

// Select marks fieldID as the selected field. An empty id clears the
// selection.
func (e *Editor) Select(fieldID string) error {
	if fieldID == "" {
		e.selected = ""
		return nil
	}
	if _, _, ok := e.doc.Locate(fieldID); !ok {
		return fmt.Errorf("%w: field %s", ErrNotFound, fieldID)
	}
	e.selected = fieldID
	return nil
}

// Selected returns the selected field id.
func (e *Editor) Selected() (string, bool) {
	return e.selected, e.selected != ""
}

// Schema resolves names on a copy and serializes the document.
func (e *Editor) Schema() schema.PortableSchema {
	return schema.ToSchema(e.doc)
}

// Validate checks the save preconditions.
func (e *Editor) Validate() validation.Result {
	return validation.ValidateDocument(e.title, e.doc)
}

// Save checks the preconditions and hands the serialized template to the
// persister. Names are resolved on the live document first so the editor and
// the stored schema agree.
func (e *Editor) Save(ctx context.Context) (Template, error) {
	if err := e.idle(); err != nil {
		return Template{}, err
	}
	res := e.Validate()
	switch {
	case res.Has(validation.CodeMissingTitle):
		return Template{}, ErrMissingTitle
	case res.Has(validation.CodeNoSections):
		return Template{}, ErrNoSections
	}
	if e.persister == nil {
		return Template{}, ErrNoPersister
	}

	e.doc = naming.ResolveDuplicateNames(e.doc)
	saved, err := e.persister.SaveTemplate(ctx, Template{
		ID:     e.templateID,
		Title:  e.title,
		Schema: schema.ToSchema(e.doc),
	})
	if err != nil {
		return Template{}, fmt.Errorf("builder: save template: %w", err)
	}
	e.templateID = saved.ID
	return saved, nil
}
