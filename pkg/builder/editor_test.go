package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

type memoryPersister struct {
	saved []Template
	err   error
}

func (m *memoryPersister) SaveTemplate(_ context.Context, tpl Template) (Template, error) {
	if m.err != nil {
		return Template{}, m.err
	}
	if tpl.ID == "" {
		tpl.ID = "tpl-1"
	}
	m.saved = append(m.saved, tpl)
	return tpl, nil
}

func newEditor(t *testing.T, opts ...Option) *Editor {
	t.Helper()
	opts = append([]Option{WithIDGenerator(testsupport.SequentialIDs("ed"))}, opts...)
	return New(opts...)
}

func TestNewStartsWithStarterTemplate(t *testing.T) {
	e := newEditor(t)
	doc := e.Document()
	if len(doc.Sections) != 1 || len(doc.Sections[0].Fields) != 3 {
		t.Fatalf("unexpected starter document: %+v", doc)
	}
	if !e.Report().Fallback {
		t.Fatalf("expected fallback report")
	}
}

func TestAddFieldResolvesNames(t *testing.T) {
	e := newEditor(t)
	section, err := e.AddSection("Contacto")
	if err != nil {
		t.Fatalf("add section: %v", err)
	}
	first, err := e.AddField(section.ID, model.FieldTypeEmail, "Correo Electrónico")
	if err != nil {
		t.Fatalf("add field: %v", err)
	}
	second, err := e.AddField(section.ID, model.FieldTypeEmail, "Correo electronico")
	if err != nil {
		t.Fatalf("add field: %v", err)
	}
	if first.Name != "correo_electronico" || second.Name != "correo_electronico_1" {
		t.Fatalf("unexpected names %q and %q", first.Name, second.Name)
	}
	if second.Order != 2 {
		t.Fatalf("expected order 2, got %d", second.Order)
	}
	if _, err := e.AddField("missing", model.FieldTypeText, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOneInteractionAtATime(t *testing.T) {
	e := newEditor(t)
	doc := e.Document()
	fieldID := doc.Sections[0].Fields[0].ID

	if _, err := e.BeginFieldDrag(fieldID); err != nil {
		t.Fatalf("begin drag: %v", err)
	}
	if _, err := e.BeginResize(fieldID, layout.HandleRight, 0, 1200); !errors.Is(err, ErrInteractionActive) {
		t.Fatalf("expected ErrInteractionActive, got %v", err)
	}
	if _, err := e.AddSection("x"); !errors.Is(err, ErrInteractionActive) {
		t.Fatalf("expected mutations to be refused during a drag, got %v", err)
	}
	e.Release()
	if e.Interaction() != InteractionNone {
		t.Fatalf("expected release to end the drag")
	}
	if _, err := e.BeginResize(fieldID, layout.HandleRight, 0, 1200); err != nil {
		t.Fatalf("begin resize: %v", err)
	}
	if _, err := e.BeginSectionDrag(doc.Sections[0].ID); !errors.Is(err, ErrInteractionActive) {
		t.Fatalf("expected ErrInteractionActive, got %v", err)
	}
	e.EndInteraction(true)
	if e.Interaction() != InteractionNone {
		t.Fatalf("expected resize to be released")
	}
}

func TestDragCommitThroughEditor(t *testing.T) {
	e := newEditor(t)
	second, _ := e.AddSection("Otra")
	before := e.Document()
	moved := before.Sections[0].Fields[2].ID

	ctrl, err := e.BeginFieldDrag(moved)
	if err != nil {
		t.Fatalf("begin drag: %v", err)
	}
	ctrl.OverSection(1)
	if preview := e.Preview(); len(preview.Sections[1].Fields) != 1 {
		t.Fatalf("expected preview to show the moved field")
	}
	if got := e.Document(); len(got.Sections[1].Fields) != 0 {
		t.Fatalf("document must not change before the drop")
	}
	if !e.EndInteraction(true) {
		t.Fatalf("expected drop to change the document")
	}

	after := e.Document()
	if after.Sections[1].ID != second.ID || after.Sections[1].Fields[0].ID != moved {
		t.Fatalf("unexpected document after drop: %+v", after)
	}
	if _, ok := e.Selected(); ok {
		t.Fatalf("expected selection to reset after drop")
	}
}

func TestDragCancelLeavesDocument(t *testing.T) {
	e := newEditor(t)
	e.AddSection("Otra")
	before := e.Document()

	ctrl, err := e.BeginSectionDrag(before.Sections[0].ID)
	if err != nil {
		t.Fatalf("begin drag: %v", err)
	}
	ctrl.OverSection(1)
	if e.EndInteraction(false) {
		t.Fatalf("cancel must not report a change")
	}
	if diff := cmp.Diff(before, e.Document()); diff != "" {
		t.Fatalf("document changed (-want +got):\n%s", diff)
	}
}

func TestResizeCommitsLive(t *testing.T) {
	e := newEditor(t)
	var target string
	for _, field := range e.Document().Sections[0].Fields {
		if field.Name == "cantidad_vacantes" {
			target = field.ID
		}
	}

	if _, _, err := e.ResizeMove(10); !errors.Is(err, ErrNoInteraction) {
		t.Fatalf("expected ErrNoInteraction, got %v", err)
	}
	if _, err := e.BeginResize(target, layout.HandleRight, 100, 1200); err != nil {
		t.Fatalf("begin resize: %v", err)
	}
	span, changed, err := e.ResizeMove(400)
	if err != nil || !changed || span != 9 {
		t.Fatalf("expected live span 9, got %d changed=%v err=%v", span, changed, err)
	}
	field, _ := e.Document().Field(target)
	if field.ColumnSpan != 9 {
		t.Fatalf("expected committed span 9, got %d", field.ColumnSpan)
	}
	e.EndInteraction(false)
	field, _ = e.Document().Field(target)
	if field.ColumnSpan != 9 {
		t.Fatalf("release must keep the live span, got %d", field.ColumnSpan)
	}
	if _, err := e.BeginResize("missing", layout.HandleRight, 0, 1200); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFieldProtectsSystemFields(t *testing.T) {
	e := newEditor(t)
	cargo := e.Document().Sections[0].Fields[0]
	if cargo.Name != "cargo" {
		t.Fatalf("expected cargo first, got %q", cargo.Name)
	}
	got, err := e.UpdateField(cargo.ID, model.FieldPatch{
		Type:       model.Ptr(model.FieldTypeText),
		Required:   model.Ptr(false),
		ColumnSpan: model.Ptr(6),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Type != model.FieldTypeSelect || !got.Required || got.ColumnSpan != 6 {
		t.Fatalf("unexpected field after update: %+v", got)
	}
}

func TestSavePreconditions(t *testing.T) {
	persister := &memoryPersister{}
	e := newEditor(t, WithPersister(persister))
	if _, err := e.Save(context.Background()); !errors.Is(err, ErrMissingTitle) {
		t.Fatalf("expected ErrMissingTitle, got %v", err)
	}

	e.SetTitle("Solicitud de personal")
	for _, section := range e.Document().Sections {
		if err := e.RemoveSection(section.ID); err != nil {
			t.Fatalf("remove section: %v", err)
		}
	}
	if _, err := e.Save(context.Background()); !errors.Is(err, ErrNoSections) {
		t.Fatalf("expected ErrNoSections, got %v", err)
	}
	if len(persister.saved) != 0 {
		t.Fatalf("persister must not be called when preconditions fail")
	}
}

func TestSaveDelegatesToPersister(t *testing.T) {
	persister := &memoryPersister{}
	e := newEditor(t, WithPersister(persister), WithTitle("<i>Solicitud</i>"))

	saved, err := e.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID != "tpl-1" || e.TemplateID() != "tpl-1" {
		t.Fatalf("expected template id to be recorded, got %q", saved.ID)
	}
	if persister.saved[0].Title != "Solicitud" {
		t.Fatalf("expected sanitized title, got %q", persister.saved[0].Title)
	}
	if persister.saved[0].Schema.FieldCount() != 3 {
		t.Fatalf("expected starter fields in schema")
	}

	persister.err = errors.New("disk full")
	if _, err := e.Save(context.Background()); err == nil {
		t.Fatalf("expected persister error")
	}

	noPersister := newEditor(t, WithTitle("x"))
	if _, err := noPersister.Save(context.Background()); !errors.Is(err, ErrNoPersister) {
		t.Fatalf("expected ErrNoPersister, got %v", err)
	}
}

func TestLoadTemplateKeepsIdentity(t *testing.T) {
	source := newEditor(t, WithTitle("Base"))
	tpl := Template{ID: "abc", Title: "Base", Schema: source.Schema()}

	e := newEditor(t)
	if _, err := e.LoadTemplate(tpl); err != nil {
		t.Fatalf("load template: %v", err)
	}
	if e.TemplateID() != "abc" || e.Title() != "Base" {
		t.Fatalf("unexpected identity %q / %q", e.TemplateID(), e.Title())
	}
	if diff := testsupport.CompareGolden(tpl.Schema, e.Schema()); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}
