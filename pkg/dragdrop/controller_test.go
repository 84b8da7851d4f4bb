package dragdrop

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

func fixture(counts ...int) model.Document {
	var doc model.Document
	for si, count := range counts {
		section := model.Section{ID: fmt.Sprintf("s%d", si), Title: fmt.Sprintf("S%d", si), Active: true}
		for fi := 0; fi < count; fi++ {
			section.Fields = append(section.Fields, model.Field{
				ID:         fmt.Sprintf("f%d.%d", si, fi),
				Type:       model.FieldTypeText,
				Label:      fmt.Sprintf("F%d.%d", si, fi),
				ColumnSpan: 12,
				Active:     true,
			})
		}
		doc.AddSection(section)
	}
	return doc
}

func fieldIDs(section model.Section) []string {
	out := make([]string, 0, len(section.Fields))
	for _, field := range section.Fields {
		out = append(out, field.ID)
	}
	return out
}

func fieldOrders(section model.Section) []int {
	out := make([]int, 0, len(section.Fields))
	for _, field := range section.Fields {
		out = append(out, field.Order)
	}
	return out
}

func TestDropFieldIntoOtherSectionAppends(t *testing.T) {
	doc := fixture(4, 2)
	ctrl := New()

	if err := ctrl.BeginField(doc, 0, 2); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if ctrl.State() != StateDragging {
		t.Fatalf("expected dragging, got %s", ctrl.State())
	}
	if _, ok := ctrl.OverSection(1); !ok {
		t.Fatalf("expected preview")
	}
	got, changed := ctrl.Drop()
	if !changed {
		t.Fatalf("expected drop to change the document")
	}
	if ctrl.State() != StateIdle {
		t.Fatalf("expected idle after drop, got %s", ctrl.State())
	}

	if diff := cmp.Diff([]string{"f1.0", "f1.1", "f0.2"}, fieldIDs(got.Sections[1])); diff != "" {
		t.Fatalf("target mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, fieldOrders(got.Sections[1])); diff != "" {
		t.Fatalf("target orders mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"f0.0", "f0.1", "f0.3"}, fieldIDs(got.Sections[0])); diff != "" {
		t.Fatalf("source mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, fieldOrders(got.Sections[0])); diff != "" {
		t.Fatalf("source orders mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Sections[0].Fields) != 4 {
		t.Fatalf("input document must not be mutated")
	}
}

func TestPreviewDoesNotCommit(t *testing.T) {
	doc := fixture(3)
	ctrl := New()
	if err := ctrl.BeginField(doc, 0, 0); err != nil {
		t.Fatalf("begin: %v", err)
	}
	preview, ok := ctrl.OverField(0, 3)
	if !ok {
		t.Fatalf("expected preview")
	}
	if diff := cmp.Diff([]string{"f0.1", "f0.2", "f0.0"}, fieldIDs(preview.Sections[0])); diff != "" {
		t.Fatalf("preview mismatch (-want +got):\n%s", diff)
	}
	ctrl.Cancel()
	if ctrl.Active() {
		t.Fatalf("expected idle after cancel")
	}
	if _, ok := ctrl.Preview(); ok {
		t.Fatalf("expected preview to be discarded")
	}
	if diff := cmp.Diff([]string{"f0.0", "f0.1", "f0.2"}, fieldIDs(doc.Sections[0])); diff != "" {
		t.Fatalf("document changed (-want +got):\n%s", diff)
	}
}

func TestDropOntoOwnPositionIsNoop(t *testing.T) {
	doc := fixture(3)
	ctrl := New()

	for _, gap := range []int{1, 2} {
		if err := ctrl.BeginField(doc, 0, 1); err != nil {
			t.Fatalf("begin: %v", err)
		}
		ctrl.OverField(0, gap)
		if _, changed := ctrl.Drop(); changed {
			t.Fatalf("gap %d: expected no-op drop", gap)
		}
	}

	if err := ctrl.BeginSection(doc, 0); err != nil {
		t.Fatalf("begin section: %v", err)
	}
	ctrl.OverSection(0)
	if _, changed := ctrl.Drop(); changed {
		t.Fatalf("expected section dropped onto itself to be a no-op")
	}
}

func TestDropWithoutHoverIsNoop(t *testing.T) {
	ctrl := New()
	if err := ctrl.BeginField(fixture(2), 0, 0); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, changed := ctrl.Drop(); changed {
		t.Fatalf("expected no-op")
	}
	if _, changed := ctrl.Drop(); changed {
		t.Fatalf("expected idle drop to be a no-op")
	}
}

func TestRoundTripLaw(t *testing.T) {
	original := fixture(5)
	ctrl := New()

	if err := ctrl.BeginField(original, 0, 1); err != nil {
		t.Fatalf("begin: %v", err)
	}
	ctrl.OverField(0, 4)
	moved, changed := ctrl.Drop()
	if !changed || moved.Sections[0].Fields[3].ID != "f0.1" {
		t.Fatalf("unexpected move: %v", fieldIDs(moved.Sections[0]))
	}

	if err := ctrl.BeginField(moved, 0, 3); err != nil {
		t.Fatalf("begin back: %v", err)
	}
	ctrl.OverField(0, 1)
	back, changed := ctrl.Drop()
	if !changed {
		t.Fatalf("expected move back")
	}
	if diff := cmp.Diff(original, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptySectionAcceptsIndexZero(t *testing.T) {
	ctrl := New()
	if err := ctrl.BeginField(fixture(2, 0), 0, 1); err != nil {
		t.Fatalf("begin: %v", err)
	}
	ctrl.OverField(1, 0)
	got, changed := ctrl.End(true)
	if !changed {
		t.Fatalf("expected change")
	}
	if diff := cmp.Diff([]string{"f0.1"}, fieldIDs(got.Sections[1])); diff != "" {
		t.Fatalf("target mismatch (-want +got):\n%s", diff)
	}
	if got.Sections[1].Fields[0].Order != 1 {
		t.Fatalf("expected order 1, got %d", got.Sections[1].Fields[0].Order)
	}
}

func TestOverFieldListUsesPointer(t *testing.T) {
	ctrl := New()
	if err := ctrl.BeginField(fixture(1, 3), 0, 0); err != nil {
		t.Fatalf("begin: %v", err)
	}
	boxes := []layout.Box{{Top: 0, Bottom: 50}, {Top: 50, Bottom: 100}, {Top: 100, Bottom: 150}}
	preview, ok := ctrl.OverFieldList(1, 1070, 1000, boxes)
	if !ok {
		t.Fatalf("expected preview")
	}
	if diff := cmp.Diff([]string{"f1.0", "f0.0", "f1.1", "f1.2"}, fieldIDs(preview.Sections[1])); diff != "" {
		t.Fatalf("preview mismatch (-want +got):\n%s", diff)
	}
	if target, ok := ctrl.Target(); !ok || target != (Target{Section: 1, Index: 1}) {
		t.Fatalf("unexpected target %+v", target)
	}
}

func TestSectionDrag(t *testing.T) {
	ctrl := New()
	if err := ctrl.BeginSection(fixture(0, 0, 0), 0); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, ok := ctrl.OverField(1, 0); ok {
		t.Fatalf("field gaps must not react to section drags before a hover")
	}
	ctrl.OverSection(2)
	got, changed := ctrl.Drop()
	if !changed {
		t.Fatalf("expected change")
	}
	var ids []string
	for _, section := range got.Sections {
		ids = append(ids, section.ID)
	}
	if diff := cmp.Diff([]string{"s1", "s2", "s0"}, ids); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidTargetKeepsLastPreview(t *testing.T) {
	ctrl := New()
	if err := ctrl.BeginField(fixture(2, 1), 0, 0); err != nil {
		t.Fatalf("begin: %v", err)
	}
	ctrl.OverSection(1)
	if _, ok := ctrl.OverSection(9); !ok {
		t.Fatalf("expected previous preview to survive")
	}
	if target, _ := ctrl.Target(); target.Section != 1 {
		t.Fatalf("expected target to stay on section 1, got %+v", target)
	}
}

func TestBeginErrors(t *testing.T) {
	ctrl := New()
	if err := ctrl.BeginField(fixture(1), 0, 5); !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("expected ErrInvalidSource, got %v", err)
	}
	if err := ctrl.BeginSection(fixture(1), 0); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := ctrl.BeginField(fixture(1), 0, 0); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("expected ErrNotIdle, got %v", err)
	}
	ctrl.End(false)
	if ctrl.State() != StateIdle {
		t.Fatalf("expected idle")
	}
}
