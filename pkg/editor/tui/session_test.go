package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

// scriptedDriver answers prompts from a fixed script. Strings answer Input,
// ints answer Select and bools answer Confirm.
type scriptedDriver struct {
	answers []any
	infos   []string
	prompts []string
}

func (d *scriptedDriver) next(prompt string) (any, error) {
	d.prompts = append(d.prompts, prompt)
	if len(d.answers) == 0 {
		return nil, ErrAborted
	}
	answer := d.answers[0]
	d.answers = d.answers[1:]
	return answer, nil
}

func (d *scriptedDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	answer, err := d.next(cfg.Message)
	if err != nil {
		return "", err
	}
	s, ok := answer.(string)
	if !ok {
		return "", fmt.Errorf("input %q: expected string answer, got %T", cfg.Message, answer)
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(s); err != nil {
			return "", err
		}
	}
	return s, nil
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	answer, err := d.next(cfg.Message)
	if err != nil {
		return false, err
	}
	b, ok := answer.(bool)
	if !ok {
		return false, fmt.Errorf("confirm %q: expected bool answer, got %T", cfg.Message, answer)
	}
	return b, nil
}

func (d *scriptedDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	answer, err := d.next(cfg.Message)
	if err != nil {
		return 0, err
	}
	idx, ok := answer.(int)
	if !ok {
		return 0, fmt.Errorf("select %q: expected int answer, got %T", cfg.Message, answer)
	}
	return idx, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func newEditor() *builder.Editor {
	return builder.New(
		builder.WithIDGenerator(testsupport.SequentialIDs("tui")),
		builder.WithTitle("Solicitud"),
	)
}

func fieldNames(section model.Section) []string {
	names := make([]string, 0, len(section.Fields))
	for _, f := range section.Fields {
		names = append(names, f.Name)
	}
	return names
}

func typeIndex(t *testing.T, ft model.FieldType) int {
	t.Helper()
	for i, candidate := range model.FieldTypes() {
		if candidate == ft {
			return i
		}
	}
	t.Fatalf("unknown field type %s", ft)
	return -1
}

func runScript(t *testing.T, editor *builder.Editor, answers ...any) (*scriptedDriver, error) {
	t.Helper()
	driver := &scriptedDriver{answers: answers}
	err := Run(context.Background(), editor, WithPromptDriver(driver))
	return driver, err
}

func TestRunAddsSectionAndField(t *testing.T) {
	editor := newEditor()
	_, err := runScript(t, editor,
		int(ActionAddSection), "Contacto",
		int(ActionAddField), 1, typeIndex(t, model.FieldTypeEmail), "Correo Electrónico",
		int(ActionFinish),
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	doc := editor.Document()
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}
	if diff := cmp.Diff([]string{"correo_electronico"}, fieldNames(doc.Sections[1])); diff != "" {
		t.Fatalf("field names mismatch (-want +got):\n%s", diff)
	}
}

func TestRunAddsFieldWithStaticOptions(t *testing.T) {
	editor := newEditor()
	_, err := runScript(t, editor,
		int(ActionAddField), 0, typeIndex(t, model.FieldTypeRadio), "Turno", "Mañana, Tarde ,",
		int(ActionFinish),
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	doc := editor.Document()
	fields := doc.Sections[0].Fields
	opts, ok := fields[len(fields)-1].StaticOptions()
	if !ok {
		t.Fatalf("expected static options on the new field")
	}
	if diff := cmp.Diff([]string{"Mañana", "Tarde"}, opts); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestRunEditsSpan(t *testing.T) {
	editor := newEditor()
	_, err := runScript(t, editor,
		int(ActionEditSpan), 0, "4",
		int(ActionFinish),
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := editor.Document().Sections[0].Fields[0].ColumnSpan; got != 4 {
		t.Fatalf("expected span 4, got %d", got)
	}
}

func TestRunMovesFieldThroughDrag(t *testing.T) {
	editor := newEditor()
	before := fieldNames(editor.Document().Sections[0])
	if len(before) != 3 {
		t.Fatalf("expected starter template with 3 fields, got %v", before)
	}

	_, err := runScript(t, editor,
		int(ActionMoveField), 2, 0, 0,
		int(ActionFinish),
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	section := editor.Document().Sections[0]
	want := []string{before[2], before[0], before[1]}
	if diff := cmp.Diff(want, fieldNames(section)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	for i, f := range section.Fields {
		if f.Order != i+1 {
			t.Fatalf("field %s has order %d, want %d", f.Name, f.Order, i+1)
		}
	}
	if editor.Interaction() != builder.InteractionNone {
		t.Fatalf("expected no active interaction after move")
	}
}

func TestRunRemoveFieldAsksForConfirmation(t *testing.T) {
	editor := newEditor()
	_, err := runScript(t, editor,
		int(ActionRemoveField), 1, false,
		int(ActionRemoveField), 1, true,
		int(ActionFinish),
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := len(editor.Document().Sections[0].Fields); got != 2 {
		t.Fatalf("expected one field removed, got %d fields", got)
	}
}

func TestRunTogglesSectionAndRenames(t *testing.T) {
	editor := newEditor()
	driver, err := runScript(t, editor,
		int(ActionToggleSection), 0,
		int(ActionRename), "Solicitud de <b>personal</b>",
		int(ActionFinish),
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if editor.Document().Sections[0].Active {
		t.Fatalf("expected section to be deactivated")
	}
	if editor.Title() != "Solicitud de personal" {
		t.Fatalf("expected sanitized title, got %q", editor.Title())
	}
	last := driver.infos[len(driver.infos)-1]
	if !strings.Contains(last, "(inactiva)") {
		t.Fatalf("expected summary to flag the inactive section:\n%s", last)
	}
}

func TestRunReportsEditingErrorsAndContinues(t *testing.T) {
	editor := newEditor()
	driver, err := runScript(t, editor,
		int(ActionEditSpan), 0, "veinte",
		int(ActionFinish),
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var reported bool
	for _, msg := range driver.infos {
		if strings.HasPrefix(msg, "Error: ") {
			reported = true
		}
	}
	if !reported {
		t.Fatalf("expected the invalid span to be reported, infos: %v", driver.infos)
	}
}

func TestRunStopsOnAbort(t *testing.T) {
	editor := newEditor()
	_, err := runScript(t, editor, int(ActionAddSection))
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestNewRequiresEditor(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error without editor")
	}
}
