// Package tui edits a template from the terminal. Every change goes through
// the builder.Editor, so the document invariants hold exactly as they do for
// pointer-driven editing.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Action is one entry of the main menu.
type Action int

const (
	ActionAddSection Action = iota
	ActionAddField
	ActionEditSpan
	ActionMoveField
	ActionRemoveField
	ActionToggleSection
	ActionRename
	ActionFinish
)

var actionLabels = []string{
	ActionAddSection:    "Agregar sección",
	ActionAddField:      "Agregar campo",
	ActionEditSpan:      "Cambiar ancho de un campo",
	ActionMoveField:     "Mover campo",
	ActionRemoveField:   "Eliminar campo",
	ActionToggleSection: "Activar/desactivar sección",
	ActionRename:        "Cambiar título de la plantilla",
	ActionFinish:        "Terminar",
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// Session drives one terminal editing loop over an Editor.
type Session struct {
	driver PromptDriver
	editor *builder.Editor
}

// New builds a Session over editor, using the survey driver unless another
// one is supplied.
func New(editor *builder.Editor, opts ...Option) (*Session, error) {
	if editor == nil {
		return nil, errors.New("tui: editor is required")
	}
	s := &Session{editor: editor}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s, nil
}

// Run shows the menu until the user picks Terminar or aborts. Editing errors
// are reported through the driver and the loop continues; prompt errors end
// the loop.
func Run(ctx context.Context, editor *builder.Editor, opts ...Option) error {
	s, err := New(editor, opts...)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

// Run executes the menu loop.
func (s *Session) Run(ctx context.Context) error {
	defer s.editor.Release()

	for {
		if err := s.driver.Info(ctx, s.summary()); err != nil {
			return err
		}
		choice, err := s.driver.Select(ctx, SelectConfig{
			Message:  "¿Qué desea hacer?",
			Options:  actionLabels,
			PageSize: len(actionLabels),
		})
		if err != nil {
			return err
		}
		action := Action(choice)
		if action == ActionFinish || choice < 0 {
			return nil
		}
		if err := s.perform(ctx, action); err != nil {
			if errors.Is(err, ErrAborted) || ctx.Err() != nil {
				return err
			}
			if infoErr := s.driver.Info(ctx, "Error: "+err.Error()); infoErr != nil {
				return infoErr
			}
		}
	}
}

func (s *Session) perform(ctx context.Context, action Action) error {
	switch action {
	case ActionAddSection:
		return s.addSection(ctx)
	case ActionAddField:
		return s.addField(ctx)
	case ActionEditSpan:
		return s.editSpan(ctx)
	case ActionMoveField:
		return s.moveField(ctx)
	case ActionRemoveField:
		return s.removeField(ctx)
	case ActionToggleSection:
		return s.toggleSection(ctx)
	case ActionRename:
		return s.rename(ctx)
	}
	return fmt.Errorf("tui: unknown action %d", action)
}

func (s *Session) addSection(ctx context.Context) error {
	title, err := s.driver.Input(ctx, InputConfig{Message: "Título de la sección"})
	if err != nil {
		return err
	}
	_, err = s.editor.AddSection(title)
	return err
}

func (s *Session) addField(ctx context.Context) error {
	section, err := s.pickSection(ctx, "Sección destino")
	if err != nil {
		return err
	}
	types := model.FieldTypes()
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = string(t)
	}
	ti, err := s.driver.Select(ctx, SelectConfig{Message: "Tipo de campo", Options: labels})
	if err != nil {
		return err
	}
	if ti < 0 || ti >= len(types) {
		return fmt.Errorf("tui: invalid field type selection")
	}
	label, err := s.driver.Input(ctx, InputConfig{Message: "Etiqueta"})
	if err != nil {
		return err
	}
	field, err := s.editor.AddField(section.ID, types[ti], label)
	if err != nil {
		return err
	}
	if !types[ti].AcceptsStaticOptions() {
		return nil
	}
	raw, err := s.driver.Input(ctx, InputConfig{
		Message: "Opciones separadas por coma",
		Help:    "Deje vacío para configurarlas más tarde",
	})
	if err != nil {
		return err
	}
	options := splitOptions(raw)
	if len(options) == 0 {
		return nil
	}
	_, err = s.editor.UpdateField(field.ID, model.FieldPatch{Options: model.StaticOptions(options)})
	return err
}

func (s *Session) editSpan(ctx context.Context) error {
	field, err := s.pickField(ctx, "Campo a redimensionar")
	if err != nil {
		return err
	}
	raw, err := s.driver.Input(ctx, InputConfig{
		Message:   fmt.Sprintf("Ancho en columnas (1-%d)", layout.DefaultColumns),
		Default:   strconv.Itoa(field.ColumnSpan),
		Validator: validateSpan,
	})
	if err != nil {
		return err
	}
	span, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("tui: invalid span %q", raw)
	}
	_, err = s.editor.UpdateField(field.ID, model.FieldPatch{ColumnSpan: model.Ptr(span)})
	return err
}

// moveField runs a full drag interaction: begin on the field, hover the gap
// the user picked, drop.
func (s *Session) moveField(ctx context.Context) error {
	field, err := s.pickField(ctx, "Campo a mover")
	if err != nil {
		return err
	}
	doc := s.editor.Document()
	target, err := s.pickSection(ctx, "Sección destino")
	if err != nil {
		return err
	}
	si := doc.SectionIndex(target.ID)

	positions := make([]string, 0, len(target.Fields)+1)
	positions = append(positions, "Al inicio")
	for _, f := range target.Fields {
		positions = append(positions, "Después de "+describe(f))
	}
	gap, err := s.driver.Select(ctx, SelectConfig{Message: "Posición", Options: positions, DefaultIndex: len(positions) - 1})
	if err != nil {
		return err
	}
	if gap < 0 {
		return nil
	}

	drag, err := s.editor.BeginFieldDrag(field.ID)
	if err != nil {
		return err
	}
	defer s.editor.Release()
	drag.OverField(si, gap)
	s.editor.EndInteraction(true)
	return nil
}

func (s *Session) removeField(ctx context.Context) error {
	field, err := s.pickField(ctx, "Campo a eliminar")
	if err != nil {
		return err
	}
	ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "¿Eliminar " + describe(field) + "?"})
	if err != nil || !ok {
		return err
	}
	doc := s.editor.Document()
	si, _, found := doc.Locate(field.ID)
	if !found {
		return builder.ErrNotFound
	}
	return s.editor.RemoveField(doc.Sections[si].ID, field.ID)
}

func (s *Session) toggleSection(ctx context.Context) error {
	section, err := s.pickSection(ctx, "Sección")
	if err != nil {
		return err
	}
	return s.editor.SetSectionActive(section.ID, !section.Active)
}

func (s *Session) rename(ctx context.Context) error {
	title, err := s.driver.Input(ctx, InputConfig{
		Message: "Título de la plantilla",
		Default: s.editor.Title(),
	})
	if err != nil {
		return err
	}
	s.editor.SetTitle(title)
	return nil
}

func (s *Session) pickSection(ctx context.Context, message string) (model.Section, error) {
	doc := s.editor.Document()
	if len(doc.Sections) == 0 {
		return model.Section{}, fmt.Errorf("%w: no sections", builder.ErrNotFound)
	}
	options := make([]string, len(doc.Sections))
	for i, section := range doc.Sections {
		options[i] = sectionLabel(section)
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: message, Options: options})
	if err != nil {
		return model.Section{}, err
	}
	if idx < 0 || idx >= len(doc.Sections) {
		return model.Section{}, fmt.Errorf("%w: section selection", builder.ErrNotFound)
	}
	return doc.Sections[idx], nil
}

func (s *Session) pickField(ctx context.Context, message string) (model.Field, error) {
	doc := s.editor.Document()
	var (
		fields  []model.Field
		options []string
	)
	for _, section := range doc.Sections {
		for _, field := range section.Fields {
			fields = append(fields, field)
			options = append(options, section.Title+" / "+describe(field))
		}
	}
	if len(fields) == 0 {
		return model.Field{}, fmt.Errorf("%w: no fields", builder.ErrNotFound)
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: message, Options: options})
	if err != nil {
		return model.Field{}, err
	}
	if idx < 0 || idx >= len(fields) {
		return model.Field{}, fmt.Errorf("%w: field selection", builder.ErrNotFound)
	}
	return fields[idx], nil
}

func (s *Session) summary() string {
	doc := s.editor.Document()
	var b strings.Builder
	fmt.Fprintf(&b, "Plantilla: %s\n", s.editor.Title())
	for _, section := range doc.Sections {
		fmt.Fprintf(&b, "  %s\n", sectionLabel(section))
		for _, field := range section.Fields {
			fmt.Fprintf(&b, "    %d. %s [%s, %d col]\n", field.Order, describe(field), field.Type, field.ColumnSpan)
		}
	}
	return b.String()
}

func sectionLabel(section model.Section) string {
	if section.Active {
		return section.Title
	}
	return section.Title + " (inactiva)"
}

func describe(field model.Field) string {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	if field.Required {
		label += " *"
	}
	return label
}

func validateSpan(raw string) error {
	span, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("ingrese un número")
	}
	if span < 1 || span > layout.DefaultColumns {
		return fmt.Errorf("el ancho debe estar entre 1 y %d", layout.DefaultColumns)
	}
	return nil
}

func splitOptions(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
