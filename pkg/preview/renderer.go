// Package preview renders a PortableSchema as an HTML form laid out on the
// 12-column grid, the way the submission screen will show it.
package preview

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// DefaultTemplate is the entry template rendered by Renderer.
const DefaultTemplate = "form.tpl"

const defaultEmptyMessage = "La plantilla no tiene secciones activas."

// Option configures a Renderer.
type Option func(*config)

type config struct {
	baseDir      string
	templates    []fs.FS
	entry        string
	globals      pongo2.Context
	filters      map[string]func(input any, param any) (any, error)
	emptyMessage string
}

// WithBaseDir loads templates from a directory on disk before the embedded
// bundle, which lets a deployment override form.tpl or field.tpl.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS adds a template source consulted before the embedded bundle.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = append([]fs.FS{files}, cfg.templates...)
		}
	}
}

// WithTemplate changes the entry template name.
func WithTemplate(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.entry = trimmed
		}
	}
}

// WithGlobal exposes value to every template under key.
func WithGlobal(key string, value any) Option {
	return func(cfg *config) {
		if key = strings.TrimSpace(key); key != "" {
			cfg.globals[key] = value
		}
	}
}

// WithFilter registers a template filter.
func WithFilter(name string, fn func(input any, param any) (any, error)) Option {
	return func(cfg *config) {
		cfg.filters[name] = fn
	}
}

// WithEmptyMessage sets the text shown when no section is active.
func WithEmptyMessage(msg string) Option {
	return func(cfg *config) {
		cfg.emptyMessage = msg
	}
}

// Renderer turns portable schemas into HTML.
type Renderer struct {
	engine       *Engine
	entry        string
	emptyMessage string
}

// New builds a Renderer backed by the embedded templates plus any overrides.
func New(opts ...Option) (*Renderer, error) {
	cfg := &config{
		entry:        DefaultTemplate,
		globals:      pongo2.Context{},
		filters:      map[string]func(input any, param any) (any, error){},
		emptyMessage: defaultEmptyMessage,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	cfg.templates = append(cfg.templates, TemplatesFS())

	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &Renderer{engine: engine, entry: cfg.entry, emptyMessage: cfg.emptyMessage}, nil
}

// Render writes the HTML preview of s to w.
func (r *Renderer) Render(w io.Writer, title string, s schema.PortableSchema) error {
	data := pongo2.Context{
		"title":         title,
		"sections":      Sections(s),
		"empty_message": r.emptyMessage,
	}
	return r.engine.Execute(w, r.entry, data)
}

// RenderString is Render into a string.
func (r *Renderer) RenderString(title string, s schema.PortableSchema) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, title, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SectionView is the template-facing shape of a section.
type SectionView struct {
	Title  string
	Layout string
	Fields []FieldView
}

// FieldView is the template-facing shape of a field. Control picks the
// widget branch in field.tpl.
type FieldView struct {
	ID           string
	Name         string
	Label        string
	Type         string
	Control      string
	InputType    string
	Placeholder  string
	SpanClass    string
	Order        int
	Required     bool
	System       bool
	Options      []string
	Source       string
	DisplayField string
	ValueField   string
	Min          string
	Max          string
	Hint         string
}

// Sections builds the view model for s.
func Sections(s schema.PortableSchema) []SectionView {
	out := make([]SectionView, 0, len(s.Secciones))
	for si, seccion := range s.Secciones {
		view := SectionView{
			Title:  seccion.Titulo,
			Layout: seccion.Layout,
			Fields: make([]FieldView, 0, len(seccion.Campos)),
		}
		for fi, campo := range seccion.Campos {
			view.Fields = append(view.Fields, fieldView(si, fi, campo))
		}
		out = append(out, view)
	}
	return out
}

func fieldView(si, fi int, campo schema.Campo) FieldView {
	view := FieldView{
		ID:          fmt.Sprintf("campo-%d-%d", si+1, fi+1),
		Name:        campo.Nombre,
		Label:       campo.Label,
		Type:        campo.Tipo,
		Control:     "input",
		InputType:   "text",
		Placeholder: campo.Placeholder,
		SpanClass:   layout.ColSpanClass(campo.Dimension),
		Order:       campo.Order,
		Required:    campo.Required,
		System:      campo.IsSystemField,
		Options:     campo.Opciones,
	}
	if len(view.Options) == 0 {
		view.Options = campo.Options
	}

	switch model.FieldType(campo.Tipo) {
	case model.FieldTypeTitle:
		view.Control = "title"
	case model.FieldTypeTextarea:
		view.Control = "textarea"
	case model.FieldTypeSelect, model.FieldTypeForeignKey:
		view.Control = "select"
	case model.FieldTypeRadio:
		view.Control = "radio"
	case model.FieldTypeCheckbox:
		view.Control = "checkbox"
	case model.FieldTypeNumber:
		view.InputType = "number"
	case model.FieldTypePercent:
		view.InputType = "number"
		view.Min, view.Max = "0", "100"
	case model.FieldTypeEmail:
		view.InputType = "email"
	case model.FieldTypeDate:
		view.InputType = "date"
		if campo.DiasMinimos != nil {
			view.Hint = "Al menos " + strconv.Itoa(*campo.DiasMinimos) + " días desde hoy"
		}
	}

	if campo.IsDynamic() {
		view.Control = "select"
		view.Source = campo.DatabaseTable
		view.DisplayField = campo.DatabaseField
		view.ValueField = campo.DatabaseValueField
	}
	return view
}
