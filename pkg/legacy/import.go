// Package legacy turns persisted template definitions ("precargados") into a
// Document. It understands the current portable schema, the sectioned shape
// and the older flat field arrays, and never fails: unusable input falls back
// to the starter template.
package legacy

import (
	"encoding/json"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/internal/sanitize"
	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/naming"
)

// Input formats recorded in Report.Format.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultStarterTitle is the title of the synthesized starter section.
const DefaultStarterTitle = "Información general"

// Option customises Import.
type Option func(*importer)

// WithCatalog overrides the reserved field catalog.
func WithCatalog(catalog naming.Catalog) Option {
	return func(i *importer) {
		i.catalog = catalog
	}
}

// WithIDGenerator sets the identifier source for new sections and fields.
func WithIDGenerator(gen model.IDGenerator) Option {
	return func(i *importer) {
		if gen != nil {
			i.gen = gen
		}
	}
}

// WithStarterTitle changes the title of the fallback section.
func WithStarterTitle(title string) Option {
	return func(i *importer) {
		if strings.TrimSpace(title) != "" {
			i.starterTitle = title
		}
	}
}

// Report describes what Import had to do to produce a usable document.
type Report struct {
	Format string
	// Fallback is set when the starter template was synthesized.
	Fallback       bool
	FallbackReason string
	Flat           bool
	Sections       int
	Fields         int
	ClampedSpans   []string
	DefaultedSpans []string
	UnknownTypes   []string
	SystemFields   []string
	Renamed        []string
}

type importer struct {
	catalog      naming.Catalog
	gen          model.IDGenerator
	starterTitle string
	seenIDs      map[string]struct{}
	report       Report
}

// Import parses raw as JSON, then YAML, and builds a Document from it. Spans
// are parsed from legacy descriptors and clamped, reserved fields are flagged,
// order is renormalised and names are made unique.
func Import(raw []byte, opts ...Option) (model.Document, Report) {
	imp := &importer{
		catalog:      naming.DefaultCatalog(),
		gen:          model.NewID,
		starterTitle: DefaultStarterTitle,
		seenIDs:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(imp)
		}
	}

	payload, format, ok := decode(raw)
	if !ok {
		return imp.starter("input is empty or not valid JSON/YAML")
	}
	imp.report.Format = format

	doc, ok := imp.document(payload)
	if !ok || len(doc.Sections) == 0 {
		return imp.starter("input holds no sections or fields")
	}
	return imp.finish(doc)
}

// Starter returns the default template: one section holding the catalog's
// reserved fields.
func Starter(opts ...Option) model.Document {
	doc, _ := Import(nil, opts...)
	return doc
}

func decode(raw []byte) (any, string, bool) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, "", false
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err == nil {
		return payload, FormatJSON, payload != nil
	}
	if err := yaml.Unmarshal(raw, &payload); err == nil {
		return payload, FormatYAML, payload != nil
	}
	return nil, "", false
}

func (i *importer) document(payload any) (model.Document, bool) {
	if rec, ok := toRecord(payload); ok {
		if value, ok := rec.first("secciones", "sections"); ok {
			payload = value
		} else if _, ok := rec.first("campos", "fields"); ok {
			payload = []any{rec}
		} else {
			return model.Document{}, false
		}
	}

	items, ok := toList(payload)
	if !ok || len(items) == 0 {
		return model.Document{}, false
	}

	if !isSectioned(items) {
		i.report.Flat = true
		section := model.CreateSectionWithID(i.fresh, i.starterTitle)
		section.Fields = i.fields(items)
		if len(section.Fields) == 0 {
			return model.Document{}, false
		}
		return model.Document{Sections: []model.Section{section}}, true
	}

	var doc model.Document
	for _, item := range items {
		rec, ok := toRecord(item)
		if !ok {
			continue
		}
		doc.Sections = append(doc.Sections, i.section(rec))
	}
	return doc, true
}

func isSectioned(items []any) bool {
	for _, item := range items {
		rec, ok := toRecord(item)
		if !ok {
			continue
		}
		if _, ok := rec.first("campos", "fields"); ok {
			return true
		}
	}
	return false
}

func (i *importer) section(rec record) model.Section {
	persistedID := func() string { return i.identifier(rec.str("id")) }
	section := model.CreateSectionWithID(persistedID, sanitize.Text(rec.str("titulo", "title")))
	section.Active = rec.boolean(true, "activo", "active")
	if value, ok := rec.first("campos", "fields"); ok {
		if items, ok := toList(value); ok {
			section.Fields = i.fields(items)
		}
	}
	return section
}

type orderedField struct {
	field model.Field
	order int
}

func (i *importer) fields(items []any) []model.Field {
	ordered := make([]orderedField, 0, len(items))
	for _, item := range items {
		rec, ok := toRecord(item)
		if !ok {
			continue
		}
		field := i.field(rec)
		order, ok := rec.integer("order", "orden")
		if !ok || order < 1 {
			order = int(^uint(0) >> 1)
		}
		ordered = append(ordered, orderedField{field: field, order: order})
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].order < ordered[b].order
	})

	out := make([]model.Field, 0, len(ordered))
	for _, entry := range ordered {
		out = append(out, entry.field)
	}
	return out
}

func (i *importer) field(rec record) model.Field {
	rawType := rec.str("tipo", "type")
	fieldType, ok := model.ParseFieldType(rawType)
	if !ok {
		fieldType = model.FieldTypeText
	}

	persistedID := func() string { return i.identifier(rec.str("id")) }
	field := model.CreateFieldWithID(persistedID, fieldType, sanitize.Text(rec.str("label", "etiqueta")))
	if !ok && rawType != "" {
		i.report.UnknownTypes = append(i.report.UnknownTypes, field.ID)
	}
	field.Name = rec.str("nombre", "name")
	field.Placeholder = sanitize.Text(rec.str("placeholder"))
	field.Required = rec.boolean(false, "required", "requerido")
	field.Active = rec.boolean(true, "activo", "active")
	field.IsSystemField = rec.boolean(false, "isSystemField")
	field.ColumnSpan = i.span(rec, field.ID)
	field.Options = i.options(rec, &field)

	if days, ok := rec.integer("diasMinimos", "minimumDaysFromToday"); ok && fieldType == model.FieldTypeDate {
		field.Extra = model.DateExtra{MinimumDaysFromToday: days}
	}
	return field
}

var spanKeys = []string{"dimension", "columnSpan", "gridColumnSpan", "colspan"}

// span takes the first span key whose value parses; an unparsable key falls
// through to the next one.
func (i *importer) span(rec record, fieldID string) int {
	for _, key := range spanKeys {
		value, ok := rec.first(key)
		if !ok {
			continue
		}
		span, ok := layout.ParseSpanHint(value)
		if !ok {
			continue
		}
		clamped := model.ClampSpan(span)
		if clamped != span {
			i.report.ClampedSpans = append(i.report.ClampedSpans, fieldID)
		}
		return clamped
	}
	i.report.DefaultedSpans = append(i.report.DefaultedSpans, fieldID)
	return model.GridColumns
}

func (i *importer) options(rec record, field *model.Field) model.OptionsSource {
	var static []string
	if value, ok := rec.first("opciones", "options"); ok {
		static, _ = toOptions(value)
	}

	table := rec.str("databaseTable")
	dynamic := strings.EqualFold(rec.str("dataSource"), "database") || table != ""
	if dynamic && field.Type.AcceptsDynamicSource() && table != "" {
		if len(static) > 0 {
			field.LegacyOptions = static
		}
		return model.DynamicSource{
			Table:        table,
			DisplayField: rec.str("databaseField"),
			ValueField:   rec.str("databaseValueField"),
		}
	}
	if field.Type.AcceptsStaticOptions() {
		if static == nil {
			static = []string{}
		}
		return model.StaticOptions(static)
	}
	return nil
}

// identifier keeps a persisted id unless it is blank or already taken.
func (i *importer) identifier(candidate string) string {
	if candidate != "" {
		if _, taken := i.seenIDs[candidate]; !taken {
			i.seenIDs[candidate] = struct{}{}
			return candidate
		}
	}
	for {
		id := i.gen()
		if _, taken := i.seenIDs[id]; !taken {
			i.seenIDs[id] = struct{}{}
			return id
		}
	}
}

func (i *importer) fresh() string {
	return i.identifier("")
}

func (i *importer) starter(reason string) (model.Document, Report) {
	i.report = Report{Fallback: true, FallbackReason: reason, Format: i.report.Format}
	section := model.CreateSectionWithID(i.fresh, i.starterTitle)
	for _, sf := range i.catalog.Fields() {
		section.Fields = append(section.Fields, sf.NewField(i.fresh))
	}
	var doc model.Document
	doc.AddSection(section)
	return i.finish(doc)
}

func (i *importer) finish(doc model.Document) (model.Document, Report) {
	doc, _ = i.catalog.Classify(doc)
	doc.Renormalize()

	before := make(map[string]string, doc.FieldCount())
	for _, section := range doc.Sections {
		for _, field := range section.Fields {
			before[field.ID] = field.Name
		}
	}
	doc = naming.ResolveDuplicateNames(doc)

	i.report.SystemFields = nil
	i.report.Renamed = nil
	i.report.Sections = len(doc.Sections)
	i.report.Fields = doc.FieldCount()
	for _, section := range doc.Sections {
		for _, field := range section.Fields {
			if field.IsSystemField {
				i.report.SystemFields = append(i.report.SystemFields, field.ID)
			}
			if prev := before[field.ID]; prev != "" && prev != field.Name {
				i.report.Renamed = append(i.report.Renamed, field.ID)
			}
		}
	}
	return doc, i.report
}
