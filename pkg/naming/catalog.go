package naming

import (
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// SystemField describes one reserved field of the platform.
type SystemField struct {
	Name       string
	Label      string
	Type       model.FieldType
	ColumnSpan int
	Required   bool
	// Critical fields keep Required pinned to true.
	Critical bool
	// LabelFragments match case- and accent-insensitively anywhere inside a
	// field label.
	LabelFragments []string
	// Source, when set, turns the matched field into a select bound to this
	// lookup table. Previous static options are kept as legacy metadata.
	Source *model.DynamicSource
}

// Catalog is the set of reserved fields used to classify imported fields.
type Catalog struct {
	fields []SystemField
}

// NewCatalog builds a catalog from fields. Entries without a name are ignored.
func NewCatalog(fields ...SystemField) Catalog {
	out := make([]SystemField, 0, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field.Name) == "" {
			continue
		}
		out = append(out, field)
	}
	return Catalog{fields: out}
}

// DefaultCatalog returns the platform's built-in reserved fields.
func DefaultCatalog() Catalog {
	return NewCatalog(
		SystemField{
			Name:           "cargo",
			Label:          "Cargo",
			Type:           model.FieldTypeSelect,
			ColumnSpan:     model.GridColumns,
			Required:       true,
			Critical:       true,
			LabelFragments: []string{"cargo"},
			Source: &model.DynamicSource{
				Table:        "cargos",
				DisplayField: "nombre",
				ValueField:   "id",
			},
		},
		SystemField{
			Name:       "cantidad_vacantes",
			Label:      "Cantidad de vacantes",
			Type:       model.FieldTypeNumber,
			ColumnSpan: 6,
			Required:   true,
		},
		SystemField{
			Name:       "fecha_ingreso",
			Label:      "Fecha de ingreso",
			Type:       model.FieldTypeDate,
			ColumnSpan: 6,
			Required:   true,
		},
	)
}

// Fields returns a copy of the catalog entries.
func (c Catalog) Fields() []SystemField {
	return append([]SystemField(nil), c.fields...)
}

// Len reports the number of reserved fields.
func (c Catalog) Len() int { return len(c.fields) }

// Lookup finds a reserved field by exact name.
func (c Catalog) Lookup(name string) (SystemField, bool) {
	for _, candidate := range c.fields {
		if candidate.Name == name {
			return candidate, true
		}
	}
	return SystemField{}, false
}

// Match reports the reserved field that field corresponds to. Exact name
// matches win over label fragment matches.
func (c Catalog) Match(field model.Field) (SystemField, bool) {
	if field.Name != "" {
		if sf, ok := c.Lookup(field.Name); ok {
			return sf, true
		}
	}
	label := strings.ToLower(Fold(field.Label))
	if strings.TrimSpace(label) == "" {
		return SystemField{}, false
	}
	for _, candidate := range c.fields {
		for _, fragment := range candidate.LabelFragments {
			fragment = strings.ToLower(Fold(strings.TrimSpace(fragment)))
			if fragment != "" && strings.Contains(label, fragment) {
				return candidate, true
			}
		}
	}
	return SystemField{}, false
}

// Classify returns a copy of doc with reserved fields flagged and normalised,
// plus the identifiers of the fields that matched the catalog.
func (c Catalog) Classify(doc model.Document) (model.Document, []string) {
	out := doc.Clone()
	var matched []string
	for si := range out.Sections {
		for fi := range out.Sections[si].Fields {
			field := &out.Sections[si].Fields[fi]
			sf, ok := c.Match(*field)
			if !ok {
				continue
			}
			sf.apply(field)
			matched = append(matched, field.ID)
		}
	}
	return out, matched
}

// NewField builds a default instance of the reserved field.
func (sf SystemField) NewField(gen model.IDGenerator) model.Field {
	field := model.CreateFieldWithID(gen, sf.Type, sf.Label)
	field.Name = sf.Name
	field.Required = sf.Required
	if sf.ColumnSpan > 0 {
		field.ColumnSpan = model.ClampSpan(sf.ColumnSpan)
	}
	sf.apply(&field)
	return field
}

func (sf SystemField) apply(field *model.Field) {
	field.IsSystemField = true
	if field.Name == "" {
		field.Name = sf.Name
	}
	if sf.Critical {
		field.Critical = true
		field.Required = true
	}
	if sf.Source == nil {
		return
	}
	if opts, ok := field.StaticOptions(); ok && len(opts) > 0 {
		field.LegacyOptions = append([]string(nil), opts...)
	}
	field.Type = model.FieldTypeSelect
	field.Options = *sf.Source
}
