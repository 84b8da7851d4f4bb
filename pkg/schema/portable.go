// Package schema projects a Document into the portable JSON schema stored by
// the platform and consumed by the preview and submission renderers.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/naming"
)

// GridLayout is the layout tag emitted for every section.
const GridLayout = "grid-cols-12"

// DataSourceDatabase marks fields whose options come from a lookup table.
const DataSourceDatabase = "database"

// PortableSchema is the persisted form of a template.
type PortableSchema struct {
	Secciones []Seccion `json:"secciones"`
}

// Seccion is one serialized section.
type Seccion struct {
	Titulo string  `json:"titulo"`
	Layout string  `json:"layout"`
	Campos []Campo `json:"campos"`
}

// Campo is one serialized field. Colspan and GridColumnSpan are derived from
// Dimension and kept for older consumers.
type Campo struct {
	Tipo               string   `json:"tipo"`
	Label              string   `json:"label"`
	Nombre             string   `json:"nombre"`
	Colspan            string   `json:"colspan"`
	GridColumnSpan     string   `json:"gridColumnSpan"`
	Required           bool     `json:"required"`
	Dimension          int      `json:"dimension"`
	Order              int      `json:"order"`
	Placeholder        string   `json:"placeholder"`
	Opciones           []string `json:"opciones,omitempty"`
	DataSource         string   `json:"dataSource,omitempty"`
	DatabaseTable      string   `json:"databaseTable,omitempty"`
	DatabaseField      string   `json:"databaseField,omitempty"`
	DatabaseValueField string   `json:"databaseValueField,omitempty"`
	Options            []string `json:"options"`
	Activo             bool     `json:"activo"`
	IsSystemField      bool     `json:"isSystemField"`
	DiasMinimos        *int     `json:"diasMinimos,omitempty"`
}

// IsDynamic reports whether the field is bound to a lookup table.
func (c Campo) IsDynamic() bool {
	return c.DataSource == DataSourceDatabase && c.DatabaseTable != ""
}

// ToSchema serializes the active sections and fields of doc. Names are
// resolved on a copy first, so the output always carries unique names even
// when doc does not.
func ToSchema(doc model.Document) PortableSchema {
	resolved := naming.ResolveDuplicateNames(doc)
	out := PortableSchema{Secciones: make([]Seccion, 0, len(resolved.Sections))}
	for _, section := range resolved.Sections {
		if !section.Active {
			continue
		}
		seccion := Seccion{
			Titulo: section.Title,
			Layout: GridLayout,
			Campos: make([]Campo, 0, len(section.Fields)),
		}
		for _, field := range section.Fields {
			if !field.Active {
				continue
			}
			seccion.Campos = append(seccion.Campos, campo(field))
		}
		out.Secciones = append(out.Secciones, seccion)
	}
	return out
}

func campo(field model.Field) Campo {
	span := model.ClampSpan(field.ColumnSpan)
	c := Campo{
		Tipo:           string(field.Type),
		Label:          field.Label,
		Nombre:         field.Name,
		Colspan:        layout.ColSpanClass(span),
		GridColumnSpan: layout.GridColumnSpan(span),
		Required:       field.Required,
		Dimension:      span,
		Order:          field.Order,
		Placeholder:    field.Placeholder,
		Options:        []string{},
		Activo:         field.Active,
		IsSystemField:  field.IsSystemField,
	}

	if opts, ok := field.StaticOptions(); ok && len(opts) > 0 && field.Type.AcceptsStaticOptions() {
		c.Opciones = append([]string{}, opts...)
		c.Options = append([]string{}, opts...)
	}
	if src, ok := field.DynamicSource(); ok {
		c.DataSource = DataSourceDatabase
		c.DatabaseTable = src.Table
		c.DatabaseField = src.DisplayField
		c.DatabaseValueField = src.ValueField
		if len(field.LegacyOptions) > 0 {
			c.Options = append([]string{}, field.LegacyOptions...)
		}
	}
	if extra, ok := field.Extra.(model.DateExtra); ok {
		days := extra.MinimumDaysFromToday
		c.DiasMinimos = &days
	}
	return c
}

// Marshal renders s as indented JSON.
func Marshal(s PortableSchema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: marshal: %w", err)
	}
	return data, nil
}

// Parse decodes a portable schema document.
func Parse(raw []byte) (PortableSchema, error) {
	var out PortableSchema
	if err := json.Unmarshal(raw, &out); err != nil {
		return PortableSchema{}, fmt.Errorf("schema: parse: %w", err)
	}
	return out, nil
}

// FieldCount returns the number of serialized fields.
func (s PortableSchema) FieldCount() int {
	total := 0
	for _, seccion := range s.Secciones {
		total += len(seccion.Campos)
	}
	return total
}
