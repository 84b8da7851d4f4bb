package wire

import "github.com/goliatone/go-formbuilder/pkg/model"

// SectionView is a section as the client sees it, identifiers included.
type SectionView struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Active bool        `json:"active"`
	Fields []FieldView `json:"fields"`
}

// FieldView is a field as the client sees it.
type FieldView struct {
	ID                   string      `json:"id"`
	Type                 string      `json:"type"`
	Label                string      `json:"label"`
	Name                 string      `json:"name"`
	Placeholder          string      `json:"placeholder,omitempty"`
	Required             bool        `json:"required"`
	Order                int         `json:"order"`
	ColumnSpan           int         `json:"columnSpan"`
	Active               bool        `json:"active"`
	IsSystemField        bool        `json:"isSystemField"`
	Critical             bool        `json:"critical,omitempty"`
	Options              []string    `json:"options,omitempty"`
	Source               *SourceData `json:"source,omitempty"`
	MinimumDaysFromToday *int        `json:"minimumDaysFromToday,omitempty"`
}

func sectionViews(doc model.Document) []SectionView {
	out := make([]SectionView, 0, len(doc.Sections))
	for _, section := range doc.Sections {
		view := SectionView{
			ID:     section.ID,
			Title:  section.Title,
			Active: section.Active,
			Fields: make([]FieldView, 0, len(section.Fields)),
		}
		for _, field := range section.Fields {
			view.Fields = append(view.Fields, fieldView(field))
		}
		out = append(out, view)
	}
	return out
}

func fieldView(field model.Field) FieldView {
	view := FieldView{
		ID:            field.ID,
		Type:          string(field.Type),
		Label:         field.Label,
		Name:          field.Name,
		Placeholder:   field.Placeholder,
		Required:      field.Required,
		Order:         field.Order,
		ColumnSpan:    field.ColumnSpan,
		Active:        field.Active,
		IsSystemField: field.IsSystemField,
		Critical:      field.Critical,
	}
	if opts, ok := field.StaticOptions(); ok {
		view.Options = append([]string(nil), opts...)
	}
	if src, ok := field.DynamicSource(); ok {
		view.Source = &SourceData{Table: src.Table, DisplayField: src.DisplayField, ValueField: src.ValueField}
	}
	if extra, ok := field.Extra.(model.DateExtra); ok {
		days := extra.MinimumDaysFromToday
		view.MinimumDaysFromToday = &days
	}
	return view
}
