package model

import "strings"

// GridColumns is the fixed width of every section grid.
const GridColumns = 12

// SectionLayout names the only layout a section supports.
const SectionLayout = "12-column"

// FieldType enumerates the input kinds a template can hold.
type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeNumber     FieldType = "number"
	FieldTypeEmail      FieldType = "email"
	FieldTypeSelect     FieldType = "select"
	FieldTypeCheckbox   FieldType = "checkbox"
	FieldTypeRadio      FieldType = "radio"
	FieldTypeDate       FieldType = "date"
	FieldTypeTextarea   FieldType = "textarea"
	FieldTypeTitle      FieldType = "title"
	FieldTypeForeignKey FieldType = "foreignKey"
	FieldTypePercent    FieldType = "percent"
)

var fieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeEmail,
	FieldTypeSelect,
	FieldTypeCheckbox,
	FieldTypeRadio,
	FieldTypeDate,
	FieldTypeTextarea,
	FieldTypeTitle,
	FieldTypeForeignKey,
	FieldTypePercent,
}

// FieldTypes returns every supported field type in declaration order.
func FieldTypes() []FieldType {
	return append([]FieldType(nil), fieldTypes...)
}

// ParseFieldType matches raw case-insensitively against the known types.
func ParseFieldType(raw string) (FieldType, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, candidate := range fieldTypes {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, true
		}
	}
	return "", false
}

// Valid reports whether t is one of the declared field types.
func (t FieldType) Valid() bool {
	for _, candidate := range fieldTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// AcceptsStaticOptions reports whether a static option list applies to t.
func (t FieldType) AcceptsStaticOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio
}

// AcceptsDynamicSource reports whether t can be bound to a lookup table.
func (t FieldType) AcceptsDynamicSource() bool {
	return t == FieldTypeSelect || t == FieldTypeForeignKey
}

// OptionsSource is the closed set of option providers a field can carry:
// StaticOptions or DynamicSource.
type OptionsSource interface {
	optionsSource()
}

// StaticOptions is an inline option list.
type StaticOptions []string

func (StaticOptions) optionsSource() {}

// DynamicSource binds a field's options to an external lookup table.
type DynamicSource struct {
	Table        string
	DisplayField string
	ValueField   string
}

func (DynamicSource) optionsSource() {}

// Empty reports whether the source lacks a table binding.
func (d DynamicSource) Empty() bool {
	return strings.TrimSpace(d.Table) == ""
}

// FieldExtra carries configuration that only applies to one field type.
type FieldExtra interface {
	fieldExtra()
	appliesTo(FieldType) bool
}

// DateExtra restricts date inputs to a minimum distance from today.
type DateExtra struct {
	MinimumDaysFromToday int
}

func (DateExtra) fieldExtra() {}

func (DateExtra) appliesTo(t FieldType) bool { return t == FieldTypeDate }

// Field is a single input definition inside a section.
type Field struct {
	ID          string
	Type        FieldType
	Label       string
	Name        string
	Placeholder string
	Required    bool
	Order       int
	ColumnSpan  int
	Options     OptionsSource
	// LegacyOptions keeps static values that were replaced by a dynamic source
	// so older consumers still see them.
	LegacyOptions []string
	Active        bool
	IsSystemField bool
	// Critical system fields keep Required pinned to true.
	Critical bool
	Extra    FieldExtra
}

// StaticOptions returns the inline option list, if any.
func (f Field) StaticOptions() ([]string, bool) {
	opts, ok := f.Options.(StaticOptions)
	if !ok {
		return nil, false
	}
	return []string(opts), true
}

// DynamicSource returns the lookup binding, if any.
func (f Field) DynamicSource() (DynamicSource, bool) {
	src, ok := f.Options.(DynamicSource)
	if !ok || src.Empty() {
		return DynamicSource{}, false
	}
	return src, true
}

// Section groups fields rendered together on one grid.
type Section struct {
	ID     string
	Title  string
	Fields []Field
	Active bool
}

// Layout reports the fixed section layout.
func (Section) Layout() string {
	return SectionLayout
}

// Document is the form template being edited.
type Document struct {
	Sections []Section
}
