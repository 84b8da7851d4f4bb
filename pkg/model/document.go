package model

// ClampSpan forces span into [1, GridColumns].
func ClampSpan(span int) int {
	if span < 1 {
		return 1
	}
	if span > GridColumns {
		return GridColumns
	}
	return span
}

// CreateSection returns an empty, active section with a fresh identifier. The
// document is not touched.
func CreateSection(title string) Section {
	return CreateSectionWithID(NewID, title)
}

// CreateSectionWithID is CreateSection with an explicit identifier source.
func CreateSectionWithID(gen IDGenerator, title string) Section {
	if gen == nil {
		gen = NewID
	}
	return Section{
		ID:     gen(),
		Title:  title,
		Active: true,
	}
}

// CreateField returns a default-valued field of the given type with a fresh
// identifier. Unknown types fall back to text.
func CreateField(fieldType FieldType, label string) Field {
	return CreateFieldWithID(NewID, fieldType, label)
}

// CreateFieldWithID is CreateField with an explicit identifier source.
func CreateFieldWithID(gen IDGenerator, fieldType FieldType, label string) Field {
	if gen == nil {
		gen = NewID
	}
	if !fieldType.Valid() {
		fieldType = FieldTypeText
	}
	field := Field{
		ID:         gen(),
		Type:       fieldType,
		Label:      label,
		ColumnSpan: GridColumns,
		Active:     true,
	}
	if fieldType.AcceptsStaticOptions() {
		field.Options = StaticOptions{}
	}
	return field
}

// SectionIndex returns the position of the section with id, or -1.
func (d *Document) SectionIndex(id string) int {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

// Locate returns the section and field positions of the field with id.
func (d *Document) Locate(fieldID string) (sectionIdx, fieldIdx int, ok bool) {
	for si := range d.Sections {
		for fi := range d.Sections[si].Fields {
			if d.Sections[si].Fields[fi].ID == fieldID {
				return si, fi, true
			}
		}
	}
	return -1, -1, false
}

// Field returns a copy of the field with id.
func (d *Document) Field(fieldID string) (Field, bool) {
	si, fi, ok := d.Locate(fieldID)
	if !ok {
		return Field{}, false
	}
	return d.Sections[si].Fields[fi].Clone(), true
}

// FieldCount returns the number of fields across all sections.
func (d *Document) FieldCount() int {
	total := 0
	for _, section := range d.Sections {
		total += len(section.Fields)
	}
	return total
}

// AddSection appends section to the document.
func (d *Document) AddSection(section Section) {
	section = section.Clone()
	for i := range section.Fields {
		section.Fields[i].ColumnSpan = ClampSpan(section.Fields[i].ColumnSpan)
	}
	renormalize(section.Fields)
	d.Sections = append(d.Sections, section)
}

// AddField appends field to the section with sectionID. The field takes the
// next order position in that section.
func (d *Document) AddField(sectionID string, field Field) bool {
	si := d.SectionIndex(sectionID)
	if si < 0 {
		return false
	}
	field = field.Clone()
	field.ColumnSpan = ClampSpan(field.ColumnSpan)
	field.normalizeVariant()
	d.Sections[si].Fields = append(d.Sections[si].Fields, field)
	renormalize(d.Sections[si].Fields)
	return true
}

// RemoveSection deletes the section with sectionID.
func (d *Document) RemoveSection(sectionID string) bool {
	si := d.SectionIndex(sectionID)
	if si < 0 {
		return false
	}
	d.Sections = append(d.Sections[:si], d.Sections[si+1:]...)
	return true
}

// RemoveField deletes a field from its section and renormalises the
// remaining siblings.
func (d *Document) RemoveField(sectionID, fieldID string) bool {
	si := d.SectionIndex(sectionID)
	if si < 0 {
		return false
	}
	fields := d.Sections[si].Fields
	for fi := range fields {
		if fields[fi].ID != fieldID {
			continue
		}
		d.Sections[si].Fields = append(fields[:fi], fields[fi+1:]...)
		renormalize(d.Sections[si].Fields)
		return true
	}
	return false
}

// SetSectionTitle renames a section.
func (d *Document) SetSectionTitle(sectionID, title string) bool {
	si := d.SectionIndex(sectionID)
	if si < 0 {
		return false
	}
	d.Sections[si].Title = title
	return true
}

// SetSectionActive toggles the soft-delete flag of a section.
func (d *Document) SetSectionActive(sectionID string, active bool) bool {
	si := d.SectionIndex(sectionID)
	if si < 0 {
		return false
	}
	d.Sections[si].Active = active
	return true
}

// MoveSection relocates the section at from so it ends up at index to.
// Indices are clamped; moving a section onto itself is a no-op.
func (d *Document) MoveSection(from, to int) bool {
	if from < 0 || from >= len(d.Sections) {
		return false
	}
	to = clampIndex(to, len(d.Sections)-1)
	if from == to {
		return false
	}
	moved := d.Sections[from]
	rest := append(d.Sections[:from:from], d.Sections[from+1:]...)
	d.Sections = insertAt(rest, to, moved)
	return true
}

// MoveField relocates a field inside one section so it ends up at index to.
func (d *Document) MoveField(sectionIdx, from, to int) bool {
	if sectionIdx < 0 || sectionIdx >= len(d.Sections) {
		return false
	}
	fields := d.Sections[sectionIdx].Fields
	if from < 0 || from >= len(fields) {
		return false
	}
	to = clampIndex(to, len(fields)-1)
	if from == to {
		return false
	}
	moved := fields[from]
	rest := append(fields[:from:from], fields[from+1:]...)
	d.Sections[sectionIdx].Fields = insertAt(rest, to, moved)
	renormalize(d.Sections[sectionIdx].Fields)
	return true
}

// TransferField removes the field at (fromSection, fieldIdx) and inserts it
// into toSection at index. A negative or out of range index appends. Both
// sections are renormalised. The field keeps its identifier.
func (d *Document) TransferField(fromSection, fieldIdx, toSection, index int) bool {
	if fromSection < 0 || fromSection >= len(d.Sections) || toSection < 0 || toSection >= len(d.Sections) {
		return false
	}
	if fromSection == toSection {
		if index < 0 || index >= len(d.Sections[toSection].Fields) {
			index = len(d.Sections[toSection].Fields) - 1
		}
		return d.MoveField(fromSection, fieldIdx, index)
	}
	source := d.Sections[fromSection].Fields
	if fieldIdx < 0 || fieldIdx >= len(source) {
		return false
	}
	moved := source[fieldIdx]
	d.Sections[fromSection].Fields = append(source[:fieldIdx:fieldIdx], source[fieldIdx+1:]...)
	renormalize(d.Sections[fromSection].Fields)

	target := d.Sections[toSection].Fields
	if index < 0 || index > len(target) {
		index = len(target)
	}
	d.Sections[toSection].Fields = insertAt(target, index, moved)
	renormalize(d.Sections[toSection].Fields)
	return true
}

// Renormalize rewrites the order of every section's fields and clamps spans.
func (d *Document) Renormalize() {
	for si := range d.Sections {
		for fi := range d.Sections[si].Fields {
			d.Sections[si].Fields[fi].ColumnSpan = ClampSpan(d.Sections[si].Fields[fi].ColumnSpan)
		}
		renormalize(d.Sections[si].Fields)
	}
}

// renormalize numbers active fields 1..k in position order, then inactive
// fields k+1..n, so the active sequence is always dense.
func renormalize(fields []Field) {
	next := 1
	for i := range fields {
		if fields[i].Active {
			fields[i].Order = next
			next++
		}
	}
	for i := range fields {
		if !fields[i].Active {
			fields[i].Order = next
			next++
		}
	}
}

func clampIndex(index, max int) int {
	if index < 0 {
		return 0
	}
	if index > max {
		return max
	}
	return index
}

func insertAt[T any](items []T, index int, item T) []T {
	if index >= len(items) {
		return append(items, item)
	}
	items = append(items, item)
	copy(items[index+1:], items[index:])
	items[index] = item
	return items
}
