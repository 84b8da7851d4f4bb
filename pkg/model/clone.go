package model

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d.Sections == nil {
		return Document{}
	}
	out := Document{Sections: make([]Section, len(d.Sections))}
	for i, section := range d.Sections {
		out.Sections[i] = section.Clone()
	}
	return out
}

// Clone returns a deep copy of the section and its fields.
func (s Section) Clone() Section {
	out := s
	if s.Fields != nil {
		out.Fields = make([]Field, len(s.Fields))
		for i, field := range s.Fields {
			out.Fields[i] = field.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	if opts, ok := f.Options.(StaticOptions); ok && opts != nil {
		out.Options = append(StaticOptions{}, opts...)
	}
	if f.LegacyOptions != nil {
		out.LegacyOptions = append([]string{}, f.LegacyOptions...)
	}
	return out
}
