package model

// FieldPatch describes a partial update. Nil members are left untouched.
type FieldPatch struct {
	Type        *FieldType
	Label       *string
	Name        *string
	Placeholder *string
	Required    *bool
	// Order is the 1-based order value the field should take. The field moves
	// into the slot of whichever field holds that value now, so inactive
	// fields between active ones do not shift the target.
	Order      *int
	ColumnSpan *int
	Active     *bool
	Options    OptionsSource
	Extra      FieldExtra
}

// Ptr returns a pointer to v, handy when building patches.
func Ptr[T any](v T) *T {
	return &v
}

// UpdateField applies patch to the field with fieldID. For system fields the
// type, name, label, options, extra configuration and active flag are
// protected and silently keep their values; required is protected only for
// critical fields. Spans are clamped and an order change moves the field.
func (d *Document) UpdateField(fieldID string, patch FieldPatch) bool {
	si, fi, ok := d.Locate(fieldID)
	if !ok {
		return false
	}
	field := &d.Sections[si].Fields[fi]

	if !field.IsSystemField {
		if patch.Type != nil && patch.Type.Valid() {
			field.Type = *patch.Type
		}
		if patch.Label != nil {
			field.Label = *patch.Label
		}
		if patch.Name != nil {
			field.Name = *patch.Name
		}
		if patch.Options != nil {
			field.Options = cloneOptions(patch.Options)
		}
		if patch.Extra != nil {
			field.Extra = patch.Extra
		}
		if patch.Active != nil {
			field.Active = *patch.Active
		}
		field.normalizeVariant()
	}
	if patch.Required != nil && !field.Critical {
		field.Required = *patch.Required
	}
	if patch.Placeholder != nil {
		field.Placeholder = *patch.Placeholder
	}
	if patch.ColumnSpan != nil {
		field.ColumnSpan = ClampSpan(*patch.ColumnSpan)
	}

	renormalize(d.Sections[si].Fields)
	if patch.Order != nil {
		d.moveToOrder(si, fi, *patch.Order)
	}
	return true
}

func (d *Document) moveToOrder(si, fi, order int) {
	fields := d.Sections[si].Fields
	order = max(1, min(order, len(fields)))
	for to := range fields {
		if fields[to].Order == order {
			d.MoveField(si, fi, to)
			return
		}
	}
}

// normalizeVariant drops attributes that do not belong to the field's type.
func (f *Field) normalizeVariant() {
	switch src := f.Options.(type) {
	case StaticOptions:
		if !f.Type.AcceptsStaticOptions() {
			f.Options = nil
		}
	case DynamicSource:
		if !f.Type.AcceptsDynamicSource() || src.Empty() {
			f.Options = nil
		}
	}
	if f.Options == nil && f.Type.AcceptsStaticOptions() {
		f.Options = StaticOptions{}
	}
	if f.Extra != nil && !f.Extra.appliesTo(f.Type) {
		f.Extra = nil
	}
}

func cloneOptions(src OptionsSource) OptionsSource {
	if opts, ok := src.(StaticOptions); ok {
		return append(StaticOptions{}, opts...)
	}
	return src
}
