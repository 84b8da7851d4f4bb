package naming

import (
	"strconv"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// fallbackName is used when neither the name nor the label yield a slug.
const fallbackName = "campo"

// ResolveDuplicateNames returns a copy of doc where every field carries a
// non-empty name that is unique across the whole document. Empty names are
// derived from the label; collisions get _1, _2, ... suffixes.
//
// Fields are visited in document order, sections first, so the earliest field
// keeps the bare name whether or not it is a system field. Running it on an
// already unique document returns an identical copy.
func ResolveDuplicateNames(doc model.Document) model.Document {
	out := doc.Clone()
	used := make(map[string]struct{}, out.FieldCount())

	for si := range out.Sections {
		fields := out.Sections[si].Fields
		for fi := range fields {
			fields[fi].Name = claim(used, baseName(fields[fi]))
		}
	}
	return out
}

// HasUniqueNames reports whether every field name in doc is non-empty and
// distinct.
func HasUniqueNames(doc model.Document) bool {
	seen := make(map[string]struct{}, doc.FieldCount())
	for _, section := range doc.Sections {
		for _, field := range section.Fields {
			if field.Name == "" {
				return false
			}
			if _, dup := seen[field.Name]; dup {
				return false
			}
			seen[field.Name] = struct{}{}
		}
	}
	return true
}

func baseName(field model.Field) string {
	if field.Name != "" {
		return field.Name
	}
	if name := GenerateName(field.Label); name != "" {
		return name
	}
	return fallbackName
}

func claim(used map[string]struct{}, base string) string {
	candidate := base
	for i := 1; ; i++ {
		if _, taken := used[candidate]; !taken {
			break
		}
		candidate = base + "_" + strconv.Itoa(i)
	}
	used[candidate] = struct{}{}
	return candidate
}
