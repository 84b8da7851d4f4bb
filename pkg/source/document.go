package source

import "errors"

// Document is a raw template definition together with its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument wraps raw. Empty payloads are allowed: the importer turns them
// into the starter template.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("source: source is required")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}
