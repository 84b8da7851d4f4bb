package builder

import (
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/naming"
)

// Option customises an Editor.
type Option func(*Editor)

// WithCatalog overrides the reserved field catalog used on import.
func WithCatalog(catalog naming.Catalog) Option {
	return func(e *Editor) {
		e.catalog = catalog
	}
}

// WithPersister wires the collaborator Save delegates to.
func WithPersister(p Persister) Option {
	return func(e *Editor) {
		e.persister = p
	}
}

// WithIDGenerator overrides the identifier source for new sections and
// fields.
func WithIDGenerator(gen model.IDGenerator) Option {
	return func(e *Editor) {
		if gen != nil {
			e.gen = gen
		}
	}
}

// WithColumns sets the grid width used by resize sessions.
func WithColumns(columns int) Option {
	return func(e *Editor) {
		if columns > 0 {
			e.columns = columns
		}
	}
}

// WithTitle sets the initial template title.
func WithTitle(title string) Option {
	return func(e *Editor) {
		e.title = title
	}
}

// WithStarterTitle names the section synthesized when nothing usable was
// imported.
func WithStarterTitle(title string) Option {
	return func(e *Editor) {
		e.starter = title
	}
}
