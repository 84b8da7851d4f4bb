// Package formbuilder is the convenience entry point: import legacy
// definitions, convert them to the portable schema, render previews and
// export submission schemas without wiring the sub-packages by hand.
package formbuilder

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"

	"github.com/getkin/kin-openapi/openapi3"

	internalLoader "github.com/goliatone/go-formbuilder/internal/loader"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/legacy"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/source"
)

// Document is the in-memory form definition.
type Document = model.Document

// Schema is the persisted portable schema.
type Schema = schema.PortableSchema

// Report describes what an import had to repair.
type Report = legacy.Report

// Editor aliases builder.Editor.
type Editor = builder.Editor

// Template aliases builder.Template.
type Template = builder.Template

// NewLoader constructs a source loader while keeping the concrete type
// hidden from consumers.
func NewLoader(options ...source.LoaderOption) source.Loader {
	return internalLoader.New(source.NewLoaderOptions(options...))
}

// NewEditor returns an editor holding the starter template.
func NewEditor(options ...builder.Option) *Editor {
	return builder.New(options...)
}

// Import turns raw JSON or YAML into a Document. It never fails; unusable
// input yields the starter template and the report says so.
func Import(raw []byte, options ...legacy.Option) (Document, Report) {
	return legacy.Import(raw, options...)
}

// ToSchema serializes doc into the portable schema.
func ToSchema(doc Document) Schema {
	return schema.ToSchema(doc)
}

// Convert imports raw and serializes the result.
func Convert(raw []byte, options ...legacy.Option) (Schema, Report) {
	doc, report := legacy.Import(raw, options...)
	return schema.ToSchema(doc), report
}

// ConvertSource loads src with loader and converts it.
func ConvertSource(ctx context.Context, loader source.Loader, src source.Source, options ...legacy.Option) (Schema, Report, error) {
	if loader == nil {
		loader = NewLoader()
	}
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return Schema{}, Report{}, err
	}
	out, report := Convert(doc.Raw(), options...)
	return out, report, nil
}

// RenderHTML renders s with the built-in preview templates.
func RenderHTML(title string, s Schema, options ...preview.Option) ([]byte, error) {
	renderer, err := preview.New(options...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := renderer.Render(&buf, title, s); err != nil {
		return nil, fmt.Errorf("formbuilder: render: %w", err)
	}
	return buf.Bytes(), nil
}

// SubmissionDocument describes the payload a filled form submits.
func SubmissionDocument(ctx context.Context, title string, s Schema, options ...openapi.Option) (*openapi3.T, error) {
	return openapi.SubmissionDocument(ctx, title, s, options...)
}

// EmbeddedTemplates exposes the built-in preview templates so callers can
// reuse or extend them without importing the preview package directly.
func EmbeddedTemplates() fs.FS {
	return preview.TemplatesFS()
}
