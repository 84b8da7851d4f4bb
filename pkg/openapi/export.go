// Package openapi describes the submission payload of a template as an
// OpenAPI 3 document, so request-submission clients can validate what they
// send against the form the template defines.
package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

const (
	defaultPath        = "/solicitudes"
	defaultVersion     = "1.0.0"
	defaultOperationID = "crearSolicitud"
	defaultSchemaName  = "Solicitud"
)

// Extension keys attached to generated property schemas.
const (
	ExtDataSource      = "x-data-source"
	ExtColumnSpan      = "x-column-span"
	ExtSection         = "x-section"
	ExtMinimumDaysFrom = "x-minimum-days-from-today"
	ExtSystemField     = "x-system-field"
)

// Option customises the generated document.
type Option func(*exporter)

// WithPath changes the submission path.
func WithPath(path string) Option {
	return func(e *exporter) {
		if strings.HasPrefix(path, "/") {
			e.path = path
		}
	}
}

// WithVersion sets info.version.
func WithVersion(version string) Option {
	return func(e *exporter) {
		if version != "" {
			e.version = version
		}
	}
}

// WithOperationID overrides the operationId of the submission operation.
func WithOperationID(id string) Option {
	return func(e *exporter) {
		if id != "" {
			e.operationID = id
		}
	}
}

// WithSchemaName sets the component name of the payload schema.
func WithSchemaName(name string) Option {
	return func(e *exporter) {
		if name != "" {
			e.schemaName = name
		}
	}
}

type exporter struct {
	path        string
	version     string
	operationID string
	schemaName  string
}

// SubmissionDocument builds and validates an OpenAPI document with a single
// POST operation whose JSON body carries one property per input field of s.
func SubmissionDocument(ctx context.Context, title string, s schema.PortableSchema, opts ...Option) (*openapi3.T, error) {
	e := &exporter{
		path:        defaultPath,
		version:     defaultVersion,
		operationID: defaultOperationID,
		schemaName:  defaultSchemaName,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("openapi: title is required")
	}

	payload := PayloadSchema(s)
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   title,
			Version: e.version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				e.schemaName: openapi3.NewSchemaRef("", payload),
			},
		},
	}

	ref := openapi3.NewSchemaRef("#/components/schemas/"+e.schemaName, payload)
	body := openapi3.NewRequestBody().
		WithRequired(true).
		WithDescription(title).
		WithJSONSchemaRef(ref)

	op := openapi3.NewOperation()
	op.OperationID = e.operationID
	op.Summary = title
	op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(201, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Solicitud creada")}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Datos inválidos")}),
	)
	doc.AddOperation(e.path, "POST", op)

	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return doc, nil
}

// PayloadSchema maps the fields of s into an object schema keyed by nombre.
// Title fields carry no value and are skipped.
func PayloadSchema(s schema.PortableSchema) *openapi3.Schema {
	object := openapi3.NewObjectSchema()
	for _, seccion := range s.Secciones {
		for _, campo := range seccion.Campos {
			if campo.Tipo == string(model.FieldTypeTitle) || campo.Nombre == "" {
				continue
			}
			prop := propertySchema(campo)
			prop.Extensions[ExtSection] = seccion.Titulo
			object.WithProperty(campo.Nombre, prop)
			if campo.Required {
				object.Required = append(object.Required, campo.Nombre)
			}
		}
	}
	return object
}

func propertySchema(campo schema.Campo) *openapi3.Schema {
	var prop *openapi3.Schema
	switch model.FieldType(campo.Tipo) {
	case model.FieldTypeNumber:
		prop = openapi3.NewFloat64Schema()
	case model.FieldTypePercent:
		prop = openapi3.NewFloat64Schema().WithMin(0).WithMax(100)
	case model.FieldTypeCheckbox:
		prop = openapi3.NewBoolSchema()
	case model.FieldTypeDate:
		prop = openapi3.NewStringSchema().WithFormat("date")
	case model.FieldTypeEmail:
		prop = openapi3.NewStringSchema().WithFormat("email")
	default:
		prop = openapi3.NewStringSchema()
	}

	prop.Title = campo.Label
	prop.Description = campo.Placeholder
	prop.Extensions = map[string]any{
		ExtColumnSpan: campo.Dimension,
	}
	if campo.IsSystemField {
		prop.Extensions[ExtSystemField] = true
	}
	if campo.DiasMinimos != nil {
		prop.Extensions[ExtMinimumDaysFrom] = *campo.DiasMinimos
	}

	switch {
	case campo.IsDynamic():
		prop.Extensions[ExtDataSource] = map[string]any{
			"table":        campo.DatabaseTable,
			"displayField": campo.DatabaseField,
			"valueField":   campo.DatabaseValueField,
		}
	case len(campo.Opciones) > 0:
		values := make([]any, 0, len(campo.Opciones))
		for _, opt := range campo.Opciones {
			values = append(values, opt)
		}
		prop.WithEnum(values...)
	}
	return prop
}

// MarshalJSON renders doc as indented JSON.
func MarshalJSON(doc *openapi3.T) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal json: %w", err)
	}
	return data, nil
}

// MarshalYAML renders doc as YAML.
func MarshalYAML(doc *openapi3.T) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal yaml: %w", err)
	}
	return data, nil
}

// Load parses a previously exported document.
func Load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return doc, nil
}
