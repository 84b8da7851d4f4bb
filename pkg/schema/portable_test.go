package schema_test

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/legacy"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func sampleDocument() model.Document {
	var doc model.Document
	doc.AddSection(model.Section{
		ID:     "s1",
		Title:  "Datos del puesto",
		Active: true,
		Fields: []model.Field{
			{
				ID: "f1", Type: model.FieldTypeSelect, Label: "Cargo", Name: "cargo",
				Required: true, ColumnSpan: 12, Active: true, IsSystemField: true, Critical: true,
				Options:       model.DynamicSource{Table: "cargos", DisplayField: "nombre", ValueField: "id"},
				LegacyOptions: []string{"Analista"},
			},
			{
				ID: "f2", Type: model.FieldTypeNumber, Label: "Cantidad de vacantes", Name: "cantidad_vacantes",
				Required: true, ColumnSpan: 6, Active: true, IsSystemField: true,
			},
			{
				ID: "f3", Type: model.FieldTypeDate, Label: "Fecha de ingreso", Placeholder: "dd/mm/aaaa",
				ColumnSpan: 6, Active: true, Extra: model.DateExtra{MinimumDaysFromToday: 7},
			},
			{
				ID: "f4", Type: model.FieldTypeText, Label: "Observaciones", ColumnSpan: 12,
			},
			{
				ID: "f5", Type: model.FieldTypeRadio, Label: "Turno", ColumnSpan: 20, Active: true,
				Options: model.StaticOptions{"Mañana", "Tarde"},
			},
		},
	})
	doc.AddSection(model.Section{
		ID:     "s2",
		Title:  "Oculta",
		Fields: []model.Field{{ID: "f6", Type: model.FieldTypeText, Label: "Nada", ColumnSpan: 12, Active: true}},
	})
	return doc
}

func TestToSchemaGolden(t *testing.T) {
	got := schema.ToSchema(sampleDocument())
	path := filepath.Join("testdata", "portable.golden.json")

	testsupport.WriteGolden(t, path, got)
	want := testsupport.MustLoadSchema(t, path)
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestToSchemaEmitsRequiredKeys(t *testing.T) {
	data, err := schema.Marshal(schema.ToSchema(sampleDocument()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var payload struct {
		Secciones []struct {
			Campos []map[string]any `json:"campos"`
		} `json:"secciones"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	required := []string{
		"tipo", "label", "nombre", "colspan", "gridColumnSpan", "required",
		"dimension", "order", "placeholder", "options", "activo", "isSystemField",
	}
	for _, campo := range payload.Secciones[0].Campos {
		for _, key := range required {
			if _, ok := campo[key]; !ok {
				t.Fatalf("field %v is missing key %q", campo["nombre"], key)
			}
		}
		_, hasOpciones := campo["opciones"]
		isStatic := campo["tipo"] == "radio" || (campo["tipo"] == "select" && campo["dataSource"] == nil)
		if hasOpciones != isStatic {
			t.Fatalf("field %v: opciones presence %v, want %v", campo["nombre"], hasOpciones, isStatic)
		}
	}
}

func TestToSchemaResolvesDuplicateNames(t *testing.T) {
	var doc model.Document
	doc.AddSection(model.Section{ID: "a", Title: "A", Active: true, Fields: []model.Field{
		{ID: "1", Type: model.FieldTypeText, Label: "Cargo", ColumnSpan: 12, Active: true},
	}})
	doc.AddSection(model.Section{ID: "b", Title: "B", Active: true, Fields: []model.Field{
		{ID: "2", Type: model.FieldTypeText, Label: "Cargo", ColumnSpan: 12, Active: true},
	}})

	got := schema.ToSchema(doc)
	if got.Secciones[0].Campos[0].Nombre != "cargo" || got.Secciones[1].Campos[0].Nombre != "cargo_1" {
		t.Fatalf("unexpected names: %+v", got)
	}
	if doc.Sections[0].Fields[0].Name != "" {
		t.Fatalf("ToSchema must not mutate its input")
	}
}

func TestSchemaRoundTripsThroughImport(t *testing.T) {
	first := schema.ToSchema(sampleDocument())
	data, err := schema.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	doc, report := legacy.Import(data, legacy.WithIDGenerator(testsupport.SequentialIDs("rt")))
	if report.Fallback {
		t.Fatalf("unexpected fallback: %s", report.FallbackReason)
	}
	second := schema.ToSchema(doc)
	if diff := testsupport.CompareGolden(first, second); diff != "" {
		t.Fatalf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := schema.Parse([]byte("{")); err == nil || !strings.HasPrefix(err.Error(), "schema:") {
		t.Fatalf("expected prefixed parse error, got %v", err)
	}
}
