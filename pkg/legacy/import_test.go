package legacy

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/naming"
)

func counter() model.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func importString(t *testing.T, raw string, opts ...Option) (model.Document, Report) {
	t.Helper()
	opts = append([]Option{WithIDGenerator(counter())}, opts...)
	return Import([]byte(raw), opts...)
}

func TestImport_FlatArrayParsesGridColumnSpan(t *testing.T) {
	doc, report := importString(t, `[
		{"tipo": "text", "label": "Nombre", "gridColumnSpan": "span 6"},
		{"tipo": "email", "label": "Correo Electrónico", "colspan": "col-span-4"}
	]`)

	if !report.Flat || report.Fallback {
		t.Fatalf("expected flat import without fallback, got %+v", report)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("expected one synthetic section, got %d", len(doc.Sections))
	}
	fields := doc.Sections[0].Fields
	if fields[0].ColumnSpan != 6 {
		t.Fatalf("expected span 6 from gridColumnSpan, got %d", fields[0].ColumnSpan)
	}
	if fields[1].ColumnSpan != 4 || fields[1].Name != "correo_electronico" {
		t.Fatalf("unexpected second field: %+v", fields[1])
	}
}

func TestImport_SpansDefaultAndClamp(t *testing.T) {
	doc, report := importString(t, `[
		{"id": "a", "tipo": "text", "label": "Uno"},
		{"id": "b", "tipo": "text", "label": "Dos", "dimension": 40},
		{"id": "c", "tipo": "text", "label": "Tres", "dimension": "ancho"},
		{"id": "d", "tipo": "text", "label": "Cuatro", "dimension": 0}
	]`)

	var spans []int
	for _, field := range doc.Sections[0].Fields {
		spans = append(spans, field.ColumnSpan)
	}
	if diff := cmp.Diff([]int{12, 12, 12, 1}, spans); diff != "" {
		t.Fatalf("spans mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "d"}, report.ClampedSpans); diff != "" {
		t.Fatalf("clamped mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "c"}, report.DefaultedSpans); diff != "" {
		t.Fatalf("defaulted mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_SpanFallsThroughUnparsableKeys(t *testing.T) {
	doc, report := importString(t, `[
		{"id": "a", "tipo": "text", "label": "Uno", "dimension": "", "gridColumnSpan": "span 6"},
		{"id": "b", "tipo": "text", "label": "Dos", "dimension": "ancho", "columnSpan": 4},
		{"id": "c", "tipo": "text", "label": "Tres", "dimension": "", "colspan": "?"}
	]`)

	var spans []int
	for _, field := range doc.Sections[0].Fields {
		spans = append(spans, field.ColumnSpan)
	}
	if diff := cmp.Diff([]int{6, 4, 12}, spans); diff != "" {
		t.Fatalf("spans mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c"}, report.DefaultedSpans); diff != "" {
		t.Fatalf("defaulted mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_PortableSchemaRoundTripShape(t *testing.T) {
	doc, report := importString(t, `{
		"secciones": [
			{
				"titulo": "Datos del puesto",
				"layout": "grid-cols-12",
				"campos": [
					{"tipo": "number", "label": "Vacantes", "nombre": "cantidad_vacantes", "dimension": 6, "order": 2, "required": true, "activo": true, "isSystemField": true, "options": []},
					{"tipo": "select", "label": "Modalidad", "nombre": "modalidad", "dimension": 6, "order": 1, "opciones": ["Presencial", "Remoto"], "options": ["Presencial", "Remoto"], "activo": true, "isSystemField": false},
					{"tipo": "date", "label": "Inicio", "nombre": "inicio", "dimension": 12, "order": 3, "diasMinimos": 5, "activo": false}
				]
			}
		]
	}`)

	if report.Format != FormatJSON || report.Flat {
		t.Fatalf("unexpected report: %+v", report)
	}
	fields := doc.Sections[0].Fields
	var got []string
	for _, field := range fields {
		got = append(got, fmt.Sprintf("%s:%d:%d", field.Name, field.Order, field.ColumnSpan))
	}
	want := []string{"modalidad:1:6", "cantidad_vacantes:2:6", "inicio:3:12"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if !fields[1].IsSystemField || !fields[1].Required {
		t.Fatalf("expected system field to survive import: %+v", fields[1])
	}
	if opts, ok := fields[0].StaticOptions(); !ok || len(opts) != 2 {
		t.Fatalf("expected static options, got %+v", fields[0].Options)
	}
	if extra, ok := fields[2].Extra.(model.DateExtra); !ok || extra.MinimumDaysFromToday != 5 || fields[2].Active {
		t.Fatalf("unexpected date field: %+v", fields[2])
	}
}

func TestImport_DynamicSource(t *testing.T) {
	doc, _ := importString(t, `[{
		"tipo": "foreignKey", "label": "Sucursal", "nombre": "sucursal",
		"dataSource": "database", "databaseTable": "sucursales",
		"databaseField": "nombre", "databaseValueField": "id"
	}]`)
	src, ok := doc.Sections[0].Fields[0].DynamicSource()
	if !ok {
		t.Fatalf("expected dynamic source")
	}
	if diff := cmp.Diff(model.DynamicSource{Table: "sucursales", DisplayField: "nombre", ValueField: "id"}, src); diff != "" {
		t.Fatalf("source mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_CommaSeparatedOptions(t *testing.T) {
	doc, _ := importString(t, `[{"tipo": "radio", "label": "Turno", "opciones": "Mañana, Tarde ,, Noche"}]`)
	opts, _ := doc.Sections[0].Fields[0].StaticOptions()
	if diff := cmp.Diff([]string{"Mañana", "Tarde", "Noche"}, opts); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_RoleFieldNormalized(t *testing.T) {
	doc, report := importString(t, `[
		{"id": "r", "tipo": "select", "label": "Cargo a cubrir", "opciones": ["Analista", "Jefe"]},
		{"id": "x", "tipo": "text", "label": "Cargo"}
	]`)
	role := doc.Sections[0].Fields[0]
	if role.Name != "cargo" || !role.IsSystemField || !role.Critical || !role.Required {
		t.Fatalf("unexpected role field: %+v", role)
	}
	if _, ok := role.DynamicSource(); !ok {
		t.Fatalf("expected role to be bound to a dynamic source")
	}
	if diff := cmp.Diff([]string{"Analista", "Jefe"}, role.LegacyOptions); diff != "" {
		t.Fatalf("legacy options mismatch (-want +got):\n%s", diff)
	}
	if second := doc.Sections[0].Fields[1]; second.Name != "cargo_1" {
		t.Fatalf("expected second match to be suffixed, got %q", second.Name)
	}
	if diff := cmp.Diff([]string{"r", "x"}, report.SystemFields); diff != "" {
		t.Fatalf("system fields mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_YAMLFallback(t *testing.T) {
	doc, report := importString(t, `
secciones:
  - titulo: Contacto
    campos:
      - tipo: email
        label: Correo
        gridColumnSpan: span 8
`)
	if report.Format != FormatYAML {
		t.Fatalf("expected yaml format, got %q", report.Format)
	}
	if doc.Sections[0].Title != "Contacto" || doc.Sections[0].Fields[0].ColumnSpan != 8 {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestImport_FallsBackToStarter(t *testing.T) {
	for _, raw := range []string{"", "   ", "[]", "null", `{"otro": 1}`, "{not json"} {
		doc, report := importString(t, raw)
		if !report.Fallback {
			t.Fatalf("%q: expected fallback, got %+v", raw, report)
		}
		if len(doc.Sections) != 1 || doc.Sections[0].Title != DefaultStarterTitle {
			t.Fatalf("%q: unexpected starter: %+v", raw, doc)
		}
		want := []string{"cargo", "cantidad_vacantes", "fecha_ingreso"}
		var got []string
		for _, field := range doc.Sections[0].Fields {
			if !field.IsSystemField {
				t.Fatalf("%q: starter field %q is not a system field", raw, field.Name)
			}
			got = append(got, field.Name)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%q: starter fields mismatch (-want +got):\n%s", raw, diff)
		}
	}
}

func TestImport_CustomCatalogAndDuplicateIDs(t *testing.T) {
	catalog := naming.NewCatalog(naming.SystemField{Name: "rut", Label: "RUT", Type: model.FieldTypeText})
	doc, _ := importString(t, `[
		{"id": "same", "tipo": "text", "label": "RUT", "nombre": "rut"},
		{"id": "same", "tipo": "text", "label": "Otro"}
	]`, WithCatalog(catalog))

	fields := doc.Sections[0].Fields
	if fields[0].ID != "same" || fields[1].ID == "same" {
		t.Fatalf("expected duplicate id to be replaced, got %q and %q", fields[0].ID, fields[1].ID)
	}
	if !fields[0].IsSystemField || fields[1].IsSystemField {
		t.Fatalf("unexpected classification: %+v", fields)
	}
}

func TestImport_SanitizesLabels(t *testing.T) {
	doc, _ := importString(t, `[{"tipo": "text", "label": "<b>Nombre</b><script>x()</script>"}]`)
	if got := doc.Sections[0].Fields[0].Label; got != "Nombre" {
		t.Fatalf("expected markup to be stripped, got %q", got)
	}
}
