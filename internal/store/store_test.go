package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbuilder/components/lookups"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func openStore(t *testing.T) *Store {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), dsn,
		WithClock(clock.Now),
		WithIDGenerator(testsupport.SequentialIDs("tpl")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleTemplate(title string) builder.Template {
	return builder.Template{
		Title: title,
		Schema: schema.PortableSchema{Secciones: []schema.Seccion{{
			Titulo: "Información general",
			Layout: schema.GridLayout,
			Campos: []schema.Campo{{
				Tipo: "text", Label: "Nombre", Nombre: "nombre", Dimension: 6, Order: 1,
				Colspan: "col-span-6", GridColumnSpan: "span 6", Activo: true, Options: []string{},
			}},
		}}},
	}
}

func TestSaveTemplateAssignsIDAndTimestamps(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	saved, err := s.SaveTemplate(ctx, sampleTemplate("Solicitud"))
	require.NoError(t, err)
	assert.Equal(t, "tpl-1", saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)

	got, err := s.GetTemplate(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Solicitud", got.Title)
	assert.Equal(t, saved.Schema, got.Schema)
	assert.True(t, got.CreatedAt.Equal(saved.CreatedAt))
}

func TestSaveTemplateUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	first, err := s.SaveTemplate(ctx, sampleTemplate("Borrador"))
	require.NoError(t, err)

	first.Title = "Definitiva"
	second, err := s.SaveTemplate(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	all, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Definitiva", all[0].Title)
}

func TestListTemplatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	empty, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = s.SaveTemplate(ctx, sampleTemplate("Primera"))
	require.NoError(t, err)
	_, err = s.SaveTemplate(ctx, sampleTemplate("Segunda"))
	require.NoError(t, err)

	all, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Segunda", all[0].Title)
	assert.Equal(t, "Primera", all[1].Title)
}

func TestDeleteTemplate(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	saved, err := s.SaveTemplate(ctx, sampleTemplate("Solicitud"))
	require.NoError(t, err)
	require.NoError(t, s.DeleteTemplate(ctx, saved.ID))

	_, err = s.GetTemplate(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteTemplate(ctx, saved.ID), ErrNotFound)
}

func TestStoreBacksEditorSave(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	editor := builder.New(
		builder.WithPersister(s),
		builder.WithTitle("Solicitud de personal"),
		builder.WithIDGenerator(testsupport.SequentialIDs("ed")),
	)
	saved, err := editor.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, editor.TemplateID())

	got, err := s.GetTemplate(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, editor.Schema(), got.Schema)
}

func TestSearchLookup(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.SearchLookup(ctx, "cargos", "", 10)
	assert.ErrorIs(t, err, lookups.ErrUnknownTable)

	require.NoError(t, s.ReplaceLookup(ctx, "cargos", []lookups.Option{
		{Value: "1", Label: "Jefe de operaciones"},
		{Value: "2", Label: "Operario"},
		{Value: "3", Label: "Técnico"},
	}))

	got, err := s.SearchLookup(ctx, "cargos", "oper", 10)
	require.NoError(t, err)
	assert.Equal(t, []lookups.Option{
		{Value: "2", Label: "Operario"},
		{Value: "1", Label: "Jefe de operaciones"},
	}, got)

	got, err = s.SearchLookup(ctx, "cargos", "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, []string{got[0].Value, got[1].Value})

	require.NoError(t, s.ReplaceLookup(ctx, "cargos", []lookups.Option{{Value: "9", Label: "Gerente"}}))
	got, err = s.SearchLookup(ctx, "cargos", "tecnico", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Error(t, s.ReplaceLookup(ctx, " ", nil))
}

func TestStoreServesLookupHandler(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.ReplaceLookup(context.Background(), "sucursales", []lookups.Option{
		{Value: "scl", Label: "Santiago"},
		{Value: "vap", Label: "Valparaíso"},
	}))

	mux := http.NewServeMux()
	_, err := lookups.RegisterRoutes(mux, "/v1", lookups.WithProvider(s))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/lookups/sucursales?q=valpa", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data []lookups.Option `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, []lookups.Option{{Value: "vap", Label: "Valparaíso"}}, payload.Data)
}
