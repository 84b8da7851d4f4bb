package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/internal/store"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/legacy"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// templateRequest creates or replaces a template. Schema may hold any shape
// the legacy importer understands.
type templateRequest struct {
	Title  string          `json:"title"`
	Schema json.RawMessage `json:"schema"`
}

type templateResponse struct {
	Template builder.Template `json:"template"`
	Report   reportView       `json:"report"`
}

type importResponse struct {
	Schema schema.PortableSchema `json:"schema"`
	Report reportView            `json:"report"`
}

// reportView is the wire form of legacy.Report.
type reportView struct {
	Format         string   `json:"format,omitempty"`
	Fallback       bool     `json:"fallback"`
	FallbackReason string   `json:"fallbackReason,omitempty"`
	Flat           bool     `json:"flat"`
	Sections       int      `json:"sections"`
	Fields         int      `json:"fields"`
	ClampedSpans   []string `json:"clampedSpans,omitempty"`
	DefaultedSpans []string `json:"defaultedSpans,omitempty"`
	UnknownTypes   []string `json:"unknownTypes,omitempty"`
	SystemFields   []string `json:"systemFields,omitempty"`
	Renamed        []string `json:"renamed,omitempty"`
}

func newReportView(r legacy.Report) reportView {
	return reportView{
		Format:         r.Format,
		Fallback:       r.Fallback,
		FallbackReason: r.FallbackReason,
		Flat:           r.Flat,
		Sections:       r.Sections,
		Fields:         r.Fields,
		ClampedSpans:   r.ClampedSpans,
		DefaultedSpans: r.DefaultedSpans,
		UnknownTypes:   r.UnknownTypes,
		SystemFields:   r.SystemFields,
		Renamed:        r.Renamed,
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.ListTemplates(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if templates == nil {
		templates = []builder.Template{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"data": templates})
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.loadTemplate(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid template body")
		return
	}
	editor := builder.New(s.editorOptions(builder.WithTitle(req.Title))...)
	report, err := editor.Load(req.Schema)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.saveEditor(w, r, editor, report, http.StatusCreated)
}

func (s *Server) replaceTemplate(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.loadTemplate(w, r)
	if !ok {
		return
	}
	var req templateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid template body")
		return
	}
	editor := builder.New(s.editorOptions()...)
	if _, err := editor.LoadTemplate(existing); err != nil {
		s.internalError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Title) != "" {
		editor.SetTitle(req.Title)
	}
	report := editor.Report()
	if len(req.Schema) > 0 {
		loaded, err := editor.Load(req.Schema)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		report = loaded
	}
	s.saveEditor(w, r, editor, report, http.StatusOK)
}

func (s *Server) saveEditor(w http.ResponseWriter, r *http.Request, editor *builder.Editor, report legacy.Report, status int) {
	saved, err := editor.Save(r.Context())
	switch {
	case errors.Is(err, builder.ErrMissingTitle):
		s.writeError(w, http.StatusUnprocessableEntity, codeMissingTitle, "template title is required")
		return
	case errors.Is(err, builder.ErrNoSections):
		s.writeError(w, http.StatusUnprocessableEntity, codeNoSections, "template needs at least one section")
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	s.logger.Info("template saved", zap.String("template", saved.ID), zap.Bool("fallback", report.Fallback))
	s.writeJSON(w, status, templateResponse{Template: saved, Report: newReportView(report)})
}

func (s *Server) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.DeleteTemplate(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, codeNotFound, "template not found: "+id)
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) importSchema(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, codeInvalidBody, "unreadable body")
		return
	}
	editor := builder.New(s.editorOptions()...)
	report, err := editor.Load(raw)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, importResponse{Schema: editor.Schema(), Report: newReportView(report)})
}

func (s *Server) previewTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.loadTemplate(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, tpl.Title, tpl.Schema); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) openAPITemplate(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.loadTemplate(w, r)
	if !ok {
		return
	}
	var opts []openapi.Option
	if path := r.URL.Query().Get("path"); path != "" {
		opts = append(opts, openapi.WithPath(path))
	}
	doc, err := openapi.SubmissionDocument(r.Context(), tpl.Title, tpl.Schema, opts...)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, codeInvalidBody, err.Error())
		return
	}

	var (
		body        []byte
		contentType string
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		body, err = openapi.MarshalJSON(doc)
		contentType = "application/json"
	case "yaml", "yml":
		body, err = openapi.MarshalYAML(doc)
		contentType = "application/yaml"
	default:
		s.writeError(w, http.StatusBadRequest, codeUnsupported, "unsupported format: "+format)
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) loadTemplate(w http.ResponseWriter, r *http.Request) (builder.Template, bool) {
	id := chi.URLParam(r, "id")
	tpl, err := s.store.GetTemplate(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, codeNotFound, "template not found: "+id)
		return builder.Template{}, false
	}
	if err != nil {
		s.internalError(w, r, err)
		return builder.Template{}, false
	}
	return tpl, true
}
