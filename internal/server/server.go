// Package server assembles the HTTP API: template CRUD, legacy import,
// HTML preview, OpenAPI export, lookup search and the live editing socket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/components/lookups"
	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/store"
	"github.com/goliatone/go-formbuilder/internal/wire"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/preview"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConfig sets listener timeouts and lookup limits.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithRenderer replaces the preview renderer.
func WithRenderer(renderer *preview.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithEditorOptions appends options applied to every editor the server
// opens, after the store is wired as persister.
func WithEditorOptions(opts ...builder.Option) Option {
	return func(s *Server) {
		s.editorOpts = append(s.editorOpts, opts...)
	}
}

// Server serves the form builder API over a Store.
type Server struct {
	cfg        *config.Config
	store      *store.Store
	renderer   *preview.Renderer
	logger     *zap.Logger
	editorOpts []builder.Option
	router     chi.Router
}

// New builds the router.
func New(st *store.Store, opts ...Option) (*Server, error) {
	if st == nil {
		return nil, errors.New("server: store is required")
	}
	s := &Server{
		cfg:    config.DefaultConfig(),
		store:  st,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.Named("server")
	if s.renderer == nil {
		renderer, err := preview.New()
		if err != nil {
			return nil, fmt.Errorf("server: preview renderer: %w", err)
		}
		s.renderer = renderer
	}
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(recovery(s.logger))
	r.Use(logging(s.logger))

	r.Get("/healthz", s.health)

	var mountErr error
	r.Route("/v1", func(r chi.Router) {
		r.Get("/templates", s.listTemplates)
		r.Post("/templates", s.createTemplate)
		r.Get("/templates/{id}", s.getTemplate)
		r.Put("/templates/{id}", s.replaceTemplate)
		r.Delete("/templates/{id}", s.deleteTemplate)
		r.Get("/templates/{id}/preview", s.previewTemplate)
		r.Get("/templates/{id}/openapi", s.openAPITemplate)
		r.Get("/templates/{id}/edit", s.editSocket().ServeHTTP)
		r.Get("/edit", s.editSocket().ServeHTTP)
		r.Post("/schema/import", s.importSchema)

		_, mountErr = lookups.RegisterRoutes(r, "/",
			lookups.WithProvider(s.store),
			lookups.WithDefaultLimit(s.cfg.Lookups.DefaultLimit),
			lookups.WithMaxLimit(s.cfg.Lookups.MaxLimit),
		)
	})
	if mountErr != nil {
		return fmt.Errorf("server: mount lookups: %w", mountErr)
	}
	s.router = r
	return nil
}

// editorOptions returns the options every server-side editor starts with.
func (s *Server) editorOptions(extra ...builder.Option) []builder.Option {
	opts := []builder.Option{
		builder.WithPersister(s.store),
		builder.WithCatalog(s.cfg.Catalog()),
		builder.WithStarterTitle(s.cfg.Builder.StarterTitle),
	}
	opts = append(opts, s.editorOpts...)
	return append(opts, extra...)
}

func (s *Server) editSocket() *wire.Handler {
	return wire.NewHandler(s.openEditor,
		wire.WithLogger(s.logger),
		wire.WithOriginPatterns(s.cfg.Server.AllowedOrigins...),
	)
}

// openEditor loads the template named by the route, or starts a new one.
func (s *Server) openEditor(r *http.Request) (*builder.Editor, error) {
	editor := builder.New(s.editorOptions()...)
	id := chi.URLParam(r, "id")
	if id == "" {
		return editor, nil
	}
	tpl, err := s.store.GetTemplate(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: template %s", builder.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if _, err := editor.LoadTemplate(tpl); err != nil {
		return nil, err
	}
	return editor, nil
}

// Run listens on the configured address until ctx is cancelled, then drains
// in-flight requests for at most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("stopped")
	return nil
}
