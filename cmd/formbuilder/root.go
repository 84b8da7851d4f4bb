package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/loader"
	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/internal/store"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/source"
)

const defaultConfigPath = "formbuilder.yaml"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "formbuilder",
		Short:         "Build, preview and serve form templates",
		Long:          `formbuilder imports legacy form definitions, edits them interactively, renders HTML previews, exports OpenAPI request schemas and serves the builder API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath, "Path to the YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(
		newImportCommand(a),
		newSchemaCommand(a),
		newPreviewCommand(a),
		newOpenAPICommand(a),
		newEditCommand(a),
		newListCommand(a),
		newServeCommand(a),
		newConfigCommand(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// editorOptions returns the options every command builds editors with.
func (a *app) editorOptions(extra ...builder.Option) []builder.Option {
	opts := []builder.Option{
		builder.WithCatalog(a.cfg.Catalog()),
		builder.WithStarterTitle(a.cfg.Builder.StarterTitle),
	}
	return append(opts, extra...)
}

// readSource loads a definition from a file path, an http(s) URL, or stdin
// when location is "-".
func (a *app) readSource(ctx context.Context, location string) ([]byte, error) {
	if location == "-" {
		return io.ReadAll(a.in)
	}
	src, err := source.Parse(location)
	if err != nil {
		return nil, err
	}
	l := loader.New(source.NewLoaderOptions(
		source.WithHTTPFallback(30*time.Second),
		source.WithMaxBytes(8<<20),
	))
	doc, err := l.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return doc.Raw(), nil
}

// openStore opens the configured database and seeds the lookup tables
// declared in the config.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, a.cfg.Store.DSN, store.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	for table, rows := range a.cfg.Lookups.Tables {
		if err := st.ReplaceLookup(ctx, table, rows); err != nil {
			_ = st.Close()
			return nil, err
		}
	}
	return st, nil
}

// importDocument loads location into a fresh editor.
func (a *app) importDocument(ctx context.Context, location, title string, extra ...builder.Option) (*builder.Editor, error) {
	raw, err := a.readSource(ctx, location)
	if err != nil {
		return nil, err
	}
	extra = append([]builder.Option{builder.WithTitle(title)}, extra...)
	editor := builder.New(a.editorOptions(extra...)...)
	report, err := editor.Load(raw)
	if err != nil {
		return nil, err
	}
	if report.Fallback {
		a.logger.Warn("input unusable, using starter template",
			zap.String("source", location),
			zap.String("reason", report.FallbackReason),
		)
	}
	a.logger.Debug("imported",
		zap.String("source", location),
		zap.String("format", report.Format),
		zap.Int("sections", report.Sections),
		zap.Int("fields", report.Fields),
		zap.Strings("renamed", report.Renamed),
	)
	return editor, nil
}
