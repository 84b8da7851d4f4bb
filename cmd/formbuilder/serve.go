package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/internal/server"
	"github.com/goliatone/go-formbuilder/pkg/preview"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		addr        string
		templateDir string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the builder API and live editing socket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			var previewOpts []preview.Option
			if templateDir != "" {
				previewOpts = append(previewOpts, preview.WithBaseDir(templateDir))
			}
			renderer, err := preview.New(previewOpts...)
			if err != nil {
				return err
			}

			srv, err := server.New(st,
				server.WithConfig(a.cfg),
				server.WithLogger(a.logger),
				server.WithRenderer(renderer),
			)
			if err != nil {
				return err
			}
			a.logger.Info("starting", zap.String("addr", a.cfg.Server.Addr), zap.String("version", version))
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&templateDir, "template-dir", "", "Directory with preview template overrides")
	return cmd
}

