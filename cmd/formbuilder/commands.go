package main

import (
	"bytes"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// writeOutput writes data to path, or to stdout when path is empty.
func (a *app) writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := a.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(a.errOut, "Written to %s\n", path)
	return nil
}

func newImportCommand(a *app) *cobra.Command {
	var (
		title  string
		output string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "import <source>",
		Short: "Convert a legacy definition into the portable schema",
		Long: `Import reads a template definition (JSON or YAML, sectioned or flat) from
a file, an http(s) URL or stdin ("-") and prints the portable schema.

Examples:
  formbuilder import precargado.json
  formbuilder import https://example.com/form.yaml -o schema.json
  formbuilder import precargado.json --save --title "Alta de vacante"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var extra []builder.Option
			if save {
				st, err := a.openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				extra = append(extra, builder.WithPersister(st))
			}
			editor, err := a.importDocument(ctx, args[0], title, extra...)
			if err != nil {
				return err
			}
			if save {
				saved, err := editor.Save(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.errOut, "Saved template %s (%s)\n", saved.ID, saved.Title)
			}
			data, err := schema.Marshal(editor.Schema())
			if err != nil {
				return err
			}
			return a.writeOutput(output, append(data, '\n'))
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Template title")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&save, "save", false, "Store the imported template in the database")
	return cmd
}

func newPreviewCommand(a *app) *cobra.Command {
	var (
		title       string
		output      string
		templateDir string
		template    string
	)
	cmd := &cobra.Command{
		Use:   "preview <source>",
		Short: "Render a definition as an HTML form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			editor, err := a.importDocument(cmd.Context(), args[0], title)
			if err != nil {
				return err
			}
			opts := []preview.Option{}
			if templateDir != "" {
				opts = append(opts, preview.WithBaseDir(templateDir))
			}
			if template != "" {
				opts = append(opts, preview.WithTemplate(template))
			}
			renderer, err := preview.New(opts...)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := renderer.Render(&buf, editor.Title(), editor.Schema()); err != nil {
				return err
			}
			return a.writeOutput(output, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Form title")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().StringVar(&templateDir, "template-dir", "", "Directory with template overrides")
	cmd.Flags().StringVar(&template, "template", "", "Entry template name")
	return cmd
}

func newOpenAPICommand(a *app) *cobra.Command {
	var (
		title  string
		output string
		path   string
		format string
	)
	cmd := &cobra.Command{
		Use:   "openapi <source>",
		Short: "Export the submission payload as an OpenAPI document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			editor, err := a.importDocument(ctx, args[0], title)
			if err != nil {
				return err
			}
			var opts []openapi.Option
			if path != "" {
				opts = append(opts, openapi.WithPath(path))
			}
			doc, err := openapi.SubmissionDocument(ctx, editor.Title(), editor.Schema(), opts...)
			if err != nil {
				return err
			}
			var data []byte
			switch format {
			case "json":
				data, err = openapi.MarshalJSON(doc)
			case "yaml", "yml":
				data, err = openapi.MarshalYAML(doc)
			default:
				return fmt.Errorf("unsupported format %q (use json or yaml)", format)
			}
			if err != nil {
				return err
			}
			return a.writeOutput(output, data)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Document title (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().StringVar(&path, "path", "", "Submission path")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: json or yaml")
	return cmd
}

func newSchemaCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "schema <template-id>",
		Short: "Print the portable schema of a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			tpl, err := st.GetTemplate(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := schema.Marshal(tpl.Schema)
			if err != nil {
				return err
			}
			return a.writeOutput(output, append(data, '\n'))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			templates, err := st.ListTemplates(ctx)
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Fprintln(a.out, "No templates stored.")
				return nil
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tFIELDS\tUPDATED")
			for _, tpl := range templates {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", tpl.ID, tpl.Title, tpl.Schema.FieldCount(), tpl.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to --config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); err == nil {
				return fmt.Errorf("%s already exists", a.configPath)
			}
			if err := a.cfg.Save(a.configPath); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %s\n", a.configPath)
			return nil
		},
	})
	return cmd
}
