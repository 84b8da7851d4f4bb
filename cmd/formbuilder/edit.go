package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/editor/tui"
)

func newEditCommand(a *app) *cobra.Command {
	var (
		from   string
		title  string
		noSave bool
	)
	cmd := &cobra.Command{
		Use:   "edit [template-id]",
		Short: "Edit a template in the terminal",
		Long: `Edit opens a stored template, an imported definition (--from) or the
starter template in an interactive menu, then saves it when the menu closes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			var editor *builder.Editor
			switch {
			case len(args) == 1:
				tpl, err := st.GetTemplate(ctx, args[0])
				if err != nil {
					return err
				}
				editor = builder.New(a.editorOptions(builder.WithPersister(st))...)
				if _, err := editor.LoadTemplate(tpl); err != nil {
					return err
				}
				if title != "" {
					editor.SetTitle(title)
				}
			case from != "":
				editor, err = a.importDocument(ctx, from, title, builder.WithPersister(st))
				if err != nil {
					return err
				}
			default:
				editor = builder.New(a.editorOptions(builder.WithTitle(title), builder.WithPersister(st))...)
			}

			if err := tui.Run(ctx, editor, tui.WithPromptDriver(tui.NewSurveyDriver(a.out))); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					fmt.Fprintln(a.errOut, "Aborted, nothing saved.")
					return nil
				}
				return err
			}
			if noSave {
				return nil
			}
			saved, err := editor.Save(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved template %s (%s)\n", saved.ID, saved.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Import a definition instead of starting from scratch")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Template title")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not save when the editor closes")
	return cmd
}
