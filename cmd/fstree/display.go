// cmd/fstree/display.go
package main

import (
	"github.com/spf13/cobra"

	"github.com/gagin/fstree/internal/render"
	"github.com/gagin/fstree/internal/report"
	"github.com/gagin/fstree/internal/walk"
)

func newDisplayCmd(a *app) *cobra.Command {
	var (
		opts     walkOptions
		showSize bool
	)

	cmd := &cobra.Command{
		Use:   "display [path]",
		Short: "Print a filtered directory tree",
		Long: `Walks path (default ".") and prints it as a tree.

Patterns are Go regular expressions matched against the path relative to the
root, e.g. 'src/main.rs'. Exclusion wins over inclusion and prunes whole
directories; include patterns only select files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			wcfg, err := opts.walkConfig(cmd.Flags(), root, a.cfg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("size") {
				showSize = *a.cfg.Display.ShowSize
			}

			res := walk.Walk(wcfg)
			out := report.New(cmd.OutOrStdout(), a.quiet, a.verbose)
			if _, rootFailed := res.Errors["."]; !rootFailed {
				if err := render.Render(cmd.OutOrStdout(), root, res.Entries, render.Options{ShowSize: showSize}); err != nil {
					return err
				}
				out.Counts(res)
			}
			report.New(cmd.ErrOrStderr(), a.quiet, a.verbose).Errors(res.Errors)
			if len(res.Errors) > 0 {
				return errFailures
			}
			return nil
		},
	}

	opts.register(cmd.Flags())
	cmd.Flags().BoolVar(&showSize, "size", false, "Show file sizes.")
	return cmd
}
