// cmd/fstree/copy.go
package main

import (
	"github.com/spf13/cobra"

	"github.com/gagin/fstree/internal/copier"
	"github.com/gagin/fstree/internal/report"
)

func newCopyCmd(a *app) *cobra.Command {
	var (
		opts      walkOptions
		preserve  bool
		overwrite bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "copy <src> <dst>",
		Short: "Copy a filtered subtree, keeping its structure",
		Long: `Copies every entry of src that survives filtering into dst at the same
relative path. Existing files are skipped unless --overwrite is given.
A failed entry is reported and the rest of the copy continues.

--dry-run walks and plans exactly like a real run and reports the same
counts, but writes nothing.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wcfg, err := opts.walkConfig(cmd.Flags(), args[0], a.cfg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("preserve") {
				preserve = *a.cfg.Copy.PreserveTimestamps
			}
			if !cmd.Flags().Changed("overwrite") {
				overwrite = *a.cfg.Copy.Overwrite
			}

			rep, err := copier.NewOS().Run(copier.Config{
				Config:    wcfg,
				Dest:      args[1],
				Overwrite: overwrite,
				DryRun:    dryRun,
				Preserve:  preserve,
			})
			if err != nil {
				return err
			}
			report.New(cmd.OutOrStdout(), a.quiet, a.verbose).Copy(rep)
			if rep.HasFailures() {
				return errFailures
			}
			return nil
		},
	}

	opts.register(cmd.Flags())
	cmd.Flags().BoolVar(&preserve, "preserve", false, "Preserve modification times and permissions.")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace files that already exist in the destination.")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan and report without writing anything.")
	return cmd
}
