package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pachadotdev/bello/internal/config"
	"github.com/pachadotdev/bello/internal/importers"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import records from BibTeX, Zotero RDF, EndNote, or Mendeley files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(cfg *config.Config, svc *importers.Service) error {
				out := cmd.OutOrStdout()
				for _, path := range args {
					stats, err := svc.ImportFile(cmd.Context(), path, collection)
					if err != nil {
						return fmt.Errorf("import %s: %w", path, err)
					}
					fmt.Fprintf(out, "%s: %d parsed, %d created, %d merged, %d attachments, %d skipped\n",
						path, stats.Parsed, stats.Created, stats.Merged, stats.Attachments, stats.Skipped)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "C", "", "File imported records into this collection")
	return cmd
}
