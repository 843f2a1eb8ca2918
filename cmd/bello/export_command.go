package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pachadotdev/bello/internal/bibtex"
	"github.com/pachadotdev/bello/internal/config"
	"github.com/pachadotdev/bello/internal/library"
	"github.com/pachadotdev/bello/internal/records"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var collection string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export records as BibTeX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				var recs []*records.Record
				if collection == "" {
					summaries, err := store.ListAll(cmd.Context())
					if err != nil {
						return err
					}
					for _, summary := range summaries {
						rec, err := store.GetByID(cmd.Context(), summary.ID)
						if err != nil {
							return err
						}
						if rec != nil {
							recs = append(recs, rec)
						}
					}
				} else {
					byCollection, err := store.ListByCollection(cmd.Context(), collection)
					if err != nil {
						return err
					}
					recs = byCollection
				}

				entries := make([]string, 0, len(recs))
				for _, rec := range recs {
					entries = append(entries, bibtex.Format(rec))
				}
				output := strings.Join(entries, "\n\n")
				if output != "" {
					output += "\n"
				}

				if outputPath == "" {
					fmt.Fprint(cmd.OutOrStdout(), output)
					return nil
				}
				if err := os.WriteFile(outputPath, []byte(output), 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(recs), outputPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "C", "", "Limit to a collection and its descendants")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}
