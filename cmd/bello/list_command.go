package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pachadotdev/bello/internal/config"
	"github.com/pachadotdev/bello/internal/library"
	"github.com/pachadotdev/bello/internal/records"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				var summaries []records.Summary
				if collection == "" {
					all, err := store.ListAll(cmd.Context())
					if err != nil {
						return err
					}
					summaries = all
				} else {
					recs, err := store.ListByCollection(cmd.Context(), collection)
					if err != nil {
						return err
					}
					for _, rec := range recs {
						summaries = append(summaries, records.Summary{
							ID:          rec.ID,
							Title:       rec.Title,
							Authors:     rec.Authors,
							Year:        rec.Year,
							Type:        rec.Type,
							Collection:  rec.Collection,
							Attachments: rec.Attachments,
						})
					}
				}

				if len(summaries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No records found")
					return nil
				}

				rows := make([][]string, 0, len(summaries))
				for _, summary := range summaries {
					rows = append(rows, []string{
						summary.ID,
						summary.Title,
						summary.Authors,
						summary.Year,
						summary.Type,
						summary.Collection,
						strconv.Itoa(len(summary.Attachments)),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Authors", "Year", "Type", "Collection", "Files"},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "C", "", "Limit to a collection and its descendants")
	return cmd
}
