package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pachadotdev/bello/internal/config"
	"github.com/pachadotdev/bello/internal/library"
	"github.com/pachadotdev/bello/internal/records"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a record's full details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				rec, err := store.GetByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if rec == nil {
					return fmt.Errorf("record %s not found", args[0])
				}

				memberships, err := store.Memberships(cmd.Context(), rec.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				titler := cases.Title(language.English)

				fmt.Fprintf(out, "ID:          %s\n", rec.ID)
				fmt.Fprintf(out, "Type:        %s\n", titler.String(rec.Type))
				printField(out, "Title", rec.Title)
				printField(out, "Authors", rec.Authors)
				printField(out, "Year", rec.Year)
				printField(out, "Journal", rec.Journal)
				printField(out, "Booktitle", rec.Booktitle)
				printField(out, "Publisher", rec.Publisher)
				printField(out, "Volume", rec.Volume)
				printField(out, "Number", rec.Number)
				printField(out, "Pages", rec.Pages)
				printField(out, "DOI", rec.DOI)
				printField(out, "ISBN", rec.ISBN)
				printField(out, "URL", rec.URL)
				printField(out, "Keywords", rec.Keywords)
				printField(out, "Abstract", rec.Abstract)
				printField(out, "Note", rec.Note)

				if len(memberships) > 0 {
					fmt.Fprintf(out, "Collections: %s\n", strings.Join(memberships, ", "))
				}
				if len(rec.Attachments) > 0 {
					fmt.Fprintf(out, "Attachments:\n")
					for _, path := range rec.Attachments {
						fmt.Fprintf(out, "  %s\n", path)
					}
				}

				extras := records.DecodeExtras(rec.Extra)
				if len(extras) > 0 {
					keys := make([]string, 0, len(extras))
					for key := range extras {
						keys = append(keys, key)
					}
					sort.Strings(keys)
					fmt.Fprintln(out, "Extra:")
					for _, key := range keys {
						fmt.Fprintf(out, "  %s: %s\n", key, extras[key])
					}
				}
				return nil
			})
		},
	}
}

func printField(out io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(out, "%-12s %s\n", label+":", value)
}
