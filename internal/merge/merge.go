// Package merge decides whether an incoming bibliographic record creates a
// new stored record or updates an existing one, and reconciles the fields
// when it does. The engine is pure decision logic over an injected lookup
// capability so it can be tested without a store.
package merge

import (
	"context"

	"github.com/google/uuid"

	"github.com/pachadotdev/bello/internal/records"
)

// Lookup is the point-lookup capability the engine matches against. Absence
// is signalled with (nil, nil).
type Lookup interface {
	FindByDOI(ctx context.Context, doi string) (*records.Record, error)
	FindByISBN(ctx context.Context, isbn string) (*records.Record, error)
	FindByTitleAndAuthors(ctx context.Context, title, authors string) (*records.Record, error)
}

// Outcome is the reconciliation result. Record is the row to persist: the
// matched record with previously-empty fields filled, or the incoming record
// carrying a fresh id. Collection is the membership to add after persisting;
// a matched incoming record's own collection field is discarded in favor of
// it.
type Outcome struct {
	Record     *records.Record
	Matched    bool
	Collection string
}

// Reconcile resolves the incoming record against existing data. Match keys
// are tried in priority order, first non-empty key wins: DOI, then ISBN,
// then the (title, authors) pair. Once a key type is attempted there is no
// fallback chaining; a populated DOI that matches nothing means a new record
// even when the ISBN would have matched.
//
// On a match, scalar fields fill only where the existing record is empty, so
// repeated merges are first-write-wins per field and never destroy curated
// data. Extras union with existing values winning unless blank; attachments
// append in order with exact-path de-duplication.
func Reconcile(ctx context.Context, incoming *records.Record, lookup Lookup) (Outcome, error) {
	existing, err := match(ctx, incoming, lookup)
	if err != nil {
		return Outcome{}, err
	}

	if existing == nil {
		created := *incoming
		if created.ID == "" {
			created.ID = uuid.NewString()
		}
		return Outcome{
			Record:     &created,
			Collection: incoming.Collection,
		}, nil
	}

	merged := *existing
	records.FillEmpty(&merged, incoming)

	merged.Extra = records.MergeExtras(existing.Extra, incoming.Extra)
	merged.Attachments = records.AppendAttachments(existing.Attachments, incoming.Attachments)
	merged.Collection = existing.Collection

	return Outcome{
		Record:     &merged,
		Matched:    true,
		Collection: incoming.Collection,
	}, nil
}

func match(ctx context.Context, incoming *records.Record, lookup Lookup) (*records.Record, error) {
	if incoming.DOI != "" {
		return lookup.FindByDOI(ctx, incoming.DOI)
	}
	if incoming.ISBN != "" {
		return lookup.FindByISBN(ctx, incoming.ISBN)
	}
	if incoming.Title != "" && incoming.Authors != "" {
		return lookup.FindByTitleAndAuthors(ctx, incoming.Title, incoming.Authors)
	}
	return nil, nil
}
