package merge_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/pachadotdev/bello/internal/merge"
	"github.com/pachadotdev/bello/internal/records"
)

// fakeLookup serves canned records keyed by the lookup used.
type fakeLookup struct {
	byDOI   map[string]*records.Record
	byISBN  map[string]*records.Record
	byPair  map[string]*records.Record
	doiHits int
}

func (f *fakeLookup) FindByDOI(_ context.Context, doi string) (*records.Record, error) {
	f.doiHits++
	return f.byDOI[doi], nil
}

func (f *fakeLookup) FindByISBN(_ context.Context, isbn string) (*records.Record, error) {
	return f.byISBN[isbn], nil
}

func (f *fakeLookup) FindByTitleAndAuthors(_ context.Context, title, authors string) (*records.Record, error) {
	return f.byPair[title+"\x00"+authors], nil
}

func TestReconcileUnmatchedCreatesWithFreshID(t *testing.T) {
	incoming := &records.Record{Title: "New Work", Authors: "Doe, Jane", DOI: "10.1/x", Collection: "Inbox"}
	outcome, err := merge.Reconcile(context.Background(), incoming, &fakeLookup{})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome.Matched {
		t.Fatal("expected no match")
	}
	if outcome.Record.ID == "" {
		t.Fatal("no id generated for new record")
	}
	if outcome.Record.Title != "New Work" {
		t.Fatalf("incoming fields lost: %+v", outcome.Record)
	}
	if outcome.Collection != "Inbox" {
		t.Fatalf("collection not carried: %q", outcome.Collection)
	}
	if incoming.ID != "" {
		t.Fatal("incoming record mutated")
	}
}

func TestReconcileFillsOnlyEmptyFields(t *testing.T) {
	existing := &records.Record{
		ID:      "e1",
		Title:   "Curated Title",
		Authors: "Doe, Jane",
		DOI:     "10.1/x",
		Year:    "",
	}
	incoming := &records.Record{
		Title:   "Scraped Title",
		Authors: "Doe, J.",
		DOI:     "10.1/x",
		Year:    "2021",
		Journal: "Journal of Merging",
	}
	lookup := &fakeLookup{byDOI: map[string]*records.Record{"10.1/x": existing}}

	outcome, err := merge.Reconcile(context.Background(), incoming, lookup)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !outcome.Matched || outcome.Record.ID != "e1" {
		t.Fatalf("expected match against e1, got %+v", outcome)
	}
	if outcome.Record.Title != "Curated Title" || outcome.Record.Authors != "Doe, Jane" {
		t.Fatalf("populated fields overwritten: %+v", outcome.Record)
	}
	if outcome.Record.Year != "2021" || outcome.Record.Journal != "Journal of Merging" {
		t.Fatalf("empty fields not filled: %+v", outcome.Record)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	existing := &records.Record{ID: "e1", Title: "Settled", DOI: "10.1/x", Year: "2019"}
	incoming := &records.Record{Title: "Other", DOI: "10.1/x", Year: "2025"}
	lookup := &fakeLookup{byDOI: map[string]*records.Record{"10.1/x": existing}}

	first, err := merge.Reconcile(context.Background(), incoming, lookup)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	lookup.byDOI["10.1/x"] = first.Record
	second, err := merge.Reconcile(context.Background(), incoming, lookup)
	if err != nil {
		t.Fatalf("Reconcile repeat: %v", err)
	}
	if !reflect.DeepEqual(first.Record, second.Record) {
		t.Fatalf("repeat merge changed the record:\nfirst  %+v\nsecond %+v", first.Record, second.Record)
	}
	if second.Record.Year != "2019" {
		t.Fatalf("populated year overwritten: %q", second.Record.Year)
	}
}

func TestReconcileKeyPriority(t *testing.T) {
	byDOI := &records.Record{ID: "doi-match", DOI: "10.1/x"}
	byISBN := &records.Record{ID: "isbn-match", ISBN: "111"}
	byPair := &records.Record{ID: "pair-match", Title: "T", Authors: "A"}
	lookup := &fakeLookup{
		byDOI:  map[string]*records.Record{"10.1/x": byDOI},
		byISBN: map[string]*records.Record{"111": byISBN},
		byPair: map[string]*records.Record{"T\x00A": byPair},
	}

	incoming := &records.Record{DOI: "10.1/x", ISBN: "111", Title: "T", Authors: "A"}
	outcome, err := merge.Reconcile(context.Background(), incoming, lookup)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome.Record.ID != "doi-match" {
		t.Fatalf("DOI should win, matched %q", outcome.Record.ID)
	}

	// A populated DOI that matches nothing means a new record even though
	// the ISBN would have matched.
	incoming = &records.Record{DOI: "10.9/unknown", ISBN: "111"}
	outcome, err = merge.Reconcile(context.Background(), incoming, lookup)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome.Matched {
		t.Fatalf("unexpected fallback match: %+v", outcome.Record)
	}

	incoming = &records.Record{ISBN: "111"}
	outcome, err = merge.Reconcile(context.Background(), incoming, lookup)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome.Record.ID != "isbn-match" {
		t.Fatalf("ISBN should match when DOI empty, got %q", outcome.Record.ID)
	}

	incoming = &records.Record{Title: "T", Authors: "A"}
	outcome, err = merge.Reconcile(context.Background(), incoming, lookup)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome.Record.ID != "pair-match" {
		t.Fatalf("title/authors should match when ids empty, got %q", outcome.Record.ID)
	}
}

func TestReconcileExtrasAndAttachments(t *testing.T) {
	existing := &records.Record{
		ID:          "e1",
		DOI:         "10.1/x",
		Extra:       `{"grant":"G-1","empty":""}`,
		Attachments: []string{"/store/a.pdf"},
		Collection:  "Curated",
	}
	incoming := &records.Record{
		DOI:         "10.1/x",
		Extra:       `{"grant":"G-2","empty":"filled","added":"yes"}`,
		Attachments: []string{"/store/a.pdf", "/inbox/b.pdf"},
		Collection:  "Inbox",
	}
	lookup := &fakeLookup{byDOI: map[string]*records.Record{"10.1/x": existing}}

	outcome, err := merge.Reconcile(context.Background(), incoming, lookup)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	extras := records.DecodeExtras(outcome.Record.Extra)
	if extras["grant"] != "G-1" {
		t.Fatalf("existing extra overwritten: %v", extras)
	}
	if extras["empty"] != "filled" || extras["added"] != "yes" {
		t.Fatalf("extras union incomplete: %v", extras)
	}

	wantAttachments := []string{"/store/a.pdf", "/inbox/b.pdf"}
	if !reflect.DeepEqual(outcome.Record.Attachments, wantAttachments) {
		t.Fatalf("attachments = %v, want %v", outcome.Record.Attachments, wantAttachments)
	}

	if outcome.Record.Collection != "Curated" {
		t.Fatalf("existing primary collection replaced: %q", outcome.Record.Collection)
	}
	if outcome.Collection != "Inbox" {
		t.Fatalf("incoming collection not surfaced for membership add: %q", outcome.Collection)
	}
}
