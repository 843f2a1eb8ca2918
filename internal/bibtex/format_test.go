package bibtex_test

import (
	"strings"
	"testing"

	"github.com/pachadotdev/bello/internal/bibtex"
	"github.com/pachadotdev/bello/internal/records"
)

func TestFormatArticle(t *testing.T) {
	rec := &records.Record{
		Type:    "article",
		Title:   "A Study of Things",
		Authors: "Doe, Jane",
		Year:    "2020",
		Journal: "Journal of Things",
		Volume:  "12",
		Pages:   "1--20",
		DOI:     "10.1000/x1",
	}

	got := bibtex.Format(rec)
	want := strings.Join([]string{
		"@article{doe_a_2020,",
		"  author = {Doe, Jane},",
		"  title = {A Study of Things},",
		"  journal = {Journal of Things},",
		"  year = {2020},",
		"  volume = {12},",
		"  pages = {1--20},",
		"  doi = {10.1000/x1}",
		"}",
	}, "\n")
	if got != want {
		t.Fatalf("Format:\n got %q\nwant %q", got, want)
	}
}

func TestFormatUnknownTypeFallsBackToMiscOrder(t *testing.T) {
	rec := &records.Record{
		Type:  "webpage",
		Title: "Some Page",
		URL:   "https://example.org/page",
	}
	got := bibtex.Format(rec)
	if !strings.HasPrefix(got, "@webpage{") {
		t.Fatalf("type not preserved: %q", got)
	}
	if !strings.Contains(got, "howpublished = {https://example.org/page}") {
		t.Fatalf("misc order not applied: %q", got)
	}
}

func TestFormatIncludesSortedExtras(t *testing.T) {
	rec := &records.Record{
		Type:  "misc",
		Title: "T",
		Extra: `{"zeta":"z","alpha":"a"}`,
	}
	got := bibtex.Format(rec)
	alphaAt := strings.Index(got, "alpha = {a}")
	zetaAt := strings.Index(got, "zeta = {z}")
	if alphaAt < 0 || zetaAt < 0 || alphaAt > zetaAt {
		t.Fatalf("extras missing or unsorted: %q", got)
	}
}

func TestCitationKeyFallbacks(t *testing.T) {
	cases := []struct {
		name string
		rec  records.Record
		want string
	}{
		{"author title year", records.Record{Authors: "Doe, Jane", Title: "A Study", Year: "2020"}, "doe_a_2020"},
		{"space separated author", records.Record{Authors: "Jane Doe", Year: "2020"}, "doe_2020"},
		{"doi fallback", records.Record{DOI: "10.1000/x1"}, "10_1000_x1"},
		{"isbn fallback", records.Record{ISBN: "978-3-16"}, "978_3_16"},
		{"id fallback", records.Record{ID: "ABC-123"}, "abc_123"},
		{"nothing", records.Record{}, "key"},
	}
	for _, tc := range cases {
		if got := bibtex.CitationKey(&tc.rec); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFormatRoundTripsThroughParse(t *testing.T) {
	rec := &records.Record{
		Type:    "article",
		Title:   "Round Trips Considered",
		Authors: "Doe, Jane",
		Year:    "2021",
		Journal: "Journal of Cycles",
		DOI:     "10.1000/rt",
	}
	entries := bibtex.Parse(bibtex.Format(rec))
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	parsed := entries[0].Record
	if parsed.Title != rec.Title || parsed.Authors != rec.Authors || parsed.Year != rec.Year ||
		parsed.Journal != rec.Journal || parsed.DOI != rec.DOI || parsed.Type != rec.Type {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
}
