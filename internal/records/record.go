package records

// Record is one bibliographic entry. The id is immutable once assigned; all
// other scalar fields are optional free text. Authors are a single formatted
// string, not a structured list. Collection is the denormalized primary
// collection, a non-authoritative projection of the record's first membership
// kept for single-collection views.
type Record struct {
	ID      string
	Title   string
	Authors string
	Year    string
	Type    string
	DOI     string
	ISBN    string

	Abstract     string
	Address      string
	Publisher    string
	Editor       string
	Booktitle    string
	Series       string
	Edition      string
	Chapter      string
	School       string
	Institution  string
	Organization string
	Howpublished string
	Language     string
	Journal      string
	Pages        string
	Volume       string
	Number       string
	Keywords     string
	Month        string
	URL          string
	Note         string

	// Extra holds arbitrary additional fields as a flat JSON object.
	Extra string

	// Attachments are opaque file paths, ordered. The store owns the
	// referenced files only on explicit delete.
	Attachments []string

	Collection string
}

// scalarFields enumerates every mergeable scalar field as a pair of
// accessors. ID, Extra, Attachments, and Collection are handled separately by
// the merge engine.
func scalarFields(r *Record) []*string {
	return []*string{
		&r.Title, &r.Authors, &r.Year, &r.Type, &r.DOI, &r.ISBN,
		&r.Abstract, &r.Address, &r.Publisher, &r.Editor, &r.Booktitle,
		&r.Series, &r.Edition, &r.Chapter, &r.School, &r.Institution,
		&r.Organization, &r.Howpublished, &r.Language, &r.Journal,
		&r.Pages, &r.Volume, &r.Number, &r.Keywords, &r.Month,
		&r.URL, &r.Note,
	}
}

// FillEmpty copies each scalar field of src into dst when the dst field is
// currently empty. Populated dst fields are never overwritten, so repeated
// fills are first-write-wins per field.
func FillEmpty(dst, src *Record) {
	dstFields := scalarFields(dst)
	srcFields := scalarFields(src)
	for i := range dstFields {
		if *dstFields[i] == "" && *srcFields[i] != "" {
			*dstFields[i] = *srcFields[i]
		}
	}
}

// Summary is the light projection returned by list operations and the
// connector's item listing.
type Summary struct {
	ID          string
	Title       string
	Authors     string
	Year        string
	Type        string
	DOI         string
	URL         string
	Collection  string
	Attachments []string
}
