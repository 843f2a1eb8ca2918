package bibtex

import (
	"sort"
	"strings"

	"github.com/pachadotdev/bello/internal/records"
)

// Field orders per entry type, matching common BibTeX conventions. Unknown
// types fall through to the misc order.
var fieldOrders = map[string][]string{
	"article":       {"author", "title", "journal", "year", "volume", "number", "pages", "doi", "url", "abstract", "keywords", "note"},
	"book":          {"author", "title", "publisher", "address", "year", "volume", "series", "edition", "isbn", "url", "abstract", "keywords", "note"},
	"inproceedings": {"author", "title", "booktitle", "year", "pages", "publisher", "address", "doi", "url", "abstract", "keywords", "note"},
	"conference":    {"author", "title", "booktitle", "year", "pages", "publisher", "address", "doi", "url", "abstract", "keywords", "note"},
	"techreport":    {"author", "title", "institution", "year", "number", "address", "url", "note"},
	"phdthesis":     {"author", "title", "school", "year", "address", "month", "note", "url"},
	"mastersthesis": {"author", "title", "school", "year", "address", "month", "note", "url"},
}

var miscOrder = []string{"author", "title", "howpublished", "year", "month", "note", "url", "doi", "isbn", "abstract", "keywords"}

// Format renders the record as a BibTeX entry. The citation key derives from
// the author's last name, the first title token, and the year; when all three
// are missing the record id is used.
func Format(rec *records.Record) string {
	entryType := strings.ToLower(strings.TrimSpace(rec.Type))
	if entryType == "" {
		entryType = "misc"
	}

	order, ok := fieldOrders[entryType]
	if !ok {
		order = miscOrder
	}

	var fields []string
	for _, name := range order {
		if value := fieldValue(rec, name); value != "" {
			fields = append(fields, "  "+name+" = {"+value+"}")
		}
	}

	// Extras export in key-sorted order so output is stable.
	extras := records.DecodeExtras(rec.Extra)
	if len(extras) > 0 {
		keys := make([]string, 0, len(extras))
		for key := range extras {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fields = append(fields, "  "+key+" = {"+extras[key]+"}")
		}
	}

	var b strings.Builder
	b.WriteString("@" + entryType + "{" + CitationKey(rec) + ",\n")
	b.WriteString(strings.Join(fields, ",\n"))
	b.WriteString("\n}")
	return b.String()
}

// CitationKey builds a sanitized lowercase key from author last name, first
// title token, and year. DOI, ISBN, and finally the record id back it up.
func CitationKey(rec *records.Record) string {
	var parts []string

	author := strings.TrimSpace(rec.Authors)
	var last string
	if author != "" {
		if comma := strings.IndexByte(author, ','); comma >= 0 {
			last = strings.TrimSpace(author[:comma])
		} else {
			tokens := strings.Fields(author)
			last = tokens[len(tokens)-1]
		}
	}
	if last = sanitizeKey(last); last != "" {
		parts = append(parts, last)
	}

	if title := strings.TrimSpace(rec.Title); title != "" {
		lowered := strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				return r
			}
			if r >= 'A' && r <= 'Z' {
				return r + ('a' - 'A')
			}
			return ' '
		}, title)
		if tokens := strings.Fields(lowered); len(tokens) > 0 {
			if token := sanitizeKey(tokens[0]); token != "" {
				parts = append(parts, token)
			}
		}
	}

	if year := sanitizeKey(rec.Year); year != "" {
		parts = append(parts, year)
	}

	if key := strings.Join(parts, "_"); key != "" {
		return key
	}
	if rec.DOI != "" {
		return sanitizeKey(rec.DOI)
	}
	if rec.ISBN != "" {
		return sanitizeKey(rec.ISBN)
	}
	if key := sanitizeKey(rec.ID); key != "" {
		return key
	}
	return "key"
}

// sanitizeKey lowercases and keeps [a-z0-9_], collapsing runs of other
// characters into single underscores and trimming the ends.
func sanitizeKey(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_':
			if r == '_' {
				if lastUnderscore {
					continue
				}
				lastUnderscore = true
			} else {
				lastUnderscore = false
			}
			b.WriteRune(r)
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

func fieldValue(rec *records.Record, name string) string {
	switch name {
	case "author":
		return rec.Authors
	case "title":
		return rec.Title
	case "journal":
		return rec.Journal
	case "year":
		return rec.Year
	case "volume":
		return rec.Volume
	case "number":
		return rec.Number
	case "pages":
		return rec.Pages
	case "doi":
		return rec.DOI
	case "isbn":
		return rec.ISBN
	case "publisher":
		return rec.Publisher
	case "address":
		return rec.Address
	case "institution":
		if rec.Institution != "" {
			return rec.Institution
		}
		return rec.Publisher
	case "booktitle":
		if rec.Booktitle != "" {
			return rec.Booktitle
		}
		return rec.Journal
	case "school":
		if rec.School != "" {
			return rec.School
		}
		return rec.Publisher
	case "howpublished":
		if rec.Howpublished != "" {
			return rec.Howpublished
		}
		return rec.URL
	case "url":
		return rec.URL
	case "month":
		return rec.Month
	case "abstract":
		return rec.Abstract
	case "keywords":
		return rec.Keywords
	case "note":
		return rec.Note
	}
	return ""
}
