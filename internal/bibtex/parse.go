package bibtex

import (
	"strings"

	"github.com/pachadotdev/bello/internal/records"
)

// FileSpec is one attachment reference from a Zotero-style file field,
// description:path:mimetype. Path may be relative to the source file.
type FileSpec struct {
	Description string
	Path        string
	MimeType    string
}

// Entry is one parsed BibTeX entry. Record carries the mapped fields;
// CitationKey and Files are kept separate because the importer uses them for
// storage-directory naming and attachment copying.
type Entry struct {
	Record      records.Record
	CitationKey string
	Files       []FileSpec
}

// Parse tokenizes a whole BibTeX document. An unterminated entry delimiter
// stops the scan; entries parsed before that point are still returned.
func Parse(content string) []Entry {
	var out []Entry
	pos := 0

	for {
		at := strings.IndexByte(content[pos:], '@')
		if at < 0 {
			break
		}
		at += pos

		// The first { or ( after @ fixes the delimiter pair for this entry.
		braceAt := strings.IndexByte(content[at:], '{')
		parenAt := strings.IndexByte(content[at:], '(')
		start := -1
		open, close := byte('{'), byte('}')
		switch {
		case braceAt >= 0 && (parenAt < 0 || braceAt < parenAt):
			start = at + braceAt
		case parenAt >= 0:
			start = at + parenAt
			open, close = '(', ')'
		}
		if start < 0 {
			break
		}

		// Scan to the matching close, nesting only the chosen delimiter
		// type. The other bracket kind is not tracked; mixed-delimiter
		// entries are a known limitation.
		i := start + 1
		depth := 1
		for i < len(content) && depth > 0 {
			switch content[i] {
			case open:
				depth++
			case close:
				depth--
			}
			i++
		}
		if depth != 0 {
			break
		}

		body := content[start+1 : i-1]
		entryType := strings.ToLower(strings.TrimSpace(content[at+1 : start]))

		entry := parseEntry(entryType, body)
		if keepEntry(entry) {
			out = append(out, entry)
		}
		pos = i
	}

	return out
}

func parseEntry(entryType, body string) Entry {
	var citationKey, fields string
	if comma := strings.IndexByte(body, ','); comma >= 0 {
		citationKey = strings.TrimSpace(body[:comma])
		fields = body[comma+1:]
	} else {
		fields = body
	}

	entry := Entry{CitationKey: citationKey}
	entry.Record.Type = entryType

	j := 0
	flen := len(fields)
	skipWS := func() {
		for j < flen && isSpace(fields[j]) {
			j++
		}
	}

	for j < flen {
		skipWS()
		if j >= flen {
			break
		}

		nameStart := j
		for j < flen && isNameByte(fields[j]) {
			j++
		}
		name := strings.ToLower(strings.TrimSpace(fields[nameStart:j]))

		skipWS()
		if j >= flen || fields[j] != '=' {
			// Not a field assignment; resynchronize at the next comma.
			for j < flen && fields[j] != ',' {
				j++
			}
			if j < flen {
				j++
			}
			continue
		}
		j++
		skipWS()

		var value string
		switch {
		case j < flen && fields[j] == '{':
			vstart := j + 1
			vdepth := 1
			j++
			for j < flen && vdepth > 0 {
				switch fields[j] {
				case '{':
					vdepth++
				case '}':
					vdepth--
				}
				if vdepth > 0 {
					j++
				}
			}
			value = fields[vstart:j]
			if j < flen {
				j++
			}
		case j < flen && fields[j] == '"':
			vstart := j + 1
			j++
			for j < flen && fields[j] != '"' {
				if fields[j] == '\\' && j+1 < flen {
					j += 2
				} else {
					j++
				}
			}
			value = fields[vstart:j]
			if j < flen {
				j++
			}
		default:
			// Bare value. Embedded brace groups are depth-tracked so an
			// interior comma does not end the value early.
			vstart := j
			for j < flen && fields[j] != ',' {
				if fields[j] == '{' {
					vdepth := 1
					j++
					for j < flen && vdepth > 0 {
						switch fields[j] {
						case '{':
							vdepth++
						case '}':
							vdepth--
						}
						j++
					}
				} else {
					j++
				}
			}
			value = fields[vstart:j]
		}

		assignField(&entry, name, cleanValue(value))

		skipWS()
		if j < flen && fields[j] == ',' {
			j++
		}
	}

	return entry
}

// cleanValue normalizes a raw field value: outer braces and quotes stripped
// iteratively, common LaTeX escapes undone, a stray trailing comma dropped,
// residual case-protection braces turned into spaces, whitespace collapsed.
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	for len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		s = s[1 : len(s)-1]
	}
	for len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	s = records.Unescape(s)
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")
	s = strings.ReplaceAll(s, "{", " ")
	s = strings.ReplaceAll(s, "}", " ")
	return strings.Join(strings.Fields(s), " ")
}

func assignField(entry *Entry, name, value string) {
	if name == "" {
		return
	}
	if name == "file" {
		entry.Files = append(entry.Files, parseFileField(value)...)
		return
	}

	rec := &entry.Record
	if target, ok := fieldTargets(rec)[name]; ok {
		*target = value
		return
	}

	// Unknown field: preserve losslessly in the note.
	pair := name + " = {" + value + "}"
	if rec.Note == "" {
		rec.Note = pair
	} else {
		rec.Note += "; " + pair
	}
}

func fieldTargets(rec *records.Record) map[string]*string {
	return map[string]*string{
		"title":        &rec.Title,
		"author":       &rec.Authors,
		"year":         &rec.Year,
		"doi":          &rec.DOI,
		"isbn":         &rec.ISBN,
		"abstract":     &rec.Abstract,
		"address":      &rec.Address,
		"publisher":    &rec.Publisher,
		"editor":       &rec.Editor,
		"booktitle":    &rec.Booktitle,
		"series":       &rec.Series,
		"edition":      &rec.Edition,
		"chapter":      &rec.Chapter,
		"school":       &rec.School,
		"institution":  &rec.Institution,
		"organization": &rec.Organization,
		"howpublished": &rec.Howpublished,
		"language":     &rec.Language,
		"url":          &rec.URL,
		"journal":      &rec.Journal,
		"pages":        &rec.Pages,
		"volume":       &rec.Volume,
		"number":       &rec.Number,
		"keywords":     &rec.Keywords,
		"month":        &rec.Month,
		"note":         &rec.Note,
	}
}

// parseFileField splits a Zotero file field into attachment specs. Segments
// are ;-separated description:path:mimetype triples; two-part segments are
// description:path, single parts are a bare path.
func parseFileField(value string) []FileSpec {
	var specs []FileSpec
	for _, segment := range strings.Split(value, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		cols := strings.Split(segment, ":")
		var spec FileSpec
		switch {
		case len(cols) >= 3:
			spec = FileSpec{Description: strings.TrimSpace(cols[0]), Path: strings.TrimSpace(cols[1]), MimeType: strings.TrimSpace(cols[2])}
		case len(cols) == 2:
			spec = FileSpec{Description: strings.TrimSpace(cols[0]), Path: strings.TrimSpace(cols[1])}
		default:
			spec = FileSpec{Path: segment}
		}
		if spec.Path == "" {
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

// keepEntry keeps an entry only when it carries something identifying or
// useful: a title, authors, an identifier, an attachment, a citation key, a
// URL, or a note.
func keepEntry(entry Entry) bool {
	rec := entry.Record
	return rec.Title != "" || rec.Authors != "" || rec.DOI != "" || rec.ISBN != "" ||
		len(entry.Files) > 0 || entry.CitationKey != "" || rec.URL != "" || rec.Note != ""
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isNameByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_' || b == '-'
}
