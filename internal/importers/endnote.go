package importers

import (
	"bufio"
	"strings"

	"github.com/pachadotdev/bello/internal/bibtex"
	"github.com/pachadotdev/bello/internal/records"
)

// parseEndNoteXML scans an EndNote XML export, one <record> per entry.
func parseEndNoteXML(content string) []bibtex.Entry {
	var out []bibtex.Entry
	var cur records.Record

	flush := func() {
		if cur.Title != "" || cur.Authors != "" {
			out = append(out, bibtex.Entry{Record: cur})
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "<record>") {
			flush()
			cur = records.Record{}
		}
		if value := tagText(line, "title"); value != "" {
			cur.Title = value
		}
		if value := tagText(line, "author"); value != "" {
			cur.Authors = value
		}
		if value := tagText(line, "year"); value != "" {
			cur.Year = value
		}
		if value := tagText(line, "publisher"); value != "" {
			cur.Publisher = value
		}
		if value := tagText(line, "electronic-resource-num"); value != "" {
			cur.DOI = value
		}
	}
	flush()

	return out
}
