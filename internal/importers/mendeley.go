package importers

import (
	"bufio"
	"strings"

	"github.com/pachadotdev/bello/internal/bibtex"
	"github.com/pachadotdev/bello/internal/records"
)

// parseMendeleyXML scans a Mendeley XML export, one <document> per entry.
func parseMendeleyXML(content string) []bibtex.Entry {
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
		if strings.Contains(line, "<document>") {
			flush()
			cur = records.Record{}
		}
		if value := tagText(line, "title"); value != "" {
			cur.Title = value
		}
		if strings.Contains(line, "<authors>") {
			value := line
			for _, tag := range []string{"<authors>", "</authors>", "<author>", "</author>"} {
				value = strings.ReplaceAll(value, tag, "")
			}
			if value = strings.TrimSpace(value); value != "" {
				cur.Authors = value
			}
		}
		if value := tagText(line, "publisher"); value != "" {
			cur.Publisher = value
		}
		if value := tagText(line, "year"); value != "" {
			cur.Year = value
		}
		if value := tagText(line, "doi"); value != "" {
			cur.DOI = value
		}
	}
	flush()

	return out
}
