package importers

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pachadotdev/bello/internal/bibtex"
	"github.com/pachadotdev/bello/internal/records"
)

var (
	rdfAttachmentRx = regexp.MustCompile(`(?s)<z:Attachment[^>]*rdf:about="([^"]+)".*?</z:Attachment>`)
	rdfResourceRx   = regexp.MustCompile(`files/[^"'\s>]+`)
	rdfLinkRx       = regexp.MustCompile(`rdf:resource="([^"]+)"`)
	rdfTagRx        = regexp.MustCompile(`<[^>]+>`)
	rdfISBNRx       = regexp.MustCompile(`(97[89][- ]?[0-9][-0-9 ]+)`)
	rdfDOIRx        = regexp.MustCompile(`(10\.[^\s]+)`)
)

// parseZoteroRDF scans a Zotero RDF export. A first pass maps attachment ids
// to their files/... payload paths; the second pass walks description blocks
// line by line and resolves link references through that map. Attachment
// paths resolve against baseDir and are kept in place, not copied.
func parseZoteroRDF(content, baseDir string) []bibtex.Entry {
	attachments := map[string][]string{}
	for _, match := range rdfAttachmentRx.FindAllStringSubmatch(content, -1) {
		about := match[1]
		if rel := rdfResourceRx.FindString(match[0]); rel != "" {
			attachments[about] = append(attachments[about], rel)
		}
	}

	var out []bibtex.Entry
	var cur records.Record
	var pendingLinks []string

	flush := func() {
		if cur.Title == "" && cur.Authors == "" && cur.DOI == "" && cur.ISBN == "" {
			return
		}
		for _, link := range pendingLinks {
			for _, rel := range attachments[link] {
				abs := filepath.Join(baseDir, rel)
				if _, err := os.Stat(abs); err == nil {
					cur.Attachments = records.AppendAttachments(cur.Attachments, []string{abs})
				}
			}
		}
		out = append(out, bibtex.Entry{Record: cur})
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.Contains(line, "<rdf:Description") && strings.Contains(line, "rdf:about=") {
			flush()
			cur = records.Record{}
			pendingLinks = nil
		}
		if value := tagText(line, "dc:title"); value != "" {
			cur.Title = value
		}
		if value := tagText(line, "dc:creator"); value != "" {
			cur.Authors = value
		}
		if value := tagText(line, "dc:date"); value != "" {
			if len(value) > 4 {
				value = value[:4]
			}
			cur.Year = value
		}
		if strings.Contains(line, "<dc:publisher>") || strings.Contains(line, "<bib:publisher>") || strings.Contains(line, "<dcterms:publisher>") {
			if value := strings.TrimSpace(rdfTagRx.ReplaceAllString(line, "")); value != "" {
				cur.Publisher = value
			}
		}
		if strings.Contains(line, "<bib:doi>") || strings.Contains(line, "<dc:identifier>") {
			idValue := strings.TrimSpace(rdfTagRx.ReplaceAllString(line, ""))
			switch {
			case strings.Contains(strings.ToLower(idValue), "isbn"):
				if m := rdfISBNRx.FindStringSubmatch(idValue); m != nil {
					cur.ISBN = strings.TrimSpace(m[1])
				}
			case strings.Contains(idValue, "10.") || strings.Contains(strings.ToLower(idValue), "doi:"):
				if m := rdfDOIRx.FindStringSubmatch(idValue); m != nil {
					cur.DOI = strings.TrimSpace(m[1])
				}
			}
		}
		if strings.Contains(line, "link:link") && strings.Contains(line, "rdf:resource=") {
			if m := rdfLinkRx.FindStringSubmatch(line); m != nil {
				pendingLinks = append(pendingLinks, m[1])
			}
		}
	}
	flush()

	return out
}

// tagText extracts the text between <tag> and </tag> on a single line.
func tagText(line, tag string) string {
	open := "<" + tag + ">"
	start := strings.Index(line, open)
	if start < 0 {
		return ""
	}
	rest := line[start+len(open):]
	end := strings.Index(rest, "</"+tag+">")
	if end < 0 {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(rest[:end])
}
