package importers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pachadotdev/bello/internal/bibtex"
	"github.com/pachadotdev/bello/internal/fileutil"
	"github.com/pachadotdev/bello/internal/logging"
	"github.com/pachadotdev/bello/internal/records"
)

// Stats summarizes one file import.
type Stats struct {
	Parsed      int
	Created     int
	Merged      int
	Attachments int
	Skipped     int
}

// ImportFile parses the file by extension and applies every entry through
// the guarded save path. collection, when non-empty, files each record into
// that collection. Missing or unreadable attachments are skipped, not fatal.
func (s *Service) ImportFile(ctx context.Context, path, collection string) (Stats, error) {
	var stats Stats

	data, err := os.ReadFile(path)
	if err != nil {
		return stats, fmt.Errorf("read import file: %w", err)
	}
	content := string(data)
	baseDir := filepath.Dir(path)

	var entries []bibtex.Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bib":
		entries = bibtex.Parse(content)
	case ".rdf", ".xml":
		// Try each dialect until one yields entries.
		entries = parseZoteroRDF(content, baseDir)
		if len(entries) == 0 {
			entries = parseEndNoteXML(content)
		}
		if len(entries) == 0 {
			entries = parseMendeleyXML(content)
		}
	default:
		return stats, fmt.Errorf("unsupported import format %q", filepath.Ext(path))
	}

	stats.Parsed = len(entries)

	for i := range entries {
		entry := &entries[i]
		copied := s.copyEntryAttachments(entry, baseDir)
		stats.Attachments += copied

		entry.Record.Collection = collection
		if _, merged, err := s.Save(ctx, &entry.Record, nil); err != nil {
			s.logger.Warn("skipping record",
				logging.String("title", entry.Record.Title),
				logging.Error(err))
			stats.Skipped++
			continue
		} else if merged {
			stats.Merged++
		} else {
			stats.Created++
		}
	}

	return stats, nil
}

// copyEntryAttachments resolves the entry's file specs against the import
// file's directory and copies each existing file into the per-entry storage
// subdirectory. Destinations are appended to the record's attachment list;
// copy failures are logged and skipped.
func (s *Service) copyEntryAttachments(entry *bibtex.Entry, baseDir string) int {
	if len(entry.Files) == 0 {
		return 0
	}

	targetDir := filepath.Join(s.cfg.StorageDir, storageDirName(entry))
	copied := 0

	for _, spec := range entry.Files {
		src := spec.Path
		if !filepath.IsAbs(src) {
			src = filepath.Join(baseDir, src)
		}
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			s.logger.Warn("cannot create storage directory",
				logging.String(logging.FieldPath, targetDir),
				logging.Error(err))
			return copied
		}

		dst := fileutil.UniqueDestination(targetDir, filepath.Base(src))
		if err := fileutil.CopyFile(src, dst); err != nil {
			s.logger.Warn("cannot copy attachment",
				logging.String(logging.FieldPath, src),
				logging.Error(err))
			continue
		}
		entry.Record.Attachments = records.AppendAttachments(entry.Record.Attachments, []string{dst})
		copied++
	}

	return copied
}

// storageDirName picks the per-entry storage directory: DOI, else ISBN, else
// citation key, else author last name plus year.
func storageDirName(entry *bibtex.Entry) string {
	rec := entry.Record
	switch {
	case rec.DOI != "":
		return fileutil.SanitizeToken(rec.DOI)
	case rec.ISBN != "":
		return fileutil.SanitizeToken(rec.ISBN)
	case entry.CitationKey != "":
		return fileutil.SanitizeToken(entry.CitationKey)
	}

	author := rec.Authors
	if comma := strings.IndexByte(author, ','); comma >= 0 {
		author = author[:comma]
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = "unknown"
	}
	year := rec.Year
	if year == "" {
		year = "0000"
	}
	return fileutil.SanitizeToken(author + "_" + year)
}
