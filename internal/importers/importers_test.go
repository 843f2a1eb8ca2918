package importers_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pachadotdev/bello/internal/importers"
	"github.com/pachadotdev/bello/internal/records"
	"github.com/pachadotdev/bello/internal/testsupport"
)

func newService(t *testing.T) *importers.Service {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	return importers.NewService(store, cfg, nil)
}

func TestImportBibFileCreatesRecords(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	dir := t.TempDir()
	bib := filepath.Join(dir, "refs.bib")
	content := `
@article{doe2020, title = {A Study}, author = {Doe, Jane}, year = {2020}, doi = {10.1000/x1}}
@book{roe2019, title = {A Book}, author = {Roe, Richard}, isbn = {978-3-16-148410-0}}
`
	if err := os.WriteFile(bib, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := svc.ImportFile(ctx, bib, "Imported")
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if stats.Parsed != 2 || stats.Created != 2 || stats.Merged != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	rec, err := svc.Store().FindByDOI(ctx, "10.1000/x1")
	if err != nil || rec == nil {
		t.Fatalf("FindByDOI: %+v, %v", rec, err)
	}
	if rec.Collection != "Imported" {
		t.Fatalf("collection %q", rec.Collection)
	}

	// Re-import merges instead of duplicating.
	stats, err = svc.ImportFile(ctx, bib, "Imported")
	if err != nil {
		t.Fatalf("ImportFile repeat: %v", err)
	}
	if stats.Created != 0 || stats.Merged != 2 {
		t.Fatalf("repeat import stats %+v", stats)
	}
	summaries, err := svc.Store().ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("duplicates created: %d records", len(summaries))
	}
}

func TestImportBibFileCopiesAttachments(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	dir := t.TempDir()
	pdfDir := filepath.Join(dir, "files")
	if err := os.MkdirAll(pdfDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pdfDir, "doe.pdf"), []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	bib := filepath.Join(dir, "refs.bib")
	content := `@article{doe2020, title = {A Study}, author = {Doe, Jane}, doi = {10.1000/x1}, file = {Full Text:files/doe.pdf:application/pdf;Missing:files/gone.pdf:application/pdf}}`
	if err := os.WriteFile(bib, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := svc.ImportFile(ctx, bib, "")
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if stats.Attachments != 1 {
		t.Fatalf("attachments copied = %d, want 1", stats.Attachments)
	}

	rec, err := svc.Store().FindByDOI(ctx, "10.1000/x1")
	if err != nil || rec == nil {
		t.Fatalf("FindByDOI: %+v, %v", rec, err)
	}
	if len(rec.Attachments) != 1 {
		t.Fatalf("attachments %v", rec.Attachments)
	}
	dest := rec.Attachments[0]
	if !strings.Contains(dest, filepath.Join("storage", "10_1000_x1")) {
		t.Fatalf("attachment not in DOI-named storage dir: %q", dest)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("copied attachment missing: %v", err)
	}
}

func TestImportUnsupportedExtension(t *testing.T) {
	svc := newService(t)

	path := filepath.Join(t.TempDir(), "refs.docx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ImportFile(context.Background(), path, ""); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestImportEndNoteXML(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	content := `<?xml version="1.0"?>
<xml><records>
<record>
<title>EndNote Entry</title>
<author>Doe, Jane</author>
<year>2018</year>
<electronic-resource-num>10.1000/en1</electronic-resource-num>
</record>
<record>
<title>Second Entry</title>
<author>Roe, Richard</author>
</record>
</records></xml>
`
	path := filepath.Join(t.TempDir(), "refs.xml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := svc.ImportFile(ctx, path, "")
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if stats.Created != 2 {
		t.Fatalf("stats %+v", stats)
	}
	rec, err := svc.Store().FindByDOI(ctx, "10.1000/en1")
	if err != nil || rec == nil {
		t.Fatalf("FindByDOI: %+v, %v", rec, err)
	}
	if rec.Year != "2018" {
		t.Fatalf("year %q", rec.Year)
	}
}

func TestImportZoteroRDFWithAttachment(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	dir := t.TempDir()
	fileDir := filepath.Join(dir, "files", "217")
	if err := os.MkdirAll(fileDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fileDir, "doe.pdf"), []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	content := `<rdf:RDF>
<rdf:Description rdf:about="#item_1">
<dc:title>RDF Entry</dc:title>
<dc:creator>Doe, Jane</dc:creator>
<dc:date>2017-05-01</dc:date>
<dc:identifier>DOI 10.1000/rdf1</dc:identifier>
<link:link rdf:resource="#item_217"/>
</rdf:Description>
<z:Attachment rdf:about="#item_217">
<rdf:resource rdf:resource="files/217/doe.pdf"/>
</z:Attachment>
</rdf:RDF>
`
	path := filepath.Join(dir, "export.rdf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := svc.ImportFile(ctx, path, "")
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if stats.Created != 1 {
		t.Fatalf("stats %+v", stats)
	}

	rec, err := svc.Store().FindByDOI(ctx, "10.1000/rdf1")
	if err != nil || rec == nil {
		t.Fatalf("FindByDOI: %+v, %v", rec, err)
	}
	if rec.Year != "2017" {
		t.Fatalf("year %q", rec.Year)
	}
	if len(rec.Attachments) != 1 || !strings.HasSuffix(rec.Attachments[0], filepath.Join("files", "217", "doe.pdf")) {
		t.Fatalf("attachments %v", rec.Attachments)
	}
}

func TestSaveMergePreservesCuratedFields(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	existing := &records.Record{Title: "Curated", Authors: "Doe, Jane", DOI: "10.1000/x1", Collection: "Papers"}
	if _, merged, err := svc.Save(ctx, existing, nil); err != nil || merged {
		t.Fatalf("seed save: merged=%v err=%v", merged, err)
	}

	incoming := &records.Record{Title: "Scraped", DOI: "10.1000/x1", Year: "2020"}
	rec, merged, err := svc.Save(ctx, incoming, nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !merged {
		t.Fatal("expected merge")
	}
	if rec.Title != "Curated" || rec.Year != "2020" {
		t.Fatalf("merge result %+v", rec)
	}
}

func TestSaveInvokesAttachmentWriterWithTargetID(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var seenID string
	attach := func(targetID string) []string {
		seenID = targetID
		return []string{"/stored/" + targetID + "/file.pdf"}
	}

	rec, _, err := svc.Save(ctx, &records.Record{Title: "With Attachment", Authors: "Doe, Jane"}, attach)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if seenID != rec.ID {
		t.Fatalf("writer saw id %q, record id %q", seenID, rec.ID)
	}
	if len(rec.Attachments) != 1 || !strings.Contains(rec.Attachments[0], rec.ID) {
		t.Fatalf("attachments %v", rec.Attachments)
	}

	stored, err := svc.Store().GetByID(ctx, rec.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetByID: %+v, %v", stored, err)
	}
	if len(stored.Attachments) != 1 {
		t.Fatalf("stored attachments %v", stored.Attachments)
	}
}
