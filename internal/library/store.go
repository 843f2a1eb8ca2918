package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/pachadotdev/bello/internal/config"
	"github.com/pachadotdev/bello/internal/records"
)

// Store manages bibliographic persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the record database and ensures the schema
// exists, migrating legacy single-collection rows into the membership
// relation. Safe to call repeatedly.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: cfg.DatabasePath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

const itemColumns = `id, title, authors, year, type, doi, isbn, abstract, address,
    publisher, editor, booktitle, series, edition, chapter, school, institution,
    organization, howpublished, language, journal, pages, volume, number,
    keywords, month, url, note, extra, attachments, collection`

// itemColumnsQualified mirrors itemColumns with an items. prefix for queries
// that join tables sharing column names (e.g. item_collections.collection).
const itemColumnsQualified = `items.id, items.title, items.authors, items.year,
    items.type, items.doi, items.isbn, items.abstract, items.address,
    items.publisher, items.editor, items.booktitle, items.series, items.edition,
    items.chapter, items.school, items.institution, items.organization,
    items.howpublished, items.language, items.journal, items.pages,
    items.volume, items.number, items.keywords, items.month, items.url,
    items.note, items.extra, items.attachments, items.collection`

// Add inserts a new record. When the record names a non-empty collection the
// matching membership is created in the same transaction.
func (s *Store) Add(ctx context.Context, rec *records.Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New("record id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		insertArgs(rec)...,
	); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	if rec.Collection != "" {
		if err := addMembershipTx(ctx, tx, rec.ID, rec.Collection); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add: %w", err)
	}
	return nil
}

// Update overwrites every scalar field of the record identified by rec.ID.
// Memberships are never touched.
func (s *Store) Update(ctx context.Context, rec *records.Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New("record id is required")
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE items SET
            title = ?, authors = ?, year = ?, type = ?, doi = ?, isbn = ?,
            abstract = ?, address = ?, publisher = ?, editor = ?, booktitle = ?,
            series = ?, edition = ?, chapter = ?, school = ?, institution = ?,
            organization = ?, howpublished = ?, language = ?, journal = ?,
            pages = ?, volume = ?, number = ?, keywords = ?, month = ?,
            url = ?, note = ?, extra = ?, attachments = ?, collection = ?
        WHERE id = ?`,
		append(insertArgs(rec)[1:], rec.ID)...,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

// GetByID fetches a record by identifier. Absence is (nil, nil).
func (s *Store) GetByID(ctx context.Context, id string) (*records.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// FindByDOI returns the first record with an exact DOI match, or (nil, nil).
func (s *Store) FindByDOI(ctx context.Context, doi string) (*records.Record, error) {
	return s.findByColumn(ctx, "doi", doi)
}

// FindByISBN returns the first record with an exact ISBN match, or (nil, nil).
func (s *Store) FindByISBN(ctx context.Context, isbn string) (*records.Record, error) {
	return s.findByColumn(ctx, "isbn", isbn)
}

// FindByTitleAndAuthors returns the first record matching both title and
// authors exactly, or (nil, nil).
func (s *Store) FindByTitleAndAuthors(ctx context.Context, title, authors string) (*records.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE title = ? AND authors = ? ORDER BY id LIMIT 1`,
		title, authors,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by title/authors: %w", err)
	}
	return rec, nil
}

func (s *Store) findByColumn(ctx context.Context, column, value string) (*records.Record, error) {
	if value == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE `+column+` = ? ORDER BY id LIMIT 1`,
		value,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by %s: %w", column, err)
	}
	return rec, nil
}

// ListAll returns the light projection of every record, ordered by title.
func (s *Store) ListAll(ctx context.Context) ([]records.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, authors, year, type, doi, url, collection, attachments
        FROM items ORDER BY title COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var summaries []records.Summary
	for rows.Next() {
		var (
			summary     records.Summary
			title       sql.NullString
			authors     sql.NullString
			year        sql.NullString
			entryType   sql.NullString
			doi         sql.NullString
			url         sql.NullString
			collection  sql.NullString
			attachments sql.NullString
		)
		if err := rows.Scan(&summary.ID, &title, &authors, &year, &entryType, &doi, &url, &collection, &attachments); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summary.Title = title.String
		summary.Authors = authors.String
		summary.Year = year.String
		summary.Type = entryType.String
		summary.DOI = doi.String
		summary.URL = url.String
		summary.Collection = collection.String
		summary.Attachments = records.SplitAttachments(attachments.String)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return summaries, nil
}

// ListByCollection returns the full records filed into path or any of its
// descendants, ordered by title.
func (s *Store) ListByCollection(ctx context.Context, path string) ([]*records.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT `+itemColumnsQualified+` FROM items
        JOIN item_collections ON item_collections.item_id = items.id
        WHERE item_collections.collection = ? OR item_collections.collection LIKE ? ESCAPE '\'
        ORDER BY items.title COLLATE NOCASE, items.id`,
		path, likePrefix(path+"/"),
	)
	if err != nil {
		return nil, fmt.Errorf("list by collection: %w", err)
	}
	defer rows.Close()

	var result []*records.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return result, nil
}

// Delete removes the record, its memberships, and best-effort its first
// attachment file. Filesystem errors are swallowed.
func (s *Store) Delete(ctx context.Context, id string) error {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	if len(rec.Attachments) > 0 {
		_ = os.Remove(rec.Attachments[0])
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM item_collections WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*records.Record, error) {
	var (
		rec         records.Record
		fields      [27]sql.NullString
		extra       sql.NullString
		attachments sql.NullString
		collection  sql.NullString
	)

	dest := make([]any, 0, 31)
	dest = append(dest, &rec.ID)
	for i := range fields {
		dest = append(dest, &fields[i])
	}
	dest = append(dest, &extra, &attachments, &collection)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	targets := []*string{
		&rec.Title, &rec.Authors, &rec.Year, &rec.Type, &rec.DOI, &rec.ISBN,
		&rec.Abstract, &rec.Address, &rec.Publisher, &rec.Editor, &rec.Booktitle,
		&rec.Series, &rec.Edition, &rec.Chapter, &rec.School, &rec.Institution,
		&rec.Organization, &rec.Howpublished, &rec.Language, &rec.Journal,
		&rec.Pages, &rec.Volume, &rec.Number, &rec.Keywords, &rec.Month,
		&rec.URL, &rec.Note,
	}
	for i, target := range targets {
		*target = fields[i].String
	}
	rec.Extra = extra.String
	rec.Attachments = records.SplitAttachments(attachments.String)
	rec.Collection = collection.String
	return &rec, nil
}

func insertArgs(rec *records.Record) []any {
	return []any{
		rec.ID,
		nullableString(rec.Title),
		nullableString(rec.Authors),
		nullableString(rec.Year),
		nullableString(rec.Type),
		nullableString(rec.DOI),
		nullableString(rec.ISBN),
		nullableString(rec.Abstract),
		nullableString(rec.Address),
		nullableString(rec.Publisher),
		nullableString(rec.Editor),
		nullableString(rec.Booktitle),
		nullableString(rec.Series),
		nullableString(rec.Edition),
		nullableString(rec.Chapter),
		nullableString(rec.School),
		nullableString(rec.Institution),
		nullableString(rec.Organization),
		nullableString(rec.Howpublished),
		nullableString(rec.Language),
		nullableString(rec.Journal),
		nullableString(rec.Pages),
		nullableString(rec.Volume),
		nullableString(rec.Number),
		nullableString(rec.Keywords),
		nullableString(rec.Month),
		nullableString(rec.URL),
		nullableString(rec.Note),
		nullableString(rec.Extra),
		nullableString(records.JoinAttachments(rec.Attachments)),
		rec.Collection,
	}
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// likePrefix escapes LIKE metacharacters so a collection path containing
// % or _ still matches literally.
func likePrefix(prefix string) string {
	escaped := make([]byte, 0, len(prefix)+4)
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case '%', '_', '\\':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, prefix[i])
	}
	return string(escaped) + "%"
}
